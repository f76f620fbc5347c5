// Package store это граница с внешним хранилищем игроков.
// Ядро симуляции зовет Load/Save на границах подключения и на
// контрольных точках; гарантии долговечности - забота реализации.
package store

import (
	"errors"

	"energosphere-server/internal/domain"
)

// ErrNotFound возвращается Load для неизвестного игрока.
var ErrNotFound = errors.New("player not found")

// PlayerRepo это интерфейс коллаборатора персистентности.
// Сбой Load/Save не фатален: Session Registry деградирует до
// in-memory сессии, не теряя уже примененных мутаций.
type PlayerRepo interface {
	Load(id domain.PlayerID) (*domain.Player, error)
	Save(p *domain.Player) error
}
