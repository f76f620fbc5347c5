package domain

import "time"

// PlayerID это устойчивый идентификатор игрока (имя пользователя или гостевой ID).
type PlayerID string

func (id PlayerID) String() string { return string(id) }

// Generator это производственная единица игрока.
// Создается с Count=0 при разблокировке; сбрасывается при перерождении,
// но никогда не удаляется.
type Generator struct {
	Type       GeneratorType `json:"type"`
	Level      int           `json:"level"`
	Count      int           `json:"count"`
	Efficiency float64       `json:"efficiency"`
}

// Player это авторитетное состояние игрока.
// Владелец записи - Session Registry; остальные компоненты получают её
// в аргументах и не хранят ссылок.
type Player struct {
	ID PlayerID `json:"id"`

	// Основные ресурсы
	Energy            float64 `json:"energy"`
	QuantumPoints     int     `json:"quantumPoints"`
	TotalEnergyEarned float64 `json:"totalEnergyEarned"` // монотонно неубывающее

	// Статистика
	TotalClicks  int `json:"totalClicks"`
	RebirthCount int `json:"rebirthCount"`
	SessionTime  int `json:"sessionTime"` // секунды текущей сессии

	// Прогресс
	Generators   []Generator `json:"generators"`
	Upgrades     []string    `json:"upgrades"`     // ID купленных улучшений
	Achievements []string    `json:"achievements"` // ID открытых достижений

	// Социальное
	GuildID  string    `json:"guildId,omitempty"`
	LastSeen time.Time `json:"lastSeen"`
}

// NewPlayer создает игрока со стартовым состоянием: по одному генератору
// каждого типа с нулевым количеством.
func NewPlayer(id PlayerID, defs []GeneratorDefinition) *Player {
	p := &Player{
		ID:         id,
		Generators: make([]Generator, 0, len(defs)),
		LastSeen:   time.Now(),
	}
	for _, def := range defs {
		p.Generators = append(p.Generators, Generator{
			Type:       def.Type,
			Level:      1,
			Count:      0,
			Efficiency: 1.0,
		})
	}
	return p
}

// Generator возвращает генератор игрока по типу (nil, если типа нет).
func (p *Player) Generator(t GeneratorType) *Generator {
	for i := range p.Generators {
		if p.Generators[i].Type == t {
			return &p.Generators[i]
		}
	}
	return nil
}

// HasUpgrade проверяет наличие купленного улучшения.
func (p *Player) HasUpgrade(id string) bool {
	for _, u := range p.Upgrades {
		if u == id {
			return true
		}
	}
	return false
}

// HasAchievement проверяет, открыто ли достижение.
func (p *Player) HasAchievement(id string) bool {
	for _, a := range p.Achievements {
		if a == id {
			return true
		}
	}
	return false
}
