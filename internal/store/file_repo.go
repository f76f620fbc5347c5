package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"energosphere-server/internal/domain"
)

// FileRepo хранит всех игроков в одном JSON-файле.
// Файл перечитывается один раз при создании; Save перезаписывает его
// целиком. Для текущих объемов этого достаточно.
type FileRepo struct {
	mu      sync.RWMutex
	path    string
	players map[domain.PlayerID]*domain.Player
}

// NewFileRepo открывает (или создает) хранилище в dataDir/players.json.
func NewFileRepo(dataDir string) (*FileRepo, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	r := &FileRepo{
		path:    filepath.Join(dataDir, "players.json"),
		players: map[domain.PlayerID]*domain.Player{},
	}
	if err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *FileRepo) load() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	loaded := map[domain.PlayerID]*domain.Player{}
	if err := json.Unmarshal(b, &loaded); err != nil {
		return err
	}
	r.players = loaded
	return nil
}

func (r *FileRepo) save() error {
	// Сериализуем под RLock, пишем файл без блокировки
	r.mu.RLock()
	b, err := json.MarshalIndent(r.players, "", "  ")
	r.mu.RUnlock()
	if err != nil {
		return err
	}
	return os.WriteFile(r.path, b, 0o600)
}

// Load возвращает копию записи игрока или ErrNotFound.
// Копия нужна, чтобы registry владел своим экземпляром состояния.
func (r *FileRepo) Load(id domain.PlayerID) (*domain.Player, error) {
	r.mu.RLock()
	p, ok := r.players[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	cp := *p
	cp.Generators = append([]domain.Generator(nil), p.Generators...)
	cp.Upgrades = append([]string(nil), p.Upgrades...)
	cp.Achievements = append([]string(nil), p.Achievements...)
	return &cp, nil
}

// Save записывает копию состояния игрока и сбрасывает файл на диск.
func (r *FileRepo) Save(p *domain.Player) error {
	cp := *p
	cp.Generators = append([]domain.Generator(nil), p.Generators...)
	cp.Upgrades = append([]string(nil), p.Upgrades...)
	cp.Achievements = append([]string(nil), p.Achievements...)

	r.mu.Lock()
	r.players[cp.ID] = &cp
	r.mu.Unlock()

	return r.save()
}
