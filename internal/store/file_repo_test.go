package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energosphere-server/internal/domain"
)

func TestFileRepo_SaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	repo, err := NewFileRepo(dir)
	require.NoError(t, err)

	p := domain.NewPlayer("alice", domain.DefaultGenerators())
	p.Energy = 1234.5
	p.RebirthCount = 2
	p.Generators[0].Count = 7
	p.Upgrades = []string{"generator_boost_1"}
	p.Achievements = []string{"first_click"}
	p.LastSeen = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Save(p))

	// Новый репозиторий над тем же каталогом видит сохраненное состояние.
	reopened, err := NewFileRepo(dir)
	require.NoError(t, err)

	loaded, err := reopened.Load("alice")
	require.NoError(t, err)
	assert.Equal(t, 1234.5, loaded.Energy)
	assert.Equal(t, 2, loaded.RebirthCount)
	assert.Equal(t, 7, loaded.Generators[0].Count)
	assert.Equal(t, []string{"generator_boost_1"}, loaded.Upgrades)
	assert.Equal(t, []string{"first_click"}, loaded.Achievements)
}

func TestFileRepo_LoadUnknownPlayer(t *testing.T) {
	repo, err := NewFileRepo(t.TempDir())
	require.NoError(t, err)

	_, err = repo.Load("nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileRepo_LoadReturnsCopy(t *testing.T) {
	repo, err := NewFileRepo(t.TempDir())
	require.NoError(t, err)

	p := domain.NewPlayer("bob", domain.DefaultGenerators())
	require.NoError(t, repo.Save(p))

	first, err := repo.Load("bob")
	require.NoError(t, err)
	first.Energy = 999
	first.Generators[0].Count = 42

	// Мутация загруженной копии не должна протекать в хранилище.
	second, err := repo.Load("bob")
	require.NoError(t, err)
	assert.Equal(t, float64(0), second.Energy)
	assert.Equal(t, 0, second.Generators[0].Count)
}
