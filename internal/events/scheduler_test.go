package events

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"energosphere-server/internal/domain"
)

// fakeClock дает тестам ручное управление временем планировщика.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func alwaysEligible(domain.Requirement) bool { return true }

// newTestScheduler создает планировщик с шансом 1.0 у всех событий,
// чтобы бросок был детерминированным.
func newTestScheduler(cfg Config) (*Scheduler, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	defs := domain.DefaultEvents()
	for i := range defs {
		defs[i].Chance = 1.0
	}
	rng := rand.New(rand.NewSource(42))
	return NewScheduler(defs, domain.DefaultEventRewards(), cfg, rng, clock.Now), clock
}

func defaultTestConfig() Config {
	return Config{MaxActive: 3, MinInterval: 10 * time.Minute, HistoryLimit: 100}
}

func TestTick_StartsEvent(t *testing.T) {
	s, _ := newTestScheduler(defaultTestConfig())

	ended, started := s.Tick(alwaysEligible)

	if len(ended) != 0 {
		t.Errorf("Nothing should end on first tick, got %d", len(ended))
	}
	if started == nil {
		t.Fatal("Expected an event to start with chance=1.0")
	}
	if s.ActiveCount() != 1 {
		t.Errorf("Expected 1 active event, got %d", s.ActiveCount())
	}
	if len(s.History(10)) != 1 {
		t.Errorf("Start must append a history record")
	}
}

func TestTick_CooldownBlocksSecondStart(t *testing.T) {
	s, clock := newTestScheduler(defaultTestConfig())

	_, started := s.Tick(alwaysEligible)
	if started == nil {
		t.Fatal("First start expected")
	}

	// В течение 10 минут после запуска новые броски не проходят,
	// даже при шансе 1.0 у всех определений.
	for i := 0; i < 19; i++ {
		clock.Advance(30 * time.Second)
		if _, again := s.Tick(alwaysEligible); again != nil {
			t.Fatalf("Event started %v after previous start, inside cooldown", time.Duration(i+1)*30*time.Second)
		}
	}

	// Спустя minInterval бросок снова разрешен.
	clock.Advance(time.Minute)
	if _, again := s.Tick(alwaysEligible); again == nil {
		t.Error("Expected a new start after cooldown elapsed")
	}
}

func TestTick_CapacityInvariant(t *testing.T) {
	cfg := defaultTestConfig()
	cfg.MinInterval = 0 // убираем кулдаун, чтобы давить на лимит
	s, clock := newTestScheduler(cfg)

	// Много тиков без истечения событий: активных не больше MaxActive.
	for i := 0; i < 50; i++ {
		s.Tick(alwaysEligible)
		if s.ActiveCount() > cfg.MaxActive {
			t.Fatalf("Active count %d exceeds limit %d", s.ActiveCount(), cfg.MaxActive)
		}
		clock.Advance(time.Second)
	}
	if s.ActiveCount() != cfg.MaxActive {
		t.Errorf("Expected scheduler to fill up to %d, got %d", cfg.MaxActive, s.ActiveCount())
	}
}

func TestTick_ReapsExpired(t *testing.T) {
	s, clock := newTestScheduler(defaultTestConfig())

	_, started := s.Tick(alwaysEligible)
	if started == nil {
		t.Fatal("Start expected")
	}

	// Дожидаемся полной длительности: событие должно завершиться
	// безусловно, даже если новый бросок в этот тик не проходит.
	clock.Advance(time.Duration(started.Def.Duration)*time.Second + time.Second)
	ended, _ := s.Tick(alwaysEligible)

	if len(ended) != 1 {
		t.Fatalf("Expected 1 ended event, got %d", len(ended))
	}
	if s.ActiveCount() != 0 {
		t.Errorf("Ended event must leave the active set, got %d active", s.ActiveCount())
	}
}

func TestJoin_AfterExpiryIsSilentNoop(t *testing.T) {
	s, clock := newTestScheduler(defaultTestConfig())

	_, started := s.Tick(alwaysEligible)
	if started == nil {
		t.Fatal("Start expected")
	}

	if !s.Join("p1", started.ID) {
		t.Error("Join on active event must succeed")
	}

	clock.Advance(time.Duration(started.Def.Duration)*time.Second + time.Second)
	s.Tick(alwaysEligible) // reap

	// Событие истекло между запросом клиента и обработкой: не ошибка.
	if s.Join("p2", started.ID) {
		t.Error("Join after expiry must return false")
	}
	if s.Join("p3", "no_such_event") {
		t.Error("Join on unknown event must return false")
	}
}

func TestRewards_ParticipationScaling(t *testing.T) {
	s, clock := newTestScheduler(defaultTestConfig())
	clock.t = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Запускаем energy_storm напрямую, мимо случайного выбора.
	ev := s.start(domain.EventDefinition{ID: "energy_storm", Name: "Буря", Duration: 10})

	// Без участников наград нет, но энергия базы не масштабируется.
	rewards := s.computeRewards(ev)
	if len(rewards) != 0 {
		t.Errorf("No participants - no rewards, got %d", len(rewards))
	}

	// 100 участников: энергия x2, Experience не масштабируется.
	for i := 0; i < 100; i++ {
		ev.Participants[domain.PlayerID(fmt.Sprintf("p%d", i))] = struct{}{}
	}
	rewards = s.computeRewards(ev)
	if len(rewards) != 100 {
		t.Fatalf("Expected 100 rewards, got %d", len(rewards))
	}
	for _, r := range rewards {
		if r.Energy != 2000 {
			t.Fatalf("Expected energy 2000 (1000 x2), got %v", r.Energy)
		}
		if r.Experience != 100 {
			t.Fatalf("Experience must not scale, got %d", r.Experience)
		}
		break
	}
}

func TestRewards_UnknownEventFallsBack(t *testing.T) {
	s, _ := newTestScheduler(defaultTestConfig())

	ev := s.start(domain.EventDefinition{ID: "mystery_event", Name: "???", Duration: 10})
	ev.Participants["p1"] = struct{}{}

	rewards := s.computeRewards(ev)
	r, ok := rewards["p1"]
	if !ok {
		t.Fatal("Participant must receive a reward")
	}
	// Неизвестный ID события: минимальная награда floor(100 * 1.01) = 101.
	if r.Energy != 101 {
		t.Errorf("Expected fallback energy 101, got %v", r.Energy)
	}
}

func TestTick_RequirementsFilterCandidates(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	defs := []domain.EventDefinition{
		{ID: "gated", Name: "Gated", Duration: 60, Chance: 1.0,
			Requirement: domain.Requirement{Kind: domain.ReqRebirthCount, Threshold: 1}},
	}
	s := NewScheduler(defs, nil, defaultTestConfig(), rand.New(rand.NewSource(1)), clock.Now)

	// Требование не выполняется ни у кого: событие не стартует молча.
	_, started := s.Tick(func(domain.Requirement) bool { return false })
	if started != nil {
		t.Error("Event must not start when no definition is eligible")
	}

	_, started = s.Tick(alwaysEligible)
	if started == nil {
		t.Error("Event must start once the requirement holds")
	}
}

func TestHistory_TrimmedWindow(t *testing.T) {
	cfg := defaultTestConfig()
	cfg.HistoryLimit = 5
	s, clock := newTestScheduler(cfg)

	for i := 0; i < 10; i++ {
		s.start(domain.EventDefinition{ID: "energy_storm", Name: "Буря", Duration: 1})
		clock.Advance(time.Minute)
	}

	if got := len(s.History(100)); got != 5 {
		t.Errorf("History must be trimmed to 5 records, got %d", got)
	}

	// Давность последней записи - "1 минуту назад" не требуется:
	// проверяем только, что подпись непустая и записи новые в конце.
	views := s.History(2)
	if len(views) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(views))
	}
	if views[0].TimeAgo == "" || views[1].Timestamp < views[0].Timestamp {
		t.Error("History must be time-ordered with human-readable age")
	}
}
