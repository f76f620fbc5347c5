package economy

import (
	"math"
	"testing"

	"energosphere-server/internal/domain"
)

func newTestEngine() *Engine {
	return NewEngine(domain.DefaultGenerators())
}

func TestCost_Basics(t *testing.T) {
	e := newTestEngine()

	// Первая покупка солнечной батареи стоит ровно baseCost.
	if got := e.Cost(domain.GeneratorSolar, 0, 1); got != 15 {
		t.Errorf("Expected first solar cost 15, got %v", got)
	}

	// floor(15 * 1.15^1 * 1) = 17
	if got := e.Cost(domain.GeneratorSolar, 1, 1); got != 17 {
		t.Errorf("Expected second solar cost 17, got %v", got)
	}

	// Уровень масштабирует цену линейно: floor(15 * 1.15^0 * 3) = 45
	if got := e.Cost(domain.GeneratorSolar, 0, 3); got != 45 {
		t.Errorf("Expected level-3 solar cost 45, got %v", got)
	}
}

func TestCost_UnknownTypeIsInfinite(t *testing.T) {
	e := newTestEngine()

	if got := e.Cost("fusion", 0, 1); !math.IsInf(got, 1) {
		t.Errorf("Expected +Inf for unknown type, got %v", got)
	}
}

func TestCost_MonotonicGrowth(t *testing.T) {
	e := newTestEngine()

	// Для множителя > 1 цена строго растет с каждым купленным генератором.
	for _, def := range e.Definitions() {
		prev := e.Cost(def.Type, 0, 1)
		for count := 1; count < 50; count++ {
			cur := e.Cost(def.Type, count, 1)
			if cur < prev {
				t.Fatalf("%s: cost decreased at count=%d: %v -> %v", def.Type, count, prev, cur)
			}
			prev = cur
		}
	}
}

func TestProduction_ZeroCount(t *testing.T) {
	e := newTestEngine()

	if got := e.Production(domain.GeneratorStellar, 0, 10, 5.0); got != 0 {
		t.Errorf("Expected zero production with zero count, got %v", got)
	}
	if got := e.Production("fusion", 10, 10, 1.0); got != 0 {
		t.Errorf("Expected zero production for unknown type, got %v", got)
	}
}

func TestTotalProduction_UpgradeStacking(t *testing.T) {
	e := newTestEngine()
	gens := []domain.Generator{
		{Type: domain.GeneratorGeothermal, Level: 1, Count: 10, Efficiency: 1.0},
	}

	// Без улучшений: 1 * 10 * 1 * 1.0 = 10
	if got := e.TotalProduction(gens, nil); got != 10 {
		t.Errorf("Expected base production 10, got %v", got)
	}

	// generator_boost_1 применяется ровно один раз, даже если указан дважды.
	upgrades := []string{"generator_boost_1", "generator_boost_1"}
	want := 10 * 1.1
	if got := e.TotalProduction(gens, upgrades); math.Abs(got-want) > 1e-9 {
		t.Errorf("Expected %v with boost_1, got %v", want, got)
	}

	// Все три множителя перемножаются.
	upgrades = []string{"generator_boost_1", "generator_boost_2", "quantum_efficiency"}
	want = 10 * 1.1 * 1.2 * 1.05
	if got := e.TotalProduction(gens, upgrades); math.Abs(got-want) > 1e-9 {
		t.Errorf("Expected %v with all boosts, got %v", want, got)
	}
}

func TestOfflineProduction_Tiers(t *testing.T) {
	e := newTestEngine()
	gens := []domain.Generator{
		{Type: domain.GeneratorGeothermal, Level: 1, Count: 10, Efficiency: 1.0},
	}
	const seconds = 3600

	base := e.TotalProduction(gens, nil)

	// Без улучшений - ровно 70%.
	want := base * seconds * 0.7
	if got := e.OfflineProduction(gens, seconds, nil); math.Abs(got-want) > 1e-6 {
		t.Errorf("Expected %v at baseline, got %v", want, got)
	}

	// Первая ступень - 85%.
	want = base * seconds * 0.85
	if got := e.OfflineProduction(gens, seconds, []string{"offline_boost"}); math.Abs(got-want) > 1e-6 {
		t.Errorf("Expected %v with offline_boost, got %v", want, got)
	}

	// Обе ступени куплены - действует только высшая (95%), эффекты не складываются.
	want = base * seconds * 0.95
	got := e.OfflineProduction(gens, seconds, []string{"offline_boost", "offline_boost_2"})
	if math.Abs(got-want) > 1e-6 {
		t.Errorf("Expected %v with both tiers (highest wins), got %v", want, got)
	}
}

func TestUpgradeCost(t *testing.T) {
	e := newTestEngine()

	// floor(15 * 2^1 * 10) = 300
	if got := e.UpgradeCost(domain.GeneratorSolar, 1); got != 300 {
		t.Errorf("Expected upgrade cost 300, got %v", got)
	}

	// Неизвестный тип использует базовую цену 100: floor(100 * 2^2 * 10) = 4000
	if got := e.UpgradeCost("fusion", 2); got != 4000 {
		t.Errorf("Expected fallback upgrade cost 4000, got %v", got)
	}
}

func TestAvailableGenerators_RebirthGating(t *testing.T) {
	e := newTestEngine()

	// Без перерождений доступны только типы с индексами 0 и 1.
	got := e.AvailableGenerators(0)
	if len(got) != 2 {
		t.Fatalf("Expected 2 generators at rebirth 0, got %d", len(got))
	}
	if got[0].Type != domain.GeneratorSolar || got[1].Type != domain.GeneratorGeothermal {
		t.Errorf("Unexpected generators at rebirth 0: %v, %v", got[0].Type, got[1].Type)
	}

	// Два перерождения открывают все пять типов (индексы 0-4).
	if got := e.AvailableGenerators(2); len(got) != 5 {
		t.Errorf("Expected all 5 generators at rebirth 2, got %d", len(got))
	}

	if e.IsAvailable(domain.GeneratorStellar, 1) {
		t.Error("Stellar core must stay locked at rebirth 1")
	}
	if !e.IsAvailable(domain.GeneratorStellar, 2) {
		t.Error("Stellar core must unlock at rebirth 2")
	}
	if e.IsAvailable("fusion", 100) {
		t.Error("Unknown type must never be available")
	}
}
