// Package economy содержит чистую математику симуляции:
// стоимость и производство генераторов, офлайн-доначисление,
// стоимость модернизации и разблокировку по перерождениям.
//
// Все функции тотальны: неизвестный тип генератора дает безопасное
// нейтральное значение (бесконечная цена, нулевое производство),
// а не ошибку. Вызывающему коду не нужны fallback-ветки.
package economy

import (
	"math"

	"energosphere-server/internal/domain"
)

// Базовый коэффициент офлайн-производства без улучшений (70%).
const baseOfflineFactor = 0.7

// efficiencyUpgrade связывает ID улучшения с множителем эффективности.
type efficiencyUpgrade struct {
	id   string
	mult float64
}

// Фиксированный, упорядоченный список множителей эффективности.
// Каждое купленное улучшение применяется ровно один раз, независимо от остальных.
var efficiencyUpgrades = []efficiencyUpgrade{
	{"generator_boost_1", 1.1},
	{"generator_boost_2", 1.2},
	{"quantum_efficiency", 1.05},
}

// offlineTier связывает ID улучшения с коэффициентом офлайн-производства.
// Ступени не складываются: действует только высшая из купленных.
type offlineTier struct {
	id     string
	factor float64
}

// Порядок - от младшей ступени к старшей.
var offlineTiers = []offlineTier{
	{"offline_boost", 0.85},
	{"offline_boost_2", 0.95},
}

// Engine считает экономику по неизменяемой таблице определений.
// Не имеет состояния и безопасен для совместного использования.
type Engine struct {
	defs   []domain.GeneratorDefinition
	byType map[domain.GeneratorType]int // тип -> индекс в defs
}

// NewEngine создает движок по таблице определений.
// Таблица не копируется; вызывающий код не должен её менять.
func NewEngine(defs []domain.GeneratorDefinition) *Engine {
	byType := make(map[domain.GeneratorType]int, len(defs))
	for i, d := range defs {
		byType[d.Type] = i
	}
	return &Engine{defs: defs, byType: byType}
}

// Definitions возвращает таблицу определений в порядке разблокировки.
func (e *Engine) Definitions() []domain.GeneratorDefinition {
	return e.defs
}

// Definition возвращает определение по типу (nil для неизвестного типа).
func (e *Engine) Definition(t domain.GeneratorType) *domain.GeneratorDefinition {
	i, ok := e.byType[t]
	if !ok {
		return nil
	}
	return &e.defs[i]
}

// Cost возвращает цену следующей покупки генератора:
// floor(baseCost * costMultiplier^count * level).
// Неизвестный тип → +Inf (покупка всегда отклоняется выше по стеку).
func (e *Engine) Cost(t domain.GeneratorType, count, level int) float64 {
	def := e.Definition(t)
	if def == nil {
		return math.Inf(1)
	}
	return math.Floor(def.BaseCost * math.Pow(def.CostMultiplier, float64(count)) * float64(level))
}

// Production возвращает производство генератора в единицах энергии в секунду.
// Нулевое количество дает ноль независимо от остальных факторов.
func (e *Engine) Production(t domain.GeneratorType, count, level int, efficiency float64) float64 {
	def := e.Definition(t)
	if def == nil {
		return 0
	}
	return def.BaseProduction * float64(count) * float64(level) * efficiency
}

// TotalProduction суммирует производство всех генераторов игрока
// с общим множителем эффективности, собранным из купленных улучшений.
func (e *Engine) TotalProduction(generators []domain.Generator, upgrades []string) float64 {
	efficiency := 1.0
	for _, u := range efficiencyUpgrades {
		if containsUpgrade(upgrades, u.id) {
			efficiency *= u.mult
		}
	}

	total := 0.0
	for _, gen := range generators {
		total += e.Production(gen.Type, gen.Count, gen.Level, efficiency)
	}
	return total
}

// OfflineProduction возвращает энергию, накопленную за offlineSeconds
// отсутствия. Коэффициент определяется высшей купленной ступенью
// офлайн-улучшений (0.70 / 0.85 / 0.95).
func (e *Engine) OfflineProduction(generators []domain.Generator, offlineSeconds float64, upgrades []string) float64 {
	factor := baseOfflineFactor
	for _, tier := range offlineTiers {
		if containsUpgrade(upgrades, tier.id) {
			factor = tier.factor
		}
	}
	return e.TotalProduction(generators, upgrades) * offlineSeconds * factor
}

// UpgradeCost возвращает цену модернизации (повышения уровня):
// floor(baseCost * 2^currentLevel * 10).
// Для неизвестного типа берется базовая цена 100 (как в оригинальном балансе).
func (e *Engine) UpgradeCost(t domain.GeneratorType, currentLevel int) float64 {
	baseCost := 100.0
	if def := e.Definition(t); def != nil {
		baseCost = def.BaseCost
	}
	return math.Floor(baseCost * math.Pow(2, float64(currentLevel)) * 10)
}

// AvailableGenerators возвращает типы, доступные при данном числе
// перерождений: тип с индексом i доступен при rebirthCount >= i/2.
func (e *Engine) AvailableGenerators(rebirthCount int) []domain.GeneratorDefinition {
	var available []domain.GeneratorDefinition
	for i, def := range e.defs {
		if rebirthCount >= i/2 {
			available = append(available, def)
		}
	}
	return available
}

// IsAvailable проверяет, разблокирован ли тип при данном числе перерождений.
// Неизвестный тип считается заблокированным.
func (e *Engine) IsAvailable(t domain.GeneratorType, rebirthCount int) bool {
	i, ok := e.byType[t]
	if !ok {
		return false
	}
	return rebirthCount >= i/2
}

func containsUpgrade(upgrades []string, id string) bool {
	for _, u := range upgrades {
		if u == id {
			return true
		}
	}
	return false
}
