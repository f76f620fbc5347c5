package domain

// GeneratorType это тип производственной единицы.
type GeneratorType string

const (
	GeneratorSolar      GeneratorType = "solar"
	GeneratorGeothermal GeneratorType = "geothermal"
	GeneratorQuantum    GeneratorType = "quantum"
	GeneratorGravity    GeneratorType = "gravity"
	GeneratorStellar    GeneratorType = "stellar"
)

// GeneratorDefinition это статическое, неизменяемое описание типа генератора.
// Позиция в срезе определений задает порядок разблокировки:
// каждые два типа требуют +1 перерождение.
type GeneratorDefinition struct {
	Type           GeneratorType `json:"type"`
	Name           string        `json:"name"`
	Description    string        `json:"description"`
	BaseCost       float64       `json:"baseCost"`
	BaseProduction float64       `json:"baseProduction"`
	CostMultiplier float64       `json:"costMultiplier"`
}

// DefaultGenerators возвращает стандартный набор определений.
// Таблица передается в конструкторы явно, а не через глобальный реестр,
// чтобы тесты могли подменять баланс.
func DefaultGenerators() []GeneratorDefinition {
	return []GeneratorDefinition{
		{
			Type:           GeneratorSolar,
			Name:           "Солнечная батарея",
			Description:    "Преобразует солнечный свет в энергию",
			BaseCost:       15,
			BaseProduction: 0.1,
			CostMultiplier: 1.15,
		},
		{
			Type:           GeneratorGeothermal,
			Name:           "Геотермальная скважина",
			Description:    "Использует тепло земных недр",
			BaseCost:       100,
			BaseProduction: 1,
			CostMultiplier: 1.15,
		},
		{
			Type:           GeneratorQuantum,
			Name:           "Квантовый реактор",
			Description:    "Генерирует энергию из квантовых колебаний",
			BaseCost:       1100,
			BaseProduction: 8,
			CostMultiplier: 1.15,
		},
		{
			Type:           GeneratorGravity,
			Name:           "Гравитационный динамо",
			Description:    "Использует гравитационные волны",
			BaseCost:       12000,
			BaseProduction: 47,
			CostMultiplier: 1.15,
		},
		{
			Type:           GeneratorStellar,
			Name:           "Звездное ядро",
			Description:    "Миниатюрная звезда в реакторе",
			BaseCost:       130000,
			BaseProduction: 260,
			CostMultiplier: 1.15,
		},
	}
}

// UpgradeDefinition это статическое описание покупаемого улучшения.
type UpgradeDefinition struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Cost float64 `json:"cost"`
}

// DefaultUpgrades возвращает стандартный набор улучшений.
// Эффекты улучшений интерпретирует Economy Engine; здесь только цены.
func DefaultUpgrades() []UpgradeDefinition {
	return []UpgradeDefinition{
		{ID: "generator_boost_1", Name: "Оптимизация сети", Cost: 500},
		{ID: "generator_boost_2", Name: "Сверхпроводники", Cost: 5000},
		{ID: "quantum_efficiency", Name: "Квантовая калибровка", Cost: 2500},
		{ID: "offline_boost", Name: "Аккумуляторы", Cost: 1000},
		{ID: "offline_boost_2", Name: "Криохранилище", Cost: 10000},
	}
}
