package domain

// ConditionKind перечисляет виды условий достижений.
// Условия хранятся как данные, а не как замыкания: набор правил можно
// сериализовать и просматривать, интерпретирует его единственный evaluator.
type ConditionKind string

const (
	// CondTotalClicks: всего кликов >= Threshold.
	CondTotalClicks ConditionKind = "total_clicks"
	// CondTotalEnergy: всего заработано энергии >= Threshold.
	CondTotalEnergy ConditionKind = "total_energy"
	// CondAnyGenerator: куплен хотя бы один генератор любого типа.
	CondAnyGenerator ConditionKind = "any_generator_owned"
	// CondRebirthCount: перерождений >= Threshold.
	CondRebirthCount ConditionKind = "rebirth_count"
	// CondInGuild: игрок состоит в гильдии.
	CondInGuild ConditionKind = "in_guild"
)

// Condition это типизированный предикат над состоянием игрока.
// Инвариант: все условия монотонны - однажды выполнившись, они остаются
// истинными (TotalClicks, TotalEnergyEarned и RebirthCount не убывают,
// купленный генератор не исчезает). Evaluator опирается на это, считая
// открытие достижения необратимым.
type Condition struct {
	Kind      ConditionKind `json:"kind"`
	Threshold float64       `json:"threshold,omitempty"`
}

// Reward это фиксированная награда за достижение.
type Reward struct {
	Energy  float64 `json:"energy,omitempty"`
	Quantum int     `json:"quantum,omitempty"`
}

// AchievementDefinition это статическое описание достижения.
type AchievementDefinition struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Condition   Condition `json:"condition"`
	Reward      Reward    `json:"reward"`
}

// DefaultAchievements возвращает стандартный набор достижений.
// Порядок в срезе определяет порядок проверки и выдачи наград.
func DefaultAchievements() []AchievementDefinition {
	return []AchievementDefinition{
		{
			ID:          "first_click",
			Name:        "Первая искра",
			Description: "Выполните первый клик",
			Condition:   Condition{Kind: CondTotalClicks, Threshold: 1},
			Reward:      Reward{Energy: 100},
		},
		{
			ID:          "energy_milestone",
			Name:        "Энергетический прорыв",
			Description: "Соберите 1000 энергии",
			Condition:   Condition{Kind: CondTotalEnergy, Threshold: 1000},
			Reward:      Reward{Quantum: 1},
		},
		{
			ID:          "first_generator",
			Name:        "Автоматизация",
			Description: "Купите первый генератор",
			Condition:   Condition{Kind: CondAnyGenerator},
			Reward:      Reward{Energy: 500},
		},
		{
			ID:          "first_rebirth",
			Name:        "Квантовый скачок",
			Description: "Выполните первое перерождение",
			Condition:   Condition{Kind: CondRebirthCount, Threshold: 1},
			Reward:      Reward{Quantum: 5},
		},
		{
			ID:          "social_butterfly",
			Name:        "Социальная бабочка",
			Description: "Вступите в гильдию",
			Condition:   Condition{Kind: CondInGuild},
			Reward:      Reward{Energy: 1000},
		},
	}
}
