package domain

// RequirementKind перечисляет виды требований для запуска события.
// Как и условия достижений, требования - данные, а не замыкания.
type RequirementKind string

const (
	// ReqNone: событие доступно всегда.
	ReqNone RequirementKind = "none"
	// ReqRebirthCount: хотя бы один подключенный игрок с перерождениями >= Threshold.
	ReqRebirthCount RequirementKind = "rebirth_count"
	// ReqInGuild: хотя бы один подключенный игрок состоит в гильдии.
	ReqInGuild RequirementKind = "in_guild"
)

// Requirement это типизированное требование к состоянию мира.
type Requirement struct {
	Kind      RequirementKind `json:"kind"`
	Threshold int             `json:"threshold,omitempty"`
}

// EventDefinition это статическое описание типа события.
type EventDefinition struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Category    string      `json:"category"` // global, click, prestige, guild
	Duration    int         `json:"duration"` // секунды
	Chance      float64     `json:"chance"`   // [0,1], вероятность принятия броска
	Requirement Requirement `json:"requirement"`
}

// EventReward это награда участнику завершенного события.
// При выдаче масштабируется только Energy (пропорционально числу участников).
type EventReward struct {
	Energy          float64 `json:"energy,omitempty"`
	Quantum         int     `json:"quantum,omitempty"`
	Experience      int     `json:"experience,omitempty"`
	Crystals        int     `json:"crystals,omitempty"`
	GuildExperience int     `json:"guildExperience,omitempty"`
}

// DefaultEvents возвращает стандартный набор событий.
func DefaultEvents() []EventDefinition {
	return []EventDefinition{
		{
			ID:          "energy_storm",
			Name:        "Энергетическая буря",
			Description: "Производство энергии увеличено в 2 раза на 2 минуты!",
			Category:    "global",
			Duration:    120,
			Chance:      0.1,
			Requirement: Requirement{Kind: ReqNone},
		},
		{
			ID:          "crystal_swarm",
			Name:        "Кристальный рой",
			Description: "Появляются летающие кристаллы! Кликайте по ним для бонусной энергии.",
			Category:    "click",
			Duration:    60,
			Chance:      0.15,
			Requirement: Requirement{Kind: ReqNone},
		},
		{
			ID:          "quantum_surge",
			Name:        "Квантовый всплеск",
			Description: "Шанс получить квантовые очки за клики увеличен!",
			Category:    "prestige",
			Duration:    180,
			Chance:      0.05,
			Requirement: Requirement{Kind: ReqRebirthCount, Threshold: 1},
		},
		{
			ID:          "guild_raid",
			Name:        "Гильдейский рейд",
			Description: "Объединитесь с гильдией для сбора энергии!",
			Category:    "guild",
			Duration:    300,
			Chance:      0.08,
			Requirement: Requirement{Kind: ReqInGuild},
		},
	}
}

// DefaultEventRewards возвращает таблицу базовых наград по ID события.
// Неизвестный ID получает минимальную награду по умолчанию (см. events.Scheduler).
func DefaultEventRewards() map[string]EventReward {
	return map[string]EventReward{
		"energy_storm":  {Energy: 1000, Experience: 100},
		"crystal_swarm": {Energy: 500, Crystals: 5},
		"quantum_surge": {Energy: 200, Quantum: 1},
		"guild_raid":    {Energy: 300, GuildExperience: 500},
	}
}
