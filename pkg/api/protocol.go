package api

import (
	"encoding/json"
)

// --- СЕРВЕР -> КЛИЕНТ ---

// Topic определяет смысловой канал сообщения сервера.
// Клиент подписан на все топики; маршрутизация происходит на его стороне.
type Topic string

const (
	TopicPresenceChanged     Topic = "presence-changed"
	TopicStateUpdate         Topic = "state-update"
	TopicAchievementUnlocked Topic = "achievement-unlocked"
	TopicEventStarted        Topic = "event-started"
	TopicEventEnded          Topic = "event-ended"
	TopicRebirthAnnounced    Topic = "rebirth-announced"
	TopicEnergyDelta         Topic = "energy-delta"
	TopicChatMessage         Topic = "chat-message"
	TopicChatHistory         Topic = "chat-history"
	TopicNotice              Topic = "notice"
)

// ServerMessage это корневой объект, который сервер отправляет клиенту.
// Topic определяет структуру Payload (см. DTO ниже).
type ServerMessage struct {
	Topic   Topic       `json:"topic"`
	Payload interface{} `json:"payload,omitempty"`
}

// StateView это персональный "снимок" состояния игрока.
// Отправляется при входе, а также после любой операции, меняющей ресурсы.
type StateView struct {
	ID                string          `json:"id"`
	Energy            float64         `json:"energy"`
	QuantumPoints     int             `json:"quantumPoints"`
	TotalEnergyEarned float64         `json:"totalEnergyEarned"`
	RebirthCount      int             `json:"rebirthCount"`
	SessionTime       int             `json:"sessionTime"`
	Production        float64         `json:"production"`
	OfflineEnergy     float64         `json:"offlineEnergy,omitempty"`
	Generators        []GeneratorView `json:"generators,omitempty"`
	Upgrades          []string        `json:"upgrades,omitempty"`
	Achievements      []string        `json:"achievements,omitempty"`
}

// GeneratorView это DTO одного генератора игрока.
// NextCost - цена следующей покупки, рассчитанная сервером.
type GeneratorView struct {
	Type       string  `json:"type"`
	Level      int     `json:"level"`
	Count      int     `json:"count"`
	Production float64 `json:"production"`
	NextCost   float64 `json:"nextCost"`
	Unlocked   bool    `json:"unlocked"`
}

// PresenceView рассылается при входе/выходе любого игрока.
type PresenceView struct {
	ID          string `json:"id"`
	Online      bool   `json:"online"`
	OnlineCount int    `json:"onlineCount"`
}

// AchievementView описывает только что открытое достижение.
type AchievementView struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	RewardEnergy  float64 `json:"rewardEnergy,omitempty"`
	RewardQuantum int     `json:"rewardQuantum,omitempty"`
}

// EventStartedView рассылается всем при запуске события.
type EventStartedView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Duration    int    `json:"duration"` // секунды
}

// EventEndedView рассылается всем при завершении события.
type EventEndedView struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Participants int    `json:"participants"`
}

// EventRewardView отправляется лично каждому участнику завершенного события.
type EventRewardView struct {
	EventID string  `json:"eventId"`
	Energy  float64 `json:"energy"`
	Quantum int     `json:"quantum,omitempty"`
}

// RebirthView это глобальное оповещение о перерождении игрока.
type RebirthView struct {
	ID           string `json:"id"`
	RebirthCount int    `json:"rebirthCount"`
}

// EnergyDeltaView рассылается всем после принятого клика
// (лидерборды на клиентах обновляются без полного снапшота).
type EnergyDeltaView struct {
	ID     string  `json:"id"`
	Energy float64 `json:"energy"`
}

// ChatMessage одно сообщение глобального чата.
type ChatMessage struct {
	Player    string `json:"player"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"` // Unix milliseconds
}

// NoticeView это персональное уведомление о неуспешной операции
// (не хватило энергии, генератор не разблокирован и т.п.).
type NoticeView struct {
	Text string `json:"text"`
}

// --- КЛИЕНТ -> СЕРВЕР ---

// ClientCommand это корневой объект для всех сообщений от клиента к серверу.
type ClientCommand struct {
	// Token JWT, выданный /api/login. Обязателен только в первом
	// сообщении "LOGIN"; пустой токен означает гостевой вход.
	Token string `json:"token,omitempty"`

	// Action название действия, которое нужно выполнить.
	Action string `json:"action"`

	// Payload JSON-объект с данными для действия. Его структура зависит от Action.
	Payload json.RawMessage `json:"payload"`
}

// --- Payloads ---

// ClickPayload используется для CLICK: клиент сообщает добытую энергию.
// Значение принимается на веру (см. известную проблему целостности в registry).
type ClickPayload struct {
	Energy float64 `json:"energy"`
}

// RebirthPayload используется для REBIRTH.
type RebirthPayload struct {
	RebirthCount  int `json:"rebirthCount"`
	QuantumGained int `json:"quantumGained"`
}

// EventPayload используется для JOIN_EVENT.
type EventPayload struct {
	EventID string `json:"eventId"`
}

// GeneratorPayload используется для BUY_GENERATOR и UPGRADE_GENERATOR.
type GeneratorPayload struct {
	Type string `json:"type"`
}

// UpgradePayload используется для BUY_UPGRADE.
type UpgradePayload struct {
	UpgradeID string `json:"upgradeId"`
}

// ChatPayload используется для CHAT.
type ChatPayload struct {
	Message string `json:"message"`
}
