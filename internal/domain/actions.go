package domain

import "strings"

// ActionType - Внутренний числовой идентификатор действия
type ActionType uint8

const (
	ActionUnknown ActionType = iota
	ActionClick
	ActionRebirth
	ActionJoinEvent
	ActionBuyGenerator
	ActionUpgradeGenerator
	ActionBuyUpgrade
	ActionChat

	// Служебные действия: генерируются сервером, а не клиентом.
	ActionConnect
	ActionDisconnect
)

// Маппинг для конвертации JSON -> Domain
var actionStringToCmd = map[string]ActionType{
	"CLICK":             ActionClick,
	"REBIRTH":           ActionRebirth,
	"JOIN_EVENT":        ActionJoinEvent,
	"BUY_GENERATOR":     ActionBuyGenerator,
	"UPGRADE_GENERATOR": ActionUpgradeGenerator,
	"BUY_UPGRADE":       ActionBuyUpgrade,
	"CHAT":              ActionChat,
}

// Маппинг для логов Domain -> String
var actionCmdToString = map[ActionType]string{
	ActionClick:            "CLICK",
	ActionRebirth:          "REBIRTH",
	ActionJoinEvent:        "JOIN_EVENT",
	ActionBuyGenerator:     "BUY_GENERATOR",
	ActionUpgradeGenerator: "UPGRADE_GENERATOR",
	ActionBuyUpgrade:       "BUY_UPGRADE",
	ActionChat:             "CHAT",
	ActionConnect:          "CONNECT",
	ActionDisconnect:       "DISCONNECT",
}

// ParseAction конвертирует строку из JSON в ActionType
func ParseAction(s string) ActionType {
	// Делаем нечувствительным к регистру для надежности
	upper := strings.ToUpper(s)
	if val, ok := actionStringToCmd[upper]; ok {
		return val
	}
	return ActionUnknown
}

// String реализует интерфейс Stringer (для fmt.Printf)
func (a ActionType) String() string {
	if val, ok := actionCmdToString[a]; ok {
		return val
	}
	return "UNKNOWN"
}
