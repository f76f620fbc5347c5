package domain

import "testing"

func TestParseAction(t *testing.T) {
	tests := []struct {
		input    string
		expected ActionType
	}{
		{"CLICK", ActionClick},
		{"click", ActionClick},
		{"Click", ActionClick},
		{"REBIRTH", ActionRebirth},
		{"JOIN_EVENT", ActionJoinEvent},
		{"BUY_GENERATOR", ActionBuyGenerator},
		{"UPGRADE_GENERATOR", ActionUpgradeGenerator},
		{"BUY_UPGRADE", ActionBuyUpgrade},
		{"CHAT", ActionChat},
		{"UNKNOWN_ACTION", ActionUnknown},
		{"", ActionUnknown},
	}

	for _, tt := range tests {
		result := ParseAction(tt.input)
		if result != tt.expected {
			t.Errorf("ParseAction(%q) = %v, want %v", tt.input, result, tt.expected)
		}
	}
}

func TestActionType_String(t *testing.T) {
	tests := []struct {
		action   ActionType
		expected string
	}{
		{ActionClick, "CLICK"},
		{ActionRebirth, "REBIRTH"},
		{ActionUnknown, "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.action.String(); got != tt.expected {
			t.Errorf("ActionType(%d).String() = %q, want %q", tt.action, got, tt.expected)
		}
	}
}
