package version

import "testing"

func TestCalculateBuildID(t *testing.T) {
	tests := []struct {
		name      string
		date      string
		expected  int
		wantError bool
	}{
		{
			name:     "epoch date",
			date:     "2025-01-15",
			expected: 0,
		},
		{
			name:     "next day after epoch",
			date:     "2025-01-16",
			expected: 1,
		},
		{
			name:     "one year later",
			date:     "2026-01-15",
			expected: 365,
		},
		{
			name:     "date with a leap year included",
			date:     "2032-01-15",
			expected: 2556,
		},
		{
			name:      "invalid format",
			date:      "invalid",
			wantError: true,
		},
		{
			name:      "empty date",
			date:      "",
			wantError: true,
		},
		{
			name:      "before epoch",
			date:      "2025-01-14",
			wantError: true,
		},
	}

	for _, tt := range tests {
		old := BuildDate

		BuildDate = tt.date
		got, err := CalculateBuildID()
		BuildDate = old

		if tt.wantError {
			if err == nil {
				t.Fatalf("%s: expected error, got nil (id=%d)", tt.name, got)
			}
			continue
		}

		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.name, err)
		}

		if got != tt.expected {
			t.Errorf("%s: CalculateBuildID() = %d, want %d", tt.name, got, tt.expected)
		}
	}
}

func TestStringUnknownBuild(t *testing.T) {
	old := BuildDate
	BuildDate = ""
	defer func() { BuildDate = old }()

	got := String()
	if got == "" {
		t.Fatal("String() returned empty string")
	}
}
