package recurrence

import (
	"testing"
	"time"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestExpandNone(t *testing.T) {
	base := date("2024-01-01")

	dates, err := Expand(base, None, DefaultOccurrences)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if len(dates) != 1 {
		t.Fatalf("expected 1 date for rule none, got %d", len(dates))
	}
	if !dates[0].Equal(base) {
		t.Errorf("expected base date unchanged, got %v", dates[0])
	}
}

func TestExpandRules(t *testing.T) {
	tests := []struct {
		name string
		rule string
		want []string
	}{
		{
			name: "daily steps one day",
			rule: Daily,
			want: []string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04"},
		},
		{
			name: "weekly steps seven days",
			rule: Weekly,
			want: []string{"2024-01-01", "2024-01-08", "2024-01-15", "2024-01-22"},
		},
		{
			name: "monthly steps thirty days",
			rule: Monthly,
			want: []string{"2024-01-01", "2024-01-31", "2024-03-01", "2024-03-31"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dates, err := Expand(date("2024-01-01"), tt.rule, DefaultOccurrences)
			if err != nil {
				t.Fatalf("Expand() error = %v", err)
			}
			if len(dates) != len(tt.want) {
				t.Fatalf("expected %d dates, got %d", len(tt.want), len(dates))
			}
			for i, w := range tt.want {
				if got := dates[i].Format("2006-01-02"); got != w {
					t.Errorf("dates[%d] = %s, want %s", i, got, w)
				}
			}
		})
	}
}

func TestExpandDatesStrictlyIncreasing(t *testing.T) {
	for _, rule := range []string{Daily, Weekly, Monthly} {
		dates, err := Expand(date("2024-02-27"), rule, 6)
		if err != nil {
			t.Fatalf("Expand(%s) error = %v", rule, err)
		}
		if len(dates) != 6 {
			t.Fatalf("Expand(%s) returned %d dates, want 6", rule, len(dates))
		}
		for i := 1; i < len(dates); i++ {
			if !dates[i].After(dates[i-1]) {
				t.Errorf("%s: dates[%d] (%v) not after dates[%d] (%v)", rule, i, dates[i], i-1, dates[i-1])
			}
		}
	}
}

func TestExpandDefaultsOccurrences(t *testing.T) {
	dates, err := Expand(date("2024-01-01"), Weekly, 0)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if len(dates) != DefaultOccurrences {
		t.Errorf("expected %d dates for zero occurrences, got %d", DefaultOccurrences, len(dates))
	}
}

func TestExpandUnknownRule(t *testing.T) {
	if _, err := Expand(date("2024-01-01"), "fortnightly", 4); err == nil {
		t.Error("expected error for unknown rule, got nil")
	}
}

func TestValidRule(t *testing.T) {
	for _, rule := range []string{None, Daily, Weekly, Monthly} {
		if !ValidRule(rule) {
			t.Errorf("ValidRule(%q) = false, want true", rule)
		}
	}
	if ValidRule("yearly") {
		t.Error("ValidRule(\"yearly\") = true, want false")
	}
}
