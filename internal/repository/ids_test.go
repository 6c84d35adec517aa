package repository

import (
	"reflect"
	"testing"
)

func TestJoinIDs(t *testing.T) {
	tests := []struct {
		name     string
		ids      []int64
		expected string
	}{
		{
			name:     "empty slice",
			ids:      []int64{},
			expected: "",
		},
		{
			name:     "single id",
			ids:      []int64{7},
			expected: "7",
		},
		{
			name:     "multiple ids",
			ids:      []int64{1, 2, 3},
			expected: "1,2,3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := joinIDs(tt.ids)
			if result != tt.expected {
				t.Errorf("joinIDs() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestSplitIDs(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []int64
	}{
		{
			name:     "empty string",
			input:    "",
			expected: nil,
		},
		{
			name:     "single id",
			input:    "42",
			expected: []int64{42},
		},
		{
			name:     "multiple ids",
			input:    "1,2,3",
			expected: []int64{1, 2, 3},
		},
		{
			name:     "malformed entries skipped",
			input:    "1,x,3",
			expected: []int64{1, 3},
		},
		{
			name:     "blanks skipped",
			input:    "1,,2, ",
			expected: []int64{1, 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := splitIDs(tt.input)
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("splitIDs(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestAppendUniqueID(t *testing.T) {
	ids := []int64{1, 2}

	ids = appendUniqueID(ids, 3)
	if !reflect.DeepEqual(ids, []int64{1, 2, 3}) {
		t.Errorf("appendUniqueID() = %v, want [1 2 3]", ids)
	}

	ids = appendUniqueID(ids, 2)
	if !reflect.DeepEqual(ids, []int64{1, 2, 3}) {
		t.Errorf("appendUniqueID() with duplicate = %v, want [1 2 3]", ids)
	}
}

func TestSplitListRoundTrip(t *testing.T) {
	items := []string{"peanuts", "shellfish"}
	if got := splitList(joinList(items)); !reflect.DeepEqual(got, items) {
		t.Errorf("splitList(joinList()) = %v, want %v", got, items)
	}
	if got := splitList(""); got != nil {
		t.Errorf("splitList(\"\") = %v, want nil", got)
	}
}
