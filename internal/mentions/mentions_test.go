package mentions

import (
	"reflect"
	"testing"

	"github.com/MYTEGROUP/MyteHomeAssistant/internal/models"
)

func TestParse(t *testing.T) {
	roster := []models.User{
		{ID: 1, Username: "alice"},
		{ID: 2, Username: "bob"},
		{ID: 3, Username: "carol"},
	}

	tests := []struct {
		name   string
		text   string
		roster []models.User
		want   []int64
	}{
		{
			name:   "single mention",
			text:   "hello @alice world",
			roster: roster,
			want:   []int64{1},
		},
		{
			name:   "duplicate mention deduplicated",
			text:   "@bob @bob",
			roster: roster,
			want:   []int64{2},
		},
		{
			name:   "no mentions",
			text:   "no mentions here",
			roster: roster,
			want:   nil,
		},
		{
			name:   "empty text",
			text:   "",
			roster: roster,
			want:   nil,
		},
		{
			name:   "unknown username dropped",
			text:   "ping @dave please",
			roster: roster,
			want:   nil,
		},
		{
			name:   "bare at sign matches nobody",
			text:   "meet @ noon",
			roster: roster,
			want:   nil,
		},
		{
			name:   "case sensitive match",
			text:   "hey @Alice",
			roster: roster,
			want:   nil,
		},
		{
			name:   "multiple mentions keep first-seen order",
			text:   "@carol then @alice then @carol",
			roster: roster,
			want:   []int64{3, 1},
		},
		{
			name:   "punctuation is not stripped",
			text:   "thanks @alice!",
			roster: roster,
			want:   nil,
		},
		{
			name:   "empty roster",
			text:   "hello @alice",
			roster: nil,
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.text, tt.roster)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestParseOnlyReturnsRosterIDs(t *testing.T) {
	roster := []models.User{
		{ID: 10, Username: "mum"},
		{ID: 11, Username: "dad"},
	}

	got := Parse("@mum @dad @granny @mum @x", roster)

	known := map[int64]bool{10: true, 11: true}
	for _, id := range got {
		if !known[id] {
			t.Errorf("Parse returned id %d not present in roster", id)
		}
	}
	if len(got) != 2 {
		t.Errorf("expected 2 distinct mentions, got %d (%v)", len(got), got)
	}
}
