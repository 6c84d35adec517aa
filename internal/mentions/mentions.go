// Package mentions extracts @username references from free text against
// a family roster.
package mentions

import (
	"strings"

	"github.com/MYTEGROUP/MyteHomeAssistant/internal/models"
)

// Parse scans text for @username tokens and resolves them against the
// roster. Tokens are split on whitespace only; a candidate matches a
// roster entry on exact, case-sensitive username equality. Unresolved
// candidates are dropped. The result contains each matched user ID once,
// in first-seen order.
func Parse(text string, roster []models.User) []int64 {
	var mentioned []int64
	seen := make(map[int64]bool)

	for _, word := range strings.Fields(text) {
		if !strings.HasPrefix(word, "@") {
			continue
		}
		username := word[1:]
		for _, m := range roster {
			if m.Username == username && !seen[m.ID] {
				seen[m.ID] = true
				mentioned = append(mentioned, m.ID)
			}
		}
	}

	return mentioned
}
