package repository

import (
	"strconv"
	"strings"
)

// ID lists embedded in single columns (message recipients, read
// receipts) are stored as comma-separated strings.

// joinIDs renders a list of IDs as a comma-separated string
func joinIDs(ids []int64) string {
	if len(ids) == 0 {
		return ""
	}
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatInt(id, 10))
	}
	return strings.Join(parts, ",")
}

// splitIDs parses a comma-separated ID string, skipping blanks and
// malformed entries
func splitIDs(s string) []int64 {
	if s == "" {
		return nil
	}
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// appendUniqueID adds id to the list if not already present
func appendUniqueID(ids []int64, id int64) []int64 {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

// joinList renders a string list (dietary preferences) as a
// comma-separated column value
func joinList(items []string) string {
	return strings.Join(items, ",")
}

// splitList parses a comma-separated string list, skipping blanks
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var items []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			items = append(items, part)
		}
	}
	return items
}
