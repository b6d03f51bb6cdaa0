package model

import (
	"sort"
	"strings"
	"time"
)

type DiaryEntry struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Title     string     `json:"title"`
	Entry     string     `json:"entry"`
	Date      string     `json:"date"` // YYYY-MM-DD
	Tags      []string   `json:"tags"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// ParseTags splits a comma-separated tag string into an ordered list.
// Segments are trimmed and empty ones dropped; duplicates are kept.
func ParseTags(raw string) []string {
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// CollectTags returns the sorted set of distinct tags across entries, used
// to populate the tag filter drop-down.
func CollectTags(entries []DiaryEntry) []string {
	seen := map[string]bool{}
	var tags []string
	for _, e := range entries {
		for _, t := range e.Tags {
			if !seen[t] {
				seen[t] = true
				tags = append(tags, t)
			}
		}
	}
	sort.Strings(tags)
	return tags
}
