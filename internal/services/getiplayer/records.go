package getiplayer

import (
	"encoding/json"
	"strconv"
	"strings"
)

// looseString tolerates upstream fields that arrive as either JSON strings
// or bare numbers. get_iplayer's JSON output is not consistent about this.
type looseString string

func (l *looseString) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*l = ""
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = looseString(s)
		return nil
	}
	*l = looseString(trimmed)
	return nil
}

// RawCatalogEntry is one record from the upstream catalog as the fetch tool
// reports it. Every field is optional upstream; consumers default missing
// values at the boundary instead of deep in business logic.
type RawCatalogEntry struct {
	PID            string      `json:"pid"`
	Name           string      `json:"name"`
	Desc           string      `json:"desc"`
	Episode        string      `json:"episode"`
	FirstBroadcast string      `json:"firstbcast"`
	Duration       looseString `json:"duration"`
	Channel        string      `json:"channel"`
	Categories     string      `json:"categories"`
	Thumbnail      string      `json:"thumbnail"`
	Guidance       string      `json:"guidance"`
	Web            string      `json:"web"`
}

// DurationSeconds parses the loosely-typed duration field, returning 0 when
// it is absent or malformed.
func (e RawCatalogEntry) DurationSeconds() int {
	value := strings.TrimSpace(string(e.Duration))
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds < 0 {
		return 0
	}
	return seconds
}

// CategoryList splits the comma-separated categories field.
func (e RawCatalogEntry) CategoryList() []string {
	if strings.TrimSpace(e.Categories) == "" {
		return nil
	}
	parts := strings.Split(e.Categories, ",")
	categories := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			categories = append(categories, trimmed)
		}
	}
	return categories
}

// FetchResult reports the outcome of one download invocation.
type FetchResult struct {
	PID        string
	Success    bool
	OutputPath string
	Stdout     string
	Stderr     string
}
