// Ranks comparison scores and classifies them
// as duplicates, similar or related icons.
package report

import (
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"slices"
	"strings"
)

// Level is the classification of a similarity score.
type Level int

const (
	Unrelated Level = iota
	Related
	Similar
	Duplicate
)

func (l Level) String() string {
	switch l {
	case Related:
		return "related"
	case Similar:
		return "similar"
	case Duplicate:
		return "duplicate"
	default:
		return "unrelated"
	}
}

func (l Level) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

func (l *Level) UnmarshalText(text []byte) error {
	for _, candidate := range [...]Level{Unrelated, Related, Similar, Duplicate} {
		if candidate.String() == string(text) {
			*l = candidate
			return nil
		}
	}
	return fmt.Errorf("invalid level %q", text)
}

// Thresholds are the (exclusive) lower bounds of each level.
type Thresholds struct {
	Duplicate float64 `yaml:"duplicate_threshold" json:"duplicate"`
	Similar   float64 `yaml:"similar_threshold" json:"similar"`
	Related   float64 `yaml:"related_threshold" json:"related"`
}

// DefaultThresholds classifies scores above 90 as duplicates,
// above 70 as similar and above 50 as related.
var DefaultThresholds = Thresholds{Duplicate: 90, Similar: 70, Related: 50}

// Classify returns the level of `score`.
func (th Thresholds) Classify(score float64) Level {
	switch {
	case score > th.Duplicate:
		return Duplicate
	case score > th.Similar:
		return Similar
	case score > th.Related:
		return Related
	default:
		return Unrelated
	}
}

// Entry is one ranked candidate.
type Entry struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"` // rounded to one decimal
	Level Level   `json:"level"`
}

// Rank sorts the scores, highest first, breaking ties by name.
// If `limit` is positive, at most `limit` entries are returned.
func Rank(scores map[string]float64, th Thresholds, limit int) []Entry {
	out := make([]Entry, 0, len(scores))
	for name, score := range scores {
		out = append(out, Entry{Name: name, Score: math.Round(score*10) / 10, Level: th.Classify(score)})
	}
	slices.SortFunc(out, func(a, b Entry) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Count returns the number of entries of each level.
func Count(entries []Entry) map[Level]int {
	out := make(map[Level]int)
	for _, e := range entries {
		out[e.Level]++
	}
	return out
}

// WriteText writes one line per entry. If `color` is true, the
// levels are highlighted with terminal escape codes.
func WriteText(w io.Writer, entries []Entry, color bool) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "no candidate could be compared")
		return err
	}
	width := 0
	for _, e := range entries {
		width = max(width, len(e.Name))
	}
	for _, e := range entries {
		level := fmt.Sprintf("%-9s", e.Level)
		if color {
			level = decorate(level, e.Level)
		}
		if _, err := fmt.Fprintf(w, "%-*s %6.1f%%  %s\n", width, e.Name, e.Score, level); err != nil {
			return err
		}
	}
	return nil
}

// WriteJSON writes the entries as an indented JSON array.
func WriteJSON(w io.Writer, entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}
