package subtitles

import (
	"fmt"
	"slices"
	"time"
)

// Caption is one timed subtitle entry.
type Caption struct {
	Index int
	Start time.Duration
	End   time.Duration
	Text  string
}

// Track is a parsed subtitle file.
type Track struct {
	Path     string
	Encoding Encoding
	Captions []Caption
}

// OrderError reports the first caption whose start precedes its predecessor.
type OrderError struct {
	Position int
	Index    int
	Start    time.Duration
	Previous time.Duration
}

func (e *OrderError) Error() string {
	return fmt.Sprintf("caption %d (position %d) starts at %s before previous caption at %s",
		e.Index, e.Position+1, FormatTimestamp(e.Start), FormatTimestamp(e.Previous))
}

// CheckOrder returns an *OrderError when captions are not sorted by start time.
// Equal start times are allowed.
func CheckOrder(captions []Caption) error {
	for i := 1; i < len(captions); i++ {
		if captions[i].Start < captions[i-1].Start {
			return &OrderError{
				Position: i,
				Index:    captions[i].Index,
				Start:    captions[i].Start,
				Previous: captions[i-1].Start,
			}
		}
	}
	return nil
}

// SortByStart returns a copy of captions stably sorted by start time.
func SortByStart(captions []Caption) []Caption {
	sorted := slices.Clone(captions)
	slices.SortStableFunc(sorted, func(a, b Caption) int {
		switch {
		case a.Start < b.Start:
			return -1
		case a.Start > b.Start:
			return 1
		default:
			return 0
		}
	})
	return sorted
}
