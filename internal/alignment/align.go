package alignment

import (
	"strings"
	"time"

	"phrasebook/internal/subtitles"
)

const (
	// DefaultMinOverlap is the shortest shared interval that counts as a match.
	DefaultMinOverlap = 100 * time.Millisecond
	// DefaultSlack is how far past the source end a target may start before
	// the scan for that source stops.
	DefaultSlack = 2 * time.Second
)

// Options tunes Align. Zero values use the defaults.
type Options struct {
	MinOverlap time.Duration
	Slack      time.Duration
	// Progress, when set, is called roughly every tenth of the source track.
	Progress func(done, total int)
}

// Pair is the alignment result for one source caption. Target fields are
// zero and TargetFirst/TargetLast are -1 when nothing matched.
type Pair struct {
	SourceIndex int
	SourceText  string
	SourceStart time.Duration
	SourceEnd   time.Duration
	TargetText  string
	TargetStart time.Duration
	TargetEnd   time.Duration
	TargetFirst int
	TargetLast  int
	Matched     bool
}

// Align pairs each source caption with the target captions that overlap it.
// Inputs are read once and never modified.
func Align(source, target []subtitles.Caption, opts Options) []Pair {
	minOverlap := opts.MinOverlap
	if minOverlap <= 0 {
		minOverlap = DefaultMinOverlap
	}
	slack := opts.Slack
	if slack <= 0 {
		slack = DefaultSlack
	}
	step := max(1, len(source)/10)

	pairs := make([]Pair, 0, len(source))
	cursor := 0
	for i, src := range source {
		pair := Pair{
			SourceIndex: src.Index,
			SourceText:  Normalize(src.Text),
			SourceStart: src.Start,
			SourceEnd:   src.End,
			TargetFirst: -1,
			TargetLast:  -1,
		}

		var texts []string
		for k := cursor; k < len(target); k++ {
			tgt := target[k]
			if overlaps(src.Start, src.End, tgt.Start, tgt.End, minOverlap) {
				texts = append(texts, Normalize(tgt.Text))
				if pair.TargetFirst < 0 {
					pair.TargetFirst = k
				}
				pair.TargetLast = k
			}
			if tgt.Start > src.End+slack {
				break
			}
		}

		if pair.TargetFirst >= 0 {
			pair.Matched = true
			pair.TargetText = strings.Join(texts, " ")
			pair.TargetStart = target[pair.TargetFirst].Start
			pair.TargetEnd = target[pair.TargetLast].End
			cursor = pair.TargetLast + 1
		}
		pairs = append(pairs, pair)

		if opts.Progress != nil && (i+1)%step == 0 {
			opts.Progress(i+1, len(source))
		}
	}
	return pairs
}

// overlaps reports whether [aStart,aEnd] and [bStart,bEnd] share at least
// minOverlap. Disjoint intervals give a negative shared span.
func overlaps(aStart, aEnd, bStart, bEnd, minOverlap time.Duration) bool {
	return min(aEnd, bEnd)-max(aStart, bStart) >= minOverlap
}
