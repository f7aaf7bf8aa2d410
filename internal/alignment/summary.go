package alignment

// Summary counts the outcome of one alignment run.
type Summary struct {
	Total     int
	Matched   int
	Unmatched int
}

// Summarize tallies matched and unmatched pairs.
func Summarize(pairs []Pair) Summary {
	s := Summary{Total: len(pairs)}
	for _, p := range pairs {
		if p.Matched {
			s.Matched++
		}
	}
	s.Unmatched = s.Total - s.Matched
	return s
}

// MatchRate returns the matched share as a percentage, or 0 for an empty run.
func (s Summary) MatchRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Matched) / float64(s.Total) * 100
}
