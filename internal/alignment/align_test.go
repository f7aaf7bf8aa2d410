package alignment_test

import (
	"math/rand/v2"
	"testing"
	"time"

	"phrasebook/internal/alignment"
	"phrasebook/internal/subtitles"
)

func ms(v int) time.Duration { return time.Duration(v) * time.Millisecond }

func caption(index, start, end int, text string) subtitles.Caption {
	return subtitles.Caption{Index: index, Start: ms(start), End: ms(end), Text: text}
}

func TestAlignSingleOverlap(t *testing.T) {
	pairs := alignment.Align(
		[]subtitles.Caption{caption(1, 1000, 2000, "Hello")},
		[]subtitles.Caption{caption(1, 1050, 1900, "こんにちは")},
		alignment.Options{},
	)
	if len(pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(pairs))
	}
	p := pairs[0]
	if !p.Matched || p.SourceText != "Hello" || p.TargetText != "こんにちは" {
		t.Fatalf("unexpected pair: %+v", p)
	}
	if p.TargetStart != ms(1050) || p.TargetEnd != ms(1900) {
		t.Fatalf("unexpected target bounds: %s-%s", p.TargetStart, p.TargetEnd)
	}
}

func TestAlignInsufficientOverlapLeavesCursor(t *testing.T) {
	source := []subtitles.Caption{
		caption(1, 1000, 1050, "Hi"),
		caption(2, 1200, 2000, "There"),
	}
	target := []subtitles.Caption{caption(1, 1200, 2000, "そこ")}

	pairs := alignment.Align(source, target, alignment.Options{})
	if pairs[0].Matched || pairs[0].TargetText != "" || pairs[0].TargetFirst != -1 {
		t.Fatalf("expected first source unmatched, got %+v", pairs[0])
	}
	if pairs[0].TargetStart != 0 || pairs[0].TargetEnd != 0 {
		t.Fatalf("expected zero target bounds, got %+v", pairs[0])
	}
	if !pairs[1].Matched || pairs[1].TargetFirst != 0 {
		t.Fatalf("expected cursor to stay at 0 so second source matches, got %+v", pairs[1])
	}
}

func TestAlignJoinsMultipleTargets(t *testing.T) {
	pairs := alignment.Align(
		[]subtitles.Caption{caption(1, 0, 4000, "Long line")},
		[]subtitles.Caption{caption(1, 0, 2000, "A"), caption(2, 2000, 4000, "B")},
		alignment.Options{},
	)
	p := pairs[0]
	if p.TargetText != "A B" {
		t.Fatalf("expected joined text, got %q", p.TargetText)
	}
	if p.TargetStart != 0 || p.TargetEnd != ms(4000) {
		t.Fatalf("unexpected bounds %s-%s", p.TargetStart, p.TargetEnd)
	}
	if p.TargetFirst != 0 || p.TargetLast != 1 {
		t.Fatalf("unexpected consumed range %d..%d", p.TargetFirst, p.TargetLast)
	}
}

func TestAlignNormalizesText(t *testing.T) {
	pairs := alignment.Align(
		[]subtitles.Caption{caption(1, 0, 1000, "line one\r\nline  two")},
		[]subtitles.Caption{caption(1, 0, 1000, " 一行目\n二行目 ")},
		alignment.Options{},
	)
	if pairs[0].SourceText != "line one line two" {
		t.Fatalf("unexpected source text %q", pairs[0].SourceText)
	}
	if pairs[0].TargetText != "一行目 二行目" {
		t.Fatalf("unexpected target text %q", pairs[0].TargetText)
	}
}

func TestAlignFirstComeOwnsTarget(t *testing.T) {
	source := []subtitles.Caption{
		caption(1, 0, 2000, "first"),
		caption(2, 500, 2000, "second"),
	}
	target := []subtitles.Caption{caption(1, 0, 2000, "shared")}

	pairs := alignment.Align(source, target, alignment.Options{})
	if !pairs[0].Matched {
		t.Fatal("expected first source to claim the shared target")
	}
	if pairs[1].Matched {
		t.Fatalf("expected consumed target to be unavailable, got %+v", pairs[1])
	}
}

func TestAlignStopsScanPastSlack(t *testing.T) {
	source := []subtitles.Caption{
		caption(1, 0, 1000, "early"),
		caption(2, 4000, 5000, "late"),
	}
	// The second target overlaps the first source but sits behind a target
	// that starts more than the slack after the source ends.
	target := []subtitles.Caption{
		caption(1, 4000, 5000, "遅い"),
		caption(2, 200, 900, "早い"),
	}

	pairs := alignment.Align(source, target, alignment.Options{})
	if pairs[0].Matched {
		t.Fatalf("expected scan to stop before the overlapping target, got %+v", pairs[0])
	}
	if !pairs[1].Matched || pairs[1].TargetText != "遅い" {
		t.Fatalf("unexpected second pair %+v", pairs[1])
	}

	wide := alignment.Align(source, target, alignment.Options{Slack: 10 * time.Second})
	if !wide[0].Matched || wide[0].TargetText != "早い" {
		t.Fatalf("expected wider slack to reach the overlapping target, got %+v", wide[0])
	}
}

func TestAlignMinOverlapIsInclusive(t *testing.T) {
	source := []subtitles.Caption{caption(1, 0, 1000, "edge")}
	exact := alignment.Align(source, []subtitles.Caption{caption(1, 900, 2000, "ぴったり")}, alignment.Options{})
	if !exact[0].Matched {
		t.Fatal("expected exactly 100ms overlap to match")
	}
	short := alignment.Align(source, []subtitles.Caption{caption(1, 901, 2000, "足りない")}, alignment.Options{})
	if short[0].Matched {
		t.Fatal("expected 99ms overlap to miss")
	}
	custom := alignment.Align(source, []subtitles.Caption{caption(1, 950, 2000, "短い")}, alignment.Options{MinOverlap: 50 * time.Millisecond})
	if !custom[0].Matched {
		t.Fatal("expected custom min overlap to apply")
	}
}

func TestAlignEmptyInputs(t *testing.T) {
	if pairs := alignment.Align(nil, []subtitles.Caption{caption(1, 0, 1000, "x")}, alignment.Options{}); len(pairs) != 0 {
		t.Fatalf("expected no pairs for empty source, got %d", len(pairs))
	}
	pairs := alignment.Align([]subtitles.Caption{caption(1, 0, 1000, "x")}, nil, alignment.Options{})
	if len(pairs) != 1 || pairs[0].Matched {
		t.Fatalf("expected one unmatched pair, got %+v", pairs)
	}
}

func TestAlignDoesNotMutateInputs(t *testing.T) {
	source := []subtitles.Caption{caption(1, 0, 1000, " a\r\n")}
	target := []subtitles.Caption{caption(1, 0, 1000, " b ")}
	alignment.Align(source, target, alignment.Options{})
	if source[0].Text != " a\r\n" || target[0].Text != " b " {
		t.Fatal("expected inputs to be left untouched")
	}
}

func TestAlignReportsProgress(t *testing.T) {
	source := make([]subtitles.Caption, 25)
	for i := range source {
		source[i] = caption(i+1, i*1000, i*1000+500, "x")
	}
	var calls []int
	alignment.Align(source, nil, alignment.Options{Progress: func(done, total int) {
		if total != 25 {
			t.Fatalf("unexpected total %d", total)
		}
		calls = append(calls, done)
	}})
	if len(calls) != 12 || calls[0] != 2 || calls[len(calls)-1] != 24 {
		t.Fatalf("unexpected progress calls %v", calls)
	}
}

func TestAlignProperties(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	track := func(n int) []subtitles.Caption {
		out := make([]subtitles.Caption, n)
		at := 0
		for i := range out {
			at += rng.IntN(1500)
			out[i] = caption(i+1, at, at+100+rng.IntN(3000), "t")
		}
		return out
	}

	for round := 0; round < 50; round++ {
		source := track(rng.IntN(40))
		target := track(rng.IntN(40))
		pairs := alignment.Align(source, target, alignment.Options{})

		if len(pairs) != len(source) {
			t.Fatalf("round %d: %d pairs for %d sources", round, len(pairs), len(source))
		}
		last := -1
		for i, p := range pairs {
			if p.SourceIndex != source[i].Index {
				t.Fatalf("round %d: pair %d out of source order", round, i)
			}
			if !p.Matched {
				if p.TargetText != "" || p.TargetFirst != -1 {
					t.Fatalf("round %d: unmatched pair carries target data %+v", round, p)
				}
				continue
			}
			if p.TargetFirst <= last || p.TargetLast < p.TargetFirst {
				t.Fatalf("round %d: target indices not strictly increasing at pair %d", round, i)
			}
			last = p.TargetLast
		}
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []string{"", "  ", "a\r\nb", "\tx  y\n\nz ", "全角　スペース", "already clean"}
	for _, in := range inputs {
		once := alignment.Normalize(in)
		if twice := alignment.Normalize(once); twice != once {
			t.Fatalf("Normalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
	if got := alignment.Normalize("line one\r\nline  two"); got != "line one line two" {
		t.Fatalf("unexpected normalization %q", got)
	}
}

func TestSummarize(t *testing.T) {
	s := alignment.Summarize([]alignment.Pair{{Matched: true}, {Matched: false}, {Matched: true}, {Matched: true}})
	if s.Total != 4 || s.Matched != 3 || s.Unmatched != 1 {
		t.Fatalf("unexpected summary %+v", s)
	}
	if s.MatchRate() != 75 {
		t.Fatalf("unexpected match rate %f", s.MatchRate())
	}
	if rate := alignment.Summarize(nil).MatchRate(); rate != 0 {
		t.Fatalf("expected zero rate for empty run, got %f", rate)
	}
}
