package subtitles

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseError describes the block that stopped parsing. Block and Line are 1-based.
type ParseError struct {
	Block  int
	Line   int
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("srt block %d (line %d): %s", e.Block, e.Line, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }

type srtBlock struct {
	firstLine int
	lines     []string
}

// Parse reads SRT text into captions in file order. Empty input yields no captions.
func Parse(text string) ([]Caption, error) {
	blocks := splitBlocks(text)
	captions := make([]Caption, 0, len(blocks))
	for i, block := range blocks {
		caption, err := parseBlock(block, i+1)
		if err != nil {
			return nil, err
		}
		captions = append(captions, caption)
	}
	return captions, nil
}

// splitBlocks groups non-blank lines separated by one or more blank lines.
func splitBlocks(text string) []srtBlock {
	text = strings.TrimPrefix(text, "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var blocks []srtBlock
	open := false
	for n, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, " \t")
		if strings.TrimSpace(line) == "" {
			open = false
			continue
		}
		if !open {
			blocks = append(blocks, srtBlock{firstLine: n + 1})
			open = true
		}
		last := &blocks[len(blocks)-1]
		last.lines = append(last.lines, line)
	}
	return blocks
}

func parseBlock(block srtBlock, number int) (Caption, error) {
	lines := block.lines
	index := number
	timing := 0

	if !strings.Contains(lines[0], "-->") {
		value, err := strconv.Atoi(strings.TrimSpace(lines[0]))
		if err != nil {
			return Caption{}, &ParseError{Block: number, Line: block.firstLine, Reason: "expected caption index or timing line", Err: err}
		}
		if len(lines) < 2 {
			return Caption{}, &ParseError{Block: number, Line: block.firstLine, Reason: "missing timing line"}
		}
		index = value
		timing = 1
	}

	start, end, err := parseTimingLine(lines[timing])
	if err != nil {
		return Caption{}, &ParseError{Block: number, Line: block.firstLine + timing, Reason: "invalid timing line", Err: err}
	}

	return Caption{
		Index: index,
		Start: start,
		End:   end,
		Text:  strings.Join(lines[timing+1:], "\n"),
	}, nil
}

// parseTimingLine accepts "00:00:01,234 --> 00:00:04,567" with optional
// position hints after the end time.
func parseTimingLine(line string) (time.Duration, time.Duration, error) {
	parts := strings.Split(line, "-->")
	if len(parts) != 2 {
		return 0, 0, errors.New("invalid timing separator")
	}
	start, err := parseTimestamp(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("start time: %w", err)
	}
	endFields := strings.Fields(parts[1])
	if len(endFields) == 0 {
		return 0, 0, errors.New("end time: empty timestamp")
	}
	end, err := parseTimestamp(endFields[0])
	if err != nil {
		return 0, 0, fmt.Errorf("end time: %w", err)
	}
	return start, end, nil
}

// parseTimestamp reads HH:MM:SS,mmm. A period is accepted as the decimal
// separator and short fractions are right-padded (",5" is 500ms).
func parseTimestamp(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, errors.New("empty timestamp")
	}
	clock, fraction, ok := strings.Cut(strings.Replace(value, ".", ",", 1), ",")
	if !ok || fraction == "" || len(fraction) > 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(clock, ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	parts := append(hms, fraction+strings.Repeat("0", 3-len(fraction)))
	var fields [4]int
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid timestamp %q", value)
		}
		fields[i] = n
	}
	if fields[1] > 59 || fields[2] > 59 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	return time.Duration(fields[0])*time.Hour +
		time.Duration(fields[1])*time.Minute +
		time.Duration(fields[2])*time.Second +
		time.Duration(fields[3])*time.Millisecond, nil
}

// FormatTimestamp renders d as an SRT timestamp. Negative durations clamp to zero.
func FormatTimestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	d -= s * time.Second
	return fmt.Sprintf("%02d:%02d:%02d,%03d", int(h), int(m), int(s), int(d/time.Millisecond))
}
