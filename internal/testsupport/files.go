package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// Cue describes one SRT block for WriteSRT. Times are in milliseconds.
type Cue struct {
	Start int
	End   int
	Text  string
}

// WriteSRT renders cues as an SRT file under dir and returns its path.
func WriteSRT(t testing.TB, dir, name string, cues ...Cue) string {
	t.Helper()

	var b strings.Builder
	for i, cue := range cues {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n", i+1, srtTime(cue.Start), srtTime(cue.End), cue.Text)
	}
	return WriteFile(t, filepath.Join(dir, name), b.String())
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path, content string) string {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func srtTime(ms int) string {
	d := time.Duration(ms) * time.Millisecond
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	d -= s * time.Second
	return fmt.Sprintf("%02d:%02d:%02d,%03d", int(h), int(m), int(s), int(d/time.Millisecond))
}
