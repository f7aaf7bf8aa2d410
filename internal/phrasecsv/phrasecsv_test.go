package phrasecsv_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"phrasebook/internal/alignment"
	"phrasebook/internal/config"
	"phrasebook/internal/dictionary"
	"phrasebook/internal/phrasecsv"
	"phrasebook/internal/services"
	"phrasebook/internal/testsupport"
)

const bom = "\ufeff"

func samplePairs() []alignment.Pair {
	return []alignment.Pair{
		{
			SourceIndex: 1, SourceText: "Hello",
			SourceStart: time.Second, SourceEnd: 2 * time.Second,
			TargetText: "こんにちは", TargetStart: 1050 * time.Millisecond, TargetEnd: 1900 * time.Millisecond,
			TargetFirst: 0, TargetLast: 0, Matched: true,
		},
		{
			SourceIndex: 2, SourceText: "Hi",
			SourceStart: 3 * time.Second, SourceEnd: 3050 * time.Millisecond,
			TargetFirst: -1, TargetLast: -1,
		},
	}
}

func TestWritePairsDictionaryLayout(t *testing.T) {
	var buf bytes.Buffer
	if err := phrasecsv.WritePairs(&buf, samplePairs(), phrasecsv.PairsOptions{}); err != nil {
		t.Fatalf("WritePairs: %v", err)
	}
	want := bom +
		"source,target,context,tags,eng_start,eng_end,jpn_start,jpn_end\n" +
		"Hello,こんにちは,Time: 0:00:01,,0:00:01,0:00:02,0:00:01.050000,0:00:01.900000\n" +
		"Hi,[要確認],Time: 0:00:03 (マッチなし),unmatched,0:00:03,0:00:03.050000,,\n"
	if buf.String() != want {
		t.Fatalf("unexpected output:\n%q\nwant:\n%q", buf.String(), want)
	}
}

func TestWritePairsPairsLayout(t *testing.T) {
	var buf bytes.Buffer
	opts := phrasecsv.PairsOptions{Layout: config.LayoutPairs}
	if err := phrasecsv.WritePairs(&buf, samplePairs(), opts); err != nil {
		t.Fatalf("WritePairs: %v", err)
	}
	want := "source,target,eng_start,eng_end,jpn_start,jpn_end\n" +
		"Hello,こんにちは,0:00:01,0:00:02,0:00:01.050000,0:00:01.900000\n" +
		"Hi,,0:00:03,0:00:03.050000,,\n"
	if buf.String() != want {
		t.Fatalf("unexpected output:\n%q\nwant:\n%q", buf.String(), want)
	}
}

func TestWritePairsRejectsUnknownLayout(t *testing.T) {
	var buf bytes.Buffer
	if err := phrasecsv.WritePairs(&buf, nil, phrasecsv.PairsOptions{Layout: "xlsx"}); err == nil {
		t.Fatal("expected error for unknown layout")
	}
}

func TestReadDictionaryRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pairs.csv")
	if err := phrasecsv.WritePairsFile(path, samplePairs(), phrasecsv.PairsOptions{Marker: "[TODO]"}); err != nil {
		t.Fatalf("WritePairsFile: %v", err)
	}

	sheet, err := phrasecsv.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !sheet.HasContext || !sheet.HasTags {
		t.Fatalf("expected context and tags columns, got %v", sheet.Header)
	}
	if sheet.Header[0] != "source" {
		t.Fatalf("expected BOM stripped from header, got %q", sheet.Header[0])
	}
	if len(sheet.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(sheet.Rows))
	}
	first, second := sheet.Rows[0], sheet.Rows[1]
	if first.Line != 2 || first.Phrase.Target != "こんにちは" || first.Skippable("[TODO]") {
		t.Fatalf("unexpected first row %+v", first)
	}
	if second.Phrase.Tags != phrasecsv.UnmatchedTag || !second.Skippable("[TODO]") {
		t.Fatalf("expected marker row to be skippable: %+v", second)
	}
}

func TestReadRequiresSourceAndTarget(t *testing.T) {
	_, err := phrasecsv.Read(strings.NewReader("english,japanese\nHello,こんにちは\n"))
	if !errors.Is(err, phrasecsv.ErrMissingColumns) {
		t.Fatalf("expected ErrMissingColumns, got %v", err)
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation class, got %v", err)
	}

	if _, err := phrasecsv.Read(strings.NewReader("")); !errors.Is(err, phrasecsv.ErrMissingColumns) {
		t.Fatalf("expected ErrMissingColumns for empty input, got %v", err)
	}
}

func TestReadCollectsRowErrors(t *testing.T) {
	input := "Target,Source\n" +
		"やあ,Hey\n" +
		",\n" +
		"空,\n" +
		"短い\n"
	sheet, err := phrasecsv.Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if sheet.HasContext || sheet.HasTags {
		t.Fatal("did not expect optional columns")
	}
	if len(sheet.Rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(sheet.Rows))
	}
	if sheet.Rows[0].Err != nil || sheet.Rows[0].Phrase.Source != "Hey" {
		t.Fatalf("unexpected first row %+v", sheet.Rows[0])
	}
	for _, row := range sheet.Rows[1:] {
		if !errors.Is(row.Err, services.ErrValidation) {
			t.Fatalf("expected validation error on line %d, got %v", row.Line, row.Err)
		}
	}
	if valid := sheet.Valid(); len(valid) != 1 {
		t.Fatalf("expected one valid row, got %d", len(valid))
	}
}

func TestRowSkippable(t *testing.T) {
	tests := []struct {
		target string
		want   bool
	}{
		{"", true},
		{"   ", true},
		{"[要確認]", true},
		{"こんにちは", false},
	}
	for _, tt := range tests {
		row := phrasecsv.Row{Phrase: dictionary.Input{Source: "x", Target: tt.target}}
		if got := row.Skippable("[要確認]"); got != tt.want {
			t.Errorf("Skippable(%q) = %v, want %v", tt.target, got, tt.want)
		}
	}
}

func TestMergeKeepsFirstDuplicate(t *testing.T) {
	dir := t.TempDir()
	a := testsupport.WriteFile(t, filepath.Join(dir, "a.csv"), "source,target\nHello,こんにちは\nBye,さようなら\n")
	b := testsupport.WriteFile(t, filepath.Join(dir, "b.csv"), bom+"source,target,context\nHello,やあ,ep2\nThanks,ありがとう,ep2\n")
	missing := filepath.Join(dir, "missing.csv")
	bad := testsupport.WriteFile(t, filepath.Join(dir, "bad.csv"), "foo,bar\n1,2\n")
	out := filepath.Join(dir, "out", "merged.csv")

	result, err := phrasecsv.Merge([]string{a, missing, b, bad}, out, phrasecsv.MergeOptions{})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if result.Files != 2 || result.Skipped != 2 {
		t.Fatalf("unexpected file counts %+v", result)
	}
	if result.Rows != 4 || result.Unique != 3 || result.Duplicates != 1 {
		t.Fatalf("unexpected row counts %+v", result)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read merged: %v", err)
	}
	want := bom + "source,target,context\nHello,こんにちは,\nBye,さようなら,\nThanks,ありがとう,ep2\n"
	if string(data) != want {
		t.Fatalf("unexpected merged output:\n%q\nwant:\n%q", data, want)
	}
}

func TestMergeFailsWithoutReadableInputs(t *testing.T) {
	dir := t.TempDir()
	_, err := phrasecsv.Merge([]string{filepath.Join(dir, "nope.csv")}, filepath.Join(dir, "out.csv"), phrasecsv.MergeOptions{})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "out.csv")); !os.IsNotExist(statErr) {
		t.Fatal("expected no output file")
	}
}

func TestWriteExport(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
	phrases := []*dictionary.Phrase{
		{ID: 7, Source: "Hello", Target: "こんにちは", Context: "Time: 0:00:01", Tags: "greeting", CreatedAt: created, UsageCount: 3},
		{ID: 2, Source: "Bye, now", Target: "じゃあね"},
	}
	var buf bytes.Buffer
	if err := phrasecsv.WriteExport(&buf, phrases); err != nil {
		t.Fatalf("WriteExport: %v", err)
	}
	want := bom +
		"id,source,target,context,tags,created_at,usage_count\n" +
		"7,Hello,こんにちは,Time: 0:00:01,greeting,2024-05-01T12:30:00Z,3\n" +
		"2,\"Bye, now\",じゃあね,,,,0\n"
	if buf.String() != want {
		t.Fatalf("unexpected export:\n%q\nwant:\n%q", buf.String(), want)
	}
}
