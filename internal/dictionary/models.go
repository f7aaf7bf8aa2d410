package dictionary

import (
	"strings"
	"time"
)

// Phrase is one stored translation.
type Phrase struct {
	ID         int64
	Source     string
	Target     string
	Context    string
	Tags       string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	UsageCount int64
}

// TagList splits the comma separated tags column.
func (p Phrase) TagList() []string {
	var tags []string
	for _, tag := range strings.Split(p.Tags, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// Input carries the writable fields of a phrase.
type Input struct {
	Source  string
	Target  string
	Context string
	Tags    string
}

func (in Input) normalized() Input {
	return Input{
		Source:  strings.TrimSpace(in.Source),
		Target:  strings.TrimSpace(in.Target),
		Context: strings.TrimSpace(in.Context),
		Tags:    strings.TrimSpace(in.Tags),
	}
}

// UpsertResult reports which row an upsert touched.
type UpsertResult struct {
	ID      int64
	Created bool
}

// ImportStats summarizes a batch import.
type ImportStats struct {
	Imported int
	Updated  int
}

// Total is the number of rows written.
func (s ImportStats) Total() int {
	return s.Imported + s.Updated
}

// ListOptions narrows List. Zero values list everything.
type ListOptions struct {
	Limit int
	Tag   string
}

// SourceRef is the minimal view used for fuzzy matching.
type SourceRef struct {
	ID     int64
	Source string
}
