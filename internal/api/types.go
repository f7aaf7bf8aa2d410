package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Phrase describes a dictionary entry in a transport-friendly format.
type Phrase struct {
	ID         int64    `json:"id"`
	Source     string   `json:"source"`
	Target     string   `json:"target"`
	Context    string   `json:"context,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	UsageCount int64    `json:"usageCount"`
	CreatedAt  string   `json:"createdAt,omitempty"`
	UpdatedAt  string   `json:"updatedAt,omitempty"`
}

// Candidate is a ranked search hit.
type Candidate struct {
	Rank   int     `json:"rank"`
	Score  float64 `json:"score"`
	Phrase Phrase  `json:"phrase"`
}

// ActivityEntry is one audit log record.
type ActivityEntry struct {
	Timestamp string `json:"timestamp"`
	User      string `json:"user"`
	Action    string `json:"action"`
	Details   string `json:"details,omitempty"`
}

// AlignSummary reports how many source captions found a translation.
type AlignSummary struct {
	Total     int     `json:"total"`
	Matched   int     `json:"matched"`
	Unmatched int     `json:"unmatched"`
	MatchRate float64 `json:"matchRate"`
}

// ImportSummary reports the rows written by an import.
type ImportSummary struct {
	Imported int `json:"imported"`
	Updated  int `json:"updated"`
	Skipped  int `json:"skipped"`
	Invalid  int `json:"invalid"`
}

// MergeSummary reports a merge run.
type MergeSummary struct {
	Output     string `json:"output"`
	Files      int    `json:"files"`
	Skipped    int    `json:"skippedFiles"`
	Rows       int    `json:"rows"`
	Unique     int    `json:"unique"`
	Duplicates int    `json:"duplicates"`
	Invalid    int    `json:"invalid"`
}

// CheckResult mirrors one readiness check.
type CheckResult struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status  string        `json:"status"`
	Phrases int           `json:"phrases"`
	Checks  []CheckResult `json:"checks,omitempty"`
}

// PhraseListResponse wraps a collection of phrases.
type PhraseListResponse struct {
	Phrases []Phrase `json:"phrases"`
}

// PhraseResponse wraps a single phrase.
type PhraseResponse struct {
	Phrase  Phrase `json:"phrase"`
	Created bool   `json:"created,omitempty"`
}

// SearchResponse wraps ranked candidates.
type SearchResponse struct {
	Query      string      `json:"query"`
	Limit      int         `json:"limit"`
	Candidates []Candidate `json:"candidates"`
}

// ActivityResponse wraps audit log entries.
type ActivityResponse struct {
	Entries []ActivityEntry `json:"entries"`
}

// LoginRequest is the JSON body accepted by the login endpoint.
type LoginRequest struct {
	User     string `json:"user"`
	Password string `json:"password"`
}

// LoginResponse carries a bearer token.
type LoginResponse struct {
	Token     string `json:"token"`
	User      string `json:"user"`
	ExpiresAt string `json:"expiresAt"`
}

// UpsertRequest is the JSON body for creating or updating a phrase.
type UpsertRequest struct {
	Source  string `json:"source"`
	Target  string `json:"target"`
	Context string `json:"context"`
	Tags    string `json:"tags"`
}

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}
