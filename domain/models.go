package domain

import "time"

type Source struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time
	Name      string
	RSSURL    string
}

// Article is the stored record shape, keyed by URL.
type Article struct {
	ID          string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Title       string
	URL         string
	Content     string
	PublishedAt time.Time
	SourceID    string
	Verified    bool
}

// ArticleDraft is a normalized, not-yet-persisted article produced by the
// ingestion pipeline. A draft always carries a non-empty Title and URL;
// raw items that cannot satisfy that are dropped before a draft exists.
type ArticleDraft struct {
	Title       string
	URL         string
	Content     string
	PublishedAt time.Time
	SourceID    string
	Verified    bool
}

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// IngestResult is the per-source outcome of one ingestion run.
type IngestResult struct {
	SourceID string `json:"sourceId"`
	Status   string `json:"status"`
	Count    int    `json:"count"`
	Error    string `json:"error,omitempty"`

	// Dropped counts raw items discarded for missing title/url. Diagnostic
	// only, not part of the response payload.
	Dropped int `json:"-"`
}

// Report aggregates one run. Success is false only when the source
// registry itself could not be read; per-source failures live in Results.
type Report struct {
	RunID   string         `json:"runId,omitempty"`
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Results []IngestResult `json:"results"`
}

func (r Report) Processed() int {
	total := 0
	for _, res := range r.Results {
		total += res.Count
	}
	return total
}
