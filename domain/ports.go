package domain

import (
	"context"
	"time"
)

// SourceRegistry is the read/admin surface over registered feed sources.
type SourceRegistry interface {
	Ensure(ctx context.Context) error
	ListSources(ctx context.Context) ([]Source, error)
	AddSource(ctx context.Context, name, rssURL string) error
	DeleteSource(ctx context.Context, name string) (int64, error)
	GetSourceByName(ctx context.Context, name string) (Source, error)
	ListArticlesBySource(ctx context.Context, sourceID string, limit int) ([]Article, error)
	GetStaleSources(ctx context.Context, limit int) ([]Source, error)
	MarkSourcePolled(ctx context.Context, sourceID string) error
}

// ArticleStore is the idempotent upsert-by-URL write surface. Both forms
// are last-write-wins on URL collision; UpsertArticle is the row-at-a-time
// fallback used when the bulk form is rejected.
type ArticleStore interface {
	UpsertArticles(ctx context.Context, drafts []ArticleDraft) error
	UpsertArticle(ctx context.Context, draft ArticleDraft) error
}

// Fetcher retrieves raw feed bytes.
type Fetcher interface {
	Fetch(ctx context.Context, feedURL string) ([]byte, error)
}

// Notifier is told about persisted article URLs after a source is ingested.
type Notifier interface {
	Published(ctx context.Context, urls []string) error
}

// Ingestor runs the full pipeline over the registry.
type Ingestor interface {
	Run(ctx context.Context) Report
}

// Service exposes application-level controls for background processing.
type Service interface {
	Start(ctx context.Context) error
	Stop() error

	SetInterval(d time.Duration)
	Resize(workers int) error
	CurrentInterval() time.Duration
	CurrentWorkers() int
}
