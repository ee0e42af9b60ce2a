package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"newshub/adapter/feedxml"
	"newshub/domain"
	"newshub/internal/logger"
)

// Pipeline is the ingestion orchestrator: registry → fetch → parse →
// normalize → upsert, with failures contained at the source and item
// boundaries. One bad source or item never aborts the batch; everything
// that goes wrong becomes data in the returned report.
type Pipeline struct {
	registry domain.SourceRegistry
	store    domain.ArticleStore
	fetcher  domain.Fetcher
	notifier domain.Notifier
	throttle *Throttle
	log      *logger.Logger

	now func() time.Time
}

func NewPipeline(registry domain.SourceRegistry, store domain.ArticleStore, fetcher domain.Fetcher, log *logger.Logger) *Pipeline {
	if log == nil {
		log = logger.Nop()
	}
	return &Pipeline{
		registry: registry,
		store:    store,
		fetcher:  fetcher,
		log:      log,
		now:      time.Now,
	}
}

// WithNotifier attaches an optional post-ingest notifier.
func (p *Pipeline) WithNotifier(n domain.Notifier) *Pipeline {
	p.notifier = n
	return p
}

// WithThrottle attaches an optional per-source fetch throttle.
func (p *Pipeline) WithThrottle(t *Throttle) *Pipeline {
	p.throttle = t
	return p
}

// Run ingests every registered source. The report's Success flag is false
// only when the registry itself cannot be read; per-source failures are
// recorded in Results and the run still succeeds.
func (p *Pipeline) Run(ctx context.Context) domain.Report {
	sources, err := p.registry.ListSources(ctx)
	if err != nil {
		p.log.Error("listing sources failed", "err", err)
		return domain.Report{
			RunID:   uuid.NewString(),
			Success: false,
			Message: fmt.Sprintf("listing sources: %v", err),
			Results: []domain.IngestResult{},
		}
	}
	return p.RunSources(ctx, sources)
}

// RunSources ingests the given sources sequentially. An empty slice is a
// successful run with an empty results list.
func (p *Pipeline) RunSources(ctx context.Context, sources []domain.Source) domain.Report {
	runID := uuid.NewString()
	log := p.log.With("run_id", runID)

	results := make([]domain.IngestResult, 0, len(sources))
	total := 0
	for _, src := range sources {
		res := p.IngestSource(ctx, src)
		total += res.Count
		results = append(results, res)
	}

	log.Info("ingestion run finished", "sources", len(sources), "articles", total)
	return domain.Report{
		RunID:   runID,
		Success: true,
		Message: fmt.Sprintf("feeds updated, %d articles processed from %d sources", total, len(sources)),
		Results: results,
	}
}

// IngestSource runs the fetch→parse→normalize→persist pipeline for one
// source. Every failure is converted into the result; it never returns an
// error.
func (p *Pipeline) IngestSource(ctx context.Context, src domain.Source) domain.IngestResult {
	log := p.log.With("source_id", src.ID, "source", src.Name)

	if !p.throttle.Allow(src.ID) {
		log.Debug("source throttled, skipping this run")
		return domain.IngestResult{SourceID: src.ID, Status: domain.StatusSuccess, Count: 0}
	}

	data, err := p.fetcher.Fetch(ctx, src.RSSURL)
	if err != nil {
		log.Warn("feed fetch failed", "url", src.RSSURL, "err", err)
		return errResult(src.ID, fmt.Errorf("fetch: %w", err))
	}

	doc, err := feedxml.Parse(data)
	if err != nil {
		log.Warn("feed parse failed", "url", src.RSSURL, "err", err)
		return errResult(src.ID, fmt.Errorf("parse: %w", err))
	}

	items := feedxml.Items(doc)
	if len(items) == 0 {
		// An unrecognized or empty feed is zero items, not a failure.
		log.Debug("no items detected in feed")
		return domain.IngestResult{SourceID: src.ID, Status: domain.StatusSuccess, Count: 0}
	}

	now := p.now().UTC()
	drafts := make([]domain.ArticleDraft, 0, len(items))
	dropped := 0
	for _, item := range items {
		draft, ok := normalizeItem(log, item, src.ID, now)
		if !ok {
			dropped++
			continue
		}
		drafts = append(drafts, draft)
	}
	if dropped > 0 {
		log.Debug("dropped malformed items", "dropped", dropped, "total", len(items))
	}

	stored, failed := p.persist(ctx, log, drafts)

	if p.notifier != nil && len(stored) > 0 {
		if err := p.notifier.Published(ctx, stored); err != nil {
			log.Warn("publish notification failed", "err", err)
		}
	}

	res := domain.IngestResult{
		SourceID: src.ID,
		Status:   domain.StatusSuccess,
		Count:    len(stored),
		Dropped:  dropped,
	}
	if failed > 0 {
		res.Error = fmt.Sprintf("%d of %d upserts failed", failed, len(drafts))
		if len(stored) == 0 {
			res.Status = domain.StatusError
		}
	}
	return res
}

// persist attempts one bulk upsert and degrades to row-at-a-time writes
// when the bulk statement is rejected. It returns the URLs that were
// stored and how many rows still failed individually.
func (p *Pipeline) persist(ctx context.Context, log *logger.Logger, drafts []domain.ArticleDraft) (stored []string, failed int) {
	if len(drafts) == 0 {
		return nil, 0
	}

	err := p.store.UpsertArticles(ctx, drafts)
	if err == nil {
		stored = make([]string, len(drafts))
		for i, d := range drafts {
			stored[i] = d.URL
		}
		return stored, 0
	}
	log.Warn("bulk upsert failed, retrying per article", "articles", len(drafts), "err", err)

	for _, d := range drafts {
		if err := p.store.UpsertArticle(ctx, d); err != nil {
			log.Warn("article upsert failed", "url", d.URL, "err", err)
			failed++
			continue
		}
		stored = append(stored, d.URL)
	}
	return stored, failed
}

func errResult(sourceID string, err error) domain.IngestResult {
	return domain.IngestResult{
		SourceID: sourceID,
		Status:   domain.StatusError,
		Error:    err.Error(),
	}
}
