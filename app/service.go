package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"newshub/domain"
	"newshub/internal/logger"
)

// IngestService runs the pipeline periodically over a resizable worker
// pool. Sources are processed concurrently and independently; each worker
// executes the sequential fetch→parse→normalize→persist pipeline for one
// source at a time.
type IngestService struct {
	pipeline *Pipeline
	registry domain.SourceRegistry
	log      *logger.Logger

	mu             sync.Mutex
	interval       time.Duration
	workers        int
	jobs           chan domain.Source
	ctx            context.Context
	cancel         context.CancelFunc
	tickerStopChan chan struct{}
	started        bool
	workerCancels  []context.CancelFunc
}

func NewIngestService(pipeline *Pipeline, registry domain.SourceRegistry, interval time.Duration, workers int, log *logger.Logger) *IngestService {
	if log == nil {
		log = logger.Nop()
	}
	return &IngestService{pipeline: pipeline, registry: registry, interval: interval, workers: workers, log: log}
}

func (s *IngestService) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return errors.New("ingest service already started")
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	if s.jobs == nil {
		s.jobs = make(chan domain.Source)
	}
	s.tickerStopChan = make(chan struct{})
	s.workerCancels = nil
	s.startWorkers(s.workers)
	go s.loop()
	s.started = true
	return nil
}

func (s *IngestService) Stop() error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	cancel := s.cancel
	stopCh := s.tickerStopChan
	cancels := append([]context.CancelFunc(nil), s.workerCancels...)
	s.started = false
	s.mu.Unlock()

	close(stopCh)
	cancel()
	for _, c := range cancels {
		c()
	}
	return nil
}

func (s *IngestService) SetInterval(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		s.interval = d
		return
	}
	close(s.tickerStopChan)
	s.tickerStopChan = make(chan struct{})
	s.interval = d
}

func (s *IngestService) Resize(workers int) error {
	if workers <= 0 {
		return errors.New("workers must be > 0")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.workers == workers {
		return nil
	}
	if workers > s.workers {
		s.startWorkers(workers - s.workers)
	} else {
		delta := s.workers - workers
		for i := 0; i < delta && len(s.workerCancels) > 0; i++ {
			idx := len(s.workerCancels) - 1
			c := s.workerCancels[idx]
			s.workerCancels = s.workerCancels[:idx]
			c()
		}
	}
	s.workers = workers
	return nil
}

func (s *IngestService) CurrentInterval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

func (s *IngestService) CurrentWorkers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.workers
}

func (s *IngestService) loop() {
	for {
		s.mu.Lock()
		interval := s.interval
		stopCh := s.tickerStopChan
		jobs := s.jobs
		workers := s.workers
		s.mu.Unlock()

		ticker := time.NewTicker(interval)
		select {
		case <-s.ctx.Done():
			ticker.Stop()
			return
		case <-stopCh:
			ticker.Stop()
			continue
		case <-ticker.C:
		}

		sources, err := s.registry.GetStaleSources(s.ctx, workers)
		if err != nil {
			s.log.Warn("fetching stale sources failed", "err", err)
			continue
		}
		for _, src := range sources {
			select {
			case jobs <- src:
			case <-s.ctx.Done():
				return
			}
		}
	}
}

func (s *IngestService) startWorkers(count int) {
	for i := 0; i < count; i++ {
		wctx, cancel := context.WithCancel(s.ctx)
		s.workerCancels = append(s.workerCancels, cancel)
		go s.worker(wctx)
	}
}

func (s *IngestService) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case src, ok := <-s.jobs:
			if !ok {
				return
			}
			res := s.pipeline.IngestSource(ctx, src)
			if res.Status == domain.StatusError {
				s.log.Warn("source ingest failed", "source_id", src.ID, "err", res.Error)
			} else {
				s.log.Info("source ingested", "source_id", src.ID, "articles", res.Count)
			}
			_ = s.registry.MarkSourcePolled(ctx, src.ID)
		}
	}
}
