package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// FetchFunc downloads the named object.
type FetchFunc func(ctx context.Context, name string) ([]byte, error)

// Fetcher downloads a batch of report files with a bounded worker pool. The
// returned sources keep the order of the requested names so that ingest stays
// deterministic.
type Fetcher struct {
	config Config
	fetch  FetchFunc
}

// NewFetcher creates a new Fetcher
func NewFetcher(config Config, fetch FetchFunc) *Fetcher {
	return &Fetcher{config: config, fetch: fetch}
}

type fetchJob struct {
	index int
	name  string
}

// FetchAll downloads every name. The first failure cancels outstanding work
// and is returned.
func (f *Fetcher) FetchAll(ctx context.Context, names []string) ([]Source, error) {
	if len(names) == 0 {
		return nil, nil
	}

	workerCount := f.config.WorkerCount
	if workerCount < 1 {
		workerCount = 1
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sources := make([]Source, len(names))
	jobChan := make(chan fetchJob)
	errChan := make(chan error, 1)
	var wg sync.WaitGroup

	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for job := range jobChan {
				body, err := f.fetchWithRetry(ctx, job.name)
				if err != nil {
					log.Error().Err(err).Int("worker", workerID).Str("file", job.name).Msg("fetch failed")
					select {
					case errChan <- err:
					default:
					}
					cancel()
					continue
				}
				sources[job.index] = Source{Name: job.name, Body: bytes.NewReader(body)}
			}
		}(i)
	}

enqueue:
	for i, name := range names {
		select {
		case <-ctx.Done():
			break enqueue
		case jobChan <- fetchJob{index: i, name: name}:
		}
	}
	close(jobChan)
	wg.Wait()
	close(errChan)

	if err := <-errChan; err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return sources, nil
}

func (f *Fetcher) fetchWithRetry(ctx context.Context, name string) ([]byte, error) {
	attempts := f.config.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		body, err := f.fetch(ctx, name)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if attempt == attempts {
			break
		}
		log.Warn().Err(err).Str("file", name).Int("attempt", attempt).Int("max_attempts", attempts).Msg("retrying fetch")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.config.RetryBackoff):
		}
	}
	return nil, fmt.Errorf("failed to fetch %s after %d attempts: %w", name, attempts, lastErr)
}
