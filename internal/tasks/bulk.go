package tasks

import (
	"context"
	"errors"
	"slices"
	"sync"
)

// BulkOpts contains configuration for batched favorite changes.
type BulkOpts struct {
	Add        bool // Add when set, remove otherwise
	NumWorkers int  // Concurrent workers (default: 3)
}

// FavoriteResult is the outcome for one id of a bulk change.
type FavoriteResult struct {
	ID  string
	Add bool
	Err error
}

// BulkResult summarizes a bulk change.
type BulkResult struct {
	Total     int
	Succeeded int
	Failed    int
	Results   []FavoriteResult
	View      View
}

// BulkFavorites applies the same change to many ids with a small worker pool.
//
// Duplicate ids are collapsed. Each id goes through the single-id protocol so per-movie serialization
// still holds; requests are paced by the gateway's rate limiter. Partial failures are reported per id.
func (p *Profile) BulkFavorites(ctx context.Context, prog chan<- ProgressUpdate, ids []string, opts BulkOpts) (*BulkResult, error) {
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 3
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}

	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" && !slices.Contains(unique, id) {
			unique = append(unique, id)
		}
	}

	if err := p.begin(-1, Ready); err != nil {
		return nil, err
	}

	result := &BulkResult{Total: len(unique), Results: make([]FavoriteResult, 0, len(unique))}

	jobs := make(chan string, len(unique))
	results := make(chan FavoriteResult, len(unique))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go p.favoriteWorker(ctx, &wg, jobs, results, opts.Add)
	}

	for _, id := range unique {
		jobs <- id
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)
		if res.Err == nil {
			result.Succeeded++
		} else {
			result.Failed++
		}
		sendProgress(prog, bulkFavoriteUpdate(completed, result.Total, res))
	}

	result.View = p.View()
	for _, res := range result.Results {
		if errors.Is(res.Err, context.Canceled) || IsSessionError(res.Err) {
			return result, res.Err
		}
	}
	return result, nil
}

// favoriteWorker applies one change per id from jobs until it is drained or ctx is done.
func (p *Profile) favoriteWorker(ctx context.Context, wg *sync.WaitGroup, jobs <-chan string, results chan<- FavoriteResult, add bool) {
	defer wg.Done()

	for id := range jobs {
		res := FavoriteResult{ID: id, Add: add}

		select {
		case <-ctx.Done():
			res.Err = ctx.Err()
			results <- res
			continue
		default:
		}

		_, res.Err = p.mutateFavorite(ctx, id, add)
		results <- res
	}
}
