package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/theirongolddev/subtrackr/internal/model"
	"github.com/theirongolddev/subtrackr/internal/source"
)

// ImportResult holds the output of importing a directory of subscription files.
type ImportResult struct {
	Subscriptions []model.Subscription
	Skipped       []RecordError
	ParseErrors   []string
	Changed       []model.TrackedFile // files parsed this run, to be marked imported
	TotalFiles    int
	ParsedFiles   int
	FileErrors    int
	CacheHits     int
}

// ProgressFunc is called during loading to report progress.
// current is the number of files processed so far, total is the total count.
type ProgressFunc func(current, total int)

// Tracker reports which files were already imported. A nil Tracker forces a
// full reparse.
type Tracker interface {
	TrackedFiles(ctx context.Context) (map[string]model.TrackedFile, error)
}

// Import discovers import files under dir, parses the ones that changed since
// they were last tracked, and validates the records. Invalid records are
// skipped and reported rather than failing the import.
func Import(ctx context.Context, dir string, tracker Tracker, now time.Time, progressFn ProgressFunc) (*ImportResult, error) {
	files, err := source.ScanDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}

	result := &ImportResult{TotalFiles: len(files)}
	if len(files) == 0 {
		return result, nil
	}

	tracked := map[string]model.TrackedFile{}
	if tracker != nil {
		tracked, err = tracker.TrackedFiles(ctx)
		if err != nil {
			return nil, fmt.Errorf("reading import tracker: %w", err)
		}
	}

	toParse, states, hits := diffTracked(files, tracked)
	result.CacheHits = hits
	if len(toParse) == 0 {
		return result, nil
	}

	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers < 1 {
		numWorkers = 4
	}

	results := make([]source.ParseResult, len(toParse))
	var processed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(numWorkers)
	for i := range toParse {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = source.ParseFile(toParse[i], now)
			n := processed.Add(1)
			if progressFn != nil {
				progressFn(int(n)+hits, result.TotalFiles)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var parsed []model.Subscription
	for i, pr := range results {
		if pr.Err != nil {
			result.FileErrors++
			result.ParseErrors = append(result.ParseErrors, fmt.Sprintf("%s: %v", pr.Path, pr.Err))
			continue
		}
		result.ParsedFiles++
		result.ParseErrors = append(result.ParseErrors, prefixAll(pr.Path, pr.ParseErrors)...)
		parsed = append(parsed, pr.Subscriptions...)
		result.Changed = append(result.Changed, states[i])
	}

	result.Subscriptions, result.Skipped = Partition(parsed, now)
	return result, nil
}

func prefixAll(path string, msgs []string) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, path+": "+m)
	}
	return out
}
