package tasks

import (
	"context"

	"github.com/PuerkitoBio/goquery"

	"github.com/ratewatch/rate-watch/app/rates"
)

// FetcherInterface abstracts raw data retrieval so pipeline runs can be
// exercised without network access.
type FetcherInterface interface {
	CSV(ctx context.Context, url string) ([]rates.Row, error)
	Page(ctx context.Context, url string) (*goquery.Document, error)
}

// TaskSchedulerInterface defines the interface for background task
// scheduling. The scheduler owns the cron trigger, the worker pool, and the
// guarantee that at most one pipeline run executes at a time.
type TaskSchedulerInterface interface {
	Start() error
	Stop()
	EnqueueTask(task TaskInterface) error
	EnqueueRun() error
}
