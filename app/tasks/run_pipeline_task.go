package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"github.com/ratewatch/rate-watch/app/database"
	"github.com/ratewatch/rate-watch/app/rates"
)

// RunGuard serializes pipeline runs. Overlapping runs could double-persist
// offers, so a tick that fires while the previous run is still in flight is
// skipped instead of queued.
type RunGuard struct {
	running atomic.Bool
}

func (g *RunGuard) TryAcquire() bool {
	return g.running.CompareAndSwap(false, true)
}

func (g *RunGuard) Release() {
	g.running.Store(false)
}

// RunPipelineTask is one full discovery run: for every enabled source, fetch
// → extract → filter/rank → persist, then reconcile each utility type against
// the stored current configuration. A failure in one source is logged and
// contained; the remaining sources still complete.
type RunPipelineTask struct {
	Task
	sources      *rates.SourceCache
	fetcher      FetcherInterface
	csvExtractor *rates.CSVExtractor
	filter       *rates.Filter
	offerRepo    database.OfferRepository
	configRepo   database.ConfigRepository
	reconciler   *rates.Reconciler
	guard        *RunGuard
}

func NewRunPipelineTask(sources *rates.SourceCache, fetcher FetcherInterface,
	offerRepo database.OfferRepository, configRepo database.ConfigRepository,
	reconciler *rates.Reconciler, guard *RunGuard) *RunPipelineTask {
	filter := rates.NewFilter()

	return &RunPipelineTask{
		Task:         NewTask(TaskTypeRunPipeline, "all"),
		sources:      sources,
		fetcher:      fetcher,
		csvExtractor: rates.NewCSVExtractor(filter),
		filter:       filter,
		offerRepo:    offerRepo,
		configRepo:   configRepo,
		reconciler:   reconciler,
		guard:        guard,
	}
}

func (t *RunPipelineTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.guard.TryAcquire() {
		slog.Warn("Pipeline run already in progress, skipping")
		return nil
	}
	defer t.guard.Release()

	configs := t.sources.GetEnabledConfigs()
	if len(configs) == 0 {
		slog.Info("No enabled rate sources configured, nothing to discover")
		return nil
	}

	names := make([]string, 0, len(configs))
	for name := range configs {
		names = append(names, name)
	}
	sort.Strings(names)

	persisted := 0
	for _, name := range names {
		n, err := t.processSource(ctx, configs[name])
		if err != nil {
			// contained: the other sources still run
			slog.Error("Source processing failed", "source", name, "error", err)
			continue
		}
		persisted += n
	}

	notified := 0
	for _, utilityType := range rates.Types() {
		sent, err := t.reconcile(utilityType)
		if err != nil {
			slog.Error("Reconciliation failed", "type", string(utilityType), "error", err)
			continue
		}
		if sent {
			notified++
		}
	}

	slog.Info("Task completed",
		"type", "RunPipeline",
		"duration", t.GetDuration(),
		"sources", len(names),
		"persisted", persisted,
		"notifications", notified)

	return nil
}

// processSource runs fetch → extract → filter/rank → persist for one source
// and returns how many offers were stored.
func (t *RunPipelineTask) processSource(ctx context.Context, source *rates.SourceConfig) (int, error) {
	if source.URL == "" {
		slog.Debug("Source has no URL configured, skipping", "source", source.Name)
		return 0, nil
	}

	fetchCtx, cancel := context.WithTimeout(ctx, time.Duration(source.Settings.Timeout)*time.Second)
	defer cancel()

	var offers []rates.Offer
	switch source.Mode {
	case rates.ModeCSV:
		rows, err := t.fetcher.CSV(fetchCtx, source.URL)
		if err != nil {
			return 0, fmt.Errorf("failed to fetch CSV source: %w", err)
		}
		offers = t.csvExtractor.Run(rows, source.Type)
	case rates.ModeWeb:
		doc, err := t.fetcher.Page(fetchCtx, source.URL)
		if err != nil {
			return 0, fmt.Errorf("failed to fetch web source: %w", err)
		}
		offers = rates.NewHTMLExtractor(source.Rules(), t.filter).Run(doc, source.Type)
	default:
		return 0, fmt.Errorf("unknown source mode: %q", source.Mode)
	}

	top := rates.TopN(offers, source.Settings.TopN)

	// each insert stands alone: one failed persist must not block the rest
	stored := 0
	for _, offer := range top {
		if _, err := t.offerRepo.Add(offer); err != nil {
			slog.Error("Failed to persist offer", "source", source.Name,
				"provider", offer.Provider, "error", err)
			continue
		}
		stored++
	}

	slog.Debug("Source processed", "source", source.Name, "mode", source.Mode,
		"extracted", len(offers), "persisted", stored)

	return stored, nil
}

// reconcile compares the stored best offer for a type against the user's
// current configuration and reports whether a notification went out.
func (t *RunPipelineTask) reconcile(utilityType rates.UtilityType) (bool, error) {
	best, err := t.offerRepo.FindBest(string(utilityType), time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("failed to find best offer: %w", err)
	}

	var bestOffer *rates.Offer
	if best != nil {
		bestOffer = &rates.Offer{
			Provider:   best.Provider,
			Type:       utilityType,
			Price:      best.Rate,
			TermMonths: best.RateLength,
			URL:        best.URL,
			CreatedAt:  best.CreatedAt,
		}
	}

	config, err := t.configRepo.FindCurrent(string(utilityType))
	if err != nil {
		return false, fmt.Errorf("failed to find current config: %w", err)
	}

	var current *rates.CurrentRate
	if config != nil {
		current = &rates.CurrentRate{Name: config.Name, Rate: config.Rate}
	}

	return t.reconciler.Run(utilityType, bestOffer, current), nil
}
