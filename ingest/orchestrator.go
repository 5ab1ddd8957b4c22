package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/rs/xid"
	"github.com/sig-0/iq"

	"github.com/kantor-lab/kantorfx/geocode"
	"github.com/kantor-lab/kantorfx/scrape"
	"github.com/kantor-lab/kantorfx/storage"
	"github.com/kantor-lab/kantorfx/storage/types"
)

// DefaultRefreshInterval is the cadence at which each registered
// source is re-fetched
const DefaultRefreshInterval = time.Minute * 30

var (
	errInvalidSource   = errors.New("invalid source")
	errDuplicateSource = errors.New("source already registered")

	// ErrUnknownSource indicates an on-demand refresh was requested
	// for a source that is not registered
	ErrUnknownSource = errors.New("unknown source")
)

// Orchestrator is the refresh scheduler for registered bureau sources.
// Each source runs on its own 30-minute cadence; the next run for a
// source is queued only after the current one completes, so a slow
// fetch can never race its own next scheduled fetch
type Orchestrator struct {
	storage  storage.Storage
	geocoder geocode.Geocoder
	logger   *slog.Logger

	registeredSources sync.Map // xid.ID -> Source

	q               iq.Queue[scheduledRefresh]
	queryInterval   time.Duration
	refreshInterval time.Duration
	qMux            sync.Mutex
}

// New creates a new Orchestrator instance
func New(storage storage.Storage, geocoder geocode.Geocoder, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		storage:         storage,
		geocoder:        geocoder,
		q:               iq.NewQueue[scheduledRefresh](),
		queryInterval:   time.Second, // every second
		refreshInterval: DefaultRefreshInterval,
	}

	// Apply the options
	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Register registers a new bureau source with the orchestrator.
// The source is immediately queued up for execution
func (o *Orchestrator) Register(s Source) error {
	if s == nil || s.Name() == "" {
		return errInvalidSource
	}

	if _, ok := o.findSource(s.Name()); ok {
		return fmt.Errorf("%w: %s", errDuplicateSource, s.Name())
	}

	// Register the source
	id := xid.New()
	o.registeredSources.Store(id, s)

	o.logger.Info(
		"registered new source",
		"name", s.Name(),
	)

	// Schedule the job
	o.scheduleRefresh(
		time.Now().UTC(),
		id,
		s,
	)

	return nil
}

// RunPending synchronously executes every currently-due refresh job.
// Called once on boot, before queries are served, so the store is
// populated (or at least attempted) at first serve
func (o *Orchestrator) RunPending(ctx context.Context) {
	for {
		next := o.nextRefresh()
		if next == nil {
			return
		}

		name := next.source.Name()

		snapshot, err := next.source.Fetch(ctx)
		if err != nil {
			o.logger.Error(
				"error encountered during source fetch",
				"name", name,
				"err", err,
			)
		} else {
			o.persist(ctx, name, snapshot)
		}

		o.scheduleRefresh(
			time.Now().UTC().Add(o.refreshInterval),
			next.sourceID,
			next.source,
		)
	}
}

// Start starts the source orchestration service loop [BLOCKING]
func (o *Orchestrator) Start(ctx context.Context) error {
	collectorCh := make(chan *workerResponse, 100)

	// Start a listener for monitoring jobs
	ticker := time.NewTicker(o.queryInterval)
	defer ticker.Stop()

	// handleRefresh initializes all jobs that are executable (due)
	handleRefresh := func() {
		for {
			select {
			case <-ctx.Done():
				return
			default:
				nextSR := o.nextRefresh()
				if nextSR == nil {
					return // nothing to schedule anymore
				}

				o.logger.Info(
					"scheduling refresh",
					"name", nextSR.source.Name(),
				)

				// Spawn worker
				info := &workerInfo{
					source:   nextSR.source,
					sourceID: nextSR.sourceID,
					resCh:    collectorCh,
				}

				go handleJob(ctx, info)
			}
		}
	}

	// Initialize the first set of due jobs (on boot)
	handleRefresh()

	for {
		select {
		case <-ctx.Done():
			o.logger.Info("orchestrator service shut down")
			close(collectorCh)

			return nil
		case <-ticker.C:
			handleRefresh()
		case response := <-collectorCh:
			now := time.Now().UTC()

			rsRaw, ok := o.registeredSources.Load(response.sourceID)
			if !ok {
				o.logger.Error(
					"unable to load registered source",
					"id", response.sourceID.String(),
				)

				continue
			}

			rs, _ := rsRaw.(Source)

			if response.error != nil {
				// A failing source simply keeps its stale rows
				// until the next cycle
				o.logger.Error(
					"error encountered during source fetch",
					"name", rs.Name(),
					"err", response.error.Error(),
				)
			} else {
				o.persist(ctx, rs.Name(), response.snapshot)
			}

			// Schedule the next refresh for this source
			o.scheduleRefresh(
				now.Add(o.refreshInterval),
				response.sourceID,
				rs,
			)
		}
	}
}

// RefreshOne runs an on-demand fetch of a single registered source and
// persists the result. The source's scheduled cadence is unaffected
func (o *Orchestrator) RefreshOne(ctx context.Context, name string) (*scrape.Snapshot, error) {
	s, ok := o.findSource(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, name)
	}

	snapshot, err := s.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch source %s: %w", name, err)
	}

	o.persist(ctx, name, snapshot)

	return snapshot, nil
}

// SourceNames returns the display names of all registered sources
func (o *Orchestrator) SourceNames() []string {
	names := make([]string, 0)

	o.registeredSources.Range(func(_, v any) bool {
		s, _ := v.(Source)
		names = append(names, s.Name())

		return true
	})

	return names
}

// persist geocodes the extracted bureau card and upserts one rate row
// per extracted quote. Row-level store failures are logged, never fatal
func (o *Orchestrator) persist(ctx context.Context, source string, snapshot *scrape.Snapshot) {
	var (
		card     = snapshot.Card
		location = o.resolveLocation(ctx, card.Address)
	)

	for _, quote := range snapshot.Quotes {
		saveCtx, cancelFn := context.WithTimeout(ctx, time.Second*10)

		row := &types.RateRow{
			Bureau:   card.Name,
			Currency: quote.Currency,
			Buy:      quote.Buy,
			Sell:     quote.Sell,
			Address:  card.Address,
			Comment:  card.Comment,
			Location: location,
		}

		if err := o.storage.UpsertRate(saveCtx, row); err != nil {
			o.logger.Error(
				"unable to save rate",
				"source", source,
				"bureau", row.Bureau,
				"currency", row.Currency,
				"err", err,
			)

			cancelFn()

			continue
		}

		o.logger.Info(
			"saved rate",
			"source", source,
			"bureau", row.Bureau,
			"currency", row.Currency,
			"buy", row.Buy,
			"sell", row.Sell,
		)

		cancelFn()
	}
}

// resolveLocation resolves the bureau address to coordinates.
// Geocoding is retried once, then skipped; an unresolved address
// yields nil coordinates, never an error
func (o *Orchestrator) resolveLocation(ctx context.Context, address string) *types.Coordinates {
	if o.geocoder == nil || address == "" {
		return nil
	}

	for attempt := 0; attempt < 2; attempt++ {
		location, err := o.geocoder.Resolve(ctx, address)
		if err != nil {
			o.logger.Warn(
				"unable to geocode address",
				"address", address,
				"attempt", attempt,
				"err", err,
			)

			continue
		}

		if location == nil {
			return nil // valid empty result
		}

		return &types.Coordinates{
			Latitude:  location.Latitude,
			Longitude: location.Longitude,
		}
	}

	return nil
}

// findSource looks up a registered source by display name
func (o *Orchestrator) findSource(name string) (Source, bool) {
	var (
		found Source
		ok    bool
	)

	o.registeredSources.Range(func(_, v any) bool {
		s, _ := v.(Source)

		if s.Name() == name {
			found = s
			ok = true

			return false
		}

		return true
	})

	return found, ok
}

// scheduleRefresh schedules a new source refresh
func (o *Orchestrator) scheduleRefresh(
	at time.Time,
	sourceID xid.ID,
	source Source,
) {
	o.qMux.Lock()
	defer o.qMux.Unlock()

	futureSR := scheduledRefresh{
		at:       at,
		sourceID: sourceID,
		source:   source,
	}

	o.q.Push(futureSR)
}

// nextRefresh fetches the next due refresh job, as of the moment of calling
func (o *Orchestrator) nextRefresh() *scheduledRefresh {
	o.qMux.Lock()
	defer o.qMux.Unlock()

	now := time.Now().UTC()

	// Check if anything needs to be scheduled
	if o.q.Len() == 0 {
		return nil // nothing to schedule, all jobs are running
	}

	// Check if the top element is due
	if o.q.Index(0).at.After(now) {
		return nil // nothing to schedule, latest job is in the future
	}

	// Grab the next job
	nextSR := o.q.PopFront()

	return nextSR
}
