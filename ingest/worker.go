package ingest

import (
	"context"
	"time"

	"github.com/rs/xid"

	"github.com/kantor-lab/kantorfx/scrape"
)

// scheduledRefresh is a single scheduled source refresh job
type scheduledRefresh struct {
	at       time.Time
	source   Source
	sourceID xid.ID
}

// Less is utilized to sort scheduled refreshes by their due-time (earliest == first)
func (a scheduledRefresh) Less(b scheduledRefresh) bool {
	return a.at.Before(b.at)
}

// workerInfo is the work context for the source routine
type workerInfo struct {
	source   Source
	resCh    chan<- *workerResponse
	sourceID xid.ID
}

// workerResponse is the source routine response
type workerResponse struct {
	error    error            // encountered error, if any
	snapshot *scrape.Snapshot // the extracted bureau data
	sourceID xid.ID           // the source ID
}

// handleJob fetches using the source
func handleJob(
	ctx context.Context,
	info *workerInfo,
) {
	snapshot, err := info.source.Fetch(ctx)

	response := &workerResponse{
		error:    err,
		snapshot: snapshot,
		sourceID: info.sourceID,
	}

	select {
	case <-ctx.Done():
	case info.resCh <- response:
	}
}
