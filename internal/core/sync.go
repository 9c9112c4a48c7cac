package core

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/startpaged/startpaged/internal/core/db"
)

// SyncReport is the outcome of one icon sync run. Analyze mode fills
// Total, Skipped and ToSync; execute mode fills Total, Skipped,
// Succeeded, Failed and Processed, with
// Succeeded + Failed + Skipped == Total.
type SyncReport struct {
	Analyze   bool
	Total     int
	Skipped   int
	ToSync    int
	Processed int
	Succeeded int
	Failed    int
}

// SyncOptions control one icon sync run.
type SyncOptions struct {
	// SiteIDs limits the run to a subset of sites; empty means all.
	SiteIDs []string
	// Analyze performs the decision logic only, with no network or
	// disk I/O.
	Analyze bool
	// Discover consults the page's declared <link rel="icon"> before
	// the provider template.
	Discover bool
}

// Syncer walks site records, decides per site whether the cached icon
// needs a refresh, and drives the icon cache manager in
// bounded-concurrency batches.
type Syncer struct {
	db    *db.DB
	icons *IconCacheManager
	store *IconStore

	// BatchSize bounds concurrent downloads in execute mode.
	BatchSize int
	// AnalyzeBatchSize is the iteration chunk for analyze mode.
	AnalyzeBatchSize int
}

func NewSyncer(database *db.DB, icons *IconCacheManager, store *IconStore) *Syncer {
	return &Syncer{
		db:               database,
		icons:            icons,
		store:            store,
		BatchSize:        SyncBatchSize,
		AnalyzeBatchSize: AnalyzeBatchSize,
	}
}

// Run executes one sync pass. Sites are processed in consecutive
// chunks; within a chunk all downloads run concurrently and the chunk
// fully settles before the next one starts, so at most BatchSize
// downloads are in flight at any moment.
//
// Individual site failures are absorbed and counted. The returned error
// is non-nil only when the sites could not be enumerated at all.
func (s *Syncer) Run(ctx context.Context, opts SyncOptions) (SyncReport, error) {
	sites, err := s.db.ListSites(opts.SiteIDs)
	if err != nil {
		return SyncReport{}, fmt.Errorf("failed to list sites: %w", err)
	}

	report := SyncReport{Analyze: opts.Analyze, Total: len(sites)}

	batchSize := s.BatchSize
	if opts.Analyze {
		batchSize = s.AnalyzeBatchSize
	}
	if batchSize <= 0 {
		batchSize = 1
	}

	for start := 0; start < len(sites); start += batchSize {
		chunk := sites[start:min(start+batchSize, len(sites))]

		if opts.Analyze {
			for _, site := range chunk {
				if needsFetch(PlanSync(site, s.store.Exists)) {
					report.ToSync++
				} else {
					report.Skipped++
				}
			}
			continue
		}

		var wg sync.WaitGroup
		var mu sync.Mutex
		for _, site := range chunk {
			if !needsFetch(PlanSync(site, s.store.Exists)) {
				report.Skipped++
				continue
			}
			wg.Add(1)
			go func(site db.Site) {
				defer wg.Done()
				ok := s.syncSite(ctx, site, opts.Discover)
				mu.Lock()
				if ok {
					report.Succeeded++
				} else {
					report.Failed++
				}
				mu.Unlock()
			}(site)
		}
		wg.Wait()
	}

	report.Processed = report.Succeeded + report.Failed
	return report, nil
}

func needsFetch(d Decision) bool {
	return d == DecisionFetchProvider || d == DecisionFetchUpload
}

// syncSite downloads one site's icon and reports whether it succeeded.
// Failures are logged with site context and absorbed.
func (s *Syncer) syncSite(ctx context.Context, site db.Site, discover bool) bool {
	sourceURL, err := s.sourceURL(ctx, site, discover)
	if err != nil {
		log.Printf("Icon sync failed: site=%s url=%s: %v", site.ID, site.URL, err)
		return false
	}
	if _, err := s.icons.DownloadAndSave(ctx, site.ID, sourceURL); err != nil {
		log.Printf("Icon sync failed: site=%s source=%s: %v", site.ID, sourceURL, err)
		return false
	}
	return true
}

// sourceURL picks the remote source for a site marked for download: an
// uncached remote upload URL is fetched as-is, everything else goes
// through discovery (when enabled) or the primary favicon provider.
func (s *Syncer) sourceURL(ctx context.Context, site db.Site, discover bool) (string, error) {
	if site.IconType == db.IconTypeUpload && strings.HasPrefix(site.CustomIconURL, "http") {
		return site.CustomIconURL, nil
	}
	if discover {
		u, err := DiscoverIconURL(ctx, site.URL)
		if err == nil {
			return u, nil
		}
		log.Printf("Icon discovery failed, using provider: site=%s url=%s: %v", site.ID, site.URL, err)
	}
	return ProviderIconURL(site.URL)
}
