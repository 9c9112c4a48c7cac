package web

import (
	"log"
	"net/http"

	"github.com/startpaged/startpaged/internal/core"
)

type syncRequest struct {
	SiteIDs  []string `json:"siteIds"`
	Analyze  bool     `json:"analyze"`
	Discover bool     `json:"discover"`
}

// handleSyncIcons runs an icon sync pass. Per-site failures show up in
// the counts, never as an error response; a 500 is returned only when
// the run could not start at all, and then without partial counts.
func (ws *Server) handleSyncIcons(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req syncRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	report, err := ws.syncer.Run(r.Context(), core.SyncOptions{
		SiteIDs:  req.SiteIDs,
		Analyze:  req.Analyze,
		Discover: req.Discover,
	})
	if err != nil {
		log.Printf("Icon sync failed to start: %v", err)
		writeError(w, http.StatusInternalServerError, "icon sync failed")
		return
	}

	if report.Analyze {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"total":   report.Total,
			"skipped": report.Skipped,
			"toSync":  report.ToSync,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"processed":    report.Processed,
		"successCount": report.Succeeded,
		"failCount":    report.Failed,
		"skippedCount": report.Skipped,
		"total":        report.Total,
	})
}

type consistencyRequest struct {
	Repair bool `json:"repair"`
}

// handleConsistencyCheck scans for dangling references and optionally
// repairs them.
func (ws *Server) handleConsistencyCheck(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req consistencyRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	report, err := core.CheckConsistency(ws.db, req.Repair)
	if err != nil {
		log.Printf("Consistency check failed: %v", err)
		writeError(w, http.StatusInternalServerError, "consistency check failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":            true,
		"orphanedSites":      report.OrphanedSites,
		"orphanedCategories": report.OrphanedCategories,
		"repaired":           report.Repaired,
		"details":            report.Details,
	})
}
