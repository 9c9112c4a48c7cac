package core

import (
	"fmt"
	"log"

	"github.com/startpaged/startpaged/internal/core/db"
)

// ConsistencyReport summarizes one consistency pass over the site and
// category collections. Details always carries at least one line, so
// callers never have to infer health from an empty list.
type ConsistencyReport struct {
	OrphanedSites      int      `json:"orphanedSites"`
	OrphanedCategories int      `json:"orphanedCategories"`
	Repaired           bool     `json:"repaired"`
	Details            []string `json:"details"`
}

// CheckConsistency scans every site for dangling parent-folder and
// category references. With autoRepair, orphaned sites are moved to the
// root level and orphaned category references are reassigned to the
// first existing category, each in one bulk update. Without autoRepair
// nothing is mutated. Running a repair pass twice yields zero
// violations on the second pass.
func CheckConsistency(database *db.DB, autoRepair bool) (ConsistencyReport, error) {
	sites, err := database.ListSites(nil)
	if err != nil {
		return ConsistencyReport{}, fmt.Errorf("failed to list sites: %w", err)
	}
	categories, err := database.ListCategories()
	if err != nil {
		return ConsistencyReport{}, fmt.Errorf("failed to list categories: %w", err)
	}

	folderIDs := make(map[string]struct{})
	for _, s := range sites {
		if s.Type == db.SiteTypeFolder {
			folderIDs[s.ID] = struct{}{}
		}
	}
	categoryNames := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		categoryNames[c.Name] = struct{}{}
	}

	var orphanedSiteIDs, orphanedCategoryIDs []string
	for _, s := range sites {
		if s.ParentID != "" {
			if _, ok := folderIDs[s.ParentID]; !ok {
				orphanedSiteIDs = append(orphanedSiteIDs, s.ID)
			}
		}
		if s.Category != "" {
			if _, ok := categoryNames[s.Category]; !ok {
				orphanedCategoryIDs = append(orphanedCategoryIDs, s.ID)
			}
		}
	}

	report := ConsistencyReport{
		OrphanedSites:      len(orphanedSiteIDs),
		OrphanedCategories: len(orphanedCategoryIDs),
	}

	if len(orphanedSiteIDs) == 0 && len(orphanedCategoryIDs) == 0 {
		report.Details = append(report.Details, "no consistency issues found")
		return report, nil
	}

	if len(orphanedSiteIDs) > 0 {
		report.Details = append(report.Details,
			fmt.Sprintf("%d site(s) reference a missing parent folder", len(orphanedSiteIDs)))
		if autoRepair {
			n, err := database.ClearParents(orphanedSiteIDs)
			if err != nil {
				return report, fmt.Errorf("failed to clear orphaned parents: %w", err)
			}
			report.Repaired = true
			report.Details = append(report.Details,
				fmt.Sprintf("moved %d site(s) to the root level", n))
		}
	}

	if len(orphanedCategoryIDs) > 0 {
		report.Details = append(report.Details,
			fmt.Sprintf("%d site(s) reference a missing category", len(orphanedCategoryIDs)))
		if autoRepair {
			if len(categories) == 0 {
				report.Details = append(report.Details,
					"no categories exist, category references left unrepaired")
			} else {
				target := categories[0].Name
				n, err := database.ReassignCategories(orphanedCategoryIDs, target)
				if err != nil {
					return report, fmt.Errorf("failed to reassign orphaned categories: %w", err)
				}
				report.Repaired = true
				report.Details = append(report.Details,
					fmt.Sprintf("reassigned %d site(s) to category %q", n, target))
			}
		}
	}

	return report, nil
}

// RunStartupCheck runs a repairing consistency pass for process
// startup. It logs the outcome and never propagates a failure —
// including a panic — so boot cannot be blocked by a broken record set.
func RunStartupCheck(database *db.DB) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Startup consistency check panicked: %v", r)
		}
	}()

	report, err := CheckConsistency(database, true)
	if err != nil {
		log.Printf("Startup consistency check failed: %v", err)
		return
	}
	for _, line := range report.Details {
		log.Printf("Consistency: %s", line)
	}
}
