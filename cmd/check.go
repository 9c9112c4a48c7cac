// The check command scans the site and category collections for
// dangling parent-folder and category references.
//
// Example usage:
//
//	startpaged check
//	startpaged check --repair
package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/startpaged/startpaged/internal/core"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check (and optionally repair) record consistency",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runCheck(cmd); err != nil {
			log.Fatalf("Consistency check failed: %v", err)
		}
	},
}

func runCheck(cmd *cobra.Command) error {
	database, err := initDB(cmd)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if err := database.Close(); err != nil {
			log.Printf("failed to close database: %v", err)
		}
	}()

	repair, err := cmd.Flags().GetBool("repair")
	if err != nil {
		return fmt.Errorf("failed to read --repair: %w", err)
	}

	report, err := core.CheckConsistency(database, repair)
	if err != nil {
		return err
	}

	for _, line := range report.Details {
		log.Printf("Consistency: %s", line)
	}
	log.Printf("Consistency check finished: orphanedSites=%d orphanedCategories=%d repaired=%v",
		report.OrphanedSites, report.OrphanedCategories, report.Repaired)
	return nil
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().Bool("repair", false, "Repair the violations that are found")
}
