// The sync command refreshes cached favicons for the site collection.
//
// Features:
//   - Sync every site, or a subset given by --ids.
//   - Analyze mode reports what a run would do without any network or
//     disk I/O.
//   - Discovery mode consults each page's declared <link rel="icon">
//     before falling back to the favicon provider.
//
// Example usage:
//
//	startpaged sync --analyze
//	startpaged sync --ids=a1b2,c3d4 --discover
package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/startpaged/startpaged/internal/core"
)

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Download and cache favicons for sites",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runSync(cmd); err != nil {
			log.Fatalf("Sync failed: %v", err)
		}
	},
}

// runSync is the main function for the sync command.
func runSync(cmd *cobra.Command) error {
	database, err := initDB(cmd)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if err := database.Close(); err != nil {
			log.Printf("failed to close database: %v", err)
		}
	}()

	ids, err := cmd.Flags().GetStringSlice("ids")
	if err != nil {
		return fmt.Errorf("failed to read --ids: %w", err)
	}
	analyze, err := cmd.Flags().GetBool("analyze")
	if err != nil {
		return fmt.Errorf("failed to read --analyze: %w", err)
	}
	discover, err := cmd.Flags().GetBool("discover")
	if err != nil {
		return fmt.Errorf("failed to read --discover: %w", err)
	}
	iconsDir, err := cmd.Flags().GetString("icons-dir")
	if err != nil {
		return fmt.Errorf("failed to read --icons-dir: %w", err)
	}
	timeout, err := cmd.Flags().GetDuration("timeout")
	if err != nil {
		return fmt.Errorf("failed to read --timeout: %w", err)
	}

	store := core.NewIconStore(iconsDir)
	icons := core.NewIconCacheManager(database, store)
	icons.SetTimeout(timeout)
	syncer := core.NewSyncer(database, icons, store)

	report, err := syncer.Run(context.Background(), core.SyncOptions{
		SiteIDs:  ids,
		Analyze:  analyze,
		Discover: discover,
	})
	if err != nil {
		return err
	}

	if analyze {
		log.Printf("Analyze finished: total=%d skipped=%d toSync=%d",
			report.Total, report.Skipped, report.ToSync)
		return nil
	}

	log.Printf("Sync finished: total=%d succeeded=%d failed=%d skipped=%d",
		report.Total, report.Succeeded, report.Failed, report.Skipped)
	return nil
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().StringSlice("ids", nil, "Sync only these site ids (default: all sites)")
	syncCmd.Flags().Bool("analyze", false, "Report what a sync would do without downloading anything")
	syncCmd.Flags().Bool("discover", false, "Prefer icons declared in each page's HTML over the provider")
	syncCmd.Flags().Duration("timeout", core.DefaultIconTimeout, "Timeout for each icon download")
}
