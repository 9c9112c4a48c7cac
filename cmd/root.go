package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/startpaged/startpaged/internal/core"
	"github.com/startpaged/startpaged/internal/core/db"
	"github.com/startpaged/startpaged/internal/core/web"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "startpaged",
	Short: "Self-hosted start page backend with an icon cache",
	Long: `startpaged serves a personal start page's site and category records
and keeps a local favicon cache for them: new sites get their icon
downloaded in the background, a sync job refreshes the whole
collection in bounded batches, and a consistency check repairs
dangling folder and category references on startup.`,
	Run: func(cmd *cobra.Command, args []string) {
		database, err := initDB(cmd)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer database.Close()

		iconsDir, err := cmd.Flags().GetString("icons-dir")
		if err != nil {
			log.Fatalf("Failed to get icons dir: %v", err)
		}
		numWorkers, err := cmd.Flags().GetInt("icon-workers")
		if err != nil {
			log.Fatalf("Failed to get icon workers: %v", err)
		}

		store := core.NewIconStore(iconsDir)
		icons := core.NewIconCacheManager(database, store)

		// Create the work queue for the icon workers
		workQueue := make(chan db.Site, numWorkers*10)

		// New auto sites get their favicon fetched in the background.
		database.RegisterEventListener(db.OnSiteCreatedEvent, func(event db.Event) error {
			ev := event.(db.SiteCreatedEvent)
			if ev.Site.IconType != db.IconTypeAuto || ev.Site.Icon != "" {
				return nil
			}
			log.Printf("New site created: %s - %s, queuing icon download", ev.Site.ID, ev.Site.URL)
			select {
			case workQueue <- ev.Site:
			default:
				log.Printf("Warning: work queue full, site %s will be picked up by the next sync", ev.Site.ID)
			}
			return nil
		})

		// The core never garbage-collects cached files; clean up here
		// when their owning records go away or get cleared.
		database.RegisterEventListener(db.OnSiteDeletedEvent, func(event db.Event) error {
			ev := event.(db.SiteDeletedEvent)
			for _, p := range []string{ev.Site.Icon, ev.Site.CustomIconURL} {
				if err := icons.Delete(p); err != nil {
					log.Printf("Failed to remove cached icon for deleted site %s: %v", ev.Site.ID, err)
				}
			}
			return nil
		})

		database.RegisterEventListener(db.OnIconClearedEvent, func(event db.Event) error {
			ev := event.(db.IconClearedEvent)
			for _, p := range []string{ev.Icon, ev.CustomIconURL} {
				if err := icons.Delete(p); err != nil {
					log.Printf("Failed to remove cleared icon for site %s: %v", ev.SiteID, err)
				}
			}
			return nil
		})

		// Start icon workers that download and persist favicons
		for i := 0; i < numWorkers; i++ {
			workerID := i
			go func() {
				log.Printf("Icon worker %d started", workerID)
				for site := range workQueue {
					sourceURL, err := core.ProviderIconURL(site.URL)
					if err != nil {
						log.Printf("Worker %d: no icon source for site %s: %v", workerID, site.ID, err)
						continue
					}
					if _, err := icons.DownloadAndSave(context.Background(), site.ID, sourceURL); err != nil {
						log.Printf("Worker %d: icon download failed for site %s: %v", workerID, site.ID, err)
					} else {
						log.Printf("Worker %d: cached icon for site %s", workerID, site.ID)
					}
				}
				log.Printf("Icon worker %d stopped", workerID)
			}()
		}

		// Repair dangling references before serving; never blocks boot.
		go core.RunStartupCheck(database)

		// On startup, queue any auto sites that never got an icon cached
		go func() {
			time.Sleep(2 * time.Second) // Give the server a moment to start
			log.Println("Checking for sites without cached icons on startup...")
			sites, err := database.ListSites(nil)
			if err != nil {
				log.Printf("Error listing sites: %v", err)
				return
			}
			queued := 0
			for _, s := range sites {
				if s.IconType != db.IconTypeAuto || s.Icon != "" {
					continue
				}
				select {
				case workQueue <- s:
					queued++
				default:
					log.Printf("Warning: work queue full, site %s will be picked up by the next sync", s.ID)
				}
			}
			if queued > 0 {
				log.Printf("Queued %d site(s) for icon download", queued)
			} else {
				log.Println("No sites need icon downloads")
			}
		}()

		// Get the host and port from the flags
		host, err := cmd.Flags().GetString("host")
		if err != nil {
			log.Fatalf("Failed to get host: %v", err)
		}
		port, err := cmd.Flags().GetInt("port")
		if err != nil {
			log.Fatalf("Failed to get port: %v", err)
		}

		// Start the web server
		web.StartServer(fmt.Sprintf("%s:%d", host, port), database, store)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("db", "d", "startpaged.db", "Path to the SQLite database file")
	rootCmd.PersistentFlags().String("icons-dir", core.DefaultIconsDir, "Directory for cached icon files")
	rootCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	rootCmd.Flags().String("host", "localhost", "Host to listen on")

	// Icon workers flags
	rootCmd.Flags().IntP("icon-workers", "w", 1, "Number of icon download workers to run")
}

func initDB(cmd *cobra.Command) (*db.DB, error) {
	dbPath, err := cmd.Flags().GetString("db")
	if err != nil {
		log.Fatalf("Failed to get database path: %v", err)
	}
	database, err := db.NewSQLiteDB(dbPath)
	if err != nil {
		log.Fatalf("Failed to create database: %v", err)
	}

	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	log.Println("Database migrated successfully")

	return database, nil
}
