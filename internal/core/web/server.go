package web

import (
	"log"
	"net/http"

	"github.com/startpaged/startpaged/internal/core"
	"github.com/startpaged/startpaged/internal/core/db"
)

type Server struct {
	db     *db.DB
	store  *core.IconStore
	icons  *core.IconCacheManager
	syncer *core.Syncer
}

func StartServer(addr string, database *db.DB, store *core.IconStore) {
	ws := newServer(database, store)

	mux := http.NewServeMux()
	ws.registerRoutes(mux)

	log.Printf("Starting web server at %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("Web server failed: %v", err)
	}
}

func newServer(database *db.DB, store *core.IconStore) *Server {
	icons := core.NewIconCacheManager(database, store)
	return &Server{
		db:     database,
		store:  store,
		icons:  icons,
		syncer: core.NewSyncer(database, icons, store),
	}
}

func (ws *Server) registerRoutes(mux *http.ServeMux) {
	// Cached icons are served straight off the store directory.
	mux.Handle(core.IconPublicPrefix,
		http.StripPrefix(core.IconPublicPrefix, http.FileServer(http.Dir(ws.store.Dir()))))

	mux.HandleFunc("/api/sites", ws.handleSites)
	mux.HandleFunc("/api/sites/", ws.handleSiteRoutes) // Handles /api/sites/{id} and /api/sites/{id}/icon[...]
	mux.HandleFunc("/api/categories", ws.handleCategories)
	mux.HandleFunc("/api/categories/", ws.handleCategoryRoutes)
	mux.HandleFunc("/api/sync-icons", ws.handleSyncIcons)
	mux.HandleFunc("/api/consistency-check", ws.handleConsistencyCheck)
}
