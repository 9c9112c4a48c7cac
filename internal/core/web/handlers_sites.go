package web

import (
	"log"
	"net/http"
	"strings"

	"github.com/startpaged/startpaged/internal/core"
)

// handleSites serves the site collection: GET lists, POST creates.
func (ws *Server) handleSites(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		ws.listSites(w, r)
	case http.MethodPost:
		ws.createSite(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (ws *Server) listSites(w http.ResponseWriter, _ *http.Request) {
	sites, err := ws.db.ListSites(nil)
	if err != nil {
		log.Printf("Failed to list sites: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list sites")
		return
	}

	payloads := make([]sitePayload, 0, len(sites))
	for _, s := range sites {
		payloads = append(payloads, toSitePayload(s))
	}
	writeJSON(w, http.StatusOK, payloads)
}

func (ws *Server) createSite(w http.ResponseWriter, r *http.Request) {
	var p sitePayload
	if err := decodeBody(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := ws.db.AddSite(p.toSite())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	site, err := ws.db.GetSite(id)
	if err != nil {
		log.Printf("Failed to load created site %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to load created site")
		return
	}
	writeJSON(w, http.StatusCreated, toSitePayload(site))
}

// handleSiteRoutes routes /api/sites/{id}, /api/sites/{id}/icon and
// /api/sites/{id}/icon/discover.
func (ws *Server) handleSiteRoutes(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/sites/")
	parts := strings.Split(path, "/")
	if parts[0] == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	id := parts[0]

	if len(parts) == 1 {
		ws.handleSite(w, r, id)
		return
	}

	if parts[1] == "icon" {
		if len(parts) == 2 {
			ws.handleSiteIcon(w, r, id)
			return
		}
		if len(parts) == 3 && parts[2] == "discover" {
			if !requireMethod(w, r, http.MethodPost) {
				return
			}
			ws.discoverSiteIcon(w, r, id)
			return
		}
	}

	writeError(w, http.StatusNotFound, "not found")
}

func (ws *Server) handleSite(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		site, err := ws.db.GetSite(id)
		if err != nil {
			writeError(w, http.StatusNotFound, "site not found")
			return
		}
		writeJSON(w, http.StatusOK, toSitePayload(site))
	case http.MethodPut:
		var p sitePayload
		if err := decodeBody(r, &p); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		site := p.toSite()
		site.ID = id
		if err := ws.db.UpdateSite(site); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		updated, err := ws.db.GetSite(id)
		if err != nil {
			writeError(w, http.StatusNotFound, "site not found")
			return
		}
		writeJSON(w, http.StatusOK, toSitePayload(updated))
	case http.MethodDelete:
		if err := ws.db.DeleteSite(id); err != nil {
			writeError(w, http.StatusNotFound, "site not found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleSiteIcon serves a site's custom icon: POST uploads a base64
// data URI, DELETE clears the icon configuration and removes the
// cached files.
func (ws *Server) handleSiteIcon(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodPost:
		ws.uploadSiteIcon(w, r, id)
	case http.MethodDelete:
		ws.deleteSiteIcon(w, r, id)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (ws *Server) uploadSiteIcon(w http.ResponseWriter, r *http.Request, id string) {
	if _, err := ws.db.GetSite(id); err != nil {
		writeError(w, http.StatusNotFound, "site not found")
		return
	}

	var req struct {
		DataURI string `json:"dataUri"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// SaveBase64 only writes the file; pointing the record at it is
	// this handler's job.
	path, err := ws.icons.SaveBase64(id, req.DataURI)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := ws.db.SetCustomIcon(id, path); err != nil {
		log.Printf("Failed to set custom icon: site=%s path=%s: %v", id, path, err)
		writeError(w, http.StatusInternalServerError, "failed to update site record")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "customIconUrl": path})
}

func (ws *Server) deleteSiteIcon(w http.ResponseWriter, _ *http.Request, id string) {
	site, err := ws.db.GetSite(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "site not found")
		return
	}

	if err := ws.db.ClearSiteIcon(id); err != nil {
		log.Printf("Failed to clear site icon: site=%s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to clear site icon")
		return
	}

	// Best-effort file cleanup; Remove is a no-op for missing files and
	// for values that are not managed cache paths.
	for _, p := range []string{site.Icon, site.CustomIconURL} {
		if err := ws.icons.Delete(p); err != nil {
			log.Printf("Failed to remove cached icon file: site=%s path=%s: %v", id, p, err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// discoverSiteIcon looks up the icon the site's page declares and
// caches it immediately.
func (ws *Server) discoverSiteIcon(w http.ResponseWriter, r *http.Request, id string) {
	site, err := ws.db.GetSite(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "site not found")
		return
	}

	iconURL, err := core.DiscoverIconURL(r.Context(), site.URL)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	stored, err := ws.icons.DownloadAndSave(r.Context(), id, iconURL)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "icon": stored, "source": iconURL})
}
