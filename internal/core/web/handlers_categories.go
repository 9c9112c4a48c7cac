package web

import (
	"log"
	"net/http"
	"strings"
)

// handleCategories serves the category collection: GET lists, POST creates.
func (ws *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		categories, err := ws.db.ListCategories()
		if err != nil {
			log.Printf("Failed to list categories: %v", err)
			writeError(w, http.StatusInternalServerError, "failed to list categories")
			return
		}
		payloads := make([]categoryPayload, 0, len(categories))
		for _, c := range categories {
			payloads = append(payloads, toCategoryPayload(c))
		}
		writeJSON(w, http.StatusOK, payloads)
	case http.MethodPost:
		var p categoryPayload
		if err := decodeBody(r, &p); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		id, err := ws.db.AddCategory(p.Name, p.Position)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		category, err := ws.db.GetCategory(id)
		if err != nil {
			log.Printf("Failed to load created category %s: %v", id, err)
			writeError(w, http.StatusInternalServerError, "failed to load created category")
			return
		}
		writeJSON(w, http.StatusCreated, toCategoryPayload(category))
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleCategoryRoutes routes /api/categories/{id}.
func (ws *Server) handleCategoryRoutes(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/categories/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	if !requireMethod(w, r, http.MethodDelete) {
		return
	}
	if err := ws.db.DeleteCategory(id); err != nil {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
