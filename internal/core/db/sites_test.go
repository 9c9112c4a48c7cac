package db

import (
	"errors"
	"strings"
	"testing"
)

// TestAddSite tests site creation.
func TestAddSite(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	t.Run("creates site successfully", func(t *testing.T) {
		id, err := db.AddSite(Site{Name: "Example", URL: "https://example.com"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if id == "" {
			t.Error("expected a generated ID, got empty string")
		}
	})

	t.Run("keeps a caller-supplied ID", func(t *testing.T) {
		id, err := db.AddSite(Site{ID: "s-fixed", Name: "Fixed"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if id != "s-fixed" {
			t.Errorf("expected ID 's-fixed', got %q", id)
		}
	})

	t.Run("defaults type and icon type", func(t *testing.T) {
		id, _ := db.AddSite(Site{Name: "Defaults"})
		s, err := db.GetSite(id)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if s.Type != SiteTypeSite {
			t.Errorf("expected type %q, got %q", SiteTypeSite, s.Type)
		}
		if s.IconType != IconTypeAuto {
			t.Errorf("expected icon type %q, got %q", IconTypeAuto, s.IconType)
		}
	})

	t.Run("rejects invalid type", func(t *testing.T) {
		_, err := db.AddSite(Site{Name: "Bad", Type: "blob"})
		if !errors.Is(err, ErrInvalidSiteType) {
			t.Errorf("expected ErrInvalidSiteType, got %v", err)
		}
	})

	t.Run("rejects invalid icon type", func(t *testing.T) {
		_, err := db.AddSite(Site{Name: "Bad", IconType: "magic"})
		if !errors.Is(err, ErrInvalidSiteType) {
			t.Errorf("expected ErrInvalidSiteType, got %v", err)
		}
	})
}

// TestGetSite tests retrieving a single site.
func TestGetSite(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	t.Run("retrieves existing site", func(t *testing.T) {
		id, _ := db.AddSite(Site{
			Name:     "Example",
			URL:      "https://example.com",
			Category: "Work",
			Position: 3,
		})

		s, err := db.GetSite(id)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if s.ID != id {
			t.Errorf("expected ID %q, got %q", id, s.ID)
		}
		if s.URL != "https://example.com" {
			t.Errorf("expected URL 'https://example.com', got %q", s.URL)
		}
		if s.Category != "Work" {
			t.Errorf("expected category 'Work', got %q", s.Category)
		}
		if s.Position != 3 {
			t.Errorf("expected position 3, got %d", s.Position)
		}
		if s.CreatedAt == "" {
			t.Error("expected CreatedAt to be set")
		}
	})

	t.Run("empty parent scans as empty string", func(t *testing.T) {
		id, _ := db.AddSite(Site{Name: "Root level"})
		s, _ := db.GetSite(id)
		if s.ParentID != "" {
			t.Errorf("expected empty ParentID, got %q", s.ParentID)
		}
	})

	t.Run("returns error for non-existent site", func(t *testing.T) {
		_, err := db.GetSite("nope")
		if err == nil {
			t.Error("expected error for non-existent site, got nil")
		}
		if !strings.Contains(err.Error(), "not found") {
			t.Errorf("expected 'not found' error, got %v", err)
		}
	})
}

// TestListSites tests listing sites.
func TestListSites(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	t.Run("returns empty list when no sites", func(t *testing.T) {
		sites, err := db.ListSites(nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(sites) != 0 {
			t.Errorf("expected empty list, got %d items", len(sites))
		}
	})

	t.Run("returns all sites", func(t *testing.T) {
		db.AddSite(Site{ID: "s1", Name: "Site 1"})
		db.AddSite(Site{ID: "s2", Name: "Site 2"})
		db.AddSite(Site{ID: "s3", Name: "Site 3"})

		sites, err := db.ListSites(nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(sites) != 3 {
			t.Errorf("expected 3 sites, got %d", len(sites))
		}
	})

	t.Run("limits to the given subset", func(t *testing.T) {
		sites, err := db.ListSites([]string{"s1", "s3"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(sites) != 2 {
			t.Fatalf("expected 2 sites, got %d", len(sites))
		}
		for _, s := range sites {
			if s.ID != "s1" && s.ID != "s3" {
				t.Errorf("unexpected site in subset: %q", s.ID)
			}
		}
	})

	t.Run("ignores unknown ids in the subset", func(t *testing.T) {
		sites, err := db.ListSites([]string{"s2", "ghost"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(sites) != 1 {
			t.Errorf("expected 1 site, got %d", len(sites))
		}
	})

	t.Run("orders by position", func(t *testing.T) {
		db2 := newTestDB(t)
		defer db2.Close()

		db2.AddSite(Site{ID: "last", Name: "Last", Position: 9})
		db2.AddSite(Site{ID: "first", Name: "First", Position: 1})

		sites, err := db2.ListSites(nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(sites) != 2 || sites[0].ID != "first" {
			t.Errorf("expected 'first' first, got %+v", sites)
		}
	})
}

// TestUpdateSite tests full site updates.
func TestUpdateSite(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	t.Run("updates fields", func(t *testing.T) {
		db.AddSite(Site{ID: "folder1", Name: "Folder", Type: SiteTypeFolder})
		id, _ := db.AddSite(Site{Name: "Before", URL: "https://before.com"})

		err := db.UpdateSite(Site{
			ID:       id,
			Name:     "After",
			URL:      "https://after.com",
			Type:     SiteTypeSite,
			IconType: IconTypeLibrary,
			Icon:     "star",
			ParentID: "folder1",
			Category: "Tools",
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		s, _ := db.GetSite(id)
		if s.Name != "After" || s.URL != "https://after.com" {
			t.Errorf("expected updated fields, got %+v", s)
		}
		if s.IconType != IconTypeLibrary || s.Icon != "star" {
			t.Errorf("expected library icon 'star', got %+v", s)
		}
		if s.ParentID != "folder1" {
			t.Errorf("expected parent 'folder1', got %q", s.ParentID)
		}
	})

	t.Run("returns error for non-existent site", func(t *testing.T) {
		err := db.UpdateSite(Site{ID: "ghost", Name: "X", Type: SiteTypeSite, IconType: IconTypeAuto})
		if err == nil {
			t.Error("expected error for non-existent site, got nil")
		}
	})
}

// TestUpdateSiteIcon tests the single-field icon update.
func TestUpdateSiteIcon(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	t.Run("updates only the icon", func(t *testing.T) {
		id, _ := db.AddSite(Site{Name: "Example", URL: "https://example.com"})

		if err := db.UpdateSiteIcon(id, "/uploads/icons/site-x.png?v=1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		s, _ := db.GetSite(id)
		if s.Icon != "/uploads/icons/site-x.png?v=1" {
			t.Errorf("expected icon to be updated, got %q", s.Icon)
		}
		if s.URL != "https://example.com" {
			t.Errorf("expected URL untouched, got %q", s.URL)
		}
	})

	t.Run("returns error for non-existent site", func(t *testing.T) {
		if err := db.UpdateSiteIcon("ghost", "x"); err == nil {
			t.Error("expected error for non-existent site, got nil")
		}
	})
}

// TestSetCustomIcon tests switching a site to upload mode.
func TestSetCustomIcon(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	id, _ := db.AddSite(Site{Name: "Example"})

	if err := db.SetCustomIcon(id, "/uploads/icons/site-a.png?v=2"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	s, _ := db.GetSite(id)
	if s.IconType != IconTypeUpload {
		t.Errorf("expected icon type %q, got %q", IconTypeUpload, s.IconType)
	}
	if s.CustomIconURL != "/uploads/icons/site-a.png?v=2" {
		t.Errorf("expected custom icon url to be set, got %q", s.CustomIconURL)
	}
}

// TestClearSiteIcon tests resetting icon configuration.
func TestClearSiteIcon(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	id, _ := db.AddSite(Site{
		Name:          "Example",
		IconType:      IconTypeUpload,
		Icon:          "/uploads/icons/site-old.png",
		CustomIconURL: "/uploads/icons/site-old.png",
	})

	if err := db.ClearSiteIcon(id); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	s, _ := db.GetSite(id)
	if s.IconType != IconTypeAuto || s.Icon != "" || s.CustomIconURL != "" {
		t.Errorf("expected cleared icon configuration, got %+v", s)
	}
}

// TestDeleteSite tests site deletion.
func TestDeleteSite(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	t.Run("deletes existing site", func(t *testing.T) {
		id, _ := db.AddSite(Site{Name: "Doomed"})

		if err := db.DeleteSite(id); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if _, err := db.GetSite(id); err == nil {
			t.Error("expected site to be gone")
		}
	})

	t.Run("returns error for non-existent site", func(t *testing.T) {
		if err := db.DeleteSite("ghost"); err == nil {
			t.Error("expected error for non-existent site, got nil")
		}
	})
}

// TestClearParents tests the bulk parent repair.
func TestClearParents(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	db.AddSite(Site{ID: "f1", Name: "Folder", Type: SiteTypeFolder})
	db.AddSite(Site{ID: "a", Name: "A", ParentID: "f1"})
	db.AddSite(Site{ID: "b", Name: "B", ParentID: "f1"})

	t.Run("clears parents in one update", func(t *testing.T) {
		n, err := db.ClearParents([]string{"a", "b"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if n != 2 {
			t.Errorf("expected 2 rows affected, got %d", n)
		}

		for _, id := range []string{"a", "b"} {
			s, _ := db.GetSite(id)
			if s.ParentID != "" {
				t.Errorf("expected %q at root level, got parent %q", id, s.ParentID)
			}
		}
	})

	t.Run("empty input is a no-op", func(t *testing.T) {
		n, err := db.ClearParents(nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if n != 0 {
			t.Errorf("expected 0 rows affected, got %d", n)
		}
	})
}

// TestReassignCategories tests the bulk category repair.
func TestReassignCategories(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	db.AddSite(Site{ID: "a", Name: "A", Category: "Gone"})
	db.AddSite(Site{ID: "b", Name: "B", Category: "Gone"})
	db.AddSite(Site{ID: "c", Name: "C", Category: "Keep"})

	n, err := db.ReassignCategories([]string{"a", "b"}, "Default")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 rows affected, got %d", n)
	}

	for _, id := range []string{"a", "b"} {
		s, _ := db.GetSite(id)
		if s.Category != "Default" {
			t.Errorf("expected %q reassigned to 'Default', got %q", id, s.Category)
		}
	}
	s, _ := db.GetSite("c")
	if s.Category != "Keep" {
		t.Errorf("expected 'c' untouched, got category %q", s.Category)
	}
}
