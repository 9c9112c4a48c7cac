package db

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidSiteType is returned when a site's type or icon mode fails validation.
var ErrInvalidSiteType = errors.New("invalid site type")

func validateSite(s Site) error {
	switch s.Type {
	case SiteTypeSite, SiteTypeFolder:
	default:
		return fmt.Errorf("%w: type must be %q or %q, got %q", ErrInvalidSiteType, SiteTypeSite, SiteTypeFolder, s.Type)
	}
	switch s.IconType {
	case IconTypeAuto, IconTypeUpload, IconTypeLibrary:
	default:
		return fmt.Errorf("%w: icon type must be %q, %q or %q, got %q",
			ErrInvalidSiteType, IconTypeAuto, IconTypeUpload, IconTypeLibrary, s.IconType)
	}
	return nil
}

const siteColumns = "id, name, url, type, icon_type, icon, custom_icon_url, parent_id, category, position, created_at"

func scanSite(row interface{ Scan(...any) error }) (Site, error) {
	var s Site
	var parentID sql.NullString
	err := row.Scan(&s.ID, &s.Name, &s.URL, &s.Type, &s.IconType, &s.Icon,
		&s.CustomIconURL, &parentID, &s.Category, &s.Position, &s.CreatedAt)
	if err != nil {
		return Site{}, err
	}
	s.ParentID = parentID.String
	return s, nil
}

// parentValue maps an empty ParentID to NULL so root-level sites carry
// no dangling empty-string reference.
func parentValue(parentID string) any {
	if parentID == "" {
		return nil
	}
	return parentID
}

// ------------------------------
// Site methods
// ------------------------------

func (db *DB) GetSite(id string) (Site, error) {
	row := db.db.QueryRow("SELECT "+siteColumns+" FROM sites WHERE id = ?", id)
	s, err := scanSite(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Site{}, fmt.Errorf("site not found: %s", id)
		}
		return Site{}, fmt.Errorf("failed to get site: %w", err)
	}
	return s, nil
}

// AddSite inserts a new site record and returns its identifier. A UUID
// is assigned when the site carries no ID; empty Type and IconType
// default to "site" and "auto".
// Emits a SiteCreatedEvent after successful insert.
func (db *DB) AddSite(s Site) (string, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Type == "" {
		s.Type = SiteTypeSite
	}
	if s.IconType == "" {
		s.IconType = IconTypeAuto
	}
	if err := validateSite(s); err != nil {
		return "", err
	}

	s.CreatedAt = time.Now().Format(time.RFC3339)
	_, err := db.db.Exec(
		"INSERT INTO sites ("+siteColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		s.ID, s.Name, s.URL, s.Type, s.IconType, s.Icon, s.CustomIconURL,
		parentValue(s.ParentID), s.Category, s.Position, s.CreatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("failed to add site: %w", err)
	}

	db.emit(SiteCreatedEvent{Site: s})

	return s.ID, nil
}

// ListSites returns sites ordered by position and creation time. A
// non-empty ids slice limits the result to that subset; unknown ids are
// silently absent from the result.
func (db *DB) ListSites(ids []string) ([]Site, error) {
	query := "SELECT " + siteColumns + " FROM sites"
	var args []any
	if len(ids) > 0 {
		placeholders := strings.Repeat("?, ", len(ids)-1) + "?"
		query += " WHERE id IN (" + placeholders + ")"
		for _, id := range ids {
			args = append(args, id)
		}
	}
	query += " ORDER BY position, created_at"

	rows, err := db.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("failed to close rows: %v", err)
		}
	}()

	var out []Site
	for rows.Next() {
		s, err := scanSite(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan site: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// UpdateSite replaces a site's mutable fields.
// Emits a SiteUpdatedEvent after successful update.
func (db *DB) UpdateSite(s Site) error {
	if err := validateSite(s); err != nil {
		return err
	}

	res, err := db.db.Exec(`
		UPDATE sites
		SET name = ?, url = ?, type = ?, icon_type = ?, icon = ?,
		    custom_icon_url = ?, parent_id = ?, category = ?, position = ?
		WHERE id = ?`,
		s.Name, s.URL, s.Type, s.IconType, s.Icon, s.CustomIconURL,
		parentValue(s.ParentID), s.Category, s.Position, s.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update site: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to determine rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("site not found: %s", s.ID)
	}

	updated, err := db.GetSite(s.ID)
	if err == nil {
		db.emit(SiteUpdatedEvent{Site: updated})
	}

	return nil
}

// UpdateSiteIcon points a site's icon at a cached path (or provider URL).
// Emits an IconSavedEvent after successful update.
func (db *DB) UpdateSiteIcon(id string, icon string) error {
	res, err := db.db.Exec("UPDATE sites SET icon = ? WHERE id = ?", icon, id)
	if err != nil {
		return fmt.Errorf("failed to update site icon: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to determine rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("site not found: %s", id)
	}

	db.emit(IconSavedEvent{SiteID: id, Icon: icon})

	return nil
}

// SetCustomIcon switches a site to upload mode pointing at a stored path.
// Emits an IconSavedEvent after successful update.
func (db *DB) SetCustomIcon(id string, path string) error {
	res, err := db.db.Exec(
		"UPDATE sites SET icon_type = ?, custom_icon_url = ? WHERE id = ?",
		IconTypeUpload, path, id,
	)
	if err != nil {
		return fmt.Errorf("failed to set custom icon: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to determine rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("site not found: %s", id)
	}

	db.emit(IconSavedEvent{SiteID: id, Icon: path})

	return nil
}

// ClearSiteIcon resets a site's icon configuration to automatic with no
// cached reference. The previously stored paths are carried on the
// emitted IconClearedEvent so the cached files can be removed.
func (db *DB) ClearSiteIcon(id string) error {
	prev, err := db.GetSite(id)
	if err != nil {
		return err
	}

	_, err = db.db.Exec(
		"UPDATE sites SET icon_type = ?, icon = '', custom_icon_url = '' WHERE id = ?",
		IconTypeAuto, id,
	)
	if err != nil {
		return fmt.Errorf("failed to clear site icon: %w", err)
	}

	db.emit(IconClearedEvent{SiteID: id, Icon: prev.Icon, CustomIconURL: prev.CustomIconURL})

	return nil
}

// DeleteSite removes a site record.
// Emits a SiteDeletedEvent carrying the state before deletion.
func (db *DB) DeleteSite(id string) error {
	s, _ := db.GetSite(id)

	res, err := db.db.Exec("DELETE FROM sites WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete site: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to determine rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("site not found: %s", id)
	}

	if s.ID == "" {
		s.ID = id
	}
	db.emit(SiteDeletedEvent{Site: s})

	return nil
}

// ------------------------------
// Bulk repair methods
// ------------------------------

// ClearParents moves the given sites to the root level in one update.
func (db *DB) ClearParents(ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders := strings.Repeat("?, ", len(ids)-1) + "?"
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	res, err := db.db.Exec("UPDATE sites SET parent_id = NULL WHERE id IN ("+placeholders+")", args...)
	if err != nil {
		return 0, fmt.Errorf("failed to clear parents: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to determine rows affected: %w", err)
	}
	return affected, nil
}

// ReassignCategories points the given sites at a category name in one update.
func (db *DB) ReassignCategories(ids []string, name string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders := strings.Repeat("?, ", len(ids)-1) + "?"
	args := make([]any, 0, len(ids)+1)
	args = append(args, name)
	for _, id := range ids {
		args = append(args, id)
	}
	res, err := db.db.Exec("UPDATE sites SET category = ? WHERE id IN ("+placeholders+")", args...)
	if err != nil {
		return 0, fmt.Errorf("failed to reassign categories: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to determine rows affected: %w", err)
	}
	return affected, nil
}
