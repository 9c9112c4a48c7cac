package db

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidCategory is returned when a category fails validation.
var ErrInvalidCategory = errors.New("invalid category")

// ------------------------------
// Category methods
// ------------------------------

func (db *DB) GetCategory(id string) (Category, error) {
	var c Category
	err := db.db.QueryRow("SELECT id, name, position, created_at FROM categories WHERE id = ?", id).
		Scan(&c.ID, &c.Name, &c.Position, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Category{}, fmt.Errorf("category not found: %s", id)
		}
		return Category{}, fmt.Errorf("failed to get category: %w", err)
	}
	return c, nil
}

// AddCategory creates a new category and returns its identifier.
// Category names are unique; inserting a duplicate name fails.
func (db *DB) AddCategory(name string, position int) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty name", ErrInvalidCategory)
	}

	id := uuid.NewString()
	createdAt := time.Now().Format(time.RFC3339)
	_, err := db.db.Exec(
		"INSERT INTO categories (id, name, position, created_at) VALUES (?, ?, ?, ?)",
		id, name, position, createdAt,
	)
	if err != nil {
		return "", fmt.Errorf("failed to add category: %w", err)
	}
	return id, nil
}

// ListCategories returns all categories ordered by position and creation time.
func (db *DB) ListCategories() ([]Category, error) {
	rows, err := db.db.Query("SELECT id, name, position, created_at FROM categories ORDER BY position, created_at")
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("failed to close rows: %v", err)
		}
	}()

	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Position, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// DeleteCategory removes a category record. Sites referencing the name
// are left in place; the consistency checker repairs them.
func (db *DB) DeleteCategory(id string) error {
	res, err := db.db.Exec("DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to determine rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("category not found: %s", id)
	}
	return nil
}
