package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"fjacquet/bank-ingest/internal/models"
)

// CategoryStore manages categories and their keywords.
type CategoryStore struct {
	db *sql.DB
}

// ListCategories returns categories in definition order, each with its
// keywords by descending priority.
func (s *CategoryStore) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, alias_name FROM categories ORDER BY position, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	var cats []models.Category
	index := make(map[string]int)
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.AliasName); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		index[c.ID] = len(cats)
		cats = append(cats, c)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	kw, err := s.db.QueryContext(ctx,
		`SELECT category_id, keyword, is_exact, priority FROM category_keywords ORDER BY priority DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query keywords: %w", err)
	}
	defer kw.Close()
	for kw.Next() {
		var (
			catID string
			k     models.CategoryKeyword
		)
		if err := kw.Scan(&catID, &k.Keyword, &k.IsExact, &k.Priority); err != nil {
			return nil, fmt.Errorf("failed to scan keyword: %w", err)
		}
		if i, ok := index[catID]; ok {
			cats[i].Keywords = append(cats[i].Keywords, k)
		}
	}
	return cats, kw.Err()
}

// AddKeyword attaches a substring keyword to a category. Adding an existing
// keyword is a no-op.
func (s *CategoryStore) AddKeyword(ctx context.Context, categoryID, keyword string) error {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return fmt.Errorf("keyword is empty")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO category_keywords (category_id, keyword) VALUES (?, ?)`,
		categoryID, strings.ToLower(keyword))
	if err != nil {
		return fmt.Errorf("failed to add keyword: %w", err)
	}
	return nil
}

// EnsureCategory returns the category called name, creating it when absent.
func (s *CategoryStore) EnsureCategory(ctx context.Context, name, alias string) (models.Category, error) {
	c := models.Category{Name: name, AliasName: alias}
	err := s.db.QueryRowContext(ctx, `SELECT id, alias_name FROM categories WHERE name = ?`, name).Scan(&c.ID, &c.AliasName)
	if err == nil {
		return c, nil
	}
	if err != sql.ErrNoRows {
		return c, fmt.Errorf("failed to look up category: %w", err)
	}
	c.ID = uuid.NewString()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO categories (id, name, alias_name, position)
		 VALUES (?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM categories))`,
		c.ID, c.Name, c.AliasName)
	if err != nil {
		return c, fmt.Errorf("failed to create category: %w", err)
	}
	return c, nil
}

// Count returns the number of categories.
func (s *CategoryStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count categories: %w", err)
	}
	return n, nil
}
