package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"fjacquet/bank-ingest/internal/logging"
	"fjacquet/bank-ingest/internal/models"
)

type seedFile struct {
	Categories []seedCategory `yaml:"categories"`
}

type seedCategory struct {
	Name     string        `yaml:"name"`
	Alias    string        `yaml:"alias"`
	Keywords []seedKeyword `yaml:"keywords"`
}

// seedKeyword accepts either a bare string or a full keyword mapping.
type seedKeyword models.CategoryKeyword

func (k *seedKeyword) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		k.Keyword = node.Value
		return nil
	}
	var full models.CategoryKeyword
	if err := node.Decode(&full); err != nil {
		return err
	}
	*k = seedKeyword(full)
	return nil
}

// FindConfigFile looks for filename as given, then under config/ and
// configs/, then under ~/.config/bank-ingest.
func FindConfigFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err != nil {
			return "", err
		}
		return filename, nil
	}
	locations := []string{
		filename,
		filepath.Join("config", filename),
		filepath.Join("configs", filename),
	}
	if home, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(home, ".config", "bank-ingest", filename))
	}
	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc, nil
		}
	}
	return "", os.ErrNotExist
}

// LoadSeedFile reads categories from a YAML seed file.
func LoadSeedFile(path string) ([]models.Category, error) {
	resolved, err := FindConfigFile(path)
	if err != nil {
		return nil, fmt.Errorf("seed file %s: %w", path, err)
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, fmt.Errorf("error reading seed file: %w", err)
	}
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("error parsing seed file %s: %w", resolved, err)
	}

	out := make([]models.Category, 0, len(f.Categories))
	for _, sc := range f.Categories {
		if strings.TrimSpace(sc.Name) == "" {
			return nil, fmt.Errorf("seed file %s: category without a name", resolved)
		}
		c := models.Category{Name: strings.TrimSpace(sc.Name), AliasName: strings.TrimSpace(sc.Alias)}
		for _, k := range sc.Keywords {
			c.Keywords = append(c.Keywords, models.CategoryKeyword(k))
		}
		out = append(out, c)
	}
	return out, nil
}

// Seed inserts cats when the category table is empty and returns how many
// were inserted.
func (s *Store) Seed(ctx context.Context, cats []models.Category) (int, error) {
	n, err := s.Categories().Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}

	err = inTx(ctx, s.db, func(tx *sql.Tx) error {
		for i, c := range cats {
			id := c.ID
			if id == "" {
				id = uuid.NewString()
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO categories (id, name, alias_name, position) VALUES (?, ?, ?, ?)`,
				id, c.Name, c.AliasName, i+1); err != nil {
				return fmt.Errorf("failed to seed category %s: %w", c.Name, err)
			}
			for _, k := range c.Keywords {
				kw := strings.ToLower(strings.TrimSpace(k.Keyword))
				if kw == "" {
					continue
				}
				if _, err := tx.ExecContext(ctx,
					`INSERT OR IGNORE INTO category_keywords (category_id, keyword, is_exact, priority) VALUES (?, ?, ?, ?)`,
					id, kw, k.IsExact, k.Priority); err != nil {
					return fmt.Errorf("failed to seed keyword %s: %w", kw, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.logger.Info("seeded categories", logging.F(logging.FieldCount, len(cats)))
	return len(cats), nil
}
