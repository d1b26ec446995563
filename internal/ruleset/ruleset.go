// Package ruleset loads scoring rulesets from YAML authoring documents and
// persists them in Postgres for reproducible scoring runs.
package ruleset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"gopkg.in/yaml.v3"

	"github.com/albapepper/diamondstats/internal/scoring"
)

// ErrNotFound is returned for an unknown ruleset id. Callers report it as a
// lookup miss; it never aborts a batch.
var ErrNotFound = errors.New("ruleset not found")

// Info is a ruleset listing entry.
type Info struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// LoadFile parses and validates a YAML ruleset document.
func LoadFile(path string) (*scoring.Ruleset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ruleset file: %w", err)
	}
	var rs scoring.Ruleset
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("parse ruleset %s: %w", path, err)
	}
	if err := Validate(&rs); err != nil {
		return nil, fmt.Errorf("ruleset %s: %w", path, err)
	}
	return &rs, nil
}

// Validate checks structural requirements. Stat names are deliberately not
// checked against the domain tables — an unknown stat resolves to absent at
// scoring time, which keeps older engines compatible with newer documents.
func Validate(rs *scoring.Ruleset) error {
	if rs.ID == "" {
		return fmt.Errorf("missing id")
	}
	if rs.Name == "" {
		return fmt.Errorf("missing name")
	}
	validOps := map[string]bool{
		scoring.OpGTE: true, scoring.OpLTE: true,
		scoring.OpGT: true, scoring.OpLT: true, scoring.OpEQ: true,
	}
	for i, bonus := range rs.Bonuses {
		if bonus.Name == "" {
			return fmt.Errorf("bonus %d: missing name", i)
		}
		if len(bonus.Conditions) == 0 {
			return fmt.Errorf("bonus %q: no conditions", bonus.Name)
		}
		switch bonus.Combinator {
		case scoring.CombinatorAnd, scoring.CombinatorOr, "":
		default:
			return fmt.Errorf("bonus %q: unknown combinator %q", bonus.Name, bonus.Combinator)
		}
		for _, cond := range bonus.Conditions {
			if !validOps[cond.Op] {
				return fmt.Errorf("bonus %q: unknown op %q", bonus.Name, cond.Op)
			}
		}
	}
	return nil
}

// Save upserts a ruleset document.
func Save(ctx context.Context, pool *pgxpool.Pool, rs *scoring.Ruleset) error {
	doc, err := json.Marshal(rs)
	if err != nil {
		return fmt.Errorf("marshal ruleset %s: %w", rs.ID, err)
	}
	_, err = pool.Exec(ctx, `
		INSERT INTO rulesets (id, name, doc)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			doc = EXCLUDED.doc,
			updated_at = NOW()`,
		rs.ID, rs.Name, doc,
	)
	if err != nil {
		return fmt.Errorf("save ruleset %s: %w", rs.ID, err)
	}
	return nil
}

// Get returns a stored ruleset by id.
func Get(ctx context.Context, pool *pgxpool.Pool, id string) (*scoring.Ruleset, error) {
	var storedID, name string
	var doc []byte
	err := pool.QueryRow(ctx, "ruleset_by_id", id).Scan(&storedID, &name, &doc)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("ruleset %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get ruleset %q: %w", id, err)
	}

	var rs scoring.Ruleset
	if err := json.Unmarshal(doc, &rs); err != nil {
		return nil, fmt.Errorf("decode ruleset %q: %w", id, err)
	}
	rs.ID = storedID
	rs.Name = name
	return &rs, nil
}

// List returns all stored rulesets ordered by name.
func List(ctx context.Context, pool *pgxpool.Pool) ([]Info, error) {
	rows, err := pool.Query(ctx, "ruleset_list")
	if err != nil {
		return nil, fmt.Errorf("list rulesets: %w", err)
	}
	defer rows.Close()

	var infos []Info
	for rows.Next() {
		var info Info
		if err := rows.Scan(&info.ID, &info.Name); err != nil {
			return nil, fmt.Errorf("scan ruleset: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}
