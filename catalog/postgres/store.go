// Package postgres is a pgx-backed recipe catalog.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"pantrypilot/catalog"
	"pantrypilot/recipe"
)

const uniqueViolationCode = "23505"

// Schema creates the recipes table. Ingredients are stored as a JSONB array of
// {ingredientName, quantity, unit} objects.
const Schema = `
CREATE TABLE IF NOT EXISTS recipes (
	seq          BIGSERIAL PRIMARY KEY,
	id           TEXT NOT NULL UNIQUE,
	title        TEXT NOT NULL,
	title_key    TEXT NOT NULL,
	instructions TEXT NOT NULL DEFAULT '',
	prep_time    INTEGER NOT NULL,
	ingredients  JSONB NOT NULL,
	origin       TEXT NOT NULL,
	CONSTRAINT recipes_title_key_unique UNIQUE (title_key)
);
CREATE INDEX IF NOT EXISTS recipes_prep_time_idx ON recipes (prep_time);
`

const selectColumns = `id, title, instructions, prep_time, ingredients, origin`

// Store implements catalog.Store on a pgx pool.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Migrate applies Schema.
func (s *Store) Migrate(ctx context.Context) error {
	if s.pool == nil {
		return errors.New("nil postgres pool")
	}
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("migrate recipes: %w", err)
	}
	return nil
}

func (s *Store) QueryByPrepTimeAndIngredientNames(ctx context.Context, minPrep, maxPrep int, names []string) ([]recipe.Recipe, error) {
	if s.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	normalized := make([]string, 0, len(names))
	for _, n := range names {
		normalized = append(normalized, recipe.NormalizeName(n))
	}

	rows, err := s.pool.Query(ctx, `
		SELECT `+selectColumns+`
		FROM recipes r
		WHERE r.prep_time BETWEEN $1 AND $2
		  AND EXISTS (
			SELECT 1 FROM jsonb_array_elements(r.ingredients) AS ing
			WHERE lower(trim(ing->>'ingredientName')) = ANY($3)
		  )
		ORDER BY r.seq
	`, minPrep, maxPrep, normalized)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (s *Store) Save(ctx context.Context, r recipe.Recipe) (recipe.Recipe, error) {
	if s.pool == nil {
		return recipe.Recipe{}, errors.New("nil postgres pool")
	}
	r = r.Clone()
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Origin == "" {
		r.Origin = recipe.OriginStored
	}
	ingredients, err := json.Marshal(r.Ingredients)
	if err != nil {
		return recipe.Recipe{}, fmt.Errorf("encode ingredients: %w", err)
	}

	err = pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO recipes (id, title, title_key, instructions, prep_time, ingredients, origin)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, r.ID, r.Title, r.Key(), r.Instructions, r.PrepTimeMinutes, ingredients, string(r.Origin))
		return err
	})
	if err != nil {
		var pe *pgconn.PgError
		if errors.As(err, &pe) && pe.Code == uniqueViolationCode && pe.ConstraintName == "recipes_title_key_unique" {
			existing, ferr := s.FindByTitle(ctx, r.Title)
			if ferr != nil {
				return recipe.Recipe{}, ferr
			}
			return existing, catalog.ErrDuplicateTitle
		}
		return recipe.Recipe{}, err
	}
	return r, nil
}

func (s *Store) FindByTitle(ctx context.Context, title string) (recipe.Recipe, error) {
	return s.one(ctx, `SELECT `+selectColumns+` FROM recipes WHERE title_key = $1`, recipe.NormalizeTitle(title))
}

func (s *Store) Get(ctx context.Context, id string) (recipe.Recipe, error) {
	return s.one(ctx, `SELECT `+selectColumns+` FROM recipes WHERE id = $1`, id)
}

func (s *Store) List(ctx context.Context) ([]recipe.Recipe, error) {
	if s.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	rows, err := s.pool.Query(ctx, `SELECT `+selectColumns+` FROM recipes ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (s *Store) one(ctx context.Context, query string, arg any) (recipe.Recipe, error) {
	if s.pool == nil {
		return recipe.Recipe{}, errors.New("nil postgres pool")
	}
	r, err := scan(s.pool.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return recipe.Recipe{}, catalog.ErrNotFound
	}
	return r, err
}

func collect(rows pgx.Rows) ([]recipe.Recipe, error) {
	defer rows.Close()
	out := make([]recipe.Recipe, 0)
	for rows.Next() {
		r, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scan(row pgx.Row) (recipe.Recipe, error) {
	var (
		r           recipe.Recipe
		ingredients []byte
		origin      string
	)
	if err := row.Scan(&r.ID, &r.Title, &r.Instructions, &r.PrepTimeMinutes, &ingredients, &origin); err != nil {
		return recipe.Recipe{}, err
	}
	if err := json.Unmarshal(ingredients, &r.Ingredients); err != nil {
		return recipe.Recipe{}, fmt.Errorf("decode ingredients: %w", err)
	}
	r.Origin = recipe.Origin(origin)
	return r, nil
}

var _ catalog.Store = (*Store)(nil)
