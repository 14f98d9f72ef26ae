package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/paulmach/orb"
)

// Feature is an indexed map feature. Seq preserves document order; later
// features render above earlier ones.
type Feature struct {
	Seq        int64
	ID         string
	Layer      string
	Bound      orb.Bound
	Center     orb.Point
	Properties map[string]any
}

// FeatureQuery selects features whose bounds intersect Bound. Layers nil
// means all layers; an empty non-nil Layers matches nothing. Results are
// ordered nearest to Near first, then topmost first. With Topmost set they
// are ordered by draw order alone, topmost first, and Near is ignored.
type FeatureQuery struct {
	Bound   orb.Bound
	Near    orb.Point
	Layers  []string
	Limit   int
	Topmost bool
}

// FeatureRepo handles the feature index.
type FeatureRepo struct {
	db *sql.DB
}

// NewFeatureRepo returns a repository over db.
func NewFeatureRepo(db *sql.DB) *FeatureRepo { return &FeatureRepo{db: db} }

// ReplaceAll swaps the index contents for features in one transaction.
func (r *FeatureRepo) ReplaceAll(ctx context.Context, features []Feature) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM features`); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO features(id, layer, min_lng, min_lat, max_lng, max_lat, lng, lat, properties)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?);
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, f := range features {
		props, err := json.Marshal(f.Properties)
		if err != nil {
			return fmt.Errorf("feature %q properties: %w", f.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, f.ID, f.Layer,
			f.Bound.Min.Lon(), f.Bound.Min.Lat(), f.Bound.Max.Lon(), f.Bound.Max.Lat(),
			f.Center.Lon(), f.Center.Lat(), string(props)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Query returns the features matching q.
func (r *FeatureRepo) Query(ctx context.Context, q FeatureQuery) ([]Feature, error) {
	if q.Layers != nil && len(q.Layers) == 0 {
		return nil, nil
	}
	var (
		where strings.Builder
		args  []any
	)
	where.WriteString(`max_lng >= ? AND min_lng <= ? AND max_lat >= ? AND min_lat <= ?`)
	args = append(args, q.Bound.Min.Lon(), q.Bound.Max.Lon(), q.Bound.Min.Lat(), q.Bound.Max.Lat())
	if len(q.Layers) > 0 {
		where.WriteString(` AND layer IN (?` + strings.Repeat(`, ?`, len(q.Layers)-1) + `)`)
		for _, l := range q.Layers {
			args = append(args, l)
		}
	}
	query := `
	SELECT seq, id, layer, min_lng, min_lat, max_lng, max_lat, lng, lat, properties
	FROM features
	WHERE ` + where.String()
	if q.Topmost {
		query += ` ORDER BY seq DESC`
	} else {
		query += ` ORDER BY (lng - ?) * (lng - ?) + (lat - ?) * (lat - ?) ASC, seq DESC`
		args = append(args, q.Near.Lon(), q.Near.Lon(), q.Near.Lat(), q.Near.Lat())
	}
	if q.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, q.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Feature
	for rows.Next() {
		var (
			f     Feature
			props string
		)
		if err := rows.Scan(&f.Seq, &f.ID, &f.Layer,
			&f.Bound.Min[0], &f.Bound.Min[1], &f.Bound.Max[0], &f.Bound.Max[1],
			&f.Center[0], &f.Center[1], &props); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(props), &f.Properties); err != nil {
			return nil, fmt.Errorf("feature %q properties: %w", f.ID, err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// Layers lists distinct layer IDs in order of first appearance.
func (r *FeatureRepo) Layers(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT layer FROM features GROUP BY layer ORDER BY MIN(seq)`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var l string
		if err := rows.Scan(&l); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// Count returns the number of indexed features.
func (r *FeatureRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM features`).Scan(&n)
	return n, err
}
