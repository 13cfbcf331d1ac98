package history

import (
	"context"
	"fmt"
	"time"
)

// Query is one recorded completion request.
type Query struct {
	ID         int64         `json:"id" yaml:"id"`
	File       string        `json:"file" yaml:"file"`
	RawPath    string        `json:"raw_path,omitempty" yaml:"raw_path,omitempty"`
	Kind       string        `json:"kind" yaml:"kind"`
	Offset     int           `json:"offset" yaml:"offset"`
	SDKCount   int           `json:"sdk_count" yaml:"sdk_count"`
	LocalCount int           `json:"local_count" yaml:"local_count"`
	ItemCount  int           `json:"item_count" yaml:"item_count"`
	Duration   time.Duration `json:"duration" yaml:"duration"`
	At         time.Time     `json:"at" yaml:"at"`
}

// Record appends q to the log. A zero At is replaced by the current time.
func (s *Store) Record(ctx context.Context, q Query) error {
	if q.At.IsZero() {
		q.At = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO queries (file_path, raw_path, kind, byte_offset, sdk_count, local_count, item_count, duration_us, queried_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		q.File, q.RawPath, q.Kind, q.Offset, q.SDKCount, q.LocalCount, q.ItemCount,
		q.Duration.Microseconds(), q.At.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record query %s: %w", q.File, err)
	}
	return nil
}

// Recent returns up to limit queries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Query, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, file_path, raw_path, kind, byte_offset, sdk_count, local_count, item_count, duration_us, queried_at
		FROM queries ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent: %w", err)
	}
	defer rows.Close()

	var out []Query
	for rows.Next() {
		var (
			q        Query
			duration int64
			at       string
		)
		if err := rows.Scan(&q.ID, &q.File, &q.RawPath, &q.Kind, &q.Offset,
			&q.SDKCount, &q.LocalCount, &q.ItemCount, &duration, &at); err != nil {
			return nil, fmt.Errorf("scan query: %w", err)
		}
		q.Duration = time.Duration(duration) * time.Microsecond
		q.At, _ = time.Parse(time.RFC3339Nano, at)
		out = append(out, q)
	}
	return out, rows.Err()
}

// Stats summarizes the log.
type Stats struct {
	Total        int64            `json:"total" yaml:"total"`
	ByKind       map[string]int64 `json:"by_kind" yaml:"by_kind"`
	MeanDuration time.Duration    `json:"mean_duration" yaml:"mean_duration"`
}

// GetStats returns statistics about the recorded queries.
func (s *Store) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{ByKind: make(map[string]int64)}

	var mean float64
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(AVG(duration_us), 0) FROM queries").Scan(&stats.Total, &mean)
	if err != nil {
		return nil, fmt.Errorf("count queries: %w", err)
	}
	stats.MeanDuration = time.Duration(mean) * time.Microsecond

	rows, err := s.db.QueryContext(ctx, "SELECT kind, COUNT(*) FROM queries GROUP BY kind")
	if err != nil {
		return nil, fmt.Errorf("count by kind: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			kind  string
			count int64
		)
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, fmt.Errorf("scan kind count: %w", err)
		}
		stats.ByKind[kind] = count
	}
	return stats, rows.Err()
}

// Prune keeps only the newest keep queries and returns how many were
// deleted.
func (s *Store) Prune(ctx context.Context, keep int) (int, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM queries WHERE id NOT IN (
			SELECT id FROM queries ORDER BY id DESC LIMIT ?
		)`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune history: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune history: %w", err)
	}
	return int(n), nil
}
