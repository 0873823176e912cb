package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"clipforge/pipeline-go/internal/utils"
)

type Store struct {
	pool *pgxpool.Pool
}

// Clip is one short-form video working its way through the pipeline. Meta is
// a JSONB document: stage outputs land under their own keys, and a nested
// "status" map records which stages have completed.
type Clip struct {
	ID        int64
	Title     string
	Status    *string
	SourceURL string
	Meta      []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewStore(ctx context.Context, connString string) (*Store, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) GetClipByID(ctx context.Context, id int64) (Clip, error) {
	utils.Debug("db get clip", "id", id)
	row := s.pool.QueryRow(ctx, `
		SELECT id, title, status, source_url, meta, created_at, updated_at
		FROM clips
		WHERE id = $1
	`, id)

	var c Clip
	err := row.Scan(
		&c.ID,
		&c.Title,
		&c.Status,
		&c.SourceURL,
		&c.Meta,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return c, err
}

func (s *Store) FindFirstClip(ctx context.Context, where string, args ...any) (Clip, error) {
	query := `
		SELECT id, title, status, source_url, meta, created_at, updated_at
		FROM clips
		` + where + `
		ORDER BY id
		LIMIT 1
	`
	utils.Debug("db find first", "query", strings.TrimSpace(query), "args", args)
	row := s.pool.QueryRow(ctx, query, args...)
	var c Clip
	err := row.Scan(
		&c.ID,
		&c.Title,
		&c.Status,
		&c.SourceURL,
		&c.Meta,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return c, err
}

func (s *Store) CountClips(ctx context.Context, where string, args ...any) (int, error) {
	query := `SELECT COUNT(*) FROM clips ` + where
	utils.Debug("db count", "query", strings.TrimSpace(query), "args", args)
	row := s.pool.QueryRow(ctx, query, args...)
	var count int
	return count, row.Scan(&count)
}

func (s *Store) UpdateClipMetaStatus(ctx context.Context, id int64, status string, meta map[string]any) error {
	utils.Debug("db update meta+status", "id", id, "status", status)
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		UPDATE clips
		SET status = $1,
			meta = $2,
			updated_at = NOW()
		WHERE id = $3
	`, status, metaJSON, id)
	return err
}

func (s *Store) UpdateClipMeta(ctx context.Context, id int64, meta map[string]any) error {
	utils.Debug("db update meta", "id", id)
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		UPDATE clips
		SET meta = $1,
			updated_at = NOW()
		WHERE id = $2
	`, metaJSON, id)
	return err
}

func (s *Store) UpdateClipStatus(ctx context.Context, id int64, status string) error {
	utils.Debug("db update status", "id", id, "status", status)
	_, err := s.pool.Exec(ctx, `
		UPDATE clips
		SET status = $1,
			updated_at = NOW()
		WHERE id = $2
	`, status, id)
	return err
}

func (s *Store) UpdateClipTitle(ctx context.Context, id int64, title string) error {
	utils.Debug("db update title", "id", id, "title_len", len(title))
	_, err := s.pool.Exec(ctx, `
		UPDATE clips
		SET title = $1,
			updated_at = NOW()
		WHERE id = $2
	`, title, id)
	return err
}

func (s *Store) CreateClip(ctx context.Context, clip Clip) (int64, error) {
	utils.Debug("db create clip", "source", clip.SourceURL)
	row := s.pool.QueryRow(ctx, `
		INSERT INTO clips (title, status, source_url, meta, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id
	`, clip.Title, clip.Status, clip.SourceURL, clip.Meta)
	var id int64
	if err := row.Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// FindClipBySourceURL returns the zero Clip when no row matches.
func (s *Store) FindClipBySourceURL(ctx context.Context, sourceURL string) (Clip, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, title, status, source_url, meta, created_at, updated_at
		FROM clips
		WHERE source_url = $1
		ORDER BY id
		LIMIT 1
	`, sourceURL)
	var c Clip
	err := row.Scan(
		&c.ID,
		&c.Title,
		&c.Status,
		&c.SourceURL,
		&c.Meta,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Clip{}, nil
		}
		return Clip{}, err
	}
	return c, nil
}

func (s *Store) QueryClips(ctx context.Context, query string, args ...any) ([]Clip, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clips []Clip
	for rows.Next() {
		var c Clip
		if err := rows.Scan(
			&c.ID,
			&c.Title,
			&c.Status,
			&c.SourceURL,
			&c.Meta,
			&c.CreatedAt,
			&c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		clips = append(clips, c)
	}
	return clips, rows.Err()
}

func StatusTrueCondition(flags []string) string {
	conds := make([]string, 0, len(flags))
	for _, flag := range flags {
		conds = append(conds, fmt.Sprintf("meta->'status'->>'%s' = 'true'", flag))
	}
	return strings.Join(conds, " AND ")
}

func StatusNotTrueCondition(flags []string) string {
	conds := make([]string, 0, len(flags))
	for _, flag := range flags {
		conds = append(conds, fmt.Sprintf("(meta->'status'->>'%s' IS NULL OR meta->'status'->>'%s' <> 'true')", flag, flag))
	}
	return strings.Join(conds, " AND ")
}

func StatusFalseCondition(flags []string) string {
	conds := make([]string, 0, len(flags))
	for _, flag := range flags {
		conds = append(conds, fmt.Sprintf("meta->'status'->>'%s' = 'false'", flag))
	}
	return strings.Join(conds, " AND ")
}

func MetaKeyMissingCondition(keys []string) string {
	conds := make([]string, 0, len(keys))
	for _, key := range keys {
		conds = append(conds, fmt.Sprintf("NOT (meta ? '%s')", key))
	}
	return strings.Join(conds, " AND ")
}
