package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"newshub/domain"
)

type Repository struct{ db *sql.DB }

func New(db *sql.DB) *Repository { return &Repository{db: db} }

func (r *Repository) Ensure(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
CREATE EXTENSION IF NOT EXISTS pgcrypto;
CREATE TABLE IF NOT EXISTS sources (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    created_at TIMESTAMP NOT NULL DEFAULT now(),
    updated_at TIMESTAMP NOT NULL DEFAULT now(),
    name TEXT UNIQUE NOT NULL,
    rss_url TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS articles (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    created_at TIMESTAMP NOT NULL DEFAULT now(),
    updated_at TIMESTAMP NOT NULL DEFAULT now(),
    title TEXT NOT NULL,
    url TEXT UNIQUE NOT NULL,
    content TEXT NOT NULL DEFAULT '',
    published_at TIMESTAMP NOT NULL,
    source_id UUID NOT NULL REFERENCES sources(id),
    verified BOOLEAN NOT NULL DEFAULT false
);
`)
	return err
}

func (r *Repository) AddSource(ctx context.Context, name, rssURL string) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO sources (name, rss_url) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`, name, rssURL)
	return err
}

func (r *Repository) DeleteSource(ctx context.Context, name string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sources WHERE name = $1`, name)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *Repository) ListSources(ctx context.Context) ([]domain.Source, error) {
	return scanSources(r.db.QueryContext(ctx, `SELECT id, created_at, updated_at, name, rss_url FROM sources ORDER BY created_at ASC`))
}

func (r *Repository) GetSourceByName(ctx context.Context, name string) (domain.Source, error) {
	var s domain.Source
	row := r.db.QueryRowContext(ctx, `SELECT id, created_at, updated_at, name, rss_url FROM sources WHERE name = $1`, name)
	if err := row.Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt, &s.Name, &s.RSSURL); err != nil {
		return domain.Source{}, err
	}
	return s, nil
}

func (r *Repository) ListArticlesBySource(ctx context.Context, sourceID string, limit int) ([]domain.Article, error) {
	q := `SELECT id, created_at, updated_at, title, url, content, published_at, source_id, verified FROM articles WHERE source_id = $1 ORDER BY published_at DESC, created_at DESC`
	if limit > 0 {
		q += ` LIMIT $2`
		return scanArticles(r.db.QueryContext(ctx, q, sourceID, limit))
	}
	return scanArticles(r.db.QueryContext(ctx, q, sourceID))
}

func (r *Repository) GetStaleSources(ctx context.Context, limit int) ([]domain.Source, error) {
	q := `SELECT id, created_at, updated_at, name, rss_url FROM sources ORDER BY updated_at ASC, created_at ASC LIMIT $1`
	return scanSources(r.db.QueryContext(ctx, q, limit))
}

func (r *Repository) MarkSourcePolled(ctx context.Context, sourceID string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE sources SET updated_at = now() WHERE id = $1`, sourceID)
	return err
}

const upsertSuffix = ` ON CONFLICT (url) DO UPDATE SET title = EXCLUDED.title, content = EXCLUDED.content, published_at = EXCLUDED.published_at, source_id = EXCLUDED.source_id, verified = EXCLUDED.verified, updated_at = now()`

func (r *Repository) UpsertArticle(ctx context.Context, d domain.ArticleDraft) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO articles (title, url, content, published_at, source_id, verified) VALUES ($1,$2,$3,$4,$5,$6)`+upsertSuffix,
		d.Title, d.URL, d.Content, d.PublishedAt, d.SourceID, d.Verified)
	return err
}

// UpsertArticles writes all drafts in a single multi-row statement. A feed
// repeating the same URL within one batch makes Postgres reject the whole
// statement; callers degrade to UpsertArticle row by row when that happens.
func (r *Repository) UpsertArticles(ctx context.Context, drafts []domain.ArticleDraft) error {
	if len(drafts) == 0 {
		return nil
	}
	var sb strings.Builder
	sb.WriteString(`INSERT INTO articles (title, url, content, published_at, source_id, verified) VALUES `)
	args := make([]interface{}, 0, len(drafts)*6)
	for i, d := range drafts {
		if i > 0 {
			sb.WriteByte(',')
		}
		base := i * 6
		fmt.Fprintf(&sb, "($%d,$%d,$%d,$%d,$%d,$%d)", base+1, base+2, base+3, base+4, base+5, base+6)
		args = append(args, d.Title, d.URL, d.Content, d.PublishedAt, d.SourceID, d.Verified)
	}
	sb.WriteString(upsertSuffix)
	_, err := r.db.ExecContext(ctx, sb.String(), args...)
	return err
}

func scanSources(rows *sql.Rows, err error) ([]domain.Source, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Source
	for rows.Next() {
		var s domain.Source
		if err := rows.Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt, &s.Name, &s.RSSURL); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanArticles(rows *sql.Rows, err error) ([]domain.Article, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Article
	for rows.Next() {
		var a domain.Article
		if err := rows.Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt, &a.Title, &a.URL, &a.Content, &a.PublishedAt, &a.SourceID, &a.Verified); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
