package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"autoblogger/internal/domain"
	"autoblogger/internal/ports"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresStore persists schedules, articles, templates and the used-image
// ledger into Postgres. One instance backs all four store ports.
type PostgresStore struct {
	db *sql.DB
}

var (
	_ ports.ScheduleStore = (*PostgresStore)(nil)
	_ ports.ArticleStore  = (*PostgresStore)(nil)
	_ ports.TemplateStore = (*PostgresStore)(nil)
	_ ports.LedgerStore   = (*PostgresStore)(nil)
)

// NewPostgresStore wires a sql.DB implementation.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the tables on first start.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if s.db == nil {
		return nil
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS templates (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			spec JSONB NOT NULL DEFAULT '{}'::jsonb
		)`,
		`CREATE TABLE IF NOT EXISTS schedules (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			template_id TEXT NOT NULL DEFAULT '',
			broad_topic TEXT NOT NULL DEFAULT '',
			frequency TEXT NOT NULL DEFAULT 'daily',
			execution_time TEXT NOT NULL DEFAULT '09:00',
			mode TEXT NOT NULL DEFAULT 'manual',
			status TEXT NOT NULL DEFAULT 'paused',
			output_status TEXT NOT NULL DEFAULT 'draft',
			provider TEXT NOT NULL DEFAULT '',
			model TEXT NOT NULL DEFAULT '',
			notify BOOLEAN NOT NULL DEFAULT FALSE,
			next_run_at TIMESTAMPTZ,
			queue TEXT[] NOT NULL DEFAULT '{}'
		)`,
		`CREATE TABLE IF NOT EXISTS articles (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL DEFAULT '',
			slug TEXT NOT NULL DEFAULT '',
			body TEXT NOT NULL DEFAULT '',
			keyword TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'draft',
			author_id TEXT NOT NULL DEFAULT '',
			featured_image_id TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS article_meta (
			article_id TEXT NOT NULL,
			key TEXT NOT NULL,
			value TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (article_id, key)
		)`,
		`CREATE TABLE IF NOT EXISTS article_tags (
			article_id TEXT NOT NULL,
			tag TEXT NOT NULL,
			PRIMARY KEY (article_id, tag)
		)`,
		`CREATE TABLE IF NOT EXISTS execution_logs (
			id BIGSERIAL PRIMARY KEY,
			owner_kind TEXT NOT NULL,
			owner_id TEXT NOT NULL,
			logged_at TIMESTAMPTZ NOT NULL,
			severity TEXT NOT NULL DEFAULT 'info',
			message TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS used_images (
			position INT PRIMARY KEY,
			url TEXT NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// GetTemplate loads a template by id and normalizes its optional fields.
func (s *PostgresStore) GetTemplate(ctx context.Context, id string) (domain.Template, error) {
	if s.db == nil {
		return domain.Template{}, fmt.Errorf("template %q: storage unavailable", id)
	}

	query, args, err := psql.Select("id", "name", "spec").
		From("templates").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return domain.Template{}, fmt.Errorf("build query: %w", err)
	}

	var (
		tpl  domain.Template
		spec []byte
	)
	row := s.db.QueryRowContext(ctx, query, args...)
	if err := row.Scan(&tpl.ID, &tpl.Name, &spec); err != nil {
		if err == sql.ErrNoRows {
			return domain.Template{}, fmt.Errorf("template %q not found", id)
		}
		return domain.Template{}, fmt.Errorf("scan template: %w", err)
	}

	if err := json.Unmarshal(spec, &tpl); err != nil {
		return domain.Template{}, fmt.Errorf("decode template spec: %w", err)
	}
	tpl.ID = id

	return tpl.WithDefaults(), nil
}

// SaveTemplate upserts a template; the style fields are stored as one JSON
// document since the pipeline only ever reads them whole.
func (s *PostgresStore) SaveTemplate(ctx context.Context, tpl domain.Template) error {
	if s.db == nil {
		return nil
	}

	spec, err := json.Marshal(tpl)
	if err != nil {
		return fmt.Errorf("encode template spec: %w", err)
	}

	query, args, err := psql.Insert("templates").
		Columns("id", "name", "spec").
		Values(tpl.ID, tpl.Name, spec).
		Suffix("ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, spec = EXCLUDED.spec").
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert template: %w", err)
	}
	return nil
}

// ListSchedules loads every schedule with its queue.
func (s *PostgresStore) ListSchedules(ctx context.Context) ([]domain.Schedule, error) {
	if s.db == nil {
		return nil, nil
	}

	query, args, err := psql.Select(
		"id", "name", "template_id", "broad_topic",
		"frequency", "execution_time", "mode", "status", "output_status",
		"provider", "model", "notify", "next_run_at", "queue",
	).From("schedules").OrderBy("id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query schedules: %w", err)
	}
	defer rows.Close()

	var schedules []domain.Schedule
	for rows.Next() {
		var (
			sched   domain.Schedule
			nextRun sql.NullTime
			queue   pq.StringArray
		)
		if err := rows.Scan(
			&sched.ID, &sched.Name, &sched.TemplateID, &sched.BroadTopic,
			&sched.Frequency, &sched.ExecutionTime, &sched.Mode, &sched.Status, &sched.OutputStatus,
			&sched.Provider, &sched.Model, &sched.Notify, &nextRun, &queue,
		); err != nil {
			return nil, fmt.Errorf("scan schedule: %w", err)
		}
		if nextRun.Valid {
			sched.NextRunAt = nextRun.Time
		}
		sched.Queue = []string(queue)
		schedules = append(schedules, sched)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return schedules, nil
}

// SaveSchedule upserts the full schedule row.
func (s *PostgresStore) SaveSchedule(ctx context.Context, sched domain.Schedule) error {
	if s.db == nil {
		return nil
	}
	if sched.ID == "" {
		sched.ID = uuid.NewString()
	}

	var nextRun any
	if !sched.NextRunAt.IsZero() {
		nextRun = sched.NextRunAt
	}

	query, args, err := psql.Insert("schedules").
		Columns(
			"id", "name", "template_id", "broad_topic",
			"frequency", "execution_time", "mode", "status", "output_status",
			"provider", "model", "notify", "next_run_at", "queue",
		).
		Values(
			sched.ID, sched.Name, sched.TemplateID, sched.BroadTopic,
			sched.Frequency, sched.ExecutionTime, sched.Mode, sched.Status, sched.OutputStatus,
			sched.Provider, sched.Model, sched.Notify, nextRun, pq.StringArray(sched.Queue),
		).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			template_id = EXCLUDED.template_id,
			broad_topic = EXCLUDED.broad_topic,
			frequency = EXCLUDED.frequency,
			execution_time = EXCLUDED.execution_time,
			mode = EXCLUDED.mode,
			status = EXCLUDED.status,
			output_status = EXCLUDED.output_status,
			provider = EXCLUDED.provider,
			model = EXCLUDED.model,
			notify = EXCLUDED.notify,
			next_run_at = EXCLUDED.next_run_at,
			queue = EXCLUDED.queue`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert schedule: %w", err)
	}
	return nil
}

// SaveQueue overwrites the pending-topic queue of one schedule.
func (s *PostgresStore) SaveQueue(ctx context.Context, id string, queue []string) error {
	return s.updateSchedule(ctx, id, "queue", pq.StringArray(queue))
}

// SetScheduleStatus flips the lifecycle state of one schedule.
func (s *PostgresStore) SetScheduleStatus(ctx context.Context, id string, status domain.ScheduleStatus) error {
	return s.updateSchedule(ctx, id, "status", status)
}

// SetNextRun stores the next dispatch time.
func (s *PostgresStore) SetNextRun(ctx context.Context, id string, at time.Time) error {
	return s.updateSchedule(ctx, id, "next_run_at", at)
}

func (s *PostgresStore) updateSchedule(ctx context.Context, id, column string, value any) error {
	if s.db == nil {
		return nil
	}

	query, args, err := psql.Update("schedules").
		Set(column, value).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update schedule %s: %w", column, err)
	}
	return nil
}

// AppendScheduleLog records one execution-log line against a schedule.
func (s *PostgresStore) AppendScheduleLog(ctx context.Context, id string, entry domain.LogEntry) error {
	return s.appendLog(ctx, "schedule", id, entry)
}

// CreateDraft inserts a new article row plus its meta and tags, and returns
// the assigned id.
func (s *PostgresStore) CreateDraft(ctx context.Context, article domain.Article) (string, error) {
	if s.db == nil {
		return "", fmt.Errorf("create draft: storage unavailable")
	}
	if article.ID == "" {
		article.ID = uuid.NewString()
	}
	if article.CreatedAt.IsZero() {
		article.CreatedAt = time.Now().UTC()
	}

	query, args, err := psql.Insert("articles").
		Columns("id", "title", "slug", "body", "keyword", "status", "author_id", "created_at").
		Values(article.ID, article.Title, article.Slug, article.Body, article.Keyword,
			domain.ArticleDraft, article.AuthorID, article.CreatedAt).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return "", fmt.Errorf("insert article: %w", err)
	}
	return article.ID, nil
}

// UpdateContent replaces the article body.
func (s *PostgresStore) UpdateContent(ctx context.Context, id, body string) error {
	return s.updateArticle(ctx, id, "body", body)
}

// SetFeaturedImage attaches the featured asset.
func (s *PostgresStore) SetFeaturedImage(ctx context.Context, id, assetID string) error {
	return s.updateArticle(ctx, id, "featured_image_id", assetID)
}

// Publish flips the article to published.
func (s *PostgresStore) Publish(ctx context.Context, id string) error {
	return s.updateArticle(ctx, id, "status", domain.ArticlePublished)
}

func (s *PostgresStore) updateArticle(ctx context.Context, id, column string, value any) error {
	if s.db == nil {
		return nil
	}

	query, args, err := psql.Update("articles").
		Set(column, value).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update article %s: %w", column, err)
	}
	return nil
}

// SetMetaField upserts one meta key on an article.
func (s *PostgresStore) SetMetaField(ctx context.Context, id, key, value string) error {
	if s.db == nil {
		return nil
	}

	query, args, err := psql.Insert("article_meta").
		Columns("article_id", "key", "value").
		Values(id, key, value).
		Suffix("ON CONFLICT (article_id, key) DO UPDATE SET value = EXCLUDED.value").
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert meta %s: %w", key, err)
	}
	return nil
}

// SetTags replaces the tag set of an article.
func (s *PostgresStore) SetTags(ctx context.Context, id string, tags []string) error {
	if s.db == nil {
		return nil
	}

	del, delArgs, err := psql.Delete("article_tags").Where(sq.Eq{"article_id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, del, delArgs...); err != nil {
		return fmt.Errorf("clear tags: %w", err)
	}

	if len(tags) == 0 {
		return nil
	}

	insert := psql.Insert("article_tags").Columns("article_id", "tag")
	for _, tag := range tags {
		insert = insert.Values(id, tag)
	}

	query, args, err := insert.Suffix("ON CONFLICT DO NOTHING").ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert tags: %w", err)
	}
	return nil
}

// GetContent returns the article body.
func (s *PostgresStore) GetContent(ctx context.Context, id string) (string, error) {
	return s.articleField(ctx, id, "body")
}

// GetTitle returns the article title.
func (s *PostgresStore) GetTitle(ctx context.Context, id string) (string, error) {
	return s.articleField(ctx, id, "title")
}

func (s *PostgresStore) articleField(ctx context.Context, id, column string) (string, error) {
	if s.db == nil {
		return "", fmt.Errorf("article %q: storage unavailable", id)
	}

	query, args, err := psql.Select(column).From("articles").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return "", fmt.Errorf("build query: %w", err)
	}

	var value string
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("article %q not found", id)
		}
		return "", fmt.Errorf("scan article %s: %w", column, err)
	}
	return value, nil
}

// GetMetaField returns one meta value; a missing key yields an empty string.
func (s *PostgresStore) GetMetaField(ctx context.Context, id, key string) (string, error) {
	if s.db == nil {
		return "", nil
	}

	query, args, err := psql.Select("value").
		From("article_meta").
		Where(sq.Eq{"article_id": id, "key": key}).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build query: %w", err)
	}

	var value string
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("scan meta %s: %w", key, err)
	}
	return value, nil
}

// AppendArticleLog records one execution-log line against an article.
func (s *PostgresStore) AppendArticleLog(ctx context.Context, id string, entry domain.LogEntry) error {
	return s.appendLog(ctx, "article", id, entry)
}

func (s *PostgresStore) appendLog(ctx context.Context, kind, id string, entry domain.LogEntry) error {
	if s.db == nil {
		return nil
	}
	if entry.Time.IsZero() {
		entry.Time = time.Now().UTC()
	}
	if entry.Severity == "" {
		entry.Severity = domain.SeverityInfo
	}

	query, args, err := psql.Insert("execution_logs").
		Columns("owner_kind", "owner_id", "logged_at", "severity", "message").
		Values(kind, id, entry.Time, entry.Severity, entry.Message).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("append %s log: %w", kind, err)
	}
	return nil
}

// RecentTitles lists the newest published titles, optionally limited to the
// last N days.
func (s *PostgresStore) RecentTitles(ctx context.Context, days, limit int) ([]string, error) {
	if s.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}

	builder := psql.Select("title").
		From("articles").
		Where(sq.Eq{"status": domain.ArticlePublished}).
		OrderBy("created_at DESC").
		Limit(uint64(limit))
	if days > 0 {
		builder = builder.Where(sq.GtOrEq{"created_at": time.Now().UTC().AddDate(0, 0, -days)})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	return s.stringColumn(ctx, query, args, "title")
}

// SiteTags lists distinct tag names for prompt seeding.
func (s *PostgresStore) SiteTags(ctx context.Context, limit int) ([]string, error) {
	if s.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 200
	}

	query, args, err := psql.Select("DISTINCT tag").
		From("article_tags").
		OrderBy("tag").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	return s.stringColumn(ctx, query, args, "tag")
}

// LoadUsedImages restores the used-image URL history in insertion order.
func (s *PostgresStore) LoadUsedImages(ctx context.Context) ([]string, error) {
	if s.db == nil {
		return nil, nil
	}

	query, args, err := psql.Select("url").From("used_images").OrderBy("position").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	return s.stringColumn(ctx, query, args, "url")
}

// SaveUsedImages overwrites the used-image history with the given snapshot.
func (s *PostgresStore) SaveUsedImages(ctx context.Context, urls []string) error {
	if s.db == nil {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM used_images`); err != nil {
		return fmt.Errorf("clear used images: %w", err)
	}

	if len(urls) > 0 {
		insert := psql.Insert("used_images").Columns("position", "url")
		for i, url := range urls {
			insert = insert.Values(i, url)
		}
		query, args, err := insert.ToSql()
		if err != nil {
			return fmt.Errorf("build query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert used images: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit used images: %w", err)
	}
	return nil
}

func (s *PostgresStore) stringColumn(ctx context.Context, query string, args []any, what string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", what, err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, fmt.Errorf("scan %s: %w", what, err)
		}
		values = append(values, value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return values, nil
}
