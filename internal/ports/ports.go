package ports

import (
	"context"
	"time"

	"autoblogger/internal/domain"
)

// ContentProvider generates raw text from a system/user prompt pair against a
// concrete LLM backend (OpenAI-compatible, Gemini, DeepSeek).
type ContentProvider interface {
	Name() string
	GenerateContent(ctx context.Context, systemPrompt, userPrompt, model string) (string, error)
}

// ImageSearcher queries one stock-photo backend (Unsplash, Pexels, Pixabay).
type ImageSearcher interface {
	Name() string
	SearchImages(ctx context.Context, query string, count int) ([]domain.ImageResult, error)
}

// ImageSideloader copies a remote image into the media store and reports the
// resulting asset.
type ImageSideloader interface {
	SideloadImage(ctx context.Context, url, ownerID, description string) (assetID string, err error)
	AssetURL(assetID string) string
}

// ProviderResolver maps a configured provider name to its client.
type ProviderResolver interface {
	ResolveProvider(name string) (ContentProvider, error)
}

// SearcherResolver maps a configured image provider name to its client.
type SearcherResolver interface {
	ResolveSearcher(name string) (ImageSearcher, error)
}

// TemplateStore resolves generation templates by id.
type TemplateStore interface {
	GetTemplate(ctx context.Context, id string) (domain.Template, error)
}

// ArticleStore is the CMS persistence surface the pipeline writes through.
type ArticleStore interface {
	CreateDraft(ctx context.Context, article domain.Article) (string, error)
	UpdateContent(ctx context.Context, id, body string) error
	SetMetaField(ctx context.Context, id, key, value string) error
	SetTags(ctx context.Context, id string, tags []string) error
	SetFeaturedImage(ctx context.Context, id, assetID string) error
	Publish(ctx context.Context, id string) error
	GetContent(ctx context.Context, id string) (string, error)
	GetTitle(ctx context.Context, id string) (string, error)
	GetMetaField(ctx context.Context, id, key string) (string, error)
	AppendArticleLog(ctx context.Context, id string, entry domain.LogEntry) error

	// RecentTitles returns the newest published titles, used to steer topic
	// synthesis away from repeats. Days <= 0 means no date filter.
	RecentTitles(ctx context.Context, days, limit int) ([]string, error)
	// SiteTags returns existing tag names for prompt seeding.
	SiteTags(ctx context.Context, limit int) ([]string, error)
}

// ScheduleStore persists recurring-job state between scans.
type ScheduleStore interface {
	ListSchedules(ctx context.Context) ([]domain.Schedule, error)
	SaveQueue(ctx context.Context, id string, queue []string) error
	SetScheduleStatus(ctx context.Context, id string, status domain.ScheduleStatus) error
	SetNextRun(ctx context.Context, id string, at time.Time) error
	AppendScheduleLog(ctx context.Context, id string, entry domain.LogEntry) error
}

// LedgerStore persists the used-image URL history across restarts.
type LedgerStore interface {
	LoadUsedImages(ctx context.Context) ([]string, error)
	SaveUsedImages(ctx context.Context, urls []string) error
}

// Notifier delivers completion notices; failures are logged, never propagated.
type Notifier interface {
	Send(ctx context.Context, subject, body string) error
}

// Trigger drives the periodic due-job scan.
type Trigger interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
