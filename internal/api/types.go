package api

import "time"

// Scrape formats accepted by the remote API.
const (
	FormatMarkdown   = "markdown"
	FormatHTML       = "html"
	FormatRawHTML    = "rawHtml"
	FormatLinks      = "links"
	FormatImages     = "images"
	FormatSummary    = "summary"
	FormatScreenshot = "screenshot"
	FormatJSON       = "json"
)

// KnownFormats lists every format the client understands, in the order the
// service documents them.
var KnownFormats = []string{
	FormatMarkdown,
	FormatHTML,
	FormatRawHTML,
	FormatLinks,
	FormatImages,
	FormatSummary,
	FormatScreenshot,
	FormatJSON,
}

type ScrapeParams struct {
	URL             string   `json:"url" validate:"required,url"`
	Formats         []string `json:"formats,omitempty" validate:"omitempty,dive,oneof=markdown html rawHtml links images summary screenshot json"`
	OnlyMainContent bool     `json:"onlyMainContent,omitempty"`
	WaitFor         int      `json:"waitFor,omitempty" validate:"omitempty,min=0"`
}

// Document holds the per-format payload of one scraped URL. Each field is
// populated only when its format was requested; probing untyped maps for
// optional keys is deliberately avoided.
type Document struct {
	Markdown      string            `json:"markdown,omitempty"`
	HTML          string            `json:"html,omitempty"`
	RawHTML       string            `json:"rawHtml,omitempty"`
	Links         []string          `json:"links,omitempty"`
	Images        []string          `json:"images,omitempty"`
	Summary       string            `json:"summary,omitempty"`
	ScreenshotURL string            `json:"screenshot,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

type MapParams struct {
	URL               string `json:"url" validate:"required,url"`
	Search            string `json:"search,omitempty"`
	IncludeSubdomains bool   `json:"includeSubdomains,omitempty"`
	Limit             int    `json:"limit,omitempty" validate:"omitempty,min=1"`
}

type MapResult struct {
	Links []string `json:"links"`
}

type SearchParams struct {
	Query string `json:"query" validate:"required"`
	Limit int    `json:"limit,omitempty" validate:"omitempty,min=1,max=100"`
}

type SearchResult struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type CrawlParams struct {
	URL             string   `json:"url" validate:"required,url"`
	Limit           int      `json:"limit,omitempty" validate:"omitempty,min=1"`
	Formats         []string `json:"formats,omitempty" validate:"omitempty,dive,oneof=markdown html rawHtml links images summary screenshot json"`
	OnlyMainContent bool     `json:"onlyMainContent,omitempty"`
}

type CrawlJob struct {
	ID        string     `json:"id"`
	Status    string     `json:"status"`
	Total     int        `json:"total"`
	Completed int        `json:"completed"`
	Documents []Document `json:"data,omitempty"`
}

type AgentParams struct {
	Prompt string   `json:"prompt" validate:"required"`
	URLs   []string `json:"urls,omitempty" validate:"omitempty,dive,url"`
}

type AgentJob struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Output string `json:"output,omitempty"`
}

// Job statuses reported by crawl/agent status polling.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

type BrowserLaunchParams struct {
	TTL           int  `json:"ttl,omitempty" validate:"omitempty,min=1"`
	InactivityTTL int  `json:"inactivityTtl,omitempty" validate:"omitempty,min=1"`
	Stream        bool `json:"stream,omitempty"`
}

type BrowserSession struct {
	ID          string    `json:"id"`
	CDPURL      string    `json:"cdpUrl"`
	LiveViewURL string    `json:"liveViewUrl,omitempty"`
	Status      string    `json:"status,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
	ExpiresAt   time.Time `json:"expiresAt,omitempty"`
}

type ExecuteResult struct {
	Result string `json:"result,omitempty"`
	// Error reports a code-level failure inside an otherwise successful
	// execute call (e.g. a thrown exception in the user script).
	Error string `json:"error,omitempty"`
}

type Account struct {
	RemainingCredits int `json:"remainingCredits"`
	MaxConcurrency   int `json:"maxConcurrency"`
}
