// Package bulk orchestrates site-wide scraping: map the site, filter the
// discovered URLs, preflight credits, then drain the set through a bounded
// worker pool writing one output bundle per URL.
package bulk

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"sitegrab-cli/internal/api"
)

// ErrAborted means the operator declined the confirmation prompt. It maps to
// a clean zero exit, not a failure.
var ErrAborted = errors.New("run aborted by user")

// Options are the fully-resolved choices for one run. The wizard (or flag
// parsing) produces them; the orchestrator only consumes them, so it runs
// headless in tests.
type Options struct {
	Formats           []string
	OnlyMainContent   bool
	Screenshot        bool
	Limit             int
	IncludePaths      []string
	ExcludePaths      []string
	Search            string
	IncludeSubdomains bool
	SkipConfirmation  bool
	OutputDir         string
}

// WizardFunc refines options from the discovered URL set. Nil means headless.
type WizardFunc func(urls []string, defaults Options) (Options, error)

// API is the remote surface the orchestrator consumes.
type API interface {
	Map(ctx context.Context, p api.MapParams) ([]string, error)
	Scrape(ctx context.Context, p api.ScrapeParams) (*api.Document, error)
	Account(ctx context.Context) (*api.Account, error)
	FetchBytes(ctx context.Context, rawURL string) ([]byte, error)
}

// RunSummary is handed to the Recorder after a run finishes.
type RunSummary struct {
	Site       string
	Total      int
	Completed  int
	Failed     int
	StartedAt  time.Time
	FinishedAt time.Time
}

// Recorder persists run summaries; failures to record are never fatal.
type Recorder interface {
	RecordRun(ctx context.Context, run RunSummary) error
}

type Orchestrator struct {
	api    API
	logger *zap.SugaredLogger

	// Wizard runs during the filter phase when non-nil.
	Wizard WizardFunc
	// Recorder receives the run summary when non-nil.
	Recorder Recorder

	stdin  io.Reader
	stderr io.Writer
	now    func() time.Time
}

func NewOrchestrator(apiClient API, logger *zap.SugaredLogger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Orchestrator{
		api:    apiClient,
		logger: logger,
		stdin:  os.Stdin,
		stderr: os.Stderr,
		now:    time.Now,
	}
}

// Run executes the map → filter → preflight → scrape → summarize pipeline
// for one site. Diagnostics and progress go to stderr only.
func (o *Orchestrator) Run(ctx context.Context, siteURL string, opts Options) error {
	urls, err := o.api.Map(ctx, api.MapParams{
		URL:               siteURL,
		Search:            opts.Search,
		IncludeSubdomains: opts.IncludeSubdomains,
	})
	if err != nil {
		return fmt.Errorf("map %s: %w", siteURL, err)
	}
	if len(urls) == 0 {
		return fmt.Errorf("no URLs discovered for %s", siteURL)
	}
	fmt.Fprintf(o.stderr, "Discovered %d URLs on %s\n", len(urls), siteURL)

	if o.Wizard != nil {
		opts, err = o.Wizard(urls, opts)
		if err != nil {
			return err
		}
	}

	urls = FilterByPaths(urls, opts.IncludePaths, opts.ExcludePaths)
	if opts.Limit > 0 && len(urls) > opts.Limit {
		urls = urls[:opts.Limit]
	}
	if len(urls) == 0 {
		return errors.New("no URLs left after filtering")
	}

	acct, err := o.api.Account(ctx)
	if err != nil {
		return fmt.Errorf("fetch account status: %w", err)
	}
	if len(urls) > acct.RemainingCredits {
		return fmt.Errorf("%d URLs to scrape but only %d credits remaining", len(urls), acct.RemainingCredits)
	}

	if !opts.SkipConfirmation {
		urls, err = o.confirm(urls, acct)
		if err != nil {
			return err
		}
	}

	formats := normalizeFormats(opts)
	startedAt := o.now()
	summary := o.scrapeAll(ctx, urls, formats, opts, acct.MaxConcurrency)
	summary.Site = siteURL
	summary.StartedAt = startedAt
	summary.FinishedAt = o.now()

	if summary.Failed > 0 {
		fmt.Fprintf(o.stderr, "Completed %d/%d (%d failed)\n", summary.Completed, summary.Total, summary.Failed)
	} else {
		fmt.Fprintf(o.stderr, "Completed %d/%d\n", summary.Completed, summary.Total)
	}

	if o.Recorder != nil {
		if recErr := o.Recorder.RecordRun(ctx, summary); recErr != nil {
			o.logger.Warnw("could not record run history", "err", recErr)
		}
	}

	if summary.Failed == summary.Total {
		return fmt.Errorf("all %d URLs failed", summary.Total)
	}
	return nil
}

// confirm prints the cost summary and reads one answer: "y" proceeds, a
// number re-limits to the first N URLs in map order, anything else aborts.
func (o *Orchestrator) confirm(urls []string, acct *api.Account) ([]string, error) {
	fmt.Fprintf(o.stderr, "About to scrape %d URLs (credits remaining: %d, concurrency: %d)\n",
		len(urls), acct.RemainingCredits, acct.MaxConcurrency)
	fmt.Fprint(o.stderr, "Proceed? [y/N, or a number to limit]: ")

	line, err := bufio.NewReader(o.stdin).ReadString('\n')
	if err != nil && line == "" {
		return nil, ErrAborted
	}
	answer := strings.ToLower(strings.TrimSpace(line))

	if n, convErr := strconv.Atoi(answer); convErr == nil {
		if n <= 0 {
			return nil, ErrAborted
		}
		if n < len(urls) {
			urls = urls[:n]
		}
		return urls, nil
	}
	if answer == "y" || answer == "yes" {
		return urls, nil
	}
	return nil, ErrAborted
}

// scrapeAll drains the URL set through min(concurrency cap, URL count)
// workers sharing a monotonic cursor. A worker failure never cancels
// siblings; outcomes are counted and reported in completion order.
func (o *Orchestrator) scrapeAll(ctx context.Context, urls, formats []string, opts Options, concurrencyCap int) RunSummary {
	total := len(urls)
	workers := poolSize(concurrencyCap, total)

	// Workers share the injected stderr writer, which is not required to
	// be safe for concurrent use.
	var progressMu sync.Mutex
	progressf := func(format string, args ...any) {
		progressMu.Lock()
		defer progressMu.Unlock()
		fmt.Fprintf(o.stderr, format, args...)
	}

	var cursor, completed, failed atomic.Int64
	var g errgroup.Group
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for {
				idx := int(cursor.Add(1)) - 1
				if idx >= total {
					return nil
				}
				u := urls[idx]
				scrapeErr := o.scrapeOne(ctx, u, formats, opts)
				done := completed.Add(1)
				if scrapeErr != nil {
					failed.Add(1)
					progressf("[%d/%d] %s: %v\n", done, total, u, scrapeErr)
					continue
				}
				progressf("[%d/%d] %s\n", done, total, u)
			}
		})
	}
	_ = g.Wait()

	return RunSummary{
		Total:     total,
		Completed: int(completed.Load()),
		Failed:    int(failed.Load()),
	}
}

func (o *Orchestrator) scrapeOne(ctx context.Context, rawURL string, formats []string, opts Options) error {
	doc, err := o.api.Scrape(ctx, api.ScrapeParams{
		URL:             rawURL,
		Formats:         formats,
		OnlyMainContent: opts.OnlyMainContent,
	})
	if err != nil {
		return err
	}

	dir := TargetDir(opts.OutputDir, rawURL)
	return WriteDocument(dir, formats, doc, func(u string) ([]byte, error) {
		return o.api.FetchBytes(ctx, u)
	})
}

func normalizeFormats(opts Options) []string {
	formats := opts.Formats
	if len(formats) == 0 {
		formats = []string{api.FormatMarkdown}
	}
	if opts.Screenshot && !contains(formats, api.FormatScreenshot) {
		formats = append(append([]string(nil), formats...), api.FormatScreenshot)
	}
	return formats
}

// poolSize is min(remote concurrency cap, URL count), never below one.
func poolSize(limit, total int) int {
	workers := limit
	if workers <= 0 || workers > total {
		workers = total
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}

func contains(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}
