package bulk

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"sitegrab-cli/internal/api"
)

type fakeRemote struct {
	mu sync.Mutex

	mapLinks []string
	mapErr   error
	account  api.Account

	failURLs map[string]bool

	scraped  []string
	inFlight atomic.Int64
	maxSeen  atomic.Int64
}

func (f *fakeRemote) Map(_ context.Context, p api.MapParams) ([]string, error) {
	if f.mapErr != nil {
		return nil, f.mapErr
	}
	return f.mapLinks, nil
}

func (f *fakeRemote) Scrape(_ context.Context, p api.ScrapeParams) (*api.Document, error) {
	cur := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		prev := f.maxSeen.Load()
		if cur <= prev || f.maxSeen.CompareAndSwap(prev, cur) {
			break
		}
	}
	time.Sleep(2 * time.Millisecond)

	f.mu.Lock()
	f.scraped = append(f.scraped, p.URL)
	f.mu.Unlock()

	if f.failURLs[p.URL] {
		return nil, &api.Error{Status: 500, Message: "boom"}
	}
	return &api.Document{Markdown: "# " + p.URL}, nil
}

func (f *fakeRemote) Account(_ context.Context) (*api.Account, error) {
	acct := f.account
	return &acct, nil
}

func (f *fakeRemote) FetchBytes(_ context.Context, rawURL string) ([]byte, error) {
	return []byte("PNG"), nil
}

func manyURLs(n int) []string {
	urls := make([]string, 0, n)
	for i := 0; i < n; i++ {
		urls = append(urls, fmt.Sprintf("https://docs.x.com/page-%02d", i))
	}
	return urls
}

func newTestOrchestrator(f *fakeRemote, stdin string) (*Orchestrator, *bytes.Buffer) {
	o := NewOrchestrator(f, nil)
	var stderr bytes.Buffer
	o.stderr = &stderr
	o.stdin = strings.NewReader(stdin)
	return o, &stderr
}

func TestRun_BoundedConcurrencyEachURLOnce(t *testing.T) {
	t.Parallel()

	f := &fakeRemote{
		mapLinks: manyURLs(12),
		account:  api.Account{RemainingCredits: 100, MaxConcurrency: 3},
	}
	o, _ := newTestOrchestrator(f, "")

	err := o.Run(context.Background(), "https://docs.x.com", Options{
		SkipConfirmation: true,
		OutputDir:        t.TempDir(),
	})
	require.NoError(t, err)

	require.LessOrEqual(t, f.maxSeen.Load(), int64(3))
	require.Len(t, f.scraped, 12)

	seen := make(map[string]int)
	for _, u := range f.scraped {
		seen[u]++
	}
	for u, n := range seen {
		require.Equal(t, 1, n, "url %s attempted more than once", u)
	}
}

func TestRun_ProgressLinesIntactUnderConcurrentWorkers(t *testing.T) {
	t.Parallel()

	urls := manyURLs(20)
	f := &fakeRemote{
		mapLinks: urls,
		account:  api.Account{RemainingCredits: 100, MaxConcurrency: 5},
	}
	o, stderr := newTestOrchestrator(f, "")

	err := o.Run(context.Background(), "https://docs.x.com", Options{
		SkipConfirmation: true,
		OutputDir:        t.TempDir(),
	})
	require.NoError(t, err)

	// The injected writer is a plain buffer; every worker's progress line
	// must come out whole, one per URL.
	progress := 0
	for _, line := range strings.Split(stderr.String(), "\n") {
		if !strings.HasPrefix(line, "[") {
			continue
		}
		progress++
		require.Regexp(t, `^\[\d+/20\] https://docs\.x\.com/page-\d{2}$`, line)
	}
	require.Equal(t, len(urls), progress)
}

func TestRun_PartialFailureIsSuccess(t *testing.T) {
	t.Parallel()

	urls := manyURLs(4)
	f := &fakeRemote{
		mapLinks: urls,
		account:  api.Account{RemainingCredits: 100, MaxConcurrency: 2},
		failURLs: map[string]bool{urls[1]: true},
	}
	o, stderr := newTestOrchestrator(f, "")

	err := o.Run(context.Background(), "https://docs.x.com", Options{
		SkipConfirmation: true,
		OutputDir:        t.TempDir(),
	})
	require.NoError(t, err, "partial failure exits cleanly with a visible tally")
	require.Contains(t, stderr.String(), "Completed 4/4 (1 failed)")
}

func TestRun_AllFailuresFailTheRun(t *testing.T) {
	t.Parallel()

	urls := manyURLs(3)
	fail := make(map[string]bool)
	for _, u := range urls {
		fail[u] = true
	}
	f := &fakeRemote{
		mapLinks: urls,
		account:  api.Account{RemainingCredits: 100, MaxConcurrency: 2},
		failURLs: fail,
	}
	o, _ := newTestOrchestrator(f, "")

	err := o.Run(context.Background(), "https://docs.x.com", Options{
		SkipConfirmation: true,
		OutputDir:        t.TempDir(),
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "all 3 URLs failed")
}

func TestRun_InsufficientCreditsFailsFast(t *testing.T) {
	t.Parallel()

	f := &fakeRemote{
		mapLinks: manyURLs(50),
		account:  api.Account{RemainingCredits: 30, MaxConcurrency: 5},
	}
	o, _ := newTestOrchestrator(f, "")

	err := o.Run(context.Background(), "https://docs.x.com", Options{
		SkipConfirmation: true,
		OutputDir:        t.TempDir(),
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "50")
	require.Contains(t, err.Error(), "30")
	require.Empty(t, f.scraped, "no partial run is attempted")
}

func TestRun_MapFailureIsFatal(t *testing.T) {
	t.Parallel()

	f := &fakeRemote{mapErr: &api.Error{Status: 500, Message: "mapper down"}}
	o, _ := newTestOrchestrator(f, "")

	err := o.Run(context.Background(), "https://docs.x.com", Options{SkipConfirmation: true})
	require.Error(t, err)
	require.Contains(t, err.Error(), "mapper down")
}

func TestRun_ZeroDiscoveredURLsIsFatal(t *testing.T) {
	t.Parallel()

	f := &fakeRemote{mapLinks: nil, account: api.Account{RemainingCredits: 10, MaxConcurrency: 2}}
	o, _ := newTestOrchestrator(f, "")

	err := o.Run(context.Background(), "https://docs.x.com", Options{SkipConfirmation: true})
	require.Error(t, err)
	require.Contains(t, err.Error(), "no URLs discovered")
}

func TestRun_ConfirmationNumberLimitsToFirstN(t *testing.T) {
	t.Parallel()

	f := &fakeRemote{
		mapLinks: manyURLs(6),
		account:  api.Account{RemainingCredits: 100, MaxConcurrency: 1},
	}
	o, _ := newTestOrchestrator(f, "2\n")

	err := o.Run(context.Background(), "https://docs.x.com", Options{OutputDir: t.TempDir()})
	require.NoError(t, err)
	require.Equal(t, manyURLs(6)[:2], f.scraped, "first N in map order")
}

func TestRun_ConfirmationDeclineAborts(t *testing.T) {
	t.Parallel()

	f := &fakeRemote{
		mapLinks: manyURLs(3),
		account:  api.Account{RemainingCredits: 100, MaxConcurrency: 1},
	}
	o, _ := newTestOrchestrator(f, "n\n")

	err := o.Run(context.Background(), "https://docs.x.com", Options{OutputDir: t.TempDir()})
	require.ErrorIs(t, err, ErrAborted)
	require.Empty(t, f.scraped)
}

func TestRun_WizardChoicesApplied(t *testing.T) {
	t.Parallel()

	f := &fakeRemote{
		mapLinks: []string{
			"https://docs.x.com/a",
			"https://docs.x.com/b",
			"https://docs.x.com/intro",
		},
		account: api.Account{RemainingCredits: 100, MaxConcurrency: 2},
	}
	o, _ := newTestOrchestrator(f, "")
	o.Wizard = func(urls []string, defaults Options) (Options, error) {
		require.Len(t, urls, 3)
		defaults.IncludePaths = []string{"/a"}
		return defaults, nil
	}

	err := o.Run(context.Background(), "https://docs.x.com", Options{
		SkipConfirmation: true,
		OutputDir:        t.TempDir(),
	})
	require.NoError(t, err)
	require.Equal(t, []string{"https://docs.x.com/a"}, f.scraped)
}

func TestRun_WritesOutputBundles(t *testing.T) {
	t.Parallel()

	out := t.TempDir()
	f := &fakeRemote{
		mapLinks: []string{"https://docs.x.com/guide/install"},
		account:  api.Account{RemainingCredits: 10, MaxConcurrency: 2},
	}
	o, _ := newTestOrchestrator(f, "")

	err := o.Run(context.Background(), "https://docs.x.com", Options{
		SkipConfirmation: true,
		OutputDir:        out,
	})
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(out, "docs.x.com", "guide", "install", "index.md"))
	require.NoError(t, err)
	require.Equal(t, "# https://docs.x.com/guide/install", string(raw))
}

func TestRun_RecorderReceivesSummary(t *testing.T) {
	t.Parallel()

	f := &fakeRemote{
		mapLinks: manyURLs(2),
		account:  api.Account{RemainingCredits: 10, MaxConcurrency: 2},
	}
	o, _ := newTestOrchestrator(f, "")

	var recorded []RunSummary
	o.Recorder = recorderFunc(func(_ context.Context, run RunSummary) error {
		recorded = append(recorded, run)
		return nil
	})

	err := o.Run(context.Background(), "https://docs.x.com", Options{
		SkipConfirmation: true,
		OutputDir:        t.TempDir(),
	})
	require.NoError(t, err)
	require.Len(t, recorded, 1)
	require.Equal(t, 2, recorded[0].Total)
	require.Equal(t, 2, recorded[0].Completed)
	require.Zero(t, recorded[0].Failed)
}

type recorderFunc func(ctx context.Context, run RunSummary) error

func (f recorderFunc) RecordRun(ctx context.Context, run RunSummary) error { return f(ctx, run) }
