// Package browser maintains the illusion of a "current" remote browser
// session across independent command invocations, and executes code against
// it. One session record is persisted at a time; see the session package.
package browser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"go.uber.org/zap"

	"sitegrab-cli/internal/api"
	"sitegrab-cli/internal/session"
)

// Execution languages. Python and node run remotely; bash runs as a local
// child process and never touches the remote execute endpoint.
const (
	LangPython = "python"
	LangNode   = "node"
	LangBash   = "bash"
)

// ErrNoActiveSession is a hard requirement violation, not a retryable error.
var ErrNoActiveSession = errors.New("no active browser session: run 'sitegrab browser launch' or pass --session")

// API is the subset of the remote client the manager needs.
type API interface {
	BrowserLaunch(ctx context.Context, p api.BrowserLaunchParams) (*api.BrowserSession, error)
	BrowserExecute(ctx context.Context, sessionID, code, language string) (*api.ExecuteResult, error)
	ListBrowsers(ctx context.Context, status string) ([]api.BrowserSession, error)
	DeleteBrowser(ctx context.Context, sessionID string) error
}

type Manager struct {
	api    API
	store  *session.Store
	logger *zap.SugaredLogger

	stdout io.Writer
	stderr io.Writer
	now    func() time.Time

	execCommandContext func(ctx context.Context, name string, args ...string) *exec.Cmd
}

func NewManager(apiClient API, store *session.Store, logger *zap.SugaredLogger) *Manager {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Manager{
		api:                apiClient,
		store:              store,
		logger:             logger,
		stdout:             os.Stdout,
		stderr:             os.Stderr,
		now:                time.Now,
		execCommandContext: exec.CommandContext,
	}
}

// Launch starts a remote session and persists it as the current one. A prior
// stored session is superseded, not closed; it stays alive remotely until it
// expires or is closed explicitly.
func (m *Manager) Launch(ctx context.Context, p api.BrowserLaunchParams) (*api.BrowserSession, error) {
	sess, err := m.api.BrowserLaunch(ctx, p)
	if err != nil {
		return nil, err
	}

	rec := session.Record{ID: sess.ID, CDPURL: sess.CDPURL, CreatedAt: m.now()}
	if err := m.store.Save(rec); err != nil {
		return nil, fmt.Errorf("session launched (%s) but could not be persisted: %w", sess.ID, err)
	}
	m.logger.Debugw("browser session launched", "session_id", sess.ID)
	return sess, nil
}

// resolve returns the session record to act on and whether it was targeted
// explicitly. An explicit id that matches the stored record still gets the
// stored CDP URL.
func (m *Manager) resolve(override string) (session.Record, bool, error) {
	stored, ok, err := m.store.Load()
	if err != nil {
		return session.Record{}, false, err
	}

	if override != "" {
		if ok && stored.ID == override {
			return stored, true, nil
		}
		return session.Record{ID: override}, true, nil
	}
	if !ok {
		return session.Record{}, false, ErrNoActiveSession
	}
	return stored, false, nil
}

// ResolveSessionID resolves the session id for a command: override first,
// then the stored session.
func (m *Manager) ResolveSessionID(override string) (string, error) {
	rec, _, err := m.resolve(override)
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

// ExecuteRequest describes one execute invocation.
type ExecuteRequest struct {
	// SessionID overrides the stored session when non-empty.
	SessionID string
	Code      string
	Language  string
	// RawBash skips sandbox-tool auto-prefixing for bash code.
	RawBash bool
}

// Execute runs code against the resolved session. Bash runs locally; python
// and node are forwarded to the remote execute endpoint.
func (m *Manager) Execute(ctx context.Context, req ExecuteRequest) (*api.ExecuteResult, error) {
	rec, explicit, err := m.resolve(req.SessionID)
	if err != nil {
		return nil, err
	}

	lang := req.Language
	if lang == "" {
		lang = LangPython
	}

	if lang == LangBash {
		return m.executeBash(ctx, rec, req)
	}

	res, execErr := m.api.BrowserExecute(ctx, rec.ID, req.Code, lang)
	if execErr != nil {
		if IsSessionExpired(execErr) {
			if !explicit {
				if clearErr := m.store.Clear(); clearErr != nil {
					m.logger.Warnw("could not clear stale session record", "err", clearErr)
				}
			}
			return nil, fmt.Errorf("browser session %s is no longer available; launch a new one with 'sitegrab browser launch': %w", rec.ID, execErr)
		}
		return nil, execErr
	}
	return res, nil
}

func (m *Manager) executeBash(ctx context.Context, rec session.Record, req ExecuteRequest) (*api.ExecuteResult, error) {
	code := prepareBashCommand(req.Code, req.RawBash, rec.CDPURL)

	res, err := m.runBash(ctx, rec, code)
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		m.flushBashFailure(res)
		return nil, fmt.Errorf("command exited with status %d", res.ExitCode)
	}
	return &api.ExecuteResult{Result: res.Stdout}, nil
}

// QuickExecute runs code against the stored session, launching one first
// when none exists.
func (m *Manager) QuickExecute(ctx context.Context, req ExecuteRequest) (*api.ExecuteResult, error) {
	if req.SessionID == "" {
		_, ok, err := m.store.Load()
		if err != nil {
			return nil, err
		}
		if !ok {
			if _, err := m.Launch(ctx, api.BrowserLaunchParams{}); err != nil {
				return nil, err
			}
		}
	}
	return m.Execute(ctx, req)
}

// List is a passthrough to the remote session listing.
func (m *Manager) List(ctx context.Context, statusFilter string) ([]api.BrowserSession, error) {
	return m.api.ListBrowsers(ctx, statusFilter)
}

// Close deletes the resolved session remotely and clears the store when the
// closed id is the stored one. Closing some other session leaves the store
// untouched.
func (m *Manager) Close(ctx context.Context, override string) (string, error) {
	rec, _, err := m.resolve(override)
	if err != nil {
		return "", err
	}

	if err := m.api.DeleteBrowser(ctx, rec.ID); err != nil {
		return "", err
	}

	stored, ok, loadErr := m.store.Load()
	if loadErr == nil && ok && stored.ID == rec.ID {
		if err := m.store.Clear(); err != nil {
			m.logger.Warnw("could not clear closed session record", "err", err)
		}
	}
	return rec.ID, nil
}

// Current returns the stored session record, if any.
func (m *Manager) Current() (session.Record, bool, error) {
	return m.store.Load()
}
