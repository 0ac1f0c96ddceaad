package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"sitegrab-cli/config"
)

const maxScreenshotBytes = 32 << 20

// Client talks to the hosted scraping API. All configuration is injected;
// swap httpc or newIdempotencyKey in tests.
type Client struct {
	baseURL string
	apiKey  string
	logger  *zap.SugaredLogger

	httpc             *http.Client
	validate          *validator.Validate
	newIdempotencyKey func() string
}

func NewClient(cfg config.Config, logger *zap.SugaredLogger) *Client {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Client{
		baseURL:           strings.TrimRight(cfg.APIURL, "/"),
		apiKey:            cfg.APIKey,
		logger:            logger,
		httpc:             &http.Client{Timeout: cfg.APITimeout},
		validate:          validator.New(),
		newIdempotencyKey: uuid.NewString,
	}
}

// envelope is the uniform response wrapper used by every endpoint.
type envelope struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// do issues one API request and folds every failure mode into *Error.
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return &Error{Message: fmt.Sprintf("encode request: %v", err)}
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return &Error{Message: err.Error()}
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method == http.MethodPost {
		req.Header.Set("x-idempotency-key", c.newIdempotencyKey())
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return &Error{Message: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return &Error{Status: resp.StatusCode, Message: err.Error()}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return &Error{Status: resp.StatusCode, Message: fmt.Sprintf("decode response: %v", err)}
		}
		return &Error{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !env.Success {
		msg := env.Error
		if msg == "" {
			msg = fmt.Sprintf("request failed with status %d", resp.StatusCode)
		}
		return &Error{Status: resp.StatusCode, Message: msg}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return &Error{Status: resp.StatusCode, Message: fmt.Sprintf("decode payload: %v", err)}
		}
	}
	return nil
}

func (c *Client) validateParams(p any) error {
	if err := c.validate.Struct(p); err != nil {
		return &Error{Message: fmt.Sprintf("invalid parameters: %v", err)}
	}
	return nil
}

func (c *Client) Scrape(ctx context.Context, p ScrapeParams) (*Document, error) {
	if err := c.validateParams(p); err != nil {
		return nil, err
	}
	var doc Document
	if err := c.do(ctx, http.MethodPost, "/v1/scrape", p, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *Client) Map(ctx context.Context, p MapParams) ([]string, error) {
	if err := c.validateParams(p); err != nil {
		return nil, err
	}
	var res MapResult
	if err := c.do(ctx, http.MethodPost, "/v1/map", p, &res); err != nil {
		return nil, err
	}
	return res.Links, nil
}

func (c *Client) Search(ctx context.Context, p SearchParams) ([]SearchResult, error) {
	if err := c.validateParams(p); err != nil {
		return nil, err
	}
	var results []SearchResult
	if err := c.do(ctx, http.MethodPost, "/v1/search", p, &results); err != nil {
		return nil, err
	}
	return results, nil
}

func (c *Client) Crawl(ctx context.Context, p CrawlParams) (*CrawlJob, error) {
	if err := c.validateParams(p); err != nil {
		return nil, err
	}
	var job CrawlJob
	if err := c.do(ctx, http.MethodPost, "/v1/crawl", p, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (c *Client) CrawlStatus(ctx context.Context, id string) (*CrawlJob, error) {
	var job CrawlJob
	if err := c.do(ctx, http.MethodGet, "/v1/crawl/"+url.PathEscape(id), nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (c *Client) Agent(ctx context.Context, p AgentParams) (*AgentJob, error) {
	if err := c.validateParams(p); err != nil {
		return nil, err
	}
	var job AgentJob
	if err := c.do(ctx, http.MethodPost, "/v1/agent", p, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (c *Client) AgentStatus(ctx context.Context, id string) (*AgentJob, error) {
	var job AgentJob
	if err := c.do(ctx, http.MethodGet, "/v1/agent/"+url.PathEscape(id), nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (c *Client) BrowserLaunch(ctx context.Context, p BrowserLaunchParams) (*BrowserSession, error) {
	if err := c.validateParams(p); err != nil {
		return nil, err
	}
	var sess BrowserSession
	if err := c.do(ctx, http.MethodPost, "/v1/browser", p, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (c *Client) BrowserExecute(ctx context.Context, sessionID, code, language string) (*ExecuteResult, error) {
	body := struct {
		Code     string `json:"code"`
		Language string `json:"language"`
	}{Code: code, Language: language}

	var res ExecuteResult
	path := "/v1/browser/" + url.PathEscape(sessionID) + "/execute"
	if err := c.do(ctx, http.MethodPost, path, body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) ListBrowsers(ctx context.Context, status string) ([]BrowserSession, error) {
	path := "/v1/browser"
	if strings.TrimSpace(status) != "" {
		path += "?status=" + url.QueryEscape(status)
	}
	var sessions []BrowserSession
	if err := c.do(ctx, http.MethodGet, path, nil, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (c *Client) DeleteBrowser(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodDelete, "/v1/browser/"+url.PathEscape(sessionID), nil, nil)
}

func (c *Client) Account(ctx context.Context) (*Account, error) {
	var acct Account
	if err := c.do(ctx, http.MethodGet, "/v1/account", nil, &acct); err != nil {
		return nil, err
	}
	return &acct, nil
}

// FetchBytes downloads an arbitrary URL (screenshot artifacts live on a CDN,
// not behind the API) with a size cap.
func (c *Client) FetchBytes(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %s from %s", resp.Status, rawURL)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxScreenshotBytes))
}
