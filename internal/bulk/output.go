package bulk

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"sitegrab-cli/internal/api"
)

// Per-format output file names, fixed by contract.
const (
	fileMarkdown   = "index.md"
	fileHTML       = "index.html"
	fileLinks      = "links.txt"
	fileImages     = "images.txt"
	fileSummary    = "summary.md"
	fileScreenshot = "screenshot.png"
	fileJSON       = "index.json"
)

var unsafeToken = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// TargetDir derives the nested output directory for one URL: root/host/path
// segments, scheme and query discarded. A URL that cannot be parsed becomes
// a single filesystem-safe token under root. Every segment passes through
// the safe-token filter and dot segments are dropped; the result always
// stays under root.
func TargetDir(root, rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return filepath.Join(root, sanitizeToken(rawURL))
	}

	parts := []string{root, sanitizeToken(u.Host)}
	for _, seg := range strings.Split(strings.Trim(u.Path, "/"), "/") {
		if seg == "" || seg == "." || seg == ".." {
			continue
		}
		parts = append(parts, sanitizeToken(seg))
	}
	return filepath.Join(parts...)
}

func sanitizeToken(s string) string {
	tok := unsafeToken.ReplaceAllString(s, "_")
	tok = strings.Trim(tok, "_")
	if tok == "" || tok == "." || tok == ".." {
		return "unnamed"
	}
	return tok
}

// WriteDocument writes one file per requested format into dir. Screenshot
// bytes come from fetch; a failed screenshot download is swallowed since
// screenshot absence is not a task failure.
func WriteDocument(dir string, formats []string, doc *api.Document, fetch func(url string) ([]byte, error)) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	for _, format := range formats {
		var err error
		switch format {
		case api.FormatMarkdown:
			err = writeFile(dir, fileMarkdown, []byte(doc.Markdown))
		case api.FormatHTML, api.FormatRawHTML:
			html := doc.HTML
			if html == "" {
				html = doc.RawHTML
			}
			err = writeFile(dir, fileHTML, []byte(html))
		case api.FormatLinks:
			err = writeFile(dir, fileLinks, []byte(strings.Join(doc.Links, "\n")))
		case api.FormatImages:
			err = writeFile(dir, fileImages, []byte(strings.Join(doc.Images, "\n")))
		case api.FormatSummary:
			err = writeFile(dir, fileSummary, []byte(doc.Summary))
		case api.FormatScreenshot:
			if doc.ScreenshotURL == "" {
				continue
			}
			png, fetchErr := fetch(doc.ScreenshotURL)
			if fetchErr != nil {
				continue
			}
			err = writeFile(dir, fileScreenshot, png)
		default:
			// json and anything unknown get the full payload.
			var raw []byte
			raw, err = json.MarshalIndent(doc, "", "  ")
			if err == nil {
				err = writeFile(dir, fileJSON, raw)
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func writeFile(dir, name string, data []byte) error {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
