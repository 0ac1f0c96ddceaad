package browser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"unicode"

	"sitegrab-cli/internal/session"
)

// SandboxTool is the browser-automation helper expected on PATH for bash
// execution. Short interactive commands ("open <url>", "click <ref>") get it
// prepended automatically.
const SandboxTool = "agent-browser"

const cdpFlag = "--cdp"

// Environment variables injected into local bash children.
const (
	envCDPURL    = "SITEGRAB_CDP_URL"
	envSessionID = "SITEGRAB_SESSION_ID"
)

// prepareBashCommand applies the sandbox-tool prefix (unless raw) and splices
// the CDP target flag into sandbox-tool invocations that lack one.
func prepareBashCommand(code string, raw bool, cdpURL string) string {
	code = strings.TrimSpace(code)
	if !raw && !isSandboxInvocation(code) {
		code = SandboxTool + " " + code
	}
	if isSandboxInvocation(code) && !strings.Contains(code, cdpFlag) && strings.TrimSpace(cdpURL) != "" {
		code = spliceCDPFlag(code, cdpURL)
	}
	return code
}

func isSandboxInvocation(code string) bool {
	return code == SandboxTool || strings.HasPrefix(code, SandboxTool+" ")
}

// spliceCDPFlag inserts "--cdp '<url>'" right after the first two
// whitespace-separated words (tool name + subcommand). The remainder of the
// command is kept byte-for-byte so quoted arguments survive.
func spliceCDPFlag(code, cdpURL string) string {
	injected := cdpFlag + " '" + cdpURL + "'"
	pos := endOfWordN(code, 2)
	if pos < 0 {
		return code + " " + injected
	}
	return code[:pos] + " " + injected + code[pos:]
}

// endOfWordN returns the byte offset just past the n-th whitespace-separated
// word, or -1 when the string has fewer than n words.
func endOfWordN(s string, n int) int {
	words := 0
	inWord := false
	for i, r := range s {
		if unicode.IsSpace(r) {
			if inWord {
				words++
				inWord = false
				if words == n {
					return i
				}
			}
			continue
		}
		inWord = true
	}
	if inWord && words+1 == n {
		return len(s)
	}
	return -1
}

// BashResult is the outcome of one local bash execution.
type BashResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// runBash executes the prepared command as a local child process with the
// session's CDP URL and id in the environment. Exit codes are collected on
// all paths; only spawn failures surface as errors.
func (m *Manager) runBash(ctx context.Context, rec session.Record, code string) (BashResult, error) {
	cmd := m.execCommandContext(ctx, "bash", "-c", code)
	cmd.Env = append(cmd.Environ(),
		envCDPURL+"="+rec.CDPURL,
		envSessionID+"="+rec.ID,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := BashResult{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return res, fmt.Errorf("spawn bash: %w", err)
		}
		res.ExitCode = exitErr.ExitCode()
	}
	return res, nil
}

// flushBashFailure surfaces captured output of a failed command, stderr
// before stdout so error context precedes output in terminal logs.
func (m *Manager) flushBashFailure(res BashResult) {
	if res.Stderr != "" {
		fmt.Fprint(m.stderr, res.Stderr)
	}
	if res.Stdout != "" {
		fmt.Fprint(m.stdout, res.Stdout)
	}
}
