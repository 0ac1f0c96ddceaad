package browser

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"testing"

	"sitegrab-cli/internal/session"
)

func TestPrepareBashCommand(t *testing.T) {
	t.Parallel()

	const cdp = "wss://cdp.sitegrab.dev/sessions/s1"

	cases := []struct {
		name string
		code string
		raw  bool
		want string
	}{
		{
			name: "bare word gets tool prefix and cdp",
			code: "snapshot",
			want: "agent-browser snapshot --cdp '" + cdp + "'",
		},
		{
			name: "tool invocation gets cdp after subcommand",
			code: "agent-browser click @e5",
			want: "agent-browser click --cdp '" + cdp + "' @e5",
		},
		{
			name: "existing cdp flag untouched",
			code: "agent-browser click --cdp ws://other @e5",
			want: "agent-browser click --cdp ws://other @e5",
		},
		{
			name: "quoted args survive the splice",
			code: `agent-browser type "hello world"`,
			want: `agent-browser type --cdp '` + cdp + `' "hello world"`,
		},
		{
			name: "raw bash is never prefixed",
			code: "ls -la",
			raw:  true,
			want: "ls -la",
		},
		{
			name: "two-word command with no args",
			code: "agent-browser snapshot",
			want: "agent-browser snapshot --cdp '" + cdp + "'",
		},
	}

	for _, tc := range cases {
		if got := prepareBashCommand(tc.code, tc.raw, cdp); got != tc.want {
			t.Errorf("%s:\n got  %q\n want %q", tc.name, got, tc.want)
		}
	}
}

func TestPrepareBashCommand_NoCDPURL(t *testing.T) {
	t.Parallel()

	got := prepareBashCommand("snapshot", false, "")
	if got != "agent-browser snapshot" {
		t.Fatalf("unexpected command: %q", got)
	}
}

func newBashTestManager(t *testing.T, stdout, stderr *bytes.Buffer) *Manager {
	t.Helper()

	store, err := session.NewStore(testConfig(t))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	m := NewManager(nil, store, nil)
	m.stdout = stdout
	m.stderr = stderr
	return m
}

func TestRunBash_InjectsSessionEnv(t *testing.T) {
	m := newBashTestManager(t, &bytes.Buffer{}, &bytes.Buffer{})
	m.execCommandContext = helperCommandContext(t, "out", "", 0)

	rec := session.Record{ID: "s1", CDPURL: "wss://cdp/s1"}
	res, err := m.runBash(context.Background(), rec, "agent-browser snapshot")
	if err != nil {
		t.Fatalf("runBash: %v", err)
	}
	if res.ExitCode != 0 || res.Stdout != "out" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestExecuteBash_NonZeroExit_StderrBeforeStdout(t *testing.T) {
	var out, errOut bytes.Buffer
	m := newBashTestManager(t, &out, &errOut)
	m.execCommandContext = helperCommandContext(t, "partial output", "boom", 3)

	if err := m.store.Save(session.Record{ID: "s1", CDPURL: "wss://cdp/s1"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	_, err := m.Execute(context.Background(), ExecuteRequest{Code: "snapshot", Language: LangBash})
	if err == nil {
		t.Fatal("expected failure for non-zero exit")
	}
	if !strings.Contains(err.Error(), "status 3") {
		t.Fatalf("exit code missing from error: %v", err)
	}
	if errOut.String() != "boom" {
		t.Fatalf("stderr not surfaced: %q", errOut.String())
	}
	if out.String() != "partial output" {
		t.Fatalf("stdout not surfaced: %q", out.String())
	}
}

// helperCommandContext builds commands that re-run the test binary as a fake
// bash child.
func helperCommandContext(t *testing.T, stdout, stderr string, exit int) func(ctx context.Context, name string, args ...string) *exec.Cmd {
	t.Helper()

	return func(ctx context.Context, name string, args ...string) *exec.Cmd {
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestBashHelperProcess", "--")
		cmd.Env = append(os.Environ(),
			"GO_WANT_HELPER_PROCESS=1",
			fmt.Sprintf("HELPER_STDOUT=%s", stdout),
			fmt.Sprintf("HELPER_STDERR=%s", stderr),
			fmt.Sprintf("HELPER_EXIT=%d", exit),
		)
		return cmd
	}
}

func TestBashHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	fmt.Fprint(os.Stdout, os.Getenv("HELPER_STDOUT"))
	fmt.Fprint(os.Stderr, os.Getenv("HELPER_STDERR"))
	code, _ := strconv.Atoi(os.Getenv("HELPER_EXIT"))
	os.Exit(code)
}
