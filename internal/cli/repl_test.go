package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"
)

type fakeExec struct {
	calls []string
}

func (f *fakeExec) record(s string) error {
	f.calls = append(f.calls, s)
	return nil
}

func (f *fakeExec) List(ctx context.Context) error { return f.record("list") }
func (f *fakeExec) View(ctx context.Context, id string) error {
	return f.record("view " + id)
}
func (f *fakeExec) Approve(ctx context.Context, id, role string) error {
	return f.record("approve " + id + " " + role)
}
func (f *fakeExec) Reject(ctx context.Context, id, reason string) error {
	return f.record("reject " + id + " " + reason)
}
func (f *fakeExec) Refresh(ctx context.Context) error   { return f.record("refresh") }
func (f *fakeExec) Configure(ctx context.Context) error { return f.record("settings") }
func (f *fakeExec) Test(ctx context.Context) error      { return f.record("test") }
func (f *fakeExec) Auto(ctx context.Context, seconds string) error {
	return f.record("auto " + seconds)
}
func (f *fakeExec) History(ctx context.Context) error { return f.record("history") }
func (f *fakeExec) Export(ctx context.Context, path string) error {
	return f.record("export " + path)
}
func (f *fakeExec) Clear(ctx context.Context) error { return f.record("clear") }

func silence(t *testing.T) *[]string {
	t.Helper()
	var out []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		parts := make([]string, 0, len(a))
		for _, v := range a {
			if s, ok := v.(string); ok {
				parts = append(parts, s)
			}
		}
		out = append(out, strings.Join(parts, " "))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &out
}

func TestRunREPL_Dispatch(t *testing.T) {
	silence(t)

	input := strings.NewReader(strings.Join([]string{
		"help",
		"list",
		"",
		"view sub-1",
		"approve sub-1 mentee",
		"approve sub-2",
		"reject sub-42 incomplete info",
		"refresh",
		"settings",
		"test",
		"auto 30",
		"history",
		"export out.json",
		"clear",
		"exit",
		"list",
	}, "\n"))

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "ready" }, bufio.NewScanner(input))

	want := []string{
		"list",
		"view sub-1",
		"approve sub-1 mentee",
		"approve sub-2 ",
		"reject sub-42 incomplete info",
		"refresh",
		"settings",
		"test",
		"auto 30",
		"history",
		"export out.json",
		"clear",
	}
	if strings.Join(exec.calls, "|") != strings.Join(want, "|") {
		t.Fatalf("calls mismatch:\n got %v\nwant %v", exec.calls, want)
	}
}

func TestRunREPL_UsageAndUnknown(t *testing.T) {
	out := silence(t)

	input := strings.NewReader("view\napprove\nreject\nauto\nfoobar\nquit\n")
	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "s" }, bufio.NewScanner(input))

	if len(exec.calls) != 0 {
		t.Fatalf("unexpected calls: %v", exec.calls)
	}
	joined := strings.Join(*out, "\n")
	for _, want := range []string{"Usage: view <id>", "Usage: auto <seconds>", "Unknown command: foobar", "Bye!"} {
		if !strings.Contains(joined, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestRunREPL_EOF(t *testing.T) {
	silence(t)
	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "s" }, bufio.NewScanner(strings.NewReader("list")))

	if len(exec.calls) != 1 {
		t.Fatalf("expected one call before EOF, got %v", exec.calls)
	}
}
