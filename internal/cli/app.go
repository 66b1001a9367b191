// Package cli is the terminal front end of the moderation dashboard.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/techwomen-moldova/mentordesk/internal/dashboard"
	"github.com/techwomen-moldova/mentordesk/pkg/schema"
)

// App adapts dashboard.Controller to the REPL.
type App struct {
	ctrl *dashboard.Controller
	in   *bufio.Scanner
	out  io.Writer
	now  func() time.Time
}

func NewApp(ctrl *dashboard.Controller, in *bufio.Scanner, out io.Writer) *App {
	return &App{ctrl: ctrl, in: in, out: out, now: time.Now}
}

// Run initialises the controller and serves the REPL on in until EOF or exit.
func Run(ctx context.Context, ctrl *dashboard.Controller, in io.Reader, out io.Writer) {
	sc := bufio.NewScanner(in)
	a := NewApp(ctrl, sc, out)

	_ = ctrl.Init(ctx)
	a.flush()
	_ = a.List(ctx)
	fmt.Fprintln(out, "Type 'help' for commands.")

	runREPL(ctx, a, a.status, sc)
}

func (a *App) status() string {
	s := a.ctrl.Snapshot()
	if s.State != dashboard.StateReady {
		return string(s.State)
	}
	return fmt.Sprintf("%d pending, %s", len(s.Pending), s.Sync)
}

// flush prints and clears pending notifications.
func (a *App) flush() {
	for _, n := range a.ctrl.DrainNotifications() {
		fmt.Fprintf(a.out, "[%s] %s\n", n.Level, n.Message)
	}
}

// done flushes notifications and passes err through.
func (a *App) done(err error) error {
	a.flush()
	return err
}

func (a *App) List(ctx context.Context) error {
	err := dashboard.WriteText(a.out, dashboard.Render(a.ctrl.Snapshot()))
	return a.done(err)
}

func (a *App) View(ctx context.Context, id string) error {
	d, err := a.ctrl.View(id)
	if err != nil {
		return a.done(err)
	}
	return a.done(dashboard.WriteDetail(a.out, d))
}

func (a *App) Approve(ctx context.Context, id, role string) error {
	p, err := a.ctrl.Approve(ctx, id, role)
	if err != nil {
		return a.done(err)
	}
	fmt.Fprintf(a.out, "Published profile %s (%s)\n", p.ID, p.Email)
	return a.done(nil)
}

func (a *App) Reject(ctx context.Context, id, reason string) error {
	if strings.TrimSpace(reason) == "" {
		r, err := GetSimpleText(a.in, "Reason for rejection (optional)", a.out)
		if err != nil && err != io.EOF {
			return a.done(err)
		}
		reason = r
	}
	return a.done(a.ctrl.Reject(ctx, id, reason))
}

func (a *App) Refresh(ctx context.Context) error {
	if err := a.ctrl.Refresh(ctx); err != nil {
		return a.done(err)
	}
	a.flush()
	return a.List(ctx)
}

// Configure prompts for credentials and the refresh interval.
func (a *App) Configure(ctx context.Context) error {
	cur := a.ctrl.Settings()
	if cur.FormID != "" {
		fmt.Fprintf(a.out, "Current: form %s, token %s, auto-refresh %ds\n", cur.FormID, cur.NetlifyToken, cur.AutoRefresh)
	}

	token, err := GetSecret(a.in, "Netlify token", a.out)
	if err != nil {
		return a.done(err)
	}
	formID, err := GetSimpleText(a.in, "Form ID", a.out)
	if err != nil {
		return a.done(err)
	}
	refresh := cur.AutoRefresh
	if cur.FormID == "" {
		refresh = schema.DefaultAutoRefresh
	}
	raw, err := GetSimpleText(a.in, fmt.Sprintf("Auto-refresh seconds (0 disables) [%d]", refresh), a.out)
	if err != nil && err != io.EOF {
		return a.done(err)
	}
	if raw != "" {
		n, convErr := strconv.Atoi(raw)
		if convErr != nil || n < 0 {
			return a.done(fmt.Errorf("auto-refresh must be a non-negative number of seconds, got %q", raw))
		}
		refresh = n
	}

	if err := a.ctrl.Configure(ctx, token, formID, refresh); err != nil {
		return a.done(err)
	}
	a.flush()
	return a.List(ctx)
}

func (a *App) Test(ctx context.Context) error {
	a.ctrl.TestConnection(ctx, "", "")
	return a.done(nil)
}

func (a *App) Auto(ctx context.Context, seconds string) error {
	n, err := strconv.Atoi(seconds)
	if err != nil || n < 0 {
		fmt.Fprintln(a.out, "Usage: auto <seconds>, 0 disables")
		return a.done(fmt.Errorf("invalid interval %q", seconds))
	}
	return a.done(a.ctrl.SetAutoRefresh(n))
}

func (a *App) History(ctx context.Context) error {
	recs, err := a.ctrl.History()
	if err != nil {
		return a.done(err)
	}
	if len(recs) == 0 {
		fmt.Fprintln(a.out, "No decisions yet")
		return a.done(nil)
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SUBMISSION\tSTATUS\tWHEN\tBY\tREASON")
	for _, r := range recs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.SubmissionID, r.Status, r.Timestamp.Local().Format("2006-01-02 15:04"), r.ProcessedBy, r.Reason)
	}
	return a.done(tw.Flush())
}

func (a *App) Export(ctx context.Context, path string) error {
	if path == "" {
		path = dashboard.ExportFileName(a.now())
	}
	f, err := os.Create(path)
	if err != nil {
		return a.done(err)
	}
	if err := a.ctrl.Export(f); err != nil {
		f.Close()
		return a.done(err)
	}
	if err := f.Close(); err != nil {
		return a.done(err)
	}
	fmt.Fprintf(a.out, "Exported to %s\n", path)
	return a.done(nil)
}

func (a *App) Clear(ctx context.Context) error {
	ok := Confirm(a.in, "This removes all moderation history and stored credentials. Continue?", a.out)
	if !ok {
		fmt.Fprintln(a.out, "Cancelled")
		return a.done(nil)
	}
	return a.done(a.ctrl.ClearAll(true))
}
