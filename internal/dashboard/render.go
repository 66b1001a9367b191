package dashboard

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/techwomen-moldova/mentordesk/internal/moderation"
	"github.com/techwomen-moldova/mentordesk/pkg/schema"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is a message for the operator.
type Notification struct {
	Level   Level
	Message string
	Time    time.Time
}

// Snapshot is the controller state a View is rendered from.
type Snapshot struct {
	State         State
	Sync          SyncStatus
	LastSync      time.Time
	Pending       []schema.Submission
	Approved      []schema.Profile
	Counts        moderation.Counts
	Notifications []Notification
	FormID        string
	MaskedToken   string
	AutoRefresh   int
	Mode          PublishMode
}

// ExcerptLen is the number of characters of a bio shown on a card.
const ExcerptLen = 120

// Card is one pending submission as listed on the dashboard.
type Card struct {
	ID        string
	Name      string
	Email     string
	Role      string
	Title     string
	Company   string
	Domain    string
	Submitted string
	Excerpt   string
}

// View is everything a front end draws.
type View struct {
	State    State
	Sync     SyncStatus
	LastSync string
	Banner   string
	Pending  int
	Approved int
	Rejected int
	Cards    []Card
	Settings string
}

// Render builds the View for s. It has no side effects.
func Render(s Snapshot) View {
	v := View{
		State:    s.State,
		Sync:     s.Sync,
		Pending:  len(s.Pending),
		Approved: s.Counts.Approved,
		Rejected: s.Counts.Rejected,
		Cards:    make([]Card, 0, len(s.Pending)),
	}
	if !s.LastSync.IsZero() {
		v.LastSync = s.LastSync.Local().Format("2006-01-02 15:04:05")
	}

	switch s.State {
	case StateUninitialized:
		v.Banner = "Loading..."
	case StateAwaitingCredentials:
		v.Banner = "Please configure your Netlify credentials in Settings first"
	case StateReady:
		if len(s.Pending) == 0 {
			v.Banner = "No pending submissions"
		}
	}

	if s.FormID != "" {
		refresh := "off"
		if s.AutoRefresh > 0 {
			refresh = fmt.Sprintf("%ds", s.AutoRefresh)
		}
		v.Settings = fmt.Sprintf("form %s, token %s, auto-refresh %s, publish %s", s.FormID, s.MaskedToken, refresh, s.Mode)
	}

	for _, sub := range s.Pending {
		v.Cards = append(v.Cards, cardOf(sub))
	}
	return v
}

func cardOf(sub schema.Submission) Card {
	c := Card{
		ID:      sub.ID,
		Name:    sub.Field("name"),
		Email:   sub.Field("email"),
		Role:    sub.Field("role"),
		Title:   sub.Field("title"),
		Company: sub.Field("company"),
		Domain:  sub.Field("domain"),
		Excerpt: Excerpt(sub.FirstField("bio", "message", "story"), ExcerptLen),
	}
	if c.Name == "" {
		c.Name = "(no name)"
	}
	if !sub.CreatedAt.IsZero() {
		c.Submitted = sub.CreatedAt.Local().Format("2006-01-02 15:04")
	}
	return c
}

// Excerpt shortens s to at most n characters, marking the cut with "...".
func Excerpt(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n])) + "..."
}

// Detail is the full card of one submission.
type Detail struct {
	ID        string
	FormName  string
	Submitted string
	Fields    []Field
}

type Field struct {
	Name  string
	Value string
}

// DetailOf lists every data field of sub in name order.
func DetailOf(sub schema.Submission) Detail {
	d := Detail{ID: sub.ID, FormName: sub.FormName}
	if !sub.CreatedAt.IsZero() {
		d.Submitted = sub.CreatedAt.Local().Format("2006-01-02 15:04:05")
	}
	names := make([]string, 0, len(sub.Data))
	for k := range sub.Data {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		if v := sub.Field(k); v != "" {
			d.Fields = append(d.Fields, Field{Name: k, Value: v})
		}
	}
	return d
}

var funcs = template.FuncMap{
	"upper": strings.ToUpper,
}

var viewTmpl = template.Must(template.New("view").Funcs(funcs).Parse(
	`== Dashboard [{{.State}}] sync: {{.Sync}}{{if .LastSync}} (last {{.LastSync}}){{end}}
{{- if .Settings}}
   {{.Settings}}{{end}}
   pending {{.Pending}} | approved {{.Approved}} | rejected {{.Rejected}}
{{- if .Banner}}

   {{.Banner}}{{end}}
{{range .Cards}}
-- {{.Name}} [{{or .Role "?"}}] id={{.ID}}
   {{or .Email "no email"}}{{if .Title}} | {{.Title}}{{end}}{{if .Company}} @ {{.Company}}{{end}}{{if .Domain}} | {{.Domain}}{{end}}
{{- if .Submitted}}
   submitted {{.Submitted}}{{end}}
{{- if .Excerpt}}
   {{.Excerpt}}{{end}}
{{end}}`))

var detailTmpl = template.Must(template.New("detail").Funcs(funcs).Parse(
	`== Submission {{.ID}}{{if .FormName}} ({{.FormName}}){{end}}
{{- if .Submitted}}
   submitted {{.Submitted}}{{end}}
{{range .Fields}}   {{upper .Name}}: {{.Value}}
{{end}}`))

// WriteText draws v for a terminal.
func WriteText(w io.Writer, v View) error {
	return viewTmpl.Execute(w, v)
}

// WriteDetail draws a full submission card for a terminal.
func WriteDetail(w io.Writer, d Detail) error {
	return detailTmpl.Execute(w, d)
}
