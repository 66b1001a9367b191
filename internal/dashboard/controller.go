// Package dashboard implements the operator's moderation workflow: it pulls
// pending submissions, applies approve/reject decisions and keeps the
// auto-refresh timer. Any front end drives it through the Controller methods
// and draws the View returned by Render.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/techwomen-moldova/mentordesk/internal/common"
	"github.com/techwomen-moldova/mentordesk/internal/forms"
	"github.com/techwomen-moldova/mentordesk/internal/logging"
	"github.com/techwomen-moldova/mentordesk/internal/moderation"
	"github.com/techwomen-moldova/mentordesk/internal/profiles"
	"github.com/techwomen-moldova/mentordesk/internal/settings"
	"github.com/techwomen-moldova/mentordesk/pkg/schema"
	"github.com/techwomen-moldova/mentordesk/pkg/sdk"
)

type State string

const (
	StateUninitialized       State = "uninitialized"
	StateAwaitingCredentials State = "awaiting-credentials"
	StateReady               State = "ready"
)

type SyncStatus string

const (
	SyncUnknown SyncStatus = "unknown"
	SyncOnline  SyncStatus = "online"
	SyncOffline SyncStatus = "offline"
)

// PublishMode decides what approval does with the built profile.
type PublishMode string

const (
	// PublishAuto sends the profile to the publisher before recording the decision.
	PublishAuto PublishMode = "auto"
	// PublishManual only shows the profile JSON for the operator to copy.
	PublishManual PublishMode = "manual"
)

// marshalProfile renders a profile for manual publishing.
var marshalProfile = func(p schema.Profile) ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}

// ParsePublishMode maps a config value onto a mode; anything unknown is auto.
func ParsePublishMode(s string) PublishMode {
	if strings.EqualFold(strings.TrimSpace(s), string(PublishManual)) {
		return PublishManual
	}
	return PublishAuto
}

const maxNotifications = 20

// SubmissionSource is the part of the forms client the controller needs.
type SubmissionSource interface {
	FetchPending(ctx context.Context, creds forms.Credentials) ([]schema.Submission, error)
	TestConnection(ctx context.Context, creds forms.Credentials) bool
}

// Options wires a Controller.
type Options struct {
	Source    SubmissionSource
	Tracker   *moderation.Tracker
	Settings  *settings.Manager
	Publisher sdk.ProfilePublisher
	Mode      PublishMode
	Log       logging.Logger
	// OnChange, when set, is called with a fresh View after every state change,
	// including unattended auto-refreshes.
	OnChange func(View)
}

type refreshTimer struct {
	ticker *time.Ticker
	done   chan struct{}
}

// Controller is the Dashboard Controller. All methods are safe for concurrent
// use. Overlapping refreshes are not serialized: the last one to finish wins.
type Controller struct {
	source    SubmissionSource
	tracker   *moderation.Tracker
	settings  *settings.Manager
	publisher sdk.ProfilePublisher
	mode      PublishMode
	log       logging.Logger
	onChange  func(View)
	now       func() time.Time

	mu            sync.Mutex
	state         State
	cfg           schema.Settings
	pending       []schema.Submission
	approved      []schema.Profile
	counts        moderation.Counts
	sync          SyncStatus
	lastSync      time.Time
	notifications []Notification
	timer         *refreshTimer
}

func NewController(opts Options) *Controller {
	mode := opts.Mode
	if mode == "" {
		mode = PublishAuto
	}
	return &Controller{
		source:    opts.Source,
		tracker:   opts.Tracker,
		settings:  opts.Settings,
		publisher: opts.Publisher,
		mode:      mode,
		log:       opts.Log,
		onChange:  opts.OnChange,
		now:       time.Now,
		state:     StateUninitialized,
		sync:      SyncUnknown,
	}
}

// Init loads settings and, when credentials exist, the pending list.
func (c *Controller) Init(ctx context.Context) error {
	cfg, err := c.settings.Load()
	if err != nil {
		c.mu.Lock()
		c.state = StateAwaitingCredentials
		c.notifyLocked(LevelError, err.Error())
		c.mu.Unlock()
		c.changed()
		return err
	}

	c.mu.Lock()
	c.cfg = cfg
	c.refreshCountsLocked()
	if !cfg.Configured() {
		c.state = StateAwaitingCredentials
		c.notifyLocked(LevelWarning, "Please configure your Netlify credentials in Settings first")
		c.mu.Unlock()
		c.changed()
		return nil
	}
	c.state = StateReady
	c.restartTimerLocked(cfg.AutoRefresh)
	c.mu.Unlock()

	return c.Refresh(ctx)
}

// Configure validates the credentials against the forms API, saves them and
// loads the pending list.
func (c *Controller) Configure(ctx context.Context, token, formID string, autoRefresh int) error {
	token, formID = strings.TrimSpace(token), strings.TrimSpace(formID)
	next := schema.Settings{NetlifyToken: token, FormID: formID, AutoRefresh: autoRefresh}
	if !next.Configured() {
		return c.fail(settings.ErrCredentialsRequired)
	}
	if autoRefresh < 0 {
		return c.fail(common.Errorf(common.ErrValidation, "Auto-refresh interval cannot be negative"))
	}
	if !c.source.TestConnection(ctx, forms.Credentials{Token: token, FormID: formID}) {
		c.setSync(SyncOffline)
		return c.fail(common.Errorf(common.ErrTransport, "Connection failed. Check your credentials."))
	}
	if err := c.settings.Save(next); err != nil {
		return c.fail(err)
	}

	c.mu.Lock()
	c.cfg = next
	c.state = StateReady
	c.restartTimerLocked(autoRefresh)
	c.notifyLocked(LevelSuccess, "Settings saved")
	c.mu.Unlock()
	c.log.Info(ctx, "credentials configured", "form", formID, "autoRefresh", autoRefresh)

	return c.Refresh(ctx)
}

// TestConnection checks the forms API with the given credentials. Blank
// arguments fall back to the saved ones.
func (c *Controller) TestConnection(ctx context.Context, token, formID string) bool {
	c.mu.Lock()
	if strings.TrimSpace(token) == "" {
		token = c.cfg.NetlifyToken
	}
	if strings.TrimSpace(formID) == "" {
		formID = c.cfg.FormID
	}
	c.mu.Unlock()

	creds := forms.Credentials{Token: token, FormID: formID}
	if !creds.Configured() {
		c.notify(LevelError, "Please enter both token and form ID")
		return false
	}

	ok := c.source.TestConnection(ctx, creds)
	if ok {
		c.notify(LevelSuccess, "Connection successful!")
	} else {
		c.notify(LevelError, "Connection failed. Check your credentials.")
	}
	return ok
}

// Refresh replaces the pending list with the unprocessed submissions.
// A failed fetch keeps the current list and marks the sync status offline.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	creds := forms.Credentials{Token: c.cfg.NetlifyToken, FormID: c.cfg.FormID}
	c.mu.Unlock()

	if !creds.Configured() {
		c.mu.Lock()
		c.state = StateAwaitingCredentials
		c.mu.Unlock()
		return c.fail(forms.ErrNotConfigured)
	}

	subs, err := c.source.FetchPending(ctx, creds)
	if err != nil {
		c.setSync(SyncOffline)
		c.log.Warn(ctx, "refresh failed", "error", err)
		return c.fail(err)
	}

	processed, err := c.tracker.ProcessedSet()
	if err != nil {
		return c.fail(err)
	}
	pending := make([]schema.Submission, 0, len(subs))
	for _, s := range subs {
		if !processed[s.ID] {
			pending = append(pending, s)
		}
	}

	c.mu.Lock()
	c.pending = pending
	c.sync = SyncOnline
	c.lastSync = c.now()
	c.refreshCountsLocked()
	c.notifyLocked(LevelSuccess, "Data refreshed")
	c.mu.Unlock()
	c.log.Debug(ctx, "refreshed", "fetched", len(subs), "pending", len(pending))

	c.changed()
	return nil
}

// Approve publishes a pending submission as a profile and records the
// decision. role may be empty when the submission names one itself.
func (c *Controller) Approve(ctx context.Context, id, role string) (schema.Profile, error) {
	sub, err := c.lookup(id)
	if err != nil {
		return schema.Profile{}, c.fail(err)
	}

	if role == "" {
		role = sub.Field("role")
	}
	r, ok := schema.ParseRole(role)
	if !ok {
		return schema.Profile{}, c.fail(common.Errorf(common.ErrValidation, "Role must be mentor or mentee"))
	}

	profile := profiles.FromSubmission(sub, r, c.now())

	switch c.mode {
	case PublishManual:
		b, err := marshalProfile(profile)
		if err != nil {
			return schema.Profile{}, c.fail(common.Wrap(common.ErrValidation, err, "Cannot render profile JSON"))
		}
		c.notify(LevelInfo, fmt.Sprintf("Add this profile to %s manually:\n%s", r.FileName(), b))
	default:
		if c.publisher == nil {
			return schema.Profile{}, c.fail(common.Errorf(common.ErrNotConfigured, "No profile publisher configured"))
		}
		res, err := c.publisher.Apply(ctx, schema.PublishRequest{
			Profile: profile.Fields(),
			Role:    r,
			Action:  schema.ActionAdd,
		})
		if err != nil {
			c.log.Warn(ctx, "publish failed", "submission", id, "error", err)
			return schema.Profile{}, c.fail(common.Wrap(common.ErrTransport, err, "Profile was not published, submission stays pending"))
		}
		if res != nil && res.Profile != nil {
			profile = *res.Profile
		}
	}

	if err := c.tracker.MarkProcessed(id, schema.StatusApproved, ""); err != nil {
		return schema.Profile{}, c.fail(err)
	}

	c.mu.Lock()
	c.removePendingLocked(id)
	c.approved = append(c.approved, profile)
	c.refreshCountsLocked()
	c.notifyLocked(LevelSuccess, fmt.Sprintf("%s approved as %s", displayName(sub), r))
	c.mu.Unlock()
	c.log.Info(ctx, "submission approved", "submission", id, "role", r, "profile", profile.ID)

	c.changed()
	return profile, nil
}

// Reject records a rejection. An empty reason is stored as "No reason provided".
func (c *Controller) Reject(ctx context.Context, id, reason string) error {
	sub, err := c.lookup(id)
	if err != nil {
		return c.fail(err)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = NoReason
	}

	if err := c.tracker.MarkProcessed(id, schema.StatusRejected, reason); err != nil {
		return c.fail(err)
	}

	c.mu.Lock()
	c.removePendingLocked(id)
	c.refreshCountsLocked()
	c.notifyLocked(LevelWarning, fmt.Sprintf("%s rejected: %s", displayName(sub), reason))
	c.mu.Unlock()
	c.log.Info(ctx, "submission rejected", "submission", id, "reason", reason)

	c.changed()
	return nil
}

// NoReason is the stored reason of a rejection given without one.
const NoReason = "No reason provided"

// View returns the full card of a pending submission.
func (c *Controller) View(id string) (Detail, error) {
	sub, err := c.lookup(id)
	if err != nil {
		return Detail{}, c.fail(err)
	}
	return DetailOf(sub), nil
}

// SetAutoRefresh saves the interval and replaces the timer. 0 disables it.
func (c *Controller) SetAutoRefresh(seconds int) error {
	if err := c.settings.SaveAutoRefresh(seconds); err != nil {
		return c.fail(err)
	}

	c.mu.Lock()
	c.cfg.AutoRefresh = seconds
	if c.state == StateReady {
		c.restartTimerLocked(seconds)
	}
	if seconds > 0 {
		c.notifyLocked(LevelInfo, fmt.Sprintf("Auto-refresh every %ds", seconds))
	} else {
		c.notifyLocked(LevelInfo, "Auto-refresh disabled")
	}
	c.mu.Unlock()

	c.changed()
	return nil
}

// ClearAll wipes moderation state and stored settings. It does nothing
// unless confirmed.
func (c *Controller) ClearAll(confirmed bool) error {
	if !confirmed {
		return c.fail(common.Errorf(common.ErrValidation, "Clear all must be confirmed"))
	}

	if err := c.tracker.ClearAll(); err != nil {
		return c.fail(err)
	}
	if err := c.settings.Clear(); err != nil {
		return c.fail(err)
	}

	c.mu.Lock()
	c.stopTimerLocked()
	c.cfg = schema.Settings{AutoRefresh: schema.DefaultAutoRefresh}
	c.state = StateAwaitingCredentials
	c.pending = nil
	c.approved = nil
	c.counts = moderation.Counts{}
	c.sync = SyncUnknown
	c.lastSync = time.Time{}
	c.notifyLocked(LevelWarning, "All credentials cleared")
	c.mu.Unlock()

	c.changed()
	return nil
}

// History returns every recorded decision, oldest first.
func (c *Controller) History() ([]schema.ModerationRecord, error) {
	recs, err := c.tracker.Records()
	if err != nil {
		return nil, c.fail(err)
	}
	return recs, nil
}

// Settings returns the current settings with the token masked.
func (c *Controller) Settings() schema.Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.cfg
	s.NetlifyToken = s.MaskedToken()
	return s
}

// Snapshot copies the in-memory state for rendering.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	notes := make([]Notification, len(c.notifications))
	copy(notes, c.notifications)
	return Snapshot{
		State:         c.state,
		Sync:          c.sync,
		LastSync:      c.lastSync,
		Pending:       append([]schema.Submission(nil), c.pending...),
		Approved:      append([]schema.Profile(nil), c.approved...),
		Counts:        c.counts,
		Notifications: notes,
		FormID:        c.cfg.FormID,
		MaskedToken:   c.cfg.MaskedToken(),
		AutoRefresh:   c.cfg.AutoRefresh,
		Mode:          c.mode,
	}
}

// DrainNotifications returns and forgets the queued notifications.
func (c *Controller) DrainNotifications() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.notifications
	c.notifications = nil
	return out
}

// ActiveTimers reports how many auto-refresh timers are running (0 or 1).
func (c *Controller) ActiveTimers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer == nil {
		return 0
	}
	return 1
}

// Close stops the auto-refresh timer.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopTimerLocked()
}

func (c *Controller) lookup(id string) (schema.Submission, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range c.pending {
		if s.ID == id {
			return s, nil
		}
	}
	return schema.Submission{}, common.Errorf(common.ErrNotFound, "Submission %s is not pending", id)
}

func (c *Controller) removePendingLocked(id string) {
	out := c.pending[:0:0]
	for _, s := range c.pending {
		if s.ID != id {
			out = append(out, s)
		}
	}
	c.pending = out
}

func (c *Controller) refreshCountsLocked() {
	counts, err := c.tracker.Counts()
	if err != nil {
		c.log.Warn(context.Background(), "cannot read moderation counts", "error", err)
		return
	}
	c.counts = counts
}

// restartTimerLocked stops the running timer and starts a new one when
// seconds > 0, so at most one timer exists.
func (c *Controller) restartTimerLocked(seconds int) {
	c.stopTimerLocked()
	if seconds <= 0 {
		return
	}

	t := &refreshTimer{
		ticker: time.NewTicker(time.Duration(seconds) * time.Second),
		done:   make(chan struct{}),
	}
	c.timer = t

	go func() {
		for {
			select {
			case <-t.done:
				return
			case <-t.ticker.C:
				// failures are already turned into notifications
				_ = c.Refresh(context.Background())
			}
		}
	}()
}

func (c *Controller) stopTimerLocked() {
	if c.timer == nil {
		return
	}
	c.timer.ticker.Stop()
	close(c.timer.done)
	c.timer = nil
}

func (c *Controller) setSync(s SyncStatus) {
	c.mu.Lock()
	c.sync = s
	c.mu.Unlock()
}

// fail records err as an error notification and returns it.
func (c *Controller) fail(err error) error {
	level := LevelError
	if errors.Is(err, common.ErrNotConfigured) {
		level = LevelWarning
	}
	c.notify(level, err.Error())
	c.changed()
	return err
}

func (c *Controller) notify(level Level, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notifyLocked(level, msg)
}

func (c *Controller) notifyLocked(level Level, msg string) {
	c.notifications = append(c.notifications, Notification{Level: level, Message: msg, Time: c.now()})
	if n := len(c.notifications); n > maxNotifications {
		c.notifications = c.notifications[n-maxNotifications:]
	}
}

func (c *Controller) changed() {
	if c.onChange == nil {
		return
	}
	c.onChange(Render(c.Snapshot()))
}

func displayName(s schema.Submission) string {
	if n := s.Field("name"); n != "" {
		return n
	}
	return s.ID
}
