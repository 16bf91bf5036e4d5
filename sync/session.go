// ABOUTME: Stateful contact sync session with single-flight and subscriptions
// ABOUTME: Tracks contacts, loading, error, and last sync time for the dashboards
package sync

import (
	"context"
	"errors"
	"strings"
	stdsync "sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harperreed/torque/logging"
	"github.com/harperreed/torque/metrics"
	"github.com/harperreed/torque/models"
	"github.com/harperreed/torque/pubsub"
	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/singleflight"
)

// Lifecycle values reported by State.Status.
const (
	StatusIdle    = "idle"
	StatusLoading = "loading"
	StatusError   = "error"
)

// State is a snapshot of the session. Contacts is a copy owned by the caller.
type State struct {
	BaseURL  string
	Contacts []models.Contact
	Error    string
	Loading  bool
	LastSync *time.Time
}

// Status folds the state into idle, loading, or error.
func (s State) Status() string {
	switch {
	case s.Loading:
		return StatusLoading
	case s.Error != "":
		return StatusError
	}
	return StatusIdle
}

// Recorder persists sync attempts. Failures are logged and otherwise ignored.
type Recorder interface {
	SyncStarted(run models.SyncRun) error
	SyncFinished(run models.SyncRun) error
}

type Session struct {
	fetcher  Fetcher
	recorder Recorder
	logger   *log.Logger
	now      func() time.Time

	group  singleflight.Group
	broker *pubsub.Broker[State]

	mu     stdsync.Mutex
	state  State
	flight string
}

type SessionOption func(*Session)

// WithRecorder stores each attempt in sync history.
func WithRecorder(r Recorder) SessionOption {
	return func(s *Session) { s.recorder = r }
}

func WithLogger(l *log.Logger) SessionOption {
	return func(s *Session) { s.logger = l }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

func NewSession(fetcher Fetcher, opts ...SessionOption) *Session {
	s := &Session{
		fetcher: fetcher,
		logger:  logging.Discard(),
		now:     time.Now,
		broker:  pubsub.NewBroker[State](),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Contacts returns a copy of the last successfully synced contacts.
func (s *Session) Contacts() []models.Contact {
	return s.Snapshot().Contacts
}

// Subscribe delivers the current state immediately and again after every
// transition until ctx is done.
func (s *Session) Subscribe(ctx context.Context) <-chan State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.broker.Subscribe(ctx, s.snapshotLocked())
}

// Sync fetches contacts from baseURL. A call for the target already being
// fetched joins that flight; a call for a different target fails with
// SyncInProgress. The fetch runs to completion even if ctx ends first, in
// which case the caller gets ctx.Err() and the result still lands in the
// session.
func (s *Session) Sync(ctx context.Context, baseURL, apiKey string) ([]models.Contact, error) {
	endpoint := NormalizeBaseURL(baseURL)
	key := endpoint + "\x00" + strings.TrimSpace(apiKey)

	s.mu.Lock()
	if s.state.Loading && s.flight != key {
		busy := s.state.BaseURL
		s.mu.Unlock()
		return nil, syncInProgress(busy)
	}
	s.beginLocked(key, endpoint)
	s.mu.Unlock()

	flightCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (interface{}, error) {
		return s.run(flightCtx, key, endpoint, baseURL, apiKey)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return cloneContacts(res.Val.([]models.Contact)), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// beginLocked moves the session into loading. Joining callers find it already
// loading and leave it alone.
func (s *Session) beginLocked(key, endpoint string) {
	if s.state.Loading {
		return
	}
	s.flight = key
	s.state.BaseURL = endpoint
	s.state.Error = ""
	s.state.Loading = true
	s.broker.Publish(s.snapshotLocked())
}

func (s *Session) run(ctx context.Context, key, endpoint, baseURL, apiKey string) ([]models.Contact, error) {
	s.mu.Lock()
	s.beginLocked(key, endpoint)
	s.mu.Unlock()

	run := models.SyncRun{
		ID:        ulid.Make().String(),
		Service:   models.ContactsService,
		Endpoint:  endpoint,
		StartedAt: s.now(),
		Status:    models.SyncStatusSyncing,
	}
	s.record(run, true)
	metrics.SyncStarted()

	s.logger.Debug("syncing contacts", "endpoint", endpoint)
	contacts, err := s.fetcher.FetchContacts(ctx, baseURL, apiKey)

	finished := s.now()
	run.FinishedAt = &finished

	s.mu.Lock()
	// New callers for this key must start a fresh flight from here on.
	s.group.Forget(key)
	s.flight = ""
	s.state.Loading = false
	if err != nil {
		s.state.Error = errorDetail(err)
	} else {
		s.state.Contacts = cloneContacts(contacts)
		s.state.LastSync = &finished
	}
	s.broker.Publish(s.snapshotLocked())
	s.mu.Unlock()

	if err != nil {
		kind := string(KindNetworkOrParse)
		var syncErr *Error
		if errors.As(err, &syncErr) {
			kind = string(syncErr.Kind)
		}
		run.Status = models.SyncStatusError
		run.ErrorKind = kind
		run.ErrorMessage = errorDetail(err)
		s.logger.Warn("contact sync failed", "endpoint", endpoint, "kind", kind, "err", run.ErrorMessage)
		metrics.ObserveSync(kind, run.StartedAt, 0)
	} else {
		run.Status = models.SyncStatusIdle
		run.ContactCount = len(contacts)
		s.logger.Info("synced contacts", "endpoint", endpoint, "contacts", len(contacts))
		metrics.ObserveSync(metrics.ResultSuccess, run.StartedAt, len(contacts))
	}
	s.record(run, false)

	if err != nil {
		return nil, err
	}
	return contacts, nil
}

func (s *Session) record(run models.SyncRun, started bool) {
	if s.recorder == nil {
		return
	}

	var err error
	if started {
		err = s.recorder.SyncStarted(run)
	} else {
		err = s.recorder.SyncFinished(run)
	}
	if err != nil {
		s.logger.Warn("failed to record sync run", "run", run.ID, "err", err)
	}
}

func (s *Session) snapshotLocked() State {
	snap := s.state
	snap.Contacts = cloneContacts(s.state.Contacts)
	if s.state.LastSync != nil {
		t := *s.state.LastSync
		snap.LastSync = &t
	}
	return snap
}

func errorDetail(err error) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return defaultNetworkErrDetail
}

func cloneContacts(in []models.Contact) []models.Contact {
	if in == nil {
		return nil
	}
	out := make([]models.Contact, len(in))
	copy(out, in)
	return out
}
