package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bursary-portal-backend/apperrors"
	"bursary-portal-backend/config"
	"bursary-portal-backend/db/models"
	"bursary-portal-backend/gateway"
	"bursary-portal-backend/session"
	"bursary-portal-backend/wizard"

	"go.uber.org/zap"
)

type SubmissionState string

const (
	StateIdle         SubmissionState = "idle"
	StateAwaitingAuth SubmissionState = "awaiting_auth"
	StateInFlight     SubmissionState = "in_flight"
	StateSubmitted    SubmissionState = "submitted"
	StateFailed       SubmissionState = "failed"
)

// Outcome is what a session's last submission attempt came to.
type Outcome struct {
	State       SubmissionState     `json:"state"`
	ReferenceID string              `json:"reference_id,omitempty"`
	Application *models.Application `json:"application,omitempty"`
	Error       *apperrors.Error    `json:"error,omitempty"`
}

func (o Outcome) Pending() bool {
	return o.State == StateAwaitingAuth || o.State == StateInFlight
}

// Err returns the failure as an error, nil unless the attempt failed.
func (o Outcome) Err() error {
	if o.Error == nil {
		return nil
	}
	return o.Error
}

type tracker struct {
	mu          sync.Mutex
	state       SubmissionState
	app         *models.Application
	err         *apperrors.Error
	unsubscribe func()
	// changed is closed and replaced on every transition.
	changed chan struct{}
}

func newTracker() *tracker {
	return &tracker{state: StateIdle, changed: make(chan struct{})}
}

func (t *tracker) setLocked(state SubmissionState, app *models.Application, err *apperrors.Error) {
	t.state = state
	t.app = app
	t.err = err
	close(t.changed)
	t.changed = make(chan struct{})
}

func (t *tracker) dropSubscriptionLocked() {
	if t.unsubscribe != nil {
		t.unsubscribe()
		t.unsubscribe = nil
	}
}

func (t *tracker) outcomeLocked() Outcome {
	o := Outcome{State: t.state, Application: t.app, Error: t.err}
	if t.app != nil {
		o.ReferenceID = t.app.ReferenceID()
	}
	return o
}

// SubmissionService turns a completed draft into a stored application.
// When the session is anonymous the submission is parked and resumes once
// the session signs in.
type SubmissionService struct {
	Gateway *gateway.Gateway
	Hooks   []ApplicationHook

	now      func() time.Time
	mu       sync.Mutex
	trackers map[string]*tracker
}

func NewSubmissionService(gw *gateway.Gateway, hooks ...ApplicationHook) *SubmissionService {
	return &SubmissionService{
		Gateway:  gw,
		Hooks:    hooks,
		now:      time.Now,
		trackers: make(map[string]*tracker),
	}
}

func (s *SubmissionService) trackerFor(sessionID string) *tracker {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.trackers[sessionID]
	if !ok {
		t = newTracker()
		s.trackers[sessionID] = t
	}
	return t
}

func (s *SubmissionService) lookup(sessionID string) *tracker {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trackers[sessionID]
}

// Submit sends the session's draft. A second call while a submission is
// running or after it succeeded returns that same outcome.
func (s *SubmissionService) Submit(ctx context.Context, sess *session.Session) (Outcome, error) {
	t := s.trackerFor(sess.ID)

	t.mu.Lock()
	switch t.state {
	case StateSubmitted:
		o := t.outcomeLocked()
		t.mu.Unlock()
		return o, nil
	case StateInFlight:
		t.mu.Unlock()
		return s.Wait(ctx, sess.ID)
	}

	if err := sess.Draft().ValidateAll(); err != nil {
		o := t.outcomeLocked()
		t.mu.Unlock()
		return o, err
	}

	principal := sess.Principal()
	if principal == nil {
		if t.state != StateAwaitingAuth {
			t.unsubscribe = sess.Subscribe(func(snap session.Snapshot) {
				if snap.SignedIn() {
					s.resume(sess, t, snap.Principal)
				}
			})
			t.setLocked(StateAwaitingAuth, nil, nil)
		}
		// The principal may have arrived before the subscription existed.
		principal = sess.Principal()
		if principal == nil {
			o := t.outcomeLocked()
			t.mu.Unlock()
			return o, apperrors.AuthRequired("Please sign in to submit your application. Your answers have been kept.")
		}
	}

	t.dropSubscriptionLocked()
	t.setLocked(StateInFlight, nil, nil)
	t.mu.Unlock()

	return s.execute(ctx, sess, t, principal)
}

// resume runs a parked submission. Only the first caller out of
// awaiting_auth proceeds.
func (s *SubmissionService) resume(sess *session.Session, t *tracker, principal *models.Principal) {
	t.mu.Lock()
	if t.state != StateAwaitingAuth {
		t.mu.Unlock()
		return
	}
	t.dropSubscriptionLocked()
	t.setLocked(StateInFlight, nil, nil)
	t.mu.Unlock()

	config.Logger.Info("Resuming submission after sign-in",
		zap.String("session_id", sess.ID), zap.String("user_id", principal.ID.String()))
	if _, err := s.execute(context.Background(), sess, t, principal); err != nil {
		config.Logger.Warn("Resumed submission failed", zap.String("session_id", sess.ID), zap.Error(err))
	}
}

func (s *SubmissionService) execute(ctx context.Context, sess *session.Session, t *tracker, principal *models.Principal) (Outcome, error) {
	app, err := s.run(ctx, sess.Draft(), principal)

	t.mu.Lock()
	if err != nil {
		appErr, ok := apperrors.As(err)
		if !ok {
			appErr = apperrors.Wrap(apperrors.KindPersistenceFailure, "Failed to submit application", err)
		}
		t.setLocked(StateFailed, nil, appErr)
	} else {
		t.setLocked(StateSubmitted, app, nil)
	}
	o := t.outcomeLocked()
	t.mu.Unlock()

	if err != nil {
		return o, o.Err()
	}

	config.Logger.Info("Application submitted",
		zap.String("application_id", app.ID.String()), zap.String("user_id", principal.ID.String()))
	runHooks(ctx, s.Hooks, app)
	return o, nil
}

func (s *SubmissionService) run(ctx context.Context, draft *wizard.Wizard, principal *models.Principal) (*models.Application, error) {
	if err := draft.ValidateAll(); err != nil {
		return nil, err
	}
	app, err := BuildApplication(draft.Fields())
	if err != nil {
		return nil, err
	}

	docs := draft.Documents()
	var uploaded []string
	for _, docType := range wizard.DocumentOrder {
		file := docs[docType]
		if file == nil {
			continue
		}
		path := DocumentPath(principal.ID, docType, file.Name(), s.now())
		url, err := s.upload(ctx, path, file)
		if err != nil {
			s.deleteUploads(uploaded)
			return nil, uploadFailure(docType, err)
		}
		uploaded = append(uploaded, path)
		setDocumentURL(app, docType, url)
	}

	app.UserID = principal.ID
	app.Status = models.PendingApplication

	created, err := s.Gateway.InsertApplication(ctx, app)
	if err != nil {
		s.deleteUploads(uploaded)
		return nil, err
	}

	draft.MarkSubmitted()
	files := make([]wizard.File, 0, len(docs))
	for _, f := range docs {
		files = append(files, f)
	}
	DiscardFiles(files...)
	return created, nil
}

func (s *SubmissionService) upload(ctx context.Context, path string, file wizard.File) (string, error) {
	rc, err := file.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()
	return s.Gateway.Upload(ctx, path, rc)
}

func uploadFailure(docType wizard.DocumentType, err error) *apperrors.Error {
	detail := err.Error()
	if inner, ok := apperrors.As(err); ok && inner.Detail != "" {
		detail = inner.Detail
	}
	return &apperrors.Error{
		Kind:    apperrors.KindUploadFailure,
		Message: fmt.Sprintf("Failed to upload %s", docType.Label()),
		Detail:  detail,
		Err:     err,
	}
}

// deleteUploads removes objects from an aborted attempt. Failures are
// logged by the gateway and otherwise ignored.
func (s *SubmissionService) deleteUploads(paths []string) {
	for _, p := range paths {
		_ = s.Gateway.DeleteObject(context.Background(), p)
	}
}

// Outcome reports the last submission attempt of a session.
func (s *SubmissionService) Outcome(sessionID string) Outcome {
	t := s.lookup(sessionID)
	if t == nil {
		return Outcome{State: StateIdle}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.outcomeLocked()
}

// OutcomeFor is Outcome as the session's current principal may see it.
// An application owned by anyone else is never returned.
func (s *SubmissionService) OutcomeFor(sess *session.Session) Outcome {
	o := s.Outcome(sess.ID)
	return o.visibleTo(sess.Principal())
}

func (o Outcome) visibleTo(viewer *models.Principal) Outcome {
	if o.Application == nil {
		return o
	}
	if viewer == nil || viewer.ID != o.Application.UserID {
		return Outcome{State: StateIdle}
	}
	return o
}

// Wait blocks while the session's submission is pending or until ctx ends.
func (s *SubmissionService) Wait(ctx context.Context, sessionID string) (Outcome, error) {
	t := s.lookup(sessionID)
	if t == nil {
		return Outcome{State: StateIdle}, nil
	}
	for {
		t.mu.Lock()
		o := t.outcomeLocked()
		changed := t.changed
		t.mu.Unlock()

		if !o.Pending() {
			return o, o.Err()
		}
		select {
		case <-changed:
		case <-ctx.Done():
			if o.State == StateAwaitingAuth {
				return o, apperrors.AuthRequired("Please sign in to submit your application. Your answers have been kept.")
			}
			return o, apperrors.New(apperrors.KindPersistenceFailure, "Your application is still being processed")
		}
	}
}

// Reset starts a fresh draft on the session. It refuses while a
// submission is running.
func (s *SubmissionService) Reset(sess *session.Session) error {
	if t := s.lookup(sess.ID); t != nil {
		t.mu.Lock()
		inFlight := t.state == StateInFlight
		t.mu.Unlock()
		if inFlight {
			return apperrors.Validation("Your application is still being submitted")
		}
	}
	s.Forget(sess)
	sess.ResetDraft()
	return nil
}

// Forget drops everything held for sess, including staged files of an
// unsubmitted draft.
func (s *SubmissionService) Forget(sess *session.Session) {
	s.mu.Lock()
	t := s.trackers[sess.ID]
	delete(s.trackers, sess.ID)
	s.mu.Unlock()

	if t != nil {
		t.mu.Lock()
		t.dropSubscriptionLocked()
		t.mu.Unlock()
	}

	draft := sess.Draft()
	if draft.Submitted() {
		return
	}
	var files []wizard.File
	for _, f := range draft.Documents() {
		files = append(files, f)
	}
	DiscardFiles(files...)
}

// Release drops the finished submission and the draft when the session's
// principal signs out or changes. A submission still running is kept.
func (s *SubmissionService) Release(sess *session.Session) {
	if t := s.lookup(sess.ID); t != nil {
		t.mu.Lock()
		pending := t.outcomeLocked().Pending()
		t.mu.Unlock()
		if pending {
			return
		}
	}
	s.Forget(sess)
	sess.ResetDraft()
	config.Logger.Debug("Released session draft", zap.String("session_id", sess.ID))
}
