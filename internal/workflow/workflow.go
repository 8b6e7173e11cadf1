// Package workflow drives a submission from an opened composer through
// validation, the shared-secret gate, and persistence. One Composer instance
// backs one open form; the state machine guarantees a single submission in
// flight and that nothing reaches the store with a required field missing.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/looplab/fsm"

	"portfolio/internal/content"
	"portfolio/internal/docstore"
	"portfolio/internal/gate"
)

const (
	StateIdle         = "idle"
	StateComposerOpen = "composer_open"
	StateGatePending  = "gate_pending"
	StatePersisting   = "persisting"
)

const (
	EventOpen          = "open"
	EventSubmit        = "submit"
	EventPersist       = "persist"
	EventPersisted     = "persisted"
	EventPersistFailed = "persist_failed"
	EventCancel        = "cancel"
)

const (
	MsgWrongSecret        = "Good try noob"
	MsgSecretUnconfigured = "Password configuration error. Please contact admin."
	MsgVerifyFailed       = "An error occurred during verification."
)

var (
	// ErrPersist wraps a rejected store write. The form is preserved so the
	// user can retry without re-entering anything.
	ErrPersist = errors.New("persist failed")
	// ErrNotOpen is returned for submit/verify calls in the wrong state.
	ErrNotOpen = errors.New("composer is not open")
	// ErrBusy is returned while a submission is already persisting.
	ErrBusy = errors.New("a submission is already in flight")
)

type Composer struct {
	kind     content.Kind
	store    *docstore.Store
	verifier gate.Verifier

	mu       sync.Mutex
	machine  *fsm.FSM
	form     url.Values
	secret   string
	fieldErr string
	gateMsg  string
	lastID   string
}

func New(kind content.Kind, store *docstore.Store, verifier gate.Verifier) *Composer {
	return &Composer{
		kind:     kind,
		store:    store,
		verifier: verifier,
		form:     kind.Defaults(),
		machine: fsm.NewFSM(
			StateIdle,
			fsm.Events{
				{Name: EventOpen, Src: []string{StateIdle}, Dst: StateComposerOpen},
				{Name: EventSubmit, Src: []string{StateComposerOpen}, Dst: StateGatePending},
				{Name: EventPersist, Src: []string{StateComposerOpen, StateGatePending}, Dst: StatePersisting},
				{Name: EventPersisted, Src: []string{StatePersisting}, Dst: StateIdle},
				{Name: EventPersistFailed, Src: []string{StatePersisting}, Dst: StateComposerOpen},
				{Name: EventCancel, Src: []string{StateComposerOpen, StateGatePending}, Dst: StateIdle},
			},
			fsm.Callbacks{},
		),
	}
}

func (c *Composer) State() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.Current()
}

// Open resets the form to the kind's defaults and clears every message.
func (c *Composer) Open(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.machine.Event(ctx, EventOpen); err != nil {
		return err
	}
	c.form = c.kind.Defaults()
	c.secret = ""
	c.fieldErr = ""
	c.gateMsg = ""
	return nil
}

// SetForm overlays the given values on the current form, keeping defaults
// for keys the caller does not mention.
func (c *Composer) SetForm(values url.Values) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, vs := range values {
		c.form[key] = append([]string(nil), vs...)
	}
}

func (c *Composer) SetField(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form.Set(key, value)
}

// SetSecret records the gate candidate. It is cleared after every mismatch
// and after a successful submission.
func (c *Composer) SetSecret(secret string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.secret = secret
}

// Form returns a copy of the current form values.
func (c *Composer) Form() url.Values {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := url.Values{}
	for key, vs := range c.form {
		out[key] = append([]string(nil), vs...)
	}
	return out
}

// FieldError is the current validation or upload-failure message, empty when
// there is none.
func (c *Composer) FieldError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fieldErr
}

// GateMessage is the current gate feedback, empty when there is none.
func (c *Composer) GateMessage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gateMsg
}

// Secret exposes the pending candidate; used to observe the clear-on-mismatch
// behavior.
func (c *Composer) Secret() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.secret
}

// LastID is the store id of the most recently persisted record.
func (c *Composer) LastID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastID
}

// Submit validates the form. On failure the composer stays open with its
// values and a field-level message. On success a gated kind moves to the
// gate and waits for VerifySecret; an ungated kind persists immediately.
func (c *Composer) Submit(ctx context.Context) error {
	c.mu.Lock()
	switch c.machine.Current() {
	case StateComposerOpen:
	case StatePersisting:
		c.mu.Unlock()
		return ErrBusy
	default:
		c.mu.Unlock()
		return ErrNotOpen
	}

	if err := c.kind.Validate(c.form); err != nil {
		var verr *content.ValidationError
		if errors.As(err, &verr) {
			c.fieldErr = verr.Message
		}
		c.mu.Unlock()
		return err
	}
	c.fieldErr = ""

	if c.kind.Gated {
		if err := c.machine.Event(ctx, EventSubmit); err != nil {
			c.mu.Unlock()
			return err
		}
		c.mu.Unlock()
		return nil
	}
	return c.persist(ctx)
}

// VerifySecret runs the gate with the recorded candidate and, on a match,
// persists the submission. A mismatch clears the candidate and allows
// unlimited retries.
func (c *Composer) VerifySecret(ctx context.Context) error {
	c.mu.Lock()
	if c.machine.Current() != StateGatePending {
		c.mu.Unlock()
		return ErrNotOpen
	}
	candidate := c.secret
	c.mu.Unlock()

	err := c.verifier.Verify(ctx, c.kind.SecretDoc, candidate)

	c.mu.Lock()
	switch {
	case errors.Is(err, gate.ErrSecretMismatch):
		c.secret = ""
		c.gateMsg = MsgWrongSecret
		c.mu.Unlock()
		return err
	case errors.Is(err, gate.ErrSecretMissing):
		c.gateMsg = MsgSecretUnconfigured
		c.mu.Unlock()
		return err
	case err != nil:
		c.gateMsg = MsgVerifyFailed
		c.mu.Unlock()
		return err
	}
	c.gateMsg = ""
	c.secret = ""
	return c.persist(ctx)
}

// Cancel closes the composer without writing anything.
func (c *Composer) Cancel(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.machine.Event(ctx, EventCancel); err != nil {
		return err
	}
	c.fieldErr = ""
	c.gateMsg = ""
	c.secret = ""
	return nil
}

// persist issues the single store insert. Called with c.mu held; releases it
// around the write so readers are never blocked on IO. Success resets the
// form to defaults; failure keeps it and surfaces the kind's message.
func (c *Composer) persist(ctx context.Context) error {
	if err := c.machine.Event(ctx, EventPersist); err != nil {
		c.mu.Unlock()
		return err
	}
	fields := c.kind.Build(c.form, time.Now())
	c.mu.Unlock()

	id, err := c.store.Insert(ctx, c.kind.Name, fields)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		if ferr := c.machine.Event(ctx, EventPersistFailed); ferr != nil {
			return ferr
		}
		c.fieldErr = c.kind.FailedSaveMsg
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	if serr := c.machine.Event(ctx, EventPersisted); serr != nil {
		return serr
	}
	c.lastID = id
	c.form = c.kind.Defaults()
	c.secret = ""
	c.fieldErr = ""
	c.gateMsg = ""
	return nil
}
