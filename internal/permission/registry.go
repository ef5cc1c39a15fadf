package permission

import (
	"context"
	"database/sql"
	"errors"
	"time"

	dbutil "github.com/rushmanagement/rushnotify/internal/db"
)

// Answer is the user's response to the consent prompt.
type Answer int

const (
	AnswerDismiss Answer = iota
	AnswerAllow
	AnswerBlock
)

// Prompter shows the consent UI and waits for the user.
type Prompter interface {
	Prompt(ctx context.Context) (Answer, error)
}

// PromptFunc adapts a function to Prompter.
type PromptFunc func(ctx context.Context) (Answer, error)

// Prompt implements Prompter.
func (f PromptFunc) Prompt(ctx context.Context) (Answer, error) {
	return f(ctx)
}

// PromptRequest is handed to the UI loop; the UI answers on Reply exactly once.
type PromptRequest struct {
	Reply chan<- Answer
}

// ChannelPrompter forwards prompts to an event loop that owns the screen.
type ChannelPrompter struct {
	requests chan PromptRequest
}

// NewChannelPrompter creates a prompter whose requests must be consumed from
// Requests.
func NewChannelPrompter() *ChannelPrompter {
	return &ChannelPrompter{requests: make(chan PromptRequest)}
}

// Requests returns the channel the UI reads prompt requests from.
func (p *ChannelPrompter) Requests() <-chan PromptRequest {
	return p.requests
}

// Prompt implements Prompter.
func (p *ChannelPrompter) Prompt(ctx context.Context) (Answer, error) {
	reply := make(chan Answer, 1)
	select {
	case p.requests <- PromptRequest{Reply: reply}:
	case <-ctx.Done():
		return AnswerDismiss, ctx.Err()
	}
	select {
	case a := <-reply:
		return a, nil
	case <-ctx.Done():
		return AnswerDismiss, ctx.Err()
	}
}

// Registry is the desktop permission platform. It keeps the user's consent
// decision in the notification_permission table and asks through a Prompter.
type Registry struct {
	db        *sql.DB
	prompter  Prompter
	available func() bool
	now       func() time.Time
}

// NewRegistry creates the platform. available reports whether a notification
// server is reachable; nil means always available.
func NewRegistry(db *sql.DB, prompter Prompter, available func() bool) *Registry {
	if available == nil {
		available = func() bool { return true }
	}
	return &Registry{db: db, prompter: prompter, available: available, now: time.Now}
}

// Status implements Platform.
func (r *Registry) Status() State {
	st, err := readState(r.db)
	if err != nil {
		return Default
	}
	return st
}

// Request implements Platform. A decided state is returned without
// prompting. If the session has no notification server the request resolves
// to Denied without recording anything.
func (r *Registry) Request(ctx context.Context) (State, error) {
	if st := r.Status(); st.Decided() {
		return st, nil
	}
	if !r.available() {
		return Denied, nil
	}

	answer, err := r.prompter.Prompt(ctx)
	if err != nil {
		return Default, err
	}

	var st State
	switch answer {
	case AnswerAllow:
		st = Granted
	case AnswerBlock:
		st = Denied
	default:
		return Default, nil
	}

	err = dbutil.WithTx(r.db, func(tx *sql.Tx) error {
		// Another process may have recorded a decision while we waited.
		var existing string
		err := tx.QueryRow(`SELECT state FROM notification_permission WHERE id = 1`).Scan(&existing)
		if err == nil && ParseState(existing).Decided() {
			st = ParseState(existing)
			return nil
		}
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return writeState(tx, st, r.now())
	})
	if err != nil {
		return Default, err
	}
	return st, nil
}

// Set overwrites the recorded decision. It models the user changing the
// permission outside the application; Default clears the decision.
func (r *Registry) Set(st State) error {
	if st == Default {
		_, err := r.db.Exec(`DELETE FROM notification_permission WHERE id = 1`)
		return err
	}
	return dbutil.WithTx(r.db, func(tx *sql.Tx) error {
		return writeState(tx, st, r.now())
	})
}

func readState(db *sql.DB) (State, error) {
	var s string
	err := db.QueryRow(`SELECT state FROM notification_permission WHERE id = 1`).Scan(&s)
	if errors.Is(err, sql.ErrNoRows) {
		return Default, nil
	}
	if err != nil {
		return Default, err
	}
	return ParseState(s), nil
}

func writeState(tx *sql.Tx, st State, at time.Time) error {
	_, err := tx.Exec(`
		INSERT INTO notification_permission (id, state, decided_at)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			state = excluded.state,
			decided_at = excluded.decided_at
	`, string(st), at.Unix())
	return err
}

// Verify Registry implements Platform at compile time.
var _ Platform = (*Registry)(nil)
