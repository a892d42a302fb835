package logbook

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nerrad567/babylog/internal/validation"
)

// Observer is told about every committed change. Observers run synchronously
// after the write and cannot fail the request.
type Observer interface {
	Observe(ctx context.Context, event Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, event Event)

// Observe calls f.
func (f ObserverFunc) Observe(ctx context.Context, event Event) { f(ctx, event) }

// Service applies validation and ownership checks around a Store.
// Every method takes the authenticated caller's user ID.
type Service[T, I any] struct {
	kind      string
	store     Store[T, I]
	observers []Observer
	now       func() time.Time
}

// NewService wraps store for the log type named kind.
func NewService[T, I any](kind string, store Store[T, I], observers ...Observer) *Service[T, I] {
	return &Service[T, I]{
		kind:      kind,
		store:     store,
		observers: observers,
		now:       time.Now,
	}
}

// Kind returns the log type name, e.g. "bottle".
func (s *Service[T, I]) Kind() string {
	return s.kind
}

// List returns one page of the caller's logs. A zero Limit means
// DefaultLimit and larger limits are capped at MaxLimit.
func (s *Service[T, I]) List(ctx context.Context, callerID string, opts ListOptions) (*ListResult[T], error) {
	opts, err := normalizeListOptions(opts)
	if err != nil {
		return nil, err
	}

	items, total, err := s.store.List(ctx, callerID, opts)
	if err != nil {
		return nil, err
	}
	return &ListResult[T]{Items: items, Total: total, Limit: opts.Limit, Offset: opts.Offset}, nil
}

// Get returns the log with id if the caller owns it.
func (s *Service[T, I]) Get(ctx context.Context, callerID, id string) (*T, error) {
	if err := s.authorize(ctx, callerID, id); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, id)
}

// Create validates in and stores it as a new log owned by the caller.
func (s *Service[T, I]) Create(ctx context.Context, callerID string, in I) (*T, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	rec, err := s.store.Create(ctx, callerID, in)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, ActionCreated, callerID, recordID(rec), rec)
	return rec, nil
}

// Update validates in and replaces the mutable fields of the caller's log.
func (s *Service[T, I]) Update(ctx context.Context, callerID, id string, in I) (*T, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, callerID, id); err != nil {
		return nil, err
	}

	rec, err := s.store.Update(ctx, id, callerID, in)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, ActionUpdated, callerID, id, rec)
	return rec, nil
}

// Delete removes the caller's log with id.
func (s *Service[T, I]) Delete(ctx context.Context, callerID, id string) error {
	if err := s.authorize(ctx, callerID, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id, callerID); err != nil {
		return err
	}
	s.notify(ctx, ActionDeleted, callerID, id, nil)
	return nil
}

// authorize checks existence before ownership, so a missing log is
// ErrNotFound for every caller and a foreign log is ErrForbidden.
func (s *Service[T, I]) authorize(ctx context.Context, callerID, id string) error {
	owner, err := s.store.OwnerOf(ctx, id)
	if err != nil {
		return err
	}
	if owner != callerID {
		return fmt.Errorf("%w: %s %s", ErrForbidden, s.kind, id)
	}
	return nil
}

func (s *Service[T, I]) notify(ctx context.Context, action Action, ownerID, id string, rec *T) {
	if len(s.observers) == 0 {
		return
	}
	event := Event{
		Kind:     s.kind,
		Action:   action,
		OwnerID:  ownerID,
		RecordID: id,
		At:       s.now().UTC(),
	}
	if rec != nil {
		event.Record = rec
	}
	for _, o := range s.observers {
		o.Observe(ctx, event)
	}
}

func normalizeListOptions(opts ListOptions) (ListOptions, error) {
	if opts.Limit < 0 {
		return opts, validation.Invalid("limit", "must not be negative")
	}
	if opts.Offset < 0 {
		return opts, validation.Invalid("offset", "must not be negative")
	}
	if opts.Limit == 0 {
		opts.Limit = DefaultLimit
	}
	if opts.Limit > MaxLimit {
		opts.Limit = MaxLimit
	}
	opts.Search = strings.TrimSpace(opts.Search)
	return opts, nil
}

// identified is implemented by every log type through the embedded Entry.
type identified interface {
	LogID() string
}

// LogID returns the log's ID.
func (e *Entry) LogID() string {
	return e.ID
}

func recordID(rec any) string {
	if r, ok := rec.(identified); ok {
		return r.LogID()
	}
	return ""
}
