package store

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/evently/evently/internal/domain"
	"github.com/spf13/afero"
)

// EventStore owns the event collection. See UserStore for the locking and
// persistence contract; the two stores deliberately mirror each other.
type EventStore struct {
	fs   afero.Fs
	path string

	mu     sync.Mutex
	events []domain.Event
	nextID int64
}

// var _ ensures EventStore satisfies the repository contract at compile time.
var _ domain.EventRepository = (*EventStore)(nil)

// NewEventStore loads the event collection from path and resumes id
// assignment at max(existing ids)+1.
func NewEventStore(fs afero.Fs, path string) (*EventStore, error) {
	events, err := loadCollection[domain.Event](fs, path)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}

	nextID := int64(1)
	for i := range events {
		// IsUpcoming is derived; never trust a value read from disk.
		events[i].IsUpcoming = false
		if events[i].ID >= nextID {
			nextID = events[i].ID + 1
		}
	}

	return &EventStore{fs: fs, path: path, events: events, nextID: nextID}, nil
}

// Create assigns the next id, stamps timestamps, zeroes the registration
// state and persists the collection.
func (s *EventStore) Create(ctx context.Context, event domain.Event) (*domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	event.ID = s.nextID
	event.Registrations = 0
	event.RegisteredUsers = []int64{}
	event.CreatedAt = now
	event.UpdatedAt = now
	event.IsUpcoming = false
	s.nextID++
	s.events = append(s.events, event)

	if err := s.persistLocked(); err != nil {
		return nil, err
	}
	return s.annotate(&event, now), nil
}

// FindByID returns the event with the given id, or domain.ErrNotFound.
func (s *EventStore) FindByID(ctx context.Context, id int64) (*domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.findLocked(id)
	if e == nil {
		return nil, domain.ErrNotFound
	}
	return s.annotate(e, time.Now().UTC()), nil
}

// FindAll returns every event sorted ascending by start time, each annotated
// with the derived IsUpcoming flag.
func (s *EventStore) FindAll(ctx context.Context) ([]domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedLocked(), nil
}

// FindByCategory returns events whose category matches exactly
// (case-insensitive), in ascending start order.
func (s *EventStore) FindByCategory(ctx context.Context, category string) ([]domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Event
	for _, e := range s.sortedLocked() {
		if strings.EqualFold(e.Category, category) {
			out = append(out, e)
		}
	}
	return out, nil
}

// Search returns events where the term appears as a case-insensitive
// substring of the title, description, location or category.
func (s *EventStore) Search(ctx context.Context, term string) ([]domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	term = strings.ToLower(strings.TrimSpace(term))
	var out []domain.Event
	for _, e := range s.sortedLocked() {
		haystack := strings.ToLower(e.Title + " " + e.Description + " " + e.Location + " " + e.Category)
		if strings.Contains(haystack, term) {
			out = append(out, e)
		}
	}
	return out, nil
}

// Update merges the non-nil fields into the event and refreshes UpdatedAt.
func (s *EventStore) Update(ctx context.Context, id int64, upd domain.EventUpdate) (*domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.findLocked(id)
	if e == nil {
		return nil, domain.ErrNotFound
	}

	if upd.Title != nil {
		e.Title = *upd.Title
	}
	if upd.Category != nil {
		e.Category = *upd.Category
	}
	if upd.Date != nil {
		e.Date = *upd.Date
	}
	if upd.Time != nil {
		e.Time = *upd.Time
	}
	if upd.Location != nil {
		e.Location = *upd.Location
	}
	if upd.Description != nil {
		e.Description = *upd.Description
	}
	if upd.Capacity != nil {
		e.Capacity = *upd.Capacity
	}
	if upd.Price != nil {
		e.Price = *upd.Price
	}
	e.UpdatedAt = time.Now().UTC()

	if err := s.persistLocked(); err != nil {
		return nil, err
	}
	return s.annotate(e, time.Now().UTC()), nil
}

// Delete removes the event from the collection.
func (s *EventStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.events, func(e domain.Event) bool { return e.ID == id })
	if idx < 0 {
		return domain.ErrNotFound
	}
	s.events = slices.Delete(s.events, idx, idx+1)
	return s.persistLocked()
}

// RegisterUser adds the user to the event's attendee list and increments the
// registration counter in the same step, then persists. The counter and the
// list never move independently.
func (s *EventStore) RegisterUser(ctx context.Context, eventID, userID int64) (*domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.findLocked(eventID)
	if e == nil {
		return nil, domain.ErrNotFound
	}
	if e.IsFull() {
		return nil, domain.ErrEventFull
	}
	if e.HasRegisteredUser(userID) {
		return nil, domain.ErrAlreadyRegistered
	}

	e.RegisteredUsers = append(e.RegisteredUsers, userID)
	e.Registrations++
	e.UpdatedAt = time.Now().UTC()

	if err := s.persistLocked(); err != nil {
		return nil, err
	}
	return s.annotate(e, time.Now().UTC()), nil
}

// UnregisterUser is the inverse of RegisterUser. Cancelling a registration
// that does not exist is a conflict, and the counter is clamped at zero.
func (s *EventStore) UnregisterUser(ctx context.Context, eventID, userID int64) (*domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.findLocked(eventID)
	if e == nil {
		return nil, domain.ErrNotFound
	}
	idx := slices.Index(e.RegisteredUsers, userID)
	if idx < 0 {
		return nil, domain.ErrNotRegistered
	}

	e.RegisteredUsers = slices.Delete(e.RegisteredUsers, idx, idx+1)
	if e.Registrations > 0 {
		e.Registrations--
	}
	e.UpdatedAt = time.Now().UTC()

	if err := s.persistLocked(); err != nil {
		return nil, err
	}
	return s.annotate(e, time.Now().UTC()), nil
}

// GetUpcomingEvents returns up to limit events that start after now, soonest
// first. A non-positive limit means no limit.
func (s *EventStore) GetUpcomingEvents(ctx context.Context, limit int) ([]domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Event
	for _, e := range s.sortedLocked() {
		if !e.IsUpcoming {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// GetPopularEvents returns up to limit events sorted by registration count
// descending. A non-positive limit means no limit.
func (s *EventStore) GetPopularEvents(ctx context.Context, limit int) ([]domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.sortedLocked()
	slices.SortStableFunc(out, func(a, b domain.Event) int {
		return b.Registrations - a.Registrations
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// GetEventsByOrganizer returns the organizer's events in ascending start order.
func (s *EventStore) GetEventsByOrganizer(ctx context.Context, organizerID int64) ([]domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Event
	for _, e := range s.sortedLocked() {
		if e.OrganizerID == organizerID {
			out = append(out, e)
		}
	}
	return out, nil
}

// GetEventStats aggregates totals and a category histogram over the whole
// collection.
func (s *EventStore) GetEventStats(ctx context.Context) (*domain.EventStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	stats := &domain.EventStats{Categories: make(map[string]int)}
	for i := range s.events {
		e := &s.events[i]
		stats.TotalEvents++
		stats.TotalRegistrations += e.Registrations
		if e.Upcoming(now) {
			stats.UpcomingEvents++
		}
		if e.Category != "" {
			stats.Categories[e.Category]++
		}
	}
	return stats, nil
}

func (s *EventStore) findLocked(id int64) *domain.Event {
	for i := range s.events {
		if s.events[i].ID == id {
			return &s.events[i]
		}
	}
	return nil
}

// sortedLocked returns annotated copies of all events in ascending start order.
func (s *EventStore) sortedLocked() []domain.Event {
	now := time.Now().UTC()
	out := make([]domain.Event, len(s.events))
	for i := range s.events {
		out[i] = *s.annotate(&s.events[i], now)
	}
	slices.SortStableFunc(out, func(a, b domain.Event) int {
		return a.StartsAt().Compare(b.StartsAt())
	})
	return out
}

// annotate returns a copy with the derived IsUpcoming flag set for the given
// instant. The stored record is never annotated so the flag cannot leak into
// the backing file.
func (s *EventStore) annotate(e *domain.Event, now time.Time) *domain.Event {
	out := *e
	out.RegisteredUsers = slices.Clone(e.RegisteredUsers)
	out.IsUpcoming = out.Upcoming(now)
	return &out
}

func (s *EventStore) persistLocked() error {
	// Strip the derived flag before writing; annotate works on copies so the
	// stored slice already holds IsUpcoming=false.
	return saveCollection(s.fs, s.path, s.events)
}
