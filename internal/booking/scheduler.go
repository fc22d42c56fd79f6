package booking

import (
    "context"
    "strings"
    "time"

    "github.com/nattw/meetroom_backend/internal/models"
)

// Store captures the persistence interactions the scheduler needs. The gorm
// implementation lives in internal/database; tests substitute stubs.
type Store interface {
    RoomByID(ctx context.Context, id string) (models.Room, error)
    RoomByName(ctx context.Context, name string) (models.Room, error)
    BookingByID(ctx context.Context, id string) (models.Booking, error)
    // CreateBooking persists the booking and its attendees atomically,
    // re-checking the overlap rule inside the same transaction. Returns
    // ErrTimeConflict when the interval is taken.
    CreateBooking(ctx context.Context, b *models.Booking, attendees []models.BookingAttendee) error
    // UpdateBooking persists changed fields, re-checking the overlap rule
    // against the booking's new interval while excluding its own row.
    UpdateBooking(ctx context.Context, b *models.Booking) error
    DeleteBooking(ctx context.Context, id string) error
}

// Actor is the authenticated identity performing an operation, as read from
// the access token. Client-supplied identities are never accepted.
type Actor struct {
    UserID      string
    DisplayName string
    Role        string
}

func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdmin }

type AttendeeInput struct {
    Email string
    Name  string
}

type CreateInput struct {
    RoomID         string
    Title          string
    Description    string
    Start          time.Time
    End            time.Time
    AttendeesCount int
    Attendees      []AttendeeInput
}

// UpdateInput is a partial patch; nil fields are left untouched.
type UpdateInput struct {
    Title          *string
    Description    *string
    RoomName       *string
    Start          *time.Time
    End            *time.Time
    AttendeesCount *int
    Status         *string
}

func (in UpdateInput) empty() bool {
    return in.Title == nil && in.Description == nil && in.RoomName == nil &&
        in.Start == nil && in.End == nil && in.AttendeesCount == nil && in.Status == nil
}

// Scheduler validates booking requests against room state and the overlap
// rule before committing them.
type Scheduler struct {
    store Store
    now   func() time.Time
}

func NewScheduler(store Store, now func() time.Time) *Scheduler {
    if now == nil {
        now = time.Now
    }
    return &Scheduler{store: store, now: now}
}

// Overlaps reports whether two [start, end) intervals intersect. Touching
// boundaries do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
    return aStart.Before(bEnd) && aEnd.After(bStart)
}

// Create runs the validation sequence in order, failing fast on the first
// broken rule, then commits the booking with status confirmed.
func (s *Scheduler) Create(ctx context.Context, actor Actor, in CreateInput) (models.Booking, error) {
    vErr := &ValidationError{}
    if strings.TrimSpace(in.RoomID) == "" {
        vErr.Add("room", "room is required")
    }
    if strings.TrimSpace(in.Title) == "" {
        vErr.Add("title", "title is required")
    }
    if in.Start.IsZero() {
        vErr.Add("start_time", "start time is required")
    }
    if in.End.IsZero() {
        vErr.Add("end_time", "end time is required")
    }
    if vErr.HasErrors() {
        return models.Booking{}, vErr
    }

    if !in.Start.Before(in.End) {
        vErr.Add("time", "end time must be after start time")
        return models.Booking{}, vErr
    }
    if !in.Start.After(s.now()) {
        vErr.Add("time", "cannot book in the past")
        return models.Booking{}, vErr
    }

    room, err := s.store.RoomByID(ctx, in.RoomID)
    if err != nil {
        return models.Booking{}, err
    }
    if !room.Active {
        return models.Booking{}, ErrRoomUnavailable
    }

    if in.AttendeesCount < 0 {
        vErr.Add("attendees_count", "attendee count cannot be negative")
        return models.Booking{}, vErr
    }
    if in.AttendeesCount > room.Capacity {
        return models.Booking{}, ErrCapacityExceeded
    }

    count := in.AttendeesCount
    if count == 0 {
        count = 1
    }

    b := models.Booking{
        RoomID:         room.ID,
        UserID:         actor.UserID,
        Username:       actor.DisplayName,
        Title:          strings.TrimSpace(in.Title),
        Description:    in.Description,
        StartTime:      in.Start,
        EndTime:        in.End,
        AttendeesCount: count,
        Status:         models.BookingStatusConfirmed,
    }

    attendees := make([]models.BookingAttendee, 0, len(in.Attendees))
    for _, a := range in.Attendees {
        if strings.TrimSpace(a.Email) == "" {
            continue
        }
        attendees = append(attendees, models.BookingAttendee{Email: a.Email, Name: a.Name})
    }

    if err := s.store.CreateBooking(ctx, &b, attendees); err != nil {
        return models.Booking{}, err
    }
    return b, nil
}

// Update applies a partial patch to an existing booking. Only the owner or
// an admin may update; a missing or foreign booking reads as not found.
func (s *Scheduler) Update(ctx context.Context, actor Actor, id string, in UpdateInput) (models.Booking, error) {
    if in.empty() {
        vErr := &ValidationError{}
        vErr.Add("patch", "no fields to update")
        return models.Booking{}, vErr
    }

    b, err := s.store.BookingByID(ctx, id)
    if err != nil {
        return models.Booking{}, err
    }
    if b.UserID != actor.UserID && !actor.IsAdmin() {
        return models.Booking{}, ErrNotFound
    }

    vErr := &ValidationError{}
    if in.Title != nil {
        if strings.TrimSpace(*in.Title) == "" {
            vErr.Add("title", "title cannot be empty")
        } else {
            b.Title = strings.TrimSpace(*in.Title)
        }
    }
    if in.Description != nil {
        b.Description = *in.Description
    }
    if in.RoomName != nil {
        room, err := s.store.RoomByName(ctx, *in.RoomName)
        if err != nil {
            return models.Booking{}, err
        }
        b.RoomID = room.ID
    }
    if in.Start != nil {
        b.StartTime = *in.Start
    }
    if in.End != nil {
        b.EndTime = *in.End
    }
    if !b.StartTime.Before(b.EndTime) {
        vErr.Add("time", "end time must be after start time")
    }
    if in.AttendeesCount != nil {
        if *in.AttendeesCount <= 0 {
            vErr.Add("attendees_count", "attendee count must be positive")
        } else {
            b.AttendeesCount = *in.AttendeesCount
        }
    }
    if in.Status != nil {
        if !models.IsValidBookingStatus(*in.Status) {
            vErr.Add("status", "unknown status")
        } else {
            b.Status = *in.Status
        }
    }
    if vErr.HasErrors() {
        return models.Booking{}, vErr
    }

    if err := s.store.UpdateBooking(ctx, &b); err != nil {
        return models.Booking{}, err
    }
    return b, nil
}

// Delete removes a booking. Admins may delete unconditionally; the owner may
// delete only while the booking has not yet ended.
func (s *Scheduler) Delete(ctx context.Context, actor Actor, id string) error {
    b, err := s.store.BookingByID(ctx, id)
    if err != nil {
        return err
    }
    if actor.IsAdmin() {
        return s.store.DeleteBooking(ctx, id)
    }
    if b.UserID != actor.UserID {
        return ErrNotFound
    }
    if !b.EndTime.After(s.now()) {
        return ErrForbidden
    }
    return s.store.DeleteBooking(ctx, id)
}
