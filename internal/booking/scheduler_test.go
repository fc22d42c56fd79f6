package booking

import (
    "context"
    "errors"
    "testing"
    "time"

    "github.com/nattw/meetroom_backend/internal/models"
)

type storeStub struct {
    room       models.Room
    roomErr    error
    namedRoom  models.Room
    namedErr   error
    booking    models.Booking
    bookingErr error

    created          *models.Booking
    createdAttendees []models.BookingAttendee
    createErr        error

    updated   *models.Booking
    updateErr error

    deleted   []string
    deleteErr error
}

func (s *storeStub) RoomByID(ctx context.Context, id string) (models.Room, error) {
    if s.roomErr != nil {
        return models.Room{}, s.roomErr
    }
    return s.room, nil
}

func (s *storeStub) RoomByName(ctx context.Context, name string) (models.Room, error) {
    if s.namedErr != nil {
        return models.Room{}, s.namedErr
    }
    return s.namedRoom, nil
}

func (s *storeStub) BookingByID(ctx context.Context, id string) (models.Booking, error) {
    if s.bookingErr != nil {
        return models.Booking{}, s.bookingErr
    }
    return s.booking, nil
}

func (s *storeStub) CreateBooking(ctx context.Context, b *models.Booking, attendees []models.BookingAttendee) error {
    if s.createErr != nil {
        return s.createErr
    }
    s.created = b
    s.createdAttendees = attendees
    return nil
}

func (s *storeStub) UpdateBooking(ctx context.Context, b *models.Booking) error {
    if s.updateErr != nil {
        return s.updateErr
    }
    s.updated = b
    return nil
}

func (s *storeStub) DeleteBooking(ctx context.Context, id string) error {
    if s.deleteErr != nil {
        return s.deleteErr
    }
    s.deleted = append(s.deleted, id)
    return nil
}

func fixedNow() time.Time {
    return time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
}

func at(hour, min int) time.Time {
    return time.Date(2025, 6, 2, hour, min, 0, 0, time.UTC)
}

func activeRoom() models.Room {
    return models.Room{ID: "room-1", Name: "A101", Capacity: 10, Active: true}
}

func requester() Actor {
    return Actor{UserID: "user-1", DisplayName: "Nok Suwan", Role: models.RoleUser}
}

func TestSchedulerCreateRequiresFields(t *testing.T) {
    t.Parallel()

    svc := NewScheduler(&storeStub{room: activeRoom()}, fixedNow)
    _, err := svc.Create(context.Background(), requester(), CreateInput{})

    var vErr *ValidationError
    if !errors.As(err, &vErr) {
        t.Fatalf("expected ValidationError, got %v", err)
    }
    for _, field := range []string{"room", "title", "start_time", "end_time"} {
        if _, ok := vErr.Fields[field]; !ok {
            t.Errorf("expected field error for %q, got %v", field, vErr.Fields)
        }
    }
}

func TestSchedulerCreateRejectsInvertedInterval(t *testing.T) {
    t.Parallel()

    svc := NewScheduler(&storeStub{room: activeRoom()}, fixedNow)
    _, err := svc.Create(context.Background(), requester(), CreateInput{
        RoomID: "room-1", Title: "Standup", Start: at(10, 0), End: at(9, 0),
    })

    var vErr *ValidationError
    if !errors.As(err, &vErr) {
        t.Fatalf("expected ValidationError, got %v", err)
    }
    if _, ok := vErr.Fields["time"]; !ok {
        t.Fatalf("expected time field error, got %v", vErr.Fields)
    }
}

func TestSchedulerCreateRejectsRetroactiveStart(t *testing.T) {
    t.Parallel()

    svc := NewScheduler(&storeStub{room: activeRoom()}, fixedNow)
    _, err := svc.Create(context.Background(), requester(), CreateInput{
        RoomID: "room-1", Title: "Standup", Start: at(7, 0), End: at(9, 0),
    })

    var vErr *ValidationError
    if !errors.As(err, &vErr) {
        t.Fatalf("expected ValidationError, got %v", err)
    }
}

func TestSchedulerCreateRoomLookup(t *testing.T) {
    t.Parallel()

    svc := NewScheduler(&storeStub{roomErr: ErrRoomNotFound}, fixedNow)
    _, err := svc.Create(context.Background(), requester(), CreateInput{
        RoomID: "missing", Title: "Standup", Start: at(9, 0), End: at(10, 0),
    })
    if !errors.Is(err, ErrRoomNotFound) {
        t.Fatalf("expected ErrRoomNotFound, got %v", err)
    }

    inactive := activeRoom()
    inactive.Active = false
    svc = NewScheduler(&storeStub{room: inactive}, fixedNow)
    _, err = svc.Create(context.Background(), requester(), CreateInput{
        RoomID: "room-1", Title: "Standup", Start: at(9, 0), End: at(10, 0),
    })
    if !errors.Is(err, ErrRoomUnavailable) {
        t.Fatalf("expected ErrRoomUnavailable, got %v", err)
    }
}

func TestSchedulerCreateCapacityExceeded(t *testing.T) {
    t.Parallel()

    svc := NewScheduler(&storeStub{room: activeRoom()}, fixedNow)
    _, err := svc.Create(context.Background(), requester(), CreateInput{
        RoomID: "room-1", Title: "Townhall", Start: at(9, 0), End: at(10, 0),
        AttendeesCount: 15,
    })
    if !errors.Is(err, ErrCapacityExceeded) {
        t.Fatalf("expected ErrCapacityExceeded, got %v", err)
    }
}

func TestSchedulerCreateConflictPropagates(t *testing.T) {
    t.Parallel()

    svc := NewScheduler(&storeStub{room: activeRoom(), createErr: ErrTimeConflict}, fixedNow)
    _, err := svc.Create(context.Background(), requester(), CreateInput{
        RoomID: "room-1", Title: "Standup", Start: at(9, 30), End: at(10, 30),
    })
    if !errors.Is(err, ErrTimeConflict) {
        t.Fatalf("expected ErrTimeConflict, got %v", err)
    }
}

func TestSchedulerCreateSuccess(t *testing.T) {
    t.Parallel()

    store := &storeStub{room: activeRoom()}
    svc := NewScheduler(store, fixedNow)

    got, err := svc.Create(context.Background(), requester(), CreateInput{
        RoomID: "room-1", Title: "  Standup  ", Start: at(9, 0), End: at(10, 0),
        AttendeesCount: 5,
        Attendees: []AttendeeInput{
            {Email: "a@example.com", Name: "A"},
            {Email: ""},
            {Email: "b@example.com"},
        },
    })
    if err != nil {
        t.Fatalf("unexpected error: %v", err)
    }
    if got.Status != models.BookingStatusConfirmed {
        t.Errorf("expected confirmed status, got %q", got.Status)
    }
    if got.Title != "Standup" {
        t.Errorf("expected trimmed title, got %q", got.Title)
    }
    if got.Username != "Nok Suwan" {
        t.Errorf("expected requester name snapshot, got %q", got.Username)
    }
    if store.created == nil {
        t.Fatal("expected booking to reach the store")
    }
    if len(store.createdAttendees) != 2 {
        t.Errorf("expected blank attendee e-mails skipped, got %d rows", len(store.createdAttendees))
    }
}

func TestSchedulerCreateDefaultsAttendeeCount(t *testing.T) {
    t.Parallel()

    store := &storeStub{room: activeRoom()}
    svc := NewScheduler(store, fixedNow)

    got, err := svc.Create(context.Background(), requester(), CreateInput{
        RoomID: "room-1", Title: "1:1", Start: at(9, 0), End: at(9, 30),
    })
    if err != nil {
        t.Fatalf("unexpected error: %v", err)
    }
    if got.AttendeesCount != 1 {
        t.Errorf("expected default attendee count 1, got %d", got.AttendeesCount)
    }
}

func TestOverlapsBoundaryIsNotConflict(t *testing.T) {
    t.Parallel()

    if Overlaps(at(9, 0), at(10, 0), at(10, 0), at(10, 30)) {
        t.Error("touching boundary must not overlap")
    }
    if !Overlaps(at(9, 0), at(10, 0), at(9, 30), at(10, 30)) {
        t.Error("expected overlap for intersecting intervals")
    }
    if !Overlaps(at(9, 0), at(10, 0), at(9, 15), at(9, 45)) {
        t.Error("expected overlap for contained interval")
    }
}

func TestSchedulerUpdateEmptyPatch(t *testing.T) {
    t.Parallel()

    svc := NewScheduler(&storeStub{}, fixedNow)
    _, err := svc.Update(context.Background(), requester(), "b-1", UpdateInput{})

    var vErr *ValidationError
    if !errors.As(err, &vErr) {
        t.Fatalf("expected ValidationError, got %v", err)
    }
}

func TestSchedulerUpdateForeignBookingReadsAsNotFound(t *testing.T) {
    t.Parallel()

    store := &storeStub{booking: models.Booking{ID: "b-1", UserID: "someone-else", StartTime: at(9, 0), EndTime: at(10, 0)}}
    svc := NewScheduler(store, fixedNow)

    title := "New title"
    _, err := svc.Update(context.Background(), requester(), "b-1", UpdateInput{Title: &title})
    if !errors.Is(err, ErrNotFound) {
        t.Fatalf("expected ErrNotFound, got %v", err)
    }
}

func TestSchedulerUpdateMovesRoomByName(t *testing.T) {
    t.Parallel()

    store := &storeStub{
        booking:   models.Booking{ID: "b-1", UserID: "user-1", RoomID: "room-1", StartTime: at(9, 0), EndTime: at(10, 0)},
        namedRoom: models.Room{ID: "room-2", Name: "B202", Capacity: 4, Active: true},
    }
    svc := NewScheduler(store, fixedNow)

    name := "B202"
    got, err := svc.Update(context.Background(), requester(), "b-1", UpdateInput{RoomName: &name})
    if err != nil {
        t.Fatalf("unexpected error: %v", err)
    }
    if got.RoomID != "room-2" {
        t.Errorf("expected room moved to room-2, got %q", got.RoomID)
    }
}

func TestSchedulerUpdateRejectsUnknownStatus(t *testing.T) {
    t.Parallel()

    store := &storeStub{booking: models.Booking{ID: "b-1", UserID: "user-1", StartTime: at(9, 0), EndTime: at(10, 0)}}
    svc := NewScheduler(store, fixedNow)

    status := "archived"
    _, err := svc.Update(context.Background(), requester(), "b-1", UpdateInput{Status: &status})

    var vErr *ValidationError
    if !errors.As(err, &vErr) {
        t.Fatalf("expected ValidationError, got %v", err)
    }
}

func TestSchedulerUpdateAdminMayPatchAnyBooking(t *testing.T) {
    t.Parallel()

    store := &storeStub{booking: models.Booking{ID: "b-1", UserID: "someone-else", StartTime: at(9, 0), EndTime: at(10, 0)}}
    svc := NewScheduler(store, fixedNow)

    admin := Actor{UserID: "admin-1", DisplayName: "Admin", Role: models.RoleAdmin}
    title := "Moved by admin"
    got, err := svc.Update(context.Background(), admin, "b-1", UpdateInput{Title: &title})
    if err != nil {
        t.Fatalf("unexpected error: %v", err)
    }
    if got.Title != "Moved by admin" {
        t.Errorf("title not applied: %q", got.Title)
    }
    if got.UserID != "someone-else" {
        t.Errorf("owner identity must not change on admin patch")
    }
}

func TestSchedulerDeleteRules(t *testing.T) {
    t.Parallel()

    future := models.Booking{ID: "b-1", UserID: "user-1", StartTime: at(9, 0), EndTime: at(10, 0)}
    past := models.Booking{ID: "b-2", UserID: "user-1", StartTime: at(6, 0), EndTime: at(7, 0)}

    // Owner may delete while the booking has not ended.
    store := &storeStub{booking: future}
    svc := NewScheduler(store, fixedNow)
    if err := svc.Delete(context.Background(), requester(), "b-1"); err != nil {
        t.Fatalf("owner delete of future booking: %v", err)
    }
    if len(store.deleted) != 1 {
        t.Fatalf("expected delete to reach store")
    }

    // Owner may not delete a past booking.
    store = &storeStub{booking: past}
    svc = NewScheduler(store, fixedNow)
    if err := svc.Delete(context.Background(), requester(), "b-2"); !errors.Is(err, ErrForbidden) {
        t.Fatalf("expected ErrForbidden, got %v", err)
    }

    // Admin deletes unconditionally.
    store = &storeStub{booking: past}
    svc = NewScheduler(store, fixedNow)
    admin := Actor{UserID: "admin-1", Role: models.RoleAdmin}
    if err := svc.Delete(context.Background(), admin, "b-2"); err != nil {
        t.Fatalf("admin delete: %v", err)
    }

    // A foreign booking reads as not found.
    store = &storeStub{booking: models.Booking{ID: "b-3", UserID: "someone-else", EndTime: at(12, 0)}}
    svc = NewScheduler(store, fixedNow)
    if err := svc.Delete(context.Background(), requester(), "b-3"); !errors.Is(err, ErrNotFound) {
        t.Fatalf("expected ErrNotFound, got %v", err)
    }
}
