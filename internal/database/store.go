package database

import (
    "context"
    "database/sql"
    "errors"
    "time"

    "gorm.io/gorm"

    "github.com/nattw/meetroom_backend/internal/booking"
    "github.com/nattw/meetroom_backend/internal/models"
    "github.com/nattw/meetroom_backend/internal/notify"
)

// Store is the gorm-backed persistence layer behind the scheduler and the
// notification deriver.
type Store struct {
    db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
    return &Store{db: db}
}

func (s *Store) RoomByID(ctx context.Context, id string) (models.Room, error) {
    var room models.Room
    if err := s.db.WithContext(ctx).Where("id = ?", id).First(&room).Error; err != nil {
        if errors.Is(err, gorm.ErrRecordNotFound) {
            return models.Room{}, booking.ErrRoomNotFound
        }
        return models.Room{}, err
    }
    return room, nil
}

func (s *Store) RoomByName(ctx context.Context, name string) (models.Room, error) {
    var room models.Room
    if err := s.db.WithContext(ctx).Where("name = ?", name).First(&room).Error; err != nil {
        if errors.Is(err, gorm.ErrRecordNotFound) {
            return models.Room{}, booking.ErrRoomNotFound
        }
        return models.Room{}, err
    }
    return room, nil
}

func (s *Store) BookingByID(ctx context.Context, id string) (models.Booking, error) {
    var b models.Booking
    if err := s.db.WithContext(ctx).Where("id = ?", id).First(&b).Error; err != nil {
        if errors.Is(err, gorm.ErrRecordNotFound) {
            return models.Booking{}, booking.ErrNotFound
        }
        return models.Booking{}, err
    }
    return b, nil
}

// CreateBooking re-checks the half-open overlap rule and inserts the booking
// together with its attendee rows inside one serializable transaction, so
// two concurrent requests for overlapping intervals on the same room cannot
// both commit.
func (s *Store) CreateBooking(ctx context.Context, b *models.Booking, attendees []models.BookingAttendee) error {
    return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
        var count int64
        if err := tx.Model(&models.Booking{}).
            Where("room_id = ? AND status IN ? AND start_time < ? AND end_time > ?",
                b.RoomID, models.ActiveBookingStatuses, b.EndTime, b.StartTime).
            Count(&count).Error; err != nil {
            return err
        }
        if count > 0 {
            return booking.ErrTimeConflict
        }
        if err := tx.Create(b).Error; err != nil {
            return err
        }
        if len(attendees) > 0 {
            for i := range attendees {
                attendees[i].BookingID = b.ID
            }
            if err := tx.Create(&attendees).Error; err != nil {
                return err
            }
        }
        return nil
    }, &sql.TxOptions{Isolation: sql.LevelSerializable})
}

// UpdateBooking saves the booking after re-running the overlap check against
// its new interval, excluding its own row. Bookings moving to a non-active
// status free the slot and skip the check.
func (s *Store) UpdateBooking(ctx context.Context, b *models.Booking) error {
    return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
        active := false
        for _, st := range models.ActiveBookingStatuses {
            if b.Status == st {
                active = true
                break
            }
        }
        if active {
            var count int64
            if err := tx.Model(&models.Booking{}).
                Where("room_id = ? AND id <> ? AND status IN ? AND start_time < ? AND end_time > ?",
                    b.RoomID, b.ID, models.ActiveBookingStatuses, b.EndTime, b.StartTime).
                Count(&count).Error; err != nil {
                return err
            }
            if count > 0 {
                return booking.ErrTimeConflict
            }
        }
        return tx.Save(b).Error
    }, &sql.TxOptions{Isolation: sql.LevelSerializable})
}

func (s *Store) DeleteBooking(ctx context.Context, id string) error {
    return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
        if err := tx.Where("booking_id = ?", id).Delete(&models.BookingAttendee{}).Error; err != nil {
            return err
        }
        res := tx.Where("id = ?", id).Delete(&models.Booking{})
        if res.Error != nil {
            return res.Error
        }
        if res.RowsAffected == 0 {
            return booking.ErrNotFound
        }
        return nil
    })
}

// RoomHasFutureBookings backs the deletion guards on rooms and users.
func (s *Store) RoomHasFutureBookings(ctx context.Context, roomID string, now time.Time) (bool, error) {
    var count int64
    err := s.db.WithContext(ctx).Model(&models.Booking{}).
        Where("room_id = ? AND end_time > ?", roomID, now).
        Count(&count).Error
    return count > 0, err
}

func (s *Store) UserHasFutureBookings(ctx context.Context, userID string, now time.Time) (bool, error) {
    var count int64
    err := s.db.WithContext(ctx).Model(&models.Booking{}).
        Where("user_id = ? AND end_time > ?", userID, now).
        Count(&count).Error
    return count > 0, err
}

const notifySelect = "b.id, b.title, b.start_time, b.end_time, b.status, b.created_at, r.name AS room_name"

func (s *Store) notifyQuery(ctx context.Context) *gorm.DB {
    return s.db.WithContext(ctx).
        Table("bookings AS b").
        Select(notifySelect).
        Joins("JOIN rooms r ON r.id = b.room_id").
        Where("b.status IN ?", models.ActiveBookingStatuses)
}

func (s *Store) RecentlyCreated(ctx context.Context, since time.Time, limit int) ([]notify.Booking, error) {
    var rows []notify.Booking
    err := s.notifyQuery(ctx).
        Where("b.created_at >= ?", since).
        Order("b.created_at DESC").
        Limit(limit).
        Scan(&rows).Error
    return rows, err
}

func (s *Store) StartingBetween(ctx context.Context, from, to time.Time) ([]notify.Booking, error) {
    var rows []notify.Booking
    err := s.notifyQuery(ctx).
        Where("b.start_time BETWEEN ? AND ?", from, to).
        Order("b.start_time ASC").
        Scan(&rows).Error
    return rows, err
}

func (s *Store) StartingAfter(ctx context.Context, after time.Time, limit int) ([]notify.Booking, error) {
    var rows []notify.Booking
    err := s.notifyQuery(ctx).
        Where("b.start_time > ?", after).
        Order("b.start_time ASC").
        Limit(limit).
        Scan(&rows).Error
    return rows, err
}
