package notify

import (
    "context"
    "fmt"
    "math"
    "sort"
    "time"
)

const (
    TypeNewBooking      = "new_booking"
    TypeMeetingReminder = "meeting_reminder"
    TypeUpcomingMeeting = "upcoming_meeting"

    PriorityHigh   = "high"
    PriorityMedium = "medium"
    PriorityLow    = "low"
)

const (
    recentWindow    = 2 * time.Hour
    reminderWindow  = 15 * time.Minute
    upcomingHorizon = 24 * time.Hour
    // upcomingFloor keeps the low-priority bucket from duplicating the
    // reminder window edge exactly; anything at or under 15 minutes out
    // belongs to the reminder bucket.
    upcomingFloor = 15 * time.Minute

    recentLimit   = 20
    upcomingLimit = 50
    feedLimit     = 20
)

// Booking is the read model the deriver consumes: a booking row joined with
// its room name.
type Booking struct {
    ID        string
    Title     string
    RoomName  string
    Status    string
    StartTime time.Time
    EndTime   time.Time
    CreatedAt time.Time
}

// BookingSource exposes the three bounded window queries over confirmed and
// approved bookings.
type BookingSource interface {
    // RecentlyCreated returns bookings created at or after since, newest
    // created first, capped at limit.
    RecentlyCreated(ctx context.Context, since time.Time, limit int) ([]Booking, error)
    // StartingBetween returns bookings starting within [from, to],
    // ascending by start time.
    StartingBetween(ctx context.Context, from, to time.Time) ([]Booking, error)
    // StartingAfter returns bookings starting strictly after the given
    // time, ascending by start, capped at limit.
    StartingAfter(ctx context.Context, after time.Time, limit int) ([]Booking, error)
}

type Notification struct {
    ID           string    `json:"id"`
    Type         string    `json:"type"`
    Title        string    `json:"title"`
    RoomName     string    `json:"room_name"`
    StartTime    time.Time `json:"start_time"`
    EndTime      time.Time `json:"end_time"`
    Status       string    `json:"status"`
    Message      string    `json:"message"`
    Priority     string    `json:"priority"`
    CreatedAt    time.Time `json:"created_at,omitempty"`
    MinutesUntil int       `json:"minutes_until,omitempty"`
    HoursUntil   int       `json:"hours_until,omitempty"`
}

// Feed is the ranked notification list plus the pre-truncation total.
type Feed struct {
    Notifications []Notification `json:"data"`
    Total         int            `json:"total"`
    Timestamp     time.Time      `json:"timestamp"`
}

// Deriver recomputes the notification feed from booking state on every
// call. It holds no state and performs no writes.
type Deriver struct {
    source BookingSource
}

func NewDeriver(source BookingSource) *Deriver {
    return &Deriver{source: source}
}

// Derive classifies bookings around now into the three notification types
// and ranks them. A booking falling into several windows emits several
// notifications; this is intentional.
func (d *Deriver) Derive(ctx context.Context, now time.Time) (Feed, error) {
    recent, err := d.source.RecentlyCreated(ctx, now.Add(-recentWindow), recentLimit)
    if err != nil {
        return Feed{}, err
    }
    near, err := d.source.StartingBetween(ctx, now, now.Add(reminderWindow))
    if err != nil {
        return Feed{}, err
    }
    upcoming, err := d.source.StartingAfter(ctx, now, upcomingLimit)
    if err != nil {
        return Feed{}, err
    }

    list := Classify(recent, near, upcoming, now)
    Rank(list)

    total := len(list)
    if len(list) > feedLimit {
        list = list[:feedLimit]
    }
    return Feed{Notifications: list, Total: total, Timestamp: now}, nil
}

// Classify turns the three window query results into notifications.
func Classify(recent, near, upcoming []Booking, now time.Time) []Notification {
    notifications := make([]Notification, 0, len(recent)+len(near)+len(upcoming))

    for _, b := range recent {
        notifications = append(notifications, Notification{
            ID:        b.ID,
            Type:      TypeNewBooking,
            Title:     b.Title,
            RoomName:  b.RoomName,
            StartTime: b.StartTime,
            EndTime:   b.EndTime,
            Status:    b.Status,
            Message:   fmt.Sprintf("New booking: %s", b.Title),
            Priority:  PriorityMedium,
            CreatedAt: b.CreatedAt,
        })
    }

    for _, b := range near {
        until := b.StartTime.Sub(now)
        if until <= 0 || until > reminderWindow {
            continue
        }
        mins := int(math.Ceil(until.Minutes()))
        notifications = append(notifications, Notification{
            ID:           b.ID,
            Type:         TypeMeetingReminder,
            Title:        b.Title,
            RoomName:     b.RoomName,
            StartTime:    b.StartTime,
            EndTime:      b.EndTime,
            Status:       b.Status,
            Message:      fmt.Sprintf("Meeting starts in %d minutes", mins),
            Priority:     PriorityHigh,
            MinutesUntil: mins,
        })
    }

    for _, b := range upcoming {
        until := b.StartTime.Sub(now)
        if until <= upcomingFloor || until > upcomingHorizon {
            continue
        }
        hours := int(math.Ceil(until.Hours()))
        notifications = append(notifications, Notification{
            ID:         b.ID,
            Type:       TypeUpcomingMeeting,
            Title:      b.Title,
            RoomName:   b.RoomName,
            StartTime:  b.StartTime,
            EndTime:    b.EndTime,
            Status:     b.Status,
            Message:    fmt.Sprintf("Upcoming meeting: %s", b.Title),
            Priority:   PriorityLow,
            HoursUntil: hours,
        })
    }

    return notifications
}

// Rank orders notifications by priority descending, then start ascending.
// Unknown priorities sort last.
func Rank(notifications []Notification) {
    sort.SliceStable(notifications, func(i, j int) bool {
        pi, pj := priorityRank(notifications[i].Priority), priorityRank(notifications[j].Priority)
        if pi != pj {
            return pi > pj
        }
        return notifications[i].StartTime.Before(notifications[j].StartTime)
    })
}

func priorityRank(p string) int {
    switch p {
    case PriorityHigh:
        return 3
    case PriorityMedium:
        return 2
    case PriorityLow:
        return 1
    }
    return 0
}
