package notify

import (
    "context"
    "fmt"
    "reflect"
    "testing"
    "time"
)

type sourceStub struct {
    recent   []Booking
    near     []Booking
    upcoming []Booking
    err      error
}

func (s *sourceStub) RecentlyCreated(ctx context.Context, since time.Time, limit int) ([]Booking, error) {
    if s.err != nil {
        return nil, s.err
    }
    out := make([]Booking, 0, len(s.recent))
    for _, b := range s.recent {
        if !b.CreatedAt.Before(since) {
            out = append(out, b)
        }
    }
    if len(out) > limit {
        out = out[:limit]
    }
    return out, nil
}

func (s *sourceStub) StartingBetween(ctx context.Context, from, to time.Time) ([]Booking, error) {
    if s.err != nil {
        return nil, s.err
    }
    out := make([]Booking, 0, len(s.near))
    for _, b := range s.near {
        if !b.StartTime.Before(from) && !b.StartTime.After(to) {
            out = append(out, b)
        }
    }
    return out, nil
}

func (s *sourceStub) StartingAfter(ctx context.Context, after time.Time, limit int) ([]Booking, error) {
    if s.err != nil {
        return nil, s.err
    }
    out := make([]Booking, 0, len(s.upcoming))
    for _, b := range s.upcoming {
        if b.StartTime.After(after) {
            out = append(out, b)
        }
    }
    if len(out) > limit {
        out = out[:limit]
    }
    return out, nil
}

var baseTime = time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

func confirmed(id string, start, created time.Time) Booking {
    return Booking{
        ID:        id,
        Title:     "Meeting " + id,
        RoomName:  "A101",
        Status:    "confirmed",
        StartTime: start,
        EndTime:   start.Add(time.Hour),
        CreatedAt: created,
    }
}

func TestDeriveClassifiesWindows(t *testing.T) {
    t.Parallel()

    src := &sourceStub{
        recent:   []Booking{confirmed("r1", baseTime.Add(5*time.Hour), baseTime.Add(-time.Hour))},
        near:     []Booking{confirmed("n1", baseTime.Add(10*time.Minute), baseTime.Add(-3*time.Hour))},
        upcoming: []Booking{confirmed("u1", baseTime.Add(6*time.Hour), baseTime.Add(-3*time.Hour))},
    }
    feed, err := NewDeriver(src).Derive(context.Background(), baseTime)
    if err != nil {
        t.Fatalf("unexpected error: %v", err)
    }

    types := map[string]string{}
    for _, n := range feed.Notifications {
        types[n.ID+"/"+n.Type] = n.Priority
    }
    if types["r1/"+TypeNewBooking] != PriorityMedium {
        t.Errorf("expected r1 as medium new_booking, got %v", types)
    }
    if types["n1/"+TypeMeetingReminder] != PriorityHigh {
        t.Errorf("expected n1 as high meeting_reminder, got %v", types)
    }
    if types["u1/"+TypeUpcomingMeeting] != PriorityLow {
        t.Errorf("expected u1 as low upcoming_meeting, got %v", types)
    }
}

func TestDeriveRecentWindowAges(t *testing.T) {
    t.Parallel()

    created := baseTime
    booking := confirmed("b1", baseTime.Add(48*time.Hour), created)
    src := &sourceStub{recent: []Booking{booking}}
    deriver := NewDeriver(src)

    // One hour after creation the booking is a new_booking notification.
    feed, err := deriver.Derive(context.Background(), baseTime.Add(time.Hour))
    if err != nil {
        t.Fatalf("unexpected error: %v", err)
    }
    if len(feed.Notifications) != 1 || feed.Notifications[0].Type != TypeNewBooking {
        t.Fatalf("expected a single new_booking, got %+v", feed.Notifications)
    }

    // Three hours after creation it has aged out of the 2h window, and its
    // own start (47h away) is beyond every other window.
    feed, err = deriver.Derive(context.Background(), baseTime.Add(3*time.Hour))
    if err != nil {
        t.Fatalf("unexpected error: %v", err)
    }
    if len(feed.Notifications) != 0 {
        t.Fatalf("expected empty feed, got %+v", feed.Notifications)
    }
}

func TestClassifyReminderCountdown(t *testing.T) {
    t.Parallel()

    near := []Booking{confirmed("n1", baseTime.Add(9*time.Minute+30*time.Second), baseTime)}
    got := Classify(nil, near, nil, baseTime)
    if len(got) != 1 {
        t.Fatalf("expected one notification, got %d", len(got))
    }
    if got[0].MinutesUntil != 10 {
        t.Errorf("expected ceil to 10 minutes, got %d", got[0].MinutesUntil)
    }
    if got[0].Message != "Meeting starts in 10 minutes" {
        t.Errorf("unexpected message %q", got[0].Message)
    }
}

func TestClassifyWindowEdges(t *testing.T) {
    t.Parallel()

    exactly15m := confirmed("e15", baseTime.Add(15*time.Minute), baseTime)
    exactly24h := confirmed("e24", baseTime.Add(24*time.Hour), baseTime)
    past := confirmed("past", baseTime.Add(-time.Minute), baseTime)
    beyond := confirmed("far", baseTime.Add(25*time.Hour), baseTime)

    got := Classify(nil, []Booking{exactly15m, past}, []Booking{exactly15m, exactly24h, beyond}, baseTime)

    seen := map[string]bool{}
    for _, n := range got {
        seen[n.ID+"/"+n.Type] = true
    }
    if !seen["e15/"+TypeMeetingReminder] {
        t.Error("a booking exactly 15 minutes out belongs to the reminder bucket")
    }
    if seen["e15/"+TypeUpcomingMeeting] {
        t.Error("a booking exactly 15 minutes out must not also be upcoming")
    }
    if !seen["e24/"+TypeUpcomingMeeting] {
        t.Error("a booking exactly 24 hours out is still upcoming")
    }
    if seen["past/"+TypeMeetingReminder] {
        t.Error("a started meeting must not emit a reminder")
    }
    if seen["far/"+TypeUpcomingMeeting] {
        t.Error("a booking beyond 24 hours is not upcoming")
    }
}

func TestRankOrdersByPriorityThenStart(t *testing.T) {
    t.Parallel()

    list := []Notification{
        {ID: "low-early", Priority: PriorityLow, StartTime: baseTime.Add(time.Hour)},
        {ID: "high-late", Priority: PriorityHigh, StartTime: baseTime.Add(10 * time.Minute)},
        {ID: "odd", Priority: "urgent", StartTime: baseTime},
        {ID: "medium", Priority: PriorityMedium, StartTime: baseTime.Add(2 * time.Hour)},
        {ID: "high-early", Priority: PriorityHigh, StartTime: baseTime.Add(5 * time.Minute)},
    }
    Rank(list)

    order := make([]string, len(list))
    for i, n := range list {
        order[i] = n.ID
    }
    want := []string{"high-early", "high-late", "medium", "low-early", "odd"}
    if !reflect.DeepEqual(order, want) {
        t.Fatalf("wrong order: got %v want %v", order, want)
    }

    for i := 1; i < len(list); i++ {
        if priorityRank(list[i-1].Priority) < priorityRank(list[i].Priority) {
            t.Fatal("priority must be non-increasing")
        }
    }
}

func TestDeriveIsIdempotent(t *testing.T) {
    t.Parallel()

    src := &sourceStub{
        recent:   []Booking{confirmed("r1", baseTime.Add(3*time.Hour), baseTime.Add(-30*time.Minute))},
        near:     []Booking{confirmed("n1", baseTime.Add(5*time.Minute), baseTime.Add(-time.Hour))},
        upcoming: []Booking{confirmed("u1", baseTime.Add(20*time.Hour), baseTime.Add(-time.Hour))},
    }
    deriver := NewDeriver(src)

    first, err := deriver.Derive(context.Background(), baseTime)
    if err != nil {
        t.Fatalf("unexpected error: %v", err)
    }
    second, err := deriver.Derive(context.Background(), baseTime)
    if err != nil {
        t.Fatalf("unexpected error: %v", err)
    }
    if !reflect.DeepEqual(first, second) {
        t.Fatal("derivation must be idempotent for identical inputs")
    }
}

func TestDeriveTruncatesAndReportsTotal(t *testing.T) {
    t.Parallel()

    var upcoming []Booking
    for i := 0; i < 30; i++ {
        start := baseTime.Add(time.Hour + time.Duration(i)*time.Minute)
        upcoming = append(upcoming, confirmed(fmt.Sprintf("u%02d", i), start, baseTime.Add(-5*time.Hour)))
    }
    feed, err := NewDeriver(&sourceStub{upcoming: upcoming}).Derive(context.Background(), baseTime)
    if err != nil {
        t.Fatalf("unexpected error: %v", err)
    }
    if len(feed.Notifications) != 20 {
        t.Errorf("expected feed truncated to 20, got %d", len(feed.Notifications))
    }
    if feed.Total != 30 {
        t.Errorf("expected pre-truncation total 30, got %d", feed.Total)
    }
}
