package controllers

import (
    "testing"
    "time"

    "github.com/nattw/meetroom_backend/internal/models"
)

func TestStatusColor(t *testing.T) {
    t.Parallel()

    cases := map[string]string{
        "confirmed": "bg-green-500",
        "pending":   "bg-yellow-500",
        "cancelled": "bg-red-500",
        "approved":  "bg-gray-500",
        "":          "bg-gray-500",
    }
    for status, want := range cases {
        if got := statusColor(status); got != want {
            t.Errorf("statusColor(%q) = %q, want %q", status, got, want)
        }
    }
}

func TestDayBounds(t *testing.T) {
    t.Parallel()

    now := time.Date(2025, 6, 2, 14, 37, 12, 0, time.UTC)
    start, end := dayBounds(now)

    if !start.Equal(time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)) {
        t.Errorf("day start = %v", start)
    }
    if !end.Equal(time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)) {
        t.Errorf("day end = %v", end)
    }
    if !start.Before(now) || !end.After(now) {
        t.Error("now must fall inside its own day bounds")
    }
}

func TestCalendarRange(t *testing.T) {
    t.Parallel()

    now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

    from, to, err := calendarRange(now, "")
    if err != nil {
        t.Fatalf("rolling window failed: %v", err)
    }
    if !from.Equal(now.AddDate(0, 0, -30)) || !to.Equal(now.AddDate(0, 0, 60)) {
        t.Errorf("rolling window = [%v, %v), want 30 days back and 60 ahead", from, to)
    }

    from, to, err = calendarRange(now, "2025-06-02")
    if err != nil {
        t.Fatalf("day window failed: %v", err)
    }
    wantFrom := time.Date(2025, 6, 2, 0, 0, 0, 0, time.Local)
    if !from.Equal(wantFrom) || !to.Equal(wantFrom.AddDate(0, 0, 1)) {
        t.Errorf("day window = [%v, %v)", from, to)
    }

    if _, _, err := calendarRange(now, "02-06-2025"); err == nil {
        t.Error("expected error for malformed date")
    }
}

func TestCalendarStatuses(t *testing.T) {
    t.Parallel()

    want := map[string]bool{
        models.BookingStatusConfirmed: true,
        models.BookingStatusPending:   true,
    }
    if len(calendarStatuses) != len(want) {
        t.Fatalf("calendar shows %d statuses, want %d", len(calendarStatuses), len(want))
    }
    for _, s := range calendarStatuses {
        if !want[s] {
            t.Errorf("status %q must not reach the calendar", s)
        }
    }
}

func TestParseLocalDateTime(t *testing.T) {
    t.Parallel()

    got, err := parseLocalDateTime("2025-06-02", "09:30")
    if err != nil {
        t.Fatalf("parse failed: %v", err)
    }
    want := time.Date(2025, 6, 2, 9, 30, 0, 0, time.Local)
    if !got.Equal(want) {
        t.Errorf("got %v, want %v", got, want)
    }

    if _, err := parseLocalDateTime("2025-06-02", "25:00"); err == nil {
        t.Error("expected error for invalid clock value")
    }
}

func TestIsValidDepartment(t *testing.T) {
    t.Parallel()

    if !isValidDepartment("IT") || !isValidDepartment("HR&Admin") {
        t.Error("known departments rejected")
    }
    if isValidDepartment("it") || isValidDepartment("Engineering") {
        t.Error("unknown departments accepted")
    }
}
