package booking

import (
    "errors"
    "sort"
    "strings"
)

var (
    // ErrNotFound covers both missing bookings and bookings the caller does
    // not own; the two cases are indistinguishable to the client.
    ErrNotFound = errors.New("booking not found")

    ErrRoomNotFound     = errors.New("room not found")
    ErrRoomUnavailable  = errors.New("room is not available")
    ErrTimeConflict     = errors.New("time slot is already booked")
    ErrCapacityExceeded = errors.New("attendees exceed room capacity")
    ErrForbidden        = errors.New("operation not allowed")
)

// ValidationError collects per-field input problems so callers can report
// them all at once.
type ValidationError struct {
    Fields map[string]string
}

func (e *ValidationError) Add(field, message string) {
    if e.Fields == nil {
        e.Fields = make(map[string]string)
    }
    e.Fields[field] = message
}

func (e *ValidationError) HasErrors() bool {
    return len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
    if len(e.Fields) == 0 {
        return "validation failed"
    }
    keys := make([]string, 0, len(e.Fields))
    for k := range e.Fields {
        keys = append(keys, k)
    }
    sort.Strings(keys)
    parts := make([]string, 0, len(keys))
    for _, k := range keys {
        parts = append(parts, k+": "+e.Fields[k])
    }
    return strings.Join(parts, "; ")
}
