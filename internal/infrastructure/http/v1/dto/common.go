// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"time"

	"tokopos/internal/core/apperror"
)

// calendarDate is the wire format for business dates.
const calendarDate = "2006-01-02"

// ParseCalendarDate converts a YYYY-MM-DD (or RFC3339) wire value into a
// UTC timestamp. Calendar dates live only at this edge; everything inside
// works with timestamps.
func ParseCalendarDate(field, value string) (time.Time, error) {
	if t, err := time.Parse(calendarDate, value); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, apperror.NewValidation("invalid date, expected YYYY-MM-DD").
		WithDetail("field", field)
}

// FormatCalendarDate renders a timestamp back into the wire date format.
func FormatCalendarDate(t time.Time) string {
	return t.UTC().Format(calendarDate)
}

// IDResponse carries a created record's ID.
type IDResponse struct {
	ID string `json:"id"`
}

// SuccessResponse is a generic success envelope.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ListResponse wraps list results with pagination.
type ListResponse struct {
	Items      any   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}
