// Package agenda implements the club events calendar.
package agenda

import (
	"strings"
	"time"
)

// Event is one calendar entry.
type Event struct {
	ID       int64     `json:"event_id"`
	Title    string    `json:"title"`
	Date     time.Time `json:"event_date"`
	Location string    `json:"location"`
}

// UpsertRequest carries a new or updated event.
type UpsertRequest struct {
	Title    string     `json:"title"`
	Date     *time.Time `json:"event_date"`
	Location string     `json:"location"`
}

// Validate checks the required fields.
func (r *UpsertRequest) Validate() bool {
	r.Title = strings.TrimSpace(r.Title)
	r.Location = strings.TrimSpace(r.Location)
	return r.Title != "" && r.Location != "" && r.Date != nil
}
