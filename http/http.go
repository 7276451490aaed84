// Package http implements [hacktrack.Backend] for the hacktrack assistant's
// JSON API.
//
// Every call makes exactly one attempt. Authenticated calls read the bearer
// token from an [oauth2.TokenSource] at issue time, so a sign-out between
// queueing and sending a request is observed.
package http

import (
	"encoding/json"

	"github.com/fwojciec/hacktrack"
)

const (
	chatPath        = "/api/chat"
	saveEventPath   = "/api/save-event"
	savedEventsPath = "/api/saved-events"
	reminderPath    = "/api/set-reminder"

	requestIDHeader = "X-Request-ID"
)

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply  string     `json:"reply"`
	Events []apiEvent `json:"events"`
}

type eventRequest struct {
	EventID string `json:"eventId"`
}

type apiEvent struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Date     string `json:"date"`
	Location string `json:"location,omitempty"`
	Skills   string `json:"skills,omitempty"`
}

type apiError struct {
	Error string `json:"error"`
}

func (e apiEvent) toEvent() (hacktrack.Event, error) {
	ev := hacktrack.Event{
		ID:       e.ID,
		Name:     e.Name,
		Date:     e.Date,
		Location: e.Location,
		Skills:   e.Skills,
	}
	if err := ev.Validate(); err != nil {
		return hacktrack.Event{}, err
	}
	return ev, nil
}

// errorMessage extracts the backend's {"error": "..."} text. It returns the
// empty string when the body is not that shape.
func errorMessage(body []byte) string {
	var e apiError
	if err := json.Unmarshal(body, &e); err != nil {
		return ""
	}
	return e.Error
}
