// Package ical implements [hacktrack.Sharer]. A shared event becomes a link
// to the event on the backend plus an iCalendar document that any calendar
// application can import.
package ical

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/fwojciec/hacktrack"
	"github.com/google/uuid"
)

// Interface compliance check.
var _ hacktrack.Sharer = (*Sharer)(nil)

const productID = "-//hacktrack//EN"

// dateLayouts are the event date formats the backend is known to emit.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
	"02 Jan 2006",
}

// Sharer builds share artifacts locally.
type Sharer struct {
	baseURL string
	dir     string
	now     func() time.Time
}

// Option configures a [Sharer].
type Option func(*Sharer)

// WithDir writes each .ics document into dir.
func WithDir(dir string) Option {
	return func(s *Sharer) { s.dir = dir }
}

// WithNow sets the clock used for DTSTAMP.
func WithNow(now func() time.Time) Option {
	return func(s *Sharer) { s.now = now }
}

// New creates a [Sharer] whose links point at baseURL.
func New(baseURL string, opts ...Option) *Sharer {
	s := &Sharer{
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// refPath prefixes an event's reference link. The backend serves no route
// under it: the link names the event for the UID and URL properties and for
// pasting, it is not fetched.
const refPath = "/events/"

// Share returns the event's reference link and, when its date parses, an
// iCalendar document for it.
func (s *Sharer) Share(_ context.Context, event hacktrack.Event) (hacktrack.ShareArtifact, error) {
	if err := event.Validate(); err != nil {
		return hacktrack.ShareArtifact{}, err
	}
	art := hacktrack.ShareArtifact{
		EventID: event.ID,
		URL:     s.baseURL + refPath + url.PathEscape(event.ID),
	}
	start, ok := parseDate(event.Date)
	if !ok {
		return art, nil
	}
	ics, err := s.encode(event, art.URL, start)
	if err != nil {
		return hacktrack.ShareArtifact{}, err
	}
	art.ICS = ics
	if s.dir == "" {
		return art, nil
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return hacktrack.ShareArtifact{}, fmt.Errorf("ical: create share dir: %w", err)
	}
	path := filepath.Join(s.dir, fileName(event.ID))
	if err := os.WriteFile(path, ics, 0o644); err != nil {
		return hacktrack.ShareArtifact{}, fmt.Errorf("ical: write %s: %w", path, err)
	}
	art.Path = path
	return art, nil
}

func (s *Sharer) encode(event hacktrack.Event, link string, start time.Time) ([]byte, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)

	ve := ical.NewComponent(ical.CompEvent)
	// Stable per link, so re-sharing updates rather than duplicates.
	ve.Props.SetText(ical.PropUID, uuid.NewSHA1(uuid.NameSpaceURL, []byte(link)).String())
	ve.Props.SetText(ical.PropSummary, event.Name)
	ve.Props.SetDateTime(ical.PropDateTimeStamp, s.now().UTC())
	ve.Props.SetDateTime(ical.PropDateTimeStart, start)
	ve.Props.SetDateTime(ical.PropDateTimeEnd, start.Add(24*time.Hour))
	urlProp := ical.NewProp(ical.PropURL)
	urlProp.Value = link
	ve.Props.Set(urlProp)
	if event.Location != "" {
		ve.Props.SetText(ical.PropLocation, event.Location)
	}
	if event.Skills != "" {
		ve.Props.SetText(ical.PropDescription, "Skills: "+event.Skills)
	}
	cal.Children = append(cal.Children, ve)

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("ical: encode event %s: %w", event.ID, err)
	}
	return buf.Bytes(), nil
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// fileName maps an event id to a safe file name.
func fileName(id string) string {
	var b strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return "event-" + b.String() + ".ics"
}
