package hacktrack

// NoticeKind classifies a user-visible notice.
type NoticeKind int

const (
	NoticeInfo NoticeKind = iota
	NoticeSuccess
	NoticeError
)

// Notice is a user-visible message delivered through the single notification
// channel (the status line).
type Notice struct {
	Kind NoticeKind
	Text string
}

// Result is the outcome of an event action.
type Result struct {
	Action  ActionKind
	EventID string
	// Err is nil on success, ErrNotSignedIn on a failed precheck, and a
	// *TransportError on network failure.
	Err    error
	Notice Notice

	// Refreshed is true when Saved holds a fresh saved-events snapshot.
	Refreshed  bool
	Saved      []Event
	RefreshErr error

	Share *ShareArtifact
}

// OK reports whether the action succeeded.
func (r Result) OK() bool { return r.Err == nil }
