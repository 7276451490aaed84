package hacktrack

// Theme defines semantic color mappings using ANSI color indices (0-15).
// The user's terminal theme determines the actual RGB values, so the app
// automatically matches any color scheme. A negative index means no color.
type Theme struct {
	UserMsg   int // User turn accent
	BotMsg    int // Bot turn accent
	EventCard int // Event card label
	Control   int // Inline controls ([Save], [Share], [Remind])
	Focus     int // Focused control background
	Error     int // Error notices
	Success   int // Success notices
	Muted     int // Status bar, placeholders
	Accent    int // Headings, links, panel titles
}

// DefaultTheme returns the default ANSI color mapping.
func DefaultTheme() Theme {
	return Theme{
		UserMsg:   4,
		BotMsg:    6,
		EventCard: 3,
		Control:   5,
		Focus:     8,
		Error:     1,
		Success:   2,
		Muted:     8,
		Accent:    5,
	}
}
