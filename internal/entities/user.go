package entities

// NoUsernamePlaceholder is shown instead of the handle of users without a username.
const NoUsernamePlaceholder = "без ника"

type Sender struct {
	ID        int64
	Username  string // Telegram @handle without the "@", optional
	FirstName string
}

// Handle returns the display handle used in relay headers.
func (s Sender) Handle() string {
	if s.Username == "" {
		return NoUsernamePlaceholder
	}
	return s.Username
}
