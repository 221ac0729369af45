package entities

// MediaRef points at a file Telegram can deliver: either an already uploaded
// file id or a local path that must be uploaded.
type MediaRef struct {
	FileID string
	Path   string
}

// FileRef references a file already stored on Telegram's side.
func FileRef(id string) MediaRef {
	return MediaRef{FileID: id}
}

// LocalFile references a file on local disk (uploaded verbatim).
func LocalFile(path string) MediaRef {
	return MediaRef{Path: path}
}

// IsLocal reports whether the ref must be uploaded from disk.
func (m MediaRef) IsLocal() bool {
	return m.FileID == "" && m.Path != ""
}

// Content is the body of a message. Exactly one of Text, Photo, Video or
// Unsupported.
type Content interface {
	content()
}

type Text struct {
	Body string
}

type Photo struct {
	File    MediaRef
	Caption string
}

type Video struct {
	File    MediaRef
	Caption string
}

// Unsupported is anything the relay cannot forward (stickers, voice, documents...).
// Kind is only used for logging.
type Unsupported struct {
	Kind string
}

func (Text) content()        {}
func (Photo) content()       {}
func (Video) content()       {}
func (Unsupported) content() {}

// ContentKind returns a short label for logs and metrics.
func ContentKind(c Content) string {
	switch v := c.(type) {
	case Text:
		return "text"
	case Photo:
		return "photo"
	case Video:
		return "video"
	case Unsupported:
		if v.Kind != "" {
			return v.Kind
		}
		return "unsupported"
	default:
		return "unsupported"
	}
}

type IncomingMessage struct {
	MessageID int
	ChatID    int64
	From      Sender
	Command   string // without the leading slash, empty for non-commands
	Content   Content
}

type CallbackQuery struct {
	ID     string
	From   Sender
	ChatID int64 // chat of the message the button is attached to
	Data   string
}

// Event is one inbound unit of work. Exactly one of Message or Callback is set.
type Event struct {
	UpdateID int
	Message  *IncomingMessage
	Callback *CallbackQuery
}
