// Package chat defines the boundary between the conversation core and a
// messaging transport: the inbound Event shape and the outbound Messenger
// operations.
package chat

import "context"

// EventKind classifies inbound events.
type EventKind string

const (
	KindCommand    EventKind = "command"
	KindButton     EventKind = "button"
	KindText       EventKind = "text"
	KindPhoto      EventKind = "photo"
	KindAttachment EventKind = "attachment"
)

// Event is one inbound user action.
//
// For KindCommand, Payload is the command name without the slash ("start").
// For KindButton it is the opaque callback payload ("add-account"). For
// KindText it is the message text. For KindPhoto, FileID identifies the
// largest photo size and Payload holds the caption, if any. KindAttachment
// covers any other file (documents, video, voice, stickers); Payload holds the
// caption.
type Event struct {
	Kind      EventKind
	UserID    int64
	ChatID    int64
	MessageID int
	Payload   string
	FileID    string

	Username  string
	FirstName string
	LastName  string
}

// Button is an inline keyboard button carrying an opaque payload.
type Button struct {
	Text    string
	Payload string
}

// Keyboard is a grid of buttons, one slice per row.
type Keyboard [][]Button

// Row is shorthand for a single keyboard row.
func Row(buttons ...Button) []Button {
	return buttons
}

// Messenger is what the core needs from the transport.
type Messenger interface {
	// SendText posts a new message and returns its id.
	SendText(ctx context.Context, chatID int64, text string, kb Keyboard) (int, error)

	// EditText replaces the text (and keyboard) of an existing message.
	EditText(ctx context.Context, chatID int64, messageID int, text string, kb Keyboard) error

	// DownloadFile stores the file identified by fileID at path.
	DownloadFile(ctx context.Context, fileID, path string) error
}
