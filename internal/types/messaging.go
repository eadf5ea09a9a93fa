package types

import "context"

// MessageKind identifies the payload type of an outbound chat message.
type MessageKind string

const (
	MessageKindText  MessageKind = "text"
	MessageKindImage MessageKind = "image"
)

// Message is the transport-neutral outbound payload handed to a reply or push
// channel. Text is used for text messages; ImageURL (and PreviewURL, which
// defaults to ImageURL) for image messages.
type Message struct {
	Kind       MessageKind
	Text       string
	ImageURL   string
	PreviewURL string
}

// TextMessage builds a text Message.
func TextMessage(text string) Message {
	return Message{Kind: MessageKindText, Text: text}
}

// ImageMessage builds an image Message whose preview is the image itself.
func ImageMessage(url string) Message {
	return Message{Kind: MessageKindImage, ImageURL: url, PreviewURL: url}
}

// ReplyChannel answers a single inbound event.
type ReplyChannel interface {
	Reply(ctx context.Context, messages ...Message) error
}

// Pusher sends unsolicited messages to a chat user (scheduled summaries,
// weather reports).
type Pusher interface {
	Push(ctx context.Context, to string, messages ...Message) error
}

// CounterRepository persists the single CounterRecord. Load creates and
// stores the default record for defaultDate when none exists yet. Both
// methods report failures as StorageError.
type CounterRepository interface {
	Load(ctx context.Context, defaultDate string) (*CounterRecord, error)
	Save(ctx context.Context, rec *CounterRecord) error
}
