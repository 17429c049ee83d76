package platform

import (
	"context"
	"fmt"
)

// Attachment is an inbound or to-be-uploaded media file.
type Attachment struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

// Message is the subset of a fetched platform message the service cares
// about.
type Message struct {
	ID            string `json:"id"`
	AttachmentURL string `json:"attachment_url"`
}

// RelayRef addresses an existing managed sender identity on a channel.
type RelayRef struct {
	ID    string `json:"id"`
	Token string `json:"token"`
}

// SenderProfile overrides the display identity of a relay send so the
// card appears under the submitter's name and avatar.
type SenderProfile struct {
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
}

// IconSet holds the four normalized engagement icons rendered on a card.
type IconSet struct {
	Like    string `json:"like"`
	Comment string `json:"comment"`
	Info    string `json:"info"`
	Delete  string `json:"delete"`
}

// CardPayload is the rendered post card. The gateway turns it into
// whatever component layout the platform expects.
type CardPayload struct {
	Title        string  `json:"title,omitempty"`
	AuthorName   string  `json:"author_name"`
	AuthorAvatar string  `json:"author_avatar,omitempty"`
	Caption      string  `json:"caption,omitempty"`
	MediaURL     string  `json:"media_url"`
	LikeCount    int64   `json:"like_count"`
	CommentCount int64   `json:"comment_count"`
	PostID       int64   `json:"post_id"`
	Icons        IconSet `json:"icons"`
}

// SentMessage is the gateway's answer to a send: the new message id and,
// when the platform re-hosted an uploaded file, its durable URL.
type SentMessage struct {
	MessageID string `json:"message_id"`
	MediaURL  string `json:"media_url"`
}

// Actions is everything the engagement engine asks of the hosting
// platform. Every implementation is expected to be best-effort from the
// caller's point of view: callers swallow returned errors except where
// ingestion demands a hard stop.
type Actions interface {
	// UploadAttachment re-hosts an attachment into the given channel and
	// returns a URL that outlives the original message.
	UploadAttachment(ctx context.Context, channelID string, attachment Attachment) (string, error)

	// EnsureRelay finds or lazily creates the named managed sender
	// identity on a channel.
	EnsureRelay(ctx context.Context, channelID string, name string) (RelayRef, error)

	// RelaySend posts a card through a relay identity, optionally
	// attaching a file for the platform to host itself.
	RelaySend(ctx context.Context, relay RelayRef, profile SenderProfile, card CardPayload, file *Attachment) (SentMessage, error)

	// RelayEdit rewrites a card previously sent through the same relay.
	RelayEdit(ctx context.Context, relay RelayRef, messageID string, card CardPayload) error

	// SendCard posts a card to a channel as the service itself.
	SendCard(ctx context.Context, channelID string, card CardPayload) (string, error)

	// EditCard rewrites a card previously sent with SendCard.
	EditCard(ctx context.Context, channelID string, messageID string, card CardPayload) error

	FetchMessage(ctx context.Context, channelID string, messageID string) (Message, error)
	DeleteMessage(ctx context.Context, channelID string, messageID string) error

	GrantRole(ctx context.Context, communityID string, userID string, roleID string) error
	RevokeRole(ctx context.Context, communityID string, userID string, roleID string) error

	// Notify drops a plain text notice into a channel.
	Notify(ctx context.Context, channelID string, content string) error
}

// ActionError wraps any failed outbound platform call.
type ActionError struct {
	Op     string
	Status int
	Err    error
}

func (e *ActionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("platform action %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("platform action %s failed with status %d", e.Op, e.Status)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}
