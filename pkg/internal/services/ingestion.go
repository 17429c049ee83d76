package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/novolabs/spotlight/pkg/internal/models"
	"github.com/novolabs/spotlight/pkg/internal/platform"
)

// InboundMessage is a platform message event arriving from the gateway.
type InboundMessage struct {
	MessageID         string                `json:"message_id"`
	ChannelID         string                `json:"channel_id"`
	AuthorID          string                `json:"author_id"`
	AuthorDisplayName string                `json:"author_display_name"`
	AuthorAvatarURL   string                `json:"author_avatar_url"`
	Content           string                `json:"content"`
	Attachments       []platform.Attachment `json:"attachments"`
}

// IngestMessage turns a media message in the feed's source channel into a
// persisted post and a public card sent through the channel relay.
// Returns nil without error when the message is not for this feed or
// carries no media. A missing storage channel is the only failure
// surfaced to the submitter; everything after the post row exists is
// best-effort and leaves a repairable record behind.
func (e *Engine) IngestMessage(ctx context.Context, communityID string, kind models.FeedKind, msg InboundMessage) (*models.Post, error) {
	fc, err := e.cfg.Feed(communityID, kind)
	if err != nil {
		return nil, err
	}
	if fc.SourceChannelID == "" || msg.ChannelID != fc.SourceChannelID {
		return nil, nil
	}
	if len(msg.Attachments) == 0 {
		return nil, nil
	}
	attachment := msg.Attachments[0]

	if fc.StorageChannelID == "" {
		if err := e.gateway.Notify(ctx, msg.ChannelID, "❌ Configure the feed's storage channel before posting."); err != nil {
			log.Error().Err(err).Str("community", communityID).Msg("Unable to notify submitter about missing storage channel...")
		}
		return nil, ErrFeedNotConfigured
	}

	log.Debug().Str("community", communityID).Str("kind", kind.String()).Msg("Re-hosting feed attachment...")
	storedURL, err := e.gateway.UploadAttachment(ctx, fc.StorageChannelID, attachment)
	if err != nil {
		return nil, err
	}
	if storedURL == "" {
		return nil, fmt.Errorf("storage channel returned no durable url")
	}

	var caption *string
	if trimmed := strings.TrimSpace(msg.Content); trimmed != "" {
		caption = &trimmed
	}

	post := models.Post{
		CommunityID:       communityID,
		SourceChannelID:   msg.ChannelID,
		AuthorID:          msg.AuthorID,
		AuthorDisplayName: msg.AuthorDisplayName,
		AuthorAvatarRef:   lo.Ternary(msg.AuthorAvatarURL != "", &msg.AuthorAvatarURL, nil),
		MediaURL:          storedURL,
		Caption:           caption,
	}
	if caption != nil {
		post.Language = DetectLanguage(*caption)
	}

	post, err = CreatePost(kind, post)
	if err != nil {
		return nil, err
	}

	relay, err := e.relayFor(ctx, kind, msg.ChannelID)
	if err != nil {
		log.Error().Err(err).Int64("post", post.ID).Msg("Unable to resolve channel relay, post card not sent...")
		return &post, nil
	}

	fileName := attachment.Name
	if fileName == "" {
		fileName = fmt.Sprintf("%s-%s.png", kind, uuid.NewString())
	}

	card := renderPostCard(fc, post, models.PostEngagement{}, "attachment://"+fileName, "")
	sent, err := e.gateway.RelaySend(ctx, relay, platform.SenderProfile{
		DisplayName: msg.AuthorDisplayName,
		AvatarURL:   msg.AuthorAvatarURL,
	}, card, &platform.Attachment{URL: attachment.URL, Name: fileName})
	if err != nil {
		log.Error().Err(err).Int64("post", post.ID).Msg("Unable to send post card through relay...")
		return &post, nil
	}

	// Prefer the relay-hosted URL when the platform produced one; the
	// storage-channel URL stays as the durable fallback.
	mediaURL := lo.Ternary(sent.MediaURL != "", sent.MediaURL, storedURL)
	if err := UpdatePostCard(kind, post.ID, sent.MessageID, mediaURL); err != nil {
		log.Error().Err(err).Int64("post", post.ID).Msg("Unable to back-fill post card reference...")
	} else {
		post.PublicMessageID = &sent.MessageID
		post.MediaURL = mediaURL
	}

	if err := e.gateway.DeleteMessage(ctx, msg.ChannelID, msg.MessageID); err != nil {
		log.Error().Err(err).Str("message", msg.MessageID).Msg("Unable to delete original feed message...")
	}

	if err := e.Reconcile(ctx, communityID, kind); err != nil {
		log.Error().Err(err).Str("community", communityID).Msg("Reconciliation after ingestion failed...")
	}

	return &post, nil
}
