package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/novolabs/spotlight/pkg/internal/models"
)

// HighlightWindow is the rolling ranking window for the featured post.
const HighlightWindow = 30 * 24 * time.Hour

// Reconcile brings the community's pinned highlight in line with the
// current top post. It is safe to call redundantly: converged states
// produce no platform calls and no writes. The whole read-decide-write
// sequence holds the per-(community, feed kind) lock, so concurrent
// triggers cannot interleave their decisions.
func (e *Engine) Reconcile(ctx context.Context, communityID string, kind models.FeedKind) error {
	fc, err := e.cfg.Feed(communityID, kind)
	if err != nil {
		return err
	}
	if fc.HighlightChannelID == "" {
		return nil
	}

	unlock := e.locks.Acquire(string(kind) + "/" + communityID)
	defer unlock()

	now := time.Now().UnixMilli()
	windowStart := now - HighlightWindow.Milliseconds()

	top, err := GetTopPost(kind, communityID, windowStart)
	if err != nil {
		return err
	}
	state, err := GetHighlightState(kind, communityID)
	if err != nil {
		return err
	}

	lastPostID := state.LastPostID
	if lastPostID == nil {
		lastPostID = state.PostID
	}

	// No qualifying post: tear the highlight down once, then stay put.
	if top == nil {
		if state.MessageID == nil && state.UserID == nil && state.PostID == nil {
			return nil
		}

		if state.MessageID != nil {
			if err := e.gateway.DeleteMessage(ctx, fc.HighlightChannelID, *state.MessageID); err != nil {
				log.Error().Err(err).Str("community", communityID).Msg("Unable to delete stale highlight message...")
			}
		}
		if fc.HighlightRoleID != "" && state.UserID != nil {
			if err := e.gateway.RevokeRole(ctx, communityID, *state.UserID, fc.HighlightRoleID); err != nil {
				log.Error().Err(err).Str("community", communityID).Msg("Unable to revoke highlight role...")
			}
		}

		e.clearCardMemo(kind, communityID)
		return SetHighlightState(kind, communityID, map[string]any{
			"post_id":      nil,
			"message_id":   nil,
			"user_id":      nil,
			"updated_at":   now,
			"last_post_id": lastPostID,
		})
	}

	engagement, err := CountEngagement(kind, top.ID)
	if err != nil {
		return err
	}

	// Already pinned to the top post: refresh the card in place, unless
	// the card already shows these exact counts.
	if state.MessageID != nil && state.PostID != nil && *state.PostID == top.ID {
		if e.cardMemoMatches(kind, communityID, top.ID, engagement) {
			return nil
		}

		msg, fetchErr := e.gateway.FetchMessage(ctx, fc.HighlightChannelID, *state.MessageID)
		if fetchErr == nil && msg.ID != "" {
			mediaURL := e.resolvePostMediaURL(ctx, kind, top.Post)
			card := renderPostCard(fc, top.Post, engagement, mediaURL, HighlightCardTitle)
			if err := e.gateway.EditCard(ctx, fc.HighlightChannelID, *state.MessageID, card); err != nil {
				log.Error().Err(err).Str("community", communityID).Msg("Unable to refresh highlight card...")
				return nil
			}
			e.setCardMemo(kind, communityID, top.ID, engagement)
			return nil
		}

		// The pinned message is gone; treat the state as stale and
		// re-pin below.
		log.Warn().Str("community", communityID).Int64("post", top.ID).Msg("Highlight message missing, re-pinning...")
	} else if state.MessageID == nil && lastPostID != nil && *lastPostID == top.ID {
		// The highlight for this exact post was deliberately cleared;
		// do not recreate it.
		return nil
	}

	// Promotion or replacement.
	if state.MessageID != nil {
		if err := e.gateway.DeleteMessage(ctx, fc.HighlightChannelID, *state.MessageID); err != nil {
			log.Error().Err(err).Str("community", communityID).Msg("Unable to delete replaced highlight message...")
		}
	}
	if fc.HighlightRoleID != "" && state.UserID != nil {
		if err := e.gateway.RevokeRole(ctx, communityID, *state.UserID, fc.HighlightRoleID); err != nil {
			log.Error().Err(err).Str("community", communityID).Msg("Unable to revoke previous highlight role...")
		}
	}

	mediaURL := e.resolvePostMediaURL(ctx, kind, top.Post)
	card := renderPostCard(fc, top.Post, engagement, mediaURL, HighlightCardTitle)
	messageID, err := e.gateway.SendCard(ctx, fc.HighlightChannelID, card)
	if err != nil {
		// State stays untouched so the next trigger retries the pin.
		log.Error().Err(err).Str("community", communityID).Int64("post", top.ID).Msg("Unable to send highlight card...")
		return nil
	}

	if fc.HighlightRoleID != "" {
		if err := e.gateway.GrantRole(ctx, communityID, top.AuthorID, fc.HighlightRoleID); err != nil {
			log.Error().Err(err).Str("community", communityID).Str("user", top.AuthorID).Msg("Unable to grant highlight role...")
		}
	}

	e.setCardMemo(kind, communityID, top.ID, engagement)
	return SetHighlightState(kind, communityID, map[string]any{
		"post_id":      top.ID,
		"message_id":   messageID,
		"user_id":      top.AuthorID,
		"updated_at":   now,
		"last_post_id": top.ID,
	})
}

// resolvePostMediaURL repairs a media URL that still points at a
// transient attachment by re-reading the public card message.
func (e *Engine) resolvePostMediaURL(ctx context.Context, kind models.FeedKind, post models.Post) string {
	if !strings.HasPrefix(post.MediaURL, "attachment://") || post.PublicMessageID == nil {
		return post.MediaURL
	}

	msg, err := e.gateway.FetchMessage(ctx, post.SourceChannelID, *post.PublicMessageID)
	if err != nil || msg.AttachmentURL == "" {
		return post.MediaURL
	}

	if err := UpdatePostMediaURL(kind, post.ID, msg.AttachmentURL); err != nil {
		log.Error().Err(err).Int64("post", post.ID).Msg("Unable to persist repaired media url...")
	}
	return msg.AttachmentURL
}
