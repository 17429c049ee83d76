package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/novolabs/spotlight/pkg/internal/models"
)

// DoAutoDatabaseCleanup expires posts older than the ranking window and
// clears stale highlights where a community opted in. Per-community
// failures are logged and skipped so one broken community cannot stall
// the sweep. New highlight candidates are never promoted here; that only
// happens on interaction-triggered reconciliation.
func (e *Engine) DoAutoDatabaseCleanup() {
	log.Debug().Msg("Now cleaning up expired feed posts...")

	cutoff := time.Now().Add(-HighlightWindow).UnixMilli()
	for _, kind := range models.FeedKinds {
		if err := DeleteExpiredPosts(kind, cutoff); err != nil {
			log.Error().Err(err).Str("kind", kind.String()).Msg("An error occurred when cleaning up expired posts...")
			continue
		}

		for _, communityID := range e.cfg.Communities() {
			if err := e.autoClearHighlight(context.Background(), communityID, kind); err != nil {
				log.Error().Err(err).Str("community", communityID).Str("kind", kind.String()).
					Msg("An error occurred when clearing a stale highlight...")
			}
		}
	}
}

// autoClearHighlight tears down a highlight that has not moved within
// the community's inactivity threshold, keeping last_post_id so the next
// reconciliation pass does not immediately repin the same post.
func (e *Engine) autoClearHighlight(ctx context.Context, communityID string, kind models.FeedKind) error {
	fc, err := e.cfg.Feed(communityID, kind)
	if err != nil {
		return err
	}
	if !fc.ClearHighlightEnabled {
		return nil
	}

	unlock := e.locks.Acquire(string(kind) + "/" + communityID)
	defer unlock()

	state, err := GetHighlightState(kind, communityID)
	if err != nil {
		return err
	}
	if state.MessageID == nil {
		return nil
	}

	now := time.Now().UnixMilli()
	threshold := int64(fc.ClearHighlightAfterDays) * 24 * time.Hour.Milliseconds()
	if state.UpdatedAt == nil || now-*state.UpdatedAt < threshold {
		return nil
	}

	if fc.HighlightChannelID != "" {
		if err := e.gateway.DeleteMessage(ctx, fc.HighlightChannelID, *state.MessageID); err != nil {
			log.Error().Err(err).Str("community", communityID).Msg("Unable to delete stale highlight message...")
		}
	}
	if fc.HighlightRoleID != "" && state.UserID != nil {
		if err := e.gateway.RevokeRole(ctx, communityID, *state.UserID, fc.HighlightRoleID); err != nil {
			log.Error().Err(err).Str("community", communityID).Msg("Unable to revoke stale highlight role...")
		}
	}

	lastPostID := state.PostID
	if lastPostID == nil {
		lastPostID = state.LastPostID
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
