package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/novolabs/spotlight/pkg/internal/models"
)

var ErrNotPostAuthor = errors.New("only the author can delete this post")

// PostInfo bundles a post with its engagement detail for the info view.
type PostInfo struct {
	Post       models.Post           `json:"post"`
	Engagement models.PostEngagement `json:"engagement"`
	Likes      []models.Like         `json:"likes"`
	Comments   []models.Comment      `json:"comments"`
}

func (e *Engine) ToggleLike(ctx context.Context, kind models.FeedKind, postID int64, userID string) (bool, models.PostEngagement, error) {
	post, err := GetPost(kind, postID)
	if err != nil {
		return false, models.PostEngagement{}, err
	}

	liked, err := ToggleLike(kind, postID, userID)
	if err != nil {
		return liked, models.PostEngagement{}, err
	}

	engagement, err := CountEngagement(kind, postID)
	if err != nil {
		return liked, engagement, err
	}

	e.refreshPostCard(ctx, kind, post)
	if err := e.Reconcile(ctx, post.CommunityID, kind); err != nil {
		log.Error().Err(err).Str("community", post.CommunityID).Msg("Reconciliation after like toggle failed...")
	}

	return liked, engagement, nil
}

func (e *Engine) AddComment(ctx context.Context, kind models.FeedKind, postID int64, userID, displayName, content string) (models.Comment, error) {
	post, err := GetPost(kind, postID)
	if err != nil {
		return models.Comment{}, err
	}

	comment, err := AddComment(kind, models.Comment{
		PostID:          postID,
		UserID:          userID,
		UserDisplayName: displayName,
		Content:         content,
	})
	if err != nil {
		return comment, err
	}

	e.refreshPostCard(ctx, kind, post)
	if err := e.Reconcile(ctx, post.CommunityID, kind); err != nil {
		log.Error().Err(err).Str("community", post.CommunityID).Msg("Reconciliation after comment failed...")
	}

	return comment, nil
}

func (e *Engine) DeletePost(ctx context.Context, kind models.FeedKind, postID int64, requesterID string) error {
	post, err := GetPost(kind, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != requesterID {
		return ErrNotPostAuthor
	}

	if post.PublicMessageID != nil {
		if err := e.gateway.DeleteMessage(ctx, post.SourceChannelID, *post.PublicMessageID); err != nil {
			log.Error().Err(err).Int64("post", post.ID).Msg("Unable to delete public post card...")
		}
	}

	if err := DeletePost(kind, postID); err != nil {
		return err
	}

	if err := e.Reconcile(ctx, post.CommunityID, kind); err != nil {
		log.Error().Err(err).Str("community", post.CommunityID).Msg("Reconciliation after post delete failed...")
	}

	return nil
}

func (e *Engine) GetPostInfo(kind models.FeedKind, postID int64) (PostInfo, error) {
	var info PostInfo

	post, err := GetPost(kind, postID)
	if err != nil {
		return info, err
	}
	info.Post = post

	if info.Engagement, err = CountEngagement(kind, postID); err != nil {
		return info, err
	}
	if info.Likes, err = ListPostLikes(kind, postID, 20); err != nil {
		return info, err
	}
	if info.Comments, err = ListRecentComments(kind, postID, 5); err != nil {
		return info, err
	}

	return info, nil
}

// refreshPostCard re-renders the public card with current counts through
// the channel relay. Best-effort: a failure only leaves the card behind
// until the next engagement event.
func (e *Engine) refreshPostCard(ctx context.Context, kind models.FeedKind, post models.Post) {
	if post.PublicMessageID == nil {
		return
	}

	fc, err := e.cfg.Feed(post.CommunityID, kind)
	if err != nil {
		return
	}

	engagement, err := CountEngagement(kind, post.ID)
	if err != nil {
		log.Error().Err(err).Int64("post", post.ID).Msg("Unable to count engagement for card refresh...")
		return
	}

	relay, err := e.relayFor(ctx, kind, post.SourceChannelID)
	if err != nil {
		log.Error().Err(err).Int64("post", post.ID).Msg("Unable to resolve channel relay for card refresh...")
		return
	}

	mediaURL := e.resolvePostMediaURL(ctx, kind, post)
	card := renderPostCard(fc, post, engagement, mediaURL, "")
	if err := e.gateway.RelayEdit(ctx, relay, *post.PublicMessageID, card); err != nil {
		log.Error().Err(err).Int64("post", post.ID).Msg("Unable to refresh post card...")
	}
}
