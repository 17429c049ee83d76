package services

import (
	"github.com/novolabs/spotlight/pkg/internal/config"
	"github.com/novolabs/spotlight/pkg/internal/models"
	"github.com/novolabs/spotlight/pkg/internal/platform"
)

const HighlightCardTitle = "🌟 Highlight"

func renderPostCard(fc config.FeedConfig, post models.Post, engagement models.PostEngagement, mediaURL string, title string) platform.CardPayload {
	card := platform.CardPayload{
		Title:        title,
		AuthorName:   post.AuthorDisplayName,
		MediaURL:     mediaURL,
		LikeCount:    engagement.Likes,
		CommentCount: engagement.Comments,
		PostID:       post.ID,
		Icons: platform.IconSet{
			Like:    fc.Icons.Like,
			Comment: fc.Icons.Comment,
			Info:    fc.Icons.Info,
			Delete:  fc.Icons.Delete,
		},
	}
	if post.AuthorAvatarRef != nil {
		card.AuthorAvatar = *post.AuthorAvatarRef
	}
	if post.Caption != nil {
		card.Caption = *post.Caption
	}
	return card
}
