package models

// Post is one persisted media submission. Timestamps are epoch
// milliseconds. Rows live in per-feed-kind tables, so every query has to
// go through FeedKind.Table instead of gorm's default naming.
type Post struct {
	ID                int64   `json:"id" gorm:"primaryKey;autoIncrement"`
	CommunityID       string  `json:"community_id" gorm:"index;not null"`
	SourceChannelID   string  `json:"source_channel_id" gorm:"not null"`
	PublicMessageID   *string `json:"public_message_id"`
	AuthorID          string  `json:"author_id" gorm:"not null"`
	AuthorDisplayName string  `json:"author_display_name" gorm:"not null"`
	AuthorAvatarRef   *string `json:"author_avatar_ref"`
	MediaURL          string  `json:"media_url" gorm:"not null"`
	Caption           *string `json:"caption"`
	Language          *string `json:"language"`
	CreatedAt         int64   `json:"created_at" gorm:"autoCreateTime:milli"`
}

// Like is a (post, user) pair; presence means liked.
type Like struct {
	PostID    int64  `json:"post_id" gorm:"primaryKey;autoIncrement:false"`
	UserID    string `json:"user_id" gorm:"primaryKey"`
	CreatedAt int64  `json:"created_at" gorm:"autoCreateTime:milli"`
}

// Comment is append-only; rows disappear only through the post cascade.
type Comment struct {
	ID              int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	PostID          int64  `json:"post_id" gorm:"index;not null"`
	UserID          string `json:"user_id" gorm:"not null"`
	UserDisplayName string `json:"user_display_name" gorm:"not null"`
	Content         string `json:"content" gorm:"not null"`
	CreatedAt       int64  `json:"created_at" gorm:"autoCreateTime:milli"`
}

// HighlightState tracks the single pinned highlight per community.
// LastPostID outlives clears so a deliberately removed highlight is not
// immediately recreated for the same post.
type HighlightState struct {
	CommunityID string  `json:"community_id" gorm:"primaryKey"`
	PostID      *int64  `json:"post_id"`
	MessageID   *string `json:"message_id"`
	UserID      *string `json:"user_id"`
	UpdatedAt   *int64  `json:"updated_at"`
	LastPostID  *int64  `json:"last_post_id"`
}

// PostEngagement carries the two engagement counters for a post.
type PostEngagement struct {
	Likes    int64 `json:"likes"`
	Comments int64 `json:"comments"`
}

// RankedPost is a post together with its like count inside the ranking
// window, as produced by the top-post query.
type RankedPost struct {
	Post
	LikeCount int64 `json:"like_count"`
}
