package models

import "gorm.io/datatypes"

// RelayIdentity caches the managed sender identity created on a channel
// for one feed kind. The row is a cache: losing it only costs one extra
// ensure call against the platform.
type RelayIdentity struct {
	ChannelID string            `json:"channel_id" gorm:"primaryKey"`
	FeedKind  string            `json:"feed_kind" gorm:"primaryKey"`
	RemoteID  string            `json:"remote_id" gorm:"not null"`
	Token     string            `json:"token"`
	Metadata  datatypes.JSONMap `json:"metadata"`
	CreatedAt int64             `json:"created_at" gorm:"autoCreateTime:milli"`
}
