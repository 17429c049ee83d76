package config

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/marshaler"
	"github.com/eko/gocache/lib/v4/store"
	"github.com/spf13/viper"

	localCache "github.com/novolabs/spotlight/pkg/internal/cache"
	"github.com/novolabs/spotlight/pkg/internal/models"
)

// FeedConfig is everything one community configures for one feed kind.
// The source channel doubles as the public feed channel: the original
// inbound message is deleted and the card is relayed into the same
// channel.
type FeedConfig struct {
	SourceChannelID         string `json:"source_channel_id"`
	StorageChannelID        string `json:"storage_channel_id"`
	HighlightChannelID      string `json:"highlight_channel_id"`
	HighlightRoleID         string `json:"highlight_role_id"`
	ClearHighlightEnabled   bool   `json:"clear_highlight_enabled"`
	ClearHighlightAfterDays int    `json:"clear_highlight_after_days"`
	Icons                   Icons  `json:"icons"`
}

// Provider hands out per-community feed configuration. Ingestion, the
// reconciler and the retention job all receive one instead of reaching
// into a global settings store.
type Provider interface {
	Feed(communityID string, kind models.FeedKind) (FeedConfig, error)
	Communities() []string
}

// ViperProvider reads the communities tree out of the loaded settings
// file, with a short-lived read-through cache in front.
type ViperProvider struct {
	marshal *marshaler.Marshaler
}

func NewViperProvider() *ViperProvider {
	p := &ViperProvider{}
	if localCache.S != nil {
		p.marshal = marshaler.New(cache.New[any](localCache.S))
	}
	return p
}

func (p *ViperProvider) Feed(communityID string, kind models.FeedKind) (FeedConfig, error) {
	ctx := context.Background()
	cacheKey := fmt.Sprintf("feed-config#%s:%s", communityID, kind)

	if p.marshal != nil {
		if cached, err := p.marshal.Get(ctx, cacheKey, new(FeedConfig)); err == nil {
			return *(cached.(*FeedConfig)), nil
		}
	}

	base := fmt.Sprintf("communities.%s.%s.", communityID, kind)
	out := FeedConfig{
		SourceChannelID:         viper.GetString(base + "source_channel"),
		StorageChannelID:        viper.GetString(base + "storage_channel"),
		HighlightChannelID:      viper.GetString(base + "highlight_channel"),
		HighlightRoleID:         viper.GetString(base + "highlight_role"),
		ClearHighlightEnabled:   viper.GetBool(base + "clear_highlight_enabled"),
		ClearHighlightAfterDays: viper.GetInt(base + "clear_highlight_after_days"),
		Icons: Icons{
			Like:    viper.GetString(base + "icons.like"),
			Comment: viper.GetString(base + "icons.comment"),
			Info:    viper.GetString(base + "icons.info"),
			Delete:  viper.GetString(base + "icons.delete"),
		},
	}

	if out.ClearHighlightAfterDays <= 0 {
		out.ClearHighlightAfterDays = 7
	}
	out.Icons = out.Icons.Normalized()

	if p.marshal != nil {
		_ = p.marshal.Set(
			ctx,
			cacheKey,
			out,
			store.WithExpiration(5*time.Minute),
			store.WithTags([]string{"feed-config", fmt.Sprintf("community#%s", communityID)}),
		)
	}

	return out, nil
}

func (p *ViperProvider) Communities() []string {
	tree := viper.GetStringMap("communities")
	out := make([]string, 0, len(tree))
	for id := range tree {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
