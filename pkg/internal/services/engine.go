package services

import (
	"context"
	"errors"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/novolabs/spotlight/pkg/internal/config"
	"github.com/novolabs/spotlight/pkg/internal/database"
	"github.com/novolabs/spotlight/pkg/internal/models"
	"github.com/novolabs/spotlight/pkg/internal/platform"
)

var ErrFeedNotConfigured = errors.New("feed has no storage channel configured")

// Engine drives ingestion, engagement and highlight reconciliation for
// every community and feed kind, with all platform side effects behind
// the injected Actions.
type Engine struct {
	cfg     config.Provider
	gateway platform.Actions
	locks   keyedLocks

	memoMu sync.Mutex
	memos  map[string]cardMemo
}

func NewEngine(cfg config.Provider, gateway platform.Actions) *Engine {
	return &Engine{cfg: cfg, gateway: gateway, memos: make(map[string]cardMemo)}
}

// cardMemo remembers what the pinned highlight card last rendered, so a
// redundant reconciliation with unchanged counts makes no platform call
// at all. It is a send-side memo, not a cached store row: every pass
// still re-reads posts and state fresh.
type cardMemo struct {
	postID   int64
	likes    int64
	comments int64
}

func memoKey(kind models.FeedKind, communityID string) string {
	return string(kind) + "/" + communityID
}

func (e *Engine) cardMemoMatches(kind models.FeedKind, communityID string, postID int64, engagement models.PostEngagement) bool {
	e.memoMu.Lock()
	defer e.memoMu.Unlock()
	memo, ok := e.memos[memoKey(kind, communityID)]
	return ok && memo.postID == postID && memo.likes == engagement.Likes && memo.comments == engagement.Comments
}

func (e *Engine) setCardMemo(kind models.FeedKind, communityID string, postID int64, engagement models.PostEngagement) {
	e.memoMu.Lock()
	defer e.memoMu.Unlock()
	e.memos[memoKey(kind, communityID)] = cardMemo{postID: postID, likes: engagement.Likes, comments: engagement.Comments}
}

func (e *Engine) clearCardMemo(kind models.FeedKind, communityID string) {
	e.memoMu.Lock()
	defer e.memoMu.Unlock()
	delete(e.memos, memoKey(kind, communityID))
}

// keyedLocks serializes reconciliation passes per (community, feed kind).
// Concurrent triggers for the same key run their read-decide-write
// sequences one after another; each pass re-reads state under the lock.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedLocks) Acquire(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	lock, ok := k.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		k.locks[key] = lock
	}
	k.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

func relayName(kind models.FeedKind) string {
	if kind == models.FeedKindPet {
		return "Spotlight Pets"
	}
	return "Spotlight"
}

// relayFor returns the channel's relay identity for a feed kind, creating
// and persisting it on first use.
func (e *Engine) relayFor(ctx context.Context, kind models.FeedKind, channelID string) (platform.RelayRef, error) {
	var stored models.RelayIdentity
	err := database.C.
		Where("channel_id = ? AND feed_kind = ?", channelID, kind.String()).
		First(&stored).Error
	if err == nil {
		return platform.RelayRef{ID: stored.RemoteID, Token: stored.Token}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return platform.RelayRef{}, err
	}

	relay, err := e.gateway.EnsureRelay(ctx, channelID, relayName(kind))
	if err != nil {
		return platform.RelayRef{}, err
	}

	record := models.RelayIdentity{
		ChannelID: channelID,
		FeedKind:  kind.String(),
		RemoteID:  relay.ID,
		Token:     relay.Token,
	}
	if err := database.C.
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&record).Error; err != nil {
		return relay, err
	}

	return relay, nil
}
