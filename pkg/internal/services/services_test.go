package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/novolabs/spotlight/pkg/internal/config"
	"github.com/novolabs/spotlight/pkg/internal/database"
	"github.com/novolabs/spotlight/pkg/internal/models"
	"github.com/novolabs/spotlight/pkg/internal/platform"
)

func setupTestDB(t *testing.T) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.RunMigration(db))
	database.C = db
}

// stubProvider serves fixed feed configuration in tests.
type stubProvider struct {
	feeds       map[string]config.FeedConfig
	communities []string
}

func feedKey(communityID string, kind models.FeedKind) string {
	return communityID + "/" + string(kind)
}

func (s *stubProvider) Feed(communityID string, kind models.FeedKind) (config.FeedConfig, error) {
	fc, ok := s.feeds[feedKey(communityID, kind)]
	if !ok {
		return config.FeedConfig{}, nil
	}
	return fc, nil
}

func (s *stubProvider) Communities() []string {
	return s.communities
}

// fakePlatform records every outbound platform call in order.
type fakePlatform struct {
	mu    sync.Mutex
	calls []string

	uploadURL     string
	uploadErr     error
	relayErr      error
	relayMediaURL string
	sendErr       error
	fetchErr      error

	nextID        int
	deleted       []string
	granted       []string
	revoked       []string
	notifications []string
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{uploadURL: "https://cdn.test/stored.png"}
}

func (f *fakePlatform) record(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, op)
}

func (f *fakePlatform) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *fakePlatform) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
	f.deleted = nil
	f.granted = nil
	f.revoked = nil
	f.notifications = nil
}

func (f *fakePlatform) newMessageID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	return fmt.Sprintf("msg-%d", f.nextID)
}

func (f *fakePlatform) UploadAttachment(_ context.Context, _ string, _ platform.Attachment) (string, error) {
	f.record("upload")
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	return f.uploadURL, nil
}

func (f *fakePlatform) EnsureRelay(_ context.Context, channelID string, name string) (platform.RelayRef, error) {
	f.record("ensure_relay")
	return platform.RelayRef{ID: "relay-" + channelID, Token: "token"}, nil
}

func (f *fakePlatform) RelaySend(_ context.Context, _ platform.RelayRef, _ platform.SenderProfile, _ platform.CardPayload, _ *platform.Attachment) (platform.SentMessage, error) {
	f.record("relay_send")
	if f.relayErr != nil {
		return platform.SentMessage{}, f.relayErr
	}
	return platform.SentMessage{MessageID: f.newMessageID(), MediaURL: f.relayMediaURL}, nil
}

func (f *fakePlatform) RelayEdit(_ context.Context, _ platform.RelayRef, _ string, _ platform.CardPayload) error {
	f.record("relay_edit")
	return nil
}

func (f *fakePlatform) SendCard(_ context.Context, _ string, _ platform.CardPayload) (string, error) {
	f.record("send_card")
	if f.sendErr != nil {
		return "", f.sendErr
	}
	return f.newMessageID(), nil
}

func (f *fakePlatform) EditCard(_ context.Context, _ string, _ string, _ platform.CardPayload) error {
	f.record("edit_card")
	return nil
}

func (f *fakePlatform) FetchMessage(_ context.Context, _ string, messageID string) (platform.Message, error) {
	f.record("fetch_message")
	if f.fetchErr != nil {
		return platform.Message{}, f.fetchErr
	}
	return platform.Message{ID: messageID}, nil
}

func (f *fakePlatform) DeleteMessage(_ context.Context, _ string, messageID string) error {
	f.record("delete_message")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakePlatform) GrantRole(_ context.Context, _ string, userID string, _ string) error {
	f.record("grant_role")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.granted = append(f.granted, userID)
	return nil
}

func (f *fakePlatform) RevokeRole(_ context.Context, _ string, userID string, _ string) error {
	f.record("revoke_role")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked = append(f.revoked, userID)
	return nil
}

func (f *fakePlatform) Notify(_ context.Context, _ string, content string) error {
	f.record("notify")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notifications = append(f.notifications, content)
	return nil
}

func testFeedConfig() config.FeedConfig {
	return config.FeedConfig{
		SourceChannelID:         "source",
		StorageChannelID:        "storage",
		HighlightChannelID:      "highlight",
		HighlightRoleID:         "role",
		ClearHighlightEnabled:   true,
		ClearHighlightAfterDays: 7,
		Icons:                   config.DefaultIcons(),
	}
}

func setupEngine(t *testing.T, communityID string, kind models.FeedKind, fc config.FeedConfig) (*Engine, *fakePlatform) {
	t.Helper()
	setupTestDB(t)

	gateway := newFakePlatform()
	provider := &stubProvider{
		feeds:       map[string]config.FeedConfig{feedKey(communityID, kind): fc},
		communities: []string{communityID},
	}
	return NewEngine(provider, gateway), gateway
}

func seedPost(t *testing.T, kind models.FeedKind, communityID, authorID string, createdAt int64, likedBy ...string) models.Post {
	t.Helper()

	post, err := CreatePost(kind, models.Post{
		CommunityID:       communityID,
		SourceChannelID:   "source",
		AuthorID:          authorID,
		AuthorDisplayName: authorID,
		MediaURL:          "https://cdn.test/media.png",
		CreatedAt:         createdAt,
	})
	require.NoError(t, err)

	for _, user := range likedBy {
		liked, err := ToggleLike(kind, post.ID, user)
		require.NoError(t, err)
		require.True(t, liked)
	}

	return post
}
