package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novolabs/spotlight/pkg/internal/database"
	"github.com/novolabs/spotlight/pkg/internal/models"
	"github.com/novolabs/spotlight/pkg/internal/platform"
)

func inboundFixture() InboundMessage {
	return InboundMessage{
		MessageID:         "orig-1",
		ChannelID:         "source",
		AuthorID:          "a1",
		AuthorDisplayName: "Author One",
		AuthorAvatarURL:   "https://cdn.test/avatar.png",
		Content:           "  a sunny day at the beach  ",
		Attachments:       []platform.Attachment{{URL: "https://cdn.test/upload.png", Name: "photo.png"}},
	}
}

func postCount(t *testing.T, kind models.FeedKind) int64 {
	t.Helper()
	var count int64
	require.NoError(t, database.C.Table(kind.Table("posts")).Count(&count).Error)
	return count
}

func TestIngestIgnoresMessagesWithoutMedia(t *testing.T) {
	kind := models.FeedKindPrimary
	engine, gateway := setupEngine(t, "c1", kind, testFeedConfig())

	msg := inboundFixture()
	msg.Attachments = nil

	post, err := engine.IngestMessage(context.Background(), "c1", kind, msg)
	require.NoError(t, err)
	assert.Nil(t, post)
	assert.Empty(t, gateway.callLog())
	assert.EqualValues(t, 0, postCount(t, kind))
}

func TestIngestIgnoresOtherChannels(t *testing.T) {
	kind := models.FeedKindPrimary
	engine, _ := setupEngine(t, "c1", kind, testFeedConfig())

	msg := inboundFixture()
	msg.ChannelID = "unrelated"

	post, err := engine.IngestMessage(context.Background(), "c1", kind, msg)
	require.NoError(t, err)
	assert.Nil(t, post)
	assert.EqualValues(t, 0, postCount(t, kind))
}

func TestIngestFailsWithoutStorageChannel(t *testing.T) {
	kind := models.FeedKindPrimary
	fc := testFeedConfig()
	fc.StorageChannelID = ""
	engine, gateway := setupEngine(t, "c1", kind, fc)

	post, err := engine.IngestMessage(context.Background(), "c1", kind, inboundFixture())
	assert.ErrorIs(t, err, ErrFeedNotConfigured)
	assert.Nil(t, post)

	// The submitter got a notice and no row was created.
	assert.Equal(t, []string{"notify"}, gateway.callLog())
	assert.EqualValues(t, 0, postCount(t, kind))
}

func TestIngestAbortsWhenRehostFails(t *testing.T) {
	kind := models.FeedKindPrimary
	engine, gateway := setupEngine(t, "c1", kind, testFeedConfig())
	gateway.uploadErr = errors.New("storage unavailable")

	post, err := engine.IngestMessage(context.Background(), "c1", kind, inboundFixture())
	assert.Error(t, err)
	assert.Nil(t, post)
	assert.EqualValues(t, 0, postCount(t, kind))
}

func TestIngestCreatesPostAndCard(t *testing.T) {
	for _, kind := range models.FeedKinds {
		t.Run(kind.String(), func(t *testing.T) {
			fc := testFeedConfig()
			fc.HighlightChannelID = ""
			engine, gateway := setupEngine(t, "c1", kind, fc)
			gateway.relayMediaURL = "https://cdn.test/relay-hosted.png"

			post, err := engine.IngestMessage(context.Background(), "c1", kind, inboundFixture())
			require.NoError(t, err)
			require.NotNil(t, post)

			stored, err := GetPost(kind, post.ID)
			require.NoError(t, err)

			require.NotNil(t, stored.Caption)
			assert.Equal(t, "a sunny day at the beach", *stored.Caption)
			require.NotNil(t, stored.Language)
			assert.Equal(t, "en", *stored.Language)
			require.NotNil(t, stored.PublicMessageID)

			// The relay-hosted URL wins over the storage-channel URL.
			assert.Equal(t, "https://cdn.test/relay-hosted.png", stored.MediaURL)

			calls := gateway.callLog()
			assert.Equal(t, []string{"upload", "ensure_relay", "relay_send", "delete_message"}, calls)
			assert.Equal(t, []string{"orig-1"}, gateway.deleted)
		})
	}
}

func TestIngestFallsBackToStorageURL(t *testing.T) {
	kind := models.FeedKindPrimary
	fc := testFeedConfig()
	fc.HighlightChannelID = ""
	engine, gateway := setupEngine(t, "c1", kind, fc)
	gateway.relayMediaURL = ""

	post, err := engine.IngestMessage(context.Background(), "c1", kind, inboundFixture())
	require.NoError(t, err)
	require.NotNil(t, post)

	stored, err := GetPost(kind, post.ID)
	require.NoError(t, err)
	assert.Equal(t, gateway.uploadURL, stored.MediaURL)
}

func TestIngestKeepsDegradedPostWhenRelayFails(t *testing.T) {
	kind := models.FeedKindPrimary
	fc := testFeedConfig()
	fc.HighlightChannelID = ""
	engine, gateway := setupEngine(t, "c1", kind, fc)
	gateway.relayErr = errors.New("relay rejected")

	post, err := engine.IngestMessage(context.Background(), "c1", kind, inboundFixture())
	require.NoError(t, err)
	require.NotNil(t, post)

	stored, err := GetPost(kind, post.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.PublicMessageID)
	assert.Equal(t, gateway.uploadURL, stored.MediaURL)
}

func TestIngestReusesPersistedRelay(t *testing.T) {
	kind := models.FeedKindPrimary
	fc := testFeedConfig()
	fc.HighlightChannelID = ""
	engine, gateway := setupEngine(t, "c1", kind, fc)

	_, err := engine.IngestMessage(context.Background(), "c1", kind, inboundFixture())
	require.NoError(t, err)
	gateway.reset()

	msg := inboundFixture()
	msg.MessageID = "orig-2"
	_, err = engine.IngestMessage(context.Background(), "c1", kind, msg)
	require.NoError(t, err)

	// The relay identity came from the store this time.
	assert.NotContains(t, gateway.callLog(), "ensure_relay")
}

func TestIngestTriggersReconciliation(t *testing.T) {
	kind := models.FeedKindPrimary
	engine, gateway := setupEngine(t, "c1", kind, testFeedConfig())

	post, err := engine.IngestMessage(context.Background(), "c1", kind, inboundFixture())
	require.NoError(t, err)
	require.NotNil(t, post)

	assert.Contains(t, gateway.callLog(), "send_card")

	state, err := GetHighlightState(kind, "c1")
	require.NoError(t, err)
	require.NotNil(t, state.PostID)
	assert.Equal(t, post.ID, *state.PostID)
}
