package db

import (
	"path/filepath"
	"testing"

	"github.com/luminagear/lumina-support/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestCreateConversationIsIdempotent(t *testing.T) {
	store := newTestStore(t)

	first, err := store.CreateConversation("sess_1", "first title", 1000)
	require.NoError(t, err)
	assert.Equal(t, "sess_1", first.ID)
	assert.Equal(t, "first title", first.Title)
	assert.Equal(t, int64(1000), first.CreatedAt)
	assert.Equal(t, "", first.LastMessage)

	// A second create with a different title and time must return the
	// original record untouched.
	second, err := store.CreateConversation("sess_1", "other title", 9999)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestListConversationsNewestFirst(t *testing.T) {
	store := newTestStore(t)

	_, err := store.CreateConversation("sess_old", "old", 100)
	require.NoError(t, err)
	_, err = store.CreateConversation("sess_new", "new", 300)
	require.NoError(t, err)
	_, err = store.CreateConversation("sess_mid", "mid", 200)
	require.NoError(t, err)

	conversations, err := store.ListConversations()
	require.NoError(t, err)
	require.Len(t, conversations, 3)
	assert.Equal(t, "sess_new", conversations[0].ID)
	assert.Equal(t, "sess_mid", conversations[1].ID)
	assert.Equal(t, "sess_old", conversations[2].ID)
}

func TestListMessagesOrdering(t *testing.T) {
	store := newTestStore(t)
	_, err := store.CreateConversation("sess_1", "t", 1)
	require.NoError(t, err)

	// Insert out of timestamp order.
	for _, m := range []models.Message{
		{ID: "m3", ConversationID: "sess_1", Sender: models.SenderUser, Text: "third", Timestamp: 30},
		{ID: "m1", ConversationID: "sess_1", Sender: models.SenderUser, Text: "first", Timestamp: 10},
		{ID: "m2", ConversationID: "sess_1", Sender: models.SenderAssistant, Text: "second", Timestamp: 20},
	} {
		msg := m
		require.NoError(t, store.SaveMessage(&msg))
	}

	messages, err := store.ListMessages("sess_1", 0)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, "first", messages[0].Text)
	assert.Equal(t, "second", messages[1].Text)
	assert.Equal(t, "third", messages[2].Text)
}

func TestListMessagesTiesBrokenByInsertionOrder(t *testing.T) {
	store := newTestStore(t)
	_, err := store.CreateConversation("sess_1", "t", 1)
	require.NoError(t, err)

	for _, id := range []string{"a", "b", "c"} {
		msg := models.Message{ID: id, ConversationID: "sess_1", Sender: models.SenderUser, Text: id, Timestamp: 50}
		require.NoError(t, store.SaveMessage(&msg))
	}

	messages, err := store.ListMessages("sess_1", 0)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, "a", messages[0].ID)
	assert.Equal(t, "b", messages[1].ID)
	assert.Equal(t, "c", messages[2].ID)
}

func TestListMessagesLimitTakesEarliest(t *testing.T) {
	store := newTestStore(t)
	_, err := store.CreateConversation("sess_1", "t", 1)
	require.NoError(t, err)

	for i, id := range []string{"m1", "m2", "m3", "m4"} {
		msg := models.Message{ID: id, ConversationID: "sess_1", Sender: models.SenderUser, Text: id, Timestamp: int64(i + 1)}
		require.NoError(t, store.SaveMessage(&msg))
	}

	messages, err := store.ListMessages("sess_1", 2)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "m1", messages[0].ID)
	assert.Equal(t, "m2", messages[1].ID)
}

func TestListMessagesUnknownConversation(t *testing.T) {
	store := newTestStore(t)

	messages, err := store.ListMessages("sess_missing", 0)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestRecentMessagesKeepsLatestWindow(t *testing.T) {
	store := newTestStore(t)
	_, err := store.CreateConversation("sess_1", "t", 1)
	require.NoError(t, err)

	for i := 1; i <= 5; i++ {
		msg := models.Message{
			ID:             "m" + string(rune('0'+i)),
			ConversationID: "sess_1",
			Sender:         models.SenderUser,
			Text:           "msg",
			Timestamp:      int64(i * 10),
		}
		require.NoError(t, store.SaveMessage(&msg))
	}

	messages, err := store.RecentMessages("sess_1", 3)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	// Latest three, re-ascended.
	assert.Equal(t, int64(30), messages[0].Timestamp)
	assert.Equal(t, int64(40), messages[1].Timestamp)
	assert.Equal(t, int64(50), messages[2].Timestamp)
}

func TestSaveMessageUpsertsAndRefreshesCache(t *testing.T) {
	store := newTestStore(t)
	_, err := store.CreateConversation("sess_1", "t", 1)
	require.NoError(t, err)

	msg := models.Message{ID: "m1", ConversationID: "sess_1", Sender: models.SenderUser, Text: "hello", Timestamp: 10}
	require.NoError(t, store.SaveMessage(&msg))

	conversations, err := store.ListConversations()
	require.NoError(t, err)
	require.Len(t, conversations, 1)
	assert.Equal(t, "hello", conversations[0].LastMessage)

	// Same id, new text: exactly one row remains and the cache follows.
	updated := models.Message{ID: "m1", ConversationID: "sess_1", Sender: models.SenderUser, Text: "hello again", Timestamp: 20}
	require.NoError(t, store.SaveMessage(&updated))

	messages, err := store.ListMessages("sess_1", 0)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "hello again", messages[0].Text)
	assert.Equal(t, int64(20), messages[0].Timestamp)

	conversations, err = store.ListConversations()
	require.NoError(t, err)
	assert.Equal(t, "hello again", conversations[0].LastMessage)
}

func TestSaveMessageWithoutParentFails(t *testing.T) {
	store := newTestStore(t)

	msg := models.Message{ID: "m1", ConversationID: "sess_ghost", Sender: models.SenderUser, Text: "hi", Timestamp: 1}
	err := store.SaveMessage(&msg)
	require.Error(t, err)
}

func TestDeleteConversationCascades(t *testing.T) {
	store := newTestStore(t)
	_, err := store.CreateConversation("sess_1", "t", 1)
	require.NoError(t, err)
	msg := models.Message{ID: "m1", ConversationID: "sess_1", Sender: models.SenderUser, Text: "hi", Timestamp: 1}
	require.NoError(t, store.SaveMessage(&msg))

	require.NoError(t, store.DeleteConversation("sess_1"))

	messages, err := store.ListMessages("sess_1", 0)
	require.NoError(t, err)
	assert.Empty(t, messages)

	conversations, err := store.ListConversations()
	require.NoError(t, err)
	assert.Empty(t, conversations)

	// Deleting again is a no-op, not an error.
	require.NoError(t, store.DeleteConversation("sess_1"))
}
