package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/chimera/llm"
)

func TestRetentionDays(t *testing.T) {
	cases := []struct {
		period string
		days   int
		sweep  bool
	}{
		{RetentionSevenDays, 7, true},
		{RetentionThirtyDays, 30, true},
		{RetentionNinetyDays, 90, true},
		{RetentionIndefinite84, 84, true},
		{RetentionIndefiniteForever, 0, false},
		{"unknown", 30, true},
	}
	for _, tc := range cases {
		days, sweep := RetentionDays(tc.period)
		assert.Equal(t, tc.days, days, tc.period)
		assert.Equal(t, tc.sweep, sweep, tc.period)
	}
}

func TestCleanupRemovesStaleConversations(t *testing.T) {
	s := newTestStore(t)

	stale, err := s.CreateConversation("old", "echo")
	require.NoError(t, err)
	require.NoError(t, s.AppendMessage(stale.ID, llm.RoleUser, "ancient"))
	m, err := s.CreateMemory("stale-mem", "forgotten")
	require.NoError(t, err)
	_, err = s.AttachMemory(stale.ID, m.ID, true)
	require.NoError(t, err)

	// 把旧会话的更新时间拨回到一年前
	past := time.Now().AddDate(-1, 0, 0)
	require.NoError(t, s.db.Model(&Conversation{}).
		Where("id = ?", stale.ID).
		Update("updated_at", past).Error)

	fresh, err := s.CreateConversation("new", "gpt-4")
	require.NoError(t, err)
	require.NoError(t, s.AppendMessage(fresh.ID, llm.RoleUser, "recent"))

	res, err := s.Cleanup(context.Background(), time.Now().AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Conversations)
	assert.Equal(t, int64(1), res.Messages)
	assert.Equal(t, int64(1), res.MemoryLinks)
	assert.Equal(t, int64(1), res.Memories)

	_, err = s.ConversationData(stale.ID)
	assert.Error(t, err)

	data, err := s.ConversationData(fresh.ID)
	require.NoError(t, err)
	assert.Len(t, data.History, 1)
}

func TestCleanupByRetentionForeverIsNoop(t *testing.T) {
	s := newTestStore(t)
	conv, err := s.CreateConversation("keep", "echo")
	require.NoError(t, err)
	require.NoError(t, s.db.Model(&Conversation{}).
		Where("id = ?", conv.ID).
		Update("updated_at", time.Now().AddDate(-2, 0, 0)).Error)

	res, err := s.CleanupByRetention(context.Background(), RetentionIndefiniteForever)
	require.NoError(t, err)
	assert.Zero(t, res.Conversations)

	_, err = s.ConversationData(conv.ID)
	assert.NoError(t, err)
}
