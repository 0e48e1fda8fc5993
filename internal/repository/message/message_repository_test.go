package message_test

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/iyunix/go-taskmate/internal/database/dbtest"
	"github.com/iyunix/go-taskmate/internal/domain"
	"github.com/iyunix/go-taskmate/internal/repository/conversation"
	"github.com/iyunix/go-taskmate/internal/repository/message"
	"github.com/iyunix/go-taskmate/internal/repository/toolcall"
)

func newConversation(t *testing.T, db *gorm.DB, userID string) *domain.Conversation {
	t.Helper()
	conv, err := conversation.NewConversationRepository(db).Create(context.Background(), &domain.Conversation{UserID: userID})
	require.NoError(t, err)
	return conv
}

func TestAppendAssignsGapFreeSequence(t *testing.T) {
	ctx := context.Background()
	db := dbtest.NewSQLite(t)
	repo := message.NewMessageRepository(db)
	conv := newConversation(t, db, "user-a")

	for i := 0; i < 5; i++ {
		msg, err := repo.Append(ctx, conv.ID, domain.RoleUser, fmt.Sprintf("message %d", i))
		require.NoError(t, err)
		assert.Equal(t, i, msg.SequenceNumber)
	}

	other := newConversation(t, db, "user-a")
	msg, err := repo.Append(ctx, other.ID, domain.RoleUser, "first")
	require.NoError(t, err)
	assert.Equal(t, 0, msg.SequenceNumber, "sequences are per conversation")
}

func TestAppendConcurrentWritersNeverShareASequenceNumber(t *testing.T) {
	ctx := context.Background()
	db := dbtest.NewSQLite(t)
	repo := message.NewMessageRepository(db)
	conv := newConversation(t, db, "user-a")

	const writers = 20
	var g errgroup.Group
	for i := 0; i < writers; i++ {
		i := i
		g.Go(func() error {
			_, err := repo.Append(ctx, conv.ID, domain.RoleUser, fmt.Sprintf("concurrent %d", i))
			return err
		})
	}
	require.NoError(t, g.Wait())

	messages, err := repo.ListByConversation(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, messages, writers)

	seqs := make([]int, 0, writers)
	for _, m := range messages {
		seqs = append(seqs, m.SequenceNumber)
	}
	sort.Ints(seqs)
	for i, seq := range seqs {
		assert.Equal(t, i, seq)
	}
}

func TestAppendRetriesAfterSequenceConflict(t *testing.T) {
	ctx := context.Background()
	db := dbtest.NewSQLite(t)
	repo := message.NewMessageRepository(db)
	conv := newConversation(t, db, "user-a")

	// The first insert finds its sequence number already taken by a rival
	// row written on the same transaction.
	var inserts, conflicts int
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("test:rival_writer", func(tx *gorm.DB) {
		msg, ok := tx.Statement.Dest.(*domain.Message)
		if !ok {
			return
		}
		inserts++
		if conflicts > 0 {
			return
		}
		conflicts++
		tx.AddError(tx.Session(&gorm.Session{NewDB: true}).Exec(
			"INSERT INTO messages (conversation_id, role, content, sequence_number, created_at) VALUES (?, ?, ?, ?, ?)",
			msg.ConversationID, domain.RoleUser, "rival", msg.SequenceNumber, msg.CreatedAt,
		).Error)
	}))

	msg, err := repo.Append(ctx, conv.ID, domain.RoleUser, "first")
	require.NoError(t, err)
	assert.Equal(t, 0, msg.SequenceNumber)
	assert.Equal(t, 1, conflicts)
	assert.Equal(t, 2, inserts, "the conflicting insert is retried once")

	for i := 1; i <= 2; i++ {
		_, err := repo.Append(ctx, conv.ID, domain.RoleAssistant, fmt.Sprintf("reply %d", i))
		require.NoError(t, err)
	}

	messages, err := repo.ListByConversation(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	for i, m := range messages {
		assert.Equal(t, i, m.SequenceNumber)
		assert.NotEqual(t, "rival", m.Content, "the rival row is rolled back with its transaction")
	}
}

func TestRecentReturnsWindowInAscendingOrder(t *testing.T) {
	ctx := context.Background()
	db := dbtest.NewSQLite(t)
	repo := message.NewMessageRepository(db)
	conv := newConversation(t, db, "user-a")

	for i := 0; i < 15; i++ {
		_, err := repo.Append(ctx, conv.ID, domain.RoleUser, fmt.Sprintf("m%d", i))
		require.NoError(t, err)
	}

	recent, err := repo.Recent(ctx, conv.ID, 10)
	require.NoError(t, err)
	require.Len(t, recent, 10)
	assert.Equal(t, 5, recent[0].SequenceNumber)
	assert.Equal(t, 14, recent[9].SequenceNumber)
	assert.Equal(t, "m14", recent[9].Content)
}

func TestAppendWithToolCallLinksAndFinalizesAtomically(t *testing.T) {
	ctx := context.Background()
	db := dbtest.NewSQLite(t)
	repo := message.NewMessageRepository(db)
	calls := toolcall.NewToolCallRepository(db)
	conv := newConversation(t, db, "user-a")

	_, err := repo.Append(ctx, conv.ID, domain.RoleUser, "add a task to buy milk")
	require.NoError(t, err)

	call := &domain.ToolCall{
		ConversationID: conv.ID,
		ToolName:       "add_task",
		Input:          datatypes.JSON(`{"user_id":"user-a","title":"buy milk"}`),
	}
	require.NoError(t, calls.CreatePending(ctx, call))
	assert.Equal(t, domain.ToolCallPending, call.Status)

	output := datatypes.JSON(`{"success":true}`)
	completed := call.CreatedAt.Add(3 * time.Millisecond)
	call.Status = domain.ToolCallSuccess
	call.Output = &output
	call.ExecutionTimeMS = 3
	call.CompletedAt = &completed

	reply, err := repo.AppendWithToolCall(ctx, conv.ID, domain.RoleAssistant, "Task created: 'buy milk'", call)
	require.NoError(t, err)
	assert.Equal(t, 1, reply.SequenceNumber)

	stored, err := calls.ListByConversation(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	require.NotNil(t, stored[0].MessageID)
	assert.Equal(t, reply.ID, *stored[0].MessageID)
	assert.Equal(t, domain.ToolCallSuccess, stored[0].Status)
	require.NotNil(t, stored[0].Output)
	assert.JSONEq(t, `{"success":true}`, string(*stored[0].Output))
	require.NotNil(t, stored[0].CompletedAt)
	assert.False(t, stored[0].CompletedAt.Before(stored[0].CreatedAt))
}

func TestAppendWithToolCallRollsBackWhenCallIsMissing(t *testing.T) {
	ctx := context.Background()
	db := dbtest.NewSQLite(t)
	repo := message.NewMessageRepository(db)
	conv := newConversation(t, db, "user-a")

	_, err := repo.AppendWithToolCall(ctx, conv.ID, domain.RoleAssistant, "reply", &domain.ToolCall{ID: 999})
	require.Error(t, err)

	messages, err := repo.ListByConversation(ctx, conv.ID)
	require.NoError(t, err)
	assert.Empty(t, messages)
}
