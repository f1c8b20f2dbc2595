package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/chatech/widget-api/internal/model"
	"github.com/chatech/widget-api/internal/store"
)

type fakeConversationStore struct {
	conversations map[string]*model.Conversation
	created       *model.Conversation
}

func (f *fakeConversationStore) GetConversationBySession(_ context.Context, clientID, sessionID string) (*model.Conversation, error) {
	c, ok := f.conversations[clientID+"/"+sessionID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return c, nil
}

func (f *fakeConversationStore) CreateConversation(_ context.Context, c *model.Conversation) (*model.Conversation, error) {
	c.ID = 42
	f.created = c
	return c, nil
}

func (f *fakeConversationStore) RecentMessages(_ context.Context, _ int64, _ int) ([]model.Message, error) {
	return nil, nil
}

func (f *fakeConversationStore) AppendMessage(_ context.Context, _ *model.Message) error {
	return nil
}

func (f *fakeConversationStore) BumpTenantUsage(_ context.Context, _ string, _, _ int) error {
	return nil
}

func TestResolveExistingSession(t *testing.T) {
	existing := &model.Conversation{ID: 9, TenantID: "acme", SessionID: "acme-1-deadbeef"}
	s := &fakeConversationStore{conversations: map[string]*model.Conversation{
		"acme/acme-1-deadbeef": existing,
	}}
	svc := NewConversationService(s)

	conv, created, err := svc.Resolve(context.Background(), "acme", "acme-1-deadbeef", model.RequestMeta{})
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, int64(9), conv.ID)
	require.Nil(t, s.created)
}

func TestResolveUnknownTokenMintsFreshSession(t *testing.T) {
	s := &fakeConversationStore{conversations: map[string]*model.Conversation{}}
	svc := NewConversationService(s)
	svc.now = func() time.Time { return time.UnixMilli(1700000000000) }

	conv, created, err := svc.Resolve(context.Background(), "acme", "forged-token", model.RequestMeta{
		PageURL:    "https://acme.test/productos",
		UserAgent:  "widget/1.0",
		RemoteAddr: "203.0.113.9",
	})
	require.NoError(t, err)
	require.True(t, created)

	// The forged token is discarded, never stored.
	require.NotEqual(t, "forged-token", conv.SessionID)
	require.Regexp(t, regexp.MustCompile(`^acme-1700000000000-[0-9a-f]{8}$`), conv.SessionID)
	require.Equal(t, "https://acme.test/productos", s.created.PageURL)
	require.Equal(t, "widget/1.0", s.created.UserAgent)
}

func TestResolveEmptyTokenCreatesConversation(t *testing.T) {
	s := &fakeConversationStore{conversations: map[string]*model.Conversation{}}
	svc := NewConversationService(s)

	conv, created, err := svc.Resolve(context.Background(), "acme", "", model.RequestMeta{})
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, int64(42), conv.ID)
	require.NotEmpty(t, conv.SessionID)
}
