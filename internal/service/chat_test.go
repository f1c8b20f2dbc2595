package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/chatech/widget-api/internal/llm"
	"github.com/chatech/widget-api/internal/model"
	"github.com/chatech/widget-api/pkg/logger"
)

type fakeTenantResolver struct {
	tenant *model.Tenant
	err    error
}

func (f *fakeTenantResolver) Lookup(_ context.Context, _ string) (*model.Tenant, error) {
	return f.tenant, f.err
}

type fakeConversationResolver struct {
	conv    *model.Conversation
	created bool
	history []model.Message
	err     error

	historyLimit int
}

func (f *fakeConversationResolver) Resolve(_ context.Context, _, _ string, _ model.RequestMeta) (*model.Conversation, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	return f.conv, f.created, nil
}

func (f *fakeConversationResolver) History(_ context.Context, _ int64, limit int) ([]model.Message, error) {
	f.historyLimit = limit
	return f.history, nil
}

type fakeTurnWriter struct {
	mu                sync.Mutex
	messages          []*model.Message
	conversationBumps int
	messageBumps      int
}

func (f *fakeTurnWriter) AppendMessage(_ context.Context, m *model.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, m)
	return nil
}

func (f *fakeTurnWriter) BumpTenantUsage(_ context.Context, _ string, conversations, messages int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.conversationBumps += conversations
	f.messageBumps += messages
	return nil
}

// syncSubmitter runs tasks inline so tests can assert on persistence
// without timing games.
type syncSubmitter struct {
	names []string
}

func (s *syncSubmitter) Submit(name string, fn func(context.Context) error) {
	s.names = append(s.names, name)
	_ = fn(context.Background())
}

type fakeLLM struct {
	resp *llm.CompletionResponse
	err  error

	gotMessages []llm.ChatMessage
}

func (f *fakeLLM) Complete(_ context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	f.gotMessages = req.Messages
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func (f *fakeLLM) Name() string { return "fake" }

func newTestChatService(t *testing.T, client llm.Client, writer *fakeTurnWriter, tasks *syncSubmitter) (*ChatService, *fakeConversationResolver) {
	t.Helper()

	tenants := &fakeTenantResolver{tenant: &model.Tenant{
		ClientID:     "acme",
		Name:         "Acme",
		Status:       model.StatusActive,
		SystemPrompt: "Eres el asistente virtual de Acme.",
	}}
	conversations := &fakeConversationResolver{conv: &model.Conversation{
		ID:        7,
		TenantID:  "acme",
		SessionID: "acme-1700000000000-abcd1234",
	}}

	svc := NewChatService(tenants, conversations, writer, client, tasks, ChatConfig{
		Model:       "gpt-4o-mini",
		Temperature: 0.7,
		MaxTokens:   500,
		Timeout:     5 * time.Second,
	}, logger.NewNop())

	return svc, conversations
}

func TestChatHandleSuccess(t *testing.T) {
	client := &fakeLLM{resp: &llm.CompletionResponse{
		Content:   "¡Hola! ¿En qué puedo ayudarte?",
		TokensIn:  120,
		TokensOut: 18,
		LatencyMs: 420,
	}}
	writer := &fakeTurnWriter{}
	tasks := &syncSubmitter{}
	svc, _ := newTestChatService(t, client, writer, tasks)

	out, err := svc.Handle(context.Background(), ChatInput{
		TenantID: "acme",
		Message:  "  hola  ",
	})
	require.NoError(t, err)
	require.Equal(t, "¡Hola! ¿En qué puedo ayudarte?", out.Reply)
	require.Equal(t, "acme-1700000000000-abcd1234", out.SessionToken)

	// System prompt first, user turn last, trimmed.
	require.Equal(t, "system", client.gotMessages[0].Role)
	require.Equal(t, "hola", client.gotMessages[len(client.gotMessages)-1].Content)

	// Two messages and one usage bump queued.
	require.Equal(t, []string{"append_user_message", "append_assistant_message", "bump_tenant_usage"}, tasks.names)
	require.Len(t, writer.messages, 2)
	require.Equal(t, model.RoleUser, writer.messages[0].Role)
	require.Equal(t, model.RoleAssistant, writer.messages[1].Role)
	require.NotNil(t, writer.messages[1].TokensIn)
	require.Equal(t, 120, *writer.messages[1].TokensIn)
	require.NotNil(t, writer.messages[1].CostUSD)
	require.Equal(t, 2, writer.messageBumps)
	require.Equal(t, 0, writer.conversationBumps)
}

func TestChatHandleNewSessionBumpsConversationCount(t *testing.T) {
	client := &fakeLLM{resp: &llm.CompletionResponse{Content: "ok"}}
	writer := &fakeTurnWriter{}
	tasks := &syncSubmitter{}
	svc, conversations := newTestChatService(t, client, writer, tasks)
	conversations.created = true

	_, err := svc.Handle(context.Background(), ChatInput{TenantID: "acme", Message: "hola"})
	require.NoError(t, err)

	// A freshly minted session counts toward the tenant's conversation
	// total; a reused one does not.
	require.Equal(t, 1, writer.conversationBumps)
	require.Equal(t, 2, writer.messageBumps)

	conversations.created = false
	_, err = svc.Handle(context.Background(), ChatInput{TenantID: "acme", Message: "precio?"})
	require.NoError(t, err)

	require.Equal(t, 1, writer.conversationBumps)
	require.Equal(t, 4, writer.messageBumps)
}

func TestChatHandleEmptyMessage(t *testing.T) {
	svc, _ := newTestChatService(t, &fakeLLM{}, &fakeTurnWriter{}, &syncSubmitter{})

	_, err := svc.Handle(context.Background(), ChatInput{TenantID: "acme", Message: "   "})

	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	require.Equal(t, ErrorInvalidInput, svcErr.Code)
}

func TestChatHandleTruncatesLongMessage(t *testing.T) {
	client := &fakeLLM{resp: &llm.CompletionResponse{Content: "ok"}}
	svc, _ := newTestChatService(t, client, &fakeTurnWriter{}, &syncSubmitter{})

	_, err := svc.Handle(context.Background(), ChatInput{
		TenantID: "acme",
		Message:  strings.Repeat("a", 5000),
	})
	require.NoError(t, err)

	sent := client.gotMessages[len(client.gotMessages)-1].Content
	require.Len(t, sent, maxMessageLength)
}

func TestChatHandleHistoryWindow(t *testing.T) {
	client := &fakeLLM{resp: &llm.CompletionResponse{Content: "ok"}}
	svc, conversations := newTestChatService(t, client, &fakeTurnWriter{}, &syncSubmitter{})

	for i := 0; i < 5; i++ {
		conversations.history = append(conversations.history,
			model.Message{Role: model.RoleUser, Content: "q"},
			model.Message{Role: model.RoleAssistant, Content: "a"},
		)
	}

	_, err := svc.Handle(context.Background(), ChatInput{TenantID: "acme", Message: "hola"})
	require.NoError(t, err)

	require.Equal(t, historyWindow, conversations.historyLimit)
	// system + 10 history + new user turn
	require.Len(t, client.gotMessages, 12)
}

func TestChatHandleUpstreamRateLimited(t *testing.T) {
	client := &fakeLLM{err: llm.ErrRateLimited}
	svc, _ := newTestChatService(t, client, &fakeTurnWriter{}, &syncSubmitter{})

	_, err := svc.Handle(context.Background(), ChatInput{TenantID: "acme", Message: "hola"})

	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	require.Equal(t, ErrorUpstreamRateLimited, svcErr.Code)
}

func TestChatHandleUpstreamError(t *testing.T) {
	client := &fakeLLM{err: errors.New("boom")}
	writer := &fakeTurnWriter{}
	tasks := &syncSubmitter{}
	svc, _ := newTestChatService(t, client, writer, tasks)

	_, err := svc.Handle(context.Background(), ChatInput{TenantID: "acme", Message: "hola"})

	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	require.Equal(t, ErrorUpstream, svcErr.Code)

	// Failed turns must not be persisted.
	require.Empty(t, tasks.names)
	require.Empty(t, writer.messages)
}

func TestChatHandleNoClientConfigured(t *testing.T) {
	svc, _ := newTestChatService(t, nil, &fakeTurnWriter{}, &syncSubmitter{})

	_, err := svc.Handle(context.Background(), ChatInput{TenantID: "acme", Message: "hola"})

	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	require.Equal(t, ErrorUpstreamUnavailable, svcErr.Code)
}
