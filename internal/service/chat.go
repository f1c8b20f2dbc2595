package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/chatech/widget-api/internal/llm"
	"github.com/chatech/widget-api/internal/model"
	"github.com/chatech/widget-api/pkg/logger"
	"github.com/chatech/widget-api/pkg/metrics"
)

const (
	// maxMessageLength caps raw user input before it reaches the
	// completion gateway. Longer input is truncated, not rejected.
	maxMessageLength = 2000

	// historyWindow bounds the messages replayed into each completion
	// call. A sliding window, not a retention policy.
	historyWindow = 20
)

// tenantResolver resolves active tenants.
type tenantResolver interface {
	Lookup(ctx context.Context, tenantID string) (*model.Tenant, error)
}

// conversationResolver binds session tokens to conversations.
type conversationResolver interface {
	Resolve(ctx context.Context, tenantID, sessionToken string, meta model.RequestMeta) (*model.Conversation, bool, error)
	History(ctx context.Context, conversationID int64, limit int) ([]model.Message, error)
}

// turnWriter persists chat turns and aggregate counters.
type turnWriter interface {
	AppendMessage(ctx context.Context, m *model.Message) error
	BumpTenantUsage(ctx context.Context, clientID string, conversations, messages int) error
}

// taskSubmitter accepts best-effort background tasks.
type taskSubmitter interface {
	Submit(name string, fn func(context.Context) error)
}

// ChatConfig holds the fixed completion parameters. These are policy
// constants, never caller-supplied.
type ChatConfig struct {
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// ChatService orchestrates one chat turn: tenant lookup, session
// resolution, history window, completion call, deferred persistence.
type ChatService struct {
	tenants       tenantResolver
	conversations conversationResolver
	writer        turnWriter
	llmClient     llm.Client
	tasks         taskSubmitter
	cfg           ChatConfig
	logger        *logger.Logger
}

// NewChatService creates a chat service. llmClient may be nil when no
// completion credential is configured; turns then fail with
// UPSTREAM_UNAVAILABLE without touching the upstream.
func NewChatService(
	tenants tenantResolver,
	conversations conversationResolver,
	writer turnWriter,
	llmClient llm.Client,
	tasks taskSubmitter,
	cfg ChatConfig,
	log *logger.Logger,
) *ChatService {
	return &ChatService{
		tenants:       tenants,
		conversations: conversations,
		writer:        writer,
		llmClient:     llmClient,
		tasks:         tasks,
		cfg:           cfg,
		logger:        log,
	}
}

// ChatInput is one inbound chat turn.
type ChatInput struct {
	TenantID     string
	Message      string
	SessionToken string
	Meta         model.RequestMeta
}

// ChatOutput is the reply for one chat turn.
type ChatOutput struct {
	Reply        string
	SessionToken string
}

// Handle drives one chat turn. The reply is returned as soon as the
// completion call succeeds; message persistence and counter updates run
// in the background and never fail the turn.
func (s *ChatService) Handle(ctx context.Context, in ChatInput) (ChatOutput, error) {
	message := strings.TrimSpace(in.Message)
	if message == "" {
		return ChatOutput{}, newError(ErrorInvalidInput, "empty_message", nil)
	}
	if runes := []rune(message); len(runes) > maxMessageLength {
		message = string(runes[:maxMessageLength])
	}

	tenant, err := s.tenants.Lookup(ctx, in.TenantID)
	if err != nil {
		return ChatOutput{}, err
	}

	conv, created, err := s.conversations.Resolve(ctx, tenant.ClientID, in.SessionToken, in.Meta)
	if err != nil {
		return ChatOutput{}, err
	}

	history, err := s.conversations.History(ctx, conv.ID, historyWindow)
	if err != nil {
		return ChatOutput{}, err
	}

	if s.llmClient == nil {
		return ChatOutput{}, newError(ErrorUpstreamUnavailable, "completion_api_not_configured", nil)
	}

	resp, err := s.complete(ctx, tenant.SystemPrompt, history, message)
	if err != nil {
		metrics.ChatTurnsTotal.WithLabelValues(tenant.ClientID, "error").Inc()
		if errors.Is(err, llm.ErrRateLimited) {
			return ChatOutput{}, newError(ErrorUpstreamRateLimited, "completion_rate_limited", err)
		}
		return ChatOutput{}, newError(ErrorUpstream, "completion_failed", err)
	}

	cost := llm.Cost(resp.TokensIn, resp.TokensOut)
	metrics.ChatTurnsTotal.WithLabelValues(tenant.ClientID, "ok").Inc()
	metrics.RecordCompletion(s.cfg.Model, "ok",
		float64(resp.LatencyMs)/1000.0, resp.TokensIn, resp.TokensOut, cost)

	log := s.logger.WithRequest(logger.CorrelationID(ctx), tenant.ClientID, conv.SessionID)
	s.persistTurn(log, tenant.ClientID, conv.ID, created, message, resp, cost)

	return ChatOutput{Reply: resp.Content, SessionToken: conv.SessionID}, nil
}

// complete builds the bounded message list (system prompt, history
// window, new user turn) and calls the completion API under an explicit
// deadline.
func (s *ChatService) complete(ctx context.Context, systemPrompt string, history []model.Message, userText string) (*llm.CompletionResponse, error) {
	messages := make([]llm.ChatMessage, 0, len(history)+2)
	messages = append(messages, llm.ChatMessage{Role: string(model.RoleSystem), Content: systemPrompt})
	for _, m := range history {
		messages = append(messages, llm.ChatMessage{Role: string(m.Role), Content: m.Content})
	}
	messages = append(messages, llm.ChatMessage{Role: string(model.RoleUser), Content: userText})

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	return s.llmClient.Complete(ctx, &llm.CompletionRequest{
		Model:       s.cfg.Model,
		Messages:    messages,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
}

// persistTurn submits the user turn, the assistant turn and the usage
// counters as background tasks. A crash before they run loses this
// turn's persistence; that gap is accepted in exchange for response
// latency.
func (s *ChatService) persistTurn(log *logger.Logger, tenantID string, conversationID int64, created bool, userText string, resp *llm.CompletionResponse, cost float64) {
	s.tasks.Submit("append_user_message", func(ctx context.Context) error {
		return s.writer.AppendMessage(ctx, &model.Message{
			ConversationID: conversationID,
			Role:           model.RoleUser,
			Content:        userText,
		})
	})

	tokensIn, tokensOut := resp.TokensIn, resp.TokensOut
	latency := resp.LatencyMs
	s.tasks.Submit("append_assistant_message", func(ctx context.Context) error {
		return s.writer.AppendMessage(ctx, &model.Message{
			ConversationID: conversationID,
			Role:           model.RoleAssistant,
			Content:        resp.Content,
			TokensIn:       &tokensIn,
			TokensOut:      &tokensOut,
			LatencyMs:      &latency,
			CostUSD:        &cost,
		})
	})

	conversations := 0
	if created {
		conversations = 1
	}
	s.tasks.Submit("bump_tenant_usage", func(ctx context.Context) error {
		return s.writer.BumpTenantUsage(ctx, tenantID, conversations, 2)
	})

	log.Debug("turn persistence queued",
		zap.Int64("conversation_id", conversationID),
		zap.Bool("new_conversation", created),
	)
}
