package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chatech/widget-api/internal/service"
	"github.com/chatech/widget-api/pkg/logger"
)

type fakeChat struct {
	out service.ChatOutput
	err error

	gotInput service.ChatInput
}

func (f *fakeChat) Handle(_ context.Context, in service.ChatInput) (service.ChatOutput, error) {
	f.gotInput = in
	return f.out, f.err
}

func postChat(t *testing.T, h *ChatHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.Header.Set("User-Agent", "widget/1.0")
	rec := httptest.NewRecorder()
	h.Post(rec, req)
	return rec
}

func TestChatPost(t *testing.T) {
	chat := &fakeChat{out: service.ChatOutput{
		Reply:        "¡Hola!",
		SessionToken: "acme-1700000000000-abcd1234",
	}}
	h := NewChatHandler(chat, logger.NewNop())

	rec := postChat(t, h, `{"message":"hola","clientId":"acme","sessionId":"tok","pageUrl":"https://acme.test"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t,
		`{"botResponse":"¡Hola!","sessionId":"acme-1700000000000-abcd1234"}`,
		rec.Body.String())

	require.Equal(t, "acme", chat.gotInput.TenantID)
	require.Equal(t, "tok", chat.gotInput.SessionToken)
	require.Equal(t, "https://acme.test", chat.gotInput.Meta.PageURL)
	require.Equal(t, "widget/1.0", chat.gotInput.Meta.UserAgent)
}

func TestChatPostInvalidBody(t *testing.T) {
	h := NewChatHandler(&fakeChat{}, logger.NewNop())

	rec := postChat(t, h, `{not json`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatPostErrorMapping(t *testing.T) {
	cases := []struct {
		code       service.ErrorCode
		wantStatus int
	}{
		{service.ErrorInvalidInput, http.StatusBadRequest},
		{service.ErrorNotFound, http.StatusNotFound},
		{service.ErrorUpstreamUnavailable, http.StatusServiceUnavailable},
		{service.ErrorUpstreamRateLimited, http.StatusServiceUnavailable},
		{service.ErrorUpstream, http.StatusInternalServerError},
		{service.ErrorInternal, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		chat := &fakeChat{err: &service.Error{Code: tc.code, Reason: "r"}}
		h := NewChatHandler(chat, logger.NewNop())

		rec := postChat(t, h, `{"message":"hola","clientId":"acme"}`)
		require.Equal(t, tc.wantStatus, rec.Code, "code %s", tc.code)
	}
}

func TestChatPostBusyHidesProviderDetail(t *testing.T) {
	chat := &fakeChat{err: &service.Error{
		Code:   service.ErrorUpstreamRateLimited,
		Reason: "completion_rate_limited",
		Err:    errors.New("429 from provider"),
	}}
	h := NewChatHandler(chat, logger.NewNop())

	rec := postChat(t, h, `{"message":"hola","clientId":"acme"}`)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Contains(t, rec.Body.String(), "service busy")
	require.NotContains(t, rec.Body.String(), "provider")
}
