// File: internal/push/service.go
package push

import (
	"context"
	"net/http"
	"strconv"

	"sipaling_preloved_client/internal/common"
	"sipaling_preloved_client/internal/session"
	"sipaling_preloved_client/internal/transport"

	"go.uber.org/zap"
)

// Message is an inbound push payload. Tapping a delivered notification deep
// links to the product detail screen via ProductID.
type Message struct {
	Title     string
	Body      string
	ProductID int
}

// ParseMessage extracts the known fields from a raw push data map. The body
// arrives under either "message" or "body" depending on the sender path.
func ParseMessage(data map[string]string) Message {
	msg := Message{
		Title: data["title"],
		Body:  data["message"],
	}
	if msg.Body == "" {
		msg.Body = data["body"]
	}
	if raw, ok := data["product_id"]; ok {
		if id, err := strconv.Atoi(raw); err == nil {
			msg.ProductID = id
		}
	}
	return msg
}

type tokenRequest struct {
	FCMToken string `json:"fcm_token"`
}

// Service forwards FCM registration tokens to the backend. A token that
// arrives while logged out is persisted and flushed on the next successful
// login, so it is never lost to a refresh/login ordering race.
type Service struct {
	client   *transport.Client
	sessions *session.Store
	logger   *zap.Logger
}

// NewService creates the push token service.
func NewService(client *transport.Client, sessions *session.Store, logger *zap.Logger) *Service {
	return &Service{
		client:   client,
		sessions: sessions,
		logger:   logger.Named("push"),
	}
}

// OnTokenRefresh handles a token-refresh event from the push SDK. With an
// active session the token is forwarded immediately; otherwise it is stored
// for the next login.
func (s *Service) OnTokenRefresh(ctx context.Context, token string) {
	if token == "" {
		return
	}
	if !s.sessions.IsAuthenticated() {
		s.logger.Info("Push token refreshed while logged out, storing for next login")
		if err := s.sessions.SavePendingPushToken(token); err != nil {
			s.logger.Warn("Could not persist pending push token", zap.Error(err))
		}
		return
	}
	s.forward(ctx, token)
}

// OnLogin flushes a pending push token, if any. Implements the auth
// view-model's post-login hook.
func (s *Service) OnLogin(ctx context.Context) {
	token, ok := s.sessions.TakePendingPushToken()
	if !ok {
		return
	}
	s.logger.Info("Flushing pending push token after login")
	s.forward(ctx, token)
}

// forward sends the token. A failure is logged and the token re-queued so a
// later login retries it; push registration must never surface an error to
// the user.
func (s *Service) forward(ctx context.Context, token string) {
	_, err := transport.Exchange(ctx, s.client, transport.Request{
		Method:   http.MethodPost,
		Path:     "/fcm-token",
		JSONBody: tokenRequest{FCMToken: token},
		Token:    s.sessions.Token(),
	})
	if err != nil {
		s.logger.Warn("Failed to forward push token", zap.Error(err))
		if appErr, ok := common.IsAppError(err); ok && appErr.Retryable() {
			if saveErr := s.sessions.SavePendingPushToken(token); saveErr != nil {
				s.logger.Warn("Could not re-queue push token", zap.Error(saveErr))
			}
		}
		return
	}
	s.logger.Info("Push token forwarded")
}
