// File: internal/notification/repository.go
package notification

import (
	"context"
	"fmt"
	"net/http"

	"sipaling_preloved_client/internal/common"
	"sipaling_preloved_client/internal/session"
	"sipaling_preloved_client/internal/transport"

	"go.uber.org/zap"
)

// Repository exposes the notification resource group.
type Repository interface {
	List(ctx context.Context) ([]Notification, error)
	MarkRead(ctx context.Context, id int) error
	MarkAllRead(ctx context.Context) error
}

type apiRepository struct {
	client   *transport.Client
	sessions *session.Store
	logger   *zap.Logger
}

var _ Repository = (*apiRepository)(nil)

// NewRepository creates the API-backed notification repository.
func NewRepository(client *transport.Client, sessions *session.Store, logger *zap.Logger) Repository {
	return &apiRepository{
		client:   client,
		sessions: sessions,
		logger:   logger.Named("notification"),
	}
}

// List fetches the caller's inbox, newest first.
func (r *apiRepository) List(ctx context.Context) ([]Notification, error) {
	token := r.sessions.Token()
	if token == "" {
		return nil, common.ErrUnauthenticated
	}

	env, err := transport.Exchange(ctx, r.client, transport.Request{
		Method: http.MethodGet,
		Path:   "/notifications",
		Token:  token,
	})
	if err != nil {
		return nil, err
	}

	dtos, appErr := common.DecodeData[[]NotificationDTO](env)
	if appErr != nil {
		return nil, appErr
	}

	notifications := make([]Notification, 0, len(dtos))
	for _, dto := range dtos {
		notifications = append(notifications, dto.ToDomain())
	}
	return notifications, nil
}

// MarkRead marks one notification read.
func (r *apiRepository) MarkRead(ctx context.Context, id int) error {
	token := r.sessions.Token()
	if token == "" {
		return common.ErrUnauthenticated
	}

	_, err := transport.Exchange(ctx, r.client, transport.Request{
		Method: http.MethodPost,
		Path:   fmt.Sprintf("/notifications/%d/read", id),
		Token:  token,
	})
	if err != nil {
		r.logger.Warn("Failed to mark notification read", zap.Error(err), zap.Int("notificationID", id))
		return err
	}
	return nil
}

// MarkAllRead marks the whole inbox read.
func (r *apiRepository) MarkAllRead(ctx context.Context) error {
	token := r.sessions.Token()
	if token == "" {
		return common.ErrUnauthenticated
	}

	_, err := transport.Exchange(ctx, r.client, transport.Request{
		Method: http.MethodPost,
		Path:   "/notifications/read-all",
		Token:  token,
	})
	if err != nil {
		r.logger.Warn("Failed to mark all notifications read", zap.Error(err))
		return err
	}
	return nil
}
