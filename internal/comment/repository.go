// File: internal/comment/repository.go
package comment

import (
	"context"
	"fmt"
	"net/http"

	"sipaling_preloved_client/internal/common"
	"sipaling_preloved_client/internal/session"
	"sipaling_preloved_client/internal/transport"

	"go.uber.org/zap"
)

// Repository exposes the comment resource group.
type Repository interface {
	ListByProduct(ctx context.Context, productID int) ([]Comment, error)
	Create(ctx context.Context, req CreateCommentRequest) (*Comment, error)
}

type apiRepository struct {
	client   *transport.Client
	sessions *session.Store
	logger   *zap.Logger
}

var _ Repository = (*apiRepository)(nil)

// NewRepository creates the API-backed comment repository.
func NewRepository(client *transport.Client, sessions *session.Store, logger *zap.Logger) Repository {
	return &apiRepository{
		client:   client,
		sessions: sessions,
		logger:   logger.Named("comment"),
	}
}

// ListByProduct fetches the full two-level comment tree of a product.
func (r *apiRepository) ListByProduct(ctx context.Context, productID int) ([]Comment, error) {
	env, err := transport.Exchange(ctx, r.client, transport.Request{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/products/%d/comments", productID),
		Token:  r.sessions.Token(),
	})
	if err != nil {
		return nil, err
	}

	dtos, appErr := common.DecodeData[[]CommentDTO](env)
	if appErr != nil {
		return nil, appErr
	}

	comments := make([]Comment, 0, len(dtos))
	for _, dto := range dtos {
		comments = append(comments, dto.ToDomain())
	}
	return comments, nil
}

// Create posts a comment or reply. The comments endpoint has been observed
// answering with an HTML crash page when the backend database is broken;
// envelope decoding turns that into a ServerMisconfigured error instead of
// raw HTML reaching the user.
func (r *apiRepository) Create(ctx context.Context, req CreateCommentRequest) (*Comment, error) {
	token := r.sessions.Token()
	if token == "" {
		return nil, common.ErrUnauthenticated
	}
	if appErr := common.ValidateStruct(req); appErr != nil {
		return nil, appErr
	}

	env, err := transport.Exchange(ctx, r.client, transport.Request{
		Method:   http.MethodPost,
		Path:     "/comments",
		JSONBody: req,
		Token:    token,
	})
	if err != nil {
		r.logger.Warn("Comment creation failed", zap.Error(err), zap.Int("productID", req.ProductID))
		return nil, err
	}

	dto, appErr := common.DecodeData[CommentDTO](env)
	if appErr != nil {
		return nil, appErr
	}

	created := dto.ToDomain()
	return &created, nil
}
