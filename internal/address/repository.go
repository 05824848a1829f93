// File: internal/address/repository.go
package address

import (
	"context"
	"fmt"
	"net/http"

	"sipaling_preloved_client/internal/common"
	"sipaling_preloved_client/internal/session"
	"sipaling_preloved_client/internal/transport"

	"go.uber.org/zap"
)

// Repository exposes the address resource group. Every operation requires an
// active session: addresses are always user-owned.
type Repository interface {
	List(ctx context.Context) ([]Address, error)
	Create(ctx context.Context, req SaveAddressRequest) (*Address, error)
	Update(ctx context.Context, id int, req SaveAddressRequest) (*Address, error)
	Delete(ctx context.Context, id int) error
}

type apiRepository struct {
	client   *transport.Client
	sessions *session.Store
	logger   *zap.Logger
}

var _ Repository = (*apiRepository)(nil)

// NewRepository creates the API-backed address repository.
func NewRepository(client *transport.Client, sessions *session.Store, logger *zap.Logger) Repository {
	return &apiRepository{
		client:   client,
		sessions: sessions,
		logger:   logger.Named("address"),
	}
}

// List fetches the caller's saved addresses.
func (r *apiRepository) List(ctx context.Context) ([]Address, error) {
	token := r.sessions.Token()
	if token == "" {
		return nil, common.ErrUnauthenticated
	}

	env, err := transport.Exchange(ctx, r.client, transport.Request{
		Method: http.MethodGet,
		Path:   "/addresses",
		Token:  token,
	})
	if err != nil {
		return nil, err
	}

	dtos, appErr := common.DecodeData[[]AddressDTO](env)
	if appErr != nil {
		return nil, appErr
	}

	addresses := make([]Address, 0, len(dtos))
	for _, dto := range dtos {
		addresses = append(addresses, dto.ToDomain())
	}
	return addresses, nil
}

// Create saves a new address.
func (r *apiRepository) Create(ctx context.Context, req SaveAddressRequest) (*Address, error) {
	token := r.sessions.Token()
	if token == "" {
		return nil, common.ErrUnauthenticated
	}
	if appErr := common.ValidateStruct(req); appErr != nil {
		return nil, appErr
	}

	env, err := transport.Exchange(ctx, r.client, transport.Request{
		Method:   http.MethodPost,
		Path:     "/addresses",
		JSONBody: req,
		Token:    token,
	})
	if err != nil {
		r.logger.Warn("Address creation failed", zap.Error(err))
		return nil, err
	}

	dto, appErr := common.DecodeData[AddressDTO](env)
	if appErr != nil {
		return nil, appErr
	}

	addr := dto.ToDomain()
	r.logger.Info("Address created", zap.Int("addressID", addr.ID))
	return &addr, nil
}

// Update edits an existing address. Plain JSON, so a native PUT works here;
// the method override is only needed for multipart bodies.
func (r *apiRepository) Update(ctx context.Context, id int, req SaveAddressRequest) (*Address, error) {
	token := r.sessions.Token()
	if token == "" {
		return nil, common.ErrUnauthenticated
	}
	if appErr := common.ValidateStruct(req); appErr != nil {
		return nil, appErr
	}

	env, err := transport.Exchange(ctx, r.client, transport.Request{
		Method:   http.MethodPut,
		Path:     fmt.Sprintf("/addresses/%d", id),
		JSONBody: req,
		Token:    token,
	})
	if err != nil {
		r.logger.Warn("Address update failed", zap.Error(err), zap.Int("addressID", id))
		return nil, err
	}

	dto, appErr := common.DecodeData[AddressDTO](env)
	if appErr != nil {
		return nil, appErr
	}

	addr := dto.ToDomain()
	return &addr, nil
}

// Delete removes an address.
func (r *apiRepository) Delete(ctx context.Context, id int) error {
	token := r.sessions.Token()
	if token == "" {
		return common.ErrUnauthenticated
	}

	_, err := transport.Exchange(ctx, r.client, transport.Request{
		Method: http.MethodDelete,
		Path:   fmt.Sprintf("/addresses/%d", id),
		Token:  token,
	})
	if err != nil {
		r.logger.Warn("Address deletion failed", zap.Error(err), zap.Int("addressID", id))
		return err
	}
	return nil
}
