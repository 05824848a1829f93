// File: internal/auth/repository.go
package auth

import (
	"context"
	"net/http"

	"sipaling_preloved_client/internal/common"
	"sipaling_preloved_client/internal/session"
	"sipaling_preloved_client/internal/transport"

	"go.uber.org/zap"
)

// Repository exposes the auth resource group.
type Repository interface {
	Login(ctx context.Context, req LoginRequest) (*User, error)
	Register(ctx context.Context, req RegisterRequest) (*User, error)
	Logout(ctx context.Context) error
	Profile(ctx context.Context) (*User, error)
	UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*User, error)
}

type apiRepository struct {
	client   *transport.Client
	sessions *session.Store
	logger   *zap.Logger
}

var _ Repository = (*apiRepository)(nil)

// NewRepository creates the API-backed auth repository.
func NewRepository(client *transport.Client, sessions *session.Store, logger *zap.Logger) Repository {
	return &apiRepository{
		client:   client,
		sessions: sessions,
		logger:   logger.Named("auth"),
	}
}

// Login authenticates and persists the session on success.
func (r *apiRepository) Login(ctx context.Context, req LoginRequest) (*User, error) {
	if appErr := common.ValidateStruct(req); appErr != nil {
		return nil, appErr
	}

	env, err := transport.Exchange(ctx, r.client, transport.Request{
		Method:   http.MethodPost,
		Path:     "/login",
		JSONBody: req,
	})
	if err != nil {
		r.logger.Warn("Login failed", zap.Error(err))
		return nil, err
	}

	payload, appErr := common.DecodeData[authPayloadDTO](env)
	if appErr != nil {
		return nil, appErr
	}

	user := payload.User.ToDomain()
	if err := r.sessions.Save(payload.Token, user.ID, user.Name, user.Email); err != nil {
		return nil, common.NewAppError(common.KindHTTPError, "Gagal menyimpan sesi login.").WithDetails(err.Error())
	}

	r.logger.Info("User logged in", zap.Int("userID", user.ID))
	return &user, nil
}

// Register creates an account and persists the session on success.
func (r *apiRepository) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	if appErr := common.ValidateStruct(req); appErr != nil {
		return nil, appErr
	}

	env, err := transport.Exchange(ctx, r.client, transport.Request{
		Method:   http.MethodPost,
		Path:     "/register",
		JSONBody: req,
	})
	if err != nil {
		r.logger.Warn("Registration failed", zap.Error(err))
		return nil, err
	}

	payload, appErr := common.DecodeData[authPayloadDTO](env)
	if appErr != nil {
		return nil, appErr
	}

	user := payload.User.ToDomain()
	if err := r.sessions.Save(payload.Token, user.ID, user.Name, user.Email); err != nil {
		return nil, common.NewAppError(common.KindHTTPError, "Gagal menyimpan sesi login.").WithDetails(err.Error())
	}

	r.logger.Info("User registered", zap.Int("userID", user.ID))
	return &user, nil
}

// Logout clears the local session unconditionally. The remote revocation is
// best-effort: its failure is logged, never surfaced, so local logout always
// succeeds and repeated calls are harmless.
func (r *apiRepository) Logout(ctx context.Context) error {
	token := r.sessions.Token()
	if token != "" {
		_, err := transport.Exchange(ctx, r.client, transport.Request{
			Method: http.MethodPost,
			Path:   "/logout",
			Token:  token,
		})
		if err != nil {
			r.logger.Warn("Remote logout failed, clearing local session anyway", zap.Error(err))
		}
	}

	r.sessions.Clear()
	return nil
}

// Profile fetches the current account. Requires an active session.
func (r *apiRepository) Profile(ctx context.Context) (*User, error) {
	token := r.sessions.Token()
	if token == "" {
		return nil, common.ErrUnauthenticated
	}

	env, err := transport.Exchange(ctx, r.client, transport.Request{
		Method: http.MethodGet,
		Path:   "/user",
		Token:  token,
	})
	if err != nil {
		return nil, err
	}

	dto, appErr := common.DecodeData[UserDTO](env)
	if appErr != nil {
		return nil, appErr
	}

	user := dto.ToDomain()
	return &user, nil
}

// UpdateProfile edits the account, optionally with a new profile image. The
// backend cannot bind multipart PUT bodies, so the call goes out as POST with
// a _method=PUT override part.
func (r *apiRepository) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*User, error) {
	token := r.sessions.Token()
	if token == "" {
		return nil, common.ErrUnauthenticated
	}
	if appErr := common.ValidateStruct(req); appErr != nil {
		return nil, appErr
	}

	treq := transport.Request{
		Method:      http.MethodPut,
		Path:        "/user",
		FormFields:  req.formFields(),
		Token:       token,
		OverridePut: true,
	}
	if req.Image != nil {
		treq.Files = []transport.FilePart{*req.Image}
	}

	env, err := transport.Exchange(ctx, r.client, treq)
	if err != nil {
		r.logger.Warn("Profile update failed", zap.Error(err))
		return nil, err
	}

	dto, appErr := common.DecodeData[UserDTO](env)
	if appErr != nil {
		return nil, appErr
	}

	user := dto.ToDomain()
	// Keep the stored identity in step with the last successful server write.
	if err := r.sessions.Save(token, user.ID, user.Name, user.Email); err != nil {
		r.logger.Warn("Failed to refresh stored identity after profile update", zap.Error(err))
	}

	r.logger.Info("Profile updated", zap.Int("userID", user.ID))
	return &user, nil
}
