// File: internal/product/repository.go
package product

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"sipaling_preloved_client/internal/common"
	"sipaling_preloved_client/internal/session"
	"sipaling_preloved_client/internal/transport"

	"go.uber.org/zap"
)

// Repository exposes the product resource group.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	Search(ctx context.Context, query string) ([]Product, error)
	Detail(ctx context.Context, id int) (*Product, error)
	MyProducts(ctx context.Context) ([]Product, error)
	Favorites(ctx context.Context) ([]Product, error)
	Create(ctx context.Context, req CreateProductRequest) (*Product, error)
	Update(ctx context.Context, id int, req UpdateProductRequest) (*Product, error)
	Delete(ctx context.Context, id int) error
	ToggleFavorite(ctx context.Context, id int) (bool, error)
}

// Backend messages that mean "nothing to show", not "request failed". My
// products and favorites degrade to empty lists on these.
var emptyListMarkers = []string{"belum ada", "tidak ada produk"}

func isRecognizedEmpty(err error) bool {
	appErr, ok := common.IsAppError(err)
	if !ok {
		return false
	}
	lower := strings.ToLower(appErr.Message)
	for _, marker := range emptyListMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

type apiRepository struct {
	client   *transport.Client
	sessions *session.Store
	logger   *zap.Logger
}

var _ Repository = (*apiRepository)(nil)

// NewRepository creates the API-backed product repository.
func NewRepository(client *transport.Client, sessions *session.Store, logger *zap.Logger) Repository {
	return &apiRepository{
		client:   client,
		sessions: sessions,
		logger:   logger.Named("product"),
	}
}

// viewerID returns the logged-in user's id, or 0 for anonymous browsing.
func (r *apiRepository) viewerID() int {
	id, ok := r.sessions.UserID()
	if !ok {
		return 0
	}
	return id
}

// fetchList performs a GET that returns a product collection. The token is
// attached when present so the backend can resolve per-user favorite flags;
// browsing itself does not require auth.
func (r *apiRepository) fetchList(ctx context.Context, path string, query url.Values) ([]Product, error) {
	env, err := transport.Exchange(ctx, r.client, transport.Request{
		Method: http.MethodGet,
		Path:   path,
		Query:  query,
		Token:  r.sessions.Token(),
	})
	if err != nil {
		return nil, err
	}

	dtos, appErr := common.DecodeData[[]ProductDTO](env)
	if appErr != nil {
		return nil, appErr
	}

	viewer := r.viewerID()
	products := make([]Product, 0, len(dtos))
	for _, dto := range dtos {
		products = append(products, dto.ToDomain(viewer))
	}
	return products, nil
}

// List fetches the public product feed.
func (r *apiRepository) List(ctx context.Context) ([]Product, error) {
	return r.fetchList(ctx, "/products", nil)
}

// Search fetches products matching the query.
func (r *apiRepository) Search(ctx context.Context, query string) ([]Product, error) {
	q := url.Values{}
	q.Set("query", query)
	return r.fetchList(ctx, "/products/search", q)
}

// Detail fetches a single product.
func (r *apiRepository) Detail(ctx context.Context, id int) (*Product, error) {
	env, err := transport.Exchange(ctx, r.client, transport.Request{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/products/%d", id),
		Token:  r.sessions.Token(),
	})
	if err != nil {
		return nil, err
	}

	dto, appErr := common.DecodeData[ProductDTO](env)
	if appErr != nil {
		return nil, appErr
	}

	product := dto.ToDomain(r.viewerID())
	return &product, nil
}

// MyProducts fetches the caller's own listings. A recognized "nothing yet"
// rejection is an empty list, not an error.
func (r *apiRepository) MyProducts(ctx context.Context) ([]Product, error) {
	if !r.sessions.IsAuthenticated() {
		return nil, common.ErrUnauthenticated
	}
	products, err := r.fetchList(ctx, "/my-products", nil)
	if err != nil && isRecognizedEmpty(err) {
		return []Product{}, nil
	}
	return products, err
}

// Favorites fetches the caller's wishlist, degrading a recognized "no
// favorites" rejection to an empty list.
func (r *apiRepository) Favorites(ctx context.Context) ([]Product, error) {
	if !r.sessions.IsAuthenticated() {
		return nil, common.ErrUnauthenticated
	}
	products, err := r.fetchList(ctx, "/favorites", nil)
	if err != nil && isRecognizedEmpty(err) {
		return []Product{}, nil
	}
	return products, err
}

// Create lists a new item. Always multipart: the image part is optional but
// the string fields travel as form parts either way.
func (r *apiRepository) Create(ctx context.Context, req CreateProductRequest) (*Product, error) {
	token := r.sessions.Token()
	if token == "" {
		return nil, common.ErrUnauthenticated
	}
	if appErr := common.ValidateStruct(req); appErr != nil {
		return nil, appErr
	}

	treq := transport.Request{
		Method:     http.MethodPost,
		Path:       "/products",
		FormFields: req.formFields(),
		Token:      token,
	}
	if req.Image != nil {
		treq.Files = []transport.FilePart{*req.Image}
	}

	env, err := transport.Exchange(ctx, r.client, treq)
	if err != nil {
		r.logger.Warn("Product creation failed", zap.Error(err))
		return nil, err
	}

	dto, appErr := common.DecodeData[ProductDTO](env)
	if appErr != nil {
		return nil, appErr
	}

	product := dto.ToDomain(r.viewerID())
	r.logger.Info("Product created", zap.Int("productID", product.ID))
	return &product, nil
}

// Update edits an owned item via POST with a _method=PUT override.
func (r *apiRepository) Update(ctx context.Context, id int, req UpdateProductRequest) (*Product, error) {
	token := r.sessions.Token()
	if token == "" {
		return nil, common.ErrUnauthenticated
	}
	if appErr := common.ValidateStruct(req); appErr != nil {
		return nil, appErr
	}

	treq := transport.Request{
		Method:      http.MethodPut,
		Path:        fmt.Sprintf("/products/%d", id),
		FormFields:  req.formFields(),
		Token:       token,
		OverridePut: true,
	}
	if req.Image != nil {
		treq.Files = []transport.FilePart{*req.Image}
	}

	env, err := transport.Exchange(ctx, r.client, treq)
	if err != nil {
		r.logger.Warn("Product update failed", zap.Error(err), zap.Int("productID", id))
		return nil, err
	}

	dto, appErr := common.DecodeData[ProductDTO](env)
	if appErr != nil {
		return nil, appErr
	}

	product := dto.ToDomain(r.viewerID())
	r.logger.Info("Product updated", zap.Int("productID", product.ID))
	return &product, nil
}

// Delete removes an owned item.
func (r *apiRepository) Delete(ctx context.Context, id int) error {
	token := r.sessions.Token()
	if token == "" {
		return common.ErrUnauthenticated
	}

	_, err := transport.Exchange(ctx, r.client, transport.Request{
		Method: http.MethodDelete,
		Path:   fmt.Sprintf("/products/%d", id),
		Token:  token,
	})
	if err != nil {
		r.logger.Warn("Product deletion failed", zap.Error(err), zap.Int("productID", id))
		return err
	}

	r.logger.Info("Product deleted", zap.Int("productID", id))
	return nil
}

// ToggleFavorite flips the wishlist state of a product and returns the new
// state. Favoriting one's own product comes back as a BusinessRuleViolation
// from envelope classification; it is the caller's job to surface it as a
// distinct alert.
func (r *apiRepository) ToggleFavorite(ctx context.Context, id int) (bool, error) {
	token := r.sessions.Token()
	if token == "" {
		return false, common.ErrUnauthenticated
	}

	env, err := transport.Exchange(ctx, r.client, transport.Request{
		Method: http.MethodPost,
		Path:   fmt.Sprintf("/products/%d/favorite", id),
		Token:  token,
	})
	if err != nil {
		return false, err
	}

	dto, appErr := common.DecodeData[favoriteToggleDTO](env)
	if appErr != nil {
		return false, appErr
	}
	return dto.IsFavorite, nil
}
