// File: internal/product/viewmodel.go
package product

import (
	"context"
	"sync"

	"sipaling_preloved_client/internal/common"

	"go.uber.org/zap"
)

// --- List view-model (home feed, search, my products, favorites) ---

// ListState is the observable state of a product collection screen.
type ListState struct {
	IsLoading    bool
	ErrorMessage string
	Products     []Product
}

// ListViewModel drives every screen that renders a product collection. Which
// collection is loaded depends on the triggering action; stale completions
// are discarded by sequence number so switching tabs quickly cannot leave an
// older response on screen.
type ListViewModel struct {
	repo   Repository
	logger *zap.Logger

	mu    sync.Mutex
	seq   common.ActionSequencer
	state ListState
	subs  []func()
}

// NewListViewModel creates a product list view-model.
func NewListViewModel(repo Repository, logger *zap.Logger) *ListViewModel {
	return &ListViewModel{repo: repo, logger: logger.Named("product-list-vm")}
}

// Subscribe registers a listener invoked after every state change.
func (vm *ListViewModel) Subscribe(fn func()) {
	vm.mu.Lock()
	vm.subs = append(vm.subs, fn)
	vm.mu.Unlock()
}

// Snapshot returns a copy of the current state.
func (vm *ListViewModel) Snapshot() ListState {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	state := vm.state
	state.Products = append([]Product(nil), vm.state.Products...)
	return state
}

// LoadAll loads the public feed.
func (vm *ListViewModel) LoadAll(ctx context.Context) {
	vm.load(func() ([]Product, error) { return vm.repo.List(ctx) })
}

// Search loads products matching the query.
func (vm *ListViewModel) Search(ctx context.Context, query string) {
	vm.load(func() ([]Product, error) { return vm.repo.Search(ctx, query) })
}

// LoadMine loads the caller's own listings.
func (vm *ListViewModel) LoadMine(ctx context.Context) {
	vm.load(func() ([]Product, error) { return vm.repo.MyProducts(ctx) })
}

// LoadFavorites loads the caller's wishlist.
func (vm *ListViewModel) LoadFavorites(ctx context.Context) {
	vm.load(func() ([]Product, error) { return vm.repo.Favorites(ctx) })
}

func (vm *ListViewModel) load(fetch func() ([]Product, error)) {
	seq := vm.seq.Next()
	vm.mu.Lock()
	vm.state.IsLoading = true
	vm.state.ErrorMessage = ""
	vm.mu.Unlock()
	vm.notify()

	products, err := fetch()

	if common.IsKind(err, common.KindCancelled) {
		return
	}
	vm.mu.Lock()
	if !vm.seq.IsLatest(seq) {
		vm.mu.Unlock()
		return
	}
	vm.state.IsLoading = false
	if err != nil {
		vm.state.ErrorMessage = common.UserMessage(err)
	} else {
		vm.state.Products = products
	}
	vm.mu.Unlock()
	vm.notify()
}

func (vm *ListViewModel) notify() {
	vm.mu.Lock()
	subs := make([]func(), len(vm.subs))
	copy(subs, vm.subs)
	vm.mu.Unlock()
	for _, fn := range subs {
		fn()
	}
}

// --- Detail view-model ---

// DetailState is the observable state of the product detail screen.
// AlertMessage is the distinct slot for business-rule violations (favoriting
// one's own product); ErrorMessage is the generic banner.
type DetailState struct {
	IsLoading    bool
	ErrorMessage string
	AlertMessage string
	Product      *Product
}

// DetailViewModel drives the product detail screen.
type DetailViewModel struct {
	repo   Repository
	logger *zap.Logger

	mu    sync.Mutex
	seq   common.ActionSequencer
	state DetailState
	subs  []func()
}

// NewDetailViewModel creates a product detail view-model.
func NewDetailViewModel(repo Repository, logger *zap.Logger) *DetailViewModel {
	return &DetailViewModel{repo: repo, logger: logger.Named("product-detail-vm")}
}

// Subscribe registers a listener invoked after every state change.
func (vm *DetailViewModel) Subscribe(fn func()) {
	vm.mu.Lock()
	vm.subs = append(vm.subs, fn)
	vm.mu.Unlock()
}

// Snapshot returns a copy of the current state.
func (vm *DetailViewModel) Snapshot() DetailState {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	state := vm.state
	if vm.state.Product != nil {
		clone := *vm.state.Product
		state.Product = &clone
	}
	return state
}

// Load fetches the product.
func (vm *DetailViewModel) Load(ctx context.Context, id int) {
	seq := vm.seq.Next()
	vm.mu.Lock()
	vm.state.IsLoading = true
	vm.state.ErrorMessage = ""
	vm.state.AlertMessage = ""
	vm.mu.Unlock()
	vm.notify()

	product, err := vm.repo.Detail(ctx, id)

	if common.IsKind(err, common.KindCancelled) {
		return
	}
	vm.mu.Lock()
	if !vm.seq.IsLatest(seq) {
		vm.mu.Unlock()
		return
	}
	vm.state.IsLoading = false
	if err != nil {
		vm.state.ErrorMessage = common.UserMessage(err)
	} else {
		vm.state.Product = product
	}
	vm.mu.Unlock()
	vm.notify()
}

// ToggleFavorite flips the wishlist flag optimistically on the loaded
// product once the server confirms. A business-rule rejection goes to the
// alert slot instead of the generic error banner.
func (vm *DetailViewModel) ToggleFavorite(ctx context.Context) {
	vm.mu.Lock()
	if vm.state.Product == nil {
		vm.mu.Unlock()
		return
	}
	productID := vm.state.Product.ID
	vm.state.ErrorMessage = ""
	vm.state.AlertMessage = ""
	vm.mu.Unlock()
	vm.notify()

	isFavorite, err := vm.repo.ToggleFavorite(ctx, productID)

	if common.IsKind(err, common.KindCancelled) {
		return
	}
	vm.mu.Lock()
	switch {
	case common.IsKind(err, common.KindBusinessRuleViolation):
		vm.state.AlertMessage = common.UserMessage(err)
	case err != nil:
		vm.state.ErrorMessage = common.UserMessage(err)
	case vm.state.Product != nil && vm.state.Product.ID == productID:
		vm.state.Product.IsFavorite = isFavorite
	}
	vm.mu.Unlock()
	vm.notify()
}

func (vm *DetailViewModel) notify() {
	vm.mu.Lock()
	subs := make([]func(), len(vm.subs))
	copy(subs, vm.subs)
	vm.mu.Unlock()
	for _, fn := range subs {
		fn()
	}
}

// --- Form view-model (create / edit / delete) ---

// FormState is the observable state of the product create/edit screen.
type FormState struct {
	IsSubmitting bool
	ErrorMessage string
	Saved        *Product // last successful create/update result
	Deleted      bool
}

// FormViewModel drives product creation, editing and deletion.
type FormViewModel struct {
	repo   Repository
	logger *zap.Logger

	mu    sync.Mutex
	seq   common.ActionSequencer
	state FormState
	subs  []func()
}

// NewFormViewModel creates a product form view-model.
func NewFormViewModel(repo Repository, logger *zap.Logger) *FormViewModel {
	return &FormViewModel{repo: repo, logger: logger.Named("product-form-vm")}
}

// Subscribe registers a listener invoked after every state change.
func (vm *FormViewModel) Subscribe(fn func()) {
	vm.mu.Lock()
	vm.subs = append(vm.subs, fn)
	vm.mu.Unlock()
}

// Snapshot returns a copy of the current state.
func (vm *FormViewModel) Snapshot() FormState {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	state := vm.state
	if vm.state.Saved != nil {
		clone := *vm.state.Saved
		state.Saved = &clone
	}
	return state
}

// Create submits a new listing.
func (vm *FormViewModel) Create(ctx context.Context, req CreateProductRequest) {
	vm.submit(func() (*Product, bool, error) {
		product, err := vm.repo.Create(ctx, req)
		return product, false, err
	})
}

// Update submits an edit of an owned listing.
func (vm *FormViewModel) Update(ctx context.Context, id int, req UpdateProductRequest) {
	vm.submit(func() (*Product, bool, error) {
		product, err := vm.repo.Update(ctx, id, req)
		return product, false, err
	})
}

// Delete removes an owned listing.
func (vm *FormViewModel) Delete(ctx context.Context, id int) {
	vm.submit(func() (*Product, bool, error) {
		err := vm.repo.Delete(ctx, id)
		return nil, err == nil, err
	})
}

func (vm *FormViewModel) submit(run func() (*Product, bool, error)) {
	seq := vm.seq.Next()
	vm.mu.Lock()
	vm.state.IsSubmitting = true
	vm.state.ErrorMessage = ""
	vm.mu.Unlock()
	vm.notify()

	product, deleted, err := run()

	if common.IsKind(err, common.KindCancelled) {
		return
	}
	vm.mu.Lock()
	if !vm.seq.IsLatest(seq) {
		vm.mu.Unlock()
		return
	}
	vm.state.IsSubmitting = false
	if err != nil {
		vm.state.ErrorMessage = common.UserMessage(err)
	} else {
		vm.state.Saved = product
		vm.state.Deleted = deleted
	}
	vm.mu.Unlock()
	vm.notify()
}

func (vm *FormViewModel) notify() {
	vm.mu.Lock()
	subs := make([]func(), len(vm.subs))
	copy(subs, vm.subs)
	vm.mu.Unlock()
	for _, fn := range subs {
		fn()
	}
}
