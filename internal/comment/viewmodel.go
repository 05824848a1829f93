// File: internal/comment/viewmodel.go
package comment

import (
	"context"
	"sync"

	"sipaling_preloved_client/internal/common"

	"go.uber.org/zap"
)

// State is the observable state of a product's discussion thread.
type State struct {
	IsLoading    bool
	ErrorMessage string
	ProductID    int
	Comments     []Comment
}

// ViewModel drives the comment section of the product detail screen.
// Confirmed comments are appended optimistically; a confirmed reply whose
// parent is no longer in the loaded set triggers a full reload rather than
// guessing placement.
type ViewModel struct {
	repo   Repository
	logger *zap.Logger

	mu    sync.Mutex
	seq   common.ActionSequencer
	state State
	subs  []func()
}

// NewViewModel creates a comment view-model.
func NewViewModel(repo Repository, logger *zap.Logger) *ViewModel {
	return &ViewModel{repo: repo, logger: logger.Named("comment-vm")}
}

// Subscribe registers a listener invoked after every state change.
func (vm *ViewModel) Subscribe(fn func()) {
	vm.mu.Lock()
	vm.subs = append(vm.subs, fn)
	vm.mu.Unlock()
}

// Snapshot returns a copy of the current state.
func (vm *ViewModel) Snapshot() State {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	state := vm.state
	state.Comments = append([]Comment(nil), vm.state.Comments...)
	return state
}

// Load fetches the full comment tree for a product.
func (vm *ViewModel) Load(ctx context.Context, productID int) {
	seq := vm.begin()

	comments, err := vm.repo.ListByProduct(ctx, productID)

	vm.finish(seq, err, func(s *State) {
		s.ProductID = productID
		s.Comments = comments
	})
}

// Add posts a top-level comment and appends it once the server confirms.
func (vm *ViewModel) Add(ctx context.Context, text string) {
	vm.mu.Lock()
	productID := vm.state.ProductID
	vm.mu.Unlock()

	seq := vm.begin()

	created, err := vm.repo.Create(ctx, CreateCommentRequest{
		ProductID: productID,
		Comment:   text,
	})

	vm.finish(seq, err, func(s *State) {
		s.Comments = append(s.Comments, *created)
	})
}

// Reply posts a reply to a top-level comment. If the parent cannot be found
// in the loaded set when the confirmation arrives, the whole thread is
// reloaded so the reply is never silently lost.
func (vm *ViewModel) Reply(ctx context.Context, parentCommentID int, text string) {
	vm.mu.Lock()
	productID := vm.state.ProductID
	vm.mu.Unlock()

	seq := vm.begin()

	created, err := vm.repo.Create(ctx, CreateCommentRequest{
		ProductID:       productID,
		Comment:         text,
		ParentCommentID: &parentCommentID,
	})

	if common.IsKind(err, common.KindCancelled) {
		return
	}

	if err == nil && !vm.attachReply(seq, parentCommentID, *created) {
		vm.logger.Info("Reply parent missing from loaded thread, reloading",
			zap.Int("parentCommentID", parentCommentID),
			zap.Int("productID", productID),
		)
		vm.reload(ctx, seq, productID)
		return
	}

	if err != nil {
		vm.finish(seq, err, nil)
	}
}

// attachReply appends the confirmed reply under its parent. Returns false
// when the parent is not in the loaded set.
func (vm *ViewModel) attachReply(seq uint64, parentCommentID int, reply Comment) bool {
	vm.mu.Lock()
	defer func() {
		vm.mu.Unlock()
		vm.notify()
	}()

	if !vm.seq.IsLatest(seq) {
		return true // superseded: drop silently, no reload
	}

	vm.state.IsLoading = false
	for i := range vm.state.Comments {
		if vm.state.Comments[i].ID == parentCommentID {
			vm.state.Comments[i].Replies = append(vm.state.Comments[i].Replies, reply)
			return true
		}
	}
	return false
}

// reload refetches the whole thread after a placement miss.
func (vm *ViewModel) reload(ctx context.Context, seq uint64, productID int) {
	comments, err := vm.repo.ListByProduct(ctx, productID)

	vm.finish(seq, err, func(s *State) {
		s.ProductID = productID
		s.Comments = comments
	})
}

func (vm *ViewModel) begin() uint64 {
	seq := vm.seq.Next()
	vm.mu.Lock()
	vm.state.IsLoading = true
	vm.state.ErrorMessage = ""
	vm.mu.Unlock()
	vm.notify()
	return seq
}

func (vm *ViewModel) finish(seq uint64, err error, apply func(*State)) {
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
	} else if apply != nil {
		apply(&vm.state)
	}
	vm.mu.Unlock()
	vm.notify()
}

func (vm *ViewModel) notify() {
	vm.mu.Lock()
	subs := make([]func(), len(vm.subs))
	copy(subs, vm.subs)
	vm.mu.Unlock()
	for _, fn := range subs {
		fn()
	}
}
