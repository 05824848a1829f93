// File: internal/searchhistory/viewmodel.go
package searchhistory

import (
	"context"
	"sync"

	"sipaling_preloved_client/internal/common"

	"go.uber.org/zap"
)

// State is the observable state of the recent-searches panel.
type State struct {
	IsLoading    bool
	ErrorMessage string
	Entries      []Entry
}

// ViewModel drives the recent-searches panel on the search screen.
type ViewModel struct {
	repo   Repository
	logger *zap.Logger

	mu    sync.Mutex
	seq   common.ActionSequencer
	state State
	subs  []func()
}

// NewViewModel creates a search-history view-model.
func NewViewModel(repo Repository, logger *zap.Logger) *ViewModel {
	return &ViewModel{repo: repo, logger: logger.Named("searchhistory-vm")}
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
	state.Entries = append([]Entry(nil), vm.state.Entries...)
	return state
}

// Load fetches the recency-ordered history.
func (vm *ViewModel) Load(ctx context.Context) {
	seq := vm.begin()

	entries, err := vm.repo.List(ctx)

	vm.finish(seq, err, func(s *State) {
		s.Entries = entries
	})
}

// Record saves a query and reloads the merged list so the entry moves to the
// front exactly once.
func (vm *ViewModel) Record(ctx context.Context, query string) {
	seq := vm.begin()

	err := vm.repo.Save(ctx, query)
	if err == nil {
		entries, listErr := vm.repo.List(ctx)
		vm.finish(seq, listErr, func(s *State) {
			s.Entries = entries
		})
		return
	}

	vm.finish(seq, err, nil)
}

// Clear wipes the history.
func (vm *ViewModel) Clear(ctx context.Context) {
	seq := vm.begin()

	err := vm.repo.Clear(ctx)

	vm.finish(seq, err, func(s *State) {
		s.Entries = []Entry{}
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
