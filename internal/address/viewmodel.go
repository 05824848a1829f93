// File: internal/address/viewmodel.go
package address

import (
	"context"
	"sync"

	"sipaling_preloved_client/internal/common"

	"go.uber.org/zap"
)

// State is the observable state of the address book screen.
type State struct {
	IsLoading    bool
	ErrorMessage string
	Addresses    []Address
}

// ViewModel drives the address book screen. On confirmed create/update/
// delete the local collection is adjusted in place rather than reloaded.
type ViewModel struct {
	repo   Repository
	logger *zap.Logger

	mu    sync.Mutex
	seq   common.ActionSequencer
	state State
	subs  []func()
}

// NewViewModel creates an address view-model.
func NewViewModel(repo Repository, logger *zap.Logger) *ViewModel {
	return &ViewModel{repo: repo, logger: logger.Named("address-vm")}
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
	state.Addresses = append([]Address(nil), vm.state.Addresses...)
	return state
}

// Load fetches the full address list.
func (vm *ViewModel) Load(ctx context.Context) {
	seq := vm.begin()

	addresses, err := vm.repo.List(ctx)

	vm.finish(seq, err, func(s *State) {
		s.Addresses = addresses
	})
}

// Create saves a new address and appends it on success.
func (vm *ViewModel) Create(ctx context.Context, req SaveAddressRequest) {
	seq := vm.begin()

	created, err := vm.repo.Create(ctx, req)

	vm.finish(seq, err, func(s *State) {
		s.Addresses = append(s.Addresses, *created)
	})
}

// Update edits an address and replaces it in place on success.
func (vm *ViewModel) Update(ctx context.Context, id int, req SaveAddressRequest) {
	seq := vm.begin()

	updated, err := vm.repo.Update(ctx, id, req)

	vm.finish(seq, err, func(s *State) {
		for i := range s.Addresses {
			if s.Addresses[i].ID == id {
				s.Addresses[i] = *updated
				return
			}
		}
		// Not in the loaded set: append rather than lose the edit.
		s.Addresses = append(s.Addresses, *updated)
	})
}

// Delete removes an address and drops it from the collection on success.
func (vm *ViewModel) Delete(ctx context.Context, id int) {
	seq := vm.begin()

	err := vm.repo.Delete(ctx, id)

	vm.finish(seq, err, func(s *State) {
		kept := s.Addresses[:0]
		for _, addr := range s.Addresses {
			if addr.ID != id {
				kept = append(kept, addr)
			}
		}
		s.Addresses = kept
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
	} else {
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
