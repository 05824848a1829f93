// File: internal/auth/viewmodel.go
package auth

import (
	"context"
	"sync"

	"sipaling_preloved_client/internal/common"

	"go.uber.org/zap"
)

// State is the observable auth screen state.
type State struct {
	IsLoading       bool
	ErrorMessage    string
	IsAuthenticated bool
	CurrentUser     *User
}

// PostLoginHook runs after a successful login or registration, e.g. to flush
// a push token that arrived while logged out.
type PostLoginHook interface {
	OnLogin(ctx context.Context)
}

// ViewModel drives the login/register/profile screens. All state mutation
// happens under the mutex; every triggered action carries a sequence number
// and stale completions are discarded, so a slow earlier request can never
// overwrite the result of a later one.
type ViewModel struct {
	repo   Repository
	hook   PostLoginHook // may be nil
	logger *zap.Logger

	mu    sync.Mutex
	seq   common.ActionSequencer
	state State
	subs  []func()
}

// NewViewModel creates the auth view-model. hook may be nil.
func NewViewModel(repo Repository, hook PostLoginHook, logger *zap.Logger) *ViewModel {
	return &ViewModel{
		repo:   repo,
		hook:   hook,
		logger: logger.Named("auth-vm"),
	}
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
	return vm.state
}

// Login runs the login action: loading on, error cleared, repository call,
// then state replaced unless a newer action superseded this one.
func (vm *ViewModel) Login(ctx context.Context, req LoginRequest) {
	seq := vm.begin()

	user, err := vm.repo.Login(ctx, req)

	vm.finish(seq, err, func(s *State) {
		if err != nil {
			s.ErrorMessage = common.UserMessage(err)
			return
		}
		s.CurrentUser = user
		s.IsAuthenticated = true
	})

	if err == nil && vm.hook != nil {
		vm.hook.OnLogin(ctx)
	}
}

// Register runs account creation, which also logs the user in.
func (vm *ViewModel) Register(ctx context.Context, req RegisterRequest) {
	seq := vm.begin()

	user, err := vm.repo.Register(ctx, req)

	vm.finish(seq, err, func(s *State) {
		if err != nil {
			s.ErrorMessage = common.UserMessage(err)
			return
		}
		s.CurrentUser = user
		s.IsAuthenticated = true
	})

	if err == nil && vm.hook != nil {
		vm.hook.OnLogin(ctx)
	}
}

// Logout always succeeds from the user's perspective.
func (vm *ViewModel) Logout(ctx context.Context) {
	seq := vm.begin()

	err := vm.repo.Logout(ctx)

	vm.finish(seq, err, func(s *State) {
		s.CurrentUser = nil
		s.IsAuthenticated = false
	})
}

// LoadProfile refreshes the current user record from the backend.
func (vm *ViewModel) LoadProfile(ctx context.Context) {
	seq := vm.begin()

	user, err := vm.repo.Profile(ctx)

	vm.finish(seq, err, func(s *State) {
		if err != nil {
			s.ErrorMessage = common.UserMessage(err)
			return
		}
		s.CurrentUser = user
		s.IsAuthenticated = true
	})
}

// UpdateProfile submits a profile edit and replaces the user on success.
func (vm *ViewModel) UpdateProfile(ctx context.Context, req UpdateProfileRequest) {
	seq := vm.begin()

	user, err := vm.repo.UpdateProfile(ctx, req)

	vm.finish(seq, err, func(s *State) {
		if err != nil {
			s.ErrorMessage = common.UserMessage(err)
			return
		}
		s.CurrentUser = user
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

// finish applies the action's result unless the action was superseded or its
// context was cancelled (a cancelled call must stop delivering its result).
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
	apply(&vm.state)
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
