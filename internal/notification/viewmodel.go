// File: internal/notification/viewmodel.go
package notification

import (
	"context"
	"sync"

	"sipaling_preloved_client/internal/common"

	"go.uber.org/zap"
)

// State is the observable state of the notification inbox screen.
type State struct {
	IsLoading     bool
	ErrorMessage  string
	Notifications []Notification
	UnreadCount   int
}

// ViewModel drives the notification inbox. Read state is monotonic: once an
// id has been marked read locally, no later server response may flip it back
// to unread. There is no server-confirmed unread event in this system, so a
// stale listing is the only way that could happen, and it is suppressed.
type ViewModel struct {
	repo   Repository
	logger *zap.Logger

	mu      sync.Mutex
	seq     common.ActionSequencer
	state   State
	readIDs map[int]bool // ids confirmed read this session
	subs    []func()
}

// NewViewModel creates a notification view-model.
func NewViewModel(repo Repository, logger *zap.Logger) *ViewModel {
	return &ViewModel{
		repo:    repo,
		logger:  logger.Named("notification-vm"),
		readIDs: make(map[int]bool),
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
	state := vm.state
	state.Notifications = append([]Notification(nil), vm.state.Notifications...)
	return state
}

// Load fetches the inbox and merges it against the locally read set.
func (vm *ViewModel) Load(ctx context.Context) {
	seq := vm.seq.Next()
	vm.mu.Lock()
	vm.state.IsLoading = true
	vm.state.ErrorMessage = ""
	vm.mu.Unlock()
	vm.notify()

	notifications, err := vm.repo.List(ctx)

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
		for i := range notifications {
			if vm.readIDs[notifications[i].ID] {
				notifications[i].IsRead = true
			}
		}
		vm.state.Notifications = notifications
		vm.state.UnreadCount = countUnread(notifications)
	}
	vm.mu.Unlock()
	vm.notify()
}

// MarkRead marks one notification read, flipping it locally once the server
// confirms.
func (vm *ViewModel) MarkRead(ctx context.Context, id int) {
	err := vm.repo.MarkRead(ctx, id)
	if err != nil {
		if common.IsKind(err, common.KindCancelled) {
			return
		}
		vm.mu.Lock()
		vm.state.ErrorMessage = common.UserMessage(err)
		vm.mu.Unlock()
		vm.notify()
		return
	}

	vm.mu.Lock()
	vm.readIDs[id] = true
	for i := range vm.state.Notifications {
		if vm.state.Notifications[i].ID == id {
			vm.state.Notifications[i].IsRead = true
		}
	}
	vm.state.UnreadCount = countUnread(vm.state.Notifications)
	vm.mu.Unlock()
	vm.notify()
}

// MarkAllRead marks the whole inbox read.
func (vm *ViewModel) MarkAllRead(ctx context.Context) {
	err := vm.repo.MarkAllRead(ctx)
	if err != nil {
		if common.IsKind(err, common.KindCancelled) {
			return
		}
		vm.mu.Lock()
		vm.state.ErrorMessage = common.UserMessage(err)
		vm.mu.Unlock()
		vm.notify()
		return
	}

	vm.mu.Lock()
	for i := range vm.state.Notifications {
		vm.readIDs[vm.state.Notifications[i].ID] = true
		vm.state.Notifications[i].IsRead = true
	}
	vm.state.UnreadCount = 0
	vm.mu.Unlock()
	vm.notify()
}

func countUnread(notifications []Notification) int {
	count := 0
	for _, n := range notifications {
		if !n.IsRead {
			count++
		}
	}
	return count
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
