// File: internal/comment/viewmodel_test.go
package comment

import (
	"context"
	"testing"

	"sipaling_preloved_client/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockRepository is a mock type for comment.Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) ListByProduct(ctx context.Context, productID int) ([]Comment, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Comment), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, req CreateCommentRequest) (*Comment, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Comment), args.Error(1)
}

func TestViewModel_LoadAndAdd(t *testing.T) {
	repo := new(MockRepository)
	vm := NewViewModel(repo, zap.NewNop())

	repo.On("ListByProduct", mock.Anything, 3).
		Return([]Comment{{ID: 1, ProductID: 3, Text: "Masih ada?", Replies: []Comment{}}}, nil)
	repo.On("Create", mock.Anything, CreateCommentRequest{ProductID: 3, Comment: "Boleh nego?"}).
		Return(&Comment{ID: 2, ProductID: 3, Text: "Boleh nego?", Replies: []Comment{}}, nil)

	vm.Load(context.Background(), 3)
	vm.Add(context.Background(), "Boleh nego?")

	state := vm.Snapshot()
	require.Len(t, state.Comments, 2)
	assert.Equal(t, "Boleh nego?", state.Comments[1].Text)
	assert.False(t, state.IsLoading)
}

func TestViewModel_ReplyAttachesUnderParent(t *testing.T) {
	repo := new(MockRepository)
	vm := NewViewModel(repo, zap.NewNop())
	parent := 1

	repo.On("ListByProduct", mock.Anything, 3).
		Return([]Comment{{ID: 1, ProductID: 3, Text: "Masih ada?", Replies: []Comment{}}}, nil)
	repo.On("Create", mock.Anything, CreateCommentRequest{ProductID: 3, Comment: "Masih", ParentCommentID: &parent}).
		Return(&Comment{ID: 5, ProductID: 3, Text: "Masih", ParentCommentID: &parent, Replies: []Comment{}}, nil)

	vm.Load(context.Background(), 3)
	vm.Reply(context.Background(), 1, "Masih")

	state := vm.Snapshot()
	require.Len(t, state.Comments, 1)
	require.Len(t, state.Comments[0].Replies, 1)
	assert.Equal(t, "Masih", state.Comments[0].Replies[0].Text)
}

func TestViewModel_ReplyMissingParentReloadsThread(t *testing.T) {
	repo := new(MockRepository)
	vm := NewViewModel(repo, zap.NewNop())
	parent := 99

	// First load: a thread without comment 99.
	repo.On("ListByProduct", mock.Anything, 3).
		Return([]Comment{{ID: 1, ProductID: 3, Text: "Masih ada?", Replies: []Comment{}}}, nil).Once()
	repo.On("Create", mock.Anything, CreateCommentRequest{ProductID: 3, Comment: "halo", ParentCommentID: &parent}).
		Return(&Comment{ID: 7, ProductID: 3, Text: "halo", ParentCommentID: &parent, Replies: []Comment{}}, nil)
	// The placement miss forces a refetch, which now includes the reply.
	reloaded := []Comment{
		{ID: 1, ProductID: 3, Text: "Masih ada?", Replies: []Comment{}},
		{ID: 99, ProductID: 3, Text: "baru", Replies: []Comment{{ID: 7, Text: "halo", ParentCommentID: &parent}}},
	}
	repo.On("ListByProduct", mock.Anything, 3).Return(reloaded, nil).Once()

	vm.Load(context.Background(), 3)
	vm.Reply(context.Background(), 99, "halo")

	state := vm.Snapshot()
	require.Len(t, state.Comments, 2, "a placement miss reloads the whole thread")
	assert.Equal(t, 99, state.Comments[1].ID)
	repo.AssertNumberOfCalls(t, "ListByProduct", 2)
}

func TestViewModel_ReplyErrorSurfaced(t *testing.T) {
	repo := new(MockRepository)
	vm := NewViewModel(repo, zap.NewNop())
	parent := 1

	repo.On("ListByProduct", mock.Anything, 3).
		Return([]Comment{{ID: 1, ProductID: 3, Replies: []Comment{}}}, nil)
	repo.On("Create", mock.Anything, CreateCommentRequest{ProductID: 3, Comment: "halo", ParentCommentID: &parent}).
		Return(nil, common.NewAppError(common.KindServerMisconfigured, common.MsgServerMisconfigured))

	vm.Load(context.Background(), 3)
	vm.Reply(context.Background(), 1, "halo")

	state := vm.Snapshot()
	assert.Equal(t, common.MsgServerMisconfigured, state.ErrorMessage)
	require.Len(t, state.Comments, 1)
	assert.Empty(t, state.Comments[0].Replies, "a failed reply is never attached")
}
