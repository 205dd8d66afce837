package service

import (
	"context"
	"errors"
	"testing"

	"blogfeed/internal/featureflags"
	"blogfeed/internal/models"
	"blogfeed/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPostRepository is a mock of the PostRepository interface
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Count(ctx context.Context, scope repository.FeedScope) (int64, error) {
	args := m.Called(ctx, scope)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPostRepository) List(ctx context.Context, scope repository.FeedScope, limit, offset int) ([]*models.Post, error) {
	args := m.Called(ctx, scope, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Post), args.Error(1)
}

func (m *MockPostRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostRepository) GetByAuthor(ctx context.Context, username string, id uint) (*models.Post, error) {
	args := m.Called(ctx, username, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostRepository) MostCommented(ctx context.Context, n int) ([]*models.Post, error) {
	args := m.Called(ctx, n)
	return args.Get(0).([]*models.Post), args.Error(1)
}

func (m *MockPostRepository) Create(ctx context.Context, post *models.Post) error {
	return m.Called(ctx, post).Error(0)
}

func (m *MockPostRepository) Update(ctx context.Context, post *models.Post) error {
	return m.Called(ctx, post).Error(0)
}

func (m *MockPostRepository) Delete(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func newMockFeed(posts *MockPostRepository, cfg FeedConfig) *FeedService {
	return NewFeedService(posts, noopUserRepo(), noopGroupRepo(), noopCommentRepo(), noopFollowRepo(), cfg)
}

func TestFeedService_FetchesOnlyTheWindow(t *testing.T) {
	tests := []struct {
		name   string
		call   func(*FeedService) error
		scope  repository.FeedScope
		count  int64
		limit  int
		offset int
	}{
		{
			name: "home last page",
			call: func(s *FeedService) error {
				_, err := s.Home(context.Background(), 0, "3")
				return err
			},
			count: 23, limit: 3, offset: 20,
		},
		{
			name: "home page past the end",
			call: func(s *FeedService) error {
				_, err := s.Home(context.Background(), 0, "40")
				return err
			},
			count: 15, limit: 5, offset: 10,
		},
		{
			name: "group capped",
			call: func(s *FeedService) error {
				_, err := s.Group(context.Background(), 0, "travel", "2")
				return err
			},
			scope: repository.FeedScope{GroupID: 1},
			count: 40, limit: 2, offset: 10,
		},
		{
			name: "search",
			call: func(s *FeedService) error {
				_, err := s.Search(context.Background(), 0, "go", "")
				return err
			},
			scope: repository.FeedScope{Query: "go", Searching: true},
			count: 4, limit: 4, offset: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts := new(MockPostRepository)
			posts.On("Count", mock.Anything, tt.scope).Return(tt.count, nil).Once()
			posts.On("List", mock.Anything, tt.scope, tt.limit, tt.offset).Return([]*models.Post{}, nil).Once()

			svc := newMockFeed(posts, FeedConfig{PageSize: 10, GroupCap: 12, Flags: featureflags.NewManager("")})
			require.NoError(t, tt.call(svc))
			posts.AssertExpectations(t)
		})
	}
}

func TestFeedService_CountErrorSkipsList(t *testing.T) {
	posts := new(MockPostRepository)
	boom := errors.New("db down")
	posts.On("Count", mock.Anything, repository.FeedScope{}).Return(int64(0), boom)

	svc := newMockFeed(posts, FeedConfig{Flags: featureflags.NewManager("")})
	_, err := svc.Home(context.Background(), 0, "")
	assert.ErrorIs(t, err, boom)
	posts.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestFeedService_SidebarMostCommented(t *testing.T) {
	top := []*models.Post{{ID: 7, CommentsCount: 9}}

	posts := new(MockPostRepository)
	posts.On("MostCommented", mock.Anything, 5).Return(top, nil).Once()
	svc := newMockFeed(posts, FeedConfig{MostCommentedLimit: 5, Flags: featureflags.NewManager("")})
	sidebar, err := svc.Sidebar(context.Background())
	require.NoError(t, err)
	assert.Equal(t, top, sidebar.MostCommented)
	posts.AssertExpectations(t)

	off := new(MockPostRepository)
	svc = newMockFeed(off, FeedConfig{MostCommentedLimit: 5, Flags: featureflags.NewManager("most_commented=off")})
	sidebar, err = svc.Sidebar(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sidebar.MostCommented)
	off.AssertNotCalled(t, "MostCommented", mock.Anything, mock.Anything)
}
