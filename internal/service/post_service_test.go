package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"blogfeed/internal/models"
	"blogfeed/internal/repository"
	"blogfeed/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	countFn         func(context.Context, repository.FeedScope) (int64, error)
	listFn          func(context.Context, repository.FeedScope, int, int) ([]*models.Post, error)
	getByIDFn       func(context.Context, uint) (*models.Post, error)
	getByAuthorFn   func(context.Context, string, uint) (*models.Post, error)
	mostCommentedFn func(context.Context, int) ([]*models.Post, error)
	createFn        func(context.Context, *models.Post) error
	updateFn        func(context.Context, *models.Post) error
	deleteFn        func(context.Context, uint) error
}

func (s *postRepoStub) Count(ctx context.Context, scope repository.FeedScope) (int64, error) {
	return s.countFn(ctx, scope)
}
func (s *postRepoStub) List(ctx context.Context, scope repository.FeedScope, limit, offset int) ([]*models.Post, error) {
	return s.listFn(ctx, scope, limit, offset)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) GetByAuthor(ctx context.Context, username string, id uint) (*models.Post, error) {
	return s.getByAuthorFn(ctx, username, id)
}
func (s *postRepoStub) MostCommented(ctx context.Context, n int) ([]*models.Post, error) {
	return s.mostCommentedFn(ctx, n)
}
func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		countFn: func(_ context.Context, _ repository.FeedScope) (int64, error) { return 0, nil },
		listFn: func(_ context.Context, _ repository.FeedScope, _, _ int) ([]*models.Post, error) {
			return nil, nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.Post, error) { return &models.Post{ID: id}, nil },
		getByAuthorFn: func(_ context.Context, _ string, id uint) (*models.Post, error) {
			return &models.Post{ID: id, AuthorID: 1}, nil
		},
		mostCommentedFn: func(_ context.Context, _ int) ([]*models.Post, error) { return nil, nil },
		createFn:        func(_ context.Context, _ *models.Post) error { return nil },
		updateFn:        func(_ context.Context, _ *models.Post) error { return nil },
		deleteFn:        func(_ context.Context, _ uint) error { return nil },
	}
}

// groupRepoStub is a stub for repository.GroupRepository.
type groupRepoStub struct {
	getByIDFn   func(context.Context, uint) (*models.Group, error)
	getBySlugFn func(context.Context, string) (*models.Group, error)
	listFn      func(context.Context) ([]*models.Group, error)
	createFn    func(context.Context, *models.Group) error
	deleteFn    func(context.Context, uint) error
}

func (s *groupRepoStub) GetByID(ctx context.Context, id uint) (*models.Group, error) {
	return s.getByIDFn(ctx, id)
}
func (s *groupRepoStub) GetBySlug(ctx context.Context, slug string) (*models.Group, error) {
	return s.getBySlugFn(ctx, slug)
}
func (s *groupRepoStub) List(ctx context.Context) ([]*models.Group, error) {
	return s.listFn(ctx)
}
func (s *groupRepoStub) Create(ctx context.Context, group *models.Group) error {
	return s.createFn(ctx, group)
}
func (s *groupRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopGroupRepo() *groupRepoStub {
	return &groupRepoStub{
		getByIDFn:   func(_ context.Context, id uint) (*models.Group, error) { return &models.Group{ID: id}, nil },
		getBySlugFn: func(_ context.Context, slug string) (*models.Group, error) { return &models.Group{ID: 1, Slug: slug}, nil },
		listFn:      func(_ context.Context) ([]*models.Group, error) { return nil, nil },
		createFn:    func(_ context.Context, _ *models.Group) error { return nil },
		deleteFn:    func(_ context.Context, _ uint) error { return nil },
	}
}

func assertAppErrorCode(t *testing.T, err error, code string) *models.AppError {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
	return appErr
}

// assertValidationError asserts that err is an AppError with code VALIDATION_ERROR and returns its fields.
func assertValidationError(t *testing.T, err error) models.FieldErrors {
	t.Helper()
	return assertAppErrorCode(t, err, models.CodeValidation).Fields
}

func assertPermissionDenied(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodePermissionDenied)
}

func assertNotFound(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeNotFound)
}

// invalidations counts calls of an InvalidateFunc.
type invalidations struct{ n int }

func (i *invalidations) fn() InvalidateFunc {
	return func(context.Context) { i.n++ }
}

func TestPostService_CreatePost_Validation(t *testing.T) {
	t.Parallel()

	groups := noopGroupRepo()
	groups.getByIDFn = func(_ context.Context, id uint) (*models.Group, error) {
		return nil, models.NewNotFoundError("Group", id)
	}
	svc := NewPostService(noopPostRepo(), groups, nil)
	ctx := context.Background()

	tests := []struct {
		name  string
		form  validation.PostForm
		field string
	}{
		{name: "empty text", form: validation.PostForm{Description: "d"}, field: "text"},
		{name: "whitespace text", form: validation.PostForm{Text: "  \n "}, field: "text"},
		{name: "description too long", form: validation.PostForm{Text: "t", Description: strings.Repeat("x", 201)}, field: "description"},
		{name: "non-numeric group", form: validation.PostForm{Text: "t", Group: "abc"}, field: "group"},
		{name: "unknown group", form: validation.PostForm{Text: "t", Group: "99"}, field: "group"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.CreatePost(ctx, 1, tc.form)
			fields := assertValidationError(t, err)
			assert.Contains(t, fields, tc.field)
		})
	}
}

func TestPostService_CreatePost_Success(t *testing.T) {
	t.Parallel()

	var stored *models.Post
	posts := noopPostRepo()
	posts.createFn = func(_ context.Context, p *models.Post) error {
		p.ID = 7
		stored = p
		return nil
	}
	inv := &invalidations{}
	svc := NewPostService(posts, noopGroupRepo(), inv.fn())

	post, err := svc.CreatePost(context.Background(), 3, validation.PostForm{
		Description: "  title ",
		Text:        "body",
		Group:       "2",
		Image:       "posts/a.png",
	})
	require.NoError(t, err)
	assert.Equal(t, uint(7), post.ID)
	assert.Equal(t, uint(3), stored.AuthorID)
	assert.Equal(t, "title", stored.Description)
	require.NotNil(t, stored.GroupID)
	assert.Equal(t, uint(2), *stored.GroupID)
	assert.Equal(t, "posts/a.png", stored.Image)
	assert.Equal(t, 1, inv.n)
}

func TestPostService_CreatePost_Duplicate(t *testing.T) {
	t.Parallel()

	posts := noopPostRepo()
	posts.createFn = func(_ context.Context, _ *models.Post) error { return repository.ErrDuplicatePost }
	inv := &invalidations{}
	svc := NewPostService(posts, noopGroupRepo(), inv.fn())

	_, err := svc.CreatePost(context.Background(), 1, validation.PostForm{Text: "same"})
	fields := assertValidationError(t, err)
	assert.Equal(t, []string{msgDuplicatePost}, fields["text"])
	assert.Zero(t, inv.n)
}

func TestPostService_CreatePost_Anonymous(t *testing.T) {
	t.Parallel()

	svc := NewPostService(noopPostRepo(), noopGroupRepo(), nil)
	_, err := svc.CreatePost(context.Background(), 0, validation.PostForm{Text: "t"})
	assertAppErrorCode(t, err, models.CodeUnauthorized)
}

func TestPostService_UpdatePost(t *testing.T) {
	t.Parallel()

	t.Run("non-author is denied", func(t *testing.T) {
		t.Parallel()
		posts := noopPostRepo()
		posts.updateFn = func(_ context.Context, _ *models.Post) error {
			t.Fatal("update must not run")
			return nil
		}
		svc := NewPostService(posts, noopGroupRepo(), nil)
		_, err := svc.UpdatePost(context.Background(), 2, "alice", 5, validation.PostForm{Text: "x"})
		assertPermissionDenied(t, err)
	})

	t.Run("unknown post is not found", func(t *testing.T) {
		t.Parallel()
		posts := noopPostRepo()
		posts.getByAuthorFn = func(_ context.Context, _ string, id uint) (*models.Post, error) {
			return nil, models.NewNotFoundError("Post", id)
		}
		svc := NewPostService(posts, noopGroupRepo(), nil)
		_, err := svc.UpdatePost(context.Background(), 1, "alice", 5, validation.PostForm{Text: "x"})
		assertNotFound(t, err)
	})

	t.Run("author rewrites fields and clears group", func(t *testing.T) {
		t.Parallel()
		gid := uint(4)
		posts := noopPostRepo()
		posts.getByAuthorFn = func(_ context.Context, _ string, id uint) (*models.Post, error) {
			return &models.Post{ID: id, AuthorID: 1, Text: "old", GroupID: &gid}, nil
		}
		var updated *models.Post
		posts.updateFn = func(_ context.Context, p *models.Post) error {
			updated = p
			return nil
		}
		inv := &invalidations{}
		svc := NewPostService(posts, noopGroupRepo(), inv.fn())

		post, err := svc.UpdatePost(context.Background(), 1, "alice", 5, validation.PostForm{Text: "new"})
		require.NoError(t, err)
		assert.Equal(t, "new", post.Text)
		assert.Nil(t, updated.GroupID)
		assert.Equal(t, 1, inv.n)
	})

	t.Run("duplicate becomes a field error", func(t *testing.T) {
		t.Parallel()
		posts := noopPostRepo()
		posts.updateFn = func(_ context.Context, _ *models.Post) error { return repository.ErrDuplicatePost }
		svc := NewPostService(posts, noopGroupRepo(), nil)
		_, err := svc.UpdatePost(context.Background(), 1, "alice", 5, validation.PostForm{Text: "x"})
		fields := assertValidationError(t, err)
		assert.Contains(t, fields, "text")
	})
}

func TestPostService_DeletePost(t *testing.T) {
	t.Parallel()

	t.Run("author deletes", func(t *testing.T) {
		t.Parallel()
		var deleted uint
		posts := noopPostRepo()
		posts.deleteFn = func(_ context.Context, id uint) error {
			deleted = id
			return nil
		}
		inv := &invalidations{}
		svc := NewPostService(posts, noopGroupRepo(), inv.fn())
		require.NoError(t, svc.DeletePost(context.Background(), 1, "alice", 9))
		assert.Equal(t, uint(9), deleted)
		assert.Equal(t, 1, inv.n)
	})

	t.Run("non-author is denied", func(t *testing.T) {
		t.Parallel()
		posts := noopPostRepo()
		posts.deleteFn = func(_ context.Context, _ uint) error {
			t.Fatal("delete must not run")
			return nil
		}
		svc := NewPostService(posts, noopGroupRepo(), nil)
		assertPermissionDenied(t, svc.DeletePost(context.Background(), 2, "alice", 9))
	})

	t.Run("repository error propagates", func(t *testing.T) {
		t.Parallel()
		repoErr := models.NewInternalError(errors.New("boom"))
		posts := noopPostRepo()
		posts.deleteFn = func(_ context.Context, _ uint) error { return repoErr }
		svc := NewPostService(posts, noopGroupRepo(), nil)
		assert.ErrorIs(t, svc.DeletePost(context.Background(), 1, "alice", 9), repoErr)
	})
}
