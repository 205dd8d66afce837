package service

import (
	"context"
	"errors"

	"blogfeed/internal/models"
	"blogfeed/internal/observability"
	"blogfeed/internal/repository"
	"blogfeed/internal/validation"
)

const msgDuplicatePost = "A post with this content already exists."

// InvalidateFunc drops cached feed pages after a write. Nil disables invalidation.
type InvalidateFunc func(ctx context.Context)

func (f InvalidateFunc) run(ctx context.Context) {
	if f != nil {
		f(ctx)
	}
}

type PostService struct {
	posts      repository.PostRepository
	groups     repository.GroupRepository
	invalidate InvalidateFunc
}

func NewPostService(posts repository.PostRepository, groups repository.GroupRepository, invalidate InvalidateFunc) *PostService {
	return &PostService{posts: posts, groups: groups, invalidate: invalidate}
}

// checkForm validates form and resolves its group.
func (s *PostService) checkForm(ctx context.Context, form *validation.PostForm) (*uint, error) {
	groupID, errs := form.Validate()
	if groupID != nil {
		if _, err := s.groups.GetByID(ctx, *groupID); err != nil {
			if !models.HasCode(err, models.CodeNotFound) {
				return nil, err
			}
			errs.Add("group", "Select a valid choice. That choice is not one of the available choices.")
		}
	}
	if errs.Any() {
		return nil, models.NewFieldValidationError(errs)
	}
	return groupID, nil
}

func duplicateAsFieldError(err error) error {
	if errors.Is(err, repository.ErrDuplicatePost) {
		return models.NewFieldValidationError(models.FieldErrors{"text": {msgDuplicatePost}})
	}
	return err
}

// CreatePost publishes a post written by authorID.
func (s *PostService) CreatePost(ctx context.Context, authorID uint, form validation.PostForm) (post *models.Post, err error) {
	defer func() { observability.RecordMutation("post.create", err) }()

	if authorID == 0 {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	groupID, err := s.checkForm(ctx, &form)
	if err != nil {
		return nil, err
	}

	post = &models.Post{
		Description: form.Description,
		Text:        form.Text,
		AuthorID:    authorID,
		GroupID:     groupID,
		Image:       form.Image,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, duplicateAsFieldError(err)
	}
	s.invalidate.run(ctx)
	return post, nil
}

// EditablePost returns the post of username that actorID may edit.
func (s *PostService) EditablePost(ctx context.Context, actorID uint, username string, postID uint) (*models.Post, error) {
	post, err := s.posts.GetByAuthor(ctx, username, postID)
	if err != nil {
		return nil, err
	}
	if err := authorize(ActionEditPost, actorID, post.AuthorID); err != nil {
		return nil, err
	}
	post.IsOwner = true
	return post, nil
}

// UpdatePost rewrites description, text, group and image. The publication date is kept.
func (s *PostService) UpdatePost(ctx context.Context, actorID uint, username string, postID uint, form validation.PostForm) (post *models.Post, err error) {
	defer func() { observability.RecordMutation("post.edit", err) }()

	post, err = s.EditablePost(ctx, actorID, username, postID)
	if err != nil {
		return nil, err
	}
	groupID, err := s.checkForm(ctx, &form)
	if err != nil {
		return nil, err
	}

	post.Description = form.Description
	post.Text = form.Text
	post.GroupID = groupID
	post.Group = nil
	post.Image = form.Image
	if err := s.posts.Update(ctx, post); err != nil {
		return nil, duplicateAsFieldError(err)
	}
	s.invalidate.run(ctx)
	return post, nil
}

// DeletePost removes the post of username together with its comments.
func (s *PostService) DeletePost(ctx context.Context, actorID uint, username string, postID uint) (err error) {
	defer func() { observability.RecordMutation("post.delete", err) }()

	post, err := s.posts.GetByAuthor(ctx, username, postID)
	if err != nil {
		return err
	}
	if err := authorize(ActionDeletePost, actorID, post.AuthorID); err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, post.ID); err != nil {
		return err
	}
	s.invalidate.run(ctx)
	return nil
}
