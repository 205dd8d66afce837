package service

import (
	"context"

	"blogfeed/internal/models"
	"blogfeed/internal/observability"
	"blogfeed/internal/repository"
	"blogfeed/internal/validation"
)

type CommentService struct {
	comments   repository.CommentRepository
	posts      repository.PostRepository
	invalidate InvalidateFunc
}

func NewCommentService(comments repository.CommentRepository, posts repository.PostRepository, invalidate InvalidateFunc) *CommentService {
	return &CommentService{comments: comments, posts: posts, invalidate: invalidate}
}

// AddComment attaches a comment by actorID to the post id written by username.
func (s *CommentService) AddComment(ctx context.Context, actorID uint, username string, postID uint, form validation.CommentForm) (comment *models.Comment, err error) {
	defer func() { observability.RecordMutation("comment.create", err) }()

	if actorID == 0 {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	post, err := s.posts.GetByAuthor(ctx, username, postID)
	if err != nil {
		return nil, err
	}
	if errs := form.Validate(); errs.Any() {
		return nil, models.NewFieldValidationError(errs)
	}

	comment = &models.Comment{PostID: post.ID, AuthorID: actorID, Text: form.Text}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	s.invalidate.run(ctx)
	return comment, nil
}

// EditableComment resolves commentID inside the post of username and checks actorID wrote it.
func (s *CommentService) EditableComment(ctx context.Context, actorID uint, username string, postID, commentID uint) (*models.Comment, error) {
	post, err := s.posts.GetByAuthor(ctx, username, postID)
	if err != nil {
		return nil, err
	}
	comment, err := s.comments.GetForPost(ctx, post.ID, commentID)
	if err != nil {
		return nil, err
	}
	if err := authorize(ActionEditComment, actorID, comment.AuthorID); err != nil {
		return nil, err
	}
	comment.IsOwner = true
	return comment, nil
}

// UpdateComment rewrites the comment text.
func (s *CommentService) UpdateComment(ctx context.Context, actorID uint, username string, postID, commentID uint, form validation.CommentForm) (comment *models.Comment, err error) {
	defer func() { observability.RecordMutation("comment.edit", err) }()

	comment, err = s.EditableComment(ctx, actorID, username, postID, commentID)
	if err != nil {
		return nil, err
	}
	if errs := form.Validate(); errs.Any() {
		return nil, models.NewFieldValidationError(errs)
	}
	comment.Text = form.Text
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteComment removes a comment found by post id and comment id; the username in the
// URL only names where to redirect.
func (s *CommentService) DeleteComment(ctx context.Context, actorID, postID, commentID uint) (err error) {
	defer func() { observability.RecordMutation("comment.delete", err) }()

	comment, err := s.comments.GetForPost(ctx, postID, commentID)
	if err != nil {
		return err
	}
	if err := authorize(ActionDeleteComment, actorID, comment.AuthorID); err != nil {
		return err
	}
	if err := s.comments.Delete(ctx, comment.ID); err != nil {
		return err
	}
	s.invalidate.run(ctx)
	return nil
}
