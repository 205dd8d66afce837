package server

import (
	"blogfeed/internal/middleware"
	"blogfeed/internal/models"
	"blogfeed/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// AddComment handles GET|POST /:username/:postId/comment/.
// Every outcome except an unknown post returns to the post; an invalid comment saves nothing.
func (s *Server) AddComment(c *fiber.Ctx) error {
	postID, ok := parseID(c, "postId")
	if !ok {
		return s.NotFound(c)
	}
	name := username(c)
	back := postURL(name, postID)
	if c.Method() != fiber.MethodPost {
		return c.Redirect(back, fiber.StatusFound)
	}

	var form validation.CommentForm
	if err := bindForm(c, &form); err != nil {
		return c.Redirect(back, fiber.StatusFound)
	}
	if _, err := s.commentService.AddComment(c.UserContext(), middleware.CurrentUserID(c), name, postID, form); err != nil {
		if models.HasCode(err, models.CodeValidation) {
			return c.Redirect(back, fiber.StatusFound)
		}
		return s.fail(c, err, back)
	}
	return c.Redirect(back, fiber.StatusFound)
}

// EditCommentPage handles GET /:username/:postId/:commentId/edit/
func (s *Server) EditCommentPage(c *fiber.Ctx) error {
	postID, ok := parseID(c, "postId")
	if !ok {
		return s.NotFound(c)
	}
	commentID, ok := parseID(c, "commentId")
	if !ok {
		return s.NotFound(c)
	}
	name := username(c)
	comment, err := s.commentService.EditableComment(c.UserContext(), middleware.CurrentUserID(c), name, postID, commentID)
	if err != nil {
		return s.fail(c, err, postURL(name, postID))
	}
	return s.render(c, fiber.StatusOK, "comment_edit", fiber.Map{
		"comment": comment,
		"form":    validation.CommentForm{Text: comment.Text},
	})
}

// UpdateComment handles POST /:username/:postId/:commentId/edit/
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	postID, ok := parseID(c, "postId")
	if !ok {
		return s.NotFound(c)
	}
	commentID, ok := parseID(c, "commentId")
	if !ok {
		return s.NotFound(c)
	}
	name := username(c)
	back := postURL(name, postID)

	var form validation.CommentForm
	if err := bindForm(c, &form); err != nil {
		return s.fail(c, err, back)
	}
	_, err := s.commentService.UpdateComment(c.UserContext(), middleware.CurrentUserID(c), name, postID, commentID, form)
	if err != nil {
		if models.HasCode(err, models.CodeValidation) {
			return s.redisplay(c, "comment_edit", fiber.Map{"form": form}, err)
		}
		return s.fail(c, err, back)
	}
	return c.Redirect(back, fiber.StatusFound)
}

// DeleteComment handles GET|POST /:username/:postId/:commentId/delete/
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	postID, ok := parseID(c, "postId")
	if !ok {
		return s.NotFound(c)
	}
	commentID, ok := parseID(c, "commentId")
	if !ok {
		return s.NotFound(c)
	}
	back := postURL(username(c), postID)
	if err := s.commentService.DeleteComment(c.UserContext(), middleware.CurrentUserID(c), postID, commentID); err != nil {
		return s.fail(c, err, back)
	}
	return c.Redirect(back, fiber.StatusFound)
}
