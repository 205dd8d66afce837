package server

import (
	"strconv"

	"blogfeed/internal/middleware"
	"blogfeed/internal/models"
	"blogfeed/internal/validation"

	"github.com/gofiber/fiber/v2"
)

const viewPostForm = "create_post"

// postFormOf fills the form fields from an existing post.
func postFormOf(p *models.Post) validation.PostForm {
	form := validation.PostForm{Description: p.Description, Text: p.Text, Image: p.Image}
	if p.GroupID != nil {
		form.Group = strconv.FormatUint(uint64(*p.GroupID), 10)
	}
	return form
}

// NewPostPage handles GET /new/
func (s *Server) NewPostPage(c *fiber.Ctx) error {
	return s.render(c, fiber.StatusOK, viewPostForm, fiber.Map{
		"form":    validation.PostForm{},
		"is_edit": false,
	})
}

// CreatePost handles POST /new/ and redirects to the home timeline.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var form validation.PostForm
	if err := bindForm(c, &form); err != nil {
		return s.fail(c, err, "/new/")
	}
	if _, err := s.postService.CreatePost(c.UserContext(), middleware.CurrentUserID(c), form); err != nil {
		if models.HasCode(err, models.CodeValidation) {
			return s.redisplay(c, viewPostForm, fiber.Map{"form": form, "is_edit": false}, err)
		}
		return s.fail(c, err, "/new/")
	}
	return c.Redirect("/", fiber.StatusFound)
}

// EditPostPage handles GET /:username/:postId/edit/
func (s *Server) EditPostPage(c *fiber.Ctx) error {
	postID, ok := parseID(c, "postId")
	if !ok {
		return s.NotFound(c)
	}
	name := username(c)
	post, err := s.postService.EditablePost(c.UserContext(), middleware.CurrentUserID(c), name, postID)
	if err != nil {
		return s.fail(c, err, postURL(name, postID))
	}
	return s.render(c, fiber.StatusOK, viewPostForm, fiber.Map{
		"form":    postFormOf(post),
		"post":    post,
		"is_edit": true,
	})
}

// UpdatePost handles POST /:username/:postId/edit/ and redirects to the post.
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	postID, ok := parseID(c, "postId")
	if !ok {
		return s.NotFound(c)
	}
	name := username(c)
	back := postURL(name, postID)

	var form validation.PostForm
	if err := bindForm(c, &form); err != nil {
		return s.fail(c, err, back)
	}
	if _, err := s.postService.UpdatePost(c.UserContext(), middleware.CurrentUserID(c), name, postID, form); err != nil {
		if models.HasCode(err, models.CodeValidation) {
			return s.redisplay(c, viewPostForm, fiber.Map{"form": form, "is_edit": true}, err)
		}
		return s.fail(c, err, back)
	}
	return c.Redirect(back, fiber.StatusFound)
}

// DeletePost handles GET /:username/:postId/post_delete/ and redirects to the home timeline.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, ok := parseID(c, "postId")
	if !ok {
		return s.NotFound(c)
	}
	name := username(c)
	if err := s.postService.DeletePost(c.UserContext(), middleware.CurrentUserID(c), name, postID); err != nil {
		return s.fail(c, err, postURL(name, postID))
	}
	return c.Redirect("/", fiber.StatusFound)
}
