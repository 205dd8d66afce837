package server

import (
	"blogfeed/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// Index handles GET /
func (s *Server) Index(c *fiber.Ctx) error {
	page, err := s.feedService.Home(c.UserContext(), middleware.CurrentUserID(c), c.Query("page"))
	if err != nil {
		return s.fail(c, err, "/")
	}
	return s.render(c, fiber.StatusOK, "index", fiber.Map{"page_obj": page})
}

// GroupPosts handles GET /group/:slug/
func (s *Server) GroupPosts(c *fiber.Ctx) error {
	feed, err := s.feedService.Group(c.UserContext(), middleware.CurrentUserID(c), c.Params("slug"), c.Query("page"))
	if err != nil {
		return s.fail(c, err, "/")
	}
	return s.render(c, fiber.StatusOK, "group_list", fiber.Map{
		"group":    feed.Group,
		"page_obj": feed.Page,
	})
}

// Profile handles GET /:username/
func (s *Server) Profile(c *fiber.Ctx) error {
	feed, err := s.feedService.Profile(c.UserContext(), middleware.CurrentUserID(c), username(c), c.Query("page"))
	if err != nil {
		return s.fail(c, err, "/")
	}
	return s.render(c, fiber.StatusOK, "profile", fiber.Map{
		"author":     feed.Author,
		"page_obj":   feed.Page,
		"post_count": feed.PostCount,
		"following":  feed.Following,
		"is_owner":   feed.IsOwner,
	})
}

// PostView handles GET /:username/:postId/
func (s *Server) PostView(c *fiber.Ctx) error {
	postID, ok := parseID(c, "postId")
	if !ok {
		return s.NotFound(c)
	}
	name := username(c)
	detail, err := s.feedService.Post(c.UserContext(), middleware.CurrentUserID(c), name, postID)
	if err != nil {
		return s.fail(c, err, profileURL(name))
	}
	return s.render(c, fiber.StatusOK, "post", fiber.Map{
		"post":       detail.Post,
		"author":     detail.Author,
		"post_count": detail.PostCount,
		"following":  detail.Following,
		"comments":   detail.Comments,
		"form":       fiber.Map{"text": ""},
	})
}

// FollowIndex handles GET /follow/
func (s *Server) FollowIndex(c *fiber.Ctx) error {
	page, err := s.feedService.Follow(c.UserContext(), middleware.CurrentUserID(c), c.Query("page"))
	if err != nil {
		return s.fail(c, err, "/")
	}
	return s.render(c, fiber.StatusOK, "follow", fiber.Map{"page_obj": page})
}

// Search handles GET /search/?q=
func (s *Server) Search(c *fiber.Ctx) error {
	feed, err := s.feedService.Search(c.UserContext(), middleware.CurrentUserID(c), c.Query("q"), c.Query("page"))
	if err != nil {
		return s.fail(c, err, "/")
	}
	return s.render(c, fiber.StatusOK, "search", fiber.Map{
		"query":    feed.Query,
		"page_obj": feed.Page,
	})
}
