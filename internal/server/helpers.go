package server

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"blogfeed/internal/middleware"
	"blogfeed/internal/models"

	"github.com/gofiber/fiber/v2"
)

func (s *Server) loginURL() string {
	if s.config.LoginURL == "" {
		return "/auth/login/"
	}
	return s.config.LoginURL
}

func profileURL(username string) string {
	return "/" + url.PathEscape(username) + "/"
}

func postURL(username string, postID uint) string {
	return fmt.Sprintf("/%s/%d/", url.PathEscape(username), postID)
}

// render writes a page document: the view name, data, and the values every page carries.
func (s *Server) render(c *fiber.Ctx, status int, view string, data fiber.Map) error {
	doc := fiber.Map{}
	for k, v := range data {
		doc[k] = v
	}
	doc["view"] = view
	doc["year"] = time.Now().Year()
	doc["viewer_id"] = middleware.CurrentUserID(c)

	sidebar, err := s.feedService.Sidebar(c.UserContext())
	if err != nil {
		return err
	}
	doc["groups"] = sidebar.Groups
	doc["most_commented"] = sidebar.MostCommented

	return c.Status(status).JSON(doc)
}

func (s *Server) staticPage(view string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return s.render(c, fiber.StatusOK, view, nil)
	}
}

// redisplay renders view again with the submitted form and its field errors.
func (s *Server) redisplay(c *fiber.Ctx, view string, data fiber.Map, err error) error {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		return err
	}
	if data == nil {
		data = fiber.Map{}
	}
	errs := appErr.Fields
	if errs == nil {
		errs = models.FieldErrors{"__all__": {appErr.Message}}
	}
	data["errors"] = errs
	return s.render(c, fiber.StatusBadRequest, view, data)
}

// fail maps a service error onto the response. resource is where a denied actor is sent.
func (s *Server) fail(c *fiber.Ctx, err error, resource string) error {
	switch {
	case models.HasCode(err, models.CodeNotFound):
		return s.NotFound(c)
	case models.HasCode(err, models.CodePermissionDenied):
		return c.Redirect(resource, fiber.StatusFound)
	case models.HasCode(err, models.CodeUnauthorized):
		return c.Redirect(middleware.LoginRedirectURL(s.loginURL(), c.OriginalURL()), fiber.StatusFound)
	case models.HasCode(err, models.CodeValidation):
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}
	return err
}

// parseID extracts a route parameter by name as a positive uint.
// A malformed id addresses nothing; callers render the not-found page when ok is false.
func parseID(c *fiber.Ctx, param string) (uint, bool) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}

// username returns the unescaped :username parameter.
func username(c *fiber.Ctx) string {
	raw := c.Params("username")
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

// bindForm parses a urlencoded, multipart or JSON body into dst.
func bindForm(c *fiber.Ctx, dst interface{}) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(dst); err != nil {
		return models.NewValidationError("Invalid request body")
	}
	return nil
}
