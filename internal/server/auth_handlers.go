package server

import (
	"time"

	"blogfeed/internal/cache"
	"blogfeed/internal/middleware"
	"blogfeed/internal/models"
	"blogfeed/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// SignupPage handles GET /auth/signup/
func (s *Server) SignupPage(c *fiber.Ctx) error {
	return s.render(c, fiber.StatusOK, "signup", fiber.Map{"form": validation.SignupForm{}})
}

// Signup handles POST /auth/signup/ and redirects to the home timeline.
func (s *Server) Signup(c *fiber.Ctx) error {
	var form validation.SignupForm
	if err := bindForm(c, &form); err != nil {
		return s.fail(c, err, "/auth/signup/")
	}
	if _, err := s.userService.Signup(c.UserContext(), form); err != nil {
		if models.HasCode(err, models.CodeValidation) {
			form.Password1, form.Password2 = "", ""
			return s.redisplay(c, "signup", fiber.Map{"form": form}, err)
		}
		return err
	}
	return c.Redirect("/", fiber.StatusFound)
}

// LoginPage handles GET /auth/login/
func (s *Server) LoginPage(c *fiber.Ctx) error {
	return s.render(c, fiber.StatusOK, "login", fiber.Map{
		"form": validation.LoginForm{Next: middleware.SafeNext(c.Query("next"))},
	})
}

// Login handles POST /auth/login/. A JSON request gets the token in the body; a form
// post is redirected to next (or home) with the session cookie set.
func (s *Server) Login(c *fiber.Ctx) error {
	var form validation.LoginForm
	if err := bindForm(c, &form); err != nil {
		return s.redisplay(c, "login", fiber.Map{"form": form}, err)
	}
	if form.Next == "" {
		form.Next = c.Query("next")
	}
	next := middleware.SafeNext(form.Next)

	user, err := s.userService.Authenticate(c.UserContext(), form)
	if err != nil {
		if models.HasCode(err, models.CodeValidation) || models.HasCode(err, models.CodeUnauthorized) {
			form.Password = ""
			return s.redisplay(c, "login", fiber.Map{"form": form}, err)
		}
		return err
	}

	ttl := s.config.TokenTTL()
	token, _, err := middleware.IssueToken(s.config.JWTSecret, user.ID, ttl)
	if err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	if next == "" {
		next = "/"
	}
	if c.Is("json") {
		return c.JSON(fiber.Map{
			"token":    token,
			"user":     user,
			"redirect": next,
		})
	}
	return c.Redirect(next, fiber.StatusFound)
}

// Logout handles POST /auth/logout/. The token id is revoked until the token would expire.
func (s *Server) Logout(c *fiber.Ctx) error {
	if jti, ok := c.Locals("jti").(string); ok && jti != "" {
		ttl := time.Minute
		if exp, ok := c.Locals("tokenExpiresAt").(time.Time); ok {
			ttl = time.Until(exp)
		}
		if err := cache.RevokeToken(c.UserContext(), jti, ttl); err != nil {
			middleware.Logger.WarnContext(c.UserContext(), "token revocation failed", "error", err)
		}
	}
	c.ClearCookie(middleware.TokenCookie)
	return s.render(c, fiber.StatusOK, "logged_out", nil)
}
