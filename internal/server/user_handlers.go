package server

import (
	"blogfeed/internal/middleware"
	"blogfeed/internal/models"
	"blogfeed/internal/validation"

	"github.com/gofiber/fiber/v2"
)

const viewProfileForm = "profile_edit"

func profileFormOf(u *models.User) validation.ProfileForm {
	return validation.ProfileForm{
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Username:  u.Username,
		About:     u.About,
		Avatar:    u.Avatar,
		Email:     u.Email,
	}
}

// EditProfilePage handles GET /:username/edit/
func (s *Server) EditProfilePage(c *fiber.Ctx) error {
	name := username(c)
	user, err := s.userService.ProfileForEdit(c.UserContext(), middleware.CurrentUserID(c), name)
	if err != nil {
		return s.fail(c, err, profileURL(name))
	}
	return s.render(c, fiber.StatusOK, viewProfileForm, fiber.Map{"form": profileFormOf(user)})
}

// UpdateProfile handles POST /:username/edit/ and redirects to the profile under its new name.
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	name := username(c)
	var form validation.ProfileForm
	if err := bindForm(c, &form); err != nil {
		return s.fail(c, err, profileURL(name))
	}
	user, err := s.userService.UpdateProfile(c.UserContext(), middleware.CurrentUserID(c), name, form)
	if err != nil {
		if models.HasCode(err, models.CodeValidation) {
			return s.redisplay(c, viewProfileForm, fiber.Map{"form": form}, err)
		}
		return s.fail(c, err, profileURL(name))
	}
	return c.Redirect(profileURL(user.Username), fiber.StatusFound)
}

// ProfileFollow handles GET /:username/follow/
func (s *Server) ProfileFollow(c *fiber.Ctx) error {
	name := username(c)
	if err := s.followService.Follow(c.UserContext(), middleware.CurrentUserID(c), name); err != nil {
		return s.fail(c, err, profileURL(name))
	}
	return c.Redirect(profileURL(name), fiber.StatusFound)
}

// ProfileUnfollow handles GET /:username/unfollow/
func (s *Server) ProfileUnfollow(c *fiber.Ctx) error {
	name := username(c)
	if err := s.followService.Unfollow(c.UserContext(), middleware.CurrentUserID(c), name); err != nil {
		return s.fail(c, err, profileURL(name))
	}
	return c.Redirect(profileURL(name), fiber.StatusFound)
}
