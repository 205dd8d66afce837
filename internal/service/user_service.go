package service

import (
	"context"

	"blogfeed/internal/models"
	"blogfeed/internal/observability"
	"blogfeed/internal/repository"
	"blogfeed/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

const (
	msgBadCredentials = "Please enter a correct username and password. Note that both fields may be case-sensitive."
	msgUsernameTaken  = "A user with that username already exists."
	msgEmailTaken     = "This email address is already registered to another account."
)

type UserService struct {
	users repository.UserRepository
	// cost is the bcrypt cost for new passwords.
	cost int
}

func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users, cost: bcrypt.DefaultCost}
}

// WithPasswordCost overrides the bcrypt cost, mainly for tests.
func (s *UserService) WithPasswordCost(cost int) *UserService {
	s.cost = cost
	return s
}

// checkIdentity adds field errors when username is held by a user other than selfID or
// email is registered under a username other than owner.
func (s *UserService) checkIdentity(ctx context.Context, selfID uint, owner, username, email string, errs models.FieldErrors) error {
	if _, failed := errs["username"]; !failed {
		existing, err := s.users.GetByUsername(ctx, username)
		switch {
		case err == nil && existing.ID != selfID:
			errs.Add("username", msgUsernameTaken)
		case err != nil && !models.HasCode(err, models.CodeNotFound):
			return err
		}
	}
	if _, failed := errs["email"]; !failed && email != "" {
		taken, err := s.users.EmailTakenByOther(ctx, email, owner)
		if err != nil {
			return err
		}
		if taken {
			errs.Add("email", msgEmailTaken)
		}
	}
	return nil
}

// Signup creates an account from the signup form.
func (s *UserService) Signup(ctx context.Context, form validation.SignupForm) (user *models.User, err error) {
	defer func() { observability.RecordMutation("user.create", err) }()

	errs := form.Validate()
	if err := s.checkIdentity(ctx, 0, form.Username, form.Username, form.Email, errs); err != nil {
		return nil, err
	}
	if errs.Any() {
		return nil, models.NewFieldValidationError(errs)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(form.Password1), s.cost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	user = &models.User{Password: string(hashed)}
	form.Apply(user)
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate checks username and password and returns the matching user.
func (s *UserService) Authenticate(ctx context.Context, form validation.LoginForm) (*models.User, error) {
	if errs := form.Validate(); errs.Any() {
		return nil, models.NewFieldValidationError(errs)
	}
	user, err := s.users.GetByUsername(ctx, form.Username)
	if err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			return nil, models.NewUnauthorizedError(msgBadCredentials)
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(form.Password)); err != nil {
		return nil, models.NewUnauthorizedError(msgBadCredentials)
	}
	return user, nil
}

// ProfileForEdit returns the profile of username when actorID owns it.
func (s *UserService) ProfileForEdit(ctx context.Context, actorID uint, username string) (*models.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if err := authorize(ActionEditProfile, actorID, user.ID); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateProfile saves the profile of username. The returned user carries the new username.
func (s *UserService) UpdateProfile(ctx context.Context, actorID uint, username string, form validation.ProfileForm) (user *models.User, err error) {
	defer func() { observability.RecordMutation("user.edit", err) }()

	user, err = s.ProfileForEdit(ctx, actorID, username)
	if err != nil {
		return nil, err
	}
	errs := form.Validate()
	if err := s.checkIdentity(ctx, user.ID, user.Username, form.Username, form.Email, errs); err != nil {
		return nil, err
	}
	if errs.Any() {
		return nil, models.NewFieldValidationError(errs)
	}

	form.Apply(user)
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
