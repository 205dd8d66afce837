package validation

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"blogfeed/internal/models"
)

const (
	msgRequired       = "This field is required."
	maxDescriptionLen = 200
	maxAboutLen       = 500
	maxCommentLen     = 10000
)

// PostForm is the create/edit post submission.
type PostForm struct {
	Description string `form:"description" json:"description"`
	Text        string `form:"text" json:"text"`
	Group       string `form:"group" json:"group"`
	Image       string `form:"image" json:"image"`
}

// Validate trims the form, checks it, and returns the selected group id (nil for none).
func (f *PostForm) Validate() (*uint, models.FieldErrors) {
	errs := models.FieldErrors{}
	f.Description = strings.TrimSpace(f.Description)
	f.Text = strings.TrimSpace(f.Text)
	f.Group = strings.TrimSpace(f.Group)
	f.Image = strings.TrimSpace(f.Image)

	if f.Text == "" {
		errs.Add("text", msgRequired)
	}
	if utf8.RuneCountInString(f.Description) > maxDescriptionLen {
		errs.Add("description", "Ensure this value has at most 200 characters.")
	}

	var groupID *uint
	if f.Group != "" {
		id, err := strconv.ParseUint(f.Group, 10, 32)
		if err != nil || id == 0 {
			errs.Add("group", "Select a valid choice. That choice is not one of the available choices.")
		} else {
			v := uint(id)
			groupID = &v
		}
	}
	return groupID, errs
}

// CommentForm is the add/edit comment submission.
type CommentForm struct {
	Text string `form:"text" json:"text"`
}

// Validate trims and checks the comment text.
func (f *CommentForm) Validate() models.FieldErrors {
	errs := models.FieldErrors{}
	f.Text = strings.TrimSpace(f.Text)
	switch {
	case f.Text == "":
		errs.Add("text", msgRequired)
	case utf8.RuneCountInString(f.Text) > maxCommentLen:
		errs.Add("text", "Ensure this value has at most 10000 characters.")
	}
	return errs
}

// ProfileForm holds the editable profile fields.
type ProfileForm struct {
	FirstName string `form:"first_name" json:"first_name"`
	LastName  string `form:"last_name" json:"last_name"`
	Username  string `form:"username" json:"username"`
	About     string `form:"about" json:"about"`
	Avatar    string `form:"avatar" json:"avatar"`
	Email     string `form:"email" json:"email"`
}

func (f *ProfileForm) normalize() {
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.Username = strings.TrimSpace(f.Username)
	f.Avatar = strings.TrimSpace(f.Avatar)
	f.Email = strings.TrimSpace(f.Email)
}

// Validate checks the profile; email is optional here.
func (f *ProfileForm) Validate() models.FieldErrors {
	f.normalize()
	errs := models.FieldErrors{}
	if err := ValidateUsername(f.Username); err != nil {
		errs.Add("username", err.Error())
	}
	if utf8.RuneCountInString(f.FirstName) > 150 {
		errs.Add("first_name", "Ensure this value has at most 150 characters.")
	}
	if utf8.RuneCountInString(f.LastName) > 150 {
		errs.Add("last_name", "Ensure this value has at most 150 characters.")
	}
	if utf8.RuneCountInString(f.About) > maxAboutLen {
		errs.Add("about", "Ensure this value has at most 500 characters.")
	}
	if f.Email != "" {
		if err := ValidateEmail(f.Email); err != nil {
			errs.Add("email", err.Error())
		}
	}
	return errs
}

// Apply copies the form onto user.
func (f *ProfileForm) Apply(user *models.User) {
	user.FirstName = f.FirstName
	user.LastName = f.LastName
	user.Username = f.Username
	user.About = f.About
	user.Avatar = f.Avatar
	user.Email = f.Email
}

// SignupForm is ProfileForm plus a confirmed password; email is required.
type SignupForm struct {
	ProfileForm
	Password1 string `form:"password1" json:"password1"`
	Password2 string `form:"password2" json:"password2"`
}

// Validate checks the profile fields, the email and the password pair.
func (f *SignupForm) Validate() models.FieldErrors {
	errs := f.ProfileForm.Validate()
	if f.Email == "" {
		errs.Add("email", msgRequired)
	}
	switch {
	case f.Password1 == "":
		errs.Add("password1", msgRequired)
	case f.Password1 != f.Password2:
		errs.Add("password2", "The two password fields didn't match.")
	default:
		if err := ValidatePassword(f.Password1, f.Username); err != nil {
			errs.Add("password2", err.Error())
		}
	}
	return errs
}

// LoginForm is the credentials submission.
type LoginForm struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
	Next     string `form:"next" json:"next"`
}

// Validate checks both credentials are present.
func (f *LoginForm) Validate() models.FieldErrors {
	errs := models.FieldErrors{}
	f.Username = strings.TrimSpace(f.Username)
	if f.Username == "" {
		errs.Add("username", msgRequired)
	}
	if f.Password == "" {
		errs.Add("password", msgRequired)
	}
	return errs
}
