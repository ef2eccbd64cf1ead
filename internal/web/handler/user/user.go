// Package user serves sign up and the profile of the logged in user.
package user

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/acctmgr/acctmgr/internal/auth"
	"github.com/acctmgr/acctmgr/internal/db/models"
	"github.com/acctmgr/acctmgr/internal/web/handler"
)

// Path is the route group of the user profile.
const Path = handler.APIPath + "/user"

type (
	// RegisterRequest signs up with an activation code.
	RegisterRequest struct {
		Username       string `json:"username" validate:"required"`
		Password       string `json:"password" validate:"required"`
		ActivationCode string `json:"activation_code" validate:"required,max=50"`
	}

	// ProfileRequest changes the given profile fields.
	ProfileRequest struct {
		Username *string `json:"username"`
		Phone    *string `json:"phone"`
		Email    *string `json:"email" validate:"omitempty,email,max=255"`
	}

	// PasswordRequest changes the password.
	PasswordRequest struct {
		OldPassword string `json:"old_password" validate:"required"`
		NewPassword string `json:"new_password" validate:"required"`
	}

	// Profile is the API representation of a user.
	Profile struct {
		ID             uint64     `json:"id"`
		Username       string     `json:"username"`
		Phone          string     `json:"phone"`
		Email          string     `json:"email"`
		IsAdmin        bool       `json:"is_admin"`
		ActivationCode string     `json:"activation_code"`
		ExpiresAt      *time.Time `json:"expires_at"`
		CreatedAt      time.Time  `json:"created_at"`
	}
)

// NewProfile converts a user row. The password hash never leaves the server.
func NewProfile(u *models.User) Profile {
	return Profile{
		ID:             u.ID,
		Username:       u.Username,
		Phone:          u.Phone,
		Email:          u.Email,
		IsAdmin:        u.IsAdmin,
		ActivationCode: u.ActivationCode,
		ExpiresAt:      u.ExpiresAt,
		CreatedAt:      u.CreatedAt,
	}
}

// Service is the user handler service.
type Service struct {
	handler.Service
	users *auth.LocalProvider
}

// Handler is the user handler.
var Handler = Service{}

// Init registers the user routes. Register is public.
func (s *Service) Init(app fiber.Router, deps *handler.Deps) error {
	if app == nil || deps == nil || deps.Users == nil {
		return handler.ErrMissingDeps
	}

	s.users = deps.Users

	app.Post(Path+"/register", s.Register)

	app.Route(Path, func(router fiber.Router) {
		router.Use(auth.RequireUser())
		router.Get(handler.RootPath, s.Get)
		router.Put(handler.RootPath, s.Update)
		router.Put("/password", s.Password)
	})

	return nil
}

// Register creates a user and redeems the activation code.
func (s *Service) Register(c *fiber.Ctx) error {
	req := new(RegisterRequest)
	if err := handler.Bind(c, req); err != nil {
		return err
	}

	u, err := s.users.Register(c.UserContext(), auth.Registration{
		Username:       req.Username,
		Password:       req.Password,
		ActivationCode: req.ActivationCode,
	})
	if err != nil {
		return err
	}

	return handler.OK(c, NewProfile(u))
}

// Get returns the profile of the session user.
func (s *Service) Get(c *fiber.Ctx) error {
	sess, _ := auth.Current(c)

	u, err := s.users.GetUserByID(c.UserContext(), sess.UserID)
	if err != nil {
		return err
	}

	return handler.OK(c, NewProfile(u))
}

// Update changes username, phone or email of the session user.
func (s *Service) Update(c *fiber.Ctx) error {
	sess, _ := auth.Current(c)

	req := new(ProfileRequest)
	if err := handler.Bind(c, req); err != nil {
		return err
	}

	u, err := s.users.UpdateProfile(c.UserContext(), sess.UserID, auth.ProfileUpdate{
		Username: req.Username,
		Phone:    req.Phone,
		Email:    req.Email,
	})
	if err != nil {
		return err
	}

	return handler.OK(c, NewProfile(u))
}

// Password changes the password of the session user.
func (s *Service) Password(c *fiber.Ctx) error {
	sess, _ := auth.Current(c)

	req := new(PasswordRequest)
	if err := handler.Bind(c, req); err != nil {
		return err
	}

	if err := s.users.ChangePassword(c.UserContext(), sess.UserID, req.OldPassword, req.NewPassword); err != nil {
		return err
	}

	return handler.OK(c, true)
}
