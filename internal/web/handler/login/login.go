// Package login creates sessions for local users.
package login

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/acctmgr/acctmgr/internal/auth"
	"github.com/acctmgr/acctmgr/internal/config"
	"github.com/acctmgr/acctmgr/internal/web/handler"
	"github.com/acctmgr/acctmgr/internal/web/handler/user"
	"github.com/acctmgr/acctmgr/internal/web/session"
)

// Path is the login route.
const Path = handler.APIPath + "/auth/login"

// Request is the login form.
type Request struct {
	Username string `json:"username" form:"username" validate:"required,max=50"`
	Password string `json:"password" form:"password" validate:"required,max=64"`
}

// Service is the login handler service.
type Service struct {
	handler.Service
	cfg   *config.Config
	users *auth.LocalProvider
}

// Handler is the login handler.
var Handler = Service{}

// Init initializes the login handler.
func (s *Service) Init(app fiber.Router, deps *handler.Deps) error {
	if app == nil || deps == nil || deps.Cfg == nil || deps.Users == nil {
		return handler.ErrMissingDeps
	}

	s.cfg = deps.Cfg
	s.users = deps.Users

	app.Post(Path, s.Post)

	return nil
}

// Post checks the credentials, stores a session and sets the session cookie.
func (s *Service) Post(c *fiber.Ctx) error {
	req := new(Request)
	if err := handler.Bind(c, req); err != nil {
		return err
	}

	u, err := s.users.Authenticate(c.UserContext(), req.Username, req.Password)
	if err != nil {
		log.Info().Err(err).Str("username", req.Username).Str("ip", c.IP()).Msg("login failed")

		// unknown user and wrong password look the same to the client
		if errors.Is(err, auth.ErrUserNotFound) || errors.Is(err, auth.ErrInvalidPassword) {
			return ErrInvalidCredentials
		}

		return err
	}

	sessionID, err := session.GenerateSessionID()
	if err != nil {
		return err
	}

	userSession := &session.Data{UserID: u.ID, Username: u.Username, IsAdmin: u.IsAdmin}

	if err = userSession.Write(sessionID, s.cfg.Webserver.Session.ExpiryTime); err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     session.CookieName,
		Value:    sessionID,
		MaxAge:   int(s.cfg.Webserver.Session.ExpiryTime.Seconds()),
		Secure:   !s.cfg.DevMode,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	log.Info().Uint64("user_id", u.ID).Msg("user logged in")

	return handler.OK(c, user.NewProfile(u))
}
