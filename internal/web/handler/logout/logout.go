// Package logout ends sessions.
package logout

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/acctmgr/acctmgr/internal/web/handler"
	"github.com/acctmgr/acctmgr/internal/web/session"
)

// Path is the logout route.
const Path = handler.APIPath + "/auth/logout"

// Service is the logout handler service.
type Service struct {
	handler.Service
}

// Handler is the logout handler.
var Handler = Service{}

// Init initializes the logout handler.
func (s *Service) Init(app fiber.Router, _ *handler.Deps) error {
	if app == nil {
		return handler.ErrMissingDeps
	}

	app.Post(Path, s.Logout)

	return nil
}

// Logout deletes the session and clears the cookie. It succeeds without a session.
func (s *Service) Logout(c *fiber.Ctx) error {
	if sessionID := c.Cookies(session.CookieName); sessionID != "" {
		if err := session.Delete(sessionID); err != nil {
			log.Error().Err(err).Msg("failed to delete session")
		}
	}

	c.Cookie(&fiber.Cookie{
		Name:     session.CookieName,
		Value:    "",
		MaxAge:   -1,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return handler.OK(c, nil)
}
