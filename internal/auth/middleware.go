package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/acctmgr/acctmgr/internal/web/session"
)

const localsSessionKey = "session"

// RequireUser creates Fiber middleware that rejects requests without a valid session
// and stores the session data for handlers.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := c.Cookies(session.CookieName)
		if sessionID == "" {
			return ErrUnauthorized
		}

		sessionData := new(session.Data)
		if err := sessionData.Read(sessionID); err != nil {
			log.Debug().Err(err).Msg("failed to read session")
			return ErrUnauthorized
		}

		if sessionData.UserID == 0 {
			log.Error().Msg("invalid session data")
			return ErrUnauthorized
		}

		c.Locals(localsSessionKey, sessionData)

		return c.Next()
	}
}

// RequireAdmin creates Fiber middleware that only lets administrators through. It must
// run after RequireUser.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionData, ok := Current(c)
		if !ok {
			return ErrUnauthorized
		}

		if !sessionData.IsAdmin {
			log.Warn().Uint64("user_id", sessionData.UserID).Str("path", c.Path()).
				Msg("user lacks administrator privilege")

			return ErrForbidden
		}

		return c.Next()
	}
}

// Current returns the session of the request set by RequireUser.
func Current(c *fiber.Ctx) (*session.Data, bool) {
	sessionData, ok := c.Locals(localsSessionKey).(*session.Data)

	return sessionData, ok && sessionData != nil
}
