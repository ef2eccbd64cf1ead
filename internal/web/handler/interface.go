// Package handler holds what the JSON handlers share: the response envelope, the
// mapping from domain errors to HTTP status codes, request binding and paging.
package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/acctmgr/acctmgr/internal/activation"
	"github.com/acctmgr/acctmgr/internal/auth"
	"github.com/acctmgr/acctmgr/internal/config"
	"github.com/acctmgr/acctmgr/internal/db/controller/override"
	"github.com/acctmgr/acctmgr/internal/settings"
)

// ErrMissingDeps is returned by Init when a required dependency is nil.
var ErrMissingDeps = errors.New(ErrNilACDFatalLogMsg)

// Deps are the services handlers are built from.
type Deps struct {
	Cfg       *config.Config
	DB        *gorm.DB
	Settings  *settings.Engine
	Overrides *override.Store
	Codes     *activation.Service
	Users     *auth.LocalProvider
}

// Service is the interface for a web handler service.
type Service interface {
	Init(app fiber.Router, deps *Deps) error
}
