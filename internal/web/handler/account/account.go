// Package account serves the platform accounts of the logged in user and their settings.
// Every route checks that the account belongs to the session user.
package account

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/acctmgr/acctmgr/internal/auth"
	controller "github.com/acctmgr/acctmgr/internal/db/controller/account"
	"github.com/acctmgr/acctmgr/internal/db/controller/override"
	"github.com/acctmgr/acctmgr/internal/db/models"
	"github.com/acctmgr/acctmgr/internal/settings"
	"github.com/acctmgr/acctmgr/internal/web/handler"
	"github.com/acctmgr/acctmgr/internal/web/handler/setting"
	"github.com/acctmgr/acctmgr/internal/web/session"
)

// Path is the route group of the accounts.
const Path = handler.APIPath + "/accounts"

type (
	// ListRequest is a page of accounts, optionally filtered by name.
	ListRequest struct {
		handler.Paging
		Name string `json:"name" validate:"max=100"`
	}

	// CreateRequest creates an account.
	CreateRequest struct {
		Name             string `json:"name" validate:"required,max=100"`
		PlatformAccount  string `json:"platform_account" validate:"max=255"`
		PlatformPassword string `json:"platform_password" validate:"max=255"`
		Description      string `json:"description" validate:"max=500"`
	}

	// UpdateRequest replaces the editable fields of an account.
	UpdateRequest struct {
		ID uint64 `json:"id" validate:"required"`
		CreateRequest
	}

	// DeleteRequest deletes an account.
	DeleteRequest struct {
		ID uint64 `json:"id" validate:"required"`
	}

	// View is the API representation of an account.
	View struct {
		ID              uint64    `json:"id"`
		Name            string    `json:"name"`
		PlatformAccount string    `json:"platform_account"`
		Description     string    `json:"description"`
		CreatedAt       time.Time `json:"created_at"`
		UpdatedAt       time.Time `json:"updated_at"`
	}
)

func newView(a *models.Account) View {
	return View{
		ID:              a.ID,
		Name:            a.Name,
		PlatformAccount: a.PlatformAccount,
		Description:     a.Description,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

// Service is the accounts handler service.
type Service struct {
	handler.Service
	db     *gorm.DB
	engine *settings.Engine
}

// Handler is the accounts handler.
var Handler = Service{}

// Init registers the account routes.
func (s *Service) Init(app fiber.Router, deps *handler.Deps) error {
	if app == nil || deps == nil || deps.DB == nil || deps.Settings == nil {
		return handler.ErrMissingDeps
	}

	s.db = deps.DB
	s.engine = deps.Settings

	app.Route(Path, func(router fiber.Router) {
		router.Use(auth.RequireUser())
		router.Post("/pageList", s.List)
		router.Post("/create", s.Create)
		router.Post("/update", s.Update)
		router.Post("/delete", s.Delete)
		router.Get("/:id/settings", s.Settings)
		router.Post("/:id/settings/update", s.UpdateSetting)
		router.Post("/:id/settings/reset", s.ResetSetting)
	})

	return nil
}

// List returns one page of the user's accounts.
func (s *Service) List(c *fiber.Ctx) error {
	sess, _ := auth.Current(c)

	req := new(ListRequest)
	if err := handler.Bind(c, req); err != nil {
		return err
	}

	paging := req.Normalize()

	rows, total, err := controller.List(s.db.WithContext(c.UserContext()), sess.UserID,
		controller.Filter{Name: req.Name}, paging.Offset(), paging.Size)
	if err != nil {
		return err
	}

	items := make([]View, 0, len(rows))
	for i := range rows {
		items = append(items, newView(&rows[i]))
	}

	return handler.OK(c, handler.NewPage(items, total, paging))
}

// Create adds an account for the user.
func (s *Service) Create(c *fiber.Ctx) error {
	sess, _ := auth.Current(c)

	req := new(CreateRequest)
	if err := handler.Bind(c, req); err != nil {
		return err
	}

	a := &models.Account{
		UserID:           sess.UserID,
		Name:             req.Name,
		PlatformAccount:  req.PlatformAccount,
		PlatformPassword: req.PlatformPassword,
		Description:      req.Description,
	}

	if err := controller.Create(s.db.WithContext(c.UserContext()), a); err != nil {
		return err
	}

	return handler.OK(c, newView(a))
}

// Update changes an account of the user.
func (s *Service) Update(c *fiber.Ctx) error {
	sess, _ := auth.Current(c)

	req := new(UpdateRequest)
	if err := handler.Bind(c, req); err != nil {
		return err
	}

	db := s.db.WithContext(c.UserContext())

	err := controller.Update(db, &models.Account{
		ID:               req.ID,
		UserID:           sess.UserID,
		Name:             req.Name,
		PlatformAccount:  req.PlatformAccount,
		PlatformPassword: req.PlatformPassword,
		Description:      req.Description,
	})
	if err != nil {
		return err
	}

	a, err := controller.Get(db, sess.UserID, req.ID)
	if err != nil {
		return err
	}

	return handler.OK(c, newView(a))
}

// Delete soft deletes an account and drops its setting overrides.
func (s *Service) Delete(c *fiber.Ctx) error {
	sess, _ := auth.Current(c)

	req := new(DeleteRequest)
	if err := handler.Bind(c, req); err != nil {
		return err
	}

	var removed int64

	err := s.db.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		if err := controller.Delete(tx, sess.UserID, req.ID); err != nil {
			return err
		}

		store, err := override.New(tx)
		if err != nil {
			return err
		}

		removed, err = store.RemoveAll(c.UserContext(), settings.AccountScope(req.ID))

		return err
	})
	if err != nil {
		return err
	}

	log.Info().Uint64("user_id", sess.UserID).Uint64("account_id", req.ID).
		Int64("overrides", removed).Msg("account deleted")

	return handler.OK(c, nil)
}

// Settings returns the effective settings of an account grouped by category.
func (s *Service) Settings(c *fiber.Ctx) error {
	sess, id, err := s.owned(c)
	if err != nil {
		return err
	}

	resolved, err := s.engine.ResolveAccount(c.UserContext(), sess.UserID, id)
	if err != nil {
		return err
	}

	return handler.OK(c, setting.NewAllResponse(s.engine, resolved))
}

// UpdateSetting stores an account override.
func (s *Service) UpdateSetting(c *fiber.Ctx) error {
	sess, id, err := s.owned(c)
	if err != nil {
		return err
	}

	req, err := setting.BindUpdate(c)
	if err != nil {
		return err
	}

	resolved, err := s.engine.Update(c.UserContext(), settings.AccountChain(sess.UserID, id), req.Code, req.Value)
	if err != nil {
		return err
	}

	return handler.OK(c, resolved)
}

// ResetSetting removes an account override, the value falls back to the user's.
func (s *Service) ResetSetting(c *fiber.Ctx) error {
	sess, id, err := s.owned(c)
	if err != nil {
		return err
	}

	code, err := strconv.Atoi(c.Query("setting_key"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "setting_key must be a number")
	}

	resolved, err := s.engine.Reset(c.UserContext(), settings.AccountChain(sess.UserID, id), code)
	if err != nil {
		return err
	}

	return handler.OK(c, resolved)
}

// owned returns the session and the :id parameter after checking the account belongs to the user.
func (s *Service) owned(c *fiber.Ctx) (*session.Data, uint64, error) {
	sess, _ := auth.Current(c)

	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return nil, 0, fiber.NewError(fiber.StatusBadRequest, "id must be a number")
	}

	if _, err = controller.Get(s.db.WithContext(c.UserContext()), sess.UserID, id); err != nil {
		return nil, 0, err
	}

	return sess, id, nil
}
