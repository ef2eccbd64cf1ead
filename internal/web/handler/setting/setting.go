// Package setting serves the settings of the logged in user.
package setting

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/acctmgr/acctmgr/internal/auth"
	"github.com/acctmgr/acctmgr/internal/settings"
	"github.com/acctmgr/acctmgr/internal/web/handler"
)

// Path is the route group of the user settings.
const Path = handler.APIPath + "/settings"

type (
	// UpdateRequest changes one setting. Value is checked against the declared type of the setting.
	UpdateRequest struct {
		Code     int             `json:"setting_key" validate:"required"`
		RawValue json.RawMessage `json:"setting_value"`
		// Value is RawValue decoded with numbers kept as json.Number.
		Value any `json:"-"`
	}

	// AllResponse is the effective settings of a scope grouped by category.
	AllResponse struct {
		Groups []settings.GroupView `json:"groups"`
	}
)

// NewAllResponse groups resolved settings for the response.
func NewAllResponse(engine *settings.Engine, resolved []settings.Resolved) AllResponse {
	return AllResponse{Groups: engine.GroupByCategory(resolved)}
}

// Service is the settings handler service.
type Service struct {
	handler.Service
	engine *settings.Engine
}

// Handler is the settings handler.
var Handler = Service{}

// Init registers the settings routes.
func (s *Service) Init(app fiber.Router, deps *handler.Deps) error {
	if app == nil || deps == nil || deps.Settings == nil {
		return handler.ErrMissingDeps
	}

	s.engine = deps.Settings

	app.Get(Path+"/catalog", s.Catalog)

	app.Route(Path, func(router fiber.Router) {
		router.Use(auth.RequireUser())
		router.Get(handler.RootPath, s.All)
		router.Get("/group/:group", s.Group)
		router.Post("/update", s.Update)
		router.Get("/:code", s.One)
		router.Post("/:code/reset", s.Reset)
	})

	return nil
}

// Catalog lists the setting groups with their definitions and defaults.
func (s *Service) Catalog(c *fiber.Ctx) error {
	return handler.OK(c, s.engine.Catalog().Groups())
}

// All returns every effective setting of the user grouped by category.
func (s *Service) All(c *fiber.Ctx) error {
	sess, _ := auth.Current(c)

	resolved, err := s.engine.ResolveUser(c.UserContext(), sess.UserID)
	if err != nil {
		return err
	}

	return handler.OK(c, NewAllResponse(s.engine, resolved))
}

// Group returns the effective settings of one group.
func (s *Service) Group(c *fiber.Ctx) error {
	sess, _ := auth.Current(c)

	groupCode, err := IntParam(c, "group")
	if err != nil {
		return err
	}

	view, err := s.engine.ResolveGroup(c.UserContext(), settings.UserChain(sess.UserID), groupCode)
	if err != nil {
		return err
	}

	return handler.OK(c, view)
}

// One returns one effective setting.
func (s *Service) One(c *fiber.Ctx) error {
	sess, _ := auth.Current(c)

	code, err := IntParam(c, "code")
	if err != nil {
		return err
	}

	resolved, err := s.engine.ResolveOne(c.UserContext(), settings.UserChain(sess.UserID), code)
	if err != nil {
		return err
	}

	return handler.OK(c, resolved)
}

// Update stores a user override.
func (s *Service) Update(c *fiber.Ctx) error {
	sess, _ := auth.Current(c)

	req, err := BindUpdate(c)
	if err != nil {
		return err
	}

	resolved, err := s.engine.Update(c.UserContext(), settings.UserChain(sess.UserID), req.Code, req.Value)
	if err != nil {
		return err
	}

	return handler.OK(c, resolved)
}

// Reset removes the user override of a setting.
func (s *Service) Reset(c *fiber.Ctx) error {
	sess, _ := auth.Current(c)

	code, err := IntParam(c, "code")
	if err != nil {
		return err
	}

	resolved, err := s.engine.Reset(c.UserContext(), settings.UserChain(sess.UserID), code)
	if err != nil {
		return err
	}

	return handler.OK(c, resolved)
}

// BindUpdate parses and validates an UpdateRequest. The value is decoded with UseNumber
// so integers beyond 2^53 reach the engine without a float64 round trip.
func BindUpdate(c *fiber.Ctx) (*UpdateRequest, error) {
	req := new(UpdateRequest)
	if err := handler.Bind(c, req); err != nil {
		return nil, err
	}

	raw := bytes.TrimSpace(req.RawValue)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, fiber.NewError(fiber.StatusBadRequest, "setting_value is required")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	if err := dec.Decode(&req.Value); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "malformed setting_value")
	}

	return req, nil
}

// IntParam reads a numeric route parameter.
func IntParam(c *fiber.Ctx, name string) (int, error) {
	v, err := strconv.Atoi(c.Params(name))
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, name+" must be a number")
	}

	return v, nil
}
