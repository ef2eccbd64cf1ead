// Package activation serves the activation code administration. All routes require an
// administrator session.
package activation

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	domain "github.com/acctmgr/acctmgr/internal/activation"
	"github.com/acctmgr/acctmgr/internal/auth"
	"github.com/acctmgr/acctmgr/internal/web/handler"
)

const (
	// Path is the route group of the activation code administration.
	Path = handler.APIPath + "/activation"

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type (
	// InitRequest mints a batch of codes.
	InitRequest struct {
		Items []domain.BatchItem `json:"items"`
	}

	// CodesRequest selects count unused codes of a type.
	CodesRequest struct {
		Type  *domain.Type `json:"type" validate:"required"`
		Count int          `json:"count" validate:"gte=0,lte=100"`
	}

	// CodeRequest names one code.
	CodeRequest struct {
		Code string `json:"activation_code" query:"activation_code" validate:"required,max=50"`
	}

	// ListRequest is a filtered page of codes.
	ListRequest struct {
		domain.Filter
		handler.Paging
	}
)

// Service is the activation code handler service.
type Service struct {
	handler.Service
	codes *domain.Service
}

// Handler is the activation code handler.
var Handler = Service{}

// Init registers the activation code routes.
func (s *Service) Init(app fiber.Router, deps *handler.Deps) error {
	if app == nil || deps == nil || deps.Codes == nil {
		return handler.ErrMissingDeps
	}

	s.codes = deps.Codes

	app.Route(Path, func(router fiber.Router) {
		router.Use(auth.RequireUser(), auth.RequireAdmin())
		router.Post("/init", s.Generate)
		router.Post("/get", s.Codes)
		router.Post("/distribute", s.Distribute)
		router.Post("/activate", s.Activate)
		router.Post("/invalidate", s.Invalidate)
		router.Post("/pageList", s.List)
		router.Get("/export", s.Export)
		router.Get("/:code", s.Get)
	})

	return nil
}

// Generate mints codes for up to ten types at once.
func (s *Service) Generate(c *fiber.Ctx) error {
	req := new(InitRequest)
	if err := handler.Bind(c, req); err != nil {
		return err
	}

	result, err := s.codes.GenerateBatch(c.UserContext(), req.Items)
	if err != nil {
		return err
	}

	return handler.OK(c, result)
}

// Codes lists unused codes of a type without handing them out.
func (s *Service) Codes(c *fiber.Ctx) error {
	req, err := bindCodes(c)
	if err != nil {
		return err
	}

	views, err := s.codes.GetCodes(c.UserContext(), *req.Type, req.Count)
	if err != nil {
		return err
	}

	return handler.OK(c, views)
}

// Distribute hands out unused codes of a type and returns the code strings.
func (s *Service) Distribute(c *fiber.Ctx) error {
	req, err := bindCodes(c)
	if err != nil {
		return err
	}

	views, err := s.codes.DistributeBatch(c.UserContext(), *req.Type, req.Count)
	if err != nil {
		return err
	}

	out := make([]string, 0, len(views))
	for _, v := range views {
		out = append(out, v.Code)
	}

	sess, _ := auth.Current(c)
	log.Info().Uint64("admin_id", sess.UserID).Str("type", req.Type.String()).Int("count", len(out)).
		Msg("activation codes distributed")

	return handler.OK(c, out)
}

// Activate redeems a distributed code outside of a registration.
func (s *Service) Activate(c *fiber.Ctx) error {
	code := c.Query("activation_code")
	if code == "" {
		req := new(CodeRequest)
		if err := handler.Bind(c, req); err != nil {
			return err
		}

		code = req.Code
	}

	view, err := s.codes.Register(c.UserContext(), code)
	if err != nil {
		return err
	}

	return handler.OK(c, view)
}

// Invalidate retires a code.
func (s *Service) Invalidate(c *fiber.Ctx) error {
	req := new(CodeRequest)
	if err := handler.Bind(c, req); err != nil {
		return err
	}

	if _, err := s.codes.Invalidate(c.UserContext(), req.Code); err != nil {
		return err
	}

	return handler.OK(c, true)
}

// List returns a filtered page of codes.
func (s *Service) List(c *fiber.Ctx) error {
	req := new(ListRequest)
	if err := handler.Bind(c, req); err != nil {
		return err
	}

	page, err := s.codes.List(c.UserContext(), domain.Query{Filter: req.Filter, Page: req.Page, Size: req.Size})
	if err != nil {
		return err
	}

	return handler.OK(c, page)
}

// Export sends the filtered codes as xlsx workbook.
func (s *Service) Export(c *fiber.Ctx) error {
	f, err := filterFromQuery(c)
	if err != nil {
		return err
	}

	buf, err := s.codes.Export(c.UserContext(), f)
	if err != nil {
		return err
	}

	name := fmt.Sprintf("activation_codes_%s.xlsx", s.codes.Now().Format("20060102150405"))

	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+name+`"`)

	return c.Send(buf.Bytes())
}

// Get returns one code.
func (s *Service) Get(c *fiber.Ctx) error {
	view, err := s.codes.Get(c.UserContext(), c.Params("code"))
	if err != nil {
		return err
	}

	return handler.OK(c, view)
}

func bindCodes(c *fiber.Ctx) (*CodesRequest, error) {
	req := new(CodesRequest)
	if err := handler.Bind(c, req); err != nil {
		return nil, err
	}

	if req.Count == 0 {
		req.Count = 1
	}

	return req, nil
}

// filterFromQuery reads type, status and activation_code from the query string.
func filterFromQuery(c *fiber.Ctx) (domain.Filter, error) {
	f := domain.Filter{Code: c.Query("activation_code")}

	if v := c.Query("type"); v != "" {
		n, err := strconv.ParseUint(v, 10, 8)
		if err != nil {
			return f, fiber.NewError(fiber.StatusBadRequest, "type must be a number")
		}

		t := domain.Type(n)
		f.Type = &t
	}

	if v := c.Query("status"); v != "" {
		n, err := strconv.ParseUint(v, 10, 8)
		if err != nil {
			return f, fiber.NewError(fiber.StatusBadRequest, "status must be a number")
		}

		st := domain.Status(n)
		f.Status = &st
	}

	return f, nil
}
