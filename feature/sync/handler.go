package sync

import (
	"errors"
	"fmt"

	"cost-sync/core/logger"
	"cost-sync/core/middleware/auth"
	"cost-sync/core/odoo"
	"cost-sync/feature/sync/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the sync workflow.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the sync routes. Everything except login sits
// behind the session middleware.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Post("/auth/login", h.HandleLogin)

	authed := app.Group("", auth.New(auth.Config{Sessions: h.service.Sessions()}))
	authed.Post("/auth/logout", h.HandleLogout)
	authed.Get("/companies", h.HandleCompanies)
	authed.Put("/session/target", h.HandleSetTarget)
	authed.Post("/session/refresh", h.HandleRefresh)
	authed.Post("/products/fetch", h.HandleFetchProducts)
	authed.Get("/products", h.HandleListProducts)
	authed.Post("/products/selection", h.HandleSelection)
	authed.Post("/references/fetch", h.HandleFetchReferences)
	authed.Post("/sync/execute", h.HandleExecute)
	authed.Get("/report", h.HandleReport)
	authed.Get("/history", h.HandleHistory)
	authed.Get("/reports", h.HandleArchivedReports)
	authed.Get("/reports/:name", h.HandleDownloadArchivedReport)
}

// HandleLogin authenticates the operator and opens an Odoo-backed session.
// @Summary Login
// @Description Authenticate the operator, connect to Odoo, and issue a session token.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Operator credentials"
// @Success 200 {object} models.LoginResponse "Session"
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Failure 502 {object} map[string]string "Odoo unreachable"
// @Router /auth/login [post]
func (h *Handler) HandleLogin(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	sess, err := h.service.Login(c.Context(), req.Username, req.Password)
	if err != nil {
		l.Warn("Login failed", zap.String("username", req.Username), zap.Error(err))
		return h.errorResponse(c, err)
	}

	sourceID, sourceName := sess.Source()
	targetID, targetName := sess.Target()
	return c.JSON(models.LoginResponse{
		Token:     sess.Token,
		Operator:  sess.Operator,
		Companies: sess.Companies(),
		Source:    models.CompanyRef{ID: sourceID, Name: sourceName},
		Target:    models.CompanyRef{ID: targetID, Name: targetName},
	})
}

// HandleLogout destroys the current session.
// @Summary Logout
// @Description Destroy the current session.
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]string "Logged out"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /auth/logout [post]
func (h *Handler) HandleLogout(c *fiber.Ctx) error {
	h.service.Logout(auth.FromCtx(c))
	return c.JSON(fiber.Map{"status": "logged out"})
}

// HandleCompanies lists the companies available as sync targets.
// @Summary List Companies
// @Description List all companies with the configured source and current target marked.
// @Tags session
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Companies"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /companies [get]
func (h *Handler) HandleCompanies(c *fiber.Ctx) error {
	sess := auth.FromCtx(c)
	sourceID, sourceName := sess.Source()
	targetID, targetName := sess.Target()
	return c.JSON(fiber.Map{
		"companies": sess.Companies(),
		"source":    models.CompanyRef{ID: sourceID, Name: sourceName},
		"target":    models.CompanyRef{ID: targetID, Name: targetName},
	})
}

// HandleSetTarget switches the target company and clears fetched state.
// @Summary Set Target Company
// @Description Switch the target company. Clears fetched products, selection, and results.
// @Tags session
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.TargetRequest true "Target company"
// @Success 200 {object} map[string]interface{} "New target"
// @Failure 400 {object} map[string]string "Unknown company"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /session/target [put]
func (h *Handler) HandleSetTarget(c *fiber.Ctx) error {
	var req models.TargetRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	sess := auth.FromCtx(c)
	if err := h.service.SetTarget(sess, req.CompanyID); err != nil {
		return h.errorResponse(c, err)
	}

	targetID, targetName := sess.Target()
	return c.JSON(fiber.Map{"target": models.CompanyRef{ID: targetID, Name: targetName}})
}

// HandleRefresh clears fetched products, selection, and results.
// @Summary Refresh Session
// @Description Clear fetched products, the selection, and any prior results.
// @Tags session
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]string "Refreshed"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /session/refresh [post]
func (h *Handler) HandleRefresh(c *fiber.Ctx) error {
	auth.FromCtx(c).Reset()
	return c.JSON(fiber.Map{"status": "refreshed"})
}

// HandleFetchProducts loads zero-cost products from the target company.
// @Summary Fetch Products
// @Description Fetch the zero-cost stockable products of the target company.
// @Tags products
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.FetchResponse "Fetch outcome"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 502 {object} map[string]string "Odoo read failed"
// @Router /products/fetch [post]
func (h *Handler) HandleFetchProducts(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	resp, err := h.service.FetchProducts(c.Context(), auth.FromCtx(c))
	if err != nil {
		l.Error("Product fetch failed", zap.Error(err))
		return h.errorResponse(c, err)
	}
	return c.JSON(resp)
}

// HandleListProducts returns one page of the filtered product listing.
// @Summary List Products
// @Description Paginated, filterable view of the fetched products.
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param query query string false "Case-insensitive filter on name or SKU"
// @Param page query int false "Page number (1-based)"
// @Param page_size query int false "Page size (default 20)"
// @Success 200 {object} models.ProductPage "Product page"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /products [get]
func (h *Handler) HandleListProducts(c *fiber.Ctx) error {
	page := h.service.ListProducts(auth.FromCtx(c),
		c.Query("query"),
		c.QueryInt("page", 1),
		c.QueryInt("page_size", defaultPageSize),
	)
	return c.JSON(page)
}

// HandleSelection mutates the selection set.
// @Summary Update Selection
// @Description Select or deselect products. Bulk actions honor the filter query.
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.SelectionRequest true "Selection mutation"
// @Success 200 {object} models.SelectionResponse "Selection size"
// @Failure 400 {object} map[string]string "Unknown action"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /products/selection [post]
func (h *Handler) HandleSelection(c *fiber.Ctx) error {
	var req models.SelectionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	resp, err := h.service.UpdateSelection(auth.FromCtx(c), req)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(resp)
}

// HandleFetchReferences builds the reference cost lookup for the selection.
// @Summary Fetch Reference Costs
// @Description Fetch reference products from the source company and build the cost lookup.
// @Tags sync
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.ReferencesResponse "Reference fetch outcome"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Nothing selected"
// @Failure 502 {object} map[string]string "Odoo read failed"
// @Router /references/fetch [post]
func (h *Handler) HandleFetchReferences(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	resp, err := h.service.FetchReferences(c.Context(), auth.FromCtx(c))
	if err != nil {
		l.Error("Reference fetch failed", zap.Error(err))
		return h.errorResponse(c, err)
	}
	return c.JSON(resp)
}

// HandleExecute runs the bulk cost update over the selection.
// @Summary Execute Sync
// @Description Write resolved costs to the selected products of the target company.
// @Tags sync
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.ExecuteResponse "Run ledger"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Selection or references missing"
// @Router /sync/execute [post]
func (h *Handler) HandleExecute(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	resp, err := h.service.Execute(c.Context(), auth.FromCtx(c))
	if err != nil {
		l.Error("Sync execution failed", zap.Error(err))
		return h.errorResponse(c, err)
	}
	return c.JSON(resp)
}

// HandleReport downloads the last run ledger as a CSV file.
// @Summary Download Report
// @Description Download the last run ledger as a timestamped CSV.
// @Tags sync
// @Produce text/csv
// @Security BearerAuth
// @Success 200 {string} string "CSV report"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "No results yet"
// @Router /report [get]
func (h *Handler) HandleReport(c *fiber.Ctx) error {
	data, name, err := h.service.Report(auth.FromCtx(c))
	if err != nil {
		return h.errorResponse(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.Send(data)
}

// HandleHistory lists past executed runs.
// @Summary Run History
// @Description List the most recent executed runs, newest first.
// @Tags history
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximum runs to return (default 20)"
// @Success 200 {array} models.SyncRun "Runs"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "History disabled"
// @Router /history [get]
func (h *Handler) HandleHistory(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	runs, err := h.service.History(c.Context(), c.QueryInt("limit", 0))
	if err != nil {
		if !errors.Is(err, ErrHistoryDisabled) {
			l.Error("History lookup failed", zap.Error(err))
		}
		return h.errorResponse(c, err)
	}
	return c.JSON(runs)
}

// HandleArchivedReports lists the reports retained in object storage.
// @Summary Archived Reports
// @Description List the CSV reports retained in object storage.
// @Tags history
// @Produce json
// @Security BearerAuth
// @Success 200 {array} storage.ReportInfo "Reports"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Archive disabled"
// @Router /reports [get]
func (h *Handler) HandleArchivedReports(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	reports, err := h.service.ArchivedReports(c.Context())
	if err != nil {
		if !errors.Is(err, ErrArchiveDisabled) {
			l.Error("Report listing failed", zap.Error(err))
		}
		return h.errorResponse(c, err)
	}
	return c.JSON(reports)
}

// HandleDownloadArchivedReport streams one archived report.
// @Summary Download Archived Report
// @Description Download one archived CSV report by name.
// @Tags history
// @Produce text/csv
// @Security BearerAuth
// @Param name path string true "Report file name"
// @Success 200 {string} string "CSV report"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Archive disabled"
// @Router /reports/{name} [get]
func (h *Handler) HandleDownloadArchivedReport(c *fiber.Ctx) error {
	name := c.Params("name")

	rc, err := h.service.OpenArchivedReport(c.Context(), name)
	if err != nil {
		return h.errorResponse(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.SendStream(rc)
}

// errorResponse maps service and Odoo errors to HTTP statuses.
func (h *Handler) errorResponse(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError

	switch {
	case errors.Is(err, ErrInvalidLogin):
		status = fiber.StatusUnauthorized
	case errors.Is(err, ErrUnknownCompany), errors.Is(err, ErrUnknownAction):
		status = fiber.StatusBadRequest
	case errors.Is(err, ErrNoSelection), errors.Is(err, ErrNoReferences), errors.Is(err, ErrNoResults):
		status = fiber.StatusConflict
	case errors.Is(err, ErrHistoryDisabled), errors.Is(err, ErrArchiveDisabled):
		status = fiber.StatusNotFound
	default:
		var oerr *odoo.Error
		if errors.As(err, &oerr) {
			switch oerr.Kind {
			case odoo.KindAuth, odoo.KindRead, odoo.KindWrite:
				status = fiber.StatusBadGateway
			case odoo.KindConfig:
				status = fiber.StatusInternalServerError
			}
		}
	}

	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}
