package triage

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/triageon/triageon/internal/scoring"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/triage", h.Triage)
}

func (h *Handler) Triage(c echo.Context) error {
	rec, err := scoring.DecodeRecord(c.Request().Body)
	if err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return he
		}
		return echo.NewHTTPError(http.StatusBadRequest, "request body must be a JSON object")
	}

	resp, err := h.svc.Triage(rec)
	if err != nil {
		var fe *scoring.FieldError
		if errors.As(err, &fe) {
			return c.JSON(http.StatusBadRequest, ValidationError{
				Message: fe.Error(),
				Field:   fe.Field,
				Reason:  fe.Reason,
			})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "triage failed")
	}
	return c.JSON(http.StatusOK, resp)
}
