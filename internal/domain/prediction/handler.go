package prediction

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/triageon/triageon/internal/platform/inference"
	"github.com/triageon/triageon/internal/scoring"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the prediction endpoints on api and the model
// status endpoint on health.
func (h *Handler) RegisterRoutes(api *echo.Group, health *echo.Group) {
	api.POST("/bp", h.PredictBP)
	api.POST("/fever", h.PredictFever)
	api.POST("/anemia", h.PredictAnemia)
	api.POST("/diabetes", h.PredictDiabetes)
	api.POST("/heart", h.PredictHeart)

	health.GET("/models", h.ListModels)
}

func (h *Handler) PredictBP(c echo.Context) error {
	rec, err := decodeRecord(c, false)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.svc.EvaluateHypertension(rec))
}

func (h *Handler) PredictFever(c echo.Context) error {
	rec, err := decodeRecord(c, false)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.svc.EvaluateInfection(rec))
}

func (h *Handler) PredictAnemia(c echo.Context) error {
	rec, err := decodeRecord(c, false)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.svc.EvaluateAnemia(rec))
}

func (h *Handler) PredictDiabetes(c echo.Context) error {
	rec, err := decodeRecord(c, DiabetesModel.LenientBody)
	if err != nil {
		return err
	}
	ev, err := h.svc.PredictDiabetes(c.Request().Context(), rec)
	if err != nil {
		return predictionError(err)
	}
	return c.JSON(http.StatusOK, ev)
}

func (h *Handler) PredictHeart(c echo.Context) error {
	rec, err := decodeRecord(c, HeartModel.LenientBody)
	if err != nil {
		return err
	}
	ev, err := h.svc.PredictHeart(c.Request().Context(), rec)
	if err != nil {
		return predictionError(err)
	}
	return c.JSON(http.StatusOK, ev)
}

func (h *Handler) ListModels(c echo.Context) error {
	models := h.svc.Models()
	if models == nil {
		models = []ModelInfo{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"models": models,
	})
}

func decodeRecord(c echo.Context, lenient bool) (scoring.VitalRecord, error) {
	rec, err := scoring.DecodeRecord(c.Request().Body)
	if err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return scoring.VitalRecord{}, he
		}
		if lenient {
			return scoring.VitalRecord{}, nil
		}
		return scoring.VitalRecord{}, echo.NewHTTPError(http.StatusBadRequest, "request body must be a JSON object")
	}
	return rec, nil
}

func predictionError(err error) error {
	switch {
	case errors.Is(err, ErrModelNotConfigured):
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, inference.ErrModelUnavailable):
		return echo.NewHTTPError(http.StatusBadGateway, "model service unavailable")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "prediction failed")
	}
}
