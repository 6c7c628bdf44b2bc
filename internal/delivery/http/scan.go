package http

import (
	"net/http"
	"strconv"

	"breakout-scanner/internal/dto"
	"breakout-scanner/internal/repository"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupScan(base *echo.Group) {
	v1 := base.Group("/v1/scans")
	{
		v1.POST("", h.EnqueueScan)
		v1.POST("/ranked", h.EnqueueRankedScan)
		v1.POST("/start", h.StartScan)
		v1.POST("/pause", h.PauseScan)
		v1.POST("/resume", h.ResumeScan)
		v1.DELETE("", h.ClearScan)
		v1.GET("", h.ScanStatus)
		v1.GET("/:symbol", h.ScanResult)
		v1.GET("/:symbol/summary", h.ScanSummary)
		v1.PUT("/:symbol/important", h.MarkImportant)
		v1.DELETE("/:symbol", h.RemoveScan)
	}
}

func (h *HttpAPIHandler) EnqueueScan(c echo.Context) error {
	req := new(dto.EnqueueRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	queued := h.service.ScannerService.Enqueue(c.Request().Context(), req.Symbols, req.LookbackDays)
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Symbols queued", map[string]int{"queued": queued}))
}

func (h *HttpAPIHandler) EnqueueRankedScan(c echo.Context) error {
	req := new(dto.EnqueueRankedRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	queued, err := h.service.ScannerService.EnqueueRanked(c.Request().Context(), req.Limit, req.LookbackDays)
	if err != nil {
		return c.JSON(http.StatusBadGateway, dto.NewBaseResponse(http.StatusBadGateway, err.Error(), nil))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Ranked symbols queued", map[string]int{"queued": queued}))
}

func (h *HttpAPIHandler) StartScan(c echo.Context) error {
	// The run loop outlives the request, so it runs under the app
	// lifecycle context rather than the request context.
	if err := h.service.ScannerService.Start(h.appCtx); err != nil {
		return c.JSON(http.StatusConflict, dto.NewBaseResponse(http.StatusConflict, err.Error(), nil))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Scan started", nil))
}

func (h *HttpAPIHandler) PauseScan(c echo.Context) error {
	h.service.ScannerService.Pause()
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Scan paused", nil))
}

func (h *HttpAPIHandler) ResumeScan(c echo.Context) error {
	h.service.ScannerService.Resume()
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Scan resumed", nil))
}

func (h *HttpAPIHandler) ClearScan(c echo.Context) error {
	h.service.ScannerService.Clear(c.Request().Context())
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Queue cleared", nil))
}

func (h *HttpAPIHandler) ScanStatus(c echo.Context) error {
	snapshot := h.service.ScannerService.Snapshot()
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Queue status", snapshot))
}

func (h *HttpAPIHandler) ScanResult(c echo.Context) error {
	entry, err := h.service.ScannerService.GetEntry(c.Request().Context(), c.Param("symbol"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, err.Error(), nil))
	}
	if entry == nil {
		return c.JSON(http.StatusNotFound, dto.NewBaseResponse(http.StatusNotFound, "symbol not found", nil))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Scan entry", entry))
}

func (h *HttpAPIHandler) ScanSummary(c echo.Context) error {
	summary, err := h.service.ScannerService.Summarize(c.Request().Context(), c.Param("symbol"))
	if err != nil {
		if err == repository.ErrAIDisabled {
			return c.JSON(http.StatusServiceUnavailable, dto.NewBaseResponse(http.StatusServiceUnavailable, "AI summaries are disabled", nil))
		}
		return c.JSON(http.StatusNotFound, dto.NewBaseResponse(http.StatusNotFound, err.Error(), nil))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Scan summary", map[string]string{"summary": summary}))
}

func (h *HttpAPIHandler) MarkImportant(c echo.Context) error {
	important, err := strconv.ParseBool(c.QueryParam("value"))
	if err != nil {
		important = true
	}
	if err := h.service.ScannerService.MarkImportant(c.Request().Context(), c.Param("symbol"), important); err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, err.Error(), nil))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Importance updated", nil))
}

func (h *HttpAPIHandler) RemoveScan(c echo.Context) error {
	if err := h.service.ScannerService.Remove(c.Request().Context(), c.Param("symbol")); err != nil {
		return c.JSON(http.StatusNotFound, dto.NewBaseResponse(http.StatusNotFound, err.Error(), nil))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Symbol removed", nil))
}
