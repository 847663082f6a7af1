package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/openhaven/matchgrid/internal/application/heatmap"
	"github.com/openhaven/matchgrid/internal/domain/geo"
	"github.com/openhaven/matchgrid/internal/infrastructure/monitoring/logging"
	"github.com/openhaven/matchgrid/pkg/errors"
)

// HeatmapHandler serves GET /api/v1/heatmap.
type HeatmapHandler struct {
	service *heatmap.Service
	logger  logging.Logger
}

// NewHeatmapHandler builds a HeatmapHandler.
func NewHeatmapHandler(service *heatmap.Service, logger logging.Logger) *HeatmapHandler {
	return &HeatmapHandler{service: service, logger: logger.Named("heatmap_handler")}
}

// Heatmap renders a GeoJSON heatmap for the requested viewport.
//
// Query parameters:
//
//	bounds     required, "minLat,minLon,maxLat,maxLon"
//	mode       demand | supply | gap (default demand)
//	cell_size  optional explicit cell size in meters
func (h *HeatmapHandler) Heatmap(c *gin.Context) {
	bounds, err := parseBoundsParam(c.Query("bounds"))
	if err != nil {
		respondError(c, err)
		return
	}

	modeParam := c.DefaultQuery("mode", string(heatmap.ModeDemand))
	mode, err := heatmap.ParseMode(modeParam)
	if err != nil {
		respondError(c, err)
		return
	}

	cellSize := 0.0
	if raw := c.Query("cell_size"); raw != "" {
		cellSize, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			respondError(c, errors.New(errors.CodeInvalidCellSize, "cell_size must be a number"))
			return
		}
		// An explicit cell_size must be positive; omitting the parameter
		// is the only way to request automatic resolution.
		if cellSize <= 0 {
			respondError(c, errors.New(errors.CodeInvalidCellSize, "cell_size must be positive"))
			return
		}
	}

	fc, err := h.service.Generate(c.Request.Context(), bounds, mode, cellSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, fc)
}

func parseBoundsParam(raw string) (geo.Bounds, error) {
	if raw == "" {
		return geo.Bounds{}, errors.New(errors.CodeInvalidBounds, "bounds parameter is required")
	}
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return geo.Bounds{}, errors.New(errors.CodeInvalidBounds,
			"bounds must be minLat,minLon,maxLat,maxLon")
	}
	vals := make([]float64, 4)
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return geo.Bounds{}, errors.Newf(errors.CodeInvalidBounds,
				"bounds component %q is not a number", part)
		}
		vals[i] = v
	}
	return geo.NewBounds(vals[0], vals[1], vals[2], vals[3])
}
