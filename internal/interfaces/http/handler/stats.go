package handler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	salesapp "github.com/stockroute/backend/internal/application/sales"
	"github.com/stockroute/backend/internal/domain/identity"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// StatsReporter aggregates and exports sales
type StatsReporter interface {
	Summary(ctx context.Context, actor identity.Actor, req salesapp.StatsRequest) (*salesapp.StatsResponse, error)
	ExportSales(ctx context.Context, actor identity.Actor, req salesapp.StatsRequest, w io.Writer) error
}

// StatsHandler handles stats requests
type StatsHandler struct {
	BaseHandler
	statsService StatsReporter
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(statsService StatsReporter) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

func (h *StatsHandler) bind(c *gin.Context) (identity.Actor, salesapp.StatsRequest, bool) {
	var req salesapp.StatsRequest
	actor, ok := h.actor(c)
	if !ok {
		return actor, req, false
	}
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return actor, req, false
	}
	if req.SellerID, ok = h.queryUUID(c, "seller_id"); !ok {
		return actor, req, false
	}
	return actor, req, true
}

// Summary handles GET /stats
func (h *StatsHandler) Summary(c *gin.Context) {
	actor, req, ok := h.bind(c)
	if !ok {
		return
	}
	stats, err := h.statsService.Summary(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// Export handles GET /stats/export and streams the scoped sales as xlsx
func (h *StatsHandler) Export(c *gin.Context) {
	actor, req, ok := h.bind(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.statsService.ExportSales(c.Request.Context(), actor, req, &buf); err != nil {
		h.HandleError(c, err)
		return
	}

	filename := fmt.Sprintf("sales-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
