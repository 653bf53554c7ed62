// README: Read-only view of the active zone and pricing catalog.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"waslhaa/internal/modules/zone"
)

type ZoneHandler struct {
	zones *zone.Registry
}

func NewZoneHandler(reg *zone.Registry) *ZoneHandler {
	return &ZoneHandler{zones: reg}
}

func (h *ZoneHandler) Catalog(c *gin.Context) {
	writeJSON(c, http.StatusOK, toCatalogResponse(h.zones.Snapshot()))
}
