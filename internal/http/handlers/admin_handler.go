// README: Admin handlers for revenue review and account approval.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"waslhaa/internal/http/middleware"
	"waslhaa/internal/modules/order"
	"waslhaa/internal/modules/user"
	"waslhaa/internal/types"
)

type AdminHandler struct {
	order *order.Service
	users *user.Service
}

func NewAdminHandler(orderSvc *order.Service, userSvc *user.Service) *AdminHandler {
	return &AdminHandler{order: orderSvc, users: userSvc}
}

// Revenue accepts RFC 3339 or YYYY-MM-DD bounds for ?from and ?to.
func (h *AdminHandler) Revenue(c *gin.Context) {
	var f order.RevenueFilter
	for _, q := range []struct {
		name string
		dst  **time.Time
	}{{"from", &f.From}, {"to", &f.To}} {
		raw := c.Query(q.name)
		if raw == "" {
			continue
		}
		t, err := parseTime(raw)
		if err != nil {
			badRequest(c, "invalid "+q.name+": expected RFC 3339 or YYYY-MM-DD")
			return
		}
		*q.dst = &t
	}
	if f.From != nil && f.To != nil && !f.From.Before(*f.To) {
		badRequest(c, "from must be before to")
		return
	}
	f.ZoneID = c.Query("zone_id")
	f.DriverID = types.ID(c.Query("driver_id"))

	r, err := h.order.Revenue(c.Request.Context(), f)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toRevenueResponse(r))
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	f := user.Filter{Status: user.Status(c.Query("status"))}
	if raw := c.Query("role"); raw != "" {
		f.Role = types.ParseRole(raw)
		if !f.Role.Valid() {
			badRequest(c, "unknown role "+raw)
			return
		}
	}
	if f.Status != "" && !f.Status.Valid() {
		badRequest(c, "unknown status "+string(f.Status))
		return
	}
	users, err := h.users.List(c.Request.Context(), f)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	out := make([]userResponse, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i]))
	}
	writeJSON(c, http.StatusOK, gin.H{"users": out})
}

type setStatusReq struct {
	Status string `json:"status" binding:"required"`
}

func (h *AdminHandler) SetUserStatus(c *gin.Context) {
	var req setStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "status is required")
		return
	}
	u, err := h.users.SetUserStatus(c.Request.Context(), middleware.CallerActor(c), types.ID(c.Param("id")), user.Status(req.Status))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toUserResponse(u))
}

func parseTime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, raw)
}
