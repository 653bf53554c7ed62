// README: Account signup and profile handlers.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"waslhaa/internal/http/middleware"
	"waslhaa/internal/modules/user"
	"waslhaa/internal/types"
)

type UserHandler struct {
	users *user.Service
}

func NewUserHandler(svc *user.Service) *UserHandler {
	return &UserHandler{users: svc}
}

type registerReq struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	VehicleType string `json:"vehicle_type"`
	PhotoURL    string `json:"photo_url"`
}

// Register creates the caller's account with the role from their token.
func (h *UserHandler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	cmd := user.RegisterCommand{
		ID:       middleware.CallerUID(c),
		Role:     middleware.CallerRole(c),
		Name:     req.Name,
		Phone:    req.Phone,
		PhotoURL: req.PhotoURL,
	}
	if req.VehicleType != "" {
		cmd.VehicleType = types.ParseVehicleType(req.VehicleType)
	}
	u, err := h.users.Register(c.Request.Context(), cmd)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, toUserResponse(u))
}

func (h *UserHandler) Me(c *gin.Context) {
	u, err := h.users.Get(c.Request.Context(), middleware.CallerUID(c))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toUserResponse(u))
}
