// README: Driver handlers for the pending-order board and trip progress.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"waslhaa/internal/http/middleware"
	"waslhaa/internal/modules/order"
	"waslhaa/internal/modules/user"
)

type DriverHandler struct {
	order *order.Service
	users *user.Service
}

func NewDriverHandler(orderSvc *order.Service, userSvc *user.Service) *DriverHandler {
	return &DriverHandler{order: orderSvc, users: userSvc}
}

// ListAvailable shows pending orders matching the driver's registered vehicle.
// ?all=true lists every vehicle type.
func (h *DriverHandler) ListAvailable(c *gin.Context) {
	driver, err := h.users.Get(c.Request.Context(), middleware.CallerUID(c))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	if driver.Status != user.StatusApproved {
		writeDomainError(c, user.ErrNotApproved)
		return
	}
	vehicle := driver.VehicleType
	if c.Query("all") == "true" {
		vehicle = ""
	}
	orders, err := h.order.ListAvailable(c.Request.Context(), vehicle, queryLimit(c))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"orders": toOrderList(orders)})
}

func (h *DriverHandler) Accept(c *gin.Context) {
	applyAction(c, h.order, order.ActionAccept)
}

func (h *DriverHandler) PickUp(c *gin.Context) {
	applyAction(c, h.order, order.ActionPickUp)
}

func (h *DriverHandler) Deliver(c *gin.Context) {
	applyAction(c, h.order, order.ActionDeliver)
}
