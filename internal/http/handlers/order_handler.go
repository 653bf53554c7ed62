// README: Order handlers for quotes, creation, lookup, history and customer actions.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"waslhaa/internal/http/middleware"
	"waslhaa/internal/modules/order"
	"waslhaa/internal/types"
)

type OrderHandler struct {
	order *order.Service
}

func NewOrderHandler(svc *order.Service) *OrderHandler {
	return &OrderHandler{order: svc}
}

type quoteReq struct {
	Pickup      *pointDTO `json:"pickup"`
	Dropoff     *pointDTO `json:"dropoff"`
	VehicleType string    `json:"vehicle_type"`
}

func (h *OrderHandler) Quote(c *gin.Context) {
	var req quoteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	if req.Pickup == nil || req.Dropoff == nil {
		badRequest(c, "pickup and dropoff are required")
		return
	}
	vehicle, ok := parseVehicle(c, req.VehicleType)
	if !ok {
		return
	}
	q, err := h.order.Quote(c.Request.Context(), order.TripRequest{
		Pickup:      req.Pickup.point(),
		Dropoff:     req.Dropoff.point(),
		VehicleType: vehicle,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toQuoteResponse(q))
}

type createOrderReq struct {
	Pickup        *stopDTO `json:"pickup"`
	Dropoff       *stopDTO `json:"dropoff"`
	VehicleType   string   `json:"vehicle_type"`
	Category      string   `json:"category"`
	PaymentMethod string   `json:"payment_method"`
	CustomerPhone string   `json:"customer_phone"`
}

func (h *OrderHandler) Create(c *gin.Context) {
	if middleware.CallerRole(c) != types.RoleCustomer {
		forbidden(c, "only customers can create orders")
		return
	}
	var req createOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	if req.Pickup == nil || req.Dropoff == nil {
		badRequest(c, "pickup and dropoff are required")
		return
	}
	vehicle, ok := parseVehicle(c, req.VehicleType)
	if !ok {
		return
	}
	o, err := h.order.Create(c.Request.Context(), order.CreateCommand{
		CustomerID:    middleware.CallerUID(c),
		CustomerPhone: req.CustomerPhone,
		Category:      order.Category(req.Category),
		VehicleType:   vehicle,
		Pickup:        req.Pickup.stop(),
		Dropoff:       req.Dropoff.stop(),
		PaymentMethod: order.PaymentMethod(req.PaymentMethod),
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, toOrderResponse(o))
}

func (h *OrderHandler) Get(c *gin.Context) {
	o, ok := h.visibleOrder(c)
	if !ok {
		return
	}
	writeJSON(c, http.StatusOK, toOrderResponse(o))
}

func (h *OrderHandler) History(c *gin.Context) {
	o, ok := h.visibleOrder(c)
	if !ok {
		return
	}
	events, err := h.order.History(c.Request.Context(), o.ID)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"order_id": o.ID, "events": toEventList(events)})
}

func (h *OrderHandler) Cancel(c *gin.Context) {
	applyAction(c, h.order, order.ActionCancel)
}

func (h *OrderHandler) Rate(c *gin.Context) {
	applyAction(c, h.order, order.ActionRate)
}

func (h *OrderHandler) ListMine(c *gin.Context) {
	if middleware.CallerRole(c) != types.RoleCustomer {
		forbidden(c, "only customers have an order history")
		return
	}
	orders, err := h.order.ListByCustomer(c.Request.Context(), middleware.CallerUID(c), queryLimit(c))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"orders": toOrderList(orders)})
}

// visibleOrder loads :id if the caller may see it: the ordering customer,
// the bound driver, any admin, or any driver while the order is still pending.
func (h *OrderHandler) visibleOrder(c *gin.Context) (*order.Order, bool) {
	id := c.Param("id")
	if id == "" {
		badRequest(c, "missing order id")
		return nil, false
	}
	o, err := h.order.Get(c.Request.Context(), types.ID(id))
	if err != nil {
		writeDomainError(c, err)
		return nil, false
	}
	actor := middleware.CallerActor(c)
	switch actor.Role {
	case types.RoleAdmin:
		return o, true
	case types.RoleCustomer:
		if o.CustomerID == actor.ID {
			return o, true
		}
	case types.RoleDriver:
		if o.Status == order.StatusPending || (o.DriverID != nil && *o.DriverID == actor.ID) {
			return o, true
		}
	}
	// Hide existence from callers who may not see the order.
	writeError(c, http.StatusNotFound, "not_found", order.ErrNotFound.Error())
	return nil, false
}

type actionReq struct {
	ExpectedVersion *int   `json:"expected_version"`
	Score           int    `json:"score"`
	Comment         string `json:"comment"`
	Reason          string `json:"reason"`
}

// applyAction runs a lifecycle action for the caller against :id.
func applyAction(c *gin.Context, svc *order.Service, action order.Action) {
	id := c.Param("id")
	if id == "" {
		badRequest(c, "missing order id")
		return
	}
	var req actionReq
	if !bindOptionalJSON(c, &req) {
		return
	}
	cmd := order.ApplyCommand{
		OrderID:         types.ID(id),
		Action:          action,
		Actor:           middleware.CallerActor(c),
		ExpectedVersion: req.ExpectedVersion,
		Reason:          req.Reason,
	}
	if action == order.ActionRate {
		cmd.Rating = &order.Rating{Score: req.Score, Comment: req.Comment}
	}
	o, err := svc.Apply(c.Request.Context(), cmd)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toOrderResponse(o))
}

func parseVehicle(c *gin.Context, raw string) (types.VehicleType, bool) {
	v := types.ParseVehicleType(raw)
	if !v.Valid() {
		badRequest(c, "unknown vehicle_type "+raw)
		return "", false
	}
	return v, true
}
