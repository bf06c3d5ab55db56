package router

import (
	"github.com/labstack/echo/v4"

	"github.com/Subham7008/Quick-Serve/internal/handler"
)

// RegisterServiceRequests registers the repair job lifecycle.  Any
// authenticated caller may reach these routes; the creator-or-assignee and
// creator-only rules are applied per request by the service.
func RegisterServiceRequests(api *echo.Group, h *handler.ServiceRequestHandler, requireAuth echo.MiddlewareFunc) {
	g := api.Group("/service-requests", requireAuth)
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.DELETE("/:id", h.Delete)
	g.PATCH("/:id/assign-shop", h.AssignShop)
	g.PATCH("/:id/status", h.UpdateStatus)
	g.PATCH("/:id/payment", h.UpdatePayment)
	g.GET("/:id/invoice", h.Invoice)
	g.GET("/:id/invoices", h.Invoices)
}
