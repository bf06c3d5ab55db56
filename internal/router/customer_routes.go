package router

import (
	"github.com/labstack/echo/v4"

	"github.com/Subham7008/Quick-Serve/internal/handler"
)

// RegisterCustomers registers the customer and payment record routes.  All
// of them require a valid token and only ever see records the caller
// created.
func RegisterCustomers(api *echo.Group, c *handler.CustomerHandler, p *handler.PaymentHandler, requireAuth echo.MiddlewareFunc) {
	customers := api.Group("/customers", requireAuth)
	customers.POST("/addcustomer", c.Add)
	customers.GET("", c.List)
	customers.GET("/:id", c.Get)
	customers.PUT("/:id", c.Update)
	customers.DELETE("/:id", c.Delete)

	payments := api.Group("/payments", requireAuth)
	payments.POST("", p.Add)
	payments.GET("/customer/:id", p.ByCustomer)
}
