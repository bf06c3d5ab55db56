package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Subham7008/Quick-Serve/internal/model"
	"github.com/Subham7008/Quick-Serve/internal/service"
)

// ServiceRequestHandler exposes the repair job lifecycle.  Every route sits
// behind JWTAuth; per-request access rules live in the service.
type ServiceRequestHandler struct {
	Lifecycle *service.LifecycleService
	Logger    *slog.Logger
}

func NewServiceRequestHandler(lc *service.LifecycleService, logger *slog.Logger) *ServiceRequestHandler {
	return &ServiceRequestHandler{Lifecycle: lc, Logger: logger}
}

type assignShopReq struct {
	ShopOwnerID string `json:"shop_owner_id"`
}

type updateStatusReq struct {
	ServiceStatus model.ServiceStatus `json:"service_status"`
}

func (h *ServiceRequestHandler) Create(c echo.Context) error {
	id, err := actor(c)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	var in service.CreateServiceRequestInput
	if err := bind(c, &in); err != nil {
		return respondError(c, h.Logger, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	out, err := h.Lifecycle.Create(ctx, in, id)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return respond(c, http.StatusCreated, "Service request created successfully", out)
}

// List returns every request regardless of who created it.
func (h *ServiceRequestHandler) List(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	list, err := h.Lifecycle.List(ctx)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return respond(c, http.StatusOK, "Service requests retrieved successfully", list)
}

func (h *ServiceRequestHandler) Get(c echo.Context) error {
	id, err := actor(c)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	view, err := h.Lifecycle.Get(ctx, c.Param("id"), id)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return respond(c, http.StatusOK, "Service request retrieved successfully", view)
}

func (h *ServiceRequestHandler) AssignShop(c echo.Context) error {
	id, err := actor(c)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	var in assignShopReq
	if err := bind(c, &in); err != nil {
		return respondError(c, h.Logger, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	sr, err := h.Lifecycle.AssignShop(ctx, c.Param("id"), in.ShopOwnerID, id)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return respond(c, http.StatusOK, "Shop assigned successfully", sr)
}

func (h *ServiceRequestHandler) UpdateStatus(c echo.Context) error {
	id, err := actor(c)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	var in updateStatusReq
	if err := bind(c, &in); err != nil {
		return respondError(c, h.Logger, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	sr, err := h.Lifecycle.UpdateStatus(ctx, c.Param("id"), in.ServiceStatus, id)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return respond(c, http.StatusOK, "Service status updated successfully", sr)
}

func (h *ServiceRequestHandler) UpdatePayment(c echo.Context) error {
	id, err := actor(c)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	var in service.PaymentPatch
	if err := bind(c, &in); err != nil {
		return respondError(c, h.Logger, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	sr, err := h.Lifecycle.UpdatePayment(ctx, c.Param("id"), in, id)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return respond(c, http.StatusOK, "Payment details updated successfully", sr)
}

func (h *ServiceRequestHandler) Delete(c echo.Context) error {
	id, err := actor(c)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Lifecycle.Delete(ctx, c.Param("id"), id); err != nil {
		return respondError(c, h.Logger, err)
	}
	return respond(c, http.StatusOK, "Service request deleted successfully", echo.Map{"id": c.Param("id")})
}

// Invoice generates a new invoice on every call.
func (h *ServiceRequestHandler) Invoice(c echo.Context) error {
	id, err := actor(c)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	inv, err := h.Lifecycle.GenerateInvoice(ctx, c.Param("id"), id)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return respond(c, http.StatusOK, "Invoice generated successfully", inv)
}

func (h *ServiceRequestHandler) Invoices(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	list, err := h.Lifecycle.Invoices(ctx, c.Param("id"))
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return respond(c, http.StatusOK, "Invoices retrieved successfully", list)
}
