package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Subham7008/Quick-Serve/internal/service"
)

// CustomerHandler manages the customer, device and payment records a shop
// keeps.  All routes are scoped to the records the caller created.
type CustomerHandler struct {
	Records *service.RecordsService
	Logger  *slog.Logger
}

func NewCustomerHandler(rs *service.RecordsService, logger *slog.Logger) *CustomerHandler {
	return &CustomerHandler{Records: rs, Logger: logger}
}

func (h *CustomerHandler) Add(c echo.Context) error {
	id, err := actor(c)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	var in service.IntakeInput
	if err := bind(c, &in); err != nil {
		return respondError(c, h.Logger, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	res, err := h.Records.Intake(ctx, in, id)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return respond(c, http.StatusCreated, "Customer added successfully", res)
}

func (h *CustomerHandler) List(c echo.Context) error {
	id, err := actor(c)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	list, err := h.Records.List(ctx, id)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return respond(c, http.StatusOK, "Customers retrieved successfully", list)
}

func (h *CustomerHandler) Get(c echo.Context) error {
	id, err := actor(c)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	view, err := h.Records.Get(ctx, c.Param("id"), id)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return respond(c, http.StatusOK, "Customer retrieved successfully", view)
}

func (h *CustomerHandler) Update(c echo.Context) error {
	id, err := actor(c)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	var in service.CustomerUpdate
	if err := bind(c, &in); err != nil {
		return respondError(c, h.Logger, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	res, err := h.Records.Update(ctx, c.Param("id"), in, id)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return respond(c, http.StatusOK, "Customer updated successfully", res)
}

// Delete removes the customer together with their devices.
func (h *CustomerHandler) Delete(c echo.Context) error {
	id, err := actor(c)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Records.Delete(ctx, c.Param("id"), id); err != nil {
		return respondError(c, h.Logger, err)
	}
	return respond(c, http.StatusOK, "Customer deleted successfully", echo.Map{"id": c.Param("id")})
}
