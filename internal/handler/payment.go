package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Subham7008/Quick-Serve/internal/service"
)

type PaymentHandler struct {
	Records *service.RecordsService
	Logger  *slog.Logger
}

func NewPaymentHandler(rs *service.RecordsService, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{Records: rs, Logger: logger}
}

func (h *PaymentHandler) Add(c echo.Context) error {
	id, err := actor(c)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	var in service.AddPaymentInput
	if err := bind(c, &in); err != nil {
		return respondError(c, h.Logger, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	p, err := h.Records.AddPayment(ctx, in, id)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return respond(c, http.StatusCreated, "Payment details added successfully", p)
}

func (h *PaymentHandler) ByCustomer(c echo.Context) error {
	id, err := actor(c)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	list, err := h.Records.PaymentsByCustomer(ctx, c.Param("id"), id)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return respond(c, http.StatusOK, "Payments retrieved successfully", list)
}
