package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Subham7008/Quick-Serve/internal/service"
)

// ShopOwnerHandler serves shop owner registration and the OTP login flow.
type ShopOwnerHandler struct {
	Auth   *service.AuthService
	Logger *slog.Logger
}

func NewShopOwnerHandler(auth *service.AuthService, logger *slog.Logger) *ShopOwnerHandler {
	return &ShopOwnerHandler{Auth: auth, Logger: logger}
}

type sendOTPReq struct {
	ContactNumber string `json:"contact_number"`
}

type verifyOTPReq struct {
	ContactNumber string `json:"contact_number"`
	OTP           string `json:"otp"`
}

type verifyOTPResp struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (h *ShopOwnerHandler) Register(c echo.Context) error {
	var in service.RegisterShopOwnerInput
	if err := bind(c, &in); err != nil {
		return respondError(c, h.Logger, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	owner, err := h.Auth.RegisterShopOwner(ctx, in)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return respond(c, http.StatusCreated, "Shop owner registered successfully", owner)
}

// SendOTP issues a fresh code.  The code itself only travels through the
// notification queue, never in the response.
func (h *ShopOwnerHandler) SendOTP(c echo.Context) error {
	var in sendOTPReq
	if err := bind(c, &in); err != nil {
		return respondError(c, h.Logger, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Auth.SendOTP(ctx, in.ContactNumber); err != nil {
		return respondError(c, h.Logger, err)
	}
	return respond(c, http.StatusOK, "OTP sent successfully", []any{})
}

func (h *ShopOwnerHandler) VerifyOTP(c echo.Context) error {
	var in verifyOTPReq
	if err := bind(c, &in); err != nil {
		return respondError(c, h.Logger, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	res, err := h.Auth.VerifyOTP(ctx, in.ContactNumber, in.OTP)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return respond(c, http.StatusOK, "OTP verified successfully", verifyOTPResp{Token: res.Token, ExpiresAt: res.ExpiresAt})
}
