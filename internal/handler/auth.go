package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Subham7008/Quick-Serve/internal/model"
	"github.com/Subham7008/Quick-Serve/internal/service"
)

// AuthHandler serves the staff user endpoints: password signup and login,
// profile self-service and logout.
type AuthHandler struct {
	Auth   *service.AuthService
	Logger *slog.Logger
}

func NewAuthHandler(auth *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{Auth: auth, Logger: logger}
}

type signupResp struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
	User      model.User `json:"user"`
}

type loginResp struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	UserName  string    `json:"user_name"`
	Role      string    `json:"role"`
}

// Signup registers a user and signs them in straight away.
func (h *AuthHandler) Signup(c echo.Context) error {
	var in service.SignupInput
	if err := bind(c, &in); err != nil {
		return respondError(c, h.Logger, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	res, err := h.Auth.Signup(ctx, in)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return respond(c, http.StatusCreated, "User registered successfully", signupResp{
		Token: res.Token, ExpiresAt: res.ExpiresAt, User: res.User,
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var in service.LoginInput
	if err := bind(c, &in); err != nil {
		return respondError(c, h.Logger, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	res, err := h.Auth.Login(ctx, in)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return respond(c, http.StatusOK, "Login successful", loginResp{
		Token: res.Token, ExpiresAt: res.ExpiresAt, UserName: res.User.UserName, Role: res.User.Role,
	})
}

func (h *AuthHandler) GetProfile(c echo.Context) error {
	id, err := actor(c)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.Auth.GetProfile(ctx, id)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return respond(c, http.StatusOK, "Profile retrieved successfully", u)
}

func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	id, err := actor(c)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	var upd model.UserProfileUpdate
	if err := bind(c, &upd); err != nil {
		return respondError(c, h.Logger, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.Auth.UpdateProfile(ctx, id, upd)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return respond(c, http.StatusOK, "Profile updated successfully", u)
}

// Logout revokes the session behind the presented token.  It works for
// both identity kinds.
func (h *AuthHandler) Logout(c echo.Context) error {
	id, err := actor(c)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Auth.Logout(ctx, id); err != nil {
		return respondError(c, h.Logger, err)
	}
	return respond(c, http.StatusOK, "Logged out successfully", nil)
}
