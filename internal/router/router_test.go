package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Subham7008/Quick-Serve/internal/config"
	"github.com/Subham7008/Quick-Serve/internal/handler"
	"github.com/Subham7008/Quick-Serve/internal/middleware"
	"github.com/Subham7008/Quick-Serve/internal/queue"
	"github.com/Subham7008/Quick-Serve/internal/repository/memory"
	"github.com/Subham7008/Quick-Serve/internal/service"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

// otpSink captures issued codes in place of the broker.
type otpSink struct {
	mu    sync.Mutex
	codes map[string]string
}

func (s *otpSink) Publish(_ context.Context, _ string, event any) error {
	if ev, ok := event.(queue.OTPIssuedEvent); ok {
		s.mu.Lock()
		s.codes[ev.ContactNumber] = ev.OTP
		s.mu.Unlock()
	}
	return nil
}

func (s *otpSink) code(contact string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.codes[contact]
}

type app struct {
	e   *echo.Echo
	otp *otpSink
}

type reply struct {
	Code    int
	Status  string          `json:"status"`
	Success string          `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

func (r reply) data(t *testing.T) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(r.Data, &m), string(r.Data))
	return m
}

func newApp(t *testing.T) *app {
	t.Helper()
	st := memory.New()
	sink := &otpSink{codes: map[string]string{}}
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	auth := service.NewAuthService(st, sink, service.AuthConfig{
		JWTSecret:         "router-secret",
		UserTokenTTL:      time.Hour,
		ShopOwnerTokenTTL: time.Hour,
		OTPTTL:            10 * time.Minute,
		BcryptCost:        4,
	}, quiet)
	lifecycle := service.NewLifecycleService(st, sink, node, quiet)
	records := service.NewRecordsService(st, quiet)

	e := echo.New()
	RegisterRoutes(e)
	api := e.Group(APIPrefix)
	requireAuth := middleware.JWTAuth(auth, quiet)
	RegisterAuth(api, handler.NewAuthHandler(auth, quiet), handler.NewShopOwnerHandler(auth, quiet),
		requireAuth, middleware.RateLimit(config.RateLimitConfig{}, nil, quiet))
	RegisterServiceRequests(api, handler.NewServiceRequestHandler(lifecycle, quiet), requireAuth)
	RegisterCustomers(api, handler.NewCustomerHandler(records, quiet), handler.NewPaymentHandler(records, quiet), requireAuth)
	return &app{e: e, otp: sink}
}

func (a *app) do(t *testing.T, method, path, token string, body any) reply {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)

	r := reply{Code: rec.Code}
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &r), rec.Body.String())
	}
	return r
}

func signupBody(name, phone string) map[string]any {
	return map[string]any{
		"user_name":     name,
		"first_name":    "Alice",
		"last_name":     "Smith",
		"business_name": "Fix It",
		"email":         name + "@example.com",
		"password":      "Abc12345!",
		"phone_number":  phone,
	}
}

func (a *app) userToken(t *testing.T, name, phone string) string {
	t.Helper()
	r := a.do(t, http.MethodPost, "/api/users/signup", "", signupBody(name, phone))
	require.Equal(t, http.StatusCreated, r.Code, r.Message)
	return r.data(t)["token"].(string)
}

// ownerLogin registers a shop owner and signs them in over the OTP flow.
func (a *app) ownerLogin(t *testing.T, contact string) (id, token string) {
	t.Helper()
	r := a.do(t, http.MethodPost, "/api/shop-owners/register", "", map[string]any{
		"ownerDetails": map[string]any{"name": "Bob", "email": contact + "@shop.com", "contact_number": contact, "password": "pw"},
		"shopDetails":  map[string]any{"shop_name": "Bob's Repairs", "address": "1 Main St", "service_offered": []string{"screen"}},
	})
	require.Equal(t, http.StatusCreated, r.Code, r.Message)
	id = r.data(t)["id"].(string)

	r = a.do(t, http.MethodPost, "/api/shop-owners/login/send-otp", "", map[string]any{"contact_number": contact})
	require.Equal(t, http.StatusOK, r.Code, r.Message)
	assert.JSONEq(t, `[]`, string(r.Data))

	r = a.do(t, http.MethodPost, "/api/shop-owners/login/verify-otp", "", map[string]any{"contact_number": contact, "otp": a.otp.code(contact)})
	require.Equal(t, http.StatusOK, r.Code, r.Message)
	return id, r.data(t)["token"].(string)
}

func TestHealthz(t *testing.T) {
	a := newApp(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUserAuthRoutes(t *testing.T) {
	a := newApp(t)
	token := a.userToken(t, "alice1", "9876500001")

	r := a.do(t, http.MethodPost, "/api/users/login", "", map[string]any{"user_name": "alice1", "password": "Abc12345!"})
	require.Equal(t, http.StatusOK, r.Code)
	assert.Equal(t, "true", r.Success)
	assert.Equal(t, "alice1", r.data(t)["user_name"])

	r = a.do(t, http.MethodPost, "/api/users/login", "", map[string]any{"user_name": "alice1", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, r.Code)
	assert.Equal(t, "401", r.Status)

	r = a.do(t, http.MethodGet, "/api/users/profile", token, nil)
	require.Equal(t, http.StatusOK, r.Code)
	assert.Equal(t, "alice1", r.data(t)["user_name"])
	assert.NotContains(t, string(r.Data), "password")

	r = a.do(t, http.MethodPut, "/api/users/profile", token, map[string]any{"business_email": "Shop@Example.com"})
	require.Equal(t, http.StatusOK, r.Code)
	assert.Equal(t, "shop@example.com", r.data(t)["business_email"])

	r = a.do(t, http.MethodPost, "/api/users/logout", token, nil)
	require.Equal(t, http.StatusOK, r.Code)

	r = a.do(t, http.MethodGet, "/api/users/profile", token, nil)
	assert.Equal(t, http.StatusForbidden, r.Code)
	assert.Equal(t, "403", r.Status)
	assert.Equal(t, "false", r.Success)
}

func TestSignupErrors(t *testing.T) {
	a := newApp(t)
	a.userToken(t, "alice1", "9876500001")

	dup := signupBody("alice1", "9876500002")
	dup["email"] = "other@example.com"
	r := a.do(t, http.MethodPost, "/api/users/signup", "", dup)
	assert.Equal(t, http.StatusConflict, r.Code)
	assert.JSONEq(t, `{"field":"username"}`, string(r.Error))

	r = a.do(t, http.MethodPost, "/api/users/signup", "", map[string]any{"user_name": "x"})
	assert.Equal(t, http.StatusBadRequest, r.Code)
	var fields []map[string]string
	require.NoError(t, json.Unmarshal(r.Error, &fields))
	assert.Greater(t, len(fields), 3)
}

func TestProtectedRoutesRequireBearer(t *testing.T) {
	a := newApp(t)
	for _, p := range []struct{ method, path string }{
		{http.MethodGet, "/api/service-requests"},
		{http.MethodPost, "/api/service-requests"},
		{http.MethodGet, "/api/customers"},
		{http.MethodGet, "/api/users/profile"},
		{http.MethodPost, "/api/payments"},
	} {
		r := a.do(t, p.method, p.path, "", nil)
		assert.Equal(t, http.StatusForbidden, r.Code, p.path)
		assert.Equal(t, "User Unauthorized", r.Message, p.path)
	}
	r := a.do(t, http.MethodGet, "/api/service-requests", "not-a-jwt", nil)
	assert.Equal(t, http.StatusForbidden, r.Code)
	assert.Equal(t, "User Unauthorized", r.Message)
}

func TestShopOwnerCannotUseProfile(t *testing.T) {
	a := newApp(t)
	_, token := a.ownerLogin(t, "9000000001")
	r := a.do(t, http.MethodGet, "/api/users/profile", token, nil)
	assert.Equal(t, http.StatusForbidden, r.Code)
}

func TestVerifyOTPRejectsWrongCode(t *testing.T) {
	a := newApp(t)
	a.ownerLogin(t, "9000000001")
	r := a.do(t, http.MethodPost, "/api/shop-owners/login/verify-otp", "", map[string]any{"contact_number": "9000000001", "otp": "bad"})
	assert.Equal(t, http.StatusBadRequest, r.Code)
}

func TestServiceRequestLifecycle(t *testing.T) {
	a := newApp(t)
	user := a.userToken(t, "alice1", "9876500001")
	ownerID, owner := a.ownerLogin(t, "9000000001")
	stranger := a.userToken(t, "carol3", "9876500003")

	r := a.do(t, http.MethodPost, "/api/service-requests", user, map[string]any{
		"customerDetails": map[string]any{"name": "Dan", "email": "dan@example.com", "contact_number": "9111111111"},
		"deviceDetails":   map[string]any{"device_type": "phone", "device_model": "Pixel", "issue_description": "screen"},
		"paymentDetails":  map[string]any{"total_amount": 5000, "advance_amount": 1000},
	})
	require.Equal(t, http.StatusCreated, r.Code, r.Message)
	sr := r.data(t)["serviceRequest"].(map[string]any)
	id := sr["_id"].(string)
	assert.Equal(t, "pending_shop_assignment", sr["service_status"])
	base := "/api/service-requests/" + id

	r = a.do(t, http.MethodGet, base, stranger, nil)
	assert.Equal(t, http.StatusForbidden, r.Code)

	r = a.do(t, http.MethodGet, "/api/service-requests", stranger, nil)
	require.Equal(t, http.StatusOK, r.Code)
	var all []map[string]any
	require.NoError(t, json.Unmarshal(r.Data, &all))
	assert.Len(t, all, 1)

	r = a.do(t, http.MethodPatch, base+"/assign-shop", user, map[string]any{"shop_owner_id": ownerID})
	require.Equal(t, http.StatusOK, r.Code, r.Message)
	assert.Equal(t, "in_progress", r.data(t)["status"])

	r = a.do(t, http.MethodGet, base, owner, nil)
	require.Equal(t, http.StatusOK, r.Code)
	assert.Equal(t, "Bob", r.data(t)["shop_owner"].(map[string]any)["name"])

	r = a.do(t, http.MethodPatch, base+"/status", owner, map[string]any{"service_status": "delivered"})
	assert.Equal(t, http.StatusBadRequest, r.Code)

	for _, s := range []string{"in_progress", "repair_completed", "delivered"} {
		r = a.do(t, http.MethodPatch, base+"/status", owner, map[string]any{"service_status": s})
		require.Equal(t, http.StatusOK, r.Code, s+": "+r.Message)
	}
	assert.Equal(t, "completed", r.data(t)["status"])

	r = a.do(t, http.MethodPatch, base+"/payment", user, map[string]any{"advance_amount": 5000, "payment_status": "completed"})
	require.Equal(t, http.StatusOK, r.Code, r.Message)

	r = a.do(t, http.MethodGet, base+"/invoice", user, nil)
	require.Equal(t, http.StatusOK, r.Code, r.Message)
	inv := r.data(t)
	assert.True(t, strings.HasPrefix(inv["invoice_number"].(string), "INV-"))
	assert.Equal(t, 0.0, inv["remaining_balance"])

	r = a.do(t, http.MethodGet, base+"/invoices", user, nil)
	require.Equal(t, http.StatusOK, r.Code)
	var invoices []map[string]any
	require.NoError(t, json.Unmarshal(r.Data, &invoices))
	assert.Len(t, invoices, 1)

	r = a.do(t, http.MethodDelete, base, owner, nil)
	assert.Equal(t, http.StatusForbidden, r.Code)
	r = a.do(t, http.MethodDelete, base, user, nil)
	require.Equal(t, http.StatusOK, r.Code)
	r = a.do(t, http.MethodGet, base, user, nil)
	assert.Equal(t, http.StatusNotFound, r.Code)
}

func TestServiceRequestBadID(t *testing.T) {
	a := newApp(t)
	user := a.userToken(t, "alice1", "9876500001")
	r := a.do(t, http.MethodGet, "/api/service-requests/xyz", user, nil)
	assert.Equal(t, http.StatusBadRequest, r.Code)
}

func TestCustomerAndPaymentRoutes(t *testing.T) {
	a := newApp(t)
	_, owner := a.ownerLogin(t, "9000000001")
	_, other := a.ownerLogin(t, "9000000002")

	r := a.do(t, http.MethodPost, "/api/customers/addcustomer", owner, map[string]any{
		"customerDetails": map[string]any{"name": "Eve", "email": "eve@example.com", "contact_number": "9222222222"},
		"deviceDetails":   map[string]any{"device_type": "laptop", "device_model": "X1", "issue_description": "no power"},
		"paymentDetails":  map[string]any{"total_amount": 1200, "advance_amount": 200, "payment_method": "Card", "payment_status": "Partial"},
	})
	require.Equal(t, http.StatusCreated, r.Code, r.Message)
	created := r.data(t)
	customerID := created["customer_id"].(string)
	deviceID := created["device_id"].(string)

	r = a.do(t, http.MethodGet, "/api/customers", owner, nil)
	require.Equal(t, http.StatusOK, r.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(r.Data, &list))
	require.Len(t, list, 1)

	r = a.do(t, http.MethodGet, "/api/customers/"+customerID, other, nil)
	assert.Equal(t, http.StatusNotFound, r.Code)

	r = a.do(t, http.MethodPost, "/api/payments", owner, map[string]any{
		"device_id": deviceID, "total_amount": 300, "advance_amount": 300, "payment_method": "Cash", "payment_status": "Paid",
	})
	require.Equal(t, http.StatusCreated, r.Code, r.Message)

	r = a.do(t, http.MethodPost, "/api/payments", other, map[string]any{
		"device_id": deviceID, "total_amount": 1, "payment_method": "Cash", "payment_status": "Paid",
	})
	assert.Equal(t, http.StatusNotFound, r.Code)

	r = a.do(t, http.MethodGet, "/api/payments/customer/"+customerID, owner, nil)
	require.Equal(t, http.StatusOK, r.Code)
	var pays []map[string]any
	require.NoError(t, json.Unmarshal(r.Data, &pays))
	assert.Len(t, pays, 2)

	r = a.do(t, http.MethodPut, "/api/customers/"+customerID, owner, map[string]any{
		"name": "Eve Adams", "email": "eve@example.com", "contact_number": "9222222222",
	})
	require.Equal(t, http.StatusOK, r.Code, r.Message)

	r = a.do(t, http.MethodDelete, "/api/customers/"+customerID, owner, nil)
	require.Equal(t, http.StatusOK, r.Code)
	assert.Equal(t, customerID, r.data(t)["id"])

	r = a.do(t, http.MethodGet, "/api/customers/"+customerID, owner, nil)
	assert.Equal(t, http.StatusNotFound, r.Code)
}
