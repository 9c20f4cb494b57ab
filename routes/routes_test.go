package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/auth"
	"github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/checkout"
	orderControllers "github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/controllers/order"
	"github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/gateway"
	"github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/models"
	"github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/store"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const secret = "routes-secret"

type RouterSuite struct {
	suite.Suite
	store  *store.Memory
	router *gin.Engine
}

func TestRouterSuite(t *testing.T) {
	gin.SetMode(gin.TestMode)
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	ctx := context.Background()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.store = store.NewMemory()

	hash, err := auth.HashPassword("secret")
	s.Require().NoError(err)
	_, err = s.store.CreateUser(ctx, models.User{ID: "admin", Name: "Admin", Email: "admin@example.com", Password: hash, Role: models.RoleAdmin})
	s.Require().NoError(err)
	_, err = s.store.CreateUser(ctx, models.User{ID: "cust", Name: "Carol", Email: "carol@example.com", Password: hash, Address: "1 Main St"})
	s.Require().NoError(err)
	for _, p := range []models.Product{
		{ID: "p1", Name: "Book", Price: decimal.NewFromInt(10)},
		{ID: "p2", Name: "Lamp", Price: decimal.NewFromInt(20)},
	} {
		_, err = s.store.CreateProduct(ctx, p)
		s.Require().NoError(err)
	}

	hub := orderControllers.NewHub(log)
	gw := gateway.Normalize(gateway.Offline{Currency: "USD"}, time.Second)
	svc := checkout.NewService(gw, s.store, checkout.Config{Notifier: hub}, log)

	s.router = NewRouter(Deps{
		Store:     s.store,
		Checkout:  svc,
		Hub:       hub,
		JWTSecret: secret,
		TokenTTL:  time.Hour,
		Log:       log,
	})
}

func (s *RouterSuite) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *RouterSuite) login(email string) string {
	w := s.do(http.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": "secret"})
	s.Require().Equal(http.StatusOK, w.Code)
	var resp auth.LoginResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Token
}

func (s *RouterSuite) TestHealthz() {
	w := s.do(http.MethodGet, "/healthz", "", nil)
	s.Equal(http.StatusOK, w.Code)
}

func (s *RouterSuite) TestCheckoutFlow() {
	cust := s.login("carol@example.com")
	admin := s.login("admin@example.com")

	w := s.do(http.MethodGet, "/braintree/token", "", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "clientToken")

	cart := []map[string]any{
		{"_id": "p1", "name": "Book", "price": 10},
		{"_id": "p2", "name": "Lamp", "price": 20},
	}
	w = s.do(http.MethodPost, "/braintree/payment", cust, map[string]any{"nonce": gateway.NonceValid, "cart": cart})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var paid struct {
		OK    bool         `json:"ok"`
		Order models.Order `json:"order"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &paid))
	s.True(paid.OK)
	s.Equal("cust", paid.Order.Buyer)
	s.Equal([]string{"p1", "p2"}, paid.Order.Products)
	s.Equal("30.00", paid.Order.Payment.Amount)
	s.True(paid.Order.Payment.Success)

	w = s.do(http.MethodGet, "/auth/orders", cust, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var mine []models.OrderDetail
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &mine))
	s.Require().Len(mine, 1)
	s.Equal("Carol", mine[0].Buyer.Name)
	s.Len(mine[0].Products, 2)

	w = s.do(http.MethodPut, "/auth/order-status/"+paid.Order.ID, admin, map[string]string{"status": "Shipped"})
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/auth/all-orders", admin, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var all []models.OrderDetail
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &all))
	s.Require().Len(all, 1)
	s.Equal(models.OrderStatusShipped, all[0].Status)

	w = s.do(http.MethodGet, "/auth/all-orders/export", admin, nil)
	s.Equal(http.StatusOK, w.Code)
}

func (s *RouterSuite) TestDeclinedPaymentStoresNothing() {
	cust := s.login("carol@example.com")

	w := s.do(http.MethodPost, "/braintree/payment", cust, map[string]any{
		"nonce": gateway.NonceProcessorDeclined,
		"cart":  []map[string]any{{"_id": "p1", "price": 10}},
	})
	s.Equal(http.StatusInternalServerError, w.Code)

	orders, err := s.store.ListOrders(context.Background(), store.OrderFilter{})
	s.Require().NoError(err)
	s.Empty(orders)
}

func (s *RouterSuite) TestAccessControl() {
	cust := s.login("carol@example.com")

	w := s.do(http.MethodPost, "/braintree/payment", "", map[string]any{"nonce": gateway.NonceValid})
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/auth/orders", "", nil)
	s.Equal(http.StatusUnauthorized, w.Code)

	for _, path := range []string{"/auth/all-orders", "/auth/all-orders/export", "/auth/orders/ws"} {
		w = s.do(http.MethodGet, path, cust, nil)
		s.Equal(http.StatusUnauthorized, w.Code, path)
	}
	w = s.do(http.MethodPut, "/auth/order-status/any", cust, map[string]string{"status": "Shipped"})
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *RouterSuite) TestProfileAndAuthChecks() {
	cust := s.login("carol@example.com")
	admin := s.login("admin@example.com")

	s.Equal(http.StatusOK, s.do(http.MethodGet, "/auth/user-auth", cust, nil).Code)
	s.Equal(http.StatusUnauthorized, s.do(http.MethodGet, "/auth/admin-auth", cust, nil).Code)
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/auth/admin-auth", admin, nil).Code)

	w := s.do(http.MethodPut, "/auth/profile", admin, map[string]string{"address": "2 Side St"})
	s.Require().Equal(http.StatusOK, w.Code)

	user, err := s.store.GetUser(context.Background(), "admin")
	s.Require().NoError(err)
	s.Equal("2 Side St", user.Address)

	w = s.do(http.MethodGet, "/auth/profile", admin, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "2 Side St")
}

func TestNewRouterDefaults(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(Deps{Store: store.NewMemory(), JWTSecret: secret})

	req := httptest.NewRequest(http.MethodOptions, "/braintree/token", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	require.NotEmpty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
