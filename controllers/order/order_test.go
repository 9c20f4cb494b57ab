package orderControllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/middleware"
	"github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/models"
	"github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/store"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func init() {
	gin.SetMode(gin.TestMode)
}

// failingStore fails every order read.
type failingStore struct {
	Store
}

func (failingStore) ListOrders(ctx context.Context, filter store.OrderFilter) ([]models.Order, error) {
	return nil, errors.New("db down")
}

func (failingStore) GetOrder(ctx context.Context, id string) (models.Order, error) {
	return models.Order{}, errors.New("db down")
}

type recordingNotifier struct {
	changed []models.Order
}

func (r *recordingNotifier) StatusChanged(order models.Order) {
	r.changed = append(r.changed, order)
}

func seed(t *testing.T) (*store.Memory, models.Order, models.Order) {
	t.Helper()
	ctx := context.Background()
	s := store.NewMemory()
	_, err := s.CreateUser(ctx, models.User{ID: "u1", Name: "Alice", Email: "a@x"})
	require.NoError(t, err)
	_, err = s.CreateUser(ctx, models.User{ID: "u2", Name: "Bob", Email: "b@x"})
	require.NoError(t, err)
	_, err = s.CreateProduct(ctx, models.Product{ID: "p1", Name: "Book", Price: decimal.NewFromInt(10)})
	require.NoError(t, err)

	first, err := s.CreateOrder(ctx, models.NewOrder("u1", []string{"p1", "deleted"}, models.Payment{Success: true, TransactionID: "tx1", Amount: "10.00"}))
	require.NoError(t, err)
	second, err := s.CreateOrder(ctx, models.NewOrder("u2", []string{"p1"}, models.Payment{Success: true, TransactionID: "tx2", Amount: "10.00"}))
	require.NoError(t, err)
	return s, first, second
}

func asUser(id string) gin.HandlerFunc {
	return func(c *gin.Context) { c.Set(middleware.UserIDKey, id) }
}

func serve(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetOrdersHandler(t *testing.T) {
	s, first, _ := seed(t)
	r := gin.New()
	r.GET("/auth/orders", asUser("u1"), GetOrdersHandler(s, quiet))

	w := serve(r, http.MethodGet, "/auth/orders", "")
	require.Equal(t, http.StatusOK, w.Code)

	var orders []models.OrderDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &orders))
	require.Len(t, orders, 1)
	assert.Equal(t, first.ID, orders[0].ID)
	assert.Equal(t, models.BuyerRef{ID: "u1", Name: "Alice"}, orders[0].Buyer)
	require.Len(t, orders[0].Products, 1, "dangling product reference is dropped")
	assert.Equal(t, "Book", orders[0].Products[0].Name)
}

func TestGetAllOrdersHandler(t *testing.T) {
	s, first, second := seed(t)
	r := gin.New()
	r.GET("/auth/all-orders", GetAllOrdersHandler(s, quiet))

	w := serve(r, http.MethodGet, "/auth/all-orders", "")
	require.Equal(t, http.StatusOK, w.Code)

	var orders []models.OrderDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &orders))
	require.Len(t, orders, 2)
	assert.ElementsMatch(t, []string{first.ID, second.ID}, []string{orders[0].ID, orders[1].ID})
	assert.False(t, orders[0].CreatedAt.Before(orders[1].CreatedAt))
}

func TestGetOrdersHandlerStoreFailure(t *testing.T) {
	r := gin.New()
	r.GET("/auth/orders", asUser("u1"), GetOrdersHandler(failingStore{}, quiet))
	r.GET("/auth/all-orders", GetAllOrdersHandler(failingStore{}, quiet))

	for _, path := range []string{"/auth/orders", "/auth/all-orders"} {
		w := serve(r, http.MethodGet, path, "")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"success":false,"message":"Error While Getting Orders","error":"db down"}`, w.Body.String())
	}
}

func TestUpdateOrderStatusHandler(t *testing.T) {
	s, first, _ := seed(t)
	notifier := &recordingNotifier{}
	r := gin.New()
	r.PUT("/auth/order-status/:orderId", UpdateOrderStatusHandler(s, nil, notifier, quiet))

	w := serve(r, http.MethodPut, "/auth/order-status/"+first.ID, `{"status":"Shipped"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var detail models.OrderDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, models.OrderStatusShipped, detail.Status)
	assert.Equal(t, "Alice", detail.Buyer.Name)

	stored, err := s.GetOrder(context.Background(), first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, stored.Status)

	require.Len(t, notifier.changed, 1)
	assert.Equal(t, first.ID, notifier.changed[0].ID)

	// Any status may follow any other by default.
	w = serve(r, http.MethodPut, "/auth/order-status/"+first.ID, `{"status":"Not Processed"}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateOrderStatusHandlerRejects(t *testing.T) {
	s, first, _ := seed(t)
	r := gin.New()
	r.PUT("/auth/order-status/:orderId", UpdateOrderStatusHandler(s, models.StrictTransitions, nil, quiet))
	r.PUT("/broken/:orderId", UpdateOrderStatusHandler(failingStore{}, nil, nil, quiet))

	w := serve(r, http.MethodPut, "/auth/order-status/"+first.ID, `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(r, http.MethodPut, "/auth/order-status/"+first.ID, `{"status":"Lost"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid order status")

	// Same closed enum as order creation: no case folding.
	w = serve(r, http.MethodPut, "/auth/order-status/"+first.ID, `{"status":"shipped"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(r, http.MethodPut, "/auth/order-status/missing", `{"status":"Shipped"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serve(r, http.MethodPut, "/auth/order-status/"+first.ID, `{"status":"Delivered"}`)
	require.Equal(t, http.StatusOK, w.Code)
	w = serve(r, http.MethodPut, "/auth/order-status/"+first.ID, `{"status":"Processing"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = serve(r, http.MethodPut, "/broken/"+first.ID, `{"status":"Shipped"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Error While Updating Order","error":"db down"}`, w.Body.String())
}

func TestExportOrdersHandler(t *testing.T) {
	s, first, _ := seed(t)
	r := gin.New()
	r.GET("/auth/all-orders/export", ExportOrdersHandler(s, quiet))

	w := serve(r, http.MethodGet, "/auth/all-orders/export", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "orders.xlsx")

	file, err := xlsx.OpenBinary(w.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, file.Sheets, 1)
	rows := file.Sheets[0].Rows
	require.Len(t, rows, 3)
	assert.Equal(t, "OrderID", rows[0].Cells[0].Value)

	var found bool
	for _, row := range rows[1:] {
		if row.Cells[0].Value == first.ID {
			found = true
			assert.Equal(t, "Alice", row.Cells[2].Value)
			assert.Equal(t, "Book", row.Cells[4].Value)
			assert.Equal(t, "tx1", row.Cells[7].Value)
		}
	}
	assert.True(t, found)
}

func TestHubBroadcasts(t *testing.T) {
	hub := NewHub(quiet)
	r := gin.New()
	r.GET("/ws", hub.Handler)
	srv := httptest.NewServer(r)
	defer srv.Close()
	defer hub.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	hub.OrderCreated(models.Order{ID: "o1", Status: models.OrderStatusNotProcessed})
	hub.StatusChanged(models.Order{ID: "o1", Status: models.OrderStatusShipped})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var created, changed Event
	require.NoError(t, conn.ReadJSON(&created))
	require.NoError(t, conn.ReadJSON(&changed))
	assert.Equal(t, EventOrderCreated, created.Type)
	assert.Equal(t, "o1", created.Order.ID)
	assert.Equal(t, EventOrderStatus, changed.Type)
	assert.Equal(t, models.OrderStatusShipped, changed.Order.Status)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.Clients() == 0 }, time.Second, 10*time.Millisecond)
}

func TestHubDropsStalledClient(t *testing.T) {
	hub := NewHub(quiet)
	r := gin.New()
	r.GET("/ws", hub.Handler)
	srv := httptest.NewServer(r)
	defer srv.Close()
	defer hub.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	// The dashboard never reads, so socket buffers and its queue fill up.
	big := models.Order{ID: "o1", Products: []string{strings.Repeat("x", 256<<10)}}
	var worst time.Duration
	for i := 0; i < 400; i++ {
		start := time.Now()
		hub.OrderCreated(big)
		if d := time.Since(start); d > worst {
			worst = d
		}
	}

	assert.Less(t, worst, time.Second, "broadcast waited on a stalled socket")
	assert.Equal(t, 0, hub.Clients())
}
