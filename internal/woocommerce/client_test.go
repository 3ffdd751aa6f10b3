package woocommerce

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenleafpos/points-service/internal/config"
	"github.com/greenleafpos/points-service/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return New(config.Woo{
		BaseURL:        srv.URL,
		ConsumerKey:    "ck_test",
		ConsumerSecret: "cs_test",
		Timeout:        2 * time.Second,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestClient_Order(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/orders/42", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "ck_test", user)
		assert.Equal(t, "cs_test", pass)

		json.NewEncoder(w).Encode(models.Order{
			ID:         42,
			Status:     "completed",
			DatePaid:   "2026-08-20T14:03:00",
			CustomerID: 5,
			Total:      "60.00",
			LineItems:  []models.LineItem{{Name: "Pre-roll", Quantity: 2, Subtotal: "60.00"}},
			MetaData:   []models.MetaEntry{{Key: "_wc_points_earned", Value: "60"}},
		})
	})

	order, err := client.Order(context.Background(), 42)
	require.NoError(t, err)

	assert.Equal(t, int64(42), order.ID)
	assert.Equal(t, "completed", order.Status)
	assert.Equal(t, int64(5), order.CustomerID)
	require.Len(t, order.LineItems, 1)
	assert.Equal(t, 2, order.LineItems[0].Quantity)

	value, ok := order.Meta("_wc_points_earned")
	require.True(t, ok)
	assert.Equal(t, "60", value)
}

func TestClient_OrderNullDatePaid(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": 42, "status": "pending", "date_paid": null, "customer_id": 5}`))
	})

	order, err := client.Order(context.Background(), 42)
	require.NoError(t, err)

	assert.Equal(t, "", order.DatePaid)
}

func TestClient_OrderFetchError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.Order(context.Background(), 42)
	require.Error(t, err)

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
}

func TestClient_Setting(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/settings", r.URL.Path)
		assert.Equal(t, "wc_points_rewards_earn_points_ratio", r.URL.Query().Get("search"))

		json.NewEncoder(w).Encode([]models.Setting{
			{ID: "wc_points_rewards_redeem_points_ratio", Value: "100:1"},
			{ID: "wc_points_rewards_earn_points_ratio", Value: "3:1"},
		})
	})

	value, err := client.Setting(context.Background(), "wc_points_rewards_earn_points_ratio")
	require.NoError(t, err)
	assert.Equal(t, "3:1", value)
}

func TestClient_SettingNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	_, err := client.Setting(context.Background(), "wc_points_rewards_earn_points_ratio")
	require.ErrorIs(t, err, ErrSettingNotFound)
}

func TestClient_SettingLookupFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.Setting(context.Background(), "wc_points_rewards_earn_points_ratio")
	require.Error(t, err)

	// Сбой settings-эндпоинта не должен выглядеть как фатальная ошибка заказа.
	var fetchErr *FetchError
	assert.False(t, errors.As(err, &fetchErr))
}

func TestClient_AdjustPoints(t *testing.T) {
	var received models.PointsAdjustment

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/user/5/adjust", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
	})

	adj := models.PointsAdjustment{
		Points:      100,
		Description: "Points earned for order #7",
		EventType:   "order-placed",
		OrderID:     7,
	}

	require.NoError(t, client.AdjustPoints(context.Background(), 5, adj))
	assert.Equal(t, adj, received)
}

func TestClient_AdjustPointsError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	})

	err := client.AdjustPoints(context.Background(), 5, models.PointsAdjustment{Points: 1})
	require.Error(t, err)

	var adjustErr *AdjustError
	require.True(t, errors.As(err, &adjustErr))
	assert.Equal(t, http.StatusUnprocessableEntity, adjustErr.StatusCode)
}

func TestClient_UpdateOrderMeta(t *testing.T) {
	var received struct {
		MetaData []models.MetaEntry `json:"meta_data"`
	}

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/orders/7", r.URL.Path)

		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
	})

	require.NoError(t, client.UpdateOrderMeta(context.Background(), 7, "_wc_points_earned", "100"))

	require.Len(t, received.MetaData, 1)
	assert.Equal(t, models.MetaEntry{Key: "_wc_points_earned", Value: "100"}, received.MetaData[0])
}

func TestClient_AddOrderNote(t *testing.T) {
	var received struct {
		Note         string `json:"note"`
		CustomerNote bool   `json:"customer_note"`
	}

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/orders/7/notes", r.URL.Path)

		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
	})

	require.NoError(t, client.AddOrderNote(context.Background(), 7, "Customer earned 100 points for purchase."))

	assert.Equal(t, "Customer earned 100 points for purchase.", received.Note)
	assert.False(t, received.CustomerNote)
}
