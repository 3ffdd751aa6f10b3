// Package woocommerce реализует клиент REST API commerce-бэкенда.
// Клиент покрывает ровно пять эндпоинтов, нужных сервису начисления:
// чтение заказа, поиск настройки, начисление баллов, запись meta
// и добавление комментария к заказу.
package woocommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/greenleafpos/points-service/internal/config"
	"github.com/greenleafpos/points-service/internal/models"
)

type Client struct {
	baseURL string
	key     string
	secret  string
	timeout time.Duration
	client  *http.Client
	log     *slog.Logger
}

func New(cfg config.Woo, log *slog.Logger) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		key:     cfg.ConsumerKey,
		secret:  cfg.ConsumerSecret,
		timeout: cfg.Timeout,
		client:  &http.Client{},
		log:     log,
	}
}

// Order читает заказ по идентификатору. Любой не-2xx ответ превращается
// в *FetchError с кодом ответа бэкенда.
func (c *Client) Order(ctx context.Context, id int64) (*models.Order, error) {
	const fn = "woocommerce.Order"

	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/orders/%d", id), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fn, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s: %w", fn, &FetchError{StatusCode: resp.StatusCode})
	}

	order := &models.Order{}
	if err := json.NewDecoder(resp.Body).Decode(order); err != nil {
		return nil, fmt.Errorf("%s: can't decode order: %v", fn, err)
	}

	return order, nil
}

// Setting ищет настройку по идентификатору через search-параметр и
// возвращает значение записи с совпадающим id.
func (c *Client) Setting(ctx context.Context, id string) (string, error) {
	const fn = "woocommerce.Setting"

	path := "/settings?search=" + url.QueryEscape(id)

	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return "", fmt.Errorf("%s: %w", fn, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%s: settings lookup failed with status %d", fn, resp.StatusCode)
	}

	var settings []models.Setting
	if err := json.NewDecoder(resp.Body).Decode(&settings); err != nil {
		return "", fmt.Errorf("%s: can't decode settings: %v", fn, err)
	}

	for _, setting := range settings {
		if setting.ID == id {
			return setting.Value, nil
		}
	}

	return "", fmt.Errorf("%s: %w", fn, ErrSettingNotFound)
}

// AdjustPoints начисляет баллы клиенту. Не-2xx ответ превращается
// в *AdjustError с кодом ответа бэкенда.
func (c *Client) AdjustPoints(ctx context.Context, customerID int64, adj models.PointsAdjustment) error {
	const fn = "woocommerce.AdjustPoints"

	resp, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/user/%d/adjust", customerID), adj)
	if err != nil {
		return fmt.Errorf("%s: %w", fn, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s: %w", fn, &AdjustError{StatusCode: resp.StatusCode})
	}

	return nil
}

// UpdateOrderMeta дописывает в заказ одну meta-запись.
func (c *Client) UpdateOrderMeta(ctx context.Context, orderID int64, key, value string) error {
	const fn = "woocommerce.UpdateOrderMeta"

	body := map[string]any{
		"meta_data": []models.MetaEntry{{Key: key, Value: value}},
	}

	resp, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/orders/%d", orderID), body)
	if err != nil {
		return fmt.Errorf("%s: %w", fn, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s: meta update failed with status %d", fn, resp.StatusCode)
	}

	return nil
}

// AddOrderNote добавляет к заказу служебный (не видимый клиенту) комментарий.
func (c *Client) AddOrderNote(ctx context.Context, orderID int64, note string) error {
	const fn = "woocommerce.AddOrderNote"

	body := map[string]any{
		"note":          note,
		"customer_note": false,
	}

	resp, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/orders/%d/notes", orderID), body)
	if err != nil {
		return fmt.Errorf("%s: %w", fn, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s: note append failed with status %d", fn, resp.StatusCode)
	}

	return nil
}

// do выполняет один HTTP-вызов с basic-auth и ограничением по времени.
// Таймаут задается на каждый вызов отдельно: зависший бэкенд не должен
// держать обработку начисления дольше настроенного лимита.
func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("can't marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("can't create request: %v", err)
	}

	req.SetBasicAuth(c.key, c.secret)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.log.Debug("calling commerce backend",
		slog.String("method", method),
		slog.String("path", path),
	)

	resp, err := c.client.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("request failed: %v", err)
	}

	// cancel откладывается до закрытия тела ответа вызывающим кодом.
	resp.Body = &cancelReadCloser{ReadCloser: resp.Body, cancel: cancel}

	return resp, nil
}

type cancelReadCloser struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelReadCloser) Close() error {
	defer c.cancel()
	return c.ReadCloser.Close()
}
