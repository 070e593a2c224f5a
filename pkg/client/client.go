// Package client cliente HTTP de la API de inventario (lo usa ledgerctl en modo remoto).
package client

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/jhoicas/storefront-inventory/internal/application/dto"
	"github.com/jhoicas/storefront-inventory/internal/domain"
)

// Client envuelve resty con la URL base y el token Bearer.
type Client struct {
	http *resty.Client
}

// New construye un cliente contra baseURL. token puede ir vacío para rutas públicas.
func New(baseURL, token string, timeout time.Duration) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	if token != "" {
		c.SetAuthToken(token)
	}
	return &Client{http: c}
}

// APIError respuesta de error de la API. Unwrap devuelve el error de dominio equivalente.
type APIError struct {
	Status int
	Code   string
	Msg    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s: %s", e.Status, e.Code, e.Msg)
}

func (e *APIError) Unwrap() error {
	switch e.Code {
	case "VALIDATION", "INVALID_BODY":
		return domain.ErrInvalidInput
	case "NOT_FOUND":
		return domain.ErrNotFound
	case "INSUFFICIENT_STOCK":
		return domain.ErrInsufficientStock
	case "DUPLICATE":
		return domain.ErrDuplicate
	case "STORE_UNAVAILABLE":
		return domain.ErrStoreUnavailable
	}
	switch e.Status {
	case http.StatusUnauthorized:
		return domain.ErrUnauthorized
	case http.StatusForbidden:
		return domain.ErrForbidden
	}
	return nil
}

// Login devuelve el token y el usuario autenticado.
func (c *Client) Login(ctx context.Context, email, password string) (*dto.LoginResponse, error) {
	var out dto.LoginResponse
	err := c.do(c.http.R().SetContext(ctx).SetBody(dto.LoginRequest{Email: email, Password: password}).SetResult(&out),
		http.MethodPost, "/api/auth/login")
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetStock GET /api/inventory/{productId}.
func (c *Client) GetStock(ctx context.Context, productID string) (*dto.StockResponse, error) {
	var out dto.StockResponse
	err := c.do(c.http.R().SetContext(ctx).SetPathParam("productId", productID).SetResult(&out),
		http.MethodGet, "/api/inventory/{productId}")
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CheckAvailability GET /api/inventory/{productId}/availability.
func (c *Client) CheckAvailability(ctx context.Context, productID string, quantity int) (*dto.AvailabilityResponse, error) {
	var out dto.AvailabilityResponse
	err := c.do(c.http.R().SetContext(ctx).
		SetPathParam("productId", productID).
		SetQueryParam("quantity", strconv.Itoa(quantity)).
		SetResult(&out),
		http.MethodGet, "/api/inventory/{productId}/availability")
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListTransactions GET /api/inventory/{productId}/transactions.
func (c *Client) ListTransactions(ctx context.Context, productID string, page dto.PageRequest) (*dto.TransactionListResponse, error) {
	var out dto.TransactionListResponse
	err := c.do(c.http.R().SetContext(ctx).
		SetPathParam("productId", productID).
		SetQueryParams(pageParams(page)).
		SetResult(&out),
		http.MethodGet, "/api/inventory/{productId}/transactions")
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListLowStock GET /api/inventory/low-stock.
func (c *Client) ListLowStock(ctx context.Context) ([]dto.StockResponse, error) {
	var out []dto.StockResponse
	if err := c.do(c.http.R().SetContext(ctx).SetResult(&out), http.MethodGet, "/api/inventory/low-stock"); err != nil {
		return nil, err
	}
	return out, nil
}

// ListInventory GET /api/inventory.
func (c *Client) ListInventory(ctx context.Context, page dto.PageRequest) (*dto.StockListResponse, error) {
	var out dto.StockListResponse
	err := c.do(c.http.R().SetContext(ctx).SetQueryParams(pageParams(page)).SetResult(&out),
		http.MethodGet, "/api/inventory")
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Onboard POST /api/inventory.
func (c *Client) Onboard(ctx context.Context, in dto.OnboardStockRequest) (*dto.StockResponse, error) {
	var out dto.StockResponse
	if err := c.do(c.http.R().SetContext(ctx).SetBody(in).SetResult(&out), http.MethodPost, "/api/inventory"); err != nil {
		return nil, err
	}
	return &out, nil
}

// ApplyMutation POST /api/inventory/{productId}/mutations.
func (c *Client) ApplyMutation(ctx context.Context, productID string, in dto.ApplyMutationRequest) (*dto.MutationResponse, error) {
	var out dto.MutationResponse
	err := c.do(c.http.R().SetContext(ctx).SetPathParam("productId", productID).SetBody(in).SetResult(&out),
		http.MethodPost, "/api/inventory/{productId}/mutations")
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Checkout POST /api/inventory/checkout.
func (c *Client) Checkout(ctx context.Context, in dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	var out dto.CheckoutResponse
	if err := c.do(c.http.R().SetContext(ctx).SetBody(in).SetResult(&out), http.MethodPost, "/api/inventory/checkout"); err != nil {
		return nil, err
	}
	return &out, nil
}

// Reconcile GET /api/inventory/{productId}/reconcile.
func (c *Client) Reconcile(ctx context.Context, productID string) (*dto.ReconciliationResponse, error) {
	var out dto.ReconciliationResponse
	err := c.do(c.http.R().SetContext(ctx).SetPathParam("productId", productID).SetResult(&out),
		http.MethodGet, "/api/inventory/{productId}/reconcile")
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// StockCard descarga el PDF de la tarjeta de stock.
func (c *Client) StockCard(ctx context.Context, productID string) ([]byte, error) {
	var apiErr dto.ErrorResponse
	resp, err := c.http.R().SetContext(ctx).
		SetPathParam("productId", productID).
		SetHeader("Accept", "application/pdf").
		SetError(&apiErr).
		Get("/api/inventory/{productId}/stock-card.pdf")
	if err != nil {
		return nil, transportErr(err)
	}
	if resp.IsError() {
		return nil, &APIError{Status: resp.StatusCode(), Code: apiErr.Code, Msg: apiErr.Message}
	}
	return resp.Body(), nil
}

func (c *Client) do(req *resty.Request, method, path string) error {
	var apiErr dto.ErrorResponse
	resp, err := req.SetError(&apiErr).Execute(method, path)
	if err != nil {
		return transportErr(err)
	}
	if resp.IsError() {
		return &APIError{Status: resp.StatusCode(), Code: apiErr.Code, Msg: apiErr.Message}
	}
	return nil
}

// transportErr la API no respondió: para el llamador es un store no disponible.
func transportErr(err error) error {
	return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
}

func pageParams(p dto.PageRequest) map[string]string {
	params := map[string]string{}
	if p.Limit > 0 {
		params["limit"] = strconv.Itoa(p.Limit)
	}
	if p.Offset > 0 {
		params["offset"] = strconv.Itoa(p.Offset)
	}
	return params
}
