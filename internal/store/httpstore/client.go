// Package httpstore reads the record store through its REST API.
package httpstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/negocios/consola/internal/records"
	"github.com/negocios/consola/internal/reporting"
	"github.com/negocios/consola/internal/store"
)

const (
	PathDailyReport   = "/api/informes/informeDiario"
	PathMonthlyReport = "/api/informes/informeMensual"
	PathAccounts      = "/api/cuentas"
	PathClients       = "/api/clientes"
	PathSuppliers     = "/api/proveedores"
	PathSales         = "/api/ventas"
	PathPurchases     = "/api/compras"

	errorBodyLimit = 512
)

// Client is a store.Source backed by the record store API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New constructs a client. A non-positive timeout defaults to ten seconds.
func New(baseURL string, timeout time.Duration) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("httpstore: base url required")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{baseURL: baseURL, httpClient: &http.Client{Timeout: timeout}}, nil
}

func (c *Client) DailyReport(ctx context.Context) ([]reporting.DailyRow, error) {
	var rows []reporting.DailyRow
	if err := c.get(ctx, PathDailyReport, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *Client) MonthlyReport(ctx context.Context) ([]reporting.MonthlyRow, error) {
	var rows []reporting.MonthlyRow
	if err := c.get(ctx, PathMonthlyReport, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *Client) Accounts(ctx context.Context) ([]records.Account, error) {
	var rows []records.Account
	if err := c.get(ctx, PathAccounts, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *Client) Clients(ctx context.Context) ([]records.Client, error) {
	var rows []records.Client
	if err := c.get(ctx, PathClients, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *Client) Suppliers(ctx context.Context) ([]records.Supplier, error) {
	var rows []records.Supplier
	if err := c.get(ctx, PathSuppliers, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *Client) Sales(ctx context.Context) ([]records.Sale, error) {
	var rows []records.Sale
	if err := c.get(ctx, PathSales, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *Client) Purchases(ctx context.Context) ([]records.Purchase, error) {
	var rows []records.Purchase
	if err := c.get(ctx, PathPurchases, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *Client) get(ctx context.Context, path string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: GET %s: %v", store.ErrUnavailable, path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return fmt.Errorf("%w: GET %s: status %d: %s", store.ErrUnavailable, path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("%w: GET %s: %v", store.ErrDecode, path, err)
	}
	return nil
}

var _ store.Source = (*Client)(nil)
