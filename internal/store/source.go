// Package store reads the record store: report feeds and the reference lists
// used to label transactions.
package store

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/negocios/consola/internal/records"
	"github.com/negocios/consola/internal/reporting"
)

var (
	// ErrUnavailable reports that the record store could not be reached or
	// answered with an error status.
	ErrUnavailable = errors.New("store: record store unavailable")
	// ErrDecode reports a payload that is not the expected collection.
	ErrDecode = errors.New("store: malformed payload")
)

// Source is a read-only view of the record store.
type Source interface {
	DailyReport(ctx context.Context) ([]reporting.DailyRow, error)
	MonthlyReport(ctx context.Context) ([]reporting.MonthlyRow, error)
	Accounts(ctx context.Context) ([]records.Account, error)
	Clients(ctx context.Context) ([]records.Client, error)
	Suppliers(ctx context.Context) ([]records.Supplier, error)
	Sales(ctx context.Context) ([]records.Sale, error)
	Purchases(ctx context.Context) ([]records.Purchase, error)
}

// LoadReferences fetches the three reference lists concurrently. Lists that
// fail stay empty, so labels fall back to raw keys; the failures are joined
// into the returned error.
func LoadReferences(ctx context.Context, src Source) (records.References, error) {
	var refs records.References
	var accountErr, clientErr, supErr error
	var g errgroup.Group
	g.Go(func() error {
		refs.Accounts, accountErr = src.Accounts(ctx)
		return nil
	})
	g.Go(func() error {
		refs.Clients, clientErr = src.Clients(ctx)
		return nil
	})
	g.Go(func() error {
		refs.Suppliers, supErr = src.Suppliers(ctx)
		return nil
	})
	_ = g.Wait()
	var errs []error
	if accountErr != nil {
		errs = append(errs, fmt.Errorf("cuentas: %w", accountErr))
	}
	if clientErr != nil {
		errs = append(errs, fmt.Errorf("clientes: %w", clientErr))
	}
	if supErr != nil {
		errs = append(errs, fmt.Errorf("proveedores: %w", supErr))
	}
	return refs, errors.Join(errs...)
}
