// Package pgstore reads the record store straight from its PostgreSQL views.
package pgstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/negocios/consola/internal/money"
	"github.com/negocios/consola/internal/records"
	"github.com/negocios/consola/internal/reporting"
	"github.com/negocios/consola/internal/store"
)

// Querier is the subset of pgxpool.Pool used by the store.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Store is a store.Source over PostgreSQL.
type Store struct {
	db Querier
}

// New constructs a Store.
func New(db Querier) *Store {
	return &Store{db: db}
}

const (
	queryDailyReport = `SELECT numero_transaccion::text, tipo_transaccion::text, COALESCE(to_char(fecha, 'YYYY-MM-DD'), ''),
       COALESCE(cuenta::text, ''), ingreso, egreso, subtotal, total
FROM informe_diario
ORDER BY fecha, numero_transaccion`

	queryMonthlyReport = `SELECT COALESCE(to_char(fecha_dia, 'YYYY-MM-DD'), ''), subtotal, total,
       cantidad_ventas::numeric, cantidad_compras::numeric
FROM informe_mensual
ORDER BY fecha_dia`

	queryAccounts = `SELECT numero_cuenta::text, COALESCE(banco, ''), COALESCE(nombre_asociado, ''), saldo_cuenta
FROM cuentas
ORDER BY numero_cuenta`

	queryClients = `SELECT cedula::text, COALESCE(nombre, ''), COALESCE(direccion, ''), COALESCE(telefono, '')
FROM clientes
ORDER BY cedula`

	querySuppliers = `SELECT ruc::text, COALESCE(empresa, ''), COALESCE(direccion, ''), COALESCE(telefono, '')
FROM proveedores
ORDER BY ruc`

	querySales = `SELECT numero_transaccion::text, COALESCE(cliente::text, ''), COALESCE(to_char(fecha, 'YYYY-MM-DD'), ''),
       COALESCE(to_char(hora, 'HH24:MI'), ''), subtotal, total, COALESCE(cuenta::text, '')
FROM ventas
ORDER BY fecha DESC, hora DESC, numero_transaccion DESC`

	queryPurchases = `SELECT numero_transaccion::text, COALESCE(proveedor::text, ''), COALESCE(to_char(fecha, 'YYYY-MM-DD'), ''),
       COALESCE(to_char(hora, 'HH24:MI'), ''), subtotal, total, COALESCE(cuenta::text, '')
FROM compras
ORDER BY fecha DESC, hora DESC, numero_transaccion DESC`
)

func (s *Store) DailyReport(ctx context.Context) ([]reporting.DailyRow, error) {
	return collect(ctx, s.db, "informe_diario", queryDailyReport, func(row pgx.CollectableRow) (reporting.DailyRow, error) {
		var out reporting.DailyRow
		var id, kind, date, account string
		var income, expense, subtotal, total pgtype.Numeric
		if err := row.Scan(&id, &kind, &date, &account, &income, &expense, &subtotal, &total); err != nil {
			return out, err
		}
		out.TransactionID = records.Key(id)
		out.TransactionType = records.Kind(kind)
		out.Date = date
		out.Account = records.Key(account)
		out.Income = amountFromNumeric(income)
		out.Expense = amountFromNumeric(expense)
		out.Subtotal = amountFromNumeric(subtotal)
		out.Total = amountFromNumeric(total)
		return out, nil
	})
}

func (s *Store) MonthlyReport(ctx context.Context) ([]reporting.MonthlyRow, error) {
	return collect(ctx, s.db, "informe_mensual", queryMonthlyReport, func(row pgx.CollectableRow) (reporting.MonthlyRow, error) {
		var out reporting.MonthlyRow
		var day string
		var subtotal, total, sales, buys pgtype.Numeric
		if err := row.Scan(&day, &subtotal, &total, &sales, &buys); err != nil {
			return out, err
		}
		out.DayDate = day
		out.Subtotal = amountFromNumeric(subtotal)
		out.Total = amountFromNumeric(total)
		out.SaleCount = amountFromNumeric(sales)
		out.PurchaseCount = amountFromNumeric(buys)
		return out, nil
	})
}

func (s *Store) Accounts(ctx context.Context) ([]records.Account, error) {
	return collect(ctx, s.db, "cuentas", queryAccounts, func(row pgx.CollectableRow) (records.Account, error) {
		var (
			out     records.Account
			number  string
			balance pgtype.Numeric
		)
		if err := row.Scan(&number, &out.Bank, &out.AssociateName, &balance); err != nil {
			return out, err
		}
		out.Number = records.Key(number)
		out.Balance = amountFromNumeric(balance)
		return out, nil
	})
}

func (s *Store) Clients(ctx context.Context) ([]records.Client, error) {
	return collect(ctx, s.db, "clientes", queryClients, func(row pgx.CollectableRow) (records.Client, error) {
		var (
			out    records.Client
			cedula string
		)
		if err := row.Scan(&cedula, &out.Name, &out.Address, &out.Phone); err != nil {
			return out, err
		}
		out.Cedula = records.Key(cedula)
		return out, nil
	})
}

func (s *Store) Suppliers(ctx context.Context) ([]records.Supplier, error) {
	return collect(ctx, s.db, "proveedores", querySuppliers, func(row pgx.CollectableRow) (records.Supplier, error) {
		var (
			out records.Supplier
			ruc string
		)
		if err := row.Scan(&ruc, &out.Company, &out.Address, &out.Phone); err != nil {
			return out, err
		}
		out.RUC = records.Key(ruc)
		return out, nil
	})
}

func (s *Store) Sales(ctx context.Context) ([]records.Sale, error) {
	return collect(ctx, s.db, "ventas", querySales, func(row pgx.CollectableRow) (records.Sale, error) {
		var out records.Sale
		var id, client, account string
		var subtotal, total pgtype.Numeric
		if err := row.Scan(&id, &client, &out.Date, &out.Time, &subtotal, &total, &account); err != nil {
			return out, err
		}
		out.ID = records.Key(id)
		out.Client = records.Key(client)
		out.Account = records.Key(account)
		out.Subtotal = amountFromNumeric(subtotal)
		out.Total = amountFromNumeric(total)
		return out, nil
	})
}

func (s *Store) Purchases(ctx context.Context) ([]records.Purchase, error) {
	return collect(ctx, s.db, "compras", queryPurchases, func(row pgx.CollectableRow) (records.Purchase, error) {
		var out records.Purchase
		var id, supplier, account string
		var subtotal, total pgtype.Numeric
		if err := row.Scan(&id, &supplier, &out.Date, &out.Time, &subtotal, &total, &account); err != nil {
			return out, err
		}
		out.ID = records.Key(id)
		out.Supplier = records.Key(supplier)
		out.Account = records.Key(account)
		out.Subtotal = amountFromNumeric(subtotal)
		out.Total = amountFromNumeric(total)
		return out, nil
	})
}

func collect[T any](ctx context.Context, db Querier, relation, sql string, scan pgx.RowToFunc[T]) ([]T, error) {
	if db == nil {
		return nil, fmt.Errorf("%w: pgstore not initialised", store.ErrUnavailable)
	}
	rows, err := db.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", store.ErrUnavailable, relation, err)
	}
	out, err := pgx.CollectRows(rows, scan)
	if err != nil {
		return nil, classify(relation, err)
	}
	return out, nil
}

// classify separates connectivity failures from rows that cannot be scanned.
func classify(relation string, err error) error {
	if pgconn.SafeToRetry(err) || pgconn.Timeout(err) {
		return fmt.Errorf("%w: %s: %v", store.ErrUnavailable, relation, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%w: %s: %s (%s)", store.ErrUnavailable, relation, pgErr.Message, pgErr.Code)
	}
	return fmt.Errorf("%w: %s: %v", store.ErrDecode, relation, err)
}

func amountFromNumeric(n pgtype.Numeric) money.Amount {
	if !n.Valid || n.NaN || n.InfinityModifier != pgtype.Finite || n.Int == nil {
		return money.Amount{}
	}
	return money.New(decimal.NewFromBigInt(n.Int, n.Exp))
}

var _ store.Source = (*Store)(nil)
