package records

import "github.com/negocios/consola/internal/money"

// Account is a bank account transactions settle against.
type Account struct {
	Number        Key          `json:"numeroCuenta"`
	Bank          string       `json:"banco"`
	AssociateName string       `json:"nombreAsociado"`
	Balance       money.Amount `json:"saldoCuenta"`
}

// Client is a sale counterparty identified by its national id (cédula).
type Client struct {
	Cedula  Key    `json:"cedula"`
	Name    string `json:"nombre"`
	Address string `json:"direccion"`
	Phone   string `json:"telefono"`
}

// Supplier is a purchase counterparty identified by its tax id (RUC).
type Supplier struct {
	RUC     Key    `json:"ruc"`
	Company string `json:"empresa"`
	Address string `json:"direccion"`
	Phone   string `json:"telefono"`
}

// References bundles the lookup tables used to label transactions.
type References struct {
	Accounts  []Account  `json:"cuentas"`
	Clients   []Client   `json:"clientes"`
	Suppliers []Supplier `json:"proveedores"`
}
