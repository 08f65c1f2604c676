package records

import "github.com/negocios/consola/internal/money"

// Kind distinguishes sales from purchases.
type Kind string

const (
	KindSale     Kind = "venta"
	KindPurchase Kind = "compra"
)

// Sale is a stored sale. Total is expected to equal round2(Subtotal*1.15),
// enforced when the sale is entered.
type Sale struct {
	ID       Key          `json:"numeroTransaccion"`
	Client   Key          `json:"cliente"`
	Date     string       `json:"fecha"`
	Time     string       `json:"hora"`
	Subtotal money.Amount `json:"subtotal"`
	Total    money.Amount `json:"total"`
	Account  Key          `json:"cuenta"`
}

// Purchase is a stored purchase.
type Purchase struct {
	ID       Key          `json:"numeroTransaccion"`
	Supplier Key          `json:"proveedor"`
	Date     string       `json:"fecha"`
	Time     string       `json:"hora"`
	Subtotal money.Amount `json:"subtotal"`
	Total    money.Amount `json:"total"`
	Account  Key          `json:"cuenta"`
}
