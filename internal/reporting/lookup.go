package reporting

import (
	"github.com/negocios/consola/internal/records"
)

// Resolve returns the label of the first reference whose key equals key. When
// nothing matches, or the match has an empty label, the key itself is returned.
func Resolve[T any](key string, refs []T, keyOf, labelOf func(T) string) string {
	for _, ref := range refs {
		if keyOf(ref) != key {
			continue
		}
		if label := labelOf(ref); label != "" {
			return label
		}
		return key
	}
	return key
}

// AccountLabel resolves an account number to its holder name.
func AccountLabel(number records.Key, accounts []records.Account) string {
	return Resolve(number.String(), accounts,
		func(a records.Account) string { return a.Number.String() },
		func(a records.Account) string { return a.AssociateName })
}

// ClientLabel resolves a cédula to the client name.
func ClientLabel(cedula records.Key, clients []records.Client) string {
	return Resolve(cedula.String(), clients,
		func(c records.Client) string { return c.Cedula.String() },
		func(c records.Client) string { return c.Name })
}

// SupplierLabel resolves a RUC to the supplier company.
func SupplierLabel(ruc records.Key, suppliers []records.Supplier) string {
	return Resolve(ruc.String(), suppliers,
		func(s records.Supplier) string { return s.RUC.String() },
		func(s records.Supplier) string { return s.Company })
}
