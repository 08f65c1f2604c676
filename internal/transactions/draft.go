package transactions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/negocios/consola/internal/money"
	"github.com/negocios/consola/internal/records"
	"github.com/negocios/consola/internal/reporting"
	"github.com/negocios/consola/internal/store"
)

var (
	cedulaPattern  = regexp.MustCompile(`^\d{10}$`)
	rucPattern     = regexp.MustCompile(`^\d{13}$`)
	accountPattern = regexp.MustCompile(`^\d{15,20}$`)
)

// DraftFields are the entry-form fields shared by sales and purchases.
type DraftFields struct {
	Date     string       `json:"fecha" validate:"required,datetime=2006-01-02"`
	Time     string       `json:"hora" validate:"required,datetime=15:04"`
	Subtotal money.Amount `json:"subtotal"`
	Account  string       `json:"cuenta" validate:"required,numerocuenta"`
}

// SaleDraft is the sale entry form.
type SaleDraft struct {
	Client string `json:"cliente" validate:"required,cedula"`
	DraftFields
}

// PurchaseDraft is the purchase entry form.
type PurchaseDraft struct {
	Supplier string `json:"proveedor" validate:"required,ruc"`
	DraftFields
}

// DraftResult is the state of an entry form after a check. Ready is false
// while any field is invalid, including a total that cannot be computed.
type DraftResult struct {
	Kind     records.Kind      `json:"tipo"`
	Party    string            `json:"contraparte,omitempty"`
	Account  string            `json:"cuenta,omitempty"`
	Subtotal string            `json:"subtotal"`
	Total    string            `json:"total"`
	Ready    bool              `json:"listo"`
	Errors   map[string]string `json:"errores,omitempty"`
}

var fieldMessages = map[string]string{
	"cedula":       "La cédula debe tener 10 dígitos numéricos.",
	"ruc":          "El RUC debe tener 13 dígitos numéricos.",
	"numerocuenta": "El número de cuenta debe tener entre 15 y 20 dígitos numéricos.",
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	mustRegister(v, "cedula", cedulaPattern)
	mustRegister(v, "ruc", rucPattern)
	mustRegister(v, "numerocuenta", accountPattern)
	return v
}

func mustRegister(v *validator.Validate, tag string, re *regexp.Regexp) {
	if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

// CheckSale validates a sale draft and computes its total.
func (s *Service) CheckSale(ctx context.Context, d SaleDraft) DraftResult {
	out := s.check(records.KindSale, d, d.DraftFields)
	refs, ok := s.references(ctx)
	if ok {
		if _, bad := out.Errors["cliente"]; !bad && !knownClient(d.Client, refs.Clients) {
			out.Errors["cliente"] = "Cliente no registrado."
		}
		s.checkAccount(&out, d.Account, refs.Accounts)
	}
	out.Party = reporting.ClientLabel(records.Key(d.Client), refs.Clients)
	out.Account = reporting.AccountLabel(records.Key(d.Account), refs.Accounts)
	out.Ready = len(out.Errors) == 0
	return out
}

// CheckPurchase validates a purchase draft and computes its total.
func (s *Service) CheckPurchase(ctx context.Context, d PurchaseDraft) DraftResult {
	out := s.check(records.KindPurchase, d, d.DraftFields)
	refs, ok := s.references(ctx)
	if ok {
		if _, bad := out.Errors["proveedor"]; !bad && !knownSupplier(d.Supplier, refs.Suppliers) {
			out.Errors["proveedor"] = "Proveedor no registrado."
		}
		s.checkAccount(&out, d.Account, refs.Accounts)
	}
	out.Party = reporting.SupplierLabel(records.Key(d.Supplier), refs.Suppliers)
	out.Account = reporting.AccountLabel(records.Key(d.Account), refs.Accounts)
	out.Ready = len(out.Errors) == 0
	return out
}

func (s *Service) check(kind records.Kind, form any, fields DraftFields) DraftResult {
	out := DraftResult{Kind: kind, Errors: map[string]string{}}
	if err := s.validate.Struct(form); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			out.Errors["formulario"] = "Formulario inválido."
		}
		for _, fe := range verrs {
			out.Errors[fe.Field()] = fieldMessage(fe)
		}
	}
	total := reporting.ComputeTotalInput(fields.Subtotal)
	if !total.Valid {
		out.Errors["subtotal"] = "El subtotal debe ser un número."
		return out
	}
	if fields.Subtotal.Value.IsNegative() {
		out.Errors["subtotal"] = "El subtotal no puede ser negativo."
	}
	out.Subtotal = reporting.FormatAmount(fields.Subtotal)
	out.Total = total.Decimal.StringFixed(money.Places)
	return out
}

// references loads the lookup lists for the existence checks. When any list
// fails the checks are skipped rather than rejecting valid keys.
func (s *Service) references(ctx context.Context) (records.References, bool) {
	refs, err := store.LoadReferences(ctx, s.src)
	if err != nil {
		s.logger.Warn("draft references unavailable", slog.Any("error", err))
		return refs, false
	}
	return refs, true
}

func (s *Service) checkAccount(out *DraftResult, number string, accounts []records.Account) {
	if _, bad := out.Errors["cuenta"]; bad {
		return
	}
	for _, a := range accounts {
		if a.Number.String() == number {
			return
		}
	}
	out.Errors["cuenta"] = "Cuenta no registrada."
}

func knownClient(cedula string, clients []records.Client) bool {
	for _, c := range clients {
		if c.Cedula.String() == cedula {
			return true
		}
	}
	return false
}

func knownSupplier(ruc string, suppliers []records.Supplier) bool {
	for _, sup := range suppliers {
		if sup.RUC.String() == ruc {
			return true
		}
	}
	return false
}

func fieldMessage(fe validator.FieldError) string {
	if fe.Tag() == "required" {
		return "Campo obligatorio."
	}
	if msg, ok := fieldMessages[fe.Tag()]; ok {
		return msg
	}
	switch fe.Field() {
	case "fecha":
		return "La fecha debe tener el formato AAAA-MM-DD."
	case "hora":
		return "La hora debe tener el formato HH:MM."
	}
	return "Valor inválido."
}
