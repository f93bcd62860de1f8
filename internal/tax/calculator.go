package tax

import (
	"fmt"

	"lexmart/internal/common"
	"lexmart/internal/models"

	"github.com/shopspring/decimal"
)

const CodeInvalidTaxInput = "INVALID_TAX_INPUT"

// Config holds the jurisdictional rates. Rates are percentages (18 means
// 18%), kept as configuration so the calculation logic stays rate-agnostic.
type Config struct {
	GSTRate       decimal.Decimal
	TDSRate       decimal.Decimal
	HomeStateCode string
}

// DefaultConfig returns the standard Indian rates for legal services:
// 18% GST, 10% TDS under section 194J.
func DefaultConfig() Config {
	return Config{
		GSTRate:       decimal.NewFromInt(18),
		TDSRate:       decimal.NewFromInt(10),
		HomeStateCode: "29",
	}
}

// Input describes one invoice-level tax calculation request.
type Input struct {
	Subtotal        decimal.Decimal
	IsInterState    bool
	IsTDSApplicable bool
	ClientType      string
}

// Result is the itemized breakdown. Every monetary component is already
// rounded to 2 decimal places, half-up. TDS is a withholding against
// payment: it reduces GrandTotal but is not part of TotalTax.
type Result struct {
	CGST       decimal.Decimal `json:"cgst"`
	SGST       decimal.Decimal `json:"sgst"`
	IGST       decimal.Decimal `json:"igst"`
	TDSAmount  decimal.Decimal `json:"tds_amount"`
	TotalTax   decimal.Decimal `json:"total_tax"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

// Calculator is stateless and safe for concurrent use.
type Calculator struct {
	cfg Config
}

func NewCalculator(cfg Config) *Calculator {
	return &Calculator{cfg: cfg}
}

// Calculate maps an Input to an itemized Result. Pure: identical input
// always yields identical output.
func (c *Calculator) Calculate(in Input) (Result, error) {
	if in.Subtotal.IsNegative() {
		return Result{}, common.NewDomainError(CodeInvalidTaxInput, "subtotal cannot be negative")
	}
	if err := validateRate(c.cfg.GSTRate, "GST rate"); err != nil {
		return Result{}, err
	}
	if err := validateRate(c.cfg.TDSRate, "TDS rate"); err != nil {
		return Result{}, err
	}

	hundred := decimal.NewFromInt(100)
	two := decimal.NewFromInt(2)

	// Intermediate amounts stay unrounded; rounding happens per final
	// component only.
	gstAmount := in.Subtotal.Mul(c.cfg.GSTRate).Div(hundred)

	var result Result
	if in.IsInterState {
		result.IGST = gstAmount.Round(2)
	} else {
		half := gstAmount.Div(two)
		result.CGST = half.Round(2)
		result.SGST = half.Round(2)
	}
	result.TotalTax = result.CGST.Add(result.SGST).Add(result.IGST)

	// TDS is withheld only for company clients that are flagged for it.
	if in.IsTDSApplicable && in.ClientType == models.ClientTypeCompany {
		result.TDSAmount = in.Subtotal.Mul(c.cfg.TDSRate).Div(hundred).Round(2)
	}

	result.GrandTotal = in.Subtotal.Round(2).Add(result.TotalTax).Sub(result.TDSAmount)
	if result.GrandTotal.IsNegative() {
		return Result{}, common.NewDomainError(CodeInvalidTaxInput,
			fmt.Sprintf("configured rates produce a negative grand total (%s)", result.GrandTotal))
	}

	return result, nil
}

// IsInterState reports whether a supply from the firm's home state to the
// client's state crosses a state boundary. Unknown states default to
// intra-state, matching how invoices were taxed before state codes were
// captured on clients.
func (c *Calculator) IsInterState(clientStateCode string) bool {
	if clientStateCode == "" || c.cfg.HomeStateCode == "" {
		return false
	}
	return clientStateCode != c.cfg.HomeStateCode
}

func validateRate(rate decimal.Decimal, name string) error {
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
		return common.NewDomainError(CodeInvalidTaxInput, fmt.Sprintf("%s must be between 0 and 100", name))
	}
	return nil
}
