package tax

import (
	"testing"

	"lexmart/internal/common"
	"lexmart/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCalculator() *Calculator {
	return NewCalculator(Config{
		GSTRate:       decimal.NewFromInt(18),
		TDSRate:       decimal.NewFromInt(10),
		HomeStateCode: "29",
	})
}

func TestCalculate_IntraStateSplitsGSTEvenly(t *testing.T) {
	calc := testCalculator()

	result, err := calc.Calculate(Input{
		Subtotal:   decimal.NewFromInt(1000),
		ClientType: models.ClientTypeIndividual,
	})
	require.NoError(t, err)

	assert.True(t, result.CGST.Equal(decimal.RequireFromString("90.00")), "CGST = %s", result.CGST)
	assert.True(t, result.SGST.Equal(decimal.RequireFromString("90.00")), "SGST = %s", result.SGST)
	assert.True(t, result.IGST.IsZero())
	assert.True(t, result.TDSAmount.IsZero())
	assert.True(t, result.TotalTax.Equal(decimal.RequireFromString("180.00")))
	assert.True(t, result.GrandTotal.Equal(decimal.RequireFromString("1180.00")))
}

func TestCalculate_InterStateAllocatesIGST(t *testing.T) {
	calc := testCalculator()

	result, err := calc.Calculate(Input{
		Subtotal:     decimal.NewFromInt(1000),
		IsInterState: true,
		ClientType:   models.ClientTypeIndividual,
	})
	require.NoError(t, err)

	assert.True(t, result.IGST.Equal(decimal.RequireFromString("180.00")))
	assert.True(t, result.CGST.IsZero())
	assert.True(t, result.SGST.IsZero())
	// Grand total is unchanged by the intra/inter split.
	assert.True(t, result.GrandTotal.Equal(decimal.RequireFromString("1180.00")))
}

func TestCalculate_TDSWithheldForCompanyClients(t *testing.T) {
	calc := testCalculator()

	result, err := calc.Calculate(Input{
		Subtotal:        decimal.NewFromInt(1000),
		IsTDSApplicable: true,
		ClientType:      models.ClientTypeCompany,
	})
	require.NoError(t, err)

	assert.True(t, result.TDSAmount.Equal(decimal.RequireFromString("100.00")))
	// TDS reduces the grand total but is not part of total tax.
	assert.True(t, result.TotalTax.Equal(decimal.RequireFromString("180.00")))
	assert.True(t, result.GrandTotal.Equal(decimal.RequireFromString("1080.00")))
}

func TestCalculate_TDSIgnoredForIndividuals(t *testing.T) {
	calc := testCalculator()

	result, err := calc.Calculate(Input{
		Subtotal:        decimal.NewFromInt(1000),
		IsTDSApplicable: true,
		ClientType:      models.ClientTypeIndividual,
	})
	require.NoError(t, err)

	assert.True(t, result.TDSAmount.IsZero())
	assert.True(t, result.GrandTotal.Equal(decimal.RequireFromString("1180.00")))
}

func TestCalculate_RoundsHalfUpPerComponent(t *testing.T) {
	calc := testCalculator()

	// 2.50 * 18% = 0.45 GST, split 0.225/0.225 -> 0.23 each half-up.
	result, err := calc.Calculate(Input{
		Subtotal:   decimal.RequireFromString("2.50"),
		ClientType: models.ClientTypeIndividual,
	})
	require.NoError(t, err)

	assert.True(t, result.CGST.Equal(decimal.RequireFromString("0.23")), "CGST = %s", result.CGST)
	assert.True(t, result.SGST.Equal(decimal.RequireFromString("0.23")), "SGST = %s", result.SGST)
	assert.True(t, result.TotalTax.Equal(decimal.RequireFromString("0.46")))
}

func TestCalculate_NegativeSubtotalRejected(t *testing.T) {
	calc := testCalculator()

	_, err := calc.Calculate(Input{Subtotal: decimal.NewFromInt(-1)})
	require.Error(t, err)

	var domainErr *common.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, CodeInvalidTaxInput, domainErr.Code)
}

func TestCalculate_InvalidRateRejected(t *testing.T) {
	calc := NewCalculator(Config{
		GSTRate: decimal.NewFromInt(180),
		TDSRate: decimal.NewFromInt(10),
	})

	_, err := calc.Calculate(Input{Subtotal: decimal.NewFromInt(100)})
	require.Error(t, err)

	var domainErr *common.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, CodeInvalidTaxInput, domainErr.Code)
}

func TestCalculate_Deterministic(t *testing.T) {
	calc := testCalculator()
	in := Input{
		Subtotal:        decimal.RequireFromString("12345.67"),
		IsInterState:    true,
		IsTDSApplicable: true,
		ClientType:      models.ClientTypeCompany,
	}

	first, err := calc.Calculate(in)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := calc.Calculate(in)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestCalculate_ZeroSubtotal(t *testing.T) {
	calc := testCalculator()

	result, err := calc.Calculate(Input{Subtotal: decimal.Zero, ClientType: models.ClientTypeCompany})
	require.NoError(t, err)
	assert.True(t, result.GrandTotal.IsZero())
	assert.True(t, result.TotalTax.IsZero())
}

func TestIsInterState(t *testing.T) {
	calc := testCalculator()

	assert.False(t, calc.IsInterState(""))
	assert.False(t, calc.IsInterState("29"))
	assert.True(t, calc.IsInterState("27"))
}
