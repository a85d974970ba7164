package domain_test

import (
	"testing"

	"github.com/democraciv/bank_backend/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoney_Arithmetic(t *testing.T) {
	a := domain.NewMoney(decimal.NewFromInt(100), "JPY")
	b := domain.NewMoney(decimal.RequireFromString("0.5"), "JPY")

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.True(t, sum.Amount.Equal(decimal.RequireFromString("100.5")))

	diff, err := a.Sub(b)
	require.NoError(t, err)
	assert.True(t, diff.Amount.Equal(decimal.RequireFromString("99.5")))
}

func TestMoney_CurrencyMismatch(t *testing.T) {
	a := domain.NewMoney(decimal.NewFromInt(100), "JPY")
	b := domain.NewMoney(decimal.NewFromInt(100), "LRA")

	_, err := a.Add(b)
	assert.ErrorIs(t, err, domain.ErrCurrencyMismatch)

	_, err = a.Sub(b)
	assert.ErrorIs(t, err, domain.ErrCurrencyMismatch)

	_, err = a.Cmp(b)
	assert.ErrorIs(t, err, domain.ErrCurrencyMismatch)
}

func TestMoney_String(t *testing.T) {
	tests := []struct {
		amount   string
		currency string
		want     string
	}{
		{"120", "JPY", "120.00¥"},
		{"50.5", "CIV", "50.50C"},
		{"-3", "LRA", "-3.00 LRA"},
		{"1", "XYZ", "1.00 XYZ"},
	}
	for _, tt := range tests {
		m := domain.NewMoney(decimal.RequireFromString(tt.amount), tt.currency)
		assert.Equal(t, tt.want, m.String())
	}
}

func TestHolder_Validate(t *testing.T) {
	assert.NoError(t, domain.IndividualHolder("user-1").Validate())
	assert.NoError(t, domain.OrganizationHolder("ACME").Validate())
	assert.NoError(t, domain.NoHolder().Validate())

	assert.Error(t, domain.Holder{Kind: domain.HolderIndividual}.Validate())
	assert.Error(t, domain.Holder{Kind: domain.HolderOrganization, UserID: "u", OrganizationID: "o"}.Validate())
	assert.Error(t, domain.Holder{Kind: domain.HolderNone, UserID: "u"}.Validate())
	assert.Error(t, domain.Holder{Kind: "WEIRD"}.Validate())
}
