package dto

import "github.com/shopspring/decimal"

// CurrencySign is the display sign definition for a currency.
type CurrencySign struct {
	Prefix string `json:"prefix"`
	Suffix string `json:"suffix"`
}

// CurrencyInfo describes one currency plus its total circulation
// (reserve accounts and the central bank's own accounts excluded).
type CurrencyInfo struct {
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Sign        CurrencySign    `json:"sign"`
	Circulation decimal.Decimal `json:"circulation"`
}

// CurrencyStatistics are the per-currency counters of the bank statistics.
type CurrencyStatistics struct {
	Transactions int64           `json:"transactions"`
	BankAccounts int64           `json:"bankAccounts"`
	Velocity     decimal.Decimal `json:"velocity"`
}

// BankStatistics is the aggregate statistics payload.
type BankStatistics struct {
	TotalBankAccounts int64                         `json:"totalBankAccounts"`
	TotalTransactions int64                         `json:"totalTransactions"`
	Currencies        map[string]CurrencyStatistics `json:"currencies"`
	Organizations     map[string]int64              `json:"organizations"`
}
