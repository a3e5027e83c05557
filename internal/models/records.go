package models

import (
	"github.com/shopspring/decimal"
)

// Stock is the parent reference entity for all per-symbol time series.
// Symbol is unique; Exchange and Industry are nullable.
type Stock struct {
	ID       int64   `json:"id"`
	Symbol   string  `json:"symbol"`
	Name     string  `json:"name"`
	Exchange *string `json:"exchange"`
	Industry *string `json:"industry"`
}

// EpsRecord holds earnings-per-share figures keyed by (symbol, report_date).
type EpsRecord struct {
	Symbol      string              `json:"symbol"`
	ReportDate  Date                `json:"report_date"`
	Eps         decimal.NullDecimal `json:"eps"`
	IndustryEps decimal.NullDecimal `json:"industry_eps"`
}

// PeRecord holds price/earnings figures keyed by (symbol, report_date).
type PeRecord struct {
	Symbol     string              `json:"symbol"`
	ReportDate Date                `json:"report_date"`
	Pe         decimal.NullDecimal `json:"pe"`
	IndustryPe decimal.NullDecimal `json:"industry_pe"`
}

// RoaRoeRecord holds return-on-assets / return-on-equity figures keyed by
// (symbol, report_date). RoeIndustryRate is the secondary field populated by
// a duplicated industry-ROE column in legacy files.
type RoaRoeRecord struct {
	Symbol          string              `json:"symbol"`
	ReportDate      Date                `json:"report_date"`
	Roa             decimal.NullDecimal `json:"roa"`
	Roe             decimal.NullDecimal `json:"roe"`
	RoaIndustry     decimal.NullDecimal `json:"roa_industry"`
	RoeIndustry     decimal.NullDecimal `json:"roe_industry"`
	RoeIndustryRate decimal.NullDecimal `json:"roe_industry_rate"`
}

// FinancialRatioRecord holds balance-sheet ratios keyed by (symbol, report_date).
type FinancialRatioRecord struct {
	Symbol       string              `json:"symbol"`
	ReportDate   Date                `json:"report_date"`
	DebtToEquity decimal.NullDecimal `json:"debt_to_equity"`
	CurrentRatio decimal.NullDecimal `json:"current_ratio"`
	QuickRatio   decimal.NullDecimal `json:"quick_ratio"`
	GrossMargin  decimal.NullDecimal `json:"gross_margin"`
}

// CurrencyPrice holds buy/sell quotes keyed by (currency_code, date).
type CurrencyPrice struct {
	CurrencyCode string              `json:"currency_code"`
	Date         Date                `json:"date"`
	BuyPrice     decimal.NullDecimal `json:"buy_price"`
	SellPrice    decimal.NullDecimal `json:"sell_price"`
}

// StockQIndex holds Q-index values keyed by (stock_id, date). Unlike the
// symbol-keyed series, the parent stock must already exist.
type StockQIndex struct {
	StockID int64               `json:"stock_id"`
	Date    Date                `json:"date"`
	QIndex  decimal.NullDecimal `json:"q_index"`
	Volume  decimal.NullDecimal `json:"volume"`
}
