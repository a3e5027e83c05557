package services

import "github.com/vnfin/refdata/internal/tabular"

// Alias tables for every importable record type. These are the only place
// header spellings are recognized; coercion downstream reads canonical keys
// exclusively. Vietnamese spellings ("ma", "ngay", "nganh") come from the
// legacy source files.

func stockSchema() *tabular.Schema {
	return &tabular.Schema{Columns: []tabular.Column{
		{Key: "symbol", Aliases: []string{"ticker", "ma", "ma ck", "macp", "code"}},
		{Key: "name", Aliases: []string{"ten", "company", "company name", "ten cong ty"}},
		{Key: "exchange", Aliases: []string{"san", "san giao dich"}},
		{Key: "industry", Aliases: []string{"nganh"}},
	}}
}

func epsSchema() *tabular.Schema {
	return &tabular.Schema{Columns: []tabular.Column{
		{Key: "symbol", Aliases: []string{"ticker", "ma", "ma ck"}},
		{Key: "reportdate", Aliases: []string{"report date", "report_date", "date", "ngay"}},
		{Key: "eps"},
		{Key: "industryeps", Aliases: []string{"industry eps", "eps nganh", "epsnganh"}},
	}}
}

func peSchema() *tabular.Schema {
	return &tabular.Schema{Columns: []tabular.Column{
		{Key: "symbol", Aliases: []string{"ticker", "ma", "ma ck"}},
		{Key: "reportdate", Aliases: []string{"report date", "report_date", "date", "ngay"}},
		{Key: "pe"},
		{Key: "industrype", Aliases: []string{"industry pe", "pe nganh", "penganh"}},
	}}
}

// roaRoeSchema declares the one dual-mapped column in the system: legacy files
// carry the industry-ROE column twice, where the first occurrence is the level
// and the second is the rate. Only the industry-ROE column opts into this;
// duplicates of any other column are ignored.
func roaRoeSchema() *tabular.Schema {
	return &tabular.Schema{Columns: []tabular.Column{
		{Key: "symbol", Aliases: []string{"ticker", "ma", "ma ck"}},
		{Key: "reportdate", Aliases: []string{"report date", "report_date", "date", "ngay"}},
		{Key: "roa"},
		{Key: "roe"},
		{Key: "roaindustry", Aliases: []string{"roa industry", "roa nganh", "roanganh", "roa_nganh"}},
		{
			Key:          "roeindustry",
			Aliases:      []string{"roe industry", "roe nganh", "roenganh", "roe_nganh"},
			SecondaryKey: "roeindustryrate",
		},
		{Key: "roeindustryrate", Aliases: []string{"roe industry rate", "roe-industry-rate", "roe nganh rate"}},
	}}
}

func financialRatioSchema() *tabular.Schema {
	return &tabular.Schema{Columns: []tabular.Column{
		{Key: "symbol", Aliases: []string{"ticker", "ma", "ma ck"}},
		{Key: "reportdate", Aliases: []string{"report date", "report_date", "date", "ngay"}},
		{Key: "debttoequity", Aliases: []string{"debt to equity", "d/e", "no tren von chu so huu"}},
		{Key: "currentratio", Aliases: []string{"current ratio", "thanh toan hien hanh"}},
		{Key: "quickratio", Aliases: []string{"quick ratio", "thanh toan nhanh"}},
		{Key: "grossmargin", Aliases: []string{"gross margin", "bien loi nhuan gop"}},
	}}
}

func currencyPriceSchema() *tabular.Schema {
	return &tabular.Schema{Columns: []tabular.Column{
		{Key: "currencycode", Aliases: []string{"currency", "currency code", "code", "ma ngoai te"}},
		{Key: "date", Aliases: []string{"ngay", "reportdate", "report date"}},
		{Key: "buyprice", Aliases: []string{"buy", "buy price", "mua", "gia mua"}},
		{Key: "sellprice", Aliases: []string{"sell", "sell price", "ban", "gia ban"}},
	}}
}

func qIndexSchema() *tabular.Schema {
	return &tabular.Schema{Columns: []tabular.Column{
		{Key: "stockid", Aliases: []string{"stock id", "stock_id", "id"}},
		{Key: "date", Aliases: []string{"ngay"}},
		{Key: "qindex", Aliases: []string{"q index", "q_index", "chi so q"}},
		{Key: "volume", Aliases: []string{"khoi luong", "vol"}},
	}}
}
