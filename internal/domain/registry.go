package domain

// Company is one registry row.
type Company struct {
	ID            string   `json:"cik"`
	Name          string   `json:"company_name"`
	TickerDisplay string   `json:"ticker_display,omitempty"`
	Tickers       []string `json:"tickers,omitempty"`
	Exchanges     []string `json:"exchanges,omitempty"`
	Description   string   `json:"description,omitempty"`
	Category      string   `json:"category,omitempty"`
	Industry      string   `json:"industry,omitempty"`
	SIC           string   `json:"sic,omitempty"`
	Website       string   `json:"website,omitempty"`
}

// CompanyRegistry is a read-only lookup of known companies.
type CompanyRegistry interface {
	// LookupExact matches a company name or ticker, ignoring case.
	LookupExact(nameOrTicker string) (string, bool)
	// Entries returns every company in load order.
	Entries() []Company
	Get(id string) (Company, bool)
}
