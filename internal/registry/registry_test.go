package registry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Harshitk-cp/filinggraph/internal/domain"
)

func TestRegistry_LookupExact(t *testing.T) {
	r := New([]domain.Company{
		{ID: "100", Name: "Acme Corp", Tickers: []string{"ACME"}},
		{ID: "200", Name: "Beta Corp", Tickers: []string{"BETA", "BTA"}},
	})

	tests := []struct {
		query  string
		wantID string
		wantOK bool
	}{
		{"Acme Corp", "100", true},
		{"ACME CORP", "100", true},
		{"acme", "100", true},
		{"bta", "200", true},
		{"Gamma Inc", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			id, ok := r.LookupExact(tt.query)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestRegistry_LaterRowsOverwrite(t *testing.T) {
	r := New([]domain.Company{
		{ID: "100", Name: "Acme", Tickers: []string{"ACM"}},
		{ID: "300", Name: "ACM"},
	})

	id, ok := r.LookupExact("acm")
	require.True(t, ok)
	assert.Equal(t, "300", id)
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_EntriesKeepLoadOrder(t *testing.T) {
	r := New([]domain.Company{
		{ID: "2", Name: "Zeta"},
		{ID: "1", Name: "Alpha"},
		{ID: "", Name: "No Identifier"},
	})

	entries := r.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "Zeta", entries[0].Name)
	assert.Equal(t, "Alpha", entries[1].Name)

	c, ok := r.Get("1")
	require.True(t, ok)
	assert.Equal(t, "Alpha", c.Name)

	_, ok = r.Get("missing")
	assert.False(t, ok)
}

func TestLoadCSV(t *testing.T) {
	content := strings.Join([]string{
		"company_name,cik,company.ticker_display,company.tickers,company.exchanges,company.description,company.category,company.industry,company.sic,company.website",
		`Apple Inc.,0000320193,AAPL,"['AAPL']","['Nasdaq']",Makes phones,Large Accelerated Filer,Electronic Computers,3571,apple.com`,
		`Microsoft Corp,789019.0,MSFT,"MSFT, MSFT2",Nasdaq,,,,,`,
		`,123,,,,,,,,`,
	}, "\n")
	path := filepath.Join(t.TempDir(), "companies.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	r, err := LoadCSV(path)
	require.NoError(t, err)
	require.Equal(t, 2, r.Len())

	id, ok := r.LookupExact("apple inc.")
	require.True(t, ok)
	assert.Equal(t, "320193", id)

	id, ok = r.LookupExact("msft2")
	require.True(t, ok)
	assert.Equal(t, "789019", id)

	apple, _ := r.Get("320193")
	assert.Equal(t, []string{"AAPL"}, apple.Tickers)
	assert.Equal(t, []string{"Nasdaq"}, apple.Exchanges)
	assert.Equal(t, "3571", apple.SIC)
	assert.Equal(t, "Electronic Computers", apple.Industry)
}

func TestReadCSV_Errors(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptyRegistry)

	_, err = ReadCSV(strings.NewReader("name,cik\nAcme,1\n"))
	assert.Error(t, err)

	_, err = ReadCSV(strings.NewReader("company_name,cik\n"))
	assert.ErrorIs(t, err, ErrEmptyRegistry)

	_, err = LoadCSV(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestParseList(t *testing.T) {
	assert.Equal(t, []string{"A", "B"}, ParseList("['A', 'B']"))
	assert.Equal(t, []string{"A"}, ParseList(`["A"]`))
	assert.Equal(t, []string{"A", "B"}, ParseList("A, B"))
	assert.Nil(t, ParseList("[]"))
	assert.Nil(t, ParseList(""))
}
