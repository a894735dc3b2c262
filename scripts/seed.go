// Seed script for creating demo input data for the batch extractor.
// Run with: go run ./scripts/seed.go
//
// Writes a small company registry, three filing documents and a filing index
// under data/. When DATABASE_URL is set the Postgres schema is applied too.
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/Harshitk-cp/filinggraph/internal/store"
)

var companies = [][]string{
	{"company_name", "cik", "company.ticker_display", "company.tickers", "company.exchanges", "company.industry", "company.sic"},
	{"Acme Corp", "0000100100", "ACME", "['ACME']", "['NYSE']", "Industrial Machinery", "3560"},
	{"Beta Corp", "0000200200", "BETA", "['BETA', 'BETA-P']", "['Nasdaq']", "Software", "7372"},
	{"Gamma Holdings Inc", "0000300300", "GAMH", "['GAMH']", "['NYSE']", "Holding Companies", "6719"},
	{"Delta Bank", "0000400400", "DLTB", "['DLTB']", "['Nasdaq']", "Banking", "6022"},
}

type filing struct {
	name string
	url  string
	cik  string
	form string
	text string
}

var filings = []filing{
	{
		name: "acme-8k.txt",
		url:  "https://www.sec.gov/Archives/edgar/data/100100/acme-8k.htm",
		cik:  "100100",
		form: "8-K",
		text: `Acme Corp announced that Jane Doe was appointed Chief Executive Officer.
Ms. Doe previously served as President of Beta Corp. Doe replaced John Smith, who resigned.
Acme Corp acquired Beta Corp for $2.1 billion in cash.`,
	},
	{
		name: "beta-10k.txt",
		url:  "https://www.sec.gov/Archives/edgar/data/200200/beta-10k.htm",
		cik:  "200200",
		form: "10-K",
		text: `Beta Corp was acquired by Acme Corp during the fiscal year.
Delta Bank provided a revolving credit facility to Beta Corp.
Robert Lee joined Gamma Holdings Inc as Chief Financial Officer.`,
	},
	{
		name: "gamma-def14a.txt",
		url:  "https://www.sec.gov/Archives/edgar/data/300300/gamma-def14a.htm",
		cik:  "300300",
		form: "DEF 14A",
		text: `Robert Lee and Mary Chen serve on the board of Delta Bank.
Gamma Holdings Inc owns a minority stake in Acme Corp.`,
	},
}

func main() {
	envFile := os.Getenv("FILINGGRAPH_ENV")
	if envFile == "" {
		envFile = ".env"
	}
	_ = godotenv.Load(envFile)
	_ = godotenv.Load(envFile + ".secret")

	dataDir := "data"
	docsDir := filepath.Join(dataDir, "filings")
	if err := os.MkdirAll(docsDir, 0o755); err != nil {
		log.Fatalf("Failed to create %s: %v", docsDir, err)
	}

	registryPath := filepath.Join(dataDir, "public_companies.csv")
	if err := writeCSV(registryPath, companies); err != nil {
		log.Fatalf("Failed to write registry: %v", err)
	}
	fmt.Printf("Wrote registry: %s (%d companies)\n", registryPath, len(companies)-1)

	index := [][]string{{"url", "file_path", "cik", "form"}}
	for _, f := range filings {
		path := filepath.Join(docsDir, f.name)
		if err := os.WriteFile(path, []byte(f.text), 0o644); err != nil {
			log.Fatalf("Failed to write %s: %v", path, err)
		}
		index = append(index, []string{f.url, path, f.cik, f.form})
	}

	indexPath := filepath.Join(dataDir, "filings_index.csv")
	if err := writeCSV(indexPath, index); err != nil {
		log.Fatalf("Failed to write index: %v", err)
	}
	fmt.Printf("Wrote index: %s (%d filings)\n", indexPath, len(filings))

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		fmt.Println("DATABASE_URL not set, skipping schema setup")
		return
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := store.Migrate(ctx, pool); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}
	fmt.Println("Applied database schema")

	fmt.Println()
	fmt.Println("Run the extractor with: go run ./cmd/extract")
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
