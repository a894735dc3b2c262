package graph

import (
	"context"
	"errors"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/Harshitk-cp/filinggraph/internal/domain"
)

var ErrNoDriver = errors.New("neo4j driver is not connected")

var constraints = []string{
	`CREATE CONSTRAINT filing_url_unique IF NOT EXISTS FOR (f:Filing) REQUIRE f.url IS UNIQUE`,
	`CREATE CONSTRAINT entity_key_unique IF NOT EXISTS FOR (e:Entity) REQUIRE e.key IS UNIQUE`,
}

// Sink mirrors each result as (:Filing), (:Entity:Person), (:Entity:Company)
// nodes with MENTIONED_IN and RELATES_TO edges. People are scoped to the
// filing that mentions them; companies are shared by registry identifier.
type Sink struct {
	client *Client
	logger *zap.Logger
}

func NewSink(client *Client, logger *zap.Logger) *Sink {
	return &Sink{client: client, logger: logger}
}

// EnsureSchema creates constraints. Failures are logged and ignored.
func (s *Sink) EnsureSchema(ctx context.Context) {
	if s.client == nil || s.client.Driver == nil {
		return
	}
	session := s.client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: s.client.Database,
	})
	defer session.Close(ctx)

	for _, q := range constraints {
		res, err := session.Run(ctx, q, nil)
		if err != nil {
			s.logger.Warn("neo4j schema init failed", zap.Error(err))
			continue
		}
		_, _ = res.Consume(ctx)
	}
}

// entityKey identifies an entity node across filings.
func entityKey(url string, ref domain.EntityRef) string {
	if ref.Kind == domain.KindPerson {
		return "person:" + url + "#" + ref.Key
	}
	return "company:" + ref.Key
}

type writeParams struct {
	filing    map[string]any
	people    []map[string]any
	companies []map[string]any
	rels      []map[string]any
}

func buildParams(r *domain.ExtractionResult, now time.Time) writeParams {
	url := r.Document.URL
	synced := now.UTC().Format(time.RFC3339Nano)
	p := writeParams{
		filing: map[string]any{
			"url":          url,
			"filer_id":     r.Document.FilerID,
			"form_type":    r.Document.FormType,
			"extracted_at": r.ExtractedAt.UTC().Format(time.RFC3339Nano),
			"synced_at":    synced,
		},
	}
	for _, person := range r.People {
		p.people = append(p.people, map[string]any{
			"key":      entityKey(url, person.Ref()),
			"name":     person.Name,
			"aliases":  person.Aliases,
			"contexts": person.Contexts,
		})
	}
	for _, c := range r.Companies {
		row := map[string]any{
			"key":      entityKey(url, c.Ref()),
			"cik":      c.ID,
			"name":     c.Name,
			"aliases":  c.Aliases,
			"contexts": c.Contexts,
			"ticker":   "",
			"industry": "",
		}
		if c.Company != nil {
			row["ticker"] = c.Company.TickerDisplay
			row["industry"] = c.Company.Industry
		}
		p.companies = append(p.companies, row)
	}
	for _, rel := range r.Relationships {
		p.rels = append(p.rels, map[string]any{
			"actor":      entityKey(url, rel.Actor),
			"target":     entityKey(url, rel.Target),
			"verb":       rel.Verb,
			"confidence": int64(rel.Confidence),
			"contexts":   rel.Contexts,
		})
	}
	return p
}

func run(ctx context.Context, tx neo4j.ManagedTransaction, query string, params map[string]any) error {
	res, err := tx.Run(ctx, query, params)
	if err != nil {
		return err
	}
	_, err = res.Consume(ctx)
	return err
}

// Save replaces the filing's mentions and relationship edges.
func (s *Sink) Save(ctx context.Context, r *domain.ExtractionResult) error {
	if s.client == nil || s.client.Driver == nil {
		return ErrNoDriver
	}
	p := buildParams(r, time.Now())

	session := s.client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: s.client.Database,
	})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if err := run(ctx, tx, `
MERGE (f:Filing {url: $filing.url})
SET f += $filing
WITH f
OPTIONAL MATCH (f)<-[m:MENTIONED_IN]-()
DELETE m
WITH DISTINCT f
OPTIONAL MATCH ()-[x:RELATES_TO {filing: f.url}]->()
DELETE x
`, map[string]any{"filing": p.filing}); err != nil {
			return nil, err
		}

		if len(p.people) > 0 {
			if err := run(ctx, tx, `
UNWIND $people AS p
MERGE (e:Entity:Person {key: p.key})
SET e.name = p.name, e.aliases = p.aliases
WITH e, p
MATCH (f:Filing {url: $url})
MERGE (e)-[m:MENTIONED_IN]->(f)
SET m.contexts = p.contexts
`, map[string]any{"people": p.people, "url": r.Document.URL}); err != nil {
				return nil, err
			}
		}

		if len(p.companies) > 0 {
			if err := run(ctx, tx, `
UNWIND $companies AS c
MERGE (e:Entity:Company {key: c.key})
SET e.cik = c.cik, e.name = c.name, e.ticker = c.ticker, e.industry = c.industry
WITH e, c
MATCH (f:Filing {url: $url})
MERGE (e)-[m:MENTIONED_IN]->(f)
SET m.aliases = c.aliases, m.contexts = c.contexts
`, map[string]any{"companies": p.companies, "url": r.Document.URL}); err != nil {
				return nil, err
			}
		}

		if len(p.rels) > 0 {
			if err := run(ctx, tx, `
UNWIND $rels AS r
MATCH (a:Entity {key: r.actor})
MATCH (b:Entity {key: r.target})
MERGE (a)-[x:RELATES_TO {verb: r.verb, filing: $url}]->(b)
SET x.confidence = r.confidence, x.contexts = r.contexts
`, map[string]any{"rels": p.rels, "url": r.Document.URL}); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return err
	}

	s.logger.Debug("synced filing graph",
		zap.String("url", r.Document.URL),
		zap.Int("people", len(p.people)),
		zap.Int("companies", len(p.companies)),
		zap.Int("relationships", len(p.rels)),
	)
	return nil
}

func (s *Sink) HasDocument(ctx context.Context, url string) (bool, error) {
	if s.client == nil || s.client.Driver == nil {
		return false, ErrNoDriver
	}
	session := s.client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: s.client.Database,
	})
	defer session.Close(ctx)

	found, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `MATCH (f:Filing {url: $url}) RETURN count(f) > 0 AS found`, map[string]any{"url": url})
		if err != nil {
			return nil, err
		}
		rec, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		v, _ := rec.Get("found")
		b, _ := v.(bool)
		return b, nil
	})
	if err != nil {
		return false, err
	}
	return found.(bool), nil
}

var (
	_ domain.ResultSink       = (*Sink)(nil)
	_ domain.ProcessedChecker = (*Sink)(nil)
)
