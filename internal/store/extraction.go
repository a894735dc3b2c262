package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
	"go.uber.org/zap"

	"github.com/Harshitk-cp/filinggraph/internal/domain"
)

// ExtractionStore persists extraction results in Postgres. Entity and
// relationship contexts are embedded when an embedding client is set.
type ExtractionStore struct {
	db       *pgxpool.Pool
	embedder domain.EmbeddingClient
	logger   *zap.Logger
}

func NewExtractionStore(db *pgxpool.Pool, logger *zap.Logger) *ExtractionStore {
	return &ExtractionStore{db: db, logger: logger}
}

func (s *ExtractionStore) SetEmbeddingClient(ec domain.EmbeddingClient) {
	s.embedder = ec
}

// DocumentSummary is one stored filing with its record counts.
type DocumentSummary struct {
	domain.Document
	ExtractedAt   time.Time `json:"extracted_at"`
	People        int       `json:"people"`
	Companies     int       `json:"companies"`
	Relationships int       `json:"relationships"`
}

// embedContexts returns nil when no client is configured or the call fails.
func (s *ExtractionStore) embedContexts(ctx context.Context, contexts []string) *pgvector.Vector {
	if s.embedder == nil || len(contexts) == 0 {
		return nil
	}
	vec, err := s.embedder.Embed(ctx, strings.Join(contexts, "\n"))
	if err != nil {
		s.logger.Warn("failed to embed contexts", zap.Error(err))
		return nil
	}
	if len(vec) == 0 {
		return nil
	}
	v := pgvector.NewVector(vec)
	return &v
}

type entityRow struct {
	kind      domain.EntityKind
	key       string
	name      string
	aliases   []string
	contexts  []string
	metadata  *domain.Company
	embedding *pgvector.Vector
}

// Save replaces everything stored for the result's document URL.
func (s *ExtractionStore) Save(ctx context.Context, r *domain.ExtractionResult) error {
	if r.Document.URL == "" {
		return fmt.Errorf("save extraction: document url is required")
	}

	entities := make([]entityRow, 0, len(r.People)+len(r.Companies))
	for _, p := range r.People {
		entities = append(entities, entityRow{
			kind: domain.KindPerson, key: p.Name, name: p.Name,
			aliases: p.Aliases, contexts: p.Contexts,
			embedding: s.embedContexts(ctx, p.Contexts),
		})
	}
	for _, c := range r.Companies {
		entities = append(entities, entityRow{
			kind: domain.KindCompany, key: c.ID, name: c.Name,
			aliases: c.Aliases, contexts: c.Contexts, metadata: c.Company,
			embedding: s.embedContexts(ctx, c.Contexts),
		})
	}
	relEmbeddings := make([]*pgvector.Vector, len(r.Relationships))
	for i, rel := range r.Relationships {
		relEmbeddings[i] = s.embedContexts(ctx, rel.Contexts)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var filingID string
	err = tx.QueryRow(ctx,
		`INSERT INTO filings (url, filer_id, form_type, extracted_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (url) DO UPDATE SET filer_id = EXCLUDED.filer_id, form_type = EXCLUDED.form_type,
		     extracted_at = EXCLUDED.extracted_at, updated_at = NOW()
		 RETURNING id::text`,
		r.Document.URL, r.Document.FilerID, r.Document.FormType, r.ExtractedAt,
	).Scan(&filingID)
	if err != nil {
		return fmt.Errorf("upsert filing: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM filing_entities WHERE filing_id = $1`, filingID); err != nil {
		return fmt.Errorf("clear entities: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM filing_relationships WHERE filing_id = $1`, filingID); err != nil {
		return fmt.Errorf("clear relationships: %w", err)
	}

	batch := &pgx.Batch{}
	for i, e := range entities {
		batch.Queue(
			`INSERT INTO filing_entities (filing_id, position, kind, entity_key, name, aliases, contexts, metadata, context_embedding)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			filingID, i, e.kind, e.key, e.name, nonNil(e.aliases), nonNil(e.contexts), e.metadata, e.embedding,
		)
	}
	for i, rel := range r.Relationships {
		batch.Queue(
			`INSERT INTO filing_relationships (filing_id, position, actor_kind, actor_key, actor_name,
			     target_kind, target_key, target_name, verb, contexts, confidence, context_embedding)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			filingID, i, rel.Actor.Kind, rel.Actor.Key, rel.ActorName,
			rel.Target.Kind, rel.Target.Key, rel.TargetName, rel.Verb, nonNil(rel.Contexts), rel.Confidence, relEmbeddings[i],
		)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert extraction rows: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *ExtractionStore) HasDocument(ctx context.Context, url string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM filings WHERE url = $1)`, url).Scan(&exists)
	return exists, err
}

// GetResult loads a stored result by document URL.
func (s *ExtractionStore) GetResult(ctx context.Context, url string) (*domain.ExtractionResult, error) {
	var filingID string
	r := &domain.ExtractionResult{
		People:        []*domain.PersonEntity{},
		Companies:     []*domain.CompanyEntity{},
		Relationships: []domain.Relationship{},
	}
	err := s.db.QueryRow(ctx,
		`SELECT id::text, url, filer_id, form_type, extracted_at FROM filings WHERE url = $1`,
		url,
	).Scan(&filingID, &r.Document.URL, &r.Document.FilerID, &r.Document.FormType, &r.ExtractedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	rows, err := s.db.Query(ctx,
		`SELECT kind, entity_key, name, aliases, contexts, metadata
		 FROM filing_entities WHERE filing_id = $1 ORDER BY position`,
		filingID,
	)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var e entityRow
		if err := rows.Scan(&e.kind, &e.key, &e.name, &e.aliases, &e.contexts, &e.metadata); err != nil {
			rows.Close()
			return nil, err
		}
		switch e.kind {
		case domain.KindPerson:
			r.People = append(r.People, &domain.PersonEntity{Name: e.name, Aliases: e.aliases, Contexts: e.contexts})
		case domain.KindCompany:
			r.Companies = append(r.Companies, &domain.CompanyEntity{
				ID: e.key, Name: e.name, Aliases: e.aliases, Contexts: e.contexts, Company: e.metadata,
			})
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.Query(ctx,
		`SELECT actor_kind, actor_key, actor_name, target_kind, target_key, target_name, verb, contexts, confidence
		 FROM filing_relationships WHERE filing_id = $1 ORDER BY position`,
		filingID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var rel domain.Relationship
		if err := rows.Scan(&rel.Actor.Kind, &rel.Actor.Key, &rel.ActorName,
			&rel.Target.Kind, &rel.Target.Key, &rel.TargetName,
			&rel.Verb, &rel.Contexts, &rel.Confidence); err != nil {
			return nil, err
		}
		r.Relationships = append(r.Relationships, rel)
	}
	return r, rows.Err()
}

// ListDocuments returns the most recently extracted filings first.
func (s *ExtractionStore) ListDocuments(ctx context.Context, limit int) ([]DocumentSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(ctx,
		`SELECT f.url, f.filer_id, f.form_type, f.extracted_at,
		        COUNT(e.id) FILTER (WHERE e.kind = $1),
		        COUNT(e.id) FILTER (WHERE e.kind = $2),
		        (SELECT COUNT(*) FROM filing_relationships r WHERE r.filing_id = f.id)
		 FROM filings f
		 LEFT JOIN filing_entities e ON e.filing_id = f.id
		 GROUP BY f.id
		 ORDER BY f.extracted_at DESC
		 LIMIT $3`,
		domain.KindPerson, domain.KindCompany, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DocumentSummary
	for rows.Next() {
		var d DocumentSummary
		if err := rows.Scan(&d.URL, &d.FilerID, &d.FormType, &d.ExtractedAt, &d.People, &d.Companies, &d.Relationships); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// SimilarRelationships ranks stored relationships by context embedding
// distance to the query vector.
func (s *ExtractionStore) SimilarRelationships(ctx context.Context, query []float32, limit int) ([]domain.Relationship, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.Query(ctx,
		`SELECT actor_kind, actor_key, actor_name, target_kind, target_key, target_name, verb, contexts, confidence
		 FROM filing_relationships
		 WHERE context_embedding IS NOT NULL AND vector_dims(context_embedding) = $2
		 ORDER BY context_embedding <=> $1
		 LIMIT $3`,
		pgvector.NewVector(query), len(query), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Relationship
	for rows.Next() {
		var rel domain.Relationship
		if err := rows.Scan(&rel.Actor.Kind, &rel.Actor.Key, &rel.ActorName,
			&rel.Target.Kind, &rel.Target.Key, &rel.TargetName,
			&rel.Verb, &rel.Contexts, &rel.Confidence); err != nil {
			return nil, err
		}
		out = append(out, rel)
	}
	return out, rows.Err()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

var (
	_ domain.ResultSink       = (*ExtractionStore)(nil)
	_ domain.ProcessedChecker = (*ExtractionStore)(nil)
)
