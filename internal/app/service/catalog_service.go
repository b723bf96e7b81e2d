package service

import (
	"context"
	"fmt"
	"log"

	"atcrank/internal/domain/model"
	"atcrank/internal/domain/repository"
	"atcrank/internal/domain/scoring"
	"atcrank/internal/platform/atcoder"

	"github.com/gosimple/slug"
)

// CatalogSource is the bulk problem and difficulty feed.
type CatalogSource interface {
	FetchCatalog(ctx context.Context) ([]atcoder.CatalogProblem, error)
}

// CatalogService mirrors the remote problem catalog into the local table so
// the scoring path never calls out during a poll cycle.
type CatalogService struct {
	problemRepo repository.ProblemRepository
	source      CatalogSource
}

func NewCatalogService(problemRepo repository.ProblemRepository, source CatalogSource) *CatalogService {
	return &CatalogService{problemRepo: problemRepo, source: source}
}

// Sync fetches the full catalog and upserts it. Records without an id are
// dropped upstream; records without a difficulty model keep nil difficulty and
// fall back to the flat score when credited.
func (s *CatalogService) Sync(ctx context.Context) (int, error) {
	catalog, err := s.source.FetchCatalog(ctx)
	if err != nil {
		return 0, fmt.Errorf("catalog: fetch: %w", err)
	}
	if len(catalog) == 0 {
		log.Printf("WARN: catalog sync returned no problems, keeping existing table")
		return 0, nil
	}

	problems := make([]model.Problem, 0, len(catalog))
	for _, c := range catalog {
		p := model.Problem{
			ID:        c.ProblemID,
			ContestID: c.ContestID,
			Title:     c.Title,
			Slug:      slug.Make(c.Title),
		}
		if c.DifficultyRaw != nil {
			raw := *c.DifficultyRaw
			display := scoring.DisplayDifficulty(raw)
			p.DifficultyRaw = &raw
			p.Difficulty = &display
		}
		problems = append(problems, p)
	}

	if err := s.problemRepo.UpsertBatch(ctx, problems); err != nil {
		return 0, fmt.Errorf("catalog: upsert: %w", err)
	}
	log.Printf("INFO: catalog sync upserted %d problems", len(problems))
	return len(problems), nil
}
