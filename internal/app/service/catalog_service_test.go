package service

import (
	"context"
	"testing"

	"atcrank/internal/common"
	"atcrank/internal/domain/model"
	"atcrank/internal/platform/atcoder"
)

type fakeProblemRepo struct {
	upserted []model.Problem
}

func (f *fakeProblemRepo) UpsertBatch(ctx context.Context, problems []model.Problem) error {
	f.upserted = append(f.upserted, problems...)
	return nil
}

func (f *fakeProblemRepo) FindByID(ctx context.Context, id string) (*model.Problem, error) {
	return nil, common.ErrNotFound
}

func (f *fakeProblemRepo) Count(ctx context.Context) (int, error) { return len(f.upserted), nil }

type fakeCatalogSource struct {
	catalog []atcoder.CatalogProblem
	err     error
}

func (f *fakeCatalogSource) FetchCatalog(ctx context.Context) ([]atcoder.CatalogProblem, error) {
	return f.catalog, f.err
}

func floatPtr(v float64) *float64 { return &v }

func TestCatalogSyncNormalizesDifficulty(t *testing.T) {
	repo := &fakeProblemRepo{}
	src := &fakeCatalogSource{catalog: []atcoder.CatalogProblem{
		{ProblemID: "abc1_a", ContestID: "abc1", Title: "Welcome to AtCoder", DifficultyRaw: floatPtr(-400)},
		{ProblemID: "abc1_b", ContestID: "abc1", Title: "Hard One", DifficultyRaw: floatPtr(2345.6)},
		{ProblemID: "abc1_c", ContestID: "abc1", Title: "No Model"},
	}}

	n, err := NewCatalogService(repo, src).Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if n != 3 || len(repo.upserted) != 3 {
		t.Fatalf("expected 3 upserted problems, got n=%d stored=%d", n, len(repo.upserted))
	}

	easy := repo.upserted[0]
	if easy.Difficulty == nil || *easy.Difficulty != 54 {
		t.Errorf("raw -400 should display as 54, got %v", easy.Difficulty)
	}
	if easy.Slug != "welcome-to-atcoder" {
		t.Errorf("slug = %q, want welcome-to-atcoder", easy.Slug)
	}

	hard := repo.upserted[1]
	if hard.Difficulty == nil || *hard.Difficulty != 2346 {
		t.Errorf("raw 2345.6 should round to 2346, got %v", hard.Difficulty)
	}

	unmodeled := repo.upserted[2]
	if unmodeled.Difficulty != nil || unmodeled.DifficultyRaw != nil {
		t.Errorf("unmodeled problem should keep nil difficulty, got %v/%v", unmodeled.DifficultyRaw, unmodeled.Difficulty)
	}
}

func TestCatalogSyncEmptyFeedKeepsTable(t *testing.T) {
	repo := &fakeProblemRepo{}
	src := &fakeCatalogSource{}

	n, err := NewCatalogService(repo, src).Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if n != 0 || len(repo.upserted) != 0 {
		t.Errorf("expected no upserts for an empty feed, got n=%d stored=%d", n, len(repo.upserted))
	}
}
