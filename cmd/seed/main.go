// Command seed loads a sample rubric and two papers, one of them graded.
package main

import (
	"context"
	"log"

	sqliteadapter "github.com/csg33k/paperdesk/internal/adapters/sqlite"
	"github.com/csg33k/paperdesk/internal/config"
	"github.com/csg33k/paperdesk/internal/domain"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	repo, err := sqliteadapter.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer repo.Close()

	ctx := context.Background()
	rb := &domain.Rubric{Name: "Position paper"}
	for i, label := range []string{"Research", "Argument", "Solutions", "Writing", "Citations"} {
		rb.Categories[i] = domain.RubricCategory{Label: label, Max: ptr(10)}
	}
	if err := repo.CreateRubric(ctx, rb); err != nil {
		log.Fatalf("create rubric: %v", err)
	}

	pending := &domain.Paper{RubricID: rb.ID, Submitter: "Team A"}
	if err := repo.CreatePaper(ctx, pending); err != nil {
		log.Fatalf("create paper: %v", err)
	}
	graded := &domain.Paper{RubricID: rb.ID, Submitter: "Team B"}
	if err := repo.CreatePaper(ctx, graded); err != nil {
		log.Fatalf("create paper: %v", err)
	}
	scores := [domain.CategoryCount]*int64{ptr(8), ptr(9), ptr(7), ptr(10), ptr(6)}
	if err := repo.RecordScores(ctx, graded.ID, scores); err != nil {
		log.Fatalf("record scores: %v", err)
	}
	log.Printf("seeded rubric %d and papers %d, %d", rb.ID, pending.ID, graded.ID)
}

func ptr(n int64) *int64 { return &n }
