package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/csg33k/paperdesk/internal/domain"
)

type Repository struct {
	db *sql.DB
}

// New opens the SQLite database. Schema migrations are managed by dbmate;
// run `dbmate up` (or `mage dbup`) before starting the server.
func New(dsn string) (*Repository, error) {
	db, err := sql.Open("sqlite3", dsn+"?_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

// ── Rubrics ───────────────────────────────────────────────────────────────────

func (r *Repository) CreateRubric(ctx context.Context, rb *domain.Rubric) error {
	rb.CreatedAt = time.Now()
	c := rb.Categories
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO rubrics (
			name,
			grade_category_1, grade_value_1,
			grade_category_2, grade_value_2,
			grade_category_3, grade_value_3,
			grade_category_4, grade_value_4,
			grade_category_5, grade_value_5,
			created_at
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		rb.Name,
		c[0].Label, nullInt(c[0].Max),
		c[1].Label, nullInt(c[1].Max),
		c[2].Label, nullInt(c[2].Max),
		c[3].Label, nullInt(c[3].Max),
		c[4].Label, nullInt(c[4].Max),
		rb.CreatedAt,
	)
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	rb.ID = id
	return nil
}

func (r *Repository) GetRubric(ctx context.Context, id int64) (*domain.Rubric, error) {
	rb := &domain.Rubric{}
	var maxes [domain.CategoryCount]sql.NullInt64
	c := &rb.Categories
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name,
		       grade_category_1, grade_value_1,
		       grade_category_2, grade_value_2,
		       grade_category_3, grade_value_3,
		       grade_category_4, grade_value_4,
		       grade_category_5, grade_value_5,
		       created_at
		FROM rubrics WHERE id=?`, id).Scan(
		&rb.ID, &rb.Name,
		&c[0].Label, &maxes[0],
		&c[1].Label, &maxes[1],
		&c[2].Label, &maxes[2],
		&c[3].Label, &maxes[3],
		&c[4].Label, &maxes[4],
		&rb.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("rubric %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	for i := range maxes {
		c[i].Max = intPtr(maxes[i])
	}
	return rb, nil
}

// ── Papers ────────────────────────────────────────────────────────────────────

const paperColumns = `id, rubric_id, submitter, file_path, graded,
       score_1, score_2, score_3, score_4, score_5,
       created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPaper(row rowScanner) (*domain.Paper, error) {
	p := &domain.Paper{}
	var graded int
	var scores [domain.CategoryCount]sql.NullInt64
	if err := row.Scan(
		&p.ID, &p.RubricID, &p.Submitter, &p.FilePath, &graded,
		&scores[0], &scores[1], &scores[2], &scores[3], &scores[4],
		&p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.Graded = graded == 1
	for i := range scores {
		p.Scores[i] = intPtr(scores[i])
	}
	return p, nil
}

func (r *Repository) CreatePaper(ctx context.Context, p *domain.Paper) error {
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	s := p.Scores
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO papers (
			rubric_id, submitter, file_path, graded,
			score_1, score_2, score_3, score_4, score_5,
			created_at, updated_at
		) VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		p.RubricID, p.Submitter, p.FilePath, boolToInt(p.Graded),
		nullInt(s[0]), nullInt(s[1]), nullInt(s[2]), nullInt(s[3]), nullInt(s[4]),
		now, now,
	)
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	p.ID = id
	return nil
}

func (r *Repository) GetPaper(ctx context.Context, id int64) (*domain.Paper, error) {
	p, err := scanPaper(r.db.QueryRowContext(ctx,
		`SELECT `+paperColumns+` FROM papers WHERE id=?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("paper %d: %w", id, domain.ErrNotFound)
	}
	return p, err
}

func (r *Repository) ListPapers(ctx context.Context) ([]domain.Paper, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+paperColumns+` FROM papers ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []domain.Paper
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *p)
	}
	return list, rows.Err()
}

func (r *Repository) AttachFile(ctx context.Context, id int64, filePath string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE papers SET file_path=?, updated_at=? WHERE id=?`,
		filePath, time.Now(), id)
	if err != nil {
		return err
	}
	return expectOne(res, "paper", id)
}

func (r *Repository) RecordScores(ctx context.Context, id int64, s [domain.CategoryCount]*int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE papers
		SET graded=1, score_1=?, score_2=?, score_3=?, score_4=?, score_5=?, updated_at=?
		WHERE id=?`,
		nullInt(s[0]), nullInt(s[1]), nullInt(s[2]), nullInt(s[3]), nullInt(s[4]),
		time.Now(), id,
	)
	if err != nil {
		return err
	}
	return expectOne(res, "paper", id)
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func expectOne(res sql.Result, what string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", what, id, domain.ErrNotFound)
	}
	return nil
}

func nullInt(n *int64) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *n, Valid: true}
}

func intPtr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
