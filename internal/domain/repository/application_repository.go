package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"hackboard/internal/common"
	"hackboard/internal/domain/model"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
)

type ApplicationRepository interface {
	Create(ctx context.Context, app *model.Application) error
	FindByID(ctx context.Context, id string) (*model.Application, error)
	// FindByHackathonAndApplicant returns the applicant's earlier entries for
	// the hackathon, empty when there are none.
	FindByHackathonAndApplicant(ctx context.Context, hackathonID, applicantID string) ([]model.Application, error)
	FindByHackathon(ctx context.Context, hackathonID string) ([]model.Application, error)
	FindByApplicant(ctx context.Context, applicantID string) ([]model.Application, error)
	// Save writes app only if the stored version still equals app.Version and
	// bumps app.Version on success. A stale version yields common.ErrStaleWrite.
	Save(ctx context.Context, app *model.Application) error
}

type pgApplicationRepository struct {
	db *sql.DB
}

func NewPgApplicationRepository(db *sql.DB) ApplicationRepository {
	return &pgApplicationRepository{db: db}
}

func (r *pgApplicationRepository) Create(ctx context.Context, app *model.Application) error {
	app.Version = 1
	doc, err := json.Marshal(app)
	if err != nil {
		return fmt.Errorf("pgApplicationRepository.Create marshal: %w", err)
	}
	query := `INSERT INTO applications (id, hackathon_id, applicant_id, status, final_rank, document, version, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err = r.db.ExecContext(ctx, query,
		app.ID, app.HackathonID, app.ApplicantID, app.Status, app.FinalRank, doc, app.Version, app.CreatedAt, app.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // One application per applicant and hackathon
			return common.ErrAlreadyApplied
		}
		return fmt.Errorf("pgApplicationRepository.Create: %w", err)
	}
	return nil
}

func (r *pgApplicationRepository) FindByID(ctx context.Context, id string) (*model.Application, error) {
	apps, err := r.find(ctx, "FindByID", sq.Eq{"id": id})
	if err != nil {
		return nil, err
	}
	if len(apps) == 0 {
		return nil, common.ErrNotFound
	}
	return &apps[0], nil
}

func (r *pgApplicationRepository) FindByHackathonAndApplicant(ctx context.Context, hackathonID, applicantID string) ([]model.Application, error) {
	return r.find(ctx, "FindByHackathonAndApplicant", sq.Eq{"hackathon_id": hackathonID, "applicant_id": applicantID})
}

func (r *pgApplicationRepository) FindByHackathon(ctx context.Context, hackathonID string) ([]model.Application, error) {
	return r.find(ctx, "FindByHackathon", sq.Eq{"hackathon_id": hackathonID})
}

func (r *pgApplicationRepository) FindByApplicant(ctx context.Context, applicantID string) ([]model.Application, error) {
	return r.find(ctx, "FindByApplicant", sq.Eq{"applicant_id": applicantID})
}

func (r *pgApplicationRepository) Save(ctx context.Context, app *model.Application) error {
	expected := app.Version
	app.Version = expected + 1
	doc, err := json.Marshal(app)
	if err != nil {
		app.Version = expected
		return fmt.Errorf("pgApplicationRepository.Save marshal: %w", err)
	}

	query := `UPDATE applications SET status = $1, final_rank = $2, document = $3, version = $4, updated_at = $5
	          WHERE id = $6 AND version = $7`
	res, err := r.db.ExecContext(ctx, query, app.Status, app.FinalRank, doc, app.Version, app.UpdatedAt, app.ID, expected)
	if err != nil {
		app.Version = expected
		return fmt.Errorf("pgApplicationRepository.Save: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		app.Version = expected
		return fmt.Errorf("pgApplicationRepository.Save rows affected: %w", err)
	}
	if n == 0 {
		app.Version = expected
		return common.ErrStaleWrite
	}
	return nil
}

func (r *pgApplicationRepository) find(ctx context.Context, op string, where sq.Eq) ([]model.Application, error) {
	query, args, err := psql.Select("document", "version").
		From("applications").
		Where(where).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("pgApplicationRepository.%s build: %w", op, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgApplicationRepository.%s query: %w", op, err)
	}
	defer rows.Close()

	apps := []model.Application{}
	for rows.Next() {
		var (
			doc     []byte
			version int64
		)
		if err := rows.Scan(&doc, &version); err != nil {
			return nil, fmt.Errorf("pgApplicationRepository.%s scan: %w", op, err)
		}
		var app model.Application
		if err := json.Unmarshal(doc, &app); err != nil {
			return nil, fmt.Errorf("pgApplicationRepository.%s decode: %w", op, err)
		}
		app.Version = version
		if app.PhaseSubmissions == nil {
			app.PhaseSubmissions = model.PhaseSubmissions{}
		}
		apps = append(apps, app)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgApplicationRepository.%s rows.Err: %w", op, err)
	}
	return apps, nil
}
