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

type HackathonRepository interface {
	Create(ctx context.Context, h *model.Hackathon) error
	FindByID(ctx context.Context, id string) (*model.Hackathon, error)
	FindBySlug(ctx context.Context, slug string) (*model.Hackathon, error)
	List(ctx context.Context) ([]model.Hackathon, error)
	ListByOrganizer(ctx context.Context, organizerID string) ([]model.Hackathon, error)
	// Save updates the mutable fields, including the reconciled results flag.
	Save(ctx context.Context, h *model.Hackathon) error
}

type pgHackathonRepository struct {
	db *sql.DB
}

func NewPgHackathonRepository(db *sql.DB) HackathonRepository {
	return &pgHackathonRepository{db: db}
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var hackathonColumns = []string{
	"id", "slug", "title", "description", "organizer_id", "allow_individual",
	"min_team_size", "team_size", "phases", "start_date", "end_date",
	"results_published", "created_at", "updated_at",
}

func (r *pgHackathonRepository) Create(ctx context.Context, h *model.Hackathon) error {
	phases, err := json.Marshal(h.Phases)
	if err != nil {
		return fmt.Errorf("pgHackathonRepository.Create marshal phases: %w", err)
	}
	query := `INSERT INTO hackathons (id, slug, title, description, organizer_id, allow_individual,
	              min_team_size, team_size, phases, start_date, end_date, results_published, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err = r.db.ExecContext(ctx, query,
		h.ID, h.Slug, h.Title, h.Description, h.OrganizerID, h.AllowIndividual,
		h.MinTeamSize, h.TeamSize, phases, h.StartDate, h.EndDate, h.ResultsPublished, h.CreatedAt, h.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique constraint for slug
			return fmt.Errorf("hackathon with this slug already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgHackathonRepository.Create: %w", err)
	}
	return nil
}

func (r *pgHackathonRepository) FindByID(ctx context.Context, id string) (*model.Hackathon, error) {
	return r.findOne(ctx, "FindByID", sq.Eq{"id": id})
}

func (r *pgHackathonRepository) FindBySlug(ctx context.Context, slug string) (*model.Hackathon, error) {
	return r.findOne(ctx, "FindBySlug", sq.Eq{"slug": slug})
}

func (r *pgHackathonRepository) List(ctx context.Context) ([]model.Hackathon, error) {
	return r.list(ctx, "List", nil)
}

func (r *pgHackathonRepository) ListByOrganizer(ctx context.Context, organizerID string) ([]model.Hackathon, error) {
	return r.list(ctx, "ListByOrganizer", sq.Eq{"organizer_id": organizerID})
}

func (r *pgHackathonRepository) Save(ctx context.Context, h *model.Hackathon) error {
	phases, err := json.Marshal(h.Phases)
	if err != nil {
		return fmt.Errorf("pgHackathonRepository.Save marshal phases: %w", err)
	}
	query := `UPDATE hackathons SET
	              title = $1, description = $2, allow_individual = $3, min_team_size = $4, team_size = $5,
	              phases = $6, start_date = $7, end_date = $8, results_published = $9, updated_at = $10
	          WHERE id = $11`
	res, err := r.db.ExecContext(ctx, query,
		h.Title, h.Description, h.AllowIndividual, h.MinTeamSize, h.TeamSize,
		phases, h.StartDate, h.EndDate, h.ResultsPublished, h.UpdatedAt, h.ID,
	)
	if err != nil {
		return fmt.Errorf("pgHackathonRepository.Save: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgHackathonRepository) findOne(ctx context.Context, op string, where sq.Eq) (*model.Hackathon, error) {
	query, args, err := psql.Select(hackathonColumns...).From("hackathons").Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("pgHackathonRepository.%s build: %w", op, err)
	}
	h, err := scanHackathon(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgHackathonRepository.%s: %w", op, err)
	}
	return h, nil
}

func (r *pgHackathonRepository) list(ctx context.Context, op string, where sq.Sqlizer) ([]model.Hackathon, error) {
	b := psql.Select(hackathonColumns...).From("hackathons").OrderBy("start_date DESC", "created_at DESC")
	if where != nil {
		b = b.Where(where)
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("pgHackathonRepository.%s build: %w", op, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgHackathonRepository.%s query: %w", op, err)
	}
	defer rows.Close()

	hackathons := []model.Hackathon{}
	for rows.Next() {
		h, err := scanHackathon(rows)
		if err != nil {
			return nil, fmt.Errorf("pgHackathonRepository.%s scan: %w", op, err)
		}
		hackathons = append(hackathons, *h)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgHackathonRepository.%s rows.Err: %w", op, err)
	}
	return hackathons, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHackathon(row rowScanner) (*model.Hackathon, error) {
	h := &model.Hackathon{}
	var phases []byte
	err := row.Scan(
		&h.ID, &h.Slug, &h.Title, &h.Description, &h.OrganizerID, &h.AllowIndividual,
		&h.MinTeamSize, &h.TeamSize, &phases, &h.StartDate, &h.EndDate,
		&h.ResultsPublished, &h.CreatedAt, &h.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(phases, &h.Phases); err != nil {
		return nil, fmt.Errorf("decode phases: %w", err)
	}
	return h, nil
}
