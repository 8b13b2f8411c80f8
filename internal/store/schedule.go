package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/paiban/shiftplan/pkg/scheduling"
	"github.com/paiban/shiftplan/pkg/scheduling/model"
)

// ScheduleRun is one persisted invocation of scheduling.Schedule.
type ScheduleRun struct {
	ID            uuid.UUID       `json:"id"`
	WeekStart     time.Time       `json:"week_start"`
	Algorithm     string          `json:"algorithm"`
	Success       bool            `json:"success"`
	Objective     *float64        `json:"objective,omitempty"`
	Warnings      []string        `json:"warnings,omitempty"`
	Errors        []string        `json:"errors,omitempty"`
	AssignedCount int             `json:"assigned_count"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ScheduleAssignment is one (occurrence, staff) pair produced by a run.
type ScheduleAssignment struct {
	ID           uuid.UUID `json:"id"`
	RunID        uuid.UUID `json:"run_id"`
	OccurrenceID string    `json:"occurrence_id"`
	StaffID      string    `json:"staff_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// ListFilter filters ScheduleRun queries.
type ListFilter struct {
	WeekStartFrom time.Time
	WeekStartTo   time.Time
	Algorithm     string
	Offset        int
	Limit         int
}

// DefaultListFilter returns a filter matching the 20 most recent runs.
func DefaultListFilter() ListFilter {
	return ListFilter{Limit: 20}
}

// ScheduleRepository persists schedule run history to Postgres.
type ScheduleRepository struct {
	db *DB
}

// NewScheduleRepository builds a repository backed by db.
func NewScheduleRepository(db *DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// Save persists a scheduling.ScheduleResult and its assignment rows, both in
// one transaction.
func (r *ScheduleRepository) Save(ctx context.Context, weekStart time.Time, result scheduling.ScheduleResult) (uuid.UUID, error) {
	runID := uuid.New()

	err := r.db.Transaction(ctx, func(tx *sql.Tx) error {
		warningsJSON, _ := json.Marshal(result.Warnings)
		errorsJSON, _ := json.Marshal(result.Errors)

		assignedCount := 0
		for _, ids := range result.Assignments {
			assignedCount += len(ids)
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO schedule_runs (
				id, week_start, algorithm, success, objective, warnings, errors, assigned_count, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, runID, weekStart, string(result.Algorithm), result.Success, result.Objective,
			warningsJSON, errorsJSON, assignedCount, time.Now())
		if err != nil {
			return fmt.Errorf("insert schedule run: %w", err)
		}

		for occID, staffIDs := range result.Assignments {
			for _, sid := range staffIDs {
				_, err := tx.ExecContext(ctx, `
					INSERT INTO schedule_assignments (id, run_id, occurrence_id, staff_id, created_at)
					VALUES ($1, $2, $3, $4, $5)
				`, uuid.New(), runID, string(occID), string(sid), time.Now())
				if err != nil {
					return fmt.Errorf("insert schedule assignment: %w", err)
				}
			}
		}

		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	return runID, nil
}

// GetByID loads one ScheduleRun, or (nil, nil) if it does not exist.
func (r *ScheduleRepository) GetByID(ctx context.Context, id uuid.UUID) (*ScheduleRun, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, week_start, algorithm, success, objective, warnings, errors, assigned_count, created_at
		FROM schedule_runs WHERE id = $1
	`, id)
	return scanRun(row)
}

// List returns ScheduleRuns matching filter, most recent first.
func (r *ScheduleRepository) List(ctx context.Context, filter ListFilter) ([]*ScheduleRun, error) {
	var conditions []string
	var args []interface{}
	argNum := 1

	if !filter.WeekStartFrom.IsZero() {
		conditions = append(conditions, fmt.Sprintf("week_start >= $%d", argNum))
		args = append(args, filter.WeekStartFrom)
		argNum++
	}
	if !filter.WeekStartTo.IsZero() {
		conditions = append(conditions, fmt.Sprintf("week_start <= $%d", argNum))
		args = append(args, filter.WeekStartTo)
		argNum++
	}
	if filter.Algorithm != "" {
		conditions = append(conditions, fmt.Sprintf("algorithm = $%d", argNum))
		args = append(args, filter.Algorithm)
		argNum++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}

	query := fmt.Sprintf(`
		SELECT id, week_start, algorithm, success, objective, warnings, errors, assigned_count, created_at
		FROM schedule_runs %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argNum, argNum+1)
	args = append(args, limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list schedule runs: %w", err)
	}
	defer rows.Close()

	var runs []*ScheduleRun
	for rows.Next() {
		run, err := scanRunRows(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// GetAssignments returns every assignment row belonging to a run.
func (r *ScheduleRepository) GetAssignments(ctx context.Context, runID uuid.UUID) (model.AssignmentMap, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT occurrence_id, staff_id FROM schedule_assignments WHERE run_id = $1
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query schedule assignments: %w", err)
	}
	defer rows.Close()

	out := model.AssignmentMap{}
	for rows.Next() {
		var occID, staffID string
		if err := rows.Scan(&occID, &staffID); err != nil {
			return nil, fmt.Errorf("scan schedule assignment: %w", err)
		}
		oid := model.OccurrenceID(occID)
		out[oid] = append(out[oid], model.StaffID(staffID))
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row *sql.Row) (*ScheduleRun, error) {
	run, err := scanRowInto(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return run, err
}

func scanRunRows(rows *sql.Rows) (*ScheduleRun, error) {
	return scanRowInto(rows)
}

func scanRowInto(s rowScanner) (*ScheduleRun, error) {
	run := &ScheduleRun{}
	var warningsJSON, errorsJSON []byte

	err := s.Scan(
		&run.ID, &run.WeekStart, &run.Algorithm, &run.Success, &run.Objective,
		&warningsJSON, &errorsJSON, &run.AssignedCount, &run.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan schedule run: %w", err)
	}

	if len(warningsJSON) > 0 {
		json.Unmarshal(warningsJSON, &run.Warnings)
	}
	if len(errorsJSON) > 0 {
		json.Unmarshal(errorsJSON, &run.Errors)
	}

	return run, nil
}
