package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rhony-martinez/proyecto-ac/internal/models"
)

type StatusSQLite struct {
	db *sql.DB
}

func NewStatusSQLite(db *sql.DB) *StatusSQLite {
	return &StatusSQLite{db: db}
}

const (
	controllerStatusRowID = 1

	insertOrUpdateStatusSQL = `
		INSERT INTO controller_status (id, state, last_pmv, pmv_converged, overheat_count, failed_attempts, fan_on, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			state=excluded.state,
			last_pmv=excluded.last_pmv,
			pmv_converged=excluded.pmv_converged,
			overheat_count=excluded.overheat_count,
			failed_attempts=excluded.failed_attempts,
			fan_on=excluded.fan_on,
			updated_at=excluded.updated_at
	`

	selectStatusSQL = `
		SELECT id, state, last_pmv, pmv_converged, overheat_count, failed_attempts, fan_on, updated_at
		FROM controller_status WHERE id=?
	`
)

// Save updates or inserts the controller_status row (id always 1).
func (r *StatusSQLite) Save(ctx context.Context, s models.StatusSnapshot) error {
	// ensure UpdatedAt is always persisted as UTC; set if zero
	tsUTC := s.UpdatedAt
	if tsUTC.IsZero() {
		tsUTC = time.Now().UTC()
	} else {
		tsUTC = tsUTC.UTC()
	}

	_, err := r.db.ExecContext(ctx, insertOrUpdateStatusSQL,
		controllerStatusRowID,
		s.State,
		s.LastPMV,
		s.PMVConverged,
		s.OverheatCount,
		s.FailedAttempts,
		s.FanOn,
		tsUTC,
	)
	return err
}

// Load fetches the single controller_status row (id=1).
func (r *StatusSQLite) Load(ctx context.Context) (models.StatusSnapshot, error) {
	row := r.db.QueryRowContext(ctx, selectStatusSQL, controllerStatusRowID)

	var s models.StatusSnapshot
	if err := row.Scan(
		&s.ID,
		&s.State,
		&s.LastPMV,
		&s.PMVConverged,
		&s.OverheatCount,
		&s.FailedAttempts,
		&s.FanOn,
		&s.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.StatusSnapshot{}, nil // no snapshot yet
		}
		return models.StatusSnapshot{}, err
	}
	s.UpdatedAt = s.UpdatedAt.UTC()

	return s, nil
}
