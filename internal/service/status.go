package service

import (
	"context"
	"time"

	"github.com/rhony-martinez/proyecto-ac/internal/models"
	"github.com/rhony-martinez/proyecto-ac/internal/repository"
)

const initialStateName = "START"

type StatusService struct {
	statusRepo repository.StatusRepo
}

func NewStatusService(statusRepo repository.StatusRepo) *StatusService {
	return &StatusService{statusRepo: statusRepo}
}

// GetStatus returns the latest persisted controller snapshot.
// If no snapshot is persisted yet, returns a baseline START snapshot.
func (s *StatusService) GetStatus(ctx context.Context) (models.StatusSnapshot, error) {
	snap, err := s.statusRepo.Load(ctx)
	if err != nil {
		return models.StatusSnapshot{}, err
	}
	if snap.ID == 0 {
		return s.baselineStatus(), nil
	}
	snap.UpdatedAt = toUTC(snap.UpdatedAt)
	return snap, nil
}

// Update persists the snapshot into the singleton row. Non-zero times are
// normalized to UTC; a zero UpdatedAt is left for the repository to stamp.
func (s *StatusService) Update(ctx context.Context, snap models.StatusSnapshot) error {
	snap.ID = 1
	snap.UpdatedAt = toUTC(snap.UpdatedAt)
	return s.statusRepo.Save(ctx, snap)
}

// baselineStatus returns a sensible default snapshot for an uninitialized DB.
func (s *StatusService) baselineStatus() models.StatusSnapshot {
	return models.StatusSnapshot{
		ID:        1, // DB schema enforces single-row status with id=1
		State:     initialStateName,
		UpdatedAt: time.Now().UTC(),
	}
}

// toUTC normalizes non-zero time to UTC, preserving zero values.
func toUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}
