package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/mzansicare/booking-api/internal/model"
	"github.com/mzansicare/booking-api/internal/repository"
)

type Service struct {
	repo repository.AuditRepository
}

func NewService(repo repository.AuditRepository) *Service {
	return &Service{repo: repo}
}

type LogOptions struct {
	Changes   interface{}
	Metadata  interface{}
	IPAddress string
}

// Log creates an audit log entry. Marshalling failures are returned so
// callers can decide whether a missing audit row is fatal.
func (s *Service) Log(ctx context.Context, actorID uuid.UUID, district model.District, action, entityType string, entityID uuid.UUID, opts *LogOptions) error {
	var changes, metadata json.RawMessage
	var err error

	ipAddress := ""
	if opts != nil {
		if opts.Changes != nil {
			changes, err = json.Marshal(opts.Changes)
			if err != nil {
				return err
			}
		}
		if opts.Metadata != nil {
			metadata, err = json.Marshal(opts.Metadata)
			if err != nil {
				return err
			}
		}
		ipAddress = opts.IPAddress
	}

	log := &model.AuditLog{
		ID:         uuid.New(),
		ActorID:    actorID,
		District:   district,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Changes:    changes,
		Metadata:   metadata,
		IPAddress:  ipAddress,
		CreatedAt:  time.Now(),
	}

	return s.repo.Create(ctx, log)
}

func (s *Service) List(ctx context.Context, filters map[string]interface{}) ([]*model.AuditLog, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Cleanup(ctx context.Context, before time.Time) (int64, error) {
	return s.repo.DeleteBefore(ctx, before)
}
