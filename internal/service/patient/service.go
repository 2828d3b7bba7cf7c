package patient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mzansicare/booking-api/internal/model"
	"github.com/mzansicare/booking-api/internal/repository"
	"github.com/mzansicare/booking-api/internal/service/audit"
	apperrors "github.com/mzansicare/booking-api/pkg/errors"
)

const dateOfBirthLayout = "2006-01-02"

type Service struct {
	repo    repository.PatientRepository
	auditor *audit.Service
}

func NewService(repo repository.PatientRepository, auditor *audit.Service) *Service {
	return &Service{repo: repo, auditor: auditor}
}

func (s *Service) CreatePatient(ctx context.Context, req *model.CreatePatientRequest, actorID uuid.UUID) (*model.Patient, error) {
	district := model.District(req.District)
	if !district.Valid() {
		return nil, apperrors.BadRequest("unknown district", nil)
	}

	patient := &model.Patient{
		UserID:      req.UserID,
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		District:    district,
		SubLocation: req.SubLocation,
		Status:      model.PatientStatusActive,
	}
	if req.DateOfBirth != "" {
		dob, err := time.Parse(dateOfBirthLayout, req.DateOfBirth)
		if err != nil {
			return nil, apperrors.InvalidDate("date of birth must be formatted YYYY-MM-DD")
		}
		patient.DateOfBirth = &dob
	}

	patient.Base = model.NewBase(time.Now())

	if err := s.repo.Create(ctx, patient); err != nil {
		return nil, apperrors.PersistenceFailure(err)
	}

	if err := s.auditor.Log(ctx, actorID, patient.District, model.AuditActionCreate, model.AuditEntityPatient, patient.ID, &audit.LogOptions{Changes: patient}); err != nil {
		return nil, fmt.Errorf("failed to audit patient creation: %w", err)
	}
	return patient, nil
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("patient", err)
		}
		return nil, apperrors.PersistenceFailure(err)
	}
	return patient, nil
}

func (s *Service) UpdatePatient(ctx context.Context, id uuid.UUID, req *model.UpdatePatientRequest, actorID uuid.UUID) (*model.Patient, error) {
	patient, err := s.GetPatient(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		patient.Name = *req.Name
	}
	if req.Email != nil {
		patient.Email = *req.Email
	}
	if req.Phone != nil {
		patient.Phone = *req.Phone
	}
	if req.District != nil {
		district := model.District(*req.District)
		if !district.Valid() {
			return nil, apperrors.BadRequest("unknown district", nil)
		}
		patient.District = district
	}
	if req.SubLocation != nil {
		patient.SubLocation = *req.SubLocation
	}
	if req.Status != nil {
		patient.Status = model.PatientStatus(*req.Status)
	}
	patient.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, patient); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("patient", err)
		}
		return nil, apperrors.PersistenceFailure(err)
	}

	if err := s.auditor.Log(ctx, actorID, patient.District, model.AuditActionUpdate, model.AuditEntityPatient, patient.ID, &audit.LogOptions{Changes: req}); err != nil {
		return nil, fmt.Errorf("failed to audit patient update: %w", err)
	}
	return patient, nil
}

func (s *Service) DeletePatient(ctx context.Context, id uuid.UUID, actorID uuid.UUID) error {
	patient, err := s.GetPatient(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperrors.PersistenceFailure(err)
	}
	return s.auditor.Log(ctx, actorID, patient.District, model.AuditActionUpdate, model.AuditEntityPatient, id, nil)
}

func (s *Service) ListPatients(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error) {
	patients, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, apperrors.PersistenceFailure(err)
	}
	return patients, nil
}
