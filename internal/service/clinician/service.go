package clinician

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/mzansicare/booking-api/internal/model"
	"github.com/mzansicare/booking-api/internal/repository"
	apperrors "github.com/mzansicare/booking-api/pkg/errors"
)

type Service struct {
	repo repository.ClinicianRepository
}

func NewService(repo repository.ClinicianRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateClinician(ctx context.Context, req *model.CreateClinicianRequest) (*model.Clinician, error) {
	specialty := model.Specialty(req.Specialty)
	if !specialty.Valid() {
		return nil, apperrors.BadRequest("unknown specialty", nil)
	}

	clinician := &model.Clinician{
		ClinicID:  req.ClinicID,
		Name:      req.Name,
		Email:     req.Email,
		Specialty: specialty,
		Status:    model.ClinicianStatusActive,
	}
	clinician.Base = model.NewBase(time.Now())

	if err := s.repo.Create(ctx, clinician); err != nil {
		return nil, apperrors.PersistenceFailure(err)
	}
	return clinician, nil
}

func (s *Service) GetClinician(ctx context.Context, id uuid.UUID) (*model.Clinician, error) {
	clinician, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("clinician", err)
		}
		return nil, apperrors.PersistenceFailure(err)
	}
	return clinician, nil
}

func (s *Service) UpdateClinician(ctx context.Context, id uuid.UUID, req *model.UpdateClinicianRequest) (*model.Clinician, error) {
	clinician, err := s.GetClinician(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		clinician.Name = *req.Name
	}
	if req.Email != nil {
		clinician.Email = *req.Email
	}
	if req.Specialty != nil {
		specialty := model.Specialty(*req.Specialty)
		if !specialty.Valid() {
			return nil, apperrors.BadRequest("unknown specialty", nil)
		}
		clinician.Specialty = specialty
	}
	if req.Status != nil {
		clinician.Status = model.ClinicianStatus(*req.Status)
	}
	clinician.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, clinician); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("clinician", err)
		}
		return nil, apperrors.PersistenceFailure(err)
	}
	return clinician, nil
}

func (s *Service) ListClinicians(ctx context.Context, filters *model.ClinicianFilters) ([]*model.Clinician, error) {
	clinicians, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, apperrors.PersistenceFailure(err)
	}
	return clinicians, nil
}
