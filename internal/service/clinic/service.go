package clinic

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
	repo repository.ClinicRepository
}

func NewService(repo repository.ClinicRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateClinic(ctx context.Context, req *model.CreateClinicRequest) (*model.Clinic, error) {
	district := model.District(req.District)
	if !district.Valid() {
		return nil, apperrors.BadRequest("unknown district", nil)
	}
	facilityType := model.FacilityType(req.FacilityType)
	if !facilityType.Valid() {
		return nil, apperrors.BadRequest("unknown facility type", nil)
	}

	clinic := &model.Clinic{
		Name:         req.Name,
		FacilityType: facilityType,
		District:     district,
		SubLocation:  req.SubLocation,
		Phone:        req.Phone,
		Status:       model.ClinicStatusActive,
	}
	clinic.Base = model.NewBase(time.Now())

	if err := s.repo.Create(ctx, clinic); err != nil {
		return nil, apperrors.PersistenceFailure(err)
	}
	return clinic, nil
}

func (s *Service) GetClinic(ctx context.Context, id uuid.UUID) (*model.Clinic, error) {
	clinic, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("clinic", err)
		}
		return nil, apperrors.PersistenceFailure(err)
	}
	return clinic, nil
}

func (s *Service) UpdateClinic(ctx context.Context, id uuid.UUID, req *model.UpdateClinicRequest) (*model.Clinic, error) {
	clinic, err := s.GetClinic(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		clinic.Name = *req.Name
	}
	if req.SubLocation != nil {
		clinic.SubLocation = *req.SubLocation
	}
	if req.Phone != nil {
		clinic.Phone = *req.Phone
	}
	if req.Status != nil {
		clinic.Status = model.ClinicStatus(*req.Status)
	}
	clinic.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, clinic); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("clinic", err)
		}
		return nil, apperrors.PersistenceFailure(err)
	}
	return clinic, nil
}

func (s *Service) ListClinics(ctx context.Context, filters *model.ClinicFilters) ([]*model.Clinic, error) {
	clinics, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, apperrors.PersistenceFailure(err)
	}
	return clinics, nil
}
