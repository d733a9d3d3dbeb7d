package services

import (
	"context"
	"fmt"

	"medexpenses/internal/apperr"
	"medexpenses/internal/codec"
	"medexpenses/internal/models"
	"medexpenses/internal/repository"
)

type PatientService interface {
	List(ctx context.Context) ([]models.PatientSummary, error)
	Get(ctx context.Context, id uint) (*models.PatientDetail, error)
	Create(ctx context.Context, input models.PatientInput) (*models.PatientDetail, error)
	Update(ctx context.Context, id uint, patch models.PatientPatch) (*models.PatientDetail, error)
	Delete(ctx context.Context, id uint) (*models.PatientDetail, error)
	Regions(ctx context.Context) ([]models.Region, error)
	Smokers(ctx context.Context) ([]models.Smoker, error)
	Sexes(ctx context.Context) ([]models.Sex, error)
}

type patientService struct {
	store repository.Store
	codec *codec.Codec
}

func NewPatientService(store repository.Store, c *codec.Codec) PatientService {
	return &patientService{store: store, codec: c}
}

func (s *patientService) List(ctx context.Context) ([]models.PatientSummary, error) {
	patients, err := s.store.Patients().FindAll(ctx)
	if err != nil {
		return nil, err
	}

	l, err := loadPatientLabels(ctx, s.store.Lookups())
	if err != nil {
		return nil, err
	}

	out := make([]models.PatientSummary, 0, len(patients))
	for i := range patients {
		d, err := s.decrypt(&patients[i])
		if err != nil {
			return nil, err
		}
		out = append(out, models.PatientSummary{
			ID:        d.ID,
			LastName:  d.LastName,
			FirstName: d.FirstName,
			Age:       d.Age,
			BMI:       d.BMI,
			Email:     d.Email,
			Children:  d.Children,
			Charges:   d.Charges,
			Region:    l.region(d.Region),
			Smoker:    l.smoker(d.Smoker),
			Sex:       l.sex(d.Sex),
		})
	}
	return out, nil
}

func (s *patientService) Get(ctx context.Context, id uint) (*models.PatientDetail, error) {
	p, err := s.store.Patients().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.decrypt(p)
}

func (s *patientService) Create(ctx context.Context, input models.PatientInput) (*models.PatientDetail, error) {
	if input.Region == nil || input.Smoker == nil || input.Sex == nil {
		return nil, fmt.Errorf("region, smoker and sex are required: %w", apperr.ErrInvalidInput)
	}

	p := &models.Patient{
		Age:      input.Age,
		BMI:      input.BMI,
		Children: input.Children,
		Charges:  input.Charges,
		RegionID: *input.Region,
		SmokerID: *input.Smoker,
		SexID:    *input.Sex,
	}
	if err := s.seal(p, input.LastName, input.FirstName, input.Email); err != nil {
		return nil, err
	}

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := checkPatientReferences(ctx, tx.Lookups(), p); err != nil {
			return err
		}
		taken, err := tx.Patients().EmailIndexTaken(ctx, p.EmailIndex, 0)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("patient email already registered: %w", apperr.ErrConflict)
		}
		return tx.Patients().Create(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	return &models.PatientDetail{
		ID:        p.ID,
		LastName:  input.LastName,
		FirstName: input.FirstName,
		Age:       p.Age,
		BMI:       p.BMI,
		Email:     input.Email,
		Children:  p.Children,
		Charges:   p.Charges,
		Region:    p.RegionID,
		Smoker:    p.SmokerID,
		Sex:       p.SexID,
	}, nil
}

func (s *patientService) Update(ctx context.Context, id uint, patch models.PatientPatch) (*models.PatientDetail, error) {
	var updated *models.Patient

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		p, err := tx.Patients().FindByID(ctx, id)
		if err != nil {
			return err
		}

		if patch.LastName != nil {
			if p.LastName, err = s.codec.Encrypt(*patch.LastName); err != nil {
				return err
			}
		}
		if patch.FirstName != nil {
			if p.FirstName, err = s.codec.Encrypt(*patch.FirstName); err != nil {
				return err
			}
		}
		if patch.Email != nil {
			if p.Email, err = s.codec.Encrypt(*patch.Email); err != nil {
				return err
			}
			p.EmailIndex = codec.BlindIndex(*patch.Email)
			taken, err := tx.Patients().EmailIndexTaken(ctx, p.EmailIndex, p.ID)
			if err != nil {
				return err
			}
			if taken {
				return fmt.Errorf("patient email already registered: %w", apperr.ErrConflict)
			}
		}
		if patch.Age != nil {
			p.Age = *patch.Age
		}
		if patch.BMI != nil {
			p.BMI = *patch.BMI
		}
		if patch.Children != nil {
			p.Children = *patch.Children
		}
		if patch.Charges != nil {
			p.Charges = *patch.Charges
		}
		if patch.Region != nil {
			p.RegionID = *patch.Region
		}
		if patch.Smoker != nil {
			p.SmokerID = *patch.Smoker
		}
		if patch.Sex != nil {
			p.SexID = *patch.Sex
		}

		if patch.Region != nil || patch.Smoker != nil || patch.Sex != nil {
			if err := checkPatientReferences(ctx, tx.Lookups(), p); err != nil {
				return err
			}
		}

		if err := tx.Patients().Save(ctx, p); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.decrypt(updated)
}

func (s *patientService) Delete(ctx context.Context, id uint) (*models.PatientDetail, error) {
	var last *models.PatientDetail

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		p, err := tx.Patients().FindByID(ctx, id)
		if err != nil {
			return err
		}
		// a row that no longer decrypts can still be removed
		if last, err = s.decrypt(p); err != nil {
			last = &models.PatientDetail{ID: p.ID, Age: p.Age, BMI: p.BMI, Children: p.Children,
				Charges: p.Charges, Region: p.RegionID, Smoker: p.SmokerID, Sex: p.SexID}
		}
		return tx.Patients().Delete(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return last, nil
}

func (s *patientService) Regions(ctx context.Context) ([]models.Region, error) {
	return s.store.Lookups().Regions(ctx)
}

func (s *patientService) Smokers(ctx context.Context) ([]models.Smoker, error) {
	return s.store.Lookups().Smokers(ctx)
}

func (s *patientService) Sexes(ctx context.Context) ([]models.Sex, error) {
	return s.store.Lookups().Sexes(ctx)
}

func (s *patientService) seal(p *models.Patient, lastName, firstName, email string) error {
	var err error
	if p.LastName, err = s.codec.Encrypt(lastName); err != nil {
		return err
	}
	if p.FirstName, err = s.codec.Encrypt(firstName); err != nil {
		return err
	}
	if p.Email, err = s.codec.Encrypt(email); err != nil {
		return err
	}
	p.EmailIndex = codec.BlindIndex(email)
	return nil
}

func (s *patientService) decrypt(p *models.Patient) (*models.PatientDetail, error) {
	lastName, err := s.codec.Decrypt(p.LastName)
	if err != nil {
		return nil, fmt.Errorf("patient %d last name: %w", p.ID, err)
	}
	firstName, err := s.codec.Decrypt(p.FirstName)
	if err != nil {
		return nil, fmt.Errorf("patient %d first name: %w", p.ID, err)
	}
	email, err := s.codec.Decrypt(p.Email)
	if err != nil {
		return nil, fmt.Errorf("patient %d email: %w", p.ID, err)
	}
	return &models.PatientDetail{
		ID:        p.ID,
		LastName:  lastName,
		FirstName: firstName,
		Age:       p.Age,
		BMI:       p.BMI,
		Email:     email,
		Children:  p.Children,
		Charges:   p.Charges,
		Region:    p.RegionID,
		Smoker:    p.SmokerID,
		Sex:       p.SexID,
	}, nil
}

func checkPatientReferences(ctx context.Context, lookups repository.LookupRepository, p *models.Patient) error {
	checks := []struct {
		name   string
		id     uint
		exists func(context.Context, uint) (bool, error)
	}{
		{"region", p.RegionID, lookups.RegionExists},
		{"smoker", p.SmokerID, lookups.SmokerExists},
		{"sex", p.SexID, lookups.SexExists},
	}
	for _, c := range checks {
		ok, err := c.exists(ctx, c.id)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%s %d does not exist: %w", c.name, c.id, apperr.ErrInvalidReference)
		}
	}
	return nil
}
