package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"medexpenses/internal/ml"
	"medexpenses/internal/models"
	"medexpenses/internal/services"
)

type MockPatientService struct {
	mock.Mock
}

func (m *MockPatientService) List(ctx context.Context) ([]models.PatientSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PatientSummary), args.Error(1)
}

func (m *MockPatientService) Get(ctx context.Context, id uint) (*models.PatientDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PatientDetail), args.Error(1)
}

func (m *MockPatientService) Create(ctx context.Context, input models.PatientInput) (*models.PatientDetail, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PatientDetail), args.Error(1)
}

func (m *MockPatientService) Update(ctx context.Context, id uint, patch models.PatientPatch) (*models.PatientDetail, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PatientDetail), args.Error(1)
}

func (m *MockPatientService) Delete(ctx context.Context, id uint) (*models.PatientDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PatientDetail), args.Error(1)
}

func (m *MockPatientService) Regions(ctx context.Context) ([]models.Region, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Region), args.Error(1)
}

func (m *MockPatientService) Smokers(ctx context.Context) ([]models.Smoker, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Smoker), args.Error(1)
}

func (m *MockPatientService) Sexes(ctx context.Context) ([]models.Sex, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Sex), args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) List(ctx context.Context) ([]models.AppUserSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AppUserSummary), args.Error(1)
}

func (m *MockUserService) Get(ctx context.Context, id uint) (*models.AppUserDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AppUserDetail), args.Error(1)
}

func (m *MockUserService) Create(ctx context.Context, input models.AppUserInput) (*models.AppUserDetail, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AppUserDetail), args.Error(1)
}

func (m *MockUserService) Update(ctx context.Context, id uint, patch models.AppUserPatch) (*models.AppUserDetail, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AppUserDetail), args.Error(1)
}

func (m *MockUserService) Delete(ctx context.Context, id uint) (*models.AppUserDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AppUserDetail), args.Error(1)
}

func (m *MockUserService) Roles(ctx context.Context) ([]models.UserRole, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.UserRole), args.Error(1)
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Authenticate(ctx context.Context, username, password string) (services.AuthResult, error) {
	args := m.Called(ctx, username, password)
	return args.Get(0).(services.AuthResult), args.Error(1)
}

type MockPredictor struct {
	mock.Mock
}

func (m *MockPredictor) Predict(ctx context.Context, req models.PredictionRequest) (ml.Prediction, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(ml.Prediction), args.Error(1)
}

var (
	_ services.PatientService = (*MockPatientService)(nil)
	_ services.UserService    = (*MockUserService)(nil)
	_ services.AuthService    = (*MockAuthService)(nil)
	_ ml.Predictor            = (*MockPredictor)(nil)
)
