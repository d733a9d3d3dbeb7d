package repository

import (
	"context"

	"gorm.io/gorm"

	"medexpenses/internal/models"
)

type PatientRepository interface {
	FindAll(ctx context.Context) ([]models.Patient, error)
	FindByID(ctx context.Context, id uint) (*models.Patient, error)
	Create(ctx context.Context, patient *models.Patient) error
	Save(ctx context.Context, patient *models.Patient) error
	Delete(ctx context.Context, id uint) error
	EmailIndexTaken(ctx context.Context, emailIndex string, exceptID uint) (bool, error)
	Count(ctx context.Context) (int64, error)
}

type patientRepository struct {
	db *gorm.DB
}

func NewPatientRepository(db *gorm.DB) PatientRepository {
	return &patientRepository{db: db}
}

func (r *patientRepository) FindAll(ctx context.Context) ([]models.Patient, error) {
	var patients []models.Patient
	err := r.db.WithContext(ctx).Order("id").Find(&patients).Error
	return patients, translate(err, "list patients")
}

func (r *patientRepository) FindByID(ctx context.Context, id uint) (*models.Patient, error) {
	var patient models.Patient
	if err := r.db.WithContext(ctx).First(&patient, id).Error; err != nil {
		return nil, translate(err, "patient %d", id)
	}
	return &patient, nil
}

func (r *patientRepository) Create(ctx context.Context, patient *models.Patient) error {
	err := r.db.WithContext(ctx).Omit("Region", "Smoker", "Sex").Create(patient).Error
	return translate(err, "create patient")
}

func (r *patientRepository) Save(ctx context.Context, patient *models.Patient) error {
	err := r.db.WithContext(ctx).Omit("Region", "Smoker", "Sex").Save(patient).Error
	return translate(err, "update patient %d", patient.ID)
}

func (r *patientRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Patient{}, id)
	if res.Error != nil {
		return translate(res.Error, "delete patient %d", id)
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "patient %d", id)
	}
	return nil
}

func (r *patientRepository) EmailIndexTaken(ctx context.Context, emailIndex string, exceptID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Patient{}).
		Where("email_index = ? AND id <> ?", emailIndex, exceptID).
		Count(&count).Error
	return count > 0, translate(err, "check patient email")
}

func (r *patientRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Patient{}).Count(&count).Error
	return count, translate(err, "count patients")
}
