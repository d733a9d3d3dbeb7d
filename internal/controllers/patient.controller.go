package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"medexpenses/internal/models"
	"medexpenses/internal/services"
)

type PatientController struct {
	service services.PatientService
}

func NewPatientController(service services.PatientService) *PatientController {
	return &PatientController{service: service}
}

// GetPatients godoc
// @Summary List patients
// @Description Every patient with decrypted names and resolved region, smoker and sex labels
// @Tags patients
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.PatientSummary
// @Failure 500 {object} models.ErrorResponse
// @Router /patients [get]
func (pc *PatientController) GetPatients(c *gin.Context) {
	patients, err := pc.service.List(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to retrieve patients")
		return
	}
	c.JSON(http.StatusOK, patients)
}

// GetPatientByID godoc
// @Summary Get a patient
// @Description Decrypted patient record with raw lookup ids
// @Tags patients
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Patient ID"
// @Success 200 {object} models.PatientDetail
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /patients/{id} [get]
func (pc *PatientController) GetPatientByID(c *gin.Context) {
	id, ok := parseID(c, "patient")
	if !ok {
		return
	}

	patient, err := pc.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Patient not found")
		return
	}
	c.JSON(http.StatusOK, patient)
}

// CreatePatient godoc
// @Summary Add a patient
// @Tags patients
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param patient body models.PatientInput true "Patient data"
// @Success 201 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse "Email already registered"
// @Failure 422 {object} models.ErrorResponse "Unknown region, smoker or sex"
// @Router /patients [post]
func (pc *PatientController) CreatePatient(c *gin.Context) {
	var input models.PatientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		invalidRequest(c, err)
		return
	}

	patient, err := pc.service.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, err, "Failed to add patient")
		return
	}

	c.JSON(http.StatusCreated, models.MessageResponse{
		ResponseMessage: "New patient added.",
		ID:              patient.ID,
	})
}

// UpdatePatient godoc
// @Summary Update a patient
// @Description Only the fields present in the body are changed
// @Tags patients
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Patient ID"
// @Param patient body models.PatientPatch true "Fields to change"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Router /patients/{id} [put]
func (pc *PatientController) UpdatePatient(c *gin.Context) {
	id, ok := parseID(c, "patient")
	if !ok {
		return
	}

	var patch models.PatientPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		invalidRequest(c, err)
		return
	}

	if _, err := pc.service.Update(c.Request.Context(), id, patch); err != nil {
		respondError(c, err, "Failed to update patient")
		return
	}
	c.JSON(http.StatusOK, models.MessageResponse{ResponseMessage: "Patient updated successfully."})
}

// DeletePatient godoc
// @Summary Delete a patient
// @Tags patients
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Patient ID"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /patients/{id} [delete]
func (pc *PatientController) DeletePatient(c *gin.Context) {
	id, ok := parseID(c, "patient")
	if !ok {
		return
	}

	if _, err := pc.service.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to delete patient")
		return
	}
	c.JSON(http.StatusOK, models.MessageResponse{ResponseMessage: "Patient deleted successfully."})
}

// GetRegions godoc
// @Summary List regions
// @Tags patients
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.Region
// @Router /patients/regions [get]
func (pc *PatientController) GetRegions(c *gin.Context) {
	regions, err := pc.service.Regions(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to retrieve regions")
		return
	}
	c.JSON(http.StatusOK, regions)
}

// GetSmokers godoc
// @Summary List smoker statuses
// @Tags patients
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.Smoker
// @Router /patients/smokers [get]
func (pc *PatientController) GetSmokers(c *gin.Context) {
	smokers, err := pc.service.Smokers(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to retrieve smoker statuses")
		return
	}
	c.JSON(http.StatusOK, smokers)
}

// GetSexes godoc
// @Summary List sexes
// @Tags patients
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.Sex
// @Router /patients/sexes [get]
func (pc *PatientController) GetSexes(c *gin.Context) {
	sexes, err := pc.service.Sexes(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to retrieve sexes")
		return
	}
	c.JSON(http.StatusOK, sexes)
}
