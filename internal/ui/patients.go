package ui

import (
	"context"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"medexpenses/internal/models"
)

var patientFields = []string{"last_name", "first_name", "age", "bmi", "email", "children", "charges", "region", "smoker", "sex"}

func (h *Handler) PatientList(c *gin.Context) {
	patients, err := h.api.ListPatients(c.Request.Context(), h.token(c))
	if err != nil {
		h.fail(c, "patients.html", nil, err)
		return
	}
	h.render(c, "patients.html", gin.H{"Patients": patients, "Flash": c.Query("flash")})
}

// lookups fills the select boxes of the patient form.
func (h *Handler) lookups(ctx context.Context, token string, data gin.H) error {
	regions, err := h.api.Regions(ctx, token)
	if err != nil {
		return err
	}
	smokers, err := h.api.Smokers(ctx, token)
	if err != nil {
		return err
	}
	sexes, err := h.api.Sexes(ctx, token)
	if err != nil {
		return err
	}
	data["Regions"], data["Smokers"], data["Sexes"] = regions, smokers, sexes
	return nil
}

func readPatientForm(c *gin.Context) (models.PatientInput, error) {
	f := &formReader{c: c}
	input := models.PatientInput{
		LastName:  f.text("last_name"),
		FirstName: f.text("first_name"),
		Age:       f.int("age"),
		BMI:       f.float("bmi"),
		Email:     f.text("email"),
		Children:  f.int("children"),
		Charges:   f.float("charges"),
		Region:    f.id("region"),
		Smoker:    f.id("smoker"),
		Sex:       f.id("sex"),
	}
	return input, f.err()
}

func (h *Handler) PatientNewPage(c *gin.Context) {
	data := gin.H{"Form": gin.H{}}
	if err := h.lookups(c.Request.Context(), h.token(c), data); err != nil {
		h.fail(c, "patient_form.html", data, err)
		return
	}
	h.render(c, "patient_form.html", data)
}

func (h *Handler) PatientCreate(c *gin.Context) {
	ctx, token := c.Request.Context(), h.token(c)
	data := gin.H{"Form": formValues(c, patientFields...)}
	if err := h.lookups(ctx, token, data); err != nil {
		h.fail(c, "patient_form.html", data, err)
		return
	}

	input, err := readPatientForm(c)
	if err != nil {
		h.fail(c, "patient_form.html", data, err)
		return
	}
	resp, err := h.api.CreatePatient(ctx, token, input)
	if err != nil {
		h.fail(c, "patient_form.html", data, err)
		return
	}

	data["Flash"] = fmt.Sprintf("%s (id %d)", resp.ResponseMessage, resp.ID)
	data["Form"] = gin.H{}
	h.render(c, "patient_form.html", data)
}

func patientForm(p *models.PatientDetail) gin.H {
	return gin.H{
		"id":         p.ID,
		"last_name":  p.LastName,
		"first_name": p.FirstName,
		"age":        p.Age,
		"bmi":        p.BMI,
		"email":      p.Email,
		"children":   p.Children,
		"charges":    p.Charges,
		"region":     strconv.FormatUint(uint64(p.Region), 10),
		"smoker":     strconv.FormatUint(uint64(p.Smoker), 10),
		"sex":        strconv.FormatUint(uint64(p.Sex), 10),
	}
}

// PatientEditPage asks for an id first, then shows the record to edit.
func (h *Handler) PatientEditPage(c *gin.Context) {
	ctx, token := c.Request.Context(), h.token(c)
	pick := gin.H{"Action": "/patients/edit", "Verb": "Edit"}

	id, ok, err := formID(c)
	if err != nil {
		h.fail(c, "patient_pick.html", pick, err)
		return
	}
	if !ok {
		h.render(c, "patient_pick.html", pick)
		return
	}

	patient, err := h.api.GetPatient(ctx, token, id)
	if err != nil {
		h.fail(c, "patient_pick.html", pick, err)
		return
	}
	data := gin.H{"Edit": true, "Form": patientForm(patient)}
	if err := h.lookups(ctx, token, data); err != nil {
		h.fail(c, "patient_form.html", data, err)
		return
	}
	h.render(c, "patient_form.html", data)
}

func (h *Handler) PatientUpdate(c *gin.Context) {
	ctx, token := c.Request.Context(), h.token(c)
	form := formValues(c, patientFields...)
	form["id"] = c.PostForm("id")
	data := gin.H{"Edit": true, "Form": form}
	if err := h.lookups(ctx, token, data); err != nil {
		h.fail(c, "patient_form.html", data, err)
		return
	}

	id, err := requireID(c)
	if err != nil {
		h.fail(c, "patient_form.html", data, err)
		return
	}
	input, err := readPatientForm(c)
	if err != nil {
		h.fail(c, "patient_form.html", data, err)
		return
	}

	patch := models.PatientPatch{
		LastName:  &input.LastName,
		FirstName: &input.FirstName,
		Age:       &input.Age,
		BMI:       &input.BMI,
		Email:     &input.Email,
		Children:  &input.Children,
		Charges:   &input.Charges,
		Region:    input.Region,
		Smoker:    input.Smoker,
		Sex:       input.Sex,
	}
	resp, err := h.api.UpdatePatient(ctx, token, id, patch)
	if err != nil {
		h.fail(c, "patient_form.html", data, err)
		return
	}
	data["Flash"] = resp.ResponseMessage
	h.render(c, "patient_form.html", data)
}

// PatientDeletePage asks for an id, then shows the record for confirmation.
func (h *Handler) PatientDeletePage(c *gin.Context) {
	pick := gin.H{"Action": "/patients/delete", "Verb": "Delete"}
	id, ok, err := formID(c)
	if err != nil {
		h.fail(c, "patient_pick.html", pick, err)
		return
	}
	if !ok {
		h.render(c, "patient_pick.html", pick)
		return
	}

	patient, err := h.api.GetPatient(c.Request.Context(), h.token(c), id)
	if err != nil {
		h.fail(c, "patient_pick.html", pick, err)
		return
	}
	h.render(c, "patient_confirm.html", gin.H{"Patient": patient})
}

func (h *Handler) PatientDelete(c *gin.Context) {
	pick := gin.H{"Action": "/patients/delete", "Verb": "Delete"}
	id, err := requireID(c)
	if err != nil {
		h.fail(c, "patient_pick.html", pick, err)
		return
	}

	resp, err := h.api.DeletePatient(c.Request.Context(), h.token(c), id)
	if err != nil {
		h.fail(c, "patient_pick.html", pick, err)
		return
	}
	pick["Flash"] = resp.ResponseMessage
	h.render(c, "patient_pick.html", pick)
}
