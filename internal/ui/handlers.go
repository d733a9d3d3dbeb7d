package ui

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"medexpenses/internal/apperr"
	"medexpenses/internal/models"
	"medexpenses/internal/services"
)

func (h *Handler) render(c *gin.Context, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if _, ok := data["Form"]; !ok {
		data["Form"] = gin.H{}
	}
	data["Username"] = c.GetString("username")
	c.HTML(http.StatusOK, name, data)
}

// fail shows err inline on the page. A rejected token ends the session.
func (h *Handler) fail(c *gin.Context, name string, data gin.H, err error) {
	if IsUnauthorized(err) {
		h.clearSession(c)
		c.Redirect(http.StatusFound, "/login")
		return
	}
	if data == nil {
		data = gin.H{}
	}
	data["Error"] = errorText(err)
	log.Warn().Err(err).Str("page", name).Str("request_id", c.GetString("request_id")).Msg("page error")
	h.render(c, name, data)
}

func errorText(err error) string {
	var apiErr *APIError
	switch {
	case errors.Is(err, apperr.ErrUpstreamUnavailable):
		return "The API is unreachable. Check that the API server is running and try again."
	case errors.As(err, &apiErr):
		if apiErr.Cause != "" {
			return apiErr.Message + ": " + apiErr.Cause
		}
		return apiErr.Message
	default:
		return err.Error()
	}
}

func (h *Handler) LoginPage(c *gin.Context) {
	h.render(c, "login.html", nil)
}

func (h *Handler) Login(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")
	data := gin.H{"Form": gin.H{"username": username}}

	if username == "" || password == "" {
		data["Error"] = "Username and password are required."
		h.render(c, "login.html", data)
		return
	}

	resp, err := h.api.Authenticate(c.Request.Context(), username, password)
	if err != nil {
		h.fail(c, "login.html", data, err)
		return
	}
	if resp.ResponseMessage != services.MsgAuthenticated {
		data["Error"] = resp.ResponseMessage
		h.render(c, "login.html", data)
		return
	}

	if err := h.setSession(c, username, resp.Token); err != nil {
		h.fail(c, "login.html", data, err)
		return
	}
	c.Redirect(http.StatusFound, "/patients")
}

func (h *Handler) Logout(c *gin.Context) {
	h.clearSession(c)
	c.Redirect(http.StatusFound, "/login")
}

var regionNames = []string{"northeast", "northwest", "southeast", "southwest"}

func (h *Handler) PredictPage(c *gin.Context) {
	h.render(c, "predict.html", gin.H{
		"RegionNames": regionNames,
		"Form":        gin.H{"sex": "female", "smoker": "no", "region": "southwest"},
	})
}

func (h *Handler) Predict(c *gin.Context) {
	req := models.PredictionRequest{
		Age:      models.FlexNumber(strings.TrimSpace(c.PostForm("age"))),
		Sex:      c.PostForm("sex"),
		BMI:      models.FlexNumber(strings.TrimSpace(c.PostForm("bmi"))),
		Children: models.FlexNumber(strings.TrimSpace(c.PostForm("children"))),
		Smoker:   c.PostForm("smoker"),
		Region:   c.PostForm("region"),
	}
	data := gin.H{"RegionNames": regionNames, "Form": gin.H{
		"age": string(req.Age), "sex": req.Sex, "bmi": string(req.BMI),
		"children": string(req.Children), "smoker": req.Smoker, "region": req.Region,
	}}

	resp, err := h.api.PredictCharges(c.Request.Context(), h.token(c), req)
	if err != nil {
		h.fail(c, "predict.html", data, err)
		return
	}
	data["Result"] = resp.ResponseMessage
	h.render(c, "predict.html", data)
}

// formID reads the id of a two-phase page from the query or the form.
func formID(c *gin.Context) (uint, bool, error) {
	raw := strings.TrimSpace(c.Query("id"))
	if raw == "" {
		raw = strings.TrimSpace(c.PostForm("id"))
	}
	if raw == "" {
		return 0, false, nil
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, false, fmt.Errorf("id %q is not a valid number: %w", raw, apperr.ErrInvalidInput)
	}
	return uint(id), true, nil
}

func requireID(c *gin.Context) (uint, error) {
	id, ok, err := formID(c)
	if err == nil && !ok {
		err = fmt.Errorf("an id is required: %w", apperr.ErrInvalidInput)
	}
	return id, err
}

type formReader struct {
	c    *gin.Context
	errs []string
}

func (f *formReader) text(name string) string {
	return strings.TrimSpace(f.c.PostForm(name))
}

func (f *formReader) int(name string) int {
	v, err := strconv.Atoi(f.text(name))
	if err != nil {
		f.errs = append(f.errs, name+" must be a whole number")
	}
	return v
}

func (f *formReader) float(name string) float64 {
	v, err := strconv.ParseFloat(f.text(name), 64)
	if err != nil {
		f.errs = append(f.errs, name+" must be a number")
	}
	return v
}

func (f *formReader) id(name string) *uint {
	v, err := strconv.ParseUint(f.text(name), 10, 32)
	if err != nil {
		f.errs = append(f.errs, name+" must be selected")
		return nil
	}
	u := uint(v)
	return &u
}

func (f *formReader) err() error {
	if len(f.errs) == 0 {
		return nil
	}
	return fmt.Errorf("%s: %w", strings.Join(f.errs, ", "), apperr.ErrInvalidInput)
}

func formValues(c *gin.Context, names ...string) gin.H {
	out := gin.H{}
	for _, n := range names {
		out[n] = c.PostForm(n)
	}
	return out
}
