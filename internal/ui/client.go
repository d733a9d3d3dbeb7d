package ui

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"medexpenses/internal/apperr"
	"medexpenses/internal/models"
)

// APIError is a non-2xx answer from the API.
type APIError struct {
	Status  int
	Message string
	Cause   string
}

func (e *APIError) Error() string {
	if e.Cause != "" {
		return fmt.Sprintf("%s (%d): %s", e.Message, e.Status, e.Cause)
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.Status)
}

// APIClient is the only way the UI reaches the data. It never retries.
type APIClient struct {
	http *resty.Client
}

func NewAPIClient(baseURL string, timeout time.Duration) *APIClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return &APIClient{http: client}
}

func (a *APIClient) request(ctx context.Context, token string) *resty.Request {
	req := a.http.R().SetContext(ctx).SetError(&models.ErrorResponse{})
	if token != "" {
		req.SetAuthToken(token)
	}
	return req
}

// do sends req and classifies the outcome.
func do(req *resty.Request, method, path string) error {
	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %v: %w", method, path, err, apperr.ErrUpstreamUnavailable)
	}
	if resp.IsError() {
		apiErr := &APIError{Status: resp.StatusCode(), Message: http.StatusText(resp.StatusCode())}
		if body, ok := resp.Error().(*models.ErrorResponse); ok && body.Message != "" {
			apiErr.Message = body.Message
			apiErr.Cause = body.Error
		}
		return apiErr
	}
	return nil
}

func (a *APIClient) Authenticate(ctx context.Context, username, password string) (*models.AuthResponse, error) {
	var out models.AuthResponse
	req := a.request(ctx, "").
		SetBody(models.Credentials{Username: username, Password: password}).
		SetResult(&out)
	if err := do(req, resty.MethodPost, "/users/auth"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *APIClient) ListPatients(ctx context.Context, token string) ([]models.PatientSummary, error) {
	var out []models.PatientSummary
	if err := do(a.request(ctx, token).SetResult(&out), resty.MethodGet, "/patients"); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *APIClient) GetPatient(ctx context.Context, token string, id uint) (*models.PatientDetail, error) {
	var out models.PatientDetail
	if err := do(a.request(ctx, token).SetResult(&out), resty.MethodGet, patientPath(id)); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *APIClient) CreatePatient(ctx context.Context, token string, input models.PatientInput) (*models.MessageResponse, error) {
	var out models.MessageResponse
	if err := do(a.request(ctx, token).SetBody(input).SetResult(&out), resty.MethodPost, "/patients"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *APIClient) UpdatePatient(ctx context.Context, token string, id uint, patch models.PatientPatch) (*models.MessageResponse, error) {
	var out models.MessageResponse
	if err := do(a.request(ctx, token).SetBody(patch).SetResult(&out), resty.MethodPut, patientPath(id)); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *APIClient) DeletePatient(ctx context.Context, token string, id uint) (*models.MessageResponse, error) {
	var out models.MessageResponse
	if err := do(a.request(ctx, token).SetResult(&out), resty.MethodDelete, patientPath(id)); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *APIClient) Regions(ctx context.Context, token string) ([]models.Region, error) {
	var out []models.Region
	if err := do(a.request(ctx, token).SetResult(&out), resty.MethodGet, "/patients/regions"); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *APIClient) Smokers(ctx context.Context, token string) ([]models.Smoker, error) {
	var out []models.Smoker
	if err := do(a.request(ctx, token).SetResult(&out), resty.MethodGet, "/patients/smokers"); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *APIClient) Sexes(ctx context.Context, token string) ([]models.Sex, error) {
	var out []models.Sex
	if err := do(a.request(ctx, token).SetResult(&out), resty.MethodGet, "/patients/sexes"); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *APIClient) ListUsers(ctx context.Context, token string) ([]models.AppUserSummary, error) {
	var out []models.AppUserSummary
	if err := do(a.request(ctx, token).SetResult(&out), resty.MethodGet, "/users"); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *APIClient) GetUser(ctx context.Context, token string, id uint) (*models.AppUserDetail, error) {
	var out models.AppUserDetail
	if err := do(a.request(ctx, token).SetResult(&out), resty.MethodGet, userPath(id)); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *APIClient) CreateUser(ctx context.Context, token string, input models.AppUserInput) (*models.MessageResponse, error) {
	var out models.MessageResponse
	if err := do(a.request(ctx, token).SetBody(input).SetResult(&out), resty.MethodPost, "/users"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *APIClient) UpdateUser(ctx context.Context, token string, id uint, patch models.AppUserPatch) (*models.MessageResponse, error) {
	var out models.MessageResponse
	if err := do(a.request(ctx, token).SetBody(patch).SetResult(&out), resty.MethodPut, userPath(id)); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *APIClient) DeleteUser(ctx context.Context, token string, id uint) (*models.MessageResponse, error) {
	var out models.MessageResponse
	if err := do(a.request(ctx, token).SetResult(&out), resty.MethodDelete, userPath(id)); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *APIClient) Roles(ctx context.Context, token string) ([]models.UserRole, error) {
	var out []models.UserRole
	if err := do(a.request(ctx, token).SetResult(&out), resty.MethodGet, "/users/roles"); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *APIClient) PredictCharges(ctx context.Context, token string, req models.PredictionRequest) (*models.PredictionResponse, error) {
	var out models.PredictionResponse
	if err := do(a.request(ctx, token).SetBody(req).SetResult(&out), resty.MethodPost, "/ai/charges_prediction"); err != nil {
		return nil, err
	}
	return &out, nil
}

// IsUnauthorized reports whether the API rejected the session token.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

func patientPath(id uint) string { return "/patients/" + strconv.FormatUint(uint64(id), 10) }

func userPath(id uint) string { return "/users/" + strconv.FormatUint(uint64(id), 10) }
