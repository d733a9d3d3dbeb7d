package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"medexpenses/internal/apperr"
	"medexpenses/internal/ml"
	"medexpenses/internal/mocks"
	"medexpenses/internal/models"
	"medexpenses/internal/services"
)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func doJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf []byte
	switch b := body.(type) {
	case nil:
	case string:
		buf = []byte(b)
	default:
		buf, _ = json.Marshal(b)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(buf))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func patientRouter(svc *mocks.MockPatientService) *gin.Engine {
	pc := NewPatientController(svc)
	router := setupTestRouter()
	router.GET("/patients", pc.GetPatients)
	router.POST("/patients", pc.CreatePatient)
	router.GET("/patients/regions", pc.GetRegions)
	router.GET("/patients/smokers", pc.GetSmokers)
	router.GET("/patients/sexes", pc.GetSexes)
	router.GET("/patients/:id", pc.GetPatientByID)
	router.PUT("/patients/:id", pc.UpdatePatient)
	router.DELETE("/patients/:id", pc.DeletePatient)
	return router
}

func johnDoeBody() map[string]interface{} {
	return map[string]interface{}{
		"last_name":  "Doe",
		"first_name": "John",
		"age":        24,
		"bmi":        18.1,
		"email":      "john.doe@gmail.com",
		"children":   1,
		"charges":    3000.00,
		"region":     1,
		"smoker":     0,
		"sex":        1,
	}
}

func TestCreatePatient(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		setupMock      func(*mocks.MockPatientService)
		expectedStatus int
		expectedKey    string
		expectedMsg    string
	}{
		{
			name: "successful creation",
			body: johnDoeBody(),
			setupMock: func(m *mocks.MockPatientService) {
				m.On("Create", mock.Anything, mock.MatchedBy(func(in models.PatientInput) bool {
					return in.LastName == "Doe" && *in.Region == 1 && *in.Smoker == 0 && *in.Sex == 1
				})).Return(&models.PatientDetail{ID: 5, LastName: "Doe"}, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedKey:    "response_message",
			expectedMsg:    "New patient added.",
		},
		{
			name:           "invalid JSON",
			body:           "invalid json",
			setupMock:      func(m *mocks.MockPatientService) {},
			expectedStatus: http.StatusBadRequest,
			expectedKey:    "message",
			expectedMsg:    "Invalid request data",
		},
		{
			name: "missing email",
			body: func() map[string]interface{} {
				b := johnDoeBody()
				delete(b, "email")
				return b
			}(),
			setupMock:      func(m *mocks.MockPatientService) {},
			expectedStatus: http.StatusBadRequest,
			expectedKey:    "message",
			expectedMsg:    "Invalid request data",
		},
		{
			name: "unknown lookup",
			body: johnDoeBody(),
			setupMock: func(m *mocks.MockPatientService) {
				m.On("Create", mock.Anything, mock.Anything).
					Return(nil, fmt.Errorf("region 1 does not exist: %w", apperr.ErrInvalidReference))
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedKey:    "message",
			expectedMsg:    "Failed to add patient",
		},
		{
			name: "duplicate email",
			body: johnDoeBody(),
			setupMock: func(m *mocks.MockPatientService) {
				m.On("Create", mock.Anything, mock.Anything).Return(nil, apperr.ErrConflict)
			},
			expectedStatus: http.StatusConflict,
			expectedKey:    "message",
			expectedMsg:    "Failed to add patient",
		},
		{
			name: "store error",
			body: johnDoeBody(),
			setupMock: func(m *mocks.MockPatientService) {
				m.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("database error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedKey:    "message",
			expectedMsg:    "Failed to add patient",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mocks.MockPatientService)
			tt.setupMock(svc)

			w := doJSON(patientRouter(svc), http.MethodPost, "/patients", tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedMsg, decode(t, w)[tt.expectedKey])
			svc.AssertExpectations(t)
		})
	}
}

func TestCreatePatient_ReturnsID(t *testing.T) {
	svc := new(mocks.MockPatientService)
	svc.On("Create", mock.Anything, mock.Anything).Return(&models.PatientDetail{ID: 5}, nil)

	w := doJSON(patientRouter(svc), http.MethodPost, "/patients", johnDoeBody())

	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"response_message":"New patient added.","id":5}`, w.Body.String())
}

func TestGetPatients(t *testing.T) {
	svc := new(mocks.MockPatientService)
	svc.On("List", mock.Anything).Return([]models.PatientSummary{
		{ID: 1, LastName: "Doe", FirstName: "John", Region: "northwest", Smoker: "no", Sex: "female"},
	}, nil)

	w := doJSON(patientRouter(svc), http.MethodGet, "/patients", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var got []models.PatientSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "northwest", got[0].Region)
}

func TestGetPatientByID(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		setupMock      func(*mocks.MockPatientService)
		expectedStatus int
	}{
		{
			name: "found",
			path: "/patients/3",
			setupMock: func(m *mocks.MockPatientService) {
				m.On("Get", mock.Anything, uint(3)).Return(&models.PatientDetail{ID: 3, LastName: "Doe"}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "not found",
			path: "/patients/4",
			setupMock: func(m *mocks.MockPatientService) {
				m.On("Get", mock.Anything, uint(4)).Return(nil, fmt.Errorf("patient 4: %w", apperr.ErrNotFound))
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "undecryptable",
			path: "/patients/5",
			setupMock: func(m *mocks.MockPatientService) {
				m.On("Get", mock.Anything, uint(5)).Return(nil, apperr.ErrDecryptionFailure)
			},
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:           "bad id",
			path:           "/patients/abc",
			setupMock:      func(m *mocks.MockPatientService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mocks.MockPatientService)
			tt.setupMock(svc)

			w := doJSON(patientRouter(svc), http.MethodGet, tt.path, nil)

			assert.Equal(t, tt.expectedStatus, w.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestUpdatePatient(t *testing.T) {
	svc := new(mocks.MockPatientService)
	svc.On("Update", mock.Anything, uint(3), mock.MatchedBy(func(p models.PatientPatch) bool {
		return p.LastName != nil && *p.LastName == "Smith" && p.FirstName == nil && p.Age == nil
	})).Return(&models.PatientDetail{ID: 3}, nil)

	w := doJSON(patientRouter(svc), http.MethodPut, "/patients/3", map[string]interface{}{"last_name": "Smith"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Patient updated successfully.", decode(t, w)["response_message"])
	svc.AssertExpectations(t)
}

func TestUpdatePatient_InvalidEmail(t *testing.T) {
	svc := new(mocks.MockPatientService)

	w := doJSON(patientRouter(svc), http.MethodPut, "/patients/3", map[string]interface{}{"email": "not-an-email"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeletePatient(t *testing.T) {
	svc := new(mocks.MockPatientService)
	svc.On("Delete", mock.Anything, uint(3)).Return(&models.PatientDetail{ID: 3}, nil).Once()
	svc.On("Delete", mock.Anything, uint(3)).Return(nil, apperr.ErrNotFound).Once()
	router := patientRouter(svc)

	w := doJSON(router, http.MethodDelete, "/patients/3", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Patient deleted successfully.", decode(t, w)["response_message"])

	w = doJSON(router, http.MethodDelete, "/patients/3", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "error", decode(t, w)["status"])
}

func TestPatientLookups(t *testing.T) {
	svc := new(mocks.MockPatientService)
	svc.On("Regions", mock.Anything).Return(models.DefaultRegions, nil)
	svc.On("Smokers", mock.Anything).Return(models.DefaultSmokers, nil)
	svc.On("Sexes", mock.Anything).Return(models.DefaultSexes, nil)
	router := patientRouter(svc)

	w := doJSON(router, http.MethodGet, "/patients/regions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `{"id":0,"region_name":"northeast"}`)

	w = doJSON(router, http.MethodGet, "/patients/smokers", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `{"id":1,"is_smoker":"yes"}`)

	w = doJSON(router, http.MethodGet, "/patients/sexes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `{"id":1,"sex_label":"female"}`)
}

func userRouter(svc *mocks.MockUserService, auth *mocks.MockAuthService) *gin.Engine {
	uc := NewUserController(svc, auth)
	router := setupTestRouter()
	router.POST("/users/auth", uc.Authenticate)
	router.GET("/users", uc.GetUsers)
	router.POST("/users", uc.CreateUser)
	router.GET("/users/roles", uc.GetRoles)
	router.GET("/users/:id", uc.GetUserByID)
	router.PUT("/users/:id", uc.UpdateUser)
	router.DELETE("/users/:id", uc.DeleteUser)
	return router
}

func TestAuthenticate(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		setupMock      func(*mocks.MockAuthService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "authenticated",
			body: map[string]string{"username": "JohnShepard2", "password": "Gsd234@"},
			setupMock: func(m *mocks.MockAuthService) {
				m.On("Authenticate", mock.Anything, "JohnShepard2", "Gsd234@").
					Return(services.AuthResult{Authenticated: true, Message: services.MsgAuthenticated}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"response_message":"User authenticated."}`,
		},
		{
			name: "authenticated with token",
			body: map[string]string{"username": "JohnShepard2", "password": "Gsd234@"},
			setupMock: func(m *mocks.MockAuthService) {
				m.On("Authenticate", mock.Anything, "JohnShepard2", "Gsd234@").
					Return(services.AuthResult{Authenticated: true, Message: services.MsgAuthenticated, Token: "t0k"}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"response_message":"User authenticated.","token":"t0k"}`,
		},
		{
			name: "wrong password",
			body: map[string]string{"username": "JohnShepard2", "password": "wrong"},
			setupMock: func(m *mocks.MockAuthService) {
				m.On("Authenticate", mock.Anything, "JohnShepard2", "wrong").
					Return(services.AuthResult{Message: services.MsgWrongLogin}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"response_message":"Wrong username or password."}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := new(mocks.MockAuthService)
			tt.setupMock(auth)

			w := doJSON(userRouter(new(mocks.MockUserService), auth), http.MethodPost, "/users/auth", tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
			auth.AssertExpectations(t)
		})
	}
}

func TestAuthenticate_MissingPassword(t *testing.T) {
	auth := new(mocks.MockAuthService)
	w := doJSON(userRouter(new(mocks.MockUserService), auth), http.MethodPost, "/users/auth", map[string]string{"username": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	auth.AssertNotCalled(t, "Authenticate", mock.Anything, mock.Anything, mock.Anything)
}

func TestUserEndpoints(t *testing.T) {
	svc := new(mocks.MockUserService)
	svc.On("List", mock.Anything).Return([]models.AppUserSummary{{ID: 1, Username: "JohnDoe", RoleName: "patient"}}, nil)
	svc.On("Roles", mock.Anything).Return(models.DefaultRoles, nil)
	svc.On("Create", mock.Anything, mock.Anything).Return(&models.AppUserDetail{ID: 13}, nil)
	svc.On("Get", mock.Anything, uint(13)).Return(&models.AppUserDetail{ID: 13, Username: "JohnDoe", RoleID: 2}, nil)
	svc.On("Update", mock.Anything, uint(13), mock.Anything).Return(&models.AppUserDetail{ID: 13}, nil)
	svc.On("Delete", mock.Anything, uint(13)).Return(&models.AppUserDetail{ID: 13}, nil)
	router := userRouter(svc, new(mocks.MockAuthService))

	w := doJSON(router, http.MethodGet, "/users", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"id":1,"username":"JohnDoe","email":"","role_name":"patient"}]`, w.Body.String())

	w = doJSON(router, http.MethodGet, "/users/roles", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role_name":"medic"`)

	w = doJSON(router, http.MethodPost, "/users", map[string]interface{}{
		"username": "JohnDoe", "password": "Gsd234@", "email": "john.doe@gmail.com", "role_id": 2,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"response_message":"New user added.","id":13}`, w.Body.String())

	w = doJSON(router, http.MethodGet, "/users/13", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "JohnDoe", decode(t, w)["username"])

	w = doJSON(router, http.MethodPut, "/users/13", map[string]interface{}{"email": "new@gmail.com"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "User updated successfully.", decode(t, w)["response_message"])

	w = doJSON(router, http.MethodDelete, "/users/13", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "User deleted successfully.", decode(t, w)["response_message"])

	svc.AssertExpectations(t)
}

func TestCreateUser_Errors(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{"unknown role", apperr.ErrInvalidReference, http.StatusUnprocessableEntity},
		{"username taken", apperr.ErrConflict, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mocks.MockUserService)
			svc.On("Create", mock.Anything, mock.Anything).Return(nil, tt.err)

			w := doJSON(userRouter(svc, new(mocks.MockAuthService)), http.MethodPost, "/users", map[string]interface{}{
				"username": "JohnDoe", "password": "Gsd234@", "email": "john.doe@gmail.com", "role_id": 9,
			})
			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, "Failed to add user", decode(t, w)["message"])
		})
	}
}

func TestPredictCharges(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMock      func(*mocks.MockPredictor)
		expectedStatus int
		expectedMsg    string
	}{
		{
			name: "numbers as strings",
			body: `{"age":"35","sex":"female","bmi":"18.2","children":"0","smoker":"no","region":"southwest"}`,
			setupMock: func(m *mocks.MockPredictor) {
				m.On("Predict", mock.Anything, models.PredictionRequest{
					Age: "35", Sex: "female", BMI: "18.2", Children: "0", Smoker: "no", Region: "southwest",
				}).Return(ml.Prediction{Charges: 2397.83}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedMsg:    "Charges prediction: 2397.83",
		},
		{
			name: "numbers as numbers",
			body: `{"age":35,"sex":"female","bmi":18.2,"children":0,"smoker":"no","region":"southwest"}`,
			setupMock: func(m *mocks.MockPredictor) {
				m.On("Predict", mock.Anything, models.PredictionRequest{
					Age: "35", Sex: "female", BMI: "18.2", Children: "0", Smoker: "no", Region: "southwest",
				}).Return(ml.Prediction{Charges: 2397.83, Cached: true}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedMsg:    "Charges prediction: 2397.83",
		},
		{
			name: "malformed number",
			body: `{"age":"abc","sex":"female","bmi":"18.2","children":"0","smoker":"no","region":"southwest"}`,
			setupMock: func(m *mocks.MockPredictor) {
				m.On("Predict", mock.Anything, mock.Anything).Return(ml.Prediction{}, apperr.ErrInvalidInput)
			},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "Prediction failed",
		},
		{
			name: "model unavailable",
			body: `{"age":"35"}`,
			setupMock: func(m *mocks.MockPredictor) {
				m.On("Predict", mock.Anything, mock.Anything).Return(ml.Prediction{}, apperr.ErrModelUnavailable)
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedMsg:    "Prediction failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			predictor := new(mocks.MockPredictor)
			tt.setupMock(predictor)

			router := setupTestRouter()
			router.POST("/ai/charges_prediction", NewPredictionController(predictor).PredictCharges)
			w := doJSON(router, http.MethodPost, "/ai/charges_prediction", tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			response := decode(t, w)
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, tt.expectedMsg, response["response_message"])
				assert.Equal(t, 2397.83, response["charges"])
			} else {
				assert.Equal(t, tt.expectedMsg, response["message"])
			}
			predictor.AssertExpectations(t)
		})
	}
}

func TestHealth(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name           string
		database       Pinger
		cache          Pinger
		expectedStatus int
		expectedBody   string
	}{
		{"healthy", ok, nil, http.StatusOK, `{"status":"healthy","database":"ok"}`},
		{"with cache", ok, ok, http.StatusOK, `{"status":"healthy","database":"ok","cache":"ok"}`},
		{"cache down", ok, down, http.StatusOK, `{"status":"healthy","database":"ok","cache":"unreachable"}`},
		{"database down", down, nil, http.StatusServiceUnavailable, `{"status":"unhealthy","database":"unreachable","error":"connection refused"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter()
			router.GET("/health", NewHealthController(tt.database, tt.cache).Health)
			w := doJSON(router, http.MethodGet, "/health", nil)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}
