package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medexpenses/database"
	"medexpenses/internal/codec"
	"medexpenses/internal/controllers"
	"medexpenses/internal/ml"
	"medexpenses/internal/models"
	"medexpenses/internal/repository"
	"medexpenses/internal/services"
)

const testKey = "QZag_vDmlUwshopblUOkEONqD6d5UMDBA0syEPKAnWE="

func setupAPI(t *testing.T, jwtSecret string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := database.ConnectSQLite(database.SQLiteDSN(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)))
	require.NoError(t, err)
	require.NoError(t, database.MigrateDatabase(db))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	c, err := codec.NewCodec(testKey)
	require.NoError(t, err)
	store := repository.NewStore(db)

	return SetupRouter(Controllers{
		Patients:   controllers.NewPatientController(services.NewPatientService(store, c)),
		Users:      controllers.NewUserController(services.NewUserService(store, c), services.NewAuthService(store, c, jwtSecret, time.Hour)),
		Prediction: controllers.NewPredictionController(ml.NewPredictor(ml.NewModelLoader("../data/charges_model.json"), nil)),
		Health:     controllers.NewHealthController(func(ctx context.Context) error { return database.Ping(ctx, db) }, nil),
	}, jwtSecret)
}

func call(router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestPatientLifecycle(t *testing.T) {
	router := setupAPI(t, "")

	w := call(router, http.MethodPost, "/patients", "", map[string]interface{}{
		"last_name": "Doe", "first_name": "John", "age": 24, "bmi": 18.1,
		"email": "john.doe@gmail.com", "children": 1, "charges": 3000.00,
		"region": 1, "smoker": 0, "sex": 1,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created models.MessageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "New patient added.", created.ResponseMessage)
	path := fmt.Sprintf("/patients/%d", created.ID)

	w = call(router, http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail models.PatientDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, "Doe", detail.LastName)
	assert.Equal(t, uint(1), detail.Region)

	w = call(router, http.MethodGet, "/patients", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"region":"northwest"`)
	assert.Contains(t, w.Body.String(), `"smoker":"no"`)

	w = call(router, http.MethodPut, path, "", map[string]interface{}{"smoker": 1})
	require.Equal(t, http.StatusOK, w.Code)

	w = call(router, http.MethodPut, path, "", map[string]interface{}{"region": 9})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = call(router, http.MethodDelete, path, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusNotFound, call(router, http.MethodGet, path, "", nil).Code)
}

func TestAuthAndGuard(t *testing.T) {
	router := setupAPI(t, "jwt-secret")

	assert.Equal(t, http.StatusUnauthorized, call(router, http.MethodGet, "/patients", "", nil).Code)
	assert.Equal(t, http.StatusOK, call(router, http.MethodGet, "/health", "", nil).Code)

	// accounts are guarded too; the first one comes from the seed tool
	assert.Equal(t, http.StatusUnauthorized, call(router, http.MethodPost, "/users", "", nil).Code)

	w := call(router, http.MethodPost, "/users/auth", "", map[string]string{"username": "NoSuchUser", "password": "x"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"response_message":"Wrong username or password."}`, w.Body.String())
}

func TestUsersAndLogin(t *testing.T) {
	router := setupAPI(t, "")

	w := call(router, http.MethodPost, "/users", "", map[string]interface{}{
		"username": "JohnShepard2", "password": "Gsd234@", "email": "shepard@normandy.org", "role_id": 1,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = call(router, http.MethodPost, "/users/auth", "", map[string]string{"username": "JohnShepard2", "password": "Gsd234@"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"response_message":"User authenticated."}`, w.Body.String())

	w = call(router, http.MethodPost, "/users/auth", "", map[string]string{"username": "JohnShepard2", "password": "wrong"})
	assert.JSONEq(t, `{"response_message":"Wrong username or password."}`, w.Body.String())

	w = call(router, http.MethodGet, "/users", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role_name":"medic"`)

	w = call(router, http.MethodGet, "/users/roles", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role_name":"admin"`)
}

func TestPredictionEndpoint(t *testing.T) {
	router := setupAPI(t, "")

	w := call(router, http.MethodPost, "/ai/charges_prediction", "", map[string]string{
		"age": "35", "sex": "female", "bmi": "18.2", "children": "0", "smoker": "no", "region": "southwest",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp models.PredictionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, strings.HasPrefix(resp.ResponseMessage, "Charges prediction: "))
	assert.InDelta(t, 2397.83, resp.Charges, 0.01)
}

func TestPredictionEndpoint_NonFiniteInput(t *testing.T) {
	router := setupAPI(t, "")

	for _, age := range []string{"NaN", "Inf", "1e308"} {
		t.Run(age, func(t *testing.T) {
			w := call(router, http.MethodPost, "/ai/charges_prediction", "", map[string]string{
				"age": age, "sex": "female", "bmi": "18.2", "children": "0", "smoker": "no", "region": "southwest",
			})
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			var body models.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "error", body.Status)
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestSwaggerServed(t *testing.T) {
	router := setupAPI(t, "jwt-secret")
	w := call(router, http.MethodGet, "/swagger/doc.json", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/ai/charges_prediction")
}
