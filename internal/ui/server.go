package ui

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"medexpenses/internal/middleware"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	tokenCookie = "medexp_token"
	userCookie  = "medexp_user"
)

// Handler serves the browser pages and talks to the API through client.
type Handler struct {
	api          *APIClient
	secureCookie bool
	sessionKey   []byte
}

func NewHandler(api *APIClient, secureCookie bool) *Handler {
	return &Handler{api: api, secureCookie: secureCookie, sessionKey: newSessionKey()}
}

func loadTemplates() (*template.Template, error) {
	funcs := template.FuncMap{
		"money": func(v float64) string { return fmt.Sprintf("%.2f", v) },
	}
	return template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
}

// NewRouter mounts every page on a fresh engine.
func NewRouter(h *Handler) (*gin.Engine, error) {
	tmpl, err := loadTemplates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logger(), middleware.Recovery())
	router.SetHTMLTemplate(tmpl)

	router.GET("/login", h.LoginPage)
	router.POST("/login", h.Login)
	router.GET("/logout", h.Logout)

	pages := router.Group("/", h.requireSession)
	{
		pages.GET("", func(c *gin.Context) { c.Redirect(http.StatusFound, "/patients") })

		pages.GET("/patients", h.PatientList)
		pages.GET("/patients/new", h.PatientNewPage)
		pages.POST("/patients/new", h.PatientCreate)
		pages.GET("/patients/edit", h.PatientEditPage)
		pages.POST("/patients/edit", h.PatientUpdate)
		pages.GET("/patients/delete", h.PatientDeletePage)
		pages.POST("/patients/delete", h.PatientDelete)

		pages.GET("/users", h.UserList)
		pages.GET("/users/new", h.UserNewPage)
		pages.POST("/users/new", h.UserCreate)
		pages.GET("/users/edit", h.UserEditPage)
		pages.POST("/users/edit", h.UserUpdate)
		pages.GET("/users/delete", h.UserDeletePage)
		pages.POST("/users/delete", h.UserDelete)

		pages.GET("/predict", h.PredictPage)
		pages.POST("/predict", h.Predict)
	}
	return router, nil
}

// requireSession sends visitors without a valid signed session cookie to
// the login page.
func (h *Handler) requireSession(c *gin.Context) {
	value, err := c.Cookie(userCookie)
	if err != nil || value == "" {
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
		return
	}
	user, err := h.parseSession(value)
	if err != nil {
		h.clearSession(c)
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
		return
	}
	c.Set("username", user)
	c.Next()
}

func (h *Handler) token(c *gin.Context) string {
	token, _ := c.Cookie(tokenCookie)
	return token
}

func (h *Handler) setSession(c *gin.Context, username, token string) error {
	session, err := h.signSession(username)
	if err != nil {
		return fmt.Errorf("sign session: %w", err)
	}
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(userCookie, session, 0, "/", "", h.secureCookie, true)
	if token != "" {
		c.SetCookie(tokenCookie, token, 0, "/", "", h.secureCookie, true)
	}
	return nil
}

func (h *Handler) clearSession(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(userCookie, "", -1, "/", "", h.secureCookie, true)
	c.SetCookie(tokenCookie, "", -1, "/", "", h.secureCookie, true)
}
