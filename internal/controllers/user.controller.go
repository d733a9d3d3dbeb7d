package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"medexpenses/internal/models"
	"medexpenses/internal/services"
)

type UserController struct {
	service services.UserService
	auth    services.AuthService
}

func NewUserController(service services.UserService, auth services.AuthService) *UserController {
	return &UserController{service: service, auth: auth}
}

// Authenticate godoc
// @Summary Check user credentials
// @Description Always answers 200; the message says whether the credentials matched. A token is returned when signing is configured.
// @Tags users
// @Accept json
// @Produce json
// @Param credentials body models.Credentials true "Username and password"
// @Success 200 {object} models.AuthResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /users/auth [post]
func (uc *UserController) Authenticate(c *gin.Context) {
	var creds models.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		invalidRequest(c, err)
		return
	}

	result, err := uc.auth.Authenticate(c.Request.Context(), creds.Username, creds.Password)
	if err != nil {
		respondError(c, err, "Authentication failed")
		return
	}
	c.JSON(http.StatusOK, models.AuthResponse{
		ResponseMessage: result.Message,
		Token:           result.Token,
	})
}

// GetUsers godoc
// @Summary List users
// @Tags users
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.AppUserSummary
// @Failure 500 {object} models.ErrorResponse
// @Router /users [get]
func (uc *UserController) GetUsers(c *gin.Context) {
	users, err := uc.service.List(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to retrieve users")
		return
	}
	c.JSON(http.StatusOK, users)
}

// GetRoles godoc
// @Summary List user roles
// @Tags users
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.UserRole
// @Router /users/roles [get]
func (uc *UserController) GetRoles(c *gin.Context) {
	roles, err := uc.service.Roles(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to retrieve roles")
		return
	}
	c.JSON(http.StatusOK, roles)
}

// CreateUser godoc
// @Summary Add a user
// @Tags users
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param user body models.AppUserInput true "User data"
// @Success 201 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse "Username or email taken"
// @Failure 422 {object} models.ErrorResponse "Unknown role"
// @Router /users [post]
func (uc *UserController) CreateUser(c *gin.Context) {
	var input models.AppUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		invalidRequest(c, err)
		return
	}

	user, err := uc.service.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, err, "Failed to add user")
		return
	}

	c.JSON(http.StatusCreated, models.MessageResponse{
		ResponseMessage: "New user added.",
		ID:              user.ID,
	})
}

// GetUserByID godoc
// @Summary Get a user
// @Description The password field holds the stored digest, never the plaintext
// @Tags users
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "User ID"
// @Success 200 {object} models.AppUserDetail
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [get]
func (uc *UserController) GetUserByID(c *gin.Context) {
	id, ok := parseID(c, "user")
	if !ok {
		return
	}

	user, err := uc.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "User not found")
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateUser godoc
// @Summary Update a user
// @Tags users
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "User ID"
// @Param user body models.AppUserPatch true "Fields to change"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Router /users/{id} [put]
func (uc *UserController) UpdateUser(c *gin.Context) {
	id, ok := parseID(c, "user")
	if !ok {
		return
	}

	var patch models.AppUserPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		invalidRequest(c, err)
		return
	}

	if _, err := uc.service.Update(c.Request.Context(), id, patch); err != nil {
		respondError(c, err, "Failed to update user")
		return
	}
	c.JSON(http.StatusOK, models.MessageResponse{ResponseMessage: "User updated successfully."})
}

// DeleteUser godoc
// @Summary Delete a user
// @Tags users
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "User ID"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [delete]
func (uc *UserController) DeleteUser(c *gin.Context) {
	id, ok := parseID(c, "user")
	if !ok {
		return
	}

	if _, err := uc.service.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to delete user")
		return
	}
	c.JSON(http.StatusOK, models.MessageResponse{ResponseMessage: "User deleted successfully."})
}
