package ui

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"medexpenses/internal/models"
)

func (h *Handler) UserList(c *gin.Context) {
	users, err := h.api.ListUsers(c.Request.Context(), h.token(c))
	if err != nil {
		h.fail(c, "users.html", nil, err)
		return
	}
	h.render(c, "users.html", gin.H{"Users": users})
}

func (h *Handler) roles(c *gin.Context, data gin.H) error {
	roles, err := h.api.Roles(c.Request.Context(), h.token(c))
	if err != nil {
		return err
	}
	data["Roles"] = roles
	return nil
}

func (h *Handler) UserNewPage(c *gin.Context) {
	data := gin.H{"Form": gin.H{}}
	if err := h.roles(c, data); err != nil {
		h.fail(c, "user_form.html", data, err)
		return
	}
	h.render(c, "user_form.html", data)
}

func (h *Handler) UserCreate(c *gin.Context) {
	data := gin.H{"Form": formValues(c, "username", "email", "role_id")}
	if err := h.roles(c, data); err != nil {
		h.fail(c, "user_form.html", data, err)
		return
	}

	f := &formReader{c: c}
	input := models.AppUserInput{
		Username: f.text("username"),
		Password: c.PostForm("password"),
		Email:    f.text("email"),
		RoleID:   f.id("role_id"),
	}
	if input.Username == "" || input.Password == "" {
		f.errs = append(f.errs, "username and password are required")
	}
	if err := f.err(); err != nil {
		h.fail(c, "user_form.html", data, err)
		return
	}

	resp, err := h.api.CreateUser(c.Request.Context(), h.token(c), input)
	if err != nil {
		h.fail(c, "user_form.html", data, err)
		return
	}
	data["Flash"] = fmt.Sprintf("%s (id %d)", resp.ResponseMessage, resp.ID)
	data["Form"] = gin.H{}
	h.render(c, "user_form.html", data)
}

// UserEditPage asks for an id first, then shows the account to edit.
func (h *Handler) UserEditPage(c *gin.Context) {
	pick := gin.H{"Action": "/users/edit", "Verb": "Edit"}
	id, ok, err := formID(c)
	if err != nil {
		h.fail(c, "user_pick.html", pick, err)
		return
	}
	if !ok {
		h.render(c, "user_pick.html", pick)
		return
	}

	user, err := h.api.GetUser(c.Request.Context(), h.token(c), id)
	if err != nil {
		h.fail(c, "user_pick.html", pick, err)
		return
	}
	data := gin.H{"Edit": true, "Form": gin.H{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
		"role_id":  strconv.FormatUint(uint64(user.RoleID), 10),
	}}
	if err := h.roles(c, data); err != nil {
		h.fail(c, "user_form.html", data, err)
		return
	}
	h.render(c, "user_form.html", data)
}

// UserUpdate leaves the password unchanged when the field is blank.
func (h *Handler) UserUpdate(c *gin.Context) {
	form := formValues(c, "username", "email", "role_id")
	form["id"] = c.PostForm("id")
	data := gin.H{"Edit": true, "Form": form}
	if err := h.roles(c, data); err != nil {
		h.fail(c, "user_form.html", data, err)
		return
	}

	id, err := requireID(c)
	if err != nil {
		h.fail(c, "user_form.html", data, err)
		return
	}
	f := &formReader{c: c}
	username, email := f.text("username"), f.text("email")
	patch := models.AppUserPatch{
		Username: &username,
		Email:    &email,
		RoleID:   f.id("role_id"),
	}
	if pw := c.PostForm("password"); pw != "" {
		patch.Password = &pw
	}
	if err := f.err(); err != nil {
		h.fail(c, "user_form.html", data, err)
		return
	}

	resp, err := h.api.UpdateUser(c.Request.Context(), h.token(c), id, patch)
	if err != nil {
		h.fail(c, "user_form.html", data, err)
		return
	}
	data["Flash"] = resp.ResponseMessage
	h.render(c, "user_form.html", data)
}

func (h *Handler) UserDeletePage(c *gin.Context) {
	pick := gin.H{"Action": "/users/delete", "Verb": "Delete"}
	id, ok, err := formID(c)
	if err != nil {
		h.fail(c, "user_pick.html", pick, err)
		return
	}
	if !ok {
		h.render(c, "user_pick.html", pick)
		return
	}

	user, err := h.api.GetUser(c.Request.Context(), h.token(c), id)
	if err != nil {
		h.fail(c, "user_pick.html", pick, err)
		return
	}
	h.render(c, "user_confirm.html", gin.H{"User": user})
}

func (h *Handler) UserDelete(c *gin.Context) {
	pick := gin.H{"Action": "/users/delete", "Verb": "Delete"}
	id, err := requireID(c)
	if err != nil {
		h.fail(c, "user_pick.html", pick, err)
		return
	}

	resp, err := h.api.DeleteUser(c.Request.Context(), h.token(c), id)
	if err != nil {
		h.fail(c, "user_pick.html", pick, err)
		return
	}
	pick["Flash"] = resp.ResponseMessage
	h.render(c, "user_pick.html", pick)
}
