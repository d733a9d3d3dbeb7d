package models

import "time"

// AppUser is an application account. Password holds the codec token of the
// password digest.
type AppUser struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	Password  string    `gorm:"type:text;not null" json:"-"`
	Email     string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"email"`
	RoleID    uint      `gorm:"not null" json:"role_id"`
	Role      *UserRole `gorm:"foreignKey:RoleID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (AppUser) TableName() string { return "app_user" }

type AppUserInput struct {
	Username string `json:"username" binding:"required,max=50" example:"JohnDoe"`
	Password string `json:"password" binding:"required" example:"Gsd234@"`
	Email    string `json:"email" binding:"required,email,max=50" example:"john.doe@gmail.com"`
	RoleID   *uint  `json:"role_id" binding:"required" example:"2"`
}

type AppUserPatch struct {
	Username *string `json:"username" binding:"omitempty,max=50"`
	Password *string `json:"password"`
	Email    *string `json:"email" binding:"omitempty,email,max=50"`
	RoleID   *uint   `json:"role_id"`
}

// AppUserDetail is returned by GET /users/:id; Password is the decrypted digest.
type AppUserDetail struct {
	ID       uint   `json:"id" example:"13"`
	Username string `json:"username" example:"JohnDoe"`
	Password string `json:"password" example:"9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08"`
	Email    string `json:"email" example:"john.doe@gmail.com"`
	RoleID   uint   `json:"role_id" example:"2"`
}

type AppUserSummary struct {
	ID       uint   `json:"id" example:"13"`
	Username string `json:"username" example:"JohnDoe"`
	Email    string `json:"email" example:"john.doe@gmail.com"`
	RoleName string `json:"role_name" example:"patient"`
}

type Credentials struct {
	Username string `json:"username" binding:"required" example:"JohnShepard2"`
	Password string `json:"password" binding:"required" example:"Gsd234@"`
}
