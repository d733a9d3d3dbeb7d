package models

import "time"

// Patient is the stored row. LastName, FirstName and Email hold codec tokens;
// EmailIndex is the blind index that makes the email unique. The association
// fields only declare the foreign keys; labels are resolved by the services
// since lookup ids start at zero.
type Patient struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	LastName   string    `gorm:"type:text;not null" json:"-"`
	FirstName  string    `gorm:"type:text;not null" json:"-"`
	Age        int       `gorm:"not null" json:"age"`
	BMI        float64   `gorm:"column:bmi;not null" json:"bmi"`
	Email      string    `gorm:"type:text;not null" json:"-"`
	EmailIndex string    `gorm:"type:char(64);uniqueIndex;not null" json:"-"`
	Children   int       `gorm:"not null" json:"children"`
	Charges    float64   `gorm:"not null" json:"charges"`
	RegionID   uint      `gorm:"not null" json:"region_id"`
	SmokerID   uint      `gorm:"not null" json:"smoker_id"`
	SexID      uint      `gorm:"not null" json:"sex_id"`
	Region     *Region   `gorm:"foreignKey:RegionID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT" json:"-"`
	Smoker     *Smoker   `gorm:"foreignKey:SmokerID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT" json:"-"`
	Sex        *Sex      `gorm:"foreignKey:SexID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Patient) TableName() string { return "patient" }

// PatientInput is the body of POST /patients.
type PatientInput struct {
	LastName  string  `json:"last_name" binding:"required,max=50" example:"Doe"`
	FirstName string  `json:"first_name" binding:"required,max=50" example:"John"`
	Age       int     `json:"age" binding:"min=0,max=150" example:"24"`
	BMI       float64 `json:"bmi" binding:"min=0" example:"18.1"`
	Email     string  `json:"email" binding:"required,email,max=50" example:"john.doe@gmail.com"`
	Children  int     `json:"children" binding:"min=0" example:"1"`
	Charges   float64 `json:"charges" binding:"min=0" example:"3000.00"`
	Region    *uint   `json:"region" binding:"required" example:"1"`
	Smoker    *uint   `json:"smoker" binding:"required" example:"0"`
	Sex       *uint   `json:"sex" binding:"required" example:"1"`
}

// PatientPatch is the body of PUT /patients/:id. Nil fields are left unchanged.
type PatientPatch struct {
	LastName  *string  `json:"last_name" binding:"omitempty,max=50"`
	FirstName *string  `json:"first_name" binding:"omitempty,max=50"`
	Age       *int     `json:"age" binding:"omitempty,min=0,max=150"`
	BMI       *float64 `json:"bmi" binding:"omitempty,min=0"`
	Email     *string  `json:"email" binding:"omitempty,email,max=50"`
	Children  *int     `json:"children" binding:"omitempty,min=0"`
	Charges   *float64 `json:"charges" binding:"omitempty,min=0"`
	Region    *uint    `json:"region"`
	Smoker    *uint    `json:"smoker"`
	Sex       *uint    `json:"sex"`
}

// PatientDetail is a decrypted patient with raw lookup ids (GET /patients/:id).
type PatientDetail struct {
	ID        uint    `json:"id" example:"1"`
	LastName  string  `json:"last_name" example:"Doe"`
	FirstName string  `json:"first_name" example:"John"`
	Age       int     `json:"age" example:"24"`
	BMI       float64 `json:"bmi" example:"18.1"`
	Email     string  `json:"email" example:"john.doe@gmail.com"`
	Children  int     `json:"children" example:"1"`
	Charges   float64 `json:"charges" example:"3000"`
	Region    uint    `json:"region" example:"1"`
	Smoker    uint    `json:"smoker" example:"0"`
	Sex       uint    `json:"sex" example:"1"`
}

// PatientSummary is a decrypted patient with resolved labels (GET /patients).
type PatientSummary struct {
	ID        uint    `json:"id" example:"1"`
	LastName  string  `json:"last_name" example:"Doe"`
	FirstName string  `json:"first_name" example:"John"`
	Age       int     `json:"age" example:"24"`
	BMI       float64 `json:"bmi" example:"18.1"`
	Email     string  `json:"email" example:"john.doe@gmail.com"`
	Children  int     `json:"children" example:"1"`
	Charges   float64 `json:"charges" example:"3000"`
	Region    string  `json:"region" example:"northwest"`
	Smoker    string  `json:"smoker" example:"no"`
	Sex       string  `json:"sex" example:"female"`
}
