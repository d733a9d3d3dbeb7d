package models

// Region, Sex, Smoker and UserRole are immutable reference rows seeded once.

type Region struct {
	ID         uint   `gorm:"primaryKey;autoIncrement:false" json:"id" example:"0"`
	RegionName string `gorm:"type:varchar(50);not null" json:"region_name" example:"northeast"`
}

func (Region) TableName() string { return "region" }

type Sex struct {
	ID       uint   `gorm:"primaryKey;autoIncrement:false" json:"id" example:"1"`
	SexLabel string `gorm:"type:varchar(50);not null" json:"sex_label" example:"female"`
}

func (Sex) TableName() string { return "sex" }

type Smoker struct {
	ID       uint   `gorm:"primaryKey;autoIncrement:false" json:"id" example:"0"`
	IsSmoker string `gorm:"type:varchar(3);not null" json:"is_smoker" example:"no"`
}

func (Smoker) TableName() string { return "smoker" }

type UserRole struct {
	ID       uint   `gorm:"primaryKey;autoIncrement:false" json:"id" example:"2"`
	RoleName string `gorm:"type:varchar(50);uniqueIndex;not null" json:"role_name" example:"patient"`
}

func (UserRole) TableName() string { return "user_role" }

// UnknownLabel is shown in place of a foreign key that does not resolve.
const UnknownLabel = "Unknown"

var (
	DefaultRegions = []Region{
		{ID: 0, RegionName: "northeast"},
		{ID: 1, RegionName: "northwest"},
		{ID: 2, RegionName: "southeast"},
		{ID: 3, RegionName: "southwest"},
	}
	DefaultSexes = []Sex{
		{ID: 0, SexLabel: "male"},
		{ID: 1, SexLabel: "female"},
	}
	DefaultSmokers = []Smoker{
		{ID: 0, IsSmoker: "no"},
		{ID: 1, IsSmoker: "yes"},
	}
	DefaultRoles = []UserRole{
		{ID: 0, RoleName: "admin"},
		{ID: 1, RoleName: "medic"},
		{ID: 2, RoleName: "patient"},
	}
)
