// models/employee.go
package models

import (
	"time"
)

// Employee is a person on the performance board. Points is a materialized
// aggregate of the employee's points history rows; the ledger service is
// the only writer.
type Employee struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	Name       string `gorm:"not null;size:100" json:"name"`
	Title      string `gorm:"not null;size:100" json:"title"`
	Department string `gorm:"not null;size:100" json:"department"`
	ImageURL   string `json:"imageUrl,omitempty"`
	Points     int    `gorm:"default:0" json:"points"`
	IsAdmin    bool   `gorm:"default:false" json:"is_admin"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	History      []PointsHistory       `gorm:"foreignKey:EmployeeID" json:"history,omitempty"`
	Achievements []EmployeeAchievement `gorm:"foreignKey:EmployeeID" json:"achievements,omitempty"`
}

func (Employee) TableName() string {
	return "employees"
}
