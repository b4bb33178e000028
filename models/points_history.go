// models/points_history.go
package models

import (
	"time"
)

// PointsHistory is one signed point grant in an employee's ledger.
// Rows are append-only apart from the edit/delete operations exposed by
// the ledger service.
type PointsHistory struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	EmployeeID uint   `gorm:"not null;index" json:"employeeId"`
	Points     int    `gorm:"not null" json:"points"`
	Reason     string `gorm:"not null;type:text" json:"reason"`
	AwardedBy  uint   `gorm:"index" json:"awardedBy"`

	CreatedAt time.Time `json:"createdAt"`

	// Relationships
	Employee *Employee `gorm:"foreignKey:EmployeeID" json:"-"`
}

func (PointsHistory) TableName() string {
	return "points_history"
}
