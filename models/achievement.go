// models/achievement.go
package models

import "time"

// Achievement is a static catalog entry unlocked once an employee's point
// total reaches PointsRequired. Seeded out of band; read-only at runtime.
type Achievement struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	Name           string `gorm:"not null;uniqueIndex" json:"name"`
	Description    string `gorm:"not null" json:"description"`
	PointsRequired int    `gorm:"not null" json:"pointsRequired"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EmployeeAchievement marks that an employee has earned an achievement.
// The composite unique index is what makes evaluation idempotent under
// concurrent awards, not the existence check alone.
type EmployeeAchievement struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	EmployeeID    uint      `gorm:"not null;uniqueIndex:idx_employee_achievement" json:"employeeId"`
	AchievementID uint      `gorm:"not null;uniqueIndex:idx_employee_achievement" json:"achievementId"`
	EarnedAt      time.Time `json:"earnedAt"`

	// Relationships
	Employee    *Employee    `gorm:"foreignKey:EmployeeID" json:"-"`
	Achievement *Achievement `gorm:"foreignKey:AchievementID" json:"achievement,omitempty"`
}

func (EmployeeAchievement) TableName() string {
	return "employee_achievements"
}
