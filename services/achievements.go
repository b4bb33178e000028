// services/achievements.go - Achievement evaluation
package services

import (
	"errors"
	"time"

	"kudos/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AchievementService is the only writer of employee_achievements.
type AchievementService struct {
	db *gorm.DB
}

func NewAchievementService(db *gorm.DB) *AchievementService {
	return &AchievementService{db: db}
}

// Evaluate compares the employee's current point total against the
// achievement catalog and records anything newly earned, returning the
// newly unlocked achievements. Safe to run repeatedly: the insert goes
// through ON CONFLICT DO NOTHING against the unique (employee, achievement)
// index, so concurrent evaluations cannot double-award.
func (s *AchievementService) Evaluate(employeeID uint) ([]models.Achievement, error) {
	var employee models.Employee
	if err := s.db.First(&employee, employeeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, err
	}

	var candidates []models.Achievement
	if err := s.db.Where("points_required <= ?", employee.Points).
		Order("points_required ASC").
		Find(&candidates).Error; err != nil {
		return nil, err
	}

	var unlocked []models.Achievement
	for _, achievement := range candidates {
		link := models.EmployeeAchievement{
			EmployeeID:    employee.ID,
			AchievementID: achievement.ID,
			EarnedAt:      time.Now().UTC(),
		}
		result := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&link)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected > 0 {
			unlocked = append(unlocked, achievement)
		}
	}

	return unlocked, nil
}

// AchievementStatus is a catalog entry annotated with when the employee
// earned it, nil when still locked.
type AchievementStatus struct {
	models.Achievement
	EarnedAt *time.Time `json:"earnedAt"`
}

// StatusFor returns the full catalog merged with the employee's earned
// timestamps.
func (s *AchievementService) StatusFor(employeeID uint) ([]AchievementStatus, error) {
	var catalog []models.Achievement
	if err := s.db.Order("points_required ASC").Find(&catalog).Error; err != nil {
		return nil, err
	}

	var earned []models.EmployeeAchievement
	if err := s.db.Where("employee_id = ?", employeeID).Find(&earned).Error; err != nil {
		return nil, err
	}

	earnedAt := make(map[uint]time.Time, len(earned))
	for _, e := range earned {
		earnedAt[e.AchievementID] = e.EarnedAt
	}

	statuses := make([]AchievementStatus, 0, len(catalog))
	for _, achievement := range catalog {
		status := AchievementStatus{Achievement: achievement}
		if t, ok := earnedAt[achievement.ID]; ok {
			ts := t
			status.EarnedAt = &ts
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}
