// services/ledger.go - Points ledger
package services

import (
	"errors"
	"strings"

	"kudos/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerService owns every write to Employee.Points and points_history.
// Each mutation runs as a single transaction so the history row and the
// cached total are never observed in a partially-applied state, and the
// negative-balance guard always reads the total inside the same
// transaction it writes under.
type LedgerService struct {
	db *gorm.DB
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{db: db}
}

// LedgerResult pairs the affected history row with the employee snapshot
// after the mutation committed.
type LedgerResult struct {
	History  models.PointsHistory `json:"history"`
	Employee models.Employee      `json:"employee"`
}

// Award inserts a history entry and adds points to the employee's total.
// The delta may be negative (a deduction at grant time); awards carry no
// floor check. Only edits and deletes guard against a negative balance.
func (s *LedgerService) Award(employeeID uint, points int, reason string, awardedBy uint) (*LedgerResult, error) {
	if employeeID == 0 {
		return nil, validationErr("employeeId is required")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, validationErr("reason is required and must be a non-empty string")
	}

	var result LedgerResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var employee models.Employee
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&employee, employeeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEmployeeNotFound
			}
			return err
		}

		history := models.PointsHistory{
			EmployeeID: employeeID,
			Points:     points,
			Reason:     reason,
			AwardedBy:  awardedBy,
		}
		if err := tx.Create(&history).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Employee{}).
			Where("id = ?", employeeID).
			Update("points", gorm.Expr("points + ?", points)).Error; err != nil {
			return err
		}

		if err := tx.First(&employee, employeeID).Error; err != nil {
			return err
		}

		result = LedgerResult{History: history, Employee: employee}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// EditHistoryEntry changes a history row's points and reason, adjusting the
// employee's total by the difference. Rejected with ErrNegativeBalance when
// the adjusted total would fall below zero.
func (s *LedgerService) EditHistoryEntry(historyID uint, points int, reason string) (*LedgerResult, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, validationErr("reason is required and must be a non-empty string")
	}

	var result LedgerResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var history models.PointsHistory
		if err := tx.First(&history, historyID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrHistoryNotFound
			}
			return err
		}

		// Re-read the total under a row lock before computing the guard.
		// A plain read is not enough: under READ COMMITTED two concurrent
		// edits can both see the same total, both pass the guard, and
		// both apply their delta. FOR UPDATE makes the second edit block
		// and re-evaluate against the committed total.
		var employee models.Employee
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&employee, history.EmployeeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEmployeeNotFound
			}
			return err
		}

		diff := points - history.Points
		if employee.Points+diff < 0 {
			return ErrNegativeBalance
		}

		if err := tx.Model(&history).Updates(map[string]interface{}{
			"points": points,
			"reason": reason,
		}).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Employee{}).
			Where("id = ?", history.EmployeeID).
			Update("points", gorm.Expr("points + ?", diff)).Error; err != nil {
			return err
		}

		if err := tx.First(&employee, history.EmployeeID).Error; err != nil {
			return err
		}

		result = LedgerResult{History: history, Employee: employee}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteHistoryEntry removes a history row and subtracts its points from
// the employee's total. Rejected with ErrNegativeBalance when the row is
// worth more than the employee's current total.
func (s *LedgerService) DeleteHistoryEntry(historyID uint) (*models.PointsHistory, error) {
	var deleted models.PointsHistory
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var history models.PointsHistory
		if err := tx.First(&history, historyID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrHistoryNotFound
			}
			return err
		}

		var employee models.Employee
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&employee, history.EmployeeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEmployeeNotFound
			}
			return err
		}

		if employee.Points < history.Points {
			return ErrNegativeBalance
		}

		if err := tx.Model(&models.Employee{}).
			Where("id = ?", history.EmployeeID).
			Update("points", gorm.Expr("points - ?", history.Points)).Error; err != nil {
			return err
		}

		if err := tx.Delete(&models.PointsHistory{}, historyID).Error; err != nil {
			return err
		}

		deleted = history
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &deleted, nil
}

// GetHistory returns an employee's history entries, newest first.
func (s *LedgerService) GetHistory(employeeID uint) ([]models.PointsHistory, error) {
	var employee models.Employee
	if err := s.db.First(&employee, employeeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, err
	}

	var history []models.PointsHistory
	if err := s.db.Where("employee_id = ?", employeeID).
		Order("created_at DESC, id DESC").
		Find(&history).Error; err != nil {
		return nil, err
	}
	return history, nil
}

// Leaderboard returns all employees ordered by points, highest first.
func (s *LedgerService) Leaderboard() ([]models.Employee, error) {
	var employees []models.Employee
	if err := s.db.Order("points DESC, id ASC").Find(&employees).Error; err != nil {
		return nil, err
	}
	return employees, nil
}

// Rank returns an employee's 1-based leaderboard position.
func (s *LedgerService) Rank(employeeID uint) (int64, error) {
	var employee models.Employee
	if err := s.db.First(&employee, employeeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrEmployeeNotFound
		}
		return 0, err
	}

	var rank int64
	if err := s.db.Raw(
		"SELECT COUNT(*) + 1 FROM employees WHERE points > ? OR (points = ? AND id < ?)",
		employee.Points, employee.Points, employee.ID,
	).Scan(&rank).Error; err != nil {
		return 0, err
	}
	return rank, nil
}
