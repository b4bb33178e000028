package services

import (
	"testing"

	"kudos/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an isolated in-memory SQLite database with the full
// schema. Real SQL engine rather than mocks so transactional behavior is
// exercised for real.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to connect to test database")

	err = db.AutoMigrate(
		&models.Employee{},
		&models.PointsHistory{},
		&models.Achievement{},
		&models.EmployeeAchievement{},
	)
	require.NoError(t, err, "failed to migrate test database")

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
	})

	return db
}

func createTestEmployee(t *testing.T, db *gorm.DB) *models.Employee {
	t.Helper()

	employee := &models.Employee{
		Name:       "Ada Lovelace",
		Title:      "Systems Engineer",
		Department: "IT",
	}
	require.NoError(t, db.Create(employee).Error)
	return employee
}

// historySum recomputes the employee's total straight from the ledger rows.
func historySum(t *testing.T, db *gorm.DB, employeeID uint) int {
	t.Helper()

	var entries []models.PointsHistory
	require.NoError(t, db.Where("employee_id = ?", employeeID).Find(&entries).Error)

	sum := 0
	for _, e := range entries {
		sum += e.Points
	}
	return sum
}

func reloadEmployee(t *testing.T, db *gorm.DB, id uint) models.Employee {
	t.Helper()

	var employee models.Employee
	require.NoError(t, db.First(&employee, id).Error)
	return employee
}
