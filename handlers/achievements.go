// handlers/achievements.go
package handlers

import (
	"kudos/database"
	"kudos/services"

	"github.com/gofiber/fiber/v2"
)

// GetEmployeeAchievements returns the full achievement catalog annotated
// with when the employee earned each entry (null while still locked).
func GetEmployeeAchievements(c *fiber.Ctx) error {
	employeeID, err := c.ParamsInt("employeeId")
	if err != nil || employeeID <= 0 {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid employee id"})
	}

	evaluator := services.NewAchievementService(database.GetDB())
	achievements, err := evaluator.StatusFor(uint(employeeID))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to fetch achievements"})
	}

	return c.JSON(fiber.Map{"success": true, "achievements": achievements})
}
