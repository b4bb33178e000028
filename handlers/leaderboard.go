// handlers/leaderboard.go
package handlers

import (
	"kudos/database"
	"kudos/services"

	"github.com/gofiber/fiber/v2"
)

// GetLeaderboard returns every employee ordered by points, highest first.
// Public: the board hangs on the office wall.
func GetLeaderboard(c *fiber.Ctx) error {
	ledger := services.NewLedgerService(database.GetDB())

	leaderboard, err := ledger.Leaderboard()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to fetch leaderboard"})
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"leaderboard": leaderboard,
		"total":       len(leaderboard),
	})
}

// GetEmployeeRank returns one employee's 1-based leaderboard position.
func GetEmployeeRank(c *fiber.Ctx) error {
	employeeID, err := c.ParamsInt("employeeId")
	if err != nil || employeeID <= 0 {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid employee id"})
	}

	ledger := services.NewLedgerService(database.GetDB())
	rank, err := ledger.Rank(uint(employeeID))
	if err != nil {
		return ledgerError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"employeeId": employeeID,
		"rank":       rank,
	})
}
