// handlers/points.go - Points ledger endpoints
package handlers

import (
	"errors"
	"log"

	"kudos/database"
	"kudos/middleware"
	"kudos/services"
	"kudos/ws"

	"github.com/gofiber/fiber/v2"
)

type AwardPointsRequest struct {
	EmployeeID uint   `json:"employeeId"`
	Points     int    `json:"points"`
	Reason     string `json:"reason"`
}

type UpdatePointsRequest struct {
	Points int    `json:"points"`
	Reason string `json:"reason"`
}

// AwardPoints grants (or deducts) points. On success the point change, any
// newly unlocked achievements and a rank change are broadcast; a failed
// award emits nothing.
func AwardPoints(c *fiber.Ctx) error {
	var req AwardPointsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	db := database.GetDB()
	ledger := services.NewLedgerService(db)

	rankBefore, _ := ledger.Rank(req.EmployeeID)

	result, err := ledger.Award(req.EmployeeID, req.Points, req.Reason, middleware.GetActorID(c))
	if err != nil {
		return ledgerError(c, err)
	}

	// Point change first, then any unlocks it caused
	ws.GetHub().Broadcast(ws.PointsAwarded(result.History.EmployeeID, result.History.Points, result.History.Reason))
	unlocked := evaluateAndNotify(req.EmployeeID)
	notifyRankChange(ledger, req.EmployeeID, rankBefore)

	return c.JSON(fiber.Map{
		"success":          true,
		"history":          result.History,
		"employee":         result.Employee,
		"new_achievements": unlocked,
	})
}

// UpdatePoints amends a history entry. The employee total moves by the
// difference; a change that would push it negative is rejected.
func UpdatePoints(c *fiber.Ctx) error {
	historyID, err := c.ParamsInt("historyId")
	if err != nil || historyID <= 0 {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid history id"})
	}

	var req UpdatePointsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	db := database.GetDB()
	ledger := services.NewLedgerService(db)

	var rankBefore int64
	if entry, err := findHistoryEmployee(uint(historyID)); err == nil {
		rankBefore, _ = ledger.Rank(entry)
	}

	result, err := ledger.EditHistoryEntry(uint(historyID), req.Points, req.Reason)
	if err != nil {
		return ledgerError(c, err)
	}

	// An edit can raise the total past a threshold
	evaluateAndNotify(result.Employee.ID)
	notifyRankChange(ledger, result.Employee.ID, rankBefore)

	return c.JSON(fiber.Map{
		"success":  true,
		"history":  result.History,
		"employee": result.Employee,
	})
}

// DeletePoints removes a history entry and subtracts its value, unless
// that would drive the total negative.
func DeletePoints(c *fiber.Ctx) error {
	historyID, err := c.ParamsInt("historyId")
	if err != nil || historyID <= 0 {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid history id"})
	}

	db := database.GetDB()
	ledger := services.NewLedgerService(db)

	var rankBefore int64
	if employeeID, err := findHistoryEmployee(uint(historyID)); err == nil {
		rankBefore, _ = ledger.Rank(employeeID)
	}

	deleted, err := ledger.DeleteHistoryEntry(uint(historyID))
	if err != nil {
		return ledgerError(c, err)
	}

	notifyRankChange(ledger, deleted.EmployeeID, rankBefore)

	return c.JSON(fiber.Map{
		"success":       true,
		"message":       "Points history deleted successfully",
		"deletedRecord": deleted,
	})
}

// GetPointsHistory returns an employee's ledger entries, newest first.
// Public: the leaderboard links straight to it.
func GetPointsHistory(c *fiber.Ctx) error {
	employeeID, err := c.ParamsInt("employeeId")
	if err != nil || employeeID <= 0 {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid employee id"})
	}

	ledger := services.NewLedgerService(database.GetDB())
	history, err := ledger.GetHistory(uint(employeeID))
	if err != nil {
		return ledgerError(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "history": history})
}

// evaluateAndNotify runs the achievement evaluator and broadcasts any
// unlocks. Evaluation failures are logged, never surfaced: the award
// already committed.
func evaluateAndNotify(employeeID uint) []services.AchievementStatus {
	evaluator := services.NewAchievementService(database.GetDB())
	unlocked, err := evaluator.Evaluate(employeeID)
	if err != nil {
		log.Printf("⚠️ Achievement evaluation failed for employee %d: %v", employeeID, err)
		return nil
	}

	hub := ws.GetHub()
	statuses := make([]services.AchievementStatus, 0, len(unlocked))
	for _, achievement := range unlocked {
		hub.Broadcast(ws.AchievementUnlocked(employeeID, achievement.Name))
		statuses = append(statuses, services.AchievementStatus{Achievement: achievement})
	}
	return statuses
}

// notifyRankChange broadcasts RANK_CHANGED when the employee's leaderboard
// position moved.
func notifyRankChange(ledger *services.LedgerService, employeeID uint, rankBefore int64) {
	rankAfter, err := ledger.Rank(employeeID)
	if err != nil || rankAfter == rankBefore {
		return
	}
	ws.GetHub().Broadcast(ws.RankChanged(rankAfter))
}

// findHistoryEmployee resolves a history row to its employee without
// touching the ledger.
func findHistoryEmployee(historyID uint) (uint, error) {
	var employeeID uint
	err := database.GetDB().Raw(
		"SELECT employee_id FROM points_history WHERE id = ?", historyID,
	).Scan(&employeeID).Error
	if err != nil {
		return 0, err
	}
	if employeeID == 0 {
		return 0, services.ErrHistoryNotFound
	}
	return employeeID, nil
}

// ledgerError maps service errors onto the response envelope.
func ledgerError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrEmployeeNotFound),
		errors.Is(err, services.ErrHistoryNotFound):
		return c.Status(404).JSON(fiber.Map{"success": false, "error": err.Error()})
	case errors.Is(err, services.ErrNegativeBalance):
		return c.Status(400).JSON(fiber.Map{"success": false, "error": err.Error()})
	case errors.Is(err, services.ErrValidation):
		return c.Status(400).JSON(fiber.Map{"success": false, "error": err.Error()})
	default:
		log.Printf("❌ Ledger operation failed: %v", err)
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Internal server error"})
	}
}
