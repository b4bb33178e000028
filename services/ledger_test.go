package services

import (
	"testing"

	"kudos/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAward_CreatesHistoryAndUpdatesTotal(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)
	employee := createTestEmployee(t, db)

	result, err := ledger.Award(employee.ID, 100, "launch", 0)
	require.NoError(t, err)

	assert.Equal(t, 100, result.Employee.Points)
	assert.Equal(t, 100, result.History.Points)
	assert.Equal(t, "launch", result.History.Reason)
	assert.Equal(t, employee.ID, result.History.EmployeeID)

	var count int64
	db.Model(&models.PointsHistory{}).Where("employee_id = ?", employee.ID).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestAward_EmployeeNotFound(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)

	_, err := ledger.Award(9999, 10, "ghost", 0)
	assert.ErrorIs(t, err, ErrEmployeeNotFound)
}

func TestAward_EmptyReasonRejectedBeforeTransaction(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)
	employee := createTestEmployee(t, db)

	_, err := ledger.Award(employee.ID, 10, "   ", 0)
	assert.ErrorIs(t, err, ErrValidation)

	// Nothing written
	assert.Equal(t, 0, historySum(t, db, employee.ID))
	assert.Equal(t, 0, reloadEmployee(t, db, employee.ID).Points)
}

func TestAward_NegativeDeltaHasNoFloorCheck(t *testing.T) {
	// Awards carry no negative-balance guard, only edits and deletes do.
	db := setupTestDB(t)
	ledger := NewLedgerService(db)
	employee := createTestEmployee(t, db)

	result, err := ledger.Award(employee.ID, -40, "broke the build", 0)
	require.NoError(t, err)
	assert.Equal(t, -40, result.Employee.Points)
	assert.Equal(t, -40, historySum(t, db, employee.ID))
}

func TestLedger_TotalAlwaysMatchesHistorySum(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)
	employee := createTestEmployee(t, db)

	check := func() {
		current := reloadEmployee(t, db, employee.ID)
		assert.Equal(t, historySum(t, db, employee.ID), current.Points)
	}

	first, err := ledger.Award(employee.ID, 100, "launch", 0)
	require.NoError(t, err)
	check()

	second, err := ledger.Award(employee.ID, 50, "bugfix", 0)
	require.NoError(t, err)
	check()

	_, err = ledger.EditHistoryEntry(second.History.ID, 80, "bugfix, revised")
	require.NoError(t, err)
	check()

	_, err = ledger.DeleteHistoryEntry(first.History.ID)
	require.NoError(t, err)
	check()
}

func TestEditHistoryEntry_AdjustsByDifference(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)
	employee := createTestEmployee(t, db)

	entry, err := ledger.Award(employee.ID, 50, "demo day", 0)
	require.NoError(t, err)

	// +50 -> +80 moves the total by exactly +30
	result, err := ledger.EditHistoryEntry(entry.History.ID, 80, "demo day, amended")
	require.NoError(t, err)
	assert.Equal(t, 80, result.History.Points)
	assert.Equal(t, "demo day, amended", result.History.Reason)
	assert.Equal(t, 80, result.Employee.Points)

	// Give some headroom, then +80 -> -10 moves the total by -90
	_, err = ledger.Award(employee.ID, 100, "headroom", 0)
	require.NoError(t, err)

	result, err = ledger.EditHistoryEntry(entry.History.ID, -10, "correction")
	require.NoError(t, err)
	assert.Equal(t, 90, result.Employee.Points)
	assert.Equal(t, historySum(t, db, employee.ID), result.Employee.Points)
}

func TestEditHistoryEntry_NegativeBalanceRejected(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)
	employee := createTestEmployee(t, db)

	entry, err := ledger.Award(employee.ID, 30, "initial", 0)
	require.NoError(t, err)

	// diff = -40, total would hit -10
	_, err = ledger.EditHistoryEntry(entry.History.ID, -10, "correction")
	require.ErrorIs(t, err, ErrNegativeBalance)
	assert.Contains(t, err.Error(), "negative balance")

	// Fully rolled back
	current := reloadEmployee(t, db, employee.ID)
	assert.Equal(t, 30, current.Points)

	var unchanged models.PointsHistory
	require.NoError(t, db.First(&unchanged, entry.History.ID).Error)
	assert.Equal(t, 30, unchanged.Points)
	assert.Equal(t, "initial", unchanged.Reason)
}

// Two deductions that each look safe against the starting total: the
// first lands, the second must be judged against the committed total, not
// the one both started from. The row lock in EditHistoryEntry is what
// forces this ordering under Postgres; the guard arithmetic is pinned
// here.
func TestEditHistoryEntry_GuardUsesCommittedTotal(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)
	employee := createTestEmployee(t, db)

	first, err := ledger.Award(employee.ID, 20, "on-call", 0)
	require.NoError(t, err)
	second, err := ledger.Award(employee.ID, 10, "triage", 0)
	require.NoError(t, err)

	// Total 30. Each edit below shrinks its entry by 20; against the
	// starting total both would pass the guard.
	_, err = ledger.EditHistoryEntry(first.History.ID, 0, "voided")
	require.NoError(t, err)

	_, err = ledger.EditHistoryEntry(second.History.ID, -10, "voided")
	require.ErrorIs(t, err, ErrNegativeBalance)

	current := reloadEmployee(t, db, employee.ID)
	assert.Equal(t, 10, current.Points)
	assert.Equal(t, historySum(t, db, employee.ID), current.Points)
	assert.GreaterOrEqual(t, current.Points, 0)
}

func TestEditHistoryEntry_NotFound(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)

	_, err := ledger.EditHistoryEntry(424242, 10, "nope")
	assert.ErrorIs(t, err, ErrHistoryNotFound)
}

func TestDeleteHistoryEntry_Scenario(t *testing.T) {
	// Award 100 then 50, delete the 100 (leaves 50), delete the 50
	// (leaves exactly 0, which the guard permits).
	db := setupTestDB(t)
	ledger := NewLedgerService(db)
	employee := createTestEmployee(t, db)

	first, err := ledger.Award(employee.ID, 100, "launch", 0)
	require.NoError(t, err)
	assert.Equal(t, 100, first.Employee.Points)

	second, err := ledger.Award(employee.ID, 50, "bugfix", 0)
	require.NoError(t, err)
	assert.Equal(t, 150, second.Employee.Points)

	deleted, err := ledger.DeleteHistoryEntry(first.History.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, deleted.Points)
	assert.Equal(t, 50, reloadEmployee(t, db, employee.ID).Points)

	_, err = ledger.DeleteHistoryEntry(second.History.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, reloadEmployee(t, db, employee.ID).Points)
}

func TestDeleteHistoryEntry_NegativeBalanceRejected(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)
	employee := createTestEmployee(t, db)

	big, err := ledger.Award(employee.ID, 100, "big win", 0)
	require.NoError(t, err)
	_, err = ledger.Award(employee.ID, -60, "deduction", 0)
	require.NoError(t, err)

	// Total is 40; removing the +100 row would leave -60
	_, err = ledger.DeleteHistoryEntry(big.History.ID)
	require.ErrorIs(t, err, ErrNegativeBalance)

	assert.Equal(t, 40, reloadEmployee(t, db, employee.ID).Points)
	assert.Equal(t, 40, historySum(t, db, employee.ID))
}

func TestDeleteHistoryEntry_NotFound(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)

	_, err := ledger.DeleteHistoryEntry(987654)
	assert.ErrorIs(t, err, ErrHistoryNotFound)
}

func TestGetHistory_NewestFirst(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)
	employee := createTestEmployee(t, db)

	_, err := ledger.Award(employee.ID, 10, "first", 0)
	require.NoError(t, err)
	_, err = ledger.Award(employee.ID, 20, "second", 0)
	require.NoError(t, err)
	_, err = ledger.Award(employee.ID, 30, "third", 0)
	require.NoError(t, err)

	history, err := ledger.GetHistory(employee.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "third", history[0].Reason)
	assert.Equal(t, "second", history[1].Reason)
	assert.Equal(t, "first", history[2].Reason)
}

func TestGetHistory_EmployeeNotFound(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)

	_, err := ledger.GetHistory(31337)
	assert.ErrorIs(t, err, ErrEmployeeNotFound)
}

func TestLeaderboardAndRank(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)

	low := createTestEmployee(t, db)
	high := &models.Employee{Name: "Grace Hopper", Title: "Rear Admiral", Department: "IT"}
	require.NoError(t, db.Create(high).Error)

	_, err := ledger.Award(low.ID, 10, "points", 0)
	require.NoError(t, err)
	_, err = ledger.Award(high.ID, 500, "compiler", 0)
	require.NoError(t, err)

	leaderboard, err := ledger.Leaderboard()
	require.NoError(t, err)
	require.Len(t, leaderboard, 2)
	assert.Equal(t, high.ID, leaderboard[0].ID)
	assert.Equal(t, low.ID, leaderboard[1].ID)

	rank, err := ledger.Rank(high.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, rank)

	rank, err = ledger.Rank(low.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, rank)

	_, err = ledger.Rank(55555)
	assert.ErrorIs(t, err, ErrEmployeeNotFound)
}
