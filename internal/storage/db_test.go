package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/fgomezproyectos/gestor-gastos/internal/auth"
	"github.com/fgomezproyectos/gestor-gastos/internal/money"
)

// UserTestSuite provides a test suite for credential operations
type UserTestSuite struct {
	suite.Suite
	ctx context.Context
	db  *DB
}

// SetupTest runs before each test
func (suite *UserTestSuite) SetupTest() {
	db, err := NewDB(":memory:")
	require.NoError(suite.T(), err, "failed to create test database")
	suite.db = db
	suite.ctx = context.Background()
}

// TearDownTest runs after each test
func (suite *UserTestSuite) TearDownTest() {
	if suite.db != nil {
		suite.db.Close()
	}
}

func (suite *UserTestSuite) TestCreateAndGetUser() {
	hash, err := auth.HashPassword("testpass")
	require.NoError(suite.T(), err)

	err = suite.db.CreateUser(suite.ctx, "testuser", hash)
	require.NoError(suite.T(), err)

	user, err := suite.db.GetUserByUsername(suite.ctx, "testuser")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "testuser", user.Username)
	assert.True(suite.T(), auth.CheckPassword("testpass", user.PasswordHash))
	assert.False(suite.T(), auth.CheckPassword("wrongpass", user.PasswordHash))
}

func (suite *UserTestSuite) TestDuplicateUser() {
	err := suite.db.CreateUser(suite.ctx, "testuser", "hash-a")
	require.NoError(suite.T(), err)

	err = suite.db.CreateUser(suite.ctx, "testuser", "hash-b")
	assert.ErrorIs(suite.T(), err, ErrDuplicateUser)

	// Original hash untouched
	user, err := suite.db.GetUserByUsername(suite.ctx, "testuser")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "hash-a", user.PasswordHash)
}

func (suite *UserTestSuite) TestGetUnknownUser() {
	_, err := suite.db.GetUserByUsername(suite.ctx, "ghost")
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}

func (suite *UserTestSuite) TestUserCount() {
	count, err := suite.db.UserCount(suite.ctx)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 0, count)

	require.NoError(suite.T(), suite.db.CreateUser(suite.ctx, "a", "h"))
	require.NoError(suite.T(), suite.db.CreateUser(suite.ctx, "b", "h"))

	count, err = suite.db.UserCount(suite.ctx)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 2, count)
}

// ExpenseTestSuite provides a test suite for ledger operations
type ExpenseTestSuite struct {
	suite.Suite
	ctx context.Context
	db  *DB
}

// SetupTest runs before each test
func (suite *ExpenseTestSuite) SetupTest() {
	db, err := NewDB(":memory:")
	require.NoError(suite.T(), err, "failed to create test database")
	suite.db = db
	suite.ctx = context.Background()

	for _, username := range []string{"alice", "bob"} {
		err := suite.db.CreateUser(suite.ctx, username, "hash")
		require.NoError(suite.T(), err, "failed to create test user %s", username)
	}
}

// TearDownTest runs after each test
func (suite *ExpenseTestSuite) TearDownTest() {
	if suite.db != nil {
		suite.db.Close()
	}
}

func (suite *ExpenseTestSuite) mustAdd(owner, desc string, cents int64) int64 {
	id, err := suite.db.AddExpense(suite.ctx, owner, desc, money.FromCents(cents))
	require.NoError(suite.T(), err)
	return id
}

func (suite *ExpenseTestSuite) mustTotal(owner string) int64 {
	total, err := suite.db.TotalFor(suite.ctx, owner)
	require.NoError(suite.T(), err)
	return total.Cents()
}

func (suite *ExpenseTestSuite) TestAddAndGetRoundTrip() {
	amount, err := money.Parse("12.345")
	require.NoError(suite.T(), err)

	id := suite.mustAdd("alice", "Café", amount.Cents())

	got, err := suite.db.GetExpense(suite.ctx, id, "alice")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Café", got.Description)
	// Half-up rounding policy: 12.345 is stored as 12.35 exactly
	assert.Equal(suite.T(), "12.35", got.Amount.String())
	assert.Equal(suite.T(), "alice", got.Owner)
	assert.WithinDuration(suite.T(), time.Now().UTC(), got.CreatedAt, 5*time.Second)
}

func (suite *ExpenseTestSuite) TestAddEmptyDescription() {
	_, err := suite.db.AddExpense(suite.ctx, "alice", "   ", money.FromCents(100))
	assert.ErrorIs(suite.T(), err, ErrEmptyDescription)
}

func (suite *ExpenseTestSuite) TestListByOwnerOrder() {
	id1 := suite.mustAdd("alice", "First", 100)
	id2 := suite.mustAdd("alice", "Second", 200)
	id3 := suite.mustAdd("alice", "Third", 300)

	// Spread timestamps: id1 newest, id3 oldest
	now := time.Now().UTC()
	for _, tc := range []struct {
		id int64
		ts time.Time
	}{
		{id1, now},
		{id2, now.Add(-time.Hour)},
		{id3, now.Add(-2 * time.Hour)},
	} {
		ts := tc.ts
		err := suite.db.UpdateExpense(suite.ctx, tc.id, "alice", "expense", money.FromCents(100), &ts)
		require.NoError(suite.T(), err)
	}

	expenses, err := suite.db.ListByOwner(suite.ctx, "alice")
	require.NoError(suite.T(), err)
	require.Len(suite.T(), expenses, 3)
	assert.Equal(suite.T(), id1, expenses[0].ID)
	assert.Equal(suite.T(), id2, expenses[1].ID)
	assert.Equal(suite.T(), id3, expenses[2].ID)
}

func (suite *ExpenseTestSuite) TestListByOwnerTieBreaksByIDDescending() {
	ts := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

	var ids []int64
	for _, desc := range []string{"a", "b", "c"} {
		id := suite.mustAdd("alice", desc, 100)
		err := suite.db.UpdateExpense(suite.ctx, id, "alice", desc, money.FromCents(100), &ts)
		require.NoError(suite.T(), err)
		ids = append(ids, id)
	}

	expenses, err := suite.db.ListByOwner(suite.ctx, "alice")
	require.NoError(suite.T(), err)
	require.Len(suite.T(), expenses, 3)
	assert.Equal(suite.T(), ids[2], expenses[0].ID)
	assert.Equal(suite.T(), ids[1], expenses[1].ID)
	assert.Equal(suite.T(), ids[0], expenses[2].ID)
}

func (suite *ExpenseTestSuite) TestCrossOwnerIsolation() {
	id := suite.mustAdd("alice", "Lunch", 1050)
	suite.mustAdd("bob", "Bus", 200)

	// bob cannot see alice's expense
	_, err := suite.db.GetExpense(suite.ctx, id, "bob")
	assert.ErrorIs(suite.T(), err, ErrNotFound)

	// bob cannot update it
	err = suite.db.UpdateExpense(suite.ctx, id, "bob", "Hijacked", money.FromCents(1), nil)
	assert.ErrorIs(suite.T(), err, ErrNotFound)

	// bob's delete is a no-op
	err = suite.db.DeleteExpense(suite.ctx, id, "bob")
	assert.NoError(suite.T(), err)

	// alice's row is intact
	got, err := suite.db.GetExpense(suite.ctx, id, "alice")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Lunch", got.Description)
	assert.Equal(suite.T(), int64(1050), got.Amount.Cents())

	// and bob's listing never contains alice's rows
	bobExpenses, err := suite.db.ListByOwner(suite.ctx, "bob")
	require.NoError(suite.T(), err)
	require.Len(suite.T(), bobExpenses, 1)
	assert.Equal(suite.T(), "Bus", bobExpenses[0].Description)
}

func (suite *ExpenseTestSuite) TestUpdateKeepsTimestampWhenNil() {
	id := suite.mustAdd("alice", "Lunch", 1000)

	ts := time.Date(2025, time.January, 5, 10, 0, 0, 0, time.UTC)
	err := suite.db.UpdateExpense(suite.ctx, id, "alice", "Lunch", money.FromCents(1000), &ts)
	require.NoError(suite.T(), err)

	err = suite.db.UpdateExpense(suite.ctx, id, "alice", "Brunch", money.FromCents(1200), nil)
	require.NoError(suite.T(), err)

	got, err := suite.db.GetExpense(suite.ctx, id, "alice")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Brunch", got.Description)
	assert.Equal(suite.T(), int64(1200), got.Amount.Cents())
	assert.True(suite.T(), got.CreatedAt.Equal(ts), "nil timestamp must keep the stored one")
}

func (suite *ExpenseTestSuite) TestUpdateMissingExpense() {
	err := suite.db.UpdateExpense(suite.ctx, 9999, "alice", "Ghost", money.FromCents(1), nil)
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}

func (suite *ExpenseTestSuite) TestDeleteIsIdempotent() {
	id := suite.mustAdd("alice", "Lunch", 1000)

	require.NoError(suite.T(), suite.db.DeleteExpense(suite.ctx, id, "alice"))

	_, err := suite.db.GetExpense(suite.ctx, id, "alice")
	assert.ErrorIs(suite.T(), err, ErrNotFound)

	// Second delete of the same id leaves the same post-state
	require.NoError(suite.T(), suite.db.DeleteExpense(suite.ctx, id, "alice"))

	expenses, err := suite.db.ListByOwner(suite.ctx, "alice")
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), expenses)
}

func (suite *ExpenseTestSuite) TestTotalForMatchesListing() {
	assert.Equal(suite.T(), int64(0), suite.mustTotal("alice"), "empty ledger totals zero")

	suite.mustAdd("alice", "a", 1050)
	suite.mustAdd("alice", "b", 999)
	suite.mustAdd("bob", "c", 123456)

	expenses, err := suite.db.ListByOwner(suite.ctx, "alice")
	require.NoError(suite.T(), err)

	var sum int64
	for _, e := range expenses {
		sum += e.Amount.Cents()
	}
	assert.Equal(suite.T(), sum, suite.mustTotal("alice"))
	assert.Equal(suite.T(), int64(2049), suite.mustTotal("alice"))
	assert.Equal(suite.T(), int64(123456), suite.mustTotal("bob"))
}

func (suite *ExpenseTestSuite) TestDeletingUserCascades() {
	suite.mustAdd("alice", "Lunch", 1000)

	_, err := suite.db.conn.Exec("DELETE FROM users WHERE username = ?", "alice")
	require.NoError(suite.T(), err)

	expenses, err := suite.db.ListByOwner(suite.ctx, "alice")
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), expenses, "expenses must cascade with their owner")
}

// Test suite runners
func TestUserSuite(t *testing.T) {
	suite.Run(t, new(UserTestSuite))
}

func TestExpenseSuite(t *testing.T) {
	suite.Run(t, new(ExpenseTestSuite))
}
