package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPlan = `{
  "checking": {"balance": "1000"},
  "caixinhas": [{"id": "c1", "name": "Emergency", "balance": "0"}],
  "salary": {"amount": "5000", "day_of_month": 25},
  "credit_card": {"next_invoice_amount": "0", "closing_day": 10},
  "simulations": [
    {"id": "save", "name": "Save", "amount": "200", "date": "2024-01-15",
     "type": "DEBIT", "source": "CHECKING", "destination": "SAVINGS_POOL"}
  ]
}`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writePlan(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plan.json")
	require.NoError(t, os.WriteFile(path, []byte(testPlan), 0o644))
	return path
}

func TestProjectCommand(t *testing.T) {
	// GIVEN: A plan with a 200 transfer into savings on the 15th
	// WHEN: Projecting the 14th to the 16th
	// THEN: The table shows the post-transfer balances

	out, err := execute(t, "project", "--plan", writePlan(t), "--from", "2024-01-14", "--to", "2024-01-16")
	require.NoError(t, err)

	assert.Contains(t, out, "2024-01-14")
	assert.Contains(t, out, "2024-01-16")
	assert.Contains(t, out, "800.00")
	assert.Contains(t, out, "(3 days)")
}

func TestUpcomingCommand(t *testing.T) {
	out, err := execute(t, "upcoming", "--plan", writePlan(t), "--from", "2024-01-01", "--to", "2024-01-31")
	require.NoError(t, err)

	assert.Contains(t, out, "Salary")
	assert.Contains(t, out, "2024-01-25")
	assert.Contains(t, out, "SAVINGS_POOL")
}

func TestInsightsCommand(t *testing.T) {
	out, err := execute(t, "insights", "--plan", writePlan(t), "--from", "2024-01-20", "--to", "2024-01-31", "--focus", "accounts")
	require.NoError(t, err)
	assert.Contains(t, out, "Total")
	assert.Contains(t, out, "+500.0%")
	assert.NotContains(t, out, "Vouchers")

	_, err = execute(t, "insights", "--plan", writePlan(t), "--focus", "everything")
	assert.Error(t, err)
}

func TestVariationsCommand(t *testing.T) {
	// GIVEN: A range after the 15th, so the transfer is not projected
	// THEN: Checking starts at the current balance and jumps on payday

	out, err := execute(t, "variations", "--plan", writePlan(t), "--from", "2024-01-24", "--to", "2024-01-25", "--metric", "checking")
	require.NoError(t, err)
	assert.Contains(t, out, "Checking")
	assert.Contains(t, out, "1,000.00")
	assert.Contains(t, out, "6,000.00")
	assert.Contains(t, out, "+500.0%")
	assert.NotContains(t, out, "5,800.00")
}

func TestRangeErrors(t *testing.T) {
	plan := writePlan(t)

	_, err := execute(t, "project", "--plan", plan, "--from", "15/01/2024")
	assert.ErrorContains(t, err, "--from")

	_, err = execute(t, "project", "--plan", plan, "--from", "2024-01-20", "--to", "2024-01-10")
	assert.ErrorContains(t, err, "invalid range")

	_, err = execute(t, "project", "--plan", filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "failed to read plan")
}

func TestInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.json")

	out, err := execute(t, "init", "--plan", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote")

	_, err = execute(t, "init", "--plan", path)
	assert.ErrorContains(t, err, "already exists")

	_, err = execute(t, "init", "--plan", path, "--force")
	require.NoError(t, err)

	// The default plan projects
	out, err = execute(t, "project", "--plan", path, "--from", "2024-01-01", "--to", "2024-01-02")
	require.NoError(t, err)
	assert.Contains(t, out, "2024-01-02")
}
