package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icaruswings/Budgeto/paycycle"
	"github.com/icaruswings/Budgeto/store"
	"github.com/icaruswings/Budgeto/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	s, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func money(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestPaySettings_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	weekday := time.Thursday
	override := paycycle.NewTimePoint(2024, time.April, 22)
	in := paycycle.PaySettings{
		UserID:              "user-1",
		Email:               "user@example.com",
		ActualPayAmount:     money("5000"),
		ActualPayFrequency:  paycycle.Monthly,
		ActualPayDayOfMonth: 15,
		DesiredPayFrequency: paycycle.Fortnightly,
		DesiredPayDayOfWeek: &weekday,
		NextActualPayday:    &override,
	}
	require.NoError(t, s.SavePaySettings(ctx, in))

	out, err := s.GetPaySettings(ctx, "user-1")
	require.NoError(t, err)

	assert.Equal(t, "user-1", out.UserID)
	assert.Equal(t, "user@example.com", out.Email)
	assert.True(t, out.ActualPayAmount.Equal(money("5000")))
	assert.Equal(t, paycycle.Monthly, out.ActualPayFrequency)
	assert.Equal(t, 15, out.ActualPayDayOfMonth)
	assert.Equal(t, paycycle.Fortnightly, out.DesiredPayFrequency)
	require.NotNil(t, out.DesiredPayDayOfWeek)
	assert.Equal(t, time.Thursday, *out.DesiredPayDayOfWeek)
	require.NotNil(t, out.NextActualPayday)
	assert.True(t, out.NextActualPayday.Equal(override))
}

func TestPaySettings_SaveDerivesDesiredAmount(t *testing.T) {
	// The cached desired amount is recomputed at the persistence boundary,
	// never trusted from the caller.
	s := newTestStore(t)
	ctx := context.Background()

	weekday := time.Monday
	stale := money("9999")
	in := paycycle.PaySettings{
		UserID:              "user-1",
		ActualPayAmount:     money("5000"),
		ActualPayFrequency:  paycycle.Monthly,
		ActualPayDayOfMonth: 15,
		DesiredPayFrequency: paycycle.Fortnightly,
		DesiredPayDayOfWeek: &weekday,
		DesiredPayAmount:    &stale,
	}
	require.NoError(t, s.SavePaySettings(ctx, in))

	out, err := s.GetPaySettings(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, out.DesiredPayAmount)

	diff := out.DesiredPayAmount.Sub(money("2307.69")).Abs()
	assert.True(t, diff.LessThan(money("0.01")),
		"stored desired amount = %s, want the derived ~2307.69", out.DesiredPayAmount)
}

func TestPaySettings_IncompleteStaysIncomplete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SavePaySettings(ctx, paycycle.PaySettings{
		UserID:             "user-1",
		ActualPayAmount:    money("5000"),
		ActualPayFrequency: paycycle.Monthly,
	}))

	out, err := s.GetPaySettings(ctx, "user-1")
	require.NoError(t, err)
	assert.Nil(t, out.DesiredPayDayOfWeek)
	assert.Nil(t, out.DesiredPayAmount)
	assert.Nil(t, out.NextActualPayday)
	assert.False(t, out.HasDesiredCycle())
}

func TestPaySettings_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetPaySettings(context.Background(), "nobody")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestBills_CRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	due := paycycle.NewTimePoint(2024, time.April, 25)
	created, err := s.CreateBill(ctx, paycycle.Bill{
		UserID:    "user-1",
		Name:      "rego",
		Amount:    money("80"),
		Frequency: paycycle.BillOneOff,
		DueDate:   &due,
		Active:    true,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID, "store assigns the ID")
	assert.False(t, created.CreatedAt.IsZero(), "store supplies CreatedAt")

	got, err := s.GetBill(ctx, "user-1", created.ID)
	require.NoError(t, err)
	assert.Equal(t, "rego", got.Name)
	assert.True(t, got.Amount.Equal(money("80")))
	assert.Equal(t, paycycle.BillOneOff, got.Frequency)
	require.NotNil(t, got.DueDate)
	assert.True(t, got.DueDate.Equal(due))

	// Update mutates in place; created_at (the recurrence anchor) survives.
	got.Amount = money("85")
	got.Active = false
	require.NoError(t, s.UpdateBill(ctx, *got))

	updated, err := s.GetBill(ctx, "user-1", created.ID)
	require.NoError(t, err)
	assert.True(t, updated.Amount.Equal(money("85")))
	assert.False(t, updated.Active)
	assert.True(t, updated.CreatedAt.Equal(created.CreatedAt))

	require.NoError(t, s.DeleteBill(ctx, "user-1", created.ID))
	_, err = s.GetBill(ctx, "user-1", created.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestBills_MonthlyAndAnchoredRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	monthly, err := s.CreateBill(ctx, paycycle.Bill{
		UserID: "user-1", Name: "rent", Amount: money("1500"),
		Frequency: paycycle.BillMonthly, DueDayOfMonth: 1, Active: true,
	})
	require.NoError(t, err)

	anchor := paycycle.NewTimePoint(2024, time.April, 5)
	weekly, err := s.CreateBill(ctx, paycycle.Bill{
		UserID: "user-1", Name: "groceries", Amount: money("150"),
		Frequency: paycycle.BillWeekly, Active: true, CreatedAt: anchor,
	})
	require.NoError(t, err)

	bills, err := s.ListBills(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, bills, 2)

	byID := map[string]paycycle.Bill{bills[0].ID: bills[0], bills[1].ID: bills[1]}
	assert.Equal(t, 1, byID[monthly.ID].DueDayOfMonth)
	assert.Nil(t, byID[monthly.ID].DueDate)
	assert.True(t, byID[weekly.ID].CreatedAt.Equal(anchor),
		"caller-supplied anchor must round-trip untouched")
}

func TestBills_UpdateDeleteMissing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.UpdateBill(ctx, paycycle.Bill{ID: "ghost", UserID: "user-1", Amount: money("1")})
	assert.ErrorIs(t, err, store.ErrNotFound)

	err = s.DeleteBill(ctx, "user-1", "ghost")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestListUserIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"b-user", "a-user"} {
		require.NoError(t, s.SavePaySettings(ctx, paycycle.PaySettings{
			UserID:             id,
			ActualPayAmount:    money("4000"),
			ActualPayFrequency: paycycle.Monthly,
		}))
	}

	ids, err := s.ListUserIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a-user", "b-user"}, ids)
}
