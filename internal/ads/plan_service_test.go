package ads

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/adboardhq/adboard/internal/models"
	"github.com/adboardhq/adboard/internal/storage"
)

type planFixture struct {
	plans    *PlanService
	accounts *AccountService
	account  *models.AdAccount
}

func newPlanFixture(t *testing.T) *planFixture {
	t.Helper()
	accountRepo := storage.NewInMemoryAccountRepo()
	planRepo := storage.NewInMemoryPlanRepo()

	accounts := NewAccountService(accountRepo, &fakePlatformClient{}, zap.NewNop())
	account, err := accounts.Create(context.Background(), "u1", validAccountInput())
	require.NoError(t, err)

	return &planFixture{
		plans:    NewPlanService(planRepo, accountRepo, zap.NewNop()),
		accounts: accounts,
		account:  account,
	}
}

func (f *planFixture) validInput() models.PlanInput {
	return models.PlanInput{
		AccountID:   f.account.ID,
		Platform:    models.PlatformDouyin,
		PlanName:    "Summer promo",
		PlanID:      "dy-plan-1",
		Budget:      1000,
		DailyBudget: 100,
		StartDate:   time.Now(),
	}
}

func TestPlanCreate(t *testing.T) {
	f := newPlanFixture(t)

	plan, err := f.plans.Create(context.Background(), "u1", f.validInput())
	require.NoError(t, err)
	assert.NotEmpty(t, plan.ID)
	assert.Equal(t, models.StatusActive, plan.Status)
	assert.Equal(t, f.account.ID, plan.AccountID)
}

func TestPlanCreateForeignAccount(t *testing.T) {
	f := newPlanFixture(t)

	// The account belongs to u1, so u2 gets a not-found.
	_, err := f.plans.Create(context.Background(), "u2", f.validInput())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPlanCreatePlatformMismatch(t *testing.T) {
	f := newPlanFixture(t)

	in := f.validInput()
	in.Platform = models.PlatformKuaishou
	_, err := f.plans.Create(context.Background(), "u1", in)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestPlanUpdateAllowList(t *testing.T) {
	f := newPlanFixture(t)
	plan, err := f.plans.Create(context.Background(), "u1", f.validInput())
	require.NoError(t, err)

	name := "Autumn promo"
	status := models.StatusPaused
	budget := 2000.0
	updated, err := f.plans.Update(context.Background(), "u1", plan.ID, models.PlanUpdate{
		PlanName: &name,
		Status:   &status,
		Budget:   &budget,
	})
	require.NoError(t, err)
	assert.Equal(t, "Autumn promo", updated.PlanName)
	assert.Equal(t, models.StatusPaused, updated.Status)
	assert.Equal(t, 2000.0, updated.Budget)
	// Unspecified fields are untouched.
	assert.Equal(t, 100.0, updated.DailyBudget)
	assert.Equal(t, "dy-plan-1", updated.PlanID)

	bad := "archived"
	_, err = f.plans.Update(context.Background(), "u1", plan.ID, models.PlanUpdate{Status: &bad})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestPlanOwnershipIsolation(t *testing.T) {
	f := newPlanFixture(t)
	plan, err := f.plans.Create(context.Background(), "u1", f.validInput())
	require.NoError(t, err)

	_, err = f.plans.Get(context.Background(), "u2", plan.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	err = f.plans.Delete(context.Background(), "u2", plan.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPlanBatchStatus(t *testing.T) {
	f := newPlanFixture(t)

	var ids []string
	for i := 0; i < 3; i++ {
		in := f.validInput()
		in.PlanID = in.PlanID + string(rune('a'+i))
		plan, err := f.plans.Create(context.Background(), "u1", in)
		require.NoError(t, err)
		ids = append(ids, plan.ID)
	}

	// Foreign and unknown ids are skipped, not errors.
	n, err := f.plans.BatchUpdateStatus(context.Background(), "u1", models.BatchStatusInput{
		IDs:    append(ids, "missing-id"),
		Status: models.StatusPaused,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	for _, id := range ids {
		plan, err := f.plans.Get(context.Background(), "u1", id)
		require.NoError(t, err)
		assert.Equal(t, models.StatusPaused, plan.Status)
	}

	n, err = f.plans.BatchUpdateStatus(context.Background(), "u2", models.BatchStatusInput{
		IDs:    ids,
		Status: models.StatusActive,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	_, err = f.plans.BatchUpdateStatus(context.Background(), "u1", models.BatchStatusInput{
		IDs:    ids,
		Status: "archived",
	})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestPlanBatchDelete(t *testing.T) {
	f := newPlanFixture(t)

	var ids []string
	for i := 0; i < 2; i++ {
		in := f.validInput()
		in.PlanID = in.PlanID + string(rune('a'+i))
		plan, err := f.plans.Create(context.Background(), "u1", in)
		require.NoError(t, err)
		ids = append(ids, plan.ID)
	}

	n, err := f.plans.BatchDelete(context.Background(), "u1", models.BatchDeleteInput{IDs: ids})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, total, err := f.plans.List(context.Background(), "u1", models.PlanFilter{}, storage.Page{Number: 1, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestPlanListPagination(t *testing.T) {
	f := newPlanFixture(t)

	for i := 0; i < 5; i++ {
		in := f.validInput()
		in.PlanID = in.PlanID + string(rune('a'+i))
		_, err := f.plans.Create(context.Background(), "u1", in)
		require.NoError(t, err)
	}

	page1, total, err := f.plans.List(context.Background(), "u1", models.PlanFilter{}, storage.Page{Number: 1, Size: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, page1, 2)

	page3, _, err := f.plans.List(context.Background(), "u1", models.PlanFilter{}, storage.Page{Number: 3, Size: 2})
	require.NoError(t, err)
	assert.Len(t, page3, 1)

	// Past the end: empty page, same total.
	page4, total, err := f.plans.List(context.Background(), "u1", models.PlanFilter{}, storage.Page{Number: 4, Size: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Empty(t, page4)
}
