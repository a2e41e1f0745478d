package ads

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/adboardhq/adboard/internal/models"
	"github.com/adboardhq/adboard/internal/storage"
)

type creativeFixture struct {
	creatives *CreativeService
	plan      *models.AdPlan
}

func newCreativeFixture(t *testing.T) *creativeFixture {
	t.Helper()
	pf := newPlanFixture(t)
	plan, err := pf.plans.Create(context.Background(), "u1", pf.validInput())
	require.NoError(t, err)

	return &creativeFixture{
		creatives: NewCreativeService(storage.NewInMemoryCreativeRepo(), pf.plans.plans, zap.NewNop()),
		plan:      plan,
	}
}

func (f *creativeFixture) validInput() models.CreativeInput {
	return models.CreativeInput{
		PlanID:       f.plan.ID,
		CreativeName: "Hero banner",
		Type:         models.CreativeImage,
		Materials:    []string{"/uploads/banner.png"},
		Title:        "Big sale",
		Link:         "https://shop.example.com",
	}
}

func TestCreativeCreate(t *testing.T) {
	f := newCreativeFixture(t)

	creative, err := f.creatives.Create(context.Background(), "u1", f.validInput())
	require.NoError(t, err)
	assert.NotEmpty(t, creative.ID)
	assert.Equal(t, models.StatusActive, creative.Status)
	assert.Equal(t, f.plan.ID, creative.PlanID)
}

func TestCreativeCreateForeignPlan(t *testing.T) {
	f := newCreativeFixture(t)

	_, err := f.creatives.Create(context.Background(), "u2", f.validInput())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreativeCreateValidation(t *testing.T) {
	f := newCreativeFixture(t)

	in := f.validInput()
	in.Type = "audio"
	_, err := f.creatives.Create(context.Background(), "u1", in)
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	in = f.validInput()
	in.Materials = nil
	_, err = f.creatives.Create(context.Background(), "u1", in)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestCreativeUpdate(t *testing.T) {
	f := newCreativeFixture(t)
	creative, err := f.creatives.Create(context.Background(), "u1", f.validInput())
	require.NoError(t, err)

	materials := []string{"/uploads/banner-v2.png", "/uploads/banner-v3.png"}
	status := models.StatusPaused
	updated, err := f.creatives.Update(context.Background(), "u1", creative.ID, models.CreativeUpdate{
		Materials: &materials,
		Status:    &status,
	})
	require.NoError(t, err)
	assert.Equal(t, materials, updated.Materials)
	assert.Equal(t, models.StatusPaused, updated.Status)
	assert.Equal(t, "Hero banner", updated.CreativeName)

	empty := []string{}
	_, err = f.creatives.Update(context.Background(), "u1", creative.ID, models.CreativeUpdate{Materials: &empty})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestCreativeOwnershipIsolation(t *testing.T) {
	f := newCreativeFixture(t)
	creative, err := f.creatives.Create(context.Background(), "u1", f.validInput())
	require.NoError(t, err)

	_, err = f.creatives.Get(context.Background(), "u2", creative.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	err = f.creatives.Delete(context.Background(), "u2", creative.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreativeListByPlan(t *testing.T) {
	f := newCreativeFixture(t)

	for i := 0; i < 3; i++ {
		_, err := f.creatives.Create(context.Background(), "u1", f.validInput())
		require.NoError(t, err)
	}

	creatives, total, err := f.creatives.List(context.Background(), "u1",
		models.CreativeFilter{PlanID: f.plan.ID}, storage.Page{Number: 1, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, creatives, 3)

	_, total, err = f.creatives.List(context.Background(), "u1",
		models.CreativeFilter{PlanID: "other-plan"}, storage.Page{Number: 1, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}
