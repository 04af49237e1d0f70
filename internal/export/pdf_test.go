package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutritrack/internal/models"
)

func TestRenderPlan(t *testing.T) {
	r := NewPDFRenderer()
	r.now = func() time.Time { return time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC) }

	user := &models.User{Name: "Ana", DailyCalories: 2000, DailyProtein: 150, DailyCarbs: 200, DailyFat: 67}
	plan := &models.UserPlan{
		ID:    7,
		Type:  models.PlanTypeDiet,
		Title: "Plano de dieta com feijão",
		Data: models.JSON(`{"days":[{"day":"Monday","meals":[{"name":"Breakfast","items":["Oats 50 g","Milk 200 ml"],"calories":420.5}]}],"notes":"Drink water","fasting":false}`),
	}

	doc, err := r.RenderPlan(user, plan)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF-")))
	assert.True(t, bytes.Contains(doc, []byte("%%EOF")))
}

func TestRenderPlanWithoutData(t *testing.T) {
	doc, err := NewPDFRenderer().RenderPlan(nil, &models.UserPlan{ID: 1, Type: models.PlanTypeWorkout, Title: "Empty"})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF-")))
}

func TestRenderPlanInvalidData(t *testing.T) {
	_, err := NewPDFRenderer().RenderPlan(nil, &models.UserPlan{ID: 2, Title: "Bad", Data: models.JSON(`{bad`)})
	assert.Error(t, err)
}

func TestScalarAndLabel(t *testing.T) {
	assert.Equal(t, "3", scalar(3.0))
	assert.Equal(t, "2.5", scalar(2.5))
	assert.Equal(t, "yes", scalar(true))
	assert.Equal(t, "-", scalar(nil))
	assert.Equal(t, "Rest days", label("rest_days"))
}

func TestWithoutName(t *testing.T) {
	item := map[string]interface{}{"day": "Monday", "focus": "legs"}
	assert.Equal(t, "Monday", itemName(item))
	assert.Equal(t, map[string]interface{}{"focus": "legs"}, withoutName(item))
}
