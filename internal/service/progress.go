package service

import (
	"context"
	"math"

	"nutritrack/internal/models"
	"nutritrack/internal/nutrition"
)

// onTargetTolerance is the share of the calorie goal a day may miss by and
// still count as on target.
const onTargetTolerance = 0.10

type MacroPercent struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

type DailySummary struct {
	Date      string           `json:"date"`
	Totals    models.Nutrients `json:"totals"`
	Goals     models.Nutrients `json:"goals"`
	Remaining models.Nutrients `json:"remaining"`
	Percent   MacroPercent     `json:"percent"`
	MealCount int              `json:"meal_count"`
	Meals     []MealWithTotals `json:"meals"`
}

type HourBucket struct {
	Hour               int     `json:"hour"`
	Calories           float64 `json:"calories"`
	Protein            float64 `json:"protein"`
	Carbs              float64 `json:"carbs"`
	Fat                float64 `json:"fat"`
	CumulativeCalories float64 `json:"cumulative_calories"`
}

type HourlyProgress struct {
	Date         string       `json:"date"`
	GoalCalories float64      `json:"goal_calories"`
	Hours        []HourBucket `json:"hours"`
}

type DayPoint struct {
	Date         string  `json:"date"`
	Calories     float64 `json:"calories"`
	Protein      float64 `json:"protein"`
	Carbs        float64 `json:"carbs"`
	Fat          float64 `json:"fat"`
	GoalCalories float64 `json:"goal_calories"`
	MealCount    int     `json:"meal_count"`
	OnTarget     bool    `json:"on_target"`
}

type RangeProgress struct {
	From         string           `json:"from"`
	To           string           `json:"to"`
	Days         []DayPoint       `json:"days"`
	Averages     models.Nutrients `json:"averages"`
	LoggedDays   int              `json:"logged_days"`
	DaysOnTarget int              `json:"days_on_target"`
}

func summarize(day string, goals models.Nutrients, meals []models.Meal) *DailySummary {
	perMeal := make([]models.Nutrients, len(meals))
	for i := range meals {
		perMeal[i] = meals[i].Totals()
	}
	totals := nutrition.Sum(perMeal)
	return &DailySummary{
		Date:   day,
		Totals: totals,
		Goals:  goals,
		Remaining: nutrition.Round(models.Nutrients{
			Calories: goals.Calories - totals.Calories,
			Protein:  goals.Protein - totals.Protein,
			Carbs:    goals.Carbs - totals.Carbs,
			Fat:      goals.Fat - totals.Fat,
		}),
		Percent: MacroPercent{
			Calories: nutrition.Percent(totals.Calories, goals.Calories),
			Protein:  nutrition.Percent(totals.Protein, goals.Protein),
			Carbs:    nutrition.Percent(totals.Carbs, goals.Carbs),
			Fat:      nutrition.Percent(totals.Fat, goals.Fat),
		},
		MealCount: len(meals),
		Meals:     withTotals(meals),
	}
}

// DailyNutrition summarizes one nutritional day against the user's current
// goals. Remaining values go negative once a goal is exceeded.
func (s *Service) DailyNutrition(ctx context.Context, userID int64, day string) (*DailySummary, error) {
	day, err := s.resolveDay(day)
	if err != nil {
		return nil, err
	}
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	meals, err := s.store.ListMealsByDay(ctx, userID, day)
	if err != nil {
		return nil, err
	}
	return summarize(day, user.GoalNutrients(), meals), nil
}

// HourlyProgress buckets a day's meals by the local hour they were logged,
// in nutritional-day order: 05:00 first, 04:00 last.
func (s *Service) HourlyProgress(ctx context.Context, userID int64, day string) (*HourlyProgress, error) {
	day, err := s.resolveDay(day)
	if err != nil {
		return nil, err
	}
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	meals, err := s.store.ListMealsByDay(ctx, userID, day)
	if err != nil {
		return nil, err
	}

	buckets := make([]HourBucket, 24)
	for i := range buckets {
		buckets[i].Hour = (nutrition.DayStartHour + i) % 24
	}
	for i := range meals {
		h := meals[i].LoggedAt.In(s.loc).Hour()
		b := &buckets[(h-nutrition.DayStartHour+24)%24]
		t := meals[i].Totals()
		b.Calories += t.Calories
		b.Protein += t.Protein
		b.Carbs += t.Carbs
		b.Fat += t.Fat
	}
	var cumulative float64
	for i := range buckets {
		b := &buckets[i]
		b.Calories, b.Protein, b.Carbs, b.Fat = round2(b.Calories), round2(b.Protein), round2(b.Carbs), round2(b.Fat)
		cumulative += b.Calories
		b.CumulativeCalories = round2(cumulative)
	}

	return &HourlyProgress{Date: day, GoalCalories: float64(user.DailyCalories), Hours: buckets}, nil
}

// WeeklyProgress covers the 7 nutritional days ending at end.
func (s *Service) WeeklyProgress(ctx context.Context, userID int64, end string) (*RangeProgress, error) {
	end, err := s.resolveDay(end)
	if err != nil {
		return nil, err
	}
	from, err := nutrition.AddDays(end, -6)
	if err != nil {
		return nil, err
	}
	return s.rangeProgress(ctx, userID, from, end)
}

// MonthlyProgress covers every day of month (YYYY-MM), defaulting to the
// month of the current nutritional day.
func (s *Service) MonthlyProgress(ctx context.Context, userID int64, month string) (*RangeProgress, error) {
	if month == "" {
		month = s.today()[:7]
	}
	from, to, err := nutrition.MonthDays(month)
	if err != nil {
		return nil, invalid("month", "%s", err.Error())
	}
	return s.rangeProgress(ctx, userID, from, to)
}

// rangeProgress zero-fills the stored rollups between from and to. Averages
// and on-target counts only consider days with at least one meal.
func (s *Service) rangeProgress(ctx context.Context, userID int64, from, to string) (*RangeProgress, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	rows, err := s.store.ListDailyNutrition(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	byDate := make(map[string]models.DailyNutrition, len(rows))
	for _, r := range rows {
		byDate[r.Date] = r
	}
	dates, err := nutrition.DaysBetween(from, to)
	if err != nil {
		return nil, err
	}

	out := &RangeProgress{From: from, To: to, Days: make([]DayPoint, 0, len(dates))}
	var sum models.Nutrients
	for _, d := range dates {
		p := DayPoint{Date: d, GoalCalories: float64(user.DailyCalories)}
		if r, ok := byDate[d]; ok && r.MealCount > 0 {
			p.Calories, p.Protein, p.Carbs, p.Fat = r.Calories, r.Protein, r.Carbs, r.Fat
			p.MealCount = r.MealCount
			if r.GoalCalories > 0 {
				p.GoalCalories = r.GoalCalories
			}
			p.OnTarget = onTarget(p.Calories, p.GoalCalories)
			sum = sum.Add(r.Nutrients)
			out.LoggedDays++
			if p.OnTarget {
				out.DaysOnTarget++
			}
		}
		out.Days = append(out.Days, p)
	}
	if out.LoggedDays > 0 {
		n := float64(out.LoggedDays)
		out.Averages = nutrition.Round(models.Nutrients{
			Calories: sum.Calories / n, Protein: sum.Protein / n, Carbs: sum.Carbs / n, Fat: sum.Fat / n,
			Fiber: sum.Fiber / n, Sugar: sum.Sugar / n, Sodium: sum.Sodium / n,
		})
	}
	return out, nil
}

func onTarget(calories, goal float64) bool {
	if goal <= 0 {
		return false
	}
	return math.Abs(calories-goal) <= goal*onTargetTolerance
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
