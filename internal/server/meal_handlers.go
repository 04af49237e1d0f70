package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"nutritrack/internal/service"
)

func (h *Handler) listMealTypes(c *gin.Context) {
	types, err := h.svc.ListMealTypes(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types)
}

func (h *Handler) listMeals(c *gin.Context) {
	meals, err := h.svc.ListMeals(c.Request.Context(), userID(c), c.Query("date"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, meals)
}

func (h *Handler) createMeal(c *gin.Context) {
	var body service.CreateMealInput
	if !bindJSON(c, &body) {
		return
	}
	meal, err := h.svc.CreateMeal(c.Request.Context(), userID(c), body)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, meal)
}

func (h *Handler) deleteMeal(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteMeal(c.Request.Context(), userID(c), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) addMealFood(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var body service.FoodEntryInput
	if !bindJSON(c, &body) {
		return
	}
	food, err := h.svc.AddMealFood(c.Request.Context(), userID(c), id, body)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, food)
}

func (h *Handler) deleteMealFood(c *gin.Context) {
	mealID, ok := idParam(c, "id")
	if !ok {
		return
	}
	foodID, ok := idParam(c, "foodId")
	if !ok {
		return
	}
	if err := h.svc.DeleteMealFood(c.Request.Context(), userID(c), mealID, foodID); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) listFoods(c *gin.Context) {
	foods, err := h.svc.ListFoods(c.Request.Context(), userID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, foods)
}

func (h *Handler) createFood(c *gin.Context) {
	var body service.FoodInput
	if !bindJSON(c, &body) {
		return
	}
	food, err := h.svc.CreateFood(c.Request.Context(), userID(c), body)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, food)
}

func (h *Handler) searchFoods(c *gin.Context) {
	res, err := h.svc.SearchFoods(c.Request.Context(), userID(c), c.Query("q"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) dailyNutrition(c *gin.Context) {
	sum, err := h.svc.DailyNutrition(c.Request.Context(), userID(c), c.Query("date"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

func (h *Handler) hourlyProgress(c *gin.Context) {
	p, err := h.svc.HourlyProgress(c.Request.Context(), userID(c), c.Query("date"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) weeklyProgress(c *gin.Context) {
	p, err := h.svc.WeeklyProgress(c.Request.Context(), userID(c), c.Query("end"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) monthlyProgress(c *gin.Context) {
	p, err := h.svc.MonthlyProgress(c.Request.Context(), userID(c), c.Query("month"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) listRecipes(c *gin.Context) {
	recipes, err := h.svc.ListRecipes(c.Request.Context(), userID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipes)
}

func (h *Handler) getRecipe(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	recipe, err := h.svc.GetRecipe(c.Request.Context(), userID(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *Handler) createRecipe(c *gin.Context) {
	var body service.RecipeInput
	if !bindJSON(c, &body) {
		return
	}
	recipe, err := h.svc.CreateRecipe(c.Request.Context(), userID(c), body)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, recipe)
}

func (h *Handler) deleteRecipe(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteRecipe(c.Request.Context(), userID(c), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
