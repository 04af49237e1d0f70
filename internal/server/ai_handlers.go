package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"nutritrack/internal/service"
)

type preferencesBody struct {
	Preferences string `json:"preferences"`
}

func (h *Handler) chat(c *gin.Context) {
	var body service.ChatInput
	if !bindJSON(c, &body) {
		return
	}
	reply, err := h.svc.Chat(c.Request.Context(), userID(c), body)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reply": reply})
}

func (h *Handler) analyzeMeal(c *gin.Context) {
	var body struct {
		Description string `json:"description"`
	}
	if !bindJSON(c, &body) {
		return
	}
	out, err := h.svc.AnalyzeMeal(c.Request.Context(), body.Description)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) suggestRecipes(c *gin.Context) {
	var body struct {
		Ingredients []string `json:"ingredients"`
		Preferences string   `json:"preferences"`
	}
	if !bindJSON(c, &body) {
		return
	}
	recipes, err := h.svc.SuggestRecipes(c.Request.Context(), userID(c), body.Ingredients, body.Preferences)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

func (h *Handler) recommendations(c *gin.Context) {
	recs, err := h.svc.PersonalizedRecommendations(c.Request.Context(), userID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recommendations": recs})
}

// optionalPreferences accepts an empty body.
func optionalPreferences(c *gin.Context) (string, bool) {
	var body preferencesBody
	if c.Request.ContentLength == 0 {
		return "", true
	}
	if !bindJSON(c, &body) {
		return "", false
	}
	return body.Preferences, true
}

func (h *Handler) generateMealPlan(c *gin.Context) {
	prefs, ok := optionalPreferences(c)
	if !ok {
		return
	}
	plan, err := h.svc.GenerateMealPlan(c.Request.Context(), userID(c), prefs)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, plan)
}

func (h *Handler) generateWorkoutPlan(c *gin.Context) {
	prefs, ok := optionalPreferences(c)
	if !ok {
		return
	}
	plan, err := h.svc.GenerateWorkoutPlan(c.Request.Context(), userID(c), prefs)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, plan)
}

func (h *Handler) listPlans(c *gin.Context) {
	plans, err := h.svc.ListPlans(c.Request.Context(), userID(c), c.Query("type"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plans)
}

func (h *Handler) activePlan(c *gin.Context) {
	plan, err := h.svc.GetActivePlan(c.Request.Context(), userID(c), c.Query("type"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (h *Handler) savePlan(c *gin.Context) {
	var body service.SavePlanInput
	if !bindJSON(c, &body) {
		return
	}
	plan, err := h.svc.SavePlan(c.Request.Context(), userID(c), body)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, plan)
}

func (h *Handler) activatePlan(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	plan, err := h.svc.ActivatePlan(c.Request.Context(), userID(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (h *Handler) deletePlan(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeletePlan(c.Request.Context(), userID(c), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) getProgress(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	p, err := h.svc.GetProgress(c.Request.Context(), userID(c), id, c.Query("date"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"progress": p, "completion_rate": p.CompletionRate()})
}

func (h *Handler) updateProgress(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var body service.ProgressInput
	if !bindJSON(c, &body) {
		return
	}
	p, err := h.svc.UpdateProgress(c.Request.Context(), userID(c), id, body)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"progress": p, "completion_rate": p.CompletionRate()})
}

func (h *Handler) legacyMealPlans(c *gin.Context) {
	plans, err := h.svc.ListLegacyMealPlans(c.Request.Context(), userID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plans)
}

// exportPlanPDF streams the PDF, or returns its URL when it was uploaded.
func (h *Handler) exportPlanPDF(c *gin.Context) {
	var body struct {
		PlanID int64 `json:"plan_id" binding:"required"`
	}
	if !bindJSON(c, &body) {
		return
	}
	out, err := h.svc.ExportPlanPDF(c.Request.Context(), userID(c), body.PlanID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if out.URL != "" {
		c.JSON(http.StatusOK, out)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+out.Filename+`"`)
	c.Data(http.StatusOK, "application/pdf", out.PDF)
}

func (h *Handler) checkout(c *gin.Context) {
	res, err := h.svc.CreateCheckout(c.Request.Context(), userID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
