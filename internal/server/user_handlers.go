package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"nutritrack/internal/nutrition"
	"nutritrack/internal/service"
)

func (h *Handler) register(c *gin.Context) {
	var body service.RegisterInput
	if !bindJSON(c, &body) {
		return
	}
	res, err := h.svc.Register(c.Request.Context(), body)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) login(c *gin.Context) {
	var body struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if !bindJSON(c, &body) {
		return
	}
	res, err := h.svc.Login(c.Request.Context(), body.Email, body.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) logout(c *gin.Context) {
	if err := h.svc.Logout(c.Request.Context(), claimsFrom(c)); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (h *Handler) getUser(c *gin.Context) {
	user, err := h.svc.GetUser(c.Request.Context(), userID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) updateUser(c *gin.Context) {
	var body service.UserPatch
	if !bindJSON(c, &body) {
		return
	}
	user, err := h.svc.UpdateUser(c.Request.Context(), userID(c), body)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) updateGoals(c *gin.Context) {
	var body service.GoalsInput
	if !bindJSON(c, &body) {
		return
	}
	user, goals, err := h.svc.UpdateGoals(c.Request.Context(), userID(c), body)
	if err != nil {
		h.respondError(c, err)
		return
	}
	resp := gin.H{"user": user}
	if goals != nil {
		resp["calculated"] = goals
	}
	c.JSON(http.StatusOK, resp)
}

// calculateGoals runs the calculator on the posted profile without
// storing anything.
func (h *Handler) calculateGoals(c *gin.Context) {
	var body nutrition.GoalInput
	if !bindJSON(c, &body) {
		return
	}
	goals, err := h.svc.CalculateGoals(body)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, goals)
}

func (h *Handler) scheduleDaily(c *gin.Context) {
	var body service.ReminderInput
	if !bindJSON(c, &body) {
		return
	}
	user, err := h.svc.ScheduleDaily(c.Request.Context(), userID(c), body)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"reminder_hour":     user.ReminderHour,
		"reminder_minute":   user.ReminderMinute,
		"reminders_enabled": user.RemindersEnabled,
		"telegram_chat_id":  user.TelegramChatID,
		"timezone":          h.svc.Location().String(),
	})
}
