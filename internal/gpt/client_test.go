package gpt

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutritrack/config"
	"nutritrack/internal/models"
)

// fakeProvider answers every chat completion with reply and records the
// last request.
func fakeProvider(t *testing.T, reply string, last *openai.ChatCompletionRequest) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		if last != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(last))
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			ID:     "chatcmpl-1",
			Object: "chat.completion",
			Model:  "gpt-4o-mini",
			Choices: []openai.ChatCompletionChoice{{
				Index:        0,
				Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: reply},
				FinishReason: openai.FinishReasonStop,
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return NewClientWithConfig(config.GPTConfig{APIKey: "sk-test", BaseURL: srv.URL + "/v1", Model: "gpt-4o-mini"})
}

func TestExtractJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, ExtractJSON("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":{"b":2}}`, ExtractJSON(`Sure! {"a":{"b":2}} Enjoy.`))
	assert.Equal(t, "no json", ExtractJSON("  no json "))
}

func TestNotConfigured(t *testing.T) {
	c := NewClientWithConfig(config.GPTConfig{})
	_, err := c.Chat(context.Background(), "", nil, "hi")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestChatSendsHistoryAndContext(t *testing.T) {
	var got openai.ChatCompletionRequest
	c := fakeProvider(t, "Eat more protein.", &got)

	reply, err := c.Chat(context.Background(), "Goal: 2000 kcal",
		[]Message{{Role: "user", Content: "hello"}, {Role: "assistant", Content: "hi!"}},
		"what should I eat?")
	require.NoError(t, err)
	assert.Equal(t, "Eat more protein.", reply)

	require.Len(t, got.Messages, 4)
	assert.Equal(t, openai.ChatMessageRoleSystem, got.Messages[0].Role)
	assert.Contains(t, got.Messages[0].Content, "Goal: 2000 kcal")
	assert.Equal(t, openai.ChatMessageRoleAssistant, got.Messages[2].Role)
	assert.Equal(t, "what should I eat?", got.Messages[3].Content)
	assert.Equal(t, "gpt-4o-mini", got.Model)
	assert.Nil(t, got.ResponseFormat)
}

func TestAnalyzeMealSumsTotals(t *testing.T) {
	var got openai.ChatCompletionRequest
	reply := "```json\n" + `{"foods":[
		{"name":"rice","quantity":150,"unit":"g","grams":150,"calories":195,"protein":4,"carbs":42,"fat":0.4},
		{"name":"beans","quantity":100,"unit":"g","grams":100,"calories":76,"protein":4.8,"carbs":13.6,"fat":0.5}
	]}` + "\n```"
	c := fakeProvider(t, reply, &got)

	out, err := c.AnalyzeMeal(context.Background(), "arroz e feijão")
	require.NoError(t, err)
	require.Len(t, out.Foods, 2)
	assert.Equal(t, "rice", out.Foods[0].Name)
	assert.Equal(t, 195.0, out.Foods[0].Calories)
	assert.InDelta(t, 271.0, out.Totals.Calories, 1e-9)
	assert.InDelta(t, 8.8, out.Totals.Protein, 1e-9)

	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONObject, got.ResponseFormat.Type)
}

func TestAnalyzeMealInvalidJSON(t *testing.T) {
	c := fakeProvider(t, "I cannot help with that", nil)
	_, err := c.AnalyzeMeal(context.Background(), "???")
	assert.Error(t, err)
}

func TestGenerateMealPlanKeepsRawDocument(t *testing.T) {
	var got openai.ChatCompletionRequest
	c := fakeProvider(t, `{"title":"Lean week","days":[{"day":1,"meals":[]}]}`, &got)

	user := &models.User{Sex: "female", Age: 30, WeightKg: 62, HeightCm: 165, Goal: "lose", DailyCalories: 1600}
	plan, err := c.GenerateMealPlan(context.Background(), user, "vegetarian")
	require.NoError(t, err)
	assert.Equal(t, "Lean week", plan.Title)
	assert.JSONEq(t, `{"title":"Lean week","days":[{"day":1,"meals":[]}]}`, string(plan.Data))

	prompt := got.Messages[len(got.Messages)-1].Content
	assert.Contains(t, prompt, "vegetarian")
	assert.Contains(t, prompt, "1600 kcal")
}

func TestSuggestRecipesAndRecommendations(t *testing.T) {
	c := fakeProvider(t, `{"recipes":[{"name":"Omelette","servings":1,"calories":320,"protein":22,
		"ingredients":[{"name":"egg","quantity":2,"unit":"unit"}]}]}`, nil)
	recipes, err := c.SuggestRecipes(context.Background(), &models.User{}, []string{"egg"}, "")
	require.NoError(t, err)
	require.Len(t, recipes, 1)
	assert.Equal(t, 320.0, recipes[0].Calories)
	assert.Equal(t, "egg", recipes[0].Ingredients[0].Name)

	c = fakeProvider(t, `{"recommendations":[{"title":"Drink water","detail":"2L/day","category":"hydration"}]}`, nil)
	recs, err := c.Recommendations(context.Background(), &models.User{}, "2024-03-10: 1800 kcal")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "hydration", recs[0].Category)
}

func TestProfile(t *testing.T) {
	p := Profile(&models.User{Age: 25, WeightKg: 70, HeightCm: 175, ActivityLevel: "moderate", Goal: "maintain",
		DailyCalories: 2594, DailyProtein: 162, DailyCarbs: 324, DailyFat: 72})
	assert.Contains(t, p, "Sex: not informed")
	assert.Contains(t, p, "Weight: 70.0 kg")
	assert.Contains(t, p, "2594 kcal, 162 g protein, 324 g carbs, 72 g fat")
}
