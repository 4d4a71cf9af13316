package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
)

type Client struct {
	client *openai.Client
	model  string
}

func New(apiKey, baseURL, model string) *Client {
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = baseURL

	return &Client{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

// MedicationDraft is the structured form of a free-text medication phrase,
// e.g. "take aspirin every morning at 9 before breakfast".
type MedicationDraft struct {
	Name       string  `json:"name"`
	Dose       string  `json:"dose"`
	Date       string  `json:"date"` // YYYY-MM-DD
	Time       string  `json:"time"` // HH:MM
	Recurrence string  `json:"recurrence"`
	MealTiming string  `json:"meal_timing"`
	Confidence float64 `json:"confidence"`
	Reply      string  `json:"reply"`
}

const systemPromptTemplate = `You turn a user's medication reminder phrase into a structured draft.

Current time: %s

Fields:
- name: medication name
- dose: amount, e.g. "1 tablet", "5 ml"; default "1 tablet" when unstated
- date: first occurrence date as YYYY-MM-DD; resolve relative dates ("tomorrow") against the current time; default today
- time: time of day as HH:MM (24h); required
- recurrence: one of "once", "daily", "weekly", "monthly"; default "once"
- meal_timing: one of "before_meal", "after_meal", "with_meal"; default "before_meal"
- confidence: 0..1, how sure you are this is a medication reminder request
- reply: short friendly confirmation or, when the phrase is not a medication request, an explanation`

var draftSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"name": {"type": "string"},
		"dose": {"type": "string"},
		"date": {"type": "string"},
		"time": {"type": "string"},
		"recurrence": {"type": "string", "enum": ["once", "daily", "weekly", "monthly"]},
		"meal_timing": {"type": "string", "enum": ["before_meal", "after_meal", "with_meal"]},
		"confidence": {"type": "number", "minimum": 0, "maximum": 1},
		"reply": {"type": "string"}
	},
	"required": ["name", "time", "recurrence", "confidence"],
	"additionalProperties": false
}`)

// ParseMedication extracts a medication draft from free text.
func (c *Client) ParseMedication(ctx context.Context, text string, now time.Time) (*MedicationDraft, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: fmt.Sprintf(systemPromptTemplate, now.Format("2006-01-02 15:04 (Monday)")),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: text,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "medication_draft",
				Schema: draftSchema,
				Strict: true,
			},
		},
		Temperature: 0.1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to call AI API: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from AI")
	}

	draft := &MedicationDraft{}
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), draft); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w", err)
	}
	return draft, nil
}
