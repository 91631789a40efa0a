package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/eduassess/eduassess-backend/internal/config"
	"github.com/eduassess/eduassess-backend/internal/model"
)

// ErrExtractDisabled is returned when no API key is configured.
var ErrExtractDisabled = errors.New("extraction is not configured")

const extractSystemPrompt = `You read an exam document and return its content as JSON.
Respond with a single JSON object:
{
  "title": string,
  "subject": string,
  "grade": string,          // one of "8","9","10","11","12", or "" when unclear
  "questions": [
    {
      "text": string,
      "kind": "subjective" | "mcq",
      "points": number,     // default 10 when the document gives none
      "options": [string]   // literal option texts, mcq only
    }
  ]
}
Copy question and option wording exactly as written. Do not invent questions.`

// PaperDraft is the pre-filled authoring form produced by extraction.
// Every field is a suggestion the instructor can still edit.
type PaperDraft struct {
	Title     string                       `json:"title"`
	Subject   string                       `json:"subject"`
	Grade     string                       `json:"grade"`
	Questions []model.CreateQuestionRequest `json:"questions"`
}

// ExtractService turns an uploaded exam document into a paper draft using
// an OpenAI-compatible chat API.
type ExtractService struct {
	api       *openai.Client
	modelName string
	log       zerolog.Logger
}

// NewExtractService creates the service. The returned service is disabled
// (Extract returns ErrExtractDisabled) when no API key is configured.
func NewExtractService(cfg *config.Config, log zerolog.Logger) *ExtractService {
	s := &ExtractService{
		modelName: cfg.OpenAIModel,
		log:       log.With().Str("component", "extract_service").Logger(),
	}
	if cfg.OpenAIKey == "" {
		return s
	}

	apiCfg := openai.DefaultConfig(cfg.OpenAIKey)
	if cfg.OpenAIBaseURL != "" {
		apiCfg.BaseURL = cfg.OpenAIBaseURL
	}
	s.api = openai.NewClientWithConfig(apiCfg)
	return s
}

// Enabled reports whether an API key was configured.
func (s *ExtractService) Enabled() bool {
	return s.api != nil
}

// Extract sends the document to the model and parses the structured draft.
func (s *ExtractService) Extract(ctx context.Context, mimeType string, data []byte) (*PaperDraft, error) {
	if s.api == nil {
		return nil, ErrExtractDisabled
	}

	dataURI := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))

	resp, err := s.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.modelName,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: extractSystemPrompt},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: "Extract this exam document."},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: dataURI},
					},
				},
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.1,
	})
	if err != nil {
		return nil, fmt.Errorf("extraction API call: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, errors.New("extraction returned no choices")
	}

	raw := resp.Choices[0].Message.Content
	s.log.Debug().Str("raw", raw).Msg("Extraction response")

	var draft PaperDraft
	if err := json.Unmarshal([]byte(raw), &draft); err != nil {
		return nil, fmt.Errorf("parse extraction response: %w", err)
	}

	for i := range draft.Questions {
		if draft.Questions[i].Points <= 0 {
			draft.Questions[i].Points = 10
		}
		if draft.Questions[i].Kind == "" {
			draft.Questions[i].Kind = string(model.QuestionKindSubjective)
		}
	}

	return &draft, nil
}
