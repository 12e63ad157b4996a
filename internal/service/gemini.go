package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/voyago/backend/config"
)

// TravelPreferences is the validated form input driving a generation request
type TravelPreferences struct {
	Username string `json:"username"`
	Age      string `json:"age"`
	Style    string `json:"style"`
	Activity string `json:"activity"`
}

// TravelIdea is the structured destination returned by the model. All three
// fields are guaranteed non-empty when Generate returns without error.
type TravelIdea struct {
	City           string `json:"city"`
	Country        string `json:"country"`
	Recommendation string `json:"recommendation"`
}

// Generation failure classes. Each maps to a distinct HTTP error body in
// the API layer; upstream detail is logged server-side only.
var (
	ErrMissingAPIKey         = errors.New("GEMINI_API_KEY is not configured")
	ErrUpstream              = errors.New("request failed")
	ErrNoContent             = errors.New("could not get structured recommendation")
	ErrBadJSON               = errors.New("invalid JSON format")
	ErrMissingCity           = errors.New("missing field in response: city")
	ErrMissingCountry        = errors.New("missing field in response: country")
	ErrMissingRecommendation = errors.New("missing field in response: recommendation")
)

const defaultGeminiURL = "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:generateContent"

// geminiRequest is the generateContent payload with a structured-output
// schema: the service is contracted to answer with JSON matching the schema.
type geminiRequest struct {
	Contents         []geminiContent  `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMimeType string        `json:"responseMimeType"`
	ResponseSchema   *schemaObject `json:"responseSchema"`
}

type schemaObject struct {
	Type       string                  `json:"type"`
	Properties map[string]schemaObject `json:"properties,omitempty"`
	Required   []string                `json:"required,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// GeminiService calls the Gemini generateContent API in structured mode
type GeminiService struct {
	apiKey string
	apiURL string
	client *http.Client
	logger *zap.Logger
}

// NewGeminiService creates a new GeminiService instance
func NewGeminiService(cfg *config.Config, logger *zap.Logger) *GeminiService {
	apiURL := cfg.GeminiAPIURL
	if apiURL == "" {
		apiURL = defaultGeminiURL
	}

	return &GeminiService{
		apiKey: cfg.GeminiAPIKey,
		apiURL: apiURL,
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logger,
	}
}

// buildPrompt embeds the preferences into a single-destination instruction.
// The JSON shape is restated in prose even though the schema already forces
// it; models follow the contract more reliably when both are present.
func buildPrompt(prefs TravelPreferences) string {
	return fmt.Sprintf(
		"You are a travel expert. %s is %s years old, prefers a %s travel style and enjoys %s. "+
			"Recommend exactly one destination city that fits these preferences. "+
			"Respond with a JSON object of exactly three string fields: "+
			`"city", "country" and "recommendation" (a short explanation of why the city fits).`,
		prefs.Username, prefs.Age, prefs.Style, prefs.Activity,
	)
}

func travelIdeaSchema() *schemaObject {
	return &schemaObject{
		Type: "OBJECT",
		Properties: map[string]schemaObject{
			"city":           {Type: "STRING"},
			"country":        {Type: "STRING"},
			"recommendation": {Type: "STRING"},
		},
		Required: []string{"city", "country", "recommendation"},
	}
}

// Generate asks Gemini for a travel idea matching the preferences.
// The credential check runs before any network I/O so a misconfigured
// deployment fails fast without burning an upstream call.
func (s *GeminiService) Generate(ctx context.Context, prefs TravelPreferences) (*TravelIdea, error) {
	if s.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	reqBody := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: buildPrompt(prefs)}}},
		},
		GenerationConfig: generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   travelIdeaSchema(),
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := s.apiURL + "?key=" + url.QueryEscape(s.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Error("gemini request failed", zap.Error(err))
		return nil, ErrUpstream
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		s.logger.Error("gemini returned non-2xx status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body),
		)
		return nil, ErrUpstream
	}

	var result geminiResponse
	if err := json.Unmarshal(body, &result); err != nil {
		s.logger.Error("failed to decode gemini envelope",
			zap.Error(err),
			zap.ByteString("body", body),
		)
		return nil, ErrNoContent
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		s.logger.Error("gemini response has no content", zap.ByteString("body", body))
		return nil, ErrNoContent
	}

	text := result.Candidates[0].Content.Parts[0].Text
	if text == "" {
		s.logger.Error("gemini response has empty text part", zap.ByteString("body", body))
		return nil, ErrNoContent
	}

	var idea TravelIdea
	if err := json.Unmarshal([]byte(text), &idea); err != nil {
		s.logger.Error("gemini text part is not valid JSON",
			zap.Error(err),
			zap.String("text", text),
		)
		return nil, ErrBadJSON
	}

	// The schema forces syntactic validity only; fields may still be empty.
	// Checked in a fixed order so the first missing field is the one reported.
	switch {
	case idea.City == "":
		return nil, ErrMissingCity
	case idea.Country == "":
		return nil, ErrMissingCountry
	case idea.Recommendation == "":
		return nil, ErrMissingRecommendation
	}

	return &idea, nil
}
