package api

import "github.com/voyago/backend/internal/service"

// PreferenceRequest is the submitted travel preference form
type PreferenceRequest struct {
	Username string `json:"username"`
	Age      string `json:"age"`
	Style    string `json:"style"`
	Activity string `json:"activity"`
}

func (r PreferenceRequest) toPreferences() service.TravelPreferences {
	return service.TravelPreferences{
		Username: r.Username,
		Age:      r.Age,
		Style:    r.Style,
		Activity: r.Activity,
	}
}

// RecommendationResponse is the successful /api/recommend body: exactly the
// three generated fields, nothing else.
type RecommendationResponse struct {
	City           string `json:"city"`
	Country        string `json:"country"`
	Recommendation string `json:"recommendation"`
}

// ErrorResponse is the uniform error body
type ErrorResponse struct {
	Error string `json:"error"`
}

// ValidationErrorResponse carries per-field validation messages
type ValidationErrorResponse struct {
	Error  string               `json:"error"`
	Fields []service.FieldError `json:"fields"`
}
