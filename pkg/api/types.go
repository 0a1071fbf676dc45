package api

import (
	"github.com/dd0wney/cluso-dyncomm/pkg/report"
)

// AnalyzeResponse is the body of a successful POST /analyze/.
type AnalyzeResponse = report.Envelope

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error string `json:"error"`
}
