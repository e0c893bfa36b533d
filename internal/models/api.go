package models

type GenerateQuestionsRequest struct {
	JobRole string `json:"jobRole"`
}

type GenerateQuestionsResponse struct {
	Questions []Question `json:"questions"`
	JobRole   string     `json:"jobRole"`
	IsValid   bool       `json:"isValid"`
	Fallback  bool       `json:"fallback,omitempty"`
	Message   string     `json:"message,omitempty"`
}

type FinalAnalysisRequest struct {
	History []AnswerEvaluation `json:"history"`
	JobRole string             `json:"jobRole"`
}

type CreateReportResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type ReportResultResponse struct {
	ID           string         `json:"id"`
	Status       string         `json:"status"`
	JobRole      string         `json:"jobRole"`
	Result       *SessionReport `json:"result,omitempty"`
	ErrorMessage *string        `json:"error_message,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	IsValid *bool  `json:"isValid,omitempty"`
}

type RecordingListResponse struct {
	JobRole    string      `json:"jobRole"`
	Recordings []Recording `json:"recordings"`
}
