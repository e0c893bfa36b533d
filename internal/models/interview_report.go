package models

import (
	"time"

	"github.com/google/uuid"
)

type ReportStatus string

const (
	StatusQueued     ReportStatus = "queued"
	StatusProcessing ReportStatus = "processing"
	StatusCompleted  ReportStatus = "completed"
	StatusFailed     ReportStatus = "failed"
)

// InterviewReport is a persisted final analysis of one mock interview session.
// History holds the JSON-encoded answer evaluations submitted by the client.
type InterviewReport struct {
	ID                       uuid.UUID    `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	JobRole                  string       `gorm:"type:text;not null" json:"job_role"`
	Status                   ReportStatus `gorm:"not null;default:'queued'" json:"status"`
	History                  string       `gorm:"type:jsonb;not null" json:"-"`
	Narrative                *string      `gorm:"type:text" json:"narrative,omitempty"`
	AverageWPM               *int         `json:"avg_wpm,omitempty"`
	TotalPauses              *int         `json:"total_pauses,omitempty"`
	TotalFillerWords         *int         `json:"total_filler_words,omitempty"`
	AverageContentScore      *float64     `gorm:"type:decimal(3,1)" json:"avg_content_score,omitempty"`
	AverageConfidencePercent *int         `json:"avg_confidence_percent,omitempty"`
	QuestionsAnswered        int          `gorm:"not null;default:0" json:"questions_answered"`
	ErrorMessage             *string      `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt                time.Time    `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt                time.Time    `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (InterviewReport) TableName() string {
	return "interview_reports"
}

// Recording is an archived answer recording.
type Recording struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ObjectName       string    `gorm:"type:text" json:"object_name"`
	OriginalFileName string    `gorm:"type:text" json:"original_filename"`
	ContentType      string    `gorm:"type:text" json:"content_type"`
	SizeBytes        int64     `json:"size_bytes"`
	StorageDriver    string    `gorm:"type:text" json:"storage_driver"`
	JobRole          string    `gorm:"type:text" json:"job_role"`
	Question         string    `gorm:"type:text" json:"question"`
	Score            int       `json:"score"`
	CreatedAt        time.Time `gorm:"type:timestamp;default:now()" json:"created_at"`
}

func (Recording) TableName() string {
	return "recordings"
}
