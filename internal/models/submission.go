package models

import (
	"time"

	"gorm.io/datatypes"
)

// Submission is a student's content entry into one competition. At most one
// submission exists per (student, competition) pair.
type Submission struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UUID          string    `gorm:"size:36;uniqueIndex;not null" json:"uuid"`
	StudentID     uint      `gorm:"index:idx_submissions_student_competition,unique;not null" json:"student_id"`
	ContentID     uint      `gorm:"uniqueIndex;not null" json:"content_id"`
	CompetitionID uint      `gorm:"index:idx_submissions_student_competition,unique;not null" json:"competition_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Student     Student     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
	Content     Content     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"content"`
	Competition Competition `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"competition"`
	Scores      []Score     `json:"scores"`
	Winner      *Winner     `json:"winner,omitempty"`
}

// Score is one judge's rating of one submission against one evaluation
// parameter, bounded [0,5].
type Score struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ParameterID  uint      `gorm:"index:idx_scores_param_judge_submission,unique;not null" json:"parameter_id"`
	JudgeID      uint      `gorm:"index:idx_scores_param_judge_submission,unique;not null" json:"judge_id"`
	SubmissionID uint      `gorm:"index:idx_scores_param_judge_submission,unique;not null" json:"submission_id"`
	Score        float64   `gorm:"not null" json:"score"`
	Note         string    `gorm:"type:text" json:"note"`
	CreatedAt    time.Time `json:"created_at"`
}

// ModerationEvent records one moderation notification attempt, with the mail
// template context kept as JSON for auditing.
type ModerationEvent struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	SubmissionID uint           `gorm:"index;not null" json:"submission_id"`
	Outcome      string         `gorm:"size:32;not null" json:"outcome"`
	Recipient    string         `gorm:"size:255;not null" json:"recipient"`
	Subject      string         `gorm:"size:255;not null" json:"subject"`
	Context      datatypes.JSON `json:"context"`
	SentAt       *time.Time     `json:"sent_at"`
	CreatedAt    time.Time      `json:"created_at"`
}
