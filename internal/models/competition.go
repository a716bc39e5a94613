package models

import "time"

// Competition defines a contest students submit content into.
type Competition struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	UUID               string    `gorm:"size:36;uniqueIndex;not null" json:"uuid"`
	Slug               string    `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	Title              string    `gorm:"size:255;not null" json:"title"`
	Type               string    `gorm:"size:32;index;not null" json:"type"`
	Description        string    `gorm:"type:text" json:"description"`
	Guide              string    `gorm:"type:text" json:"guide"`
	StartDate          time.Time `gorm:"not null" json:"start_date"`
	EndDate            time.Time `gorm:"index;not null" json:"end_date"`
	SubmissionDeadline time.Time `gorm:"not null" json:"submission_deadline"`
	WinnerCount        int       `gorm:"not null;default:1" json:"winner_count"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`

	Parameters  []EvaluationParameter `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"parameters"`
	Judges      []Judge               `json:"judges"`
	Submissions []Submission          `json:"submissions"`
	Winners     []Winner              `json:"winners"`
}

// HasEnded reports whether the competition is past its end date.
func (c Competition) HasEnded(reference time.Time) bool {
	return reference.After(c.EndDate)
}

// AcceptsSubmissions reports whether the submission deadline still allows new
// entries. Submitting exactly at the deadline is allowed.
func (c Competition) AcceptsSubmissions(reference time.Time) bool {
	return !reference.After(c.SubmissionDeadline)
}

// EvaluationParameter is a weighted judging criterion within a competition.
// Weights are conceptually percentages but the engine normalizes by the
// observed total rather than assuming they sum to 100.
type EvaluationParameter struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CompetitionID uint      `gorm:"index;not null" json:"competition_id"`
	Name          string    `gorm:"size:255;not null" json:"name"`
	Weight        float64   `gorm:"not null" json:"weight"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Scores        []Score   `gorm:"foreignKey:ParameterID" json:"scores"`
}

// Judge links a judge-role user to at most one competition at a time.
// Score acts as a once-per-competition evaluation latch: it is set when the
// judge's first evaluation lands and guards against double scoring. The
// authoritative inputs to the scoring engine are the per-parameter Score rows.
type Judge struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	CompetitionID *uint     `gorm:"index" json:"competition_id"`
	Role          string    `gorm:"size:128" json:"role"`
	Bio           string    `gorm:"type:text" json:"bio"`
	Linkedin      string    `gorm:"size:255" json:"linkedin"`
	Instagram     string    `gorm:"size:255" json:"instagram"`
	Score         *float64  `json:"score"`
	Comment       string    `gorm:"type:text" json:"comment"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	User          User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"user"`
}

// HasEvaluated reports whether the judge already submitted an evaluation for
// their assigned competition.
func (j Judge) HasEvaluated() bool {
	return j.Score != nil
}

// Winner is the persisted outcome of winner determination, one row per rank.
type Winner struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	CompetitionID uint       `gorm:"index:idx_winners_competition_rank,unique;not null" json:"competition_id"`
	SubmissionID  uint       `gorm:"uniqueIndex;not null" json:"submission_id"`
	Rank          int        `gorm:"index:idx_winners_competition_rank,unique;not null" json:"rank"`
	FinalScore    float64    `gorm:"not null" json:"final_score"`
	CreatedAt     time.Time  `json:"created_at"`
	Submission    Submission `json:"submission"`
}
