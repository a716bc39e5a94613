package dto

import (
	"time"

	"github.com/skilins-platform/skilins-competition-api/internal/models"
)

// EvaluationParameterRequest describes one weighted judging criterion.
type EvaluationParameterRequest struct {
	Name   string  `json:"name" validate:"required,min=2"`
	Weight float64 `json:"weight" validate:"required,gt=0"`
}

// CompetitionCreateRequest is the staff payload for defining a competition.
type CompetitionCreateRequest struct {
	Title              string                       `json:"title" validate:"required,min=3"`
	Type               string                       `json:"type" validate:"required,oneof=audio video prakerin"`
	Description        string                       `json:"description"`
	Guide              string                       `json:"guide"`
	StartDate          time.Time                    `json:"start_date" validate:"required"`
	EndDate            time.Time                    `json:"end_date" validate:"required,gtfield=StartDate"`
	SubmissionDeadline time.Time                    `json:"submission_deadline" validate:"required"`
	WinnerCount        int                          `json:"winner_count" validate:"required,gte=1"`
	Parameters         []EvaluationParameterRequest `json:"parameters" validate:"required,min=1,dive"`
	JudgeUserIDs       []uint                       `json:"judge_user_ids" validate:"omitempty,dive,gt=0"`
}

// CompetitionUpdateRequest carries the same shape as creation; the slug is
// regenerated from the new title.
type CompetitionUpdateRequest = CompetitionCreateRequest

// CompetitionListQuery describes listing filters and the common pagination
// contract: when page and limit are both supplied the listing is windowed,
// otherwise everything is returned.
type CompetitionListQuery struct {
	Search string `query:"search"`
	Type   string `query:"type" validate:"omitempty,oneof=audio video prakerin"`
	Page   int    `query:"page" validate:"omitempty,gte=1"`
	Limit  int    `query:"limit" validate:"omitempty,gte=1"`
}

// CompetitionResponse is the listing projection of a competition.
type CompetitionResponse struct {
	ID                 uint      `json:"id"`
	UUID               string    `json:"uuid"`
	Slug               string    `json:"slug"`
	Title              string    `json:"title"`
	Type               string    `json:"type"`
	Description        string    `json:"description"`
	Guide              string    `json:"guide"`
	StartDate          time.Time `json:"start_date"`
	EndDate            time.Time `json:"end_date"`
	SubmissionDeadline time.Time `json:"submission_deadline"`
	WinnerCount        int       `json:"winner_count"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// EvaluationParameterResponse serializes one judging criterion.
type EvaluationParameterResponse struct {
	ID     uint    `json:"id"`
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

// JudgeResponse summarizes a judge assignment.
type JudgeResponse struct {
	ID        uint   `json:"id"`
	UserID    uint   `json:"user_id"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	Linkedin  string `json:"linkedin"`
	Instagram string `json:"instagram"`
	Evaluated bool   `json:"evaluated"`
}

// WinnerResponse serializes one ranked winner with its submission detail.
type WinnerResponse struct {
	Rank       int                 `json:"rank"`
	FinalScore float64             `json:"final_score"`
	Submission *SubmissionResponse `json:"submission,omitempty"`
}

// CompetitionDetailResponse is the slug+type detail projection including
// status-filtered submissions, judges and recorded winners.
type CompetitionDetailResponse struct {
	CompetitionResponse
	Parameters  []EvaluationParameterResponse `json:"parameters"`
	Judges      []JudgeResponse               `json:"judges"`
	Submissions []SubmissionResponse          `json:"submissions"`
	Winners     []WinnerResponse              `json:"winners"`
}

// PagedCompetitionsResponse wraps a listing page in the common envelope.
type PagedCompetitionsResponse struct {
	Items      []CompetitionResponse `json:"items"`
	Total      int64                 `json:"total"`
	Page       int                   `json:"page"`
	TotalPages int                   `json:"total_pages"`
}

// NewCompetitionResponse converts a Competition model into a DTO.
func NewCompetitionResponse(model models.Competition) CompetitionResponse {
	return CompetitionResponse{
		ID:                 model.ID,
		UUID:               model.UUID,
		Slug:               model.Slug,
		Title:              model.Title,
		Type:               model.Type,
		Description:        model.Description,
		Guide:              model.Guide,
		StartDate:          model.StartDate,
		EndDate:            model.EndDate,
		SubmissionDeadline: model.SubmissionDeadline,
		WinnerCount:        model.WinnerCount,
		CreatedAt:          model.CreatedAt,
		UpdatedAt:          model.UpdatedAt,
	}
}

// NewCompetitionResponseSlice converts a slice of models.
func NewCompetitionResponseSlice(items []models.Competition) []CompetitionResponse {
	responses := make([]CompetitionResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, NewCompetitionResponse(item))
	}
	return responses
}

// NewCompetitionDetailResponse converts a fully preloaded competition.
func NewCompetitionDetailResponse(model models.Competition) CompetitionDetailResponse {
	detail := CompetitionDetailResponse{
		CompetitionResponse: NewCompetitionResponse(model),
		Parameters:          make([]EvaluationParameterResponse, 0, len(model.Parameters)),
		Judges:              make([]JudgeResponse, 0, len(model.Judges)),
		Submissions:         NewSubmissionResponseSlice(model.Submissions),
		Winners:             make([]WinnerResponse, 0, len(model.Winners)),
	}

	for _, parameter := range model.Parameters {
		detail.Parameters = append(detail.Parameters, EvaluationParameterResponse{
			ID:     parameter.ID,
			Name:   parameter.Name,
			Weight: parameter.Weight,
		})
	}

	for _, judge := range model.Judges {
		detail.Judges = append(detail.Judges, NewJudgeResponse(judge))
	}

	for _, winner := range model.Winners {
		detail.Winners = append(detail.Winners, NewWinnerResponse(winner))
	}

	return detail
}

// NewJudgeResponse converts a judge assignment.
func NewJudgeResponse(model models.Judge) JudgeResponse {
	return JudgeResponse{
		ID:        model.ID,
		UserID:    model.UserID,
		Name:      model.User.Name,
		Role:      model.Role,
		Linkedin:  model.Linkedin,
		Instagram: model.Instagram,
		Evaluated: model.HasEvaluated(),
	}
}

// NewWinnerResponse converts a winner row.
func NewWinnerResponse(model models.Winner) WinnerResponse {
	response := WinnerResponse{
		Rank:       model.Rank,
		FinalScore: model.FinalScore,
	}

	if model.Submission.ID != 0 {
		submission := NewSubmissionResponse(model.Submission)
		response.Submission = &submission
	}

	return response
}

// NewWinnerResponseSlice converts winner rows ordered by rank.
func NewWinnerResponseSlice(items []models.Winner) []WinnerResponse {
	responses := make([]WinnerResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, NewWinnerResponse(item))
	}
	return responses
}
