package dto

import (
	"time"

	"github.com/skilins-platform/skilins-competition-api/internal/models"
)

// AudioPayload carries audio-specific submission fields.
type AudioPayload struct {
	DurationSeconds int    `form:"duration_seconds" json:"duration_seconds" validate:"required,gt=0"`
	Narrator        string `form:"narrator" json:"narrator"`
}

// VideoPayload carries video-specific submission fields.
type VideoPayload struct {
	DurationSeconds int    `form:"duration_seconds" json:"duration_seconds" validate:"required,gt=0"`
	LinkURL         string `form:"link_url" json:"link_url" validate:"omitempty,url"`
}

// PrakerinPayload carries internship-report submission fields.
type PrakerinPayload struct {
	Advisor string `form:"advisor" json:"advisor" validate:"required,min=2"`
	Pages   int    `form:"pages" json:"pages" validate:"omitempty,gt=0"`
}

// SubmissionCreateRequest is the intake payload. Exactly one of the variant
// payloads must be populated and it must match the declared Type.
type SubmissionCreateRequest struct {
	CompetitionSlug string           `json:"competition_slug" validate:"required"`
	Type            string           `json:"type" validate:"required,oneof=audio video prakerin"`
	Title           string           `json:"title" validate:"required,min=3"`
	Description     string           `json:"description"`
	Audio           *AudioPayload    `json:"audio,omitempty" validate:"omitempty"`
	Video           *VideoPayload    `json:"video,omitempty" validate:"omitempty"`
	Prakerin        *PrakerinPayload `json:"prakerin,omitempty" validate:"omitempty"`
}

// VariantForType returns whether the payload variant matching the declared
// type is present and is the only one supplied.
func (r SubmissionCreateRequest) VariantForType() bool {
	variants := 0
	matched := false

	if r.Audio != nil {
		variants++
		matched = matched || r.Type == models.ContentTypeAudio
	}
	if r.Video != nil {
		variants++
		matched = matched || r.Type == models.ContentTypeVideo
	}
	if r.Prakerin != nil {
		variants++
		matched = matched || r.Type == models.ContentTypePrakerin
	}

	return variants == 1 && matched
}

// ContentLite summarizes the content behind a submission.
type ContentLite struct {
	UUID         string `json:"uuid"`
	Type         string `json:"type"`
	Title        string `json:"title"`
	ThumbnailURL string `json:"thumbnail_url"`
	FileURL      string `json:"file_url"`
	Status       string `json:"status"`
}

// StudentLite summarizes the submitting student.
type StudentLite struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Major string `json:"major"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID            uint        `json:"id"`
	UUID          string      `json:"uuid"`
	CompetitionID uint        `json:"competition_id"`
	CreatedAt     time.Time   `json:"created_at"`
	Content       ContentLite `json:"content"`
	Student       StudentLite `json:"student"`
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	response := SubmissionResponse{
		ID:            model.ID,
		UUID:          model.UUID,
		CompetitionID: model.CompetitionID,
		CreatedAt:     model.CreatedAt,
	}

	if model.Content.ID != 0 {
		response.Content = ContentLite{
			UUID:         model.Content.UUID,
			Type:         model.Content.Type,
			Title:        model.Content.Title,
			ThumbnailURL: model.Content.ThumbnailURL,
			FileURL:      model.Content.FileURL,
			Status:       model.Content.Status,
		}
	}

	if model.Student.ID != 0 {
		response.Student = StudentLite{
			ID:    model.Student.ID,
			Name:  model.Student.User.Name,
			Major: model.Student.Major,
		}
	}

	return response
}

// NewSubmissionResponseSlice converts a slice of models.
func NewSubmissionResponseSlice(items []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, NewSubmissionResponse(item))
	}
	return responses
}

// ModerationResult reports the content status written by a moderation call.
type ModerationResult struct {
	ContentUUID string `json:"content_uuid"`
	Status      string `json:"status"`
	MailSent    bool   `json:"mail_sent"`
}
