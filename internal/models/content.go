package models

import "time"

// Content kinds accepted as competition submissions.
const (
	ContentTypeAudio    = "audio"
	ContentTypeVideo    = "video"
	ContentTypePrakerin = "prakerin"
)

// Moderation states for published content.
const (
	ContentStatusPending  = "PENDING"
	ContentStatusApproved = "APPROVED"
	ContentStatusRejected = "REJECTED"
)

// Content is the polymorphic media record behind a submission. Kind-specific
// metadata lives in the 1:1 detail rows below.
type Content struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UUID         string    `gorm:"size:36;uniqueIndex;not null" json:"uuid"`
	Type         string    `gorm:"size:32;index;not null" json:"type"`
	Title        string    `gorm:"size:255;not null" json:"title"`
	Description  string    `gorm:"type:text" json:"description"`
	ThumbnailURL string    `gorm:"size:512" json:"thumbnail_url"`
	FileURL      string    `gorm:"size:512" json:"file_url"`
	Status       string    `gorm:"size:32;index;not null;default:PENDING" json:"status"`
	CreatorID    uint      `gorm:"index;not null" json:"creator_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Creator        User            `gorm:"foreignKey:CreatorID" json:"creator"`
	AudioDetail    *AudioDetail    `json:"audio_detail,omitempty"`
	VideoDetail    *VideoDetail    `json:"video_detail,omitempty"`
	PrakerinDetail *PrakerinDetail `json:"prakerin_detail,omitempty"`
}

// IsModerated reports whether the content has left the pending state.
func (c Content) IsModerated() bool {
	return c.Status != ContentStatusPending
}

// ValidContentStatus reports whether value is a recognised moderation state.
func ValidContentStatus(value string) bool {
	switch value {
	case ContentStatusPending, ContentStatusApproved, ContentStatusRejected:
		return true
	}
	return false
}

// AudioDetail holds podcast-episode metadata for audio content.
type AudioDetail struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	ContentID       uint   `gorm:"uniqueIndex;not null" json:"content_id"`
	DurationSeconds int    `gorm:"not null" json:"duration_seconds"`
	Narrator        string `gorm:"size:255" json:"narrator"`
}

// VideoDetail holds metadata for video content.
type VideoDetail struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	ContentID       uint   `gorm:"uniqueIndex;not null" json:"content_id"`
	DurationSeconds int    `gorm:"not null" json:"duration_seconds"`
	LinkURL         string `gorm:"size:512" json:"link_url"`
}

// PrakerinDetail holds internship-report metadata.
type PrakerinDetail struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	ContentID uint   `gorm:"uniqueIndex;not null" json:"content_id"`
	Advisor   string `gorm:"size:255" json:"advisor"`
	Pages     int    `json:"pages"`
}

// Rating is a public 1-5 star rating on a piece of content.
type Rating struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ContentID uint      `gorm:"index:idx_ratings_content_user,unique;not null" json:"content_id"`
	UserID    uint      `gorm:"index:idx_ratings_content_user,unique;not null" json:"user_id"`
	Value     float64   `gorm:"not null" json:"value"`
	CreatedAt time.Time `json:"created_at"`
}
