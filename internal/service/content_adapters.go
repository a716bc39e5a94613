package service

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/skilins-platform/skilins-competition-api/internal/dto"
	"github.com/skilins-platform/skilins-competition-api/internal/models"
	"github.com/skilins-platform/skilins-competition-api/internal/repository"
)

// FileUploader abstracts the binary asset store used for submission files.
type FileUploader interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
	Destroy(ctx context.Context, assetURL string) error
}

// ErrNoAdapterPayload indicates the payload variant for the declared content
// kind is missing.
var ErrNoAdapterPayload = errors.New("payload variant missing for declared content type")

// UploadedAssets carries the asset URLs produced before content persistence.
type UploadedAssets struct {
	FileURL      string
	ThumbnailURL string
}

// ContentCreator persists one kind of content record plus its kind-specific
// metadata and hands back the stored model.
type ContentCreator interface {
	Kind() string
	Create(ctx context.Context, payload dto.SubmissionCreateRequest, creatorID uint, assets UploadedAssets) (models.Content, error)
}

type audioContentCreator struct {
	contents repository.ContentRepository
	logger   zerolog.Logger
}

// NewAudioContentCreator builds the adapter for audio podcast submissions.
func NewAudioContentCreator(contents repository.ContentRepository, logger zerolog.Logger) ContentCreator {
	return &audioContentCreator{
		contents: contents,
		logger:   logger.With().Str("component", "audio_content_adapter").Logger(),
	}
}

func (a *audioContentCreator) Kind() string { return models.ContentTypeAudio }

func (a *audioContentCreator) Create(ctx context.Context, payload dto.SubmissionCreateRequest, creatorID uint, assets UploadedAssets) (models.Content, error) {
	if payload.Audio == nil {
		return models.Content{}, ErrNoAdapterPayload
	}

	content := newContentRecord(payload, models.ContentTypeAudio, creatorID, assets)
	content.AudioDetail = &models.AudioDetail{
		DurationSeconds: payload.Audio.DurationSeconds,
		Narrator:        strings.TrimSpace(payload.Audio.Narrator),
	}

	if err := a.contents.Create(ctx, &content); err != nil {
		return models.Content{}, err
	}

	a.logger.Info().Str("content_uuid", content.UUID).Msg("audio content created")

	return content, nil
}

type videoContentCreator struct {
	contents repository.ContentRepository
	logger   zerolog.Logger
}

// NewVideoContentCreator builds the adapter for video podcast submissions.
func NewVideoContentCreator(contents repository.ContentRepository, logger zerolog.Logger) ContentCreator {
	return &videoContentCreator{
		contents: contents,
		logger:   logger.With().Str("component", "video_content_adapter").Logger(),
	}
}

func (v *videoContentCreator) Kind() string { return models.ContentTypeVideo }

func (v *videoContentCreator) Create(ctx context.Context, payload dto.SubmissionCreateRequest, creatorID uint, assets UploadedAssets) (models.Content, error) {
	if payload.Video == nil {
		return models.Content{}, ErrNoAdapterPayload
	}

	content := newContentRecord(payload, models.ContentTypeVideo, creatorID, assets)
	content.VideoDetail = &models.VideoDetail{
		DurationSeconds: payload.Video.DurationSeconds,
		LinkURL:         strings.TrimSpace(payload.Video.LinkURL),
	}

	if err := v.contents.Create(ctx, &content); err != nil {
		return models.Content{}, err
	}

	v.logger.Info().Str("content_uuid", content.UUID).Msg("video content created")

	return content, nil
}

type prakerinContentCreator struct {
	contents repository.ContentRepository
	logger   zerolog.Logger
}

// NewPrakerinContentCreator builds the adapter for internship report submissions.
func NewPrakerinContentCreator(contents repository.ContentRepository, logger zerolog.Logger) ContentCreator {
	return &prakerinContentCreator{
		contents: contents,
		logger:   logger.With().Str("component", "prakerin_content_adapter").Logger(),
	}
}

func (p *prakerinContentCreator) Kind() string { return models.ContentTypePrakerin }

func (p *prakerinContentCreator) Create(ctx context.Context, payload dto.SubmissionCreateRequest, creatorID uint, assets UploadedAssets) (models.Content, error) {
	if payload.Prakerin == nil {
		return models.Content{}, ErrNoAdapterPayload
	}

	content := newContentRecord(payload, models.ContentTypePrakerin, creatorID, assets)
	content.PrakerinDetail = &models.PrakerinDetail{
		Advisor: strings.TrimSpace(payload.Prakerin.Advisor),
		Pages:   payload.Prakerin.Pages,
	}

	if err := p.contents.Create(ctx, &content); err != nil {
		return models.Content{}, err
	}

	p.logger.Info().Str("content_uuid", content.UUID).Msg("prakerin content created")

	return content, nil
}

func newContentRecord(payload dto.SubmissionCreateRequest, kind string, creatorID uint, assets UploadedAssets) models.Content {
	return models.Content{
		UUID:         uuid.NewString(),
		Type:         kind,
		Title:        strings.TrimSpace(payload.Title),
		Description:  strings.TrimSpace(payload.Description),
		ThumbnailURL: assets.ThumbnailURL,
		FileURL:      assets.FileURL,
		Status:       models.ContentStatusPending,
		CreatorID:    creatorID,
	}
}
