package service

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/skilins-platform/skilins-competition-api/internal/models"
	"github.com/skilins-platform/skilins-competition-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func buildFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {"form-data; name=\"file\"; filename=\"" + filename + "\""},
		"Content-Type":        {"application/octet-stream"},
	})
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	writer.Close()

	reader := multipart.NewReader(body, writer.Boundary())
	form, err := reader.ReadForm(int64(len(content) + 1024))
	require.NoError(t, err)
	files := form.File["file"]
	require.Len(t, files, 1)
	return files[0]
}

type memoryCompetitionRepo struct {
	competitions map[uint]models.Competition
	parameters   map[uint][]models.EvaluationParameter
	processed    map[uint]bool
	nextID       uint
	nextParamID  uint
}

func newMemoryCompetitionRepo() *memoryCompetitionRepo {
	return &memoryCompetitionRepo{
		competitions: make(map[uint]models.Competition),
		parameters:   make(map[uint][]models.EvaluationParameter),
		processed:    make(map[uint]bool),
		nextID:       1,
		nextParamID:  1,
	}
}

func (m *memoryCompetitionRepo) Create(ctx context.Context, competition *models.Competition) error {
	competition.ID = m.nextID
	m.nextID++
	for i := range competition.Parameters {
		competition.Parameters[i].ID = m.nextParamID
		competition.Parameters[i].CompetitionID = competition.ID
		m.nextParamID++
	}
	m.parameters[competition.ID] = competition.Parameters
	m.competitions[competition.ID] = *competition
	return nil
}

func (m *memoryCompetitionRepo) Update(ctx context.Context, competition *models.Competition) error {
	if _, ok := m.competitions[competition.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.competitions[competition.ID] = *competition
	return nil
}

func (m *memoryCompetitionRepo) GetByID(ctx context.Context, id uint) (models.Competition, error) {
	competition, ok := m.competitions[id]
	if !ok {
		return models.Competition{}, gorm.ErrRecordNotFound
	}
	return competition, nil
}

func (m *memoryCompetitionRepo) GetBySlug(ctx context.Context, slug string) (models.Competition, error) {
	for _, competition := range m.competitions {
		if competition.Slug == slug {
			return competition, nil
		}
	}
	return models.Competition{}, gorm.ErrRecordNotFound
}

func (m *memoryCompetitionRepo) GetDetailBySlugAndType(ctx context.Context, slug, contentType, statusFilter string) (models.Competition, error) {
	for _, competition := range m.competitions {
		if competition.Slug == slug && competition.Type == contentType {
			competition.Parameters = m.parameters[competition.ID]
			return competition, nil
		}
	}
	return models.Competition{}, gorm.ErrRecordNotFound
}

func (m *memoryCompetitionRepo) List(ctx context.Context, filter repository.CompetitionFilter) ([]models.Competition, int64, error) {
	filtered := make([]models.Competition, 0, len(m.competitions))
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	for _, competition := range m.competitions {
		if search != "" && !strings.Contains(strings.ToLower(competition.Title), search) {
			continue
		}
		if filter.Type != "" && competition.Type != filter.Type {
			continue
		}
		switch filter.Partition {
		case repository.PartitionActive:
			if competition.HasEnded(filter.Reference) {
				continue
			}
		case repository.PartitionFinished:
			if !competition.HasEnded(filter.Reference) {
				continue
			}
		}
		filtered = append(filtered, competition)
	}

	sort.Slice(filtered, func(i, j int) bool { return filtered[i].ID < filtered[j].ID })

	total := int64(len(filtered))
	if filter.Page > 0 && filter.Limit > 0 {
		start := (filter.Page - 1) * filter.Limit
		if start >= len(filtered) {
			return []models.Competition{}, total, nil
		}
		end := start + filter.Limit
		if end > len(filtered) {
			end = len(filtered)
		}
		filtered = filtered[start:end]
	}

	return filtered, total, nil
}

func (m *memoryCompetitionRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := m.competitions[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.competitions, id)
	delete(m.parameters, id)
	return nil
}

func (m *memoryCompetitionRepo) SlugExists(ctx context.Context, slug string, excludeID uint) (bool, error) {
	for _, competition := range m.competitions {
		if competition.Slug == slug && competition.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryCompetitionRepo) ReplaceParameters(ctx context.Context, competitionID uint, parameters []models.EvaluationParameter) error {
	for i := range parameters {
		parameters[i].ID = m.nextParamID
		parameters[i].CompetitionID = competitionID
		m.nextParamID++
	}
	m.parameters[competitionID] = parameters
	return nil
}

func (m *memoryCompetitionRepo) ListParameters(ctx context.Context, competitionID uint) ([]models.EvaluationParameter, error) {
	return m.parameters[competitionID], nil
}

func (m *memoryCompetitionRepo) ListEndedWithoutWinners(ctx context.Context, reference time.Time) ([]models.Competition, error) {
	results := make([]models.Competition, 0)
	for _, competition := range m.competitions {
		if competition.HasEnded(reference) && !m.processed[competition.ID] {
			results = append(results, competition)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, nil
}

type memorySubmissionRepo struct {
	submissions map[uint]models.Submission
	contents    *memoryContentRepo
	nextID      uint
	createErr   error
	created     int
}

func newMemorySubmissionRepo() *memorySubmissionRepo {
	return &memorySubmissionRepo{submissions: make(map[uint]models.Submission), nextID: 1}
}

// hydrate mirrors the Content preload done by the real repository.
func (m *memorySubmissionRepo) hydrate(submission models.Submission) models.Submission {
	if m.contents != nil {
		if content, ok := m.contents.contents[submission.ContentID]; ok {
			submission.Content = content
		}
	}
	return submission
}

func (m *memorySubmissionRepo) Create(ctx context.Context, submission *models.Submission) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, existing := range m.submissions {
		if existing.StudentID == submission.StudentID && existing.CompetitionID == submission.CompetitionID {
			return fmt.Errorf("UNIQUE constraint failed: submissions.student_id, submissions.competition_id")
		}
	}
	submission.ID = m.nextID
	submission.CreatedAt = time.Now()
	m.submissions[m.nextID] = *submission
	m.nextID++
	m.created++
	return nil
}

func (m *memorySubmissionRepo) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	submission, ok := m.submissions[id]
	if !ok {
		return models.Submission{}, gorm.ErrRecordNotFound
	}
	return m.hydrate(submission), nil
}

func (m *memorySubmissionRepo) GetByUUID(ctx context.Context, uuid string) (models.Submission, error) {
	for _, submission := range m.submissions {
		if submission.UUID == uuid {
			return submission, nil
		}
	}
	return models.Submission{}, gorm.ErrRecordNotFound
}

func (m *memorySubmissionRepo) ListByCompetition(ctx context.Context, competitionID uint) ([]models.Submission, error) {
	results := make([]models.Submission, 0)
	for _, submission := range m.submissions {
		if submission.CompetitionID == competitionID {
			results = append(results, submission)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, nil
}

func (m *memorySubmissionRepo) ExistsForStudentAndCompetition(ctx context.Context, studentID, competitionID uint) (bool, error) {
	for _, submission := range m.submissions {
		if submission.StudentID == studentID && submission.CompetitionID == competitionID {
			return true, nil
		}
	}
	return false, nil
}

type memoryScoreRepo struct {
	scores    []models.Score
	nextID    uint
	createErr error
}

func newMemoryScoreRepo() *memoryScoreRepo {
	return &memoryScoreRepo{nextID: 1}
}

func (m *memoryScoreRepo) CreateBatch(ctx context.Context, scores []models.Score) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, score := range scores {
		score.ID = m.nextID
		m.nextID++
		m.scores = append(m.scores, score)
	}
	return nil
}

func (m *memoryScoreRepo) ListBySubmission(ctx context.Context, submissionID uint) ([]models.Score, error) {
	results := make([]models.Score, 0)
	for _, score := range m.scores {
		if score.SubmissionID == submissionID {
			results = append(results, score)
		}
	}
	return results, nil
}

type memoryRatingRepo struct {
	averages map[uint]*float64
	calls    int
}

func newMemoryRatingRepo() *memoryRatingRepo {
	return &memoryRatingRepo{averages: make(map[uint]*float64)}
}

func (m *memoryRatingRepo) AverageForContent(ctx context.Context, contentID uint) (*float64, error) {
	m.calls++
	return m.averages[contentID], nil
}

type memoryWinnerRepo struct {
	winners   []models.Winner
	nextID    uint
	createErr error
}

func newMemoryWinnerRepo() *memoryWinnerRepo {
	return &memoryWinnerRepo{nextID: 1}
}

func (m *memoryWinnerRepo) CreateBatch(ctx context.Context, winners []models.Winner) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, winner := range winners {
		winner.ID = m.nextID
		m.nextID++
		m.winners = append(m.winners, winner)
	}
	return nil
}

func (m *memoryWinnerRepo) ExistsForCompetition(ctx context.Context, competitionID uint) (bool, error) {
	for _, winner := range m.winners {
		if winner.CompetitionID == competitionID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryWinnerRepo) ListByCompetition(ctx context.Context, competitionID uint) ([]models.Winner, error) {
	results := make([]models.Winner, 0)
	for _, winner := range m.winners {
		if winner.CompetitionID == competitionID {
			results = append(results, winner)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Rank < results[j].Rank })
	return results, nil
}

type memoryJudgeRepo struct {
	mu     sync.Mutex
	judges map[uint]models.Judge
}

func newMemoryJudgeRepo() *memoryJudgeRepo {
	return &memoryJudgeRepo{judges: make(map[uint]models.Judge)}
}

func (m *memoryJudgeRepo) GetByUserID(ctx context.Context, userID uint) (models.Judge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, judge := range m.judges {
		if judge.UserID == userID {
			return judge, nil
		}
	}
	return models.Judge{}, gorm.ErrRecordNotFound
}

func (m *memoryJudgeRepo) GetByUserAndCompetition(ctx context.Context, userID, competitionID uint) (models.Judge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, judge := range m.judges {
		if judge.UserID == userID && judge.CompetitionID != nil && *judge.CompetitionID == competitionID {
			return judge, nil
		}
	}
	return models.Judge{}, gorm.ErrRecordNotFound
}

func (m *memoryJudgeRepo) AssignToCompetition(ctx context.Context, judgeID, competitionID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	judge, ok := m.judges[judgeID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if judge.CompetitionID == nil || *judge.CompetitionID != competitionID {
		judge.Score = nil
		judge.Comment = ""
	}
	judge.CompetitionID = &competitionID
	m.judges[judgeID] = judge
	return nil
}

func (m *memoryJudgeRepo) ListByCompetition(ctx context.Context, competitionID uint) ([]models.Judge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	results := make([]models.Judge, 0)
	for _, judge := range m.judges {
		if judge.CompetitionID != nil && *judge.CompetitionID == competitionID {
			results = append(results, judge)
		}
	}
	return results, nil
}

func (m *memoryJudgeRepo) MarkEvaluated(ctx context.Context, judgeID uint, score float64, comment string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	judge, ok := m.judges[judgeID]
	if !ok {
		return false, gorm.ErrRecordNotFound
	}
	if judge.Score != nil {
		return false, nil
	}
	judge.Score = &score
	judge.Comment = comment
	m.judges[judgeID] = judge
	return true, nil
}

func (m *memoryJudgeRepo) ClearEvaluation(ctx context.Context, judgeID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	judge, ok := m.judges[judgeID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	judge.Score = nil
	judge.Comment = ""
	m.judges[judgeID] = judge
	return nil
}

type memoryStudentRepo struct {
	students map[uint]models.Student
}

func newMemoryStudentRepo() *memoryStudentRepo {
	return &memoryStudentRepo{students: make(map[uint]models.Student)}
}

func (m *memoryStudentRepo) GetByUserID(ctx context.Context, userID uint) (models.Student, error) {
	for _, student := range m.students {
		if student.UserID == userID {
			return student, nil
		}
	}
	return models.Student{}, gorm.ErrRecordNotFound
}

type memoryContentRepo struct {
	contents  map[uint]models.Content
	nextID    uint
	createErr error
	deleted   []uint
}

func newMemoryContentRepo() *memoryContentRepo {
	return &memoryContentRepo{contents: make(map[uint]models.Content), nextID: 1}
}

func (m *memoryContentRepo) Create(ctx context.Context, content *models.Content) error {
	if m.createErr != nil {
		return m.createErr
	}
	content.ID = m.nextID
	m.contents[m.nextID] = *content
	m.nextID++
	return nil
}

func (m *memoryContentRepo) GetByUUID(ctx context.Context, uuid string) (models.Content, error) {
	for _, content := range m.contents {
		if content.UUID == uuid {
			return content, nil
		}
	}
	return models.Content{}, gorm.ErrRecordNotFound
}

func (m *memoryContentRepo) UpdateStatus(ctx context.Context, uuid, status string) error {
	for id, content := range m.contents {
		if content.UUID == uuid {
			content.Status = status
			m.contents[id] = content
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *memoryContentRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := m.contents[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.contents, id)
	m.deleted = append(m.deleted, id)
	return nil
}
