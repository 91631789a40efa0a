package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduassess/eduassess-backend/internal/config"
	"github.com/eduassess/eduassess-backend/internal/model"
	"github.com/eduassess/eduassess-backend/internal/store"
)

type noopPaperGW struct{}

func (noopPaperGW) ListAll(ctx context.Context) ([]model.QuestionPaper, error) { return nil, nil }
func (noopPaperGW) Insert(ctx context.Context, p *model.QuestionPaper) error   { return nil }
func (noopPaperGW) Delete(ctx context.Context, id uuid.UUID) error             { return nil }

type noopStudentGW struct{}

func (noopStudentGW) ListAll(ctx context.Context) ([]model.StudentProfile, error) { return nil, nil }
func (noopStudentGW) Upsert(ctx context.Context, s *model.StudentProfile) error   { return nil }

type noopSubmissionGW struct{}

func (noopSubmissionGW) ListAll(ctx context.Context) ([]model.Submission, error)    { return nil, nil }
func (noopSubmissionGW) Insert(ctx context.Context, s *model.Submission) error      { return nil }
func (noopSubmissionGW) DeleteByPaper(ctx context.Context, paperID uuid.UUID) error { return nil }

type noopCache struct{}

func (noopCache) ReadPapers(ctx context.Context) []model.QuestionPaper        { return nil }
func (noopCache) WritePapers(ctx context.Context, p []model.QuestionPaper)    {}
func (noopCache) ReadStudents(ctx context.Context) []model.StudentProfile     { return nil }
func (noopCache) WriteStudents(ctx context.Context, s []model.StudentProfile) {}
func (noopCache) ReadSubmissions(ctx context.Context) []model.Submission      { return nil }
func (noopCache) WriteSubmissions(ctx context.Context, s []model.Submission)  {}
func (noopCache) Enqueue(ctx context.Context, payload []byte) error           { return nil }

func newTestAuthService(t *testing.T) *AuthService {
	t.Helper()
	cfg := &config.Config{
		JWTSecret:  "test-secret",
		JWTExpiry:  time.Hour,
		BcryptCost: 4,
	}
	coordinator := store.NewSyncCoordinator(
		noopPaperGW{}, noopStudentGW{}, noopSubmissionGW{}, noopCache{},
		func(err error) string { return "other" }, zerolog.Nop(),
	)
	coordinator.BootstrapLoad(context.Background())
	return NewAuthService(cfg, nil, nil, coordinator, zerolog.Nop())
}

func TestHashAndCheckPassword(t *testing.T) {
	s := newTestAuthService(t)

	hash, err := s.HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	assert.NoError(t, s.CheckPassword(hash, "correct horse"))
	assert.ErrorIs(t, s.CheckPassword(hash, "wrong"), ErrInvalidPassword)
}

func TestStudentLoginIssuesStudentToken(t *testing.T) {
	s := newTestAuthService(t)

	resp, err := s.StudentLogin(context.Background(), "Asha", "9")
	require.NoError(t, err)
	assert.Equal(t, "Asha", resp.Student.Name)
	assert.Equal(t, "9", resp.Student.Grade)

	claims, err := s.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeStudent, claims.TokenType)
	assert.Equal(t, resp.Student.ID.String(), claims.Subject)
	assert.Equal(t, "Asha", claims.Name)
	assert.Equal(t, "9", claims.Grade)
}

func TestStudentLoginSameNameDifferentGrade(t *testing.T) {
	s := newTestAuthService(t)

	ninth, err := s.StudentLogin(context.Background(), "Asha", "9")
	require.NoError(t, err)
	tenth, err := s.StudentLogin(context.Background(), "Asha", "10")
	require.NoError(t, err)
	again, err := s.StudentLogin(context.Background(), "Asha", "9")
	require.NoError(t, err)

	assert.NotEqual(t, ninth.Student.ID, tenth.Student.ID)
	assert.Equal(t, ninth.Student.ID, again.Student.ID, "repeat login reuses the profile")
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	s := newTestAuthService(t)

	resp, err := s.StudentLogin(context.Background(), "Ravi", "11")
	require.NoError(t, err)

	_, err = s.ValidateToken(resp.Token + "x")
	assert.Error(t, err)

	_, err = s.ValidateToken("not-a-token")
	assert.Error(t, err)
}
