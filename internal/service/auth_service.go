package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/eduassess/eduassess-backend/internal/cache"
	"github.com/eduassess/eduassess-backend/internal/config"
	"github.com/eduassess/eduassess-backend/internal/model"
	"github.com/eduassess/eduassess-backend/internal/repository"
	"github.com/eduassess/eduassess-backend/internal/store"
)

// Common auth errors.
var (
	ErrUserNotFound    = errors.New("account not found")
	ErrInvalidPassword = errors.New("incorrect password")
)

// TokenType distinguishes student vs instructor tokens.
type TokenType string

const (
	TokenTypeStudent    TokenType = "student"
	TokenTypeInstructor TokenType = "instructor"
)

// Claims extends JWT standard claims with app-specific fields.
type Claims struct {
	jwt.RegisteredClaims
	TokenType TokenType `json:"token_type"`
	Name      string    `json:"name,omitempty"`     // Student only
	Grade     string    `json:"grade,omitempty"`    // Student only
	Username  string    `json:"username,omitempty"` // Instructor only
}

// AuthService handles instructor and student authentication.
type AuthService struct {
	cfg            *config.Config
	instructorRepo *repository.InstructorRepository
	cache          *cache.Store
	coordinator    *store.SyncCoordinator
	log            zerolog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	cfg *config.Config,
	instructorRepo *repository.InstructorRepository,
	cacheStore *cache.Store,
	coordinator *store.SyncCoordinator,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		cfg:            cfg,
		instructorRepo: instructorRepo,
		cache:          cacheStore,
		coordinator:    coordinator,
		log:            log.With().Str("component", "auth_service").Logger(),
	}
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func (s *AuthService) CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidPassword
	}
	return nil
}

// InstructorLogin verifies instructor credentials and issues a JWT.
// Not-found and wrong-password are reported as distinct errors so the
// handler can surface them separately.
func (s *AuthService) InstructorLogin(ctx context.Context, username, password string) (*model.InstructorLoginResponse, error) {
	inst, err := s.lookupInstructor(ctx, username)
	if err != nil {
		return nil, err
	}

	if err := s.CheckPassword(inst.PasswordHash, password); err != nil {
		return nil, err
	}

	if !s.coordinator.Offline() {
		if err := s.instructorRepo.TouchLastLogin(ctx, username, time.Now().UTC()); err != nil {
			s.log.Warn().Err(err).Str("username", username).Msg("Failed to record last login")
		}
	}

	token, err := s.generateToken(Claims{
		TokenType: TokenTypeInstructor,
		Username:  username,
	}, username)
	if err != nil {
		return nil, err
	}

	return &model.InstructorLoginResponse{Token: token, Instructor: *inst}, nil
}

// InstructorReset replaces an instructor's password digest. The account is
// created when it does not exist yet.
func (s *AuthService) InstructorReset(ctx context.Context, username, password string) error {
	hash, err := s.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	inst := model.Instructor{
		Username:     username,
		PasswordHash: hash,
		LastLogin:    time.Now().UTC(),
	}

	if !s.coordinator.Offline() {
		if err := s.instructorRepo.Upsert(ctx, &inst); err != nil {
			return err
		}
	}

	s.syncInstructorCache(ctx, inst)
	return nil
}

// StudentLogin resolves the student profile through the coordinator and
// issues a student JWT. Students are identified by (name, grade); a new
// profile is minted on first login.
func (s *AuthService) StudentLogin(ctx context.Context, name, grade string) (*model.StudentLoginResponse, error) {
	student := s.coordinator.ResolveStudent(ctx, name, grade)

	token, err := s.generateToken(Claims{
		TokenType: TokenTypeStudent,
		Name:      student.Name,
		Grade:     student.Grade,
	}, student.ID.String())
	if err != nil {
		return nil, err
	}

	return &model.StudentLoginResponse{Token: token, Student: student}, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}

func (s *AuthService) generateToken(claims Claims, subject string) (string, error) {
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        uuid.New().String(),
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// lookupInstructor reads the account from Postgres when online, falling back
// to the cached copy when the database cannot be reached.
func (s *AuthService) lookupInstructor(ctx context.Context, username string) (*model.Instructor, error) {
	if !s.coordinator.Offline() {
		inst, err := s.instructorRepo.GetByUsername(ctx, username)
		if err == nil {
			s.syncInstructorCache(ctx, *inst)
			return inst, nil
		}
		switch repository.KindOf(err) {
		case repository.KindNotFound:
			return nil, ErrUserNotFound
		case repository.KindUnavailable:
			s.log.Warn().Err(err).Msg("Instructor lookup unavailable, using cached accounts")
		default:
			return nil, err
		}
	}

	instructors := s.cache.ReadInstructors(ctx)
	for i := range instructors {
		if instructors[i].Username == username {
			return &instructors[i], nil
		}
	}
	return nil, ErrUserNotFound
}

// syncInstructorCache keeps the cached account list current so logins keep
// working when the database is unreachable.
func (s *AuthService) syncInstructorCache(ctx context.Context, inst model.Instructor) {
	instructors := s.cache.ReadInstructors(ctx)

	replaced := false
	for i := range instructors {
		if instructors[i].Username == inst.Username {
			instructors[i] = inst
			replaced = true
			break
		}
	}
	if !replaced {
		instructors = append(instructors, inst)
	}

	s.cache.WriteInstructors(ctx, instructors)
}
