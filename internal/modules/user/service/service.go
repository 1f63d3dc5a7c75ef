package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"skripta.hr/forum/internal/entity"
	"skripta.hr/forum/internal/modules/user/dto"
	"skripta.hr/forum/internal/modules/user/repository"
	"skripta.hr/forum/pkg/apperror"
)

type AuthService interface {
	Register(ctx context.Context, input dto.RegisterInput) (*dto.AuthResponse, error)
	Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error)
	CheckEmail(ctx context.Context, email string) (*bool, error)
	GetProfile(ctx context.Context, username string) (*entity.User, error)
	GetProfileByID(ctx context.Context, userID string) (*entity.User, error)
	UpdateProfile(ctx context.Context, userID string, input dto.UpdateProfileInput) (*entity.User, error)
}

type authService struct {
	repo     repository.UserRepository
	secret   string
	tokenTTL time.Duration
}

func NewAuthService(repo repository.UserRepository) AuthService {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "change-me"
	}

	ttl := 24 * time.Hour
	if ttlStr := os.Getenv("JWT_TTL"); ttlStr != "" {
		if parsed, err := time.ParseDuration(ttlStr); err == nil {
			ttl = parsed
		}
	}

	return &authService{
		repo:     repo,
		secret:   secret,
		tokenTTL: ttl,
	}
}

func (s *authService) Register(ctx context.Context, input dto.RegisterInput) (*dto.AuthResponse, error) {
	if _, err := s.repo.FindByEmail(ctx, input.Email); err == nil {
		return nil, fmt.Errorf("email je već registriran: %w", apperror.ErrBadRequest)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if _, err := s.repo.FindByUsername(ctx, input.Username); err == nil {
		return nil, fmt.Errorf("korisničko ime je zauzeto: %w", apperror.ErrBadRequest)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		Role:         entity.RoleStudent,
	}

	var profile *entity.Profile
	if input.FullName != "" {
		fullName := input.FullName
		profile = &entity.Profile{FullName: &fullName}
	}

	if err := s.repo.Create(ctx, user, profile); err != nil {
		return nil, err
	}

	return s.buildAuthResponse(user)
}

func (s *authService) Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error) {
	user, err := s.repo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("neispravni podaci za prijavu: %w", apperror.ErrUnauthorized)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, fmt.Errorf("neispravni podaci za prijavu: %w", apperror.ErrUnauthorized)
	}

	if user.IsBanned {
		return nil, fmt.Errorf("račun je blokiran: %w", apperror.ErrAccountSuspended)
	}

	return s.buildAuthResponse(user)
}

// CheckEmail backs the same-origin availability endpoint. A malformed email
// yields nil ("unknown") rather than an error so the client can keep typing.
func (s *authService) CheckEmail(ctx context.Context, email string) (*bool, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, nil
	}

	exists, err := s.repo.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}

	available := !exists
	return &available, nil
}

func (s *authService) GetProfile(ctx context.Context, username string) (*entity.User, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("korisnik nije pronađen: %w", apperror.ErrNotFound)
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *authService) GetProfileByID(ctx context.Context, userID string) (*entity.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("korisnik nije pronađen: %w", apperror.ErrNotFound)
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *authService) UpdateProfile(ctx context.Context, userID string, input dto.UpdateProfileInput) (*entity.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("korisnik nije pronađen: %w", apperror.ErrNotFound)
	}

	if user.Profile == nil {
		user.Profile = &entity.Profile{UserID: user.ID}
	}

	if input.FullName != nil {
		user.Profile.FullName = input.FullName
	}
	if input.Bio != nil {
		user.Profile.Bio = input.Bio
	}
	if input.University != nil {
		user.Profile.University = input.University
	}
	if input.StudyProgram != nil {
		user.Profile.StudyProgram = input.StudyProgram
	}
	if input.YearOfStudy != nil {
		user.Profile.YearOfStudy = input.YearOfStudy
	}
	if input.GraduationYear != nil {
		user.Profile.GraduationYear = input.GraduationYear
	}
	if input.GithubURL != nil {
		user.Profile.GithubURL = input.GithubURL
	}
	if input.LinkedinURL != nil {
		user.Profile.LinkedinURL = input.LinkedinURL
	}
	if input.WebsiteURL != nil {
		user.Profile.WebsiteURL = input.WebsiteURL
	}

	if err := s.repo.Update(ctx, user, user.Profile); err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return user, nil
}

func (s *authService) buildAuthResponse(user *entity.User) (*dto.AuthResponse, error) {
	expiresAt := time.Now().Add(s.tokenTTL)

	claims := jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &dto.AuthResponse{
		Token:     signed,
		ExpiresAt: expiresAt,
		User: dto.UserResponse{
			ID:         user.ID,
			Username:   user.Username,
			Email:      user.Email,
			Role:       user.Role,
			Reputation: user.Reputation,
			AvatarURL:  user.AvatarURL,
		},
	}, nil
}
