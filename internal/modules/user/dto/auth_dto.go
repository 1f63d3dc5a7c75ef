package dto

import (
	"time"

	"github.com/google/uuid"
)

type RegisterInput struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name" binding:"max=100"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

type UserResponse struct {
	ID         uuid.UUID `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	Reputation int       `json:"reputation"`
	AvatarURL  *string   `json:"avatar_url,omitempty"`
}

type CheckEmailRequest struct {
	Email string `json:"email" binding:"required"`
}

type CheckEmailResponse struct {
	Available *bool `json:"available"`
}

type UpdateProfileInput struct {
	FullName       *string `json:"full_name,omitempty"`
	Bio            *string `json:"bio,omitempty"`
	University     *string `json:"university,omitempty"`
	StudyProgram   *string `json:"study_program,omitempty"`
	YearOfStudy    *int    `json:"year_of_study,omitempty"`
	GraduationYear *int    `json:"graduation_year,omitempty"`
	GithubURL      *string `json:"github_url,omitempty"`
	LinkedinURL    *string `json:"linkedin_url,omitempty"`
	WebsiteURL     *string `json:"website_url,omitempty"`
}
