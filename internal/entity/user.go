package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// User is the account row. Moderation state (ban, warnings, timeout) lives
// here so every admin action is a single UPDATE against one row. Ban and
// timeout are independent states that may overlap.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username     string    `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         string    `gorm:"size:20;not null;default:student" json:"role"`
	Reputation   int       `gorm:"default:0" json:"reputation"`
	AvatarURL    *string   `gorm:"type:text" json:"avatar_url,omitempty"`

	IsBanned      bool       `gorm:"default:false" json:"is_banned"`
	BanReason     *string    `gorm:"type:text" json:"ban_reason,omitempty"`
	BannedAt      *time.Time `json:"banned_at,omitempty"`
	WarningCount  int        `gorm:"default:0" json:"warning_count"`
	TimeoutUntil  *time.Time `json:"timeout_until,omitempty"`
	TimeoutReason *string    `gorm:"type:text" json:"timeout_reason,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
	Profile   *Profile  `gorm:"constraint:OnDelete:CASCADE" json:"profile,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID, err = uuid.NewV7()
	}
	return
}

// IsInTimeout is derived from the stored timestamp at evaluation time.
// Nothing clears timeout_until in the background; an expired timeout simply
// stops being true.
func (u *User) IsInTimeout() bool {
	return u.IsInTimeoutAt(time.Now())
}

func (u *User) IsInTimeoutAt(now time.Time) bool {
	return u.TimeoutUntil != nil && u.TimeoutUntil.After(now)
}

type Profile struct {
	UserID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	FullName       *string   `gorm:"size:100" json:"full_name,omitempty"`
	Bio            *string   `gorm:"type:text" json:"bio,omitempty"`
	University     *string   `gorm:"size:100" json:"university,omitempty"`
	StudyProgram   *string   `gorm:"size:100" json:"study_program,omitempty"`
	YearOfStudy    *int      `json:"year_of_study,omitempty"`
	GraduationYear *int      `json:"graduation_year,omitempty"`
	GithubURL      *string   `gorm:"type:text" json:"github_url,omitempty"`
	LinkedinURL    *string   `gorm:"type:text" json:"linkedin_url,omitempty"`
	WebsiteURL     *string   `gorm:"type:text" json:"website_url,omitempty"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
