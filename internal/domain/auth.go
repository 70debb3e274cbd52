package domain

import "time"

// SubjectType differentiates society users vs administrators.
type SubjectType string

const (
	SubjectTypeUser  SubjectType = "USER"
	SubjectTypeAdmin SubjectType = "ADMIN"
)

// Session is the server-side record behind an issued token.
type Session struct {
	ID          string      `json:"id"`
	SubjectType SubjectType `json:"subject_type"`
	SubjectID   string      `json:"subject_id"`
	CreatedAt   time.Time   `json:"created_at"`
}

// IsAdmin reports whether the session belongs to an administrator.
func (s Session) IsAdmin() bool {
	return s.SubjectType == SubjectTypeAdmin
}
