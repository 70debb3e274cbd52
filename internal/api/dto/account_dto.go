package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spec-kit/society-waste-service/internal/domain"
)

// AccountSignupRequest is the society registration form.
type AccountSignupRequest struct {
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Password      string     `json:"password"`
	SocietyName   string     `json:"societyName"`
	Address       string     `json:"address"`
	ContactPerson string     `json:"contactPerson"`
	ContactNumber string     `json:"contactNumber"`
	TotalFamilies NumericInt `json:"totalFamilies"`
}

// NumericInt accepts a JSON number or a string holding one. Browser forms submit
// numeric inputs as strings.
type NumericInt int

// UnmarshalJSON implements json.Unmarshaler.
func (n *NumericInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			*n = 0
			return nil
		}
		data = []byte(raw)
	}
	parsed, err := strconv.Atoi(string(data))
	if err != nil {
		return fmt.Errorf("not an integer: %s", data)
	}
	*n = NumericInt(parsed)
	return nil
}

// AdminSignupRequest is the administrator registration form.
type AdminSignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest payload for every login endpoint.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupResponse is returned with 201 by both signup endpoints.
type SignupResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// AccountResponse is the public projection of a society account. The password hash is never included.
type AccountResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	SocietyName   string    `json:"societyName"`
	Address       string    `json:"address"`
	ContactPerson string    `json:"contactPerson"`
	ContactNumber string    `json:"contactNumber"`
	TotalFamilies int       `json:"totalFamilies"`
	CreatedAt     time.Time `json:"createdAt"`
}

// AdminResponse is the public projection of an administrator.
type AdminResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// LoginResponse carries the identity and the bearer token for later requests.
// ExpiresAt is omitted for tokens that do not expire.
type LoginResponse struct {
	Account   *AccountResponse `json:"account,omitempty"`
	Admin     *AdminResponse   `json:"admin,omitempty"`
	IsAdmin   bool             `json:"isAdmin"`
	Token     string           `json:"token"`
	ExpiresAt *time.Time       `json:"expiresAt,omitempty"`
}

// SessionResponse describes the caller behind a token.
type SessionResponse struct {
	SessionID   string             `json:"sessionId"`
	SubjectType domain.SubjectType `json:"subjectType"`
	IsAdmin     bool               `json:"isAdmin"`
	Account     *AccountResponse   `json:"account,omitempty"`
	Admin       *AdminResponse     `json:"admin,omitempty"`
	CreatedAt   time.Time          `json:"createdAt"`
}

// RouteResponse is the routing guard decision for a requested view.
type RouteResponse struct {
	View       string `json:"view"`
	Redirected bool   `json:"redirected"`
}

// NewAccountResponse projects an account.
func NewAccountResponse(account *domain.Account) *AccountResponse {
	if account == nil {
		return nil
	}
	return &AccountResponse{
		ID:            account.ID,
		Name:          account.Name,
		Email:         account.Email,
		SocietyName:   account.SocietyName,
		Address:       account.Address,
		ContactPerson: account.ContactPerson,
		ContactNumber: account.ContactNumber,
		TotalFamilies: account.TotalFamilies,
		CreatedAt:     account.CreatedAt,
	}
}

// NewAdminResponse projects an administrator.
func NewAdminResponse(admin *domain.AdminAccount) *AdminResponse {
	if admin == nil {
		return nil
	}
	return &AdminResponse{
		ID:        admin.ID,
		Name:      admin.Name,
		Email:     admin.Email,
		CreatedAt: admin.CreatedAt,
	}
}
