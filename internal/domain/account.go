package domain

import "time"

// Account is a registered society that reports issues.
type Account struct {
	ID            string
	Name          string
	Email         string
	PasswordHash  string `json:"-"`
	SocietyName   string
	Address       string
	ContactPerson string
	ContactNumber string
	TotalFamilies int
	CreatedAt     time.Time
}

// AdminAccount is an operator who triages reported issues.
type AdminAccount struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string `json:"-"`
	CreatedAt    time.Time
}
