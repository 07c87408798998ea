package users

import (
	"github.com/shopspring/decimal"
)

// RoleType is the account role assigned by the user service
type RoleType string

const (
	RoleUser  RoleType = "USER"
	RoleAdmin RoleType = "ADMIN"
	RoleVIP   RoleType = "VIP"
)

type StatusType string

const (
	StatusActive    StatusType = "ACTIVE"
	StatusInactive  StatusType = "INACTIVE"
	StatusSuspended StatusType = "SUSPENDED"
	StatusLocked    StatusType = "LOCKED"
)

type RiskLevel string

const (
	RiskConservative RiskLevel = "CONSERVATIVE"
	RiskModerate     RiskLevel = "MODERATE"
	RiskAggressive   RiskLevel = "AGGRESSIVE"
)

// Profile is the user record returned by the user service. It is cached in
// client storage exactly as decoded.
type Profile struct {
	ID                  int64            `json:"id,omitempty"`
	Username            string           `json:"username,omitempty"`
	Email               string           `json:"email,omitempty"`
	FullName            string           `json:"fullName,omitempty"`
	PhoneNumber         string           `json:"phoneNumber,omitempty"`
	Role                RoleType         `json:"role,omitempty"`
	Status              StatusType       `json:"status,omitempty"`
	AccountBalance      *decimal.Decimal `json:"accountBalance,omitempty"`
	AvailableBalance    *decimal.Decimal `json:"availableBalance,omitempty"`
	RiskLevel           RiskLevel        `json:"riskLevel,omitempty"`
	EnableTrading       *bool            `json:"enableTrading,omitempty"`
	EnableNotifications *bool            `json:"enableNotifications,omitempty"`
	CreatedAt           string           `json:"createdAt,omitempty"`   // ISO local date-time
	LastLoginAt         string           `json:"lastLoginAt,omitempty"` // ISO local date-time
}

// DisplayName prefers the full name over the username.
func (p *Profile) DisplayName() string {
	if p == nil {
		return ""
	}
	if p.FullName != "" {
		return p.FullName
	}
	return p.Username
}

// Registration is the sign-up payload.
type Registration struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	FullName        string `json:"fullName,omitempty"`
	PhoneNumber     string `json:"phoneNumber,omitempty"`
}

// ProfileUpdate carries the editable profile fields. Nil fields are left
// unchanged by the server.
type ProfileUpdate struct {
	FullName            *string          `json:"fullName,omitempty"`
	PhoneNumber         *string          `json:"phoneNumber,omitempty"`
	RiskLevel           *RiskLevel       `json:"riskLevel,omitempty"`
	MaxDailyLoss        *decimal.Decimal `json:"maxDailyLoss,omitempty"`
	MaxPositionRatio    *decimal.Decimal `json:"maxPositionRatio,omitempty"`
	EnableTrading       *bool            `json:"enableTrading,omitempty"`
	EnableNotifications *bool            `json:"enableNotifications,omitempty"`
}
