package dto

import "cryptohustle/internal/domain"

// TelegramAuthRequest is the Mini App sign-in payload
type TelegramAuthRequest struct {
	InitData     string `json:"init_data" validate:"required"`
	ReferralCode string `json:"referral_code,omitempty"`
}

// LoginRequest is the admin console login payload
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by both sign-in paths
type AuthResponse struct {
	Token      string       `json:"token"`
	User       *domain.User `json:"user"`
	IsNew      bool         `json:"is_new,omitempty"`
	DailyBonus int64        `json:"daily_bonus,omitempty"`
}
