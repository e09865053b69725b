package dto

import "time"

// TaskRequest is the admin create/update task payload
type TaskRequest struct {
	Title           string     `json:"title" validate:"required"`
	Description     string     `json:"description"`
	Type            string     `json:"type" validate:"required"`
	Reward          int64      `json:"reward" validate:"required,gt=0"`
	Icon            string     `json:"icon"`
	Link            string     `json:"link,omitempty"`
	LinkType        string     `json:"link_type,omitempty"`
	Status          string     `json:"status,omitempty"`
	StartTime       *time.Time `json:"start_time,omitempty"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	ConditionType   string     `json:"condition_type,omitempty"`
	ConditionTarget int        `json:"condition_target,omitempty"`
}

// ClaimOutput reports a paid reward
type ClaimOutput struct {
	Reward int64 `json:"reward"`
}
