package auditlog

import (
	"time"
)

// Resource types recorded in audit_logs.resource_type
const (
	ResourceUser       = "user"
	ResourceTemplate   = "template"
	ResourceInvitation = "invitation"
	ResourceRSVP       = "rsvp"
)

const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// AuditLog represents the audit_logs table
type AuditLog struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       *uint     `gorm:"index" json:"user_id"` // nullable (public RSVP, failed login)
	ResourceType string    `gorm:"size:50;not null;index" json:"resource_type"`
	ResourceID   string    `gorm:"size:64;index" json:"resource_id"`
	Action       string    `gorm:"size:100;not null;index" json:"action"`
	Details      string    `gorm:"type:jsonb" json:"details"`
	IPAddress    string    `gorm:"size:45" json:"ip_address"`
	Status       string    `gorm:"size:20;not null;index" json:"status"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// AuditLogResponse is an audit row joined with the acting user's name
type AuditLogResponse struct {
	ID           uint      `json:"id"`
	UserID       *uint     `json:"user_id"`
	ResourceType string    `json:"resource_type"`
	ResourceID   string    `json:"resource_id"`
	Action       string    `json:"action"`
	Details      string    `json:"details"`
	IPAddress    string    `json:"ip_address"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UserName     *string   `json:"user_name,omitempty"`
}

type AuditLogFilter struct {
	UserID       *uint      `json:"user_id"`
	ResourceType string     `json:"resource_type"`
	ResourceID   string     `json:"resource_id"`
	Action       string     `json:"action"`
	Status       string     `json:"status"`
	FromDate     *time.Time `json:"from_date"`
	ToDate       *time.Time `json:"to_date"`
	Page         int        `json:"page"`
	Limit        int        `json:"limit"`
}

type PaginatedAuditLogs struct {
	Data       []AuditLogResponse `json:"data"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
}
