package auditlog

import (
	"context"
	"strings"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, log *AuditLog) error
	GetByFilter(ctx context.Context, filter AuditLogFilter) ([]AuditLogResponse, int64, error)
	GetByID(ctx context.Context, id uint) (*AuditLogResponse, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, log *AuditLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

const responseColumns = `
	al.id, al.user_id, al.resource_type, al.resource_id, al.action,
	al.details, al.ip_address, al.status, al.created_at,
	u.full_name as user_name
`

// baseQuery carries no select list so it can be counted as well as scanned.
func (r *repository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("audit_logs al").
		Joins("LEFT JOIN users u ON al.user_id = u.id")
}

// GetByFilter retrieves audit logs with filtering and pagination
func (r *repository) GetByFilter(ctx context.Context, filter AuditLogFilter) ([]AuditLogResponse, int64, error) {
	var logs []AuditLogResponse
	var total int64

	query := r.baseQuery(ctx)

	if filter.UserID != nil {
		query = query.Where("al.user_id = ?", *filter.UserID)
	}
	if filter.ResourceType != "" {
		query = query.Where("al.resource_type = ?", filter.ResourceType)
	}
	if filter.ResourceID != "" {
		query = query.Where("al.resource_id = ?", filter.ResourceID)
	}
	if filter.Action != "" {
		// LOWER/LIKE instead of ILIKE so the query also runs on sqlite
		query = query.Where("LOWER(al.action) LIKE ?", "%"+strings.ToLower(filter.Action)+"%")
	}
	if filter.Status != "" {
		query = query.Where("al.status = ?", filter.Status)
	}
	if filter.FromDate != nil {
		query = query.Where("al.created_at >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("al.created_at <= ?", *filter.ToDate)
	}

	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}

	offset := (filter.Page - 1) * filter.Limit
	err := query.Select(responseColumns).
		Order("al.created_at DESC").
		Order("al.id DESC").
		Limit(filter.Limit).
		Offset(offset).
		Find(&logs).Error
	if err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}

func (r *repository) GetByID(ctx context.Context, id uint) (*AuditLogResponse, error) {
	var log AuditLogResponse
	err := r.baseQuery(ctx).Select(responseColumns).Where("al.id = ?", id).Take(&log).Error
	if err != nil {
		return nil, err
	}
	return &log, nil
}
