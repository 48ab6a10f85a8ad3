package repo

import (
	"context"

	"github.com/KNICEX/trade-monitor/internal/entity"
	"gorm.io/gorm"
)

type AlertRepo interface {
	Create(ctx context.Context, alert entity.Alert) (int64, error)
	FindRecent(ctx context.Context, limit int) ([]entity.Alert, error)
	Count(ctx context.Context) (int64, error)
}

type alertRepo struct {
	db *gorm.DB
}

func NewAlertRepo(db *gorm.DB) AlertRepo {
	return &alertRepo{
		db: db,
	}
}

func (r *alertRepo) Create(ctx context.Context, alert entity.Alert) (int64, error) {
	err := r.db.WithContext(ctx).Create(&alert).Error
	if err != nil {
		return 0, err
	}
	return alert.Id, nil
}

// FindRecent 按时间倒序返回最近的提醒
func (r *alertRepo) FindRecent(ctx context.Context, limit int) ([]entity.Alert, error) {
	var alerts []entity.Alert
	err := r.db.WithContext(ctx).Order("created_at desc, id desc").Limit(limit).Find(&alerts).Error
	if err != nil {
		return nil, err
	}
	return alerts, nil
}

func (r *alertRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.Alert{}).Count(&n).Error
	if err != nil {
		return 0, err
	}
	return n, nil
}
