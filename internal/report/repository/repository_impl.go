package repository

import (
	"context"
	"errors"

	"github.com/smallbiznis/sevadesk/internal/report/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.RunRepository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, run *domain.Run) error {
	return db.WithContext(ctx).Create(run).Error
}

func (r *repo) LatestSucceeded(ctx context.Context, db *gorm.DB, period string) (*domain.Run, error) {
	var run domain.Run
	err := db.WithContext(ctx).
		Where("period = ? AND outcome = ?", period, domain.RunOutcomeSucceeded).
		Order("created_at DESC").
		Order("id DESC").
		First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}
