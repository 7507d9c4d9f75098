package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/mergington-api/internal/models"
)

// RosterChangeFilter narrows roster change queries.
type RosterChangeFilter struct {
	Activity string
	Email    string
	Limit    int
}

// RosterChangeRepository persists the roster audit trail.
type RosterChangeRepository interface {
	Create(ctx context.Context, entry *models.RosterChange) error
	List(ctx context.Context, filter RosterChangeFilter) ([]models.RosterChange, error)
}

type rosterChangeRepository struct {
	db *gorm.DB
}

// NewRosterChangeRepository constructs the roster change repository.
func NewRosterChangeRepository(db *gorm.DB) RosterChangeRepository {
	return &rosterChangeRepository{db: db}
}

func (r *rosterChangeRepository) Create(ctx context.Context, entry *models.RosterChange) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *rosterChangeRepository) List(ctx context.Context, filter RosterChangeFilter) ([]models.RosterChange, error) {
	query := r.db.WithContext(ctx).Model(&models.RosterChange{})

	if filter.Activity != "" {
		query = query.Where("activity = ?", filter.Activity)
	}
	if filter.Email != "" {
		query = query.Where("email = ?", filter.Email)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var entries []models.RosterChange
	if err := query.Order("created_at DESC").Order("id DESC").Find(&entries).Error; err != nil {
		return nil, err
	}

	return entries, nil
}
