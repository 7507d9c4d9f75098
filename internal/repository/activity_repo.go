package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/noah-isme/mergington-api/internal/models"
)

var (
	// ErrActivityNotFound indicates the requested activity is not in the catalog.
	ErrActivityNotFound = errors.New("activity not found")
	// ErrAlreadySignedUp indicates the email is already on the activity roster.
	ErrAlreadySignedUp = errors.New("student already signed up for this activity")
	// ErrNotSignedUp indicates the email is not on the activity roster.
	ErrNotSignedUp = errors.New("student not signed up for this activity")
)

// ActivityRepository holds the activity catalog and participant rosters.
type ActivityRepository interface {
	List(ctx context.Context) []models.Activity
	Get(ctx context.Context, name string) (models.Activity, error)
	AddParticipant(ctx context.Context, name, email string) (models.Activity, error)
	RemoveParticipant(ctx context.Context, name, email string) (models.Activity, error)
}

type activityRepository struct {
	mu         sync.RWMutex
	order      []string
	activities map[string]*models.Activity
}

// NewActivityRepository seeds an in-memory registry. Catalog order is preserved.
func NewActivityRepository(seed []models.Activity) (ActivityRepository, error) {
	repo := &activityRepository{
		order:      make([]string, 0, len(seed)),
		activities: make(map[string]*models.Activity, len(seed)),
	}

	for _, activity := range seed {
		if activity.Name == "" {
			return nil, fmt.Errorf("activity name must not be empty")
		}
		if _, exists := repo.activities[activity.Name]; exists {
			return nil, fmt.Errorf("duplicate activity %q", activity.Name)
		}

		seen := make(map[string]struct{}, len(activity.Participants))
		for _, email := range activity.Participants {
			if _, dup := seen[email]; dup {
				return nil, fmt.Errorf("duplicate participant %q in %q", email, activity.Name)
			}
			seen[email] = struct{}{}
		}

		clone := activity.Clone()
		repo.activities[activity.Name] = &clone
		repo.order = append(repo.order, activity.Name)
	}

	return repo, nil
}

func (r *activityRepository) List(_ context.Context) []models.Activity {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]models.Activity, 0, len(r.order))
	for _, name := range r.order {
		result = append(result, r.activities[name].Clone())
	}
	return result
}

func (r *activityRepository) Get(_ context.Context, name string) (models.Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	activity, ok := r.activities[name]
	if !ok {
		return models.Activity{}, ErrActivityNotFound
	}
	return activity.Clone(), nil
}

func (r *activityRepository) AddParticipant(_ context.Context, name, email string) (models.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	activity, ok := r.activities[name]
	if !ok {
		return models.Activity{}, ErrActivityNotFound
	}
	if activity.HasParticipant(email) {
		return models.Activity{}, ErrAlreadySignedUp
	}

	activity.Participants = append(activity.Participants, email)
	return activity.Clone(), nil
}

func (r *activityRepository) RemoveParticipant(_ context.Context, name, email string) (models.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	activity, ok := r.activities[name]
	if !ok {
		return models.Activity{}, ErrActivityNotFound
	}

	for i, participant := range activity.Participants {
		if participant == email {
			activity.Participants = append(activity.Participants[:i], activity.Participants[i+1:]...)
			return activity.Clone(), nil
		}
	}

	return models.Activity{}, ErrNotSignedUp
}
