package reviews

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrNotFound = errors.New("review not found")

type Service struct {
	repo     Repository
	location *time.Location
	now      func() time.Time
}

func NewService(repo Repository, location *time.Location) *Service {
	return &Service{
		repo:     repo,
		location: location,
		now:      time.Now,
	}
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (Review, error) {
	review := Review{
		ID:        primitive.NewObjectID().Hex(),
		Name:      strings.TrimSpace(req.Name),
		Rating:    req.Rating,
		Text:      strings.TrimSpace(req.Text),
		Lang:      req.Lang,
		CreatedAt: s.now().In(s.location),
	}
	if err := s.repo.Create(ctx, review); err != nil {
		return Review{}, err
	}
	return review, nil
}

func (s *Service) List(ctx context.Context, limit, offset int64) ([]Review, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, strings.TrimSpace(id))
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

// Summary reports the review count and the average rating rounded to one
// decimal place. An empty collection averages to zero.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	count, sum, err := s.repo.Totals(ctx)
	if err != nil {
		return Summary{}, err
	}
	if count == 0 {
		return Summary{}, nil
	}
	avg := float64(sum) / float64(count)
	return Summary{
		Count:   count,
		Average: math.Round(avg*10) / 10,
	}, nil
}
