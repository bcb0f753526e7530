package announcements

import (
	"context"
	"errors"
	"strings"
	"time"

	"barbershop-backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var ErrNotFound = errors.New("announcement not found")

type Service struct {
	repo     Repository
	location *time.Location
}

func NewService(repo Repository, location *time.Location) *Service {
	return &Service{
		repo:     repo,
		location: location,
	}
}

func (t Text) localized() models.Localized {
	return models.Localized{
		AR: strings.TrimSpace(t.AR),
		EN: strings.TrimSpace(t.EN),
		HE: strings.TrimSpace(t.HE),
	}
}

func isActive(req UpsertRequest) bool {
	if req.Active != nil {
		return *req.Active
	}
	return true
}

func (s *Service) Create(ctx context.Context, req UpsertRequest) (Announcement, error) {
	now := time.Now().In(s.location)
	item := Announcement{
		ID:        primitive.NewObjectID().Hex(),
		Text:      req.Text.localized(),
		Type:      req.Type,
		Active:    isActive(req),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return Announcement{}, err
	}
	return item, nil
}

func (s *Service) Update(ctx context.Context, id string, req UpsertRequest) (Announcement, error) {
	set := bson.M{
		"text":      req.Text.localized(),
		"type":      req.Type,
		"active":    isActive(req),
		"updatedAt": time.Now().In(s.location),
	}
	updated, err := s.repo.Update(ctx, strings.TrimSpace(id), set)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Announcement{}, ErrNotFound
		}
		return Announcement{}, err
	}
	return updated, nil
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

func (s *Service) ListActive(ctx context.Context) ([]Announcement, error) {
	return s.repo.ListActive(ctx)
}

func (s *Service) ListAdmin(ctx context.Context, filter AdminListFilter, limit, offset int64) ([]Announcement, int64, error) {
	filter.Type = strings.TrimSpace(filter.Type)
	items, err := s.repo.ListAdmin(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.CountAdmin(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
