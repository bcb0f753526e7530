package gallery

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

var ErrNotFound = errors.New("image not found")

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

func (c Caption) localized() models.Localized {
	return models.Localized{
		AR: strings.TrimSpace(c.AR),
		EN: strings.TrimSpace(c.EN),
		HE: strings.TrimSpace(c.HE),
	}
}

func visibleAndOrder(req UpsertRequest) (bool, int) {
	visible := true
	if req.Visible != nil {
		visible = *req.Visible
	}
	sortOrder := 0
	if req.SortOrder != nil {
		sortOrder = *req.SortOrder
	}
	return visible, sortOrder
}

func (s *Service) Create(ctx context.Context, req UpsertRequest) (Image, error) {
	now := time.Now().In(s.location)
	visible, sortOrder := visibleAndOrder(req)

	item := Image{
		ID:        primitive.NewObjectID().Hex(),
		URL:       strings.TrimSpace(req.URL),
		Caption:   req.Caption.localized(),
		Visible:   visible,
		SortOrder: sortOrder,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return Image{}, err
	}
	return item, nil
}

func (s *Service) Update(ctx context.Context, id string, req UpsertRequest) (Image, error) {
	visible, sortOrder := visibleAndOrder(req)
	set := bson.M{
		"url":       strings.TrimSpace(req.URL),
		"caption":   req.Caption.localized(),
		"visible":   visible,
		"sortOrder": sortOrder,
		"updatedAt": time.Now().In(s.location),
	}

	updated, err := s.repo.Update(ctx, strings.TrimSpace(id), set)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Image{}, ErrNotFound
		}
		return Image{}, err
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

func (s *Service) List(ctx context.Context, visibleOnly bool) ([]Image, error) {
	return s.repo.List(ctx, visibleOnly)
}
