// Package resources manages bookable resources such as rooms and equipment.
package resources

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ms-booking/internal/allocation"
	"ms-booking/internal/apperr"
	"ms-booking/internal/config"
	"ms-booking/internal/kafka"
	"ms-booking/internal/logger"
	"ms-booking/internal/models"
	"ms-booking/internal/store"

	"github.com/google/uuid"
)

const (
	maxNameLength = 100
	maxTypeLength = 50
)

type Input struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

func (in Input) validate() error {
	name, kind := strings.TrimSpace(in.Name), strings.TrimSpace(in.Type)
	switch {
	case name == "":
		return apperr.InvalidInput("name", "required")
	case len(name) > maxNameLength:
		return apperr.InvalidInput("name", fmt.Sprintf("at most %d characters", maxNameLength))
	case kind == "":
		return apperr.InvalidInput("type", "required")
	case len(kind) > maxTypeLength:
		return apperr.InvalidInput("type", fmt.Sprintf("at most %d characters", maxTypeLength))
	}
	return nil
}

type Service struct {
	store     *store.Store
	publisher kafka.Publisher
	topics    config.TopicConfig
	log       *logger.Logger
	now       func() time.Time
}

func NewService(st *store.Store, publisher kafka.Publisher, topics config.TopicConfig, log *logger.Logger) *Service {
	return &Service{
		store:     st,
		publisher: publisher,
		topics:    topics,
		log:       log,
		now:       time.Now,
	}
}

func (s *Service) Create(ctx context.Context, actor models.Actor, in Input) (*models.Resource, error) {
	if err := allocation.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	r := &models.Resource{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(in.Name),
		Type:      strings.TrimSpace(in.Type),
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.Queries().InsertResource(ctx, r); err != nil {
		return nil, err
	}

	s.log.Info("RESOURCE", fmt.Sprintf("Resource %s (%s) created", r.ID, r.Name))
	return r, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Resource, error) {
	return s.store.Queries().ResourceByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]models.Resource, error) {
	return s.store.Queries().ListResources(ctx)
}

func (s *Service) Update(ctx context.Context, actor models.Actor, id string, in Input) (*models.Resource, error) {
	if err := allocation.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	var updated *models.Resource
	err := s.store.InTx(ctx, func(ctx context.Context, q *store.Queries) error {
		r, err := q.ResourceByID(ctx, id)
		if err != nil {
			return err
		}
		r.Name = strings.TrimSpace(in.Name)
		r.Type = strings.TrimSpace(in.Type)
		if err := q.UpdateResource(ctx, r); err != nil {
			return err
		}
		updated = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the resource and every allocation of it in one transaction.
func (s *Service) Delete(ctx context.Context, actor models.Actor, id string) error {
	if err := allocation.RequireAdmin(actor); err != nil {
		return err
	}

	var removed int64
	err := s.store.InTx(ctx, func(ctx context.Context, q *store.Queries) error {
		if _, err := q.ResourceByID(ctx, id); err != nil {
			return err
		}
		var err error
		if removed, err = q.DeleteAllocationsForResource(ctx, id); err != nil {
			return err
		}
		return q.DeleteResource(ctx, id)
	})
	if err != nil {
		return err
	}

	s.log.Info("RESOURCE", fmt.Sprintf("Resource %s deleted with %d allocations", id, removed))
	kafka.PublishAfterCommit(ctx, s.publisher, s.log, s.topics.ResourceDeleted, id, models.CascadeMessage{
		EntityID:           id,
		RemovedAllocations: int(removed),
		ActorID:            actor.UserID,
		OccurredAt:         s.now().UTC(),
	})
	return nil
}
