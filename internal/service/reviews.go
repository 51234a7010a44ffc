// reviews.go: отзывы и агрегат рейтинга агентов и консультантов.
// Создание отзыва и увеличение счётчиков цели: две отдельные операции.
package service

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/goartstore/catalog-module/internal/domain/model"
	"github.com/bigkaa/goartstore/catalog-module/internal/repository"
)

var reviewsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "cm_reviews_total",
	Help: "Количество созданных отзывов (по типу цели).",
}, []string{"target_type"})

// ReviewService: создание отзывов.
type ReviewService struct {
	stores *repository.Stores
	logger *slog.Logger
}

// NewReviewService создаёт сервис отзывов.
func NewReviewService(stores *repository.Stores, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		stores: stores,
		logger: logger.With(slog.String("component", "review_service")),
	}
}

// ratingIncrement: приращение агрегата на одну оценку.
func ratingIncrement(stars int) repository.Mutation {
	return repository.Mutation{Inc: map[string]int64{
		"rating.total_stars":  int64(stars),
		"rating.review_count": 1,
	}}
}

// Create проверяет оценку и цель, сохраняет отзыв и увеличивает рейтинг цели.
func (s *ReviewService) Create(ctx context.Context, targetType model.TargetType, targetID string, in *model.ReviewIn) (*model.Review, error) {
	if in.Stars == nil {
		return nil, validationError("поле stars обязательно")
	}
	stars := *in.Stars
	if stars < model.MinStars || stars > model.MaxStars {
		return nil, validationError("stars должно быть от %d до %d, получено %d", model.MinStars, model.MaxStars, stars)
	}

	filter := repository.Filter{repository.IDField: targetID}
	var (
		id  string
		err error
	)
	switch targetType {
	case model.TargetAgent:
		var a *model.Agent
		if a, err = s.stores.Agents.Verify(ctx, filter); err == nil {
			id = a.ID.String()
		}
	case model.TargetConsultant:
		var c *model.Consultant
		if c, err = s.stores.Consultants.Verify(ctx, filter); err == nil {
			id = c.ID.String()
		}
	default:
		return nil, validationError("недопустимый тип цели %q", targetType)
	}
	if err != nil {
		return nil, err
	}

	review := &model.Review{
		TargetID:    id,
		TargetType:  targetType,
		Stars:       stars,
		Description: in.Description,
	}
	if _, err := s.stores.Reviews.Create(ctx, review); err != nil {
		return nil, err
	}

	inc := ratingIncrement(stars)
	switch targetType {
	case model.TargetAgent:
		err = s.stores.Agents.AdvancedUpdate(ctx, filter, inc)
	case model.TargetConsultant:
		err = s.stores.Consultants.AdvancedUpdate(ctx, filter, inc)
	}
	if err != nil {
		s.logger.Error("Отзыв сохранён, но рейтинг цели не обновлён",
			slog.String("review_id", review.ID.String()),
			slog.String("target_id", id),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	reviewsTotal.WithLabelValues(string(targetType)).Inc()
	s.logger.Info("Отзыв создан",
		slog.String("review_id", review.ID.String()),
		slog.String("target_type", string(targetType)),
		slog.String("target_id", id),
		slog.Int("stars", stars),
	)
	return review, nil
}
