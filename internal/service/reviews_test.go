package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/bigkaa/goartstore/catalog-module/internal/domain/model"
	"github.com/bigkaa/goartstore/catalog-module/internal/repository"
)

func intPtr(v int) *int { return &v }

// Рейтинг после серии отзывов равен сумме и количеству оценок.
func TestReviewService_RatingAggregate(t *testing.T) {
	tests := []struct {
		name  string
		stars []int
	}{
		{"один отзыв", []int{5}},
		{"граничные оценки", []int{0, 5}},
		{"серия", []int{4, 3, 5, 1, 2, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			ctx := context.Background()
			agent := env.createAgent(t, "Bot")

			sum := 0
			for _, s := range tt.stars {
				desc := "ok"
				review, err := env.reviews.Create(ctx, model.TargetAgent, agent.ID.String(), &model.ReviewIn{Stars: intPtr(s), Description: &desc})
				if err != nil {
					t.Fatalf("Create(%d) ошибка: %v", s, err)
				}
				if review.TargetID != agent.ID.String() || review.Stars != s {
					t.Errorf("отзыв: %+v", review)
				}
				sum += s
			}

			got, err := env.agents.Get(ctx, agent.ID.String())
			if err != nil {
				t.Fatalf("Get() ошибка: %v", err)
			}
			if got.Rating.TotalStars != sum || got.Rating.ReviewCount != len(tt.stars) {
				t.Errorf("рейтинг = %+v, ожидается total=%d count=%d", got.Rating, sum, len(tt.stars))
			}
			want := float64(sum) / float64(len(tt.stars))
			if math.Abs(got.Rating.Average-want) > 1e-9 {
				t.Errorf("среднее = %v, ожидается %v", got.Rating.Average, want)
			}

			n, err := env.stores.Reviews.Count(ctx, repository.Filter{"target_id": agent.ID.String()})
			if err != nil {
				t.Fatalf("Count() ошибка: %v", err)
			}
			if n != len(tt.stars) {
				t.Errorf("отзывов = %d, ожидается %d", n, len(tt.stars))
			}
		})
	}
}

func TestReviewService_Consultant(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.createConsultant(t, "Jane")

	review, err := env.reviews.Create(ctx, model.TargetConsultant, c.ID.String(), &model.ReviewIn{Stars: intPtr(3)})
	if err != nil {
		t.Fatalf("Create() ошибка: %v", err)
	}
	if review.TargetType != model.TargetConsultant || review.Description != nil {
		t.Errorf("отзыв: %+v", review)
	}

	got, err := env.consultants.Get(ctx, c.ID.String())
	if err != nil {
		t.Fatalf("Get() ошибка: %v", err)
	}
	if got.Rating.TotalStars != 3 || got.Rating.ReviewCount != 1 {
		t.Errorf("рейтинг = %+v", got.Rating)
	}
}

func TestReviewService_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	agent := env.createAgent(t, "Bot")
	consultant := env.createConsultant(t, "Jane")

	tests := []struct {
		name       string
		targetType model.TargetType
		targetID   string
		stars      *int
		wantErr    error
	}{
		{"нет оценки", model.TargetAgent, agent.ID.String(), nil, ErrValidation},
		{"оценка больше 5", model.TargetAgent, agent.ID.String(), intPtr(6), ErrValidation},
		{"отрицательная оценка", model.TargetAgent, agent.ID.String(), intPtr(-1), ErrValidation},
		{"агент не найден", model.TargetAgent, repository.NewID().String(), intPtr(3), repository.ErrNotFound},
		{"консультант под видом агента", model.TargetAgent, consultant.ID.String(), intPtr(3), repository.ErrNotFound},
		{"некорректный id", model.TargetConsultant, "bad", intPtr(3), repository.ErrMalformedID},
		{"неизвестный тип цели", "component", agent.ID.String(), intPtr(3), ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := env.reviews.Create(ctx, tt.targetType, tt.targetID, &model.ReviewIn{Stars: tt.stars}); !errors.Is(err, tt.wantErr) {
				t.Errorf("ожидалась %v, получено: %v", tt.wantErr, err)
			}
		})
	}

	n, err := env.stores.Reviews.Count(ctx, nil)
	if err != nil {
		t.Fatalf("Count() ошибка: %v", err)
	}
	if n != 0 {
		t.Errorf("после ошибок отзывов = %d, ожидается 0", n)
	}
	got, err := env.agents.Get(ctx, agent.ID.String())
	if err != nil {
		t.Fatalf("Get() ошибка: %v", err)
	}
	if got.Rating.ReviewCount != 0 {
		t.Errorf("рейтинг не должен меняться: %+v", got.Rating)
	}
}
