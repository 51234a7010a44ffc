package service

import (
	"context"
	"errors"
	"testing"

	"github.com/bigkaa/goartstore/catalog-module/internal/domain/model"
	"github.com/bigkaa/goartstore/catalog-module/internal/repository"
)

func TestConsultantService_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	c := env.createConsultant(t, "Jane")
	id := c.ID.String()
	if c.DayRate != 800 {
		t.Errorf("DayRate = %v", c.DayRate)
	}

	rate := 950.0
	out, err := env.consultants.UpdateDetails(ctx, id, &model.ConsultantUpdate{
		DayRate:         &rate,
		ServicesOffered: strList("audit"),
	})
	if err != nil {
		t.Fatalf("UpdateDetails() ошибка: %v", err)
	}
	if out.DayRate != 950 || len(out.ServicesOffered) != 1 || out.Title != "Jane" {
		t.Errorf("после обновления: %+v", out)
	}

	oldResume := env.fileIDFromURL(t, c.ResumeUpload)
	out, err = env.consultants.UpdateFiles(ctx, id, map[string]Upload{
		model.CategoryResumeUpload: upload("cv2.pdf", "resume:v2"),
	})
	if err != nil {
		t.Fatalf("UpdateFiles() ошибка: %v", err)
	}
	if got := env.readFile(t, env.fileIDFromURL(t, out.ResumeUpload)); got != "resume:v2" {
		t.Errorf("resume_upload = %q", got)
	}
	if _, _, _, err := env.files.Open(ctx, oldResume); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("старое резюме должно быть удалено, получено: %v", err)
	}

	if _, err := env.documents.Create(ctx, id, &model.Document{Name: "portfolio"}, upload("p.pdf", "p")); err != nil {
		t.Fatalf("Documents.Create() ошибка: %v", err)
	}
	if _, err := env.reviews.Create(ctx, model.TargetConsultant, id, &model.ReviewIn{Stars: intPtr(5)}); err != nil {
		t.Fatalf("Reviews.Create() ошибка: %v", err)
	}

	if err := env.consultants.Delete(ctx, id); err != nil {
		t.Fatalf("Delete() ошибка: %v", err)
	}
	if _, err := env.consultants.Get(ctx, id); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("консультант должен быть удалён, получено: %v", err)
	}
	if n := env.countFiles(t); n != 0 {
		t.Errorf("файлов = %d, ожидается 0", n)
	}
	if n, _ := env.stores.Documents.Count(ctx, nil); n != 0 {
		t.Errorf("документов = %d, ожидается 0", n)
	}
	if n, _ := env.stores.Reviews.Count(ctx, nil); n != 0 {
		t.Errorf("отзывов = %d, ожидается 0", n)
	}
}

func TestConsultantService_Create_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.consultants.Create(ctx, &model.Consultant{}, map[string]Upload{
		model.CategoryResumeUpload:   upload("cv.pdf", "a"),
		model.CategoryThumbnailImage: upload("me.jpg", "b"),
	}); !errors.Is(err, ErrValidation) {
		t.Errorf("без title: ожидалась ErrValidation, получено: %v", err)
	}
	if _, err := env.consultants.Create(ctx, &model.Consultant{Title: "x"}, map[string]Upload{
		model.CategoryResumeUpload: upload("cv.pdf", "a"),
	}); !errors.Is(err, ErrValidation) {
		t.Errorf("без thumbnail: ожидалась ErrValidation, получено: %v", err)
	}
}

func TestConsultantService_UpdateDetails_ClearLists(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.createConsultant(t, "Jane").ID.String()

	if _, err := env.consultants.UpdateDetails(ctx, id, &model.ConsultantUpdate{
		ServicesOffered:  strList("audit", "training"),
		IndustriesServed: strList("retail"),
	}); err != nil {
		t.Fatalf("UpdateDetails() ошибка: %v", err)
	}

	out, err := env.consultants.UpdateDetails(ctx, id, &model.ConsultantUpdate{ServicesOffered: strList()})
	if err != nil {
		t.Fatalf("UpdateDetails() ошибка: %v", err)
	}
	if len(out.ServicesOffered) != 0 {
		t.Errorf("services_offered = %v, ожидается пустой список", out.ServicesOffered)
	}
	if len(out.IndustriesServed) != 1 || out.IndustriesServed[0] != "retail" {
		t.Errorf("industries_served = %v, ожидается [retail]", out.IndustriesServed)
	}
}

func TestConsultantService_UpdateDetails_NotFound(t *testing.T) {
	env := newTestEnv(t)
	title := "x"
	_, err := env.consultants.UpdateDetails(context.Background(), repository.NewID().String(), &model.ConsultantUpdate{Title: &title})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("ожидалась ErrNotFound, получено: %v", err)
	}
}
