package service

import (
	"context"
	"strings"
	"testing"

	"github.com/bigkaa/goartstore/catalog-module/internal/domain/model"
	"github.com/bigkaa/goartstore/catalog-module/internal/repository"
	"github.com/bigkaa/goartstore/catalog-module/internal/token"
)

func TestEnricher_FileURL(t *testing.T) {
	env := newTestEnv(t)

	u, err := env.enricher.FileURL("")
	if err != nil || u != "" {
		t.Errorf("FileURL(\"\") = %q, %v; ожидается пустая строка", u, err)
	}

	u, err = env.enricher.FileURL("file-42")
	if err != nil {
		t.Fatalf("FileURL() ошибка: %v", err)
	}
	if !strings.HasPrefix(u, testPrefix+"/files/") || !strings.HasSuffix(u, "/download") {
		t.Fatalf("URL = %q", u)
	}
	tok := strings.TrimSuffix(strings.TrimPrefix(u, testPrefix+"/files/"), "/download")
	claims, err := env.tokens.VerifyPurpose(tok, token.PurposeFileAccess)
	if err != nil {
		t.Fatalf("токен в URL невалиден: %v", err)
	}
	if claims.SubjectID != "file-42" || claims.Role != token.RoleNone {
		t.Errorf("claims = %+v", claims)
	}
	ttl := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	if ttl != testTokenTTL {
		t.Errorf("срок жизни токена = %v, ожидается %v", ttl, testTokenTTL)
	}
}

// Повторное построение даёт то же представление, кроме токенов в URL.
func TestEnricher_Agent_Stable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	dep := env.createComponent(t, "lib")
	agent := env.createAgent(t, "Bot")
	if _, err := env.agents.UpdateDetails(ctx, agent.ID.String(), &model.AgentUpdate{Dependencies: strList(dep.ID.String())}); err != nil {
		t.Fatalf("UpdateDetails() ошибка: %v", err)
	}
	if _, err := env.documents.Create(ctx, agent.ID.String(), &model.Document{Name: "guide"}, upload("g.pdf", "g")); err != nil {
		t.Fatalf("Documents.Create() ошибка: %v", err)
	}

	stored, err := env.stores.Agents.Verify(ctx, repository.Filter{repository.IDField: agent.ID.String()})
	if err != nil {
		t.Fatalf("Verify() ошибка: %v", err)
	}

	first, err := env.enricher.Agent(ctx, stored)
	if err != nil {
		t.Fatalf("Agent() ошибка: %v", err)
	}
	second, err := env.enricher.Agent(ctx, stored)
	if err != nil {
		t.Fatalf("Agent() ошибка: %v", err)
	}

	if first.Title != second.Title || first.Rating != second.Rating {
		t.Error("поля записи должны совпадать")
	}
	if len(second.Dependencies) != 1 || second.Dependencies[0].ID != dep.ID {
		t.Fatalf("зависимости: %+v", second.Dependencies)
	}
	if len(second.SupportingDocuments) != 1 || second.SupportingDocuments[0].Name != "guide" {
		t.Fatalf("документы: %+v", second.SupportingDocuments)
	}
	if env.fileIDFromURL(t, first.PlatformFile) != env.fileIDFromURL(t, second.PlatformFile) {
		t.Error("URL разных построений должны вести на один файл")
	}
	if stored.PlatformFile != env.fileIDFromURL(t, first.PlatformFile) {
		t.Error("хранимая запись должна содержать id файла, а не URL")
	}
}

func TestEnricher_Consultant_EmptyLists(t *testing.T) {
	env := newTestEnv(t)
	c := env.createConsultant(t, "Jane")

	if c.ServicesOffered == nil || c.IndustriesServed == nil || c.RelatedServices == nil {
		t.Error("списки должны быть пустыми, а не nil")
	}
	if c.SupportingDocuments == nil {
		t.Error("supporting_documents должен быть пустым списком")
	}
	if got := env.readFile(t, env.fileIDFromURL(t, c.ResumeUpload)); got != "resume:Jane" {
		t.Errorf("resume_upload = %q", got)
	}
}
