package model

import (
	"fmt"
	"slices"
)

// Platform: платформа автоматизации агента.
type Platform string

// Допустимые платформы.
const (
	PlatformPAWeb  Platform = "Power Automate Web"
	PlatformPADesk Platform = "Power Automate Desktop"
	PlatformUiPath Platform = "UiPath"
	PlatformPython Platform = "Python"
)

// Platforms: список допустимых платформ в порядке объявления.
var Platforms = []Platform{PlatformPAWeb, PlatformPADesk, PlatformUiPath, PlatformPython}

// ParsePlatform проверяет, что значение входит в список платформ.
func ParsePlatform(s string) (Platform, error) {
	p := Platform(s)
	if !slices.Contains(Platforms, p) {
		return "", fmt.Errorf("недопустимая платформа %q, допустимые: %v", s, Platforms)
	}
	return p, nil
}

// Agent: программная автоматизация (хранимая форма).
// PlatformFile и ThumbnailImage хранят id записей File, Dependencies хранит id Component.
type Agent struct {
	Base

	Title              string   `json:"title"`
	Category           string   `json:"category"`
	Tagline            string   `json:"tagline"`
	Provider           string   `json:"provider"`
	PricingModel       string   `json:"pricing_model"`
	PlatformType       Platform `json:"platform_type"`
	DemoAvailable      bool     `json:"demo_available"`
	Description        string   `json:"description"`
	KeyFeatures        []string `json:"key_features"`
	Integrations       []string `json:"integrations"`
	RelatedAISolutions []string `json:"related_ai_solutions"`
	Rating             Rating   `json:"rating"`
	Dependencies       []string `json:"dependencies"`
	PlatformFile       string   `json:"platform_file"`
	ThumbnailImage     string   `json:"thumbnail_image"`
}

// FileRefs возвращает ссылки на файлы агента по категориям.
func (a *Agent) FileRefs() map[string]string {
	return map[string]string{
		CategoryPlatformFile:   a.PlatformFile,
		CategoryThumbnailImage: a.ThumbnailImage,
	}
}

// AgentOut: внешнее представление агента: ссылки на файлы заменены
// на URL скачивания, зависимости и документы встроены.
type AgentOut struct {
	Base

	Title               string         `json:"title"`
	Category            string         `json:"category"`
	Tagline             string         `json:"tagline"`
	Provider            string         `json:"provider"`
	PricingModel        string         `json:"pricing_model"`
	PlatformType        Platform       `json:"platform_type"`
	DemoAvailable       bool           `json:"demo_available"`
	Description         string         `json:"description"`
	KeyFeatures         []string       `json:"key_features"`
	Integrations        []string       `json:"integrations"`
	RelatedAISolutions  []string       `json:"related_ai_solutions"`
	Rating              RatingOut      `json:"rating"`
	Dependencies        []ComponentOut `json:"dependencies"`
	SupportingDocuments []DocumentOut  `json:"supporting_documents"`
	PlatformFile        string         `json:"platform_file"`
	ThumbnailImage      string         `json:"thumbnail_image"`
}

// AgentUpdate: частичное обновление деталей агента.
// nil-поля (отсутствующие или null) не изменяются; пустой список очищает поле.
type AgentUpdate struct {
	Title              *string   `json:"title,omitempty"`
	Category           *string   `json:"category,omitempty"`
	Tagline            *string   `json:"tagline,omitempty"`
	Provider           *string   `json:"provider,omitempty"`
	PricingModel       *string   `json:"pricing_model,omitempty"`
	PlatformType       *Platform `json:"platform_type,omitempty"`
	DemoAvailable      *bool     `json:"demo_available,omitempty"`
	Description        *string   `json:"description,omitempty"`
	KeyFeatures        *[]string `json:"key_features,omitempty"`
	Integrations       *[]string `json:"integrations,omitempty"`
	RelatedAISolutions *[]string `json:"related_ai_solutions,omitempty"`
	Dependencies       *[]string `json:"dependencies,omitempty"`
}
