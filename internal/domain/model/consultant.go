package model

// Consultant: эксперт-консультант (хранимая форма).
type Consultant struct {
	Base

	Title            string   `json:"title"`
	Category         string   `json:"category"`
	Tagline          string   `json:"tagline"`
	Provider         string   `json:"provider"`
	Description      string   `json:"description"`
	ServicesOffered  []string `json:"services_offered"`
	IndustriesServed []string `json:"industries_served"`
	DayRate          float64  `json:"day_rate"`
	RelatedServices  []string `json:"related_services"`
	Rating           Rating   `json:"rating"`
	ResumeUpload     string   `json:"resume_upload"`
	ThumbnailImage   string   `json:"thumbnail_image"`
}

// FileRefs возвращает ссылки на файлы консультанта по категориям.
func (c *Consultant) FileRefs() map[string]string {
	return map[string]string{
		CategoryResumeUpload:   c.ResumeUpload,
		CategoryThumbnailImage: c.ThumbnailImage,
	}
}

// ConsultantOut: внешнее представление консультанта.
type ConsultantOut struct {
	Base

	Title               string        `json:"title"`
	Category            string        `json:"category"`
	Tagline             string        `json:"tagline"`
	Provider            string        `json:"provider"`
	Description         string        `json:"description"`
	ServicesOffered     []string      `json:"services_offered"`
	IndustriesServed    []string      `json:"industries_served"`
	DayRate             float64       `json:"day_rate"`
	RelatedServices     []string      `json:"related_services"`
	Rating              RatingOut     `json:"rating"`
	SupportingDocuments []DocumentOut `json:"supporting_documents"`
	ResumeUpload        string        `json:"resume_upload"`
	ThumbnailImage      string        `json:"thumbnail_image"`
}

// ConsultantUpdate: частичное обновление деталей консультанта.
// nil-поля не изменяются; пустой список очищает поле.
type ConsultantUpdate struct {
	Title            *string   `json:"title,omitempty"`
	Category         *string   `json:"category,omitempty"`
	Tagline          *string   `json:"tagline,omitempty"`
	Provider         *string   `json:"provider,omitempty"`
	Description      *string   `json:"description,omitempty"`
	ServicesOffered  *[]string `json:"services_offered,omitempty"`
	IndustriesServed *[]string `json:"industries_served,omitempty"`
	DayRate          *float64  `json:"day_rate,omitempty"`
	RelatedServices  *[]string `json:"related_services,omitempty"`
}
