package model

// Component: переиспользуемая часть, от которой зависят агенты.
type Component struct {
	Base

	Name           string  `json:"name"`
	Description    string  `json:"description"`
	Price          float64 `json:"price"`
	Logo           string  `json:"logo"`
	DependencyFile string  `json:"dependency_file"`
}

// FileRefs возвращает ссылки на файлы компонента по категориям.
func (c *Component) FileRefs() map[string]string {
	return map[string]string{
		CategoryLogo:           c.Logo,
		CategoryDependencyFile: c.DependencyFile,
	}
}

// ComponentOut: компонент с URL скачивания вместо id файлов.
type ComponentOut struct {
	Base

	Name           string  `json:"name"`
	Description    string  `json:"description"`
	Price          float64 `json:"price"`
	Logo           string  `json:"logo"`
	DependencyFile string  `json:"dependency_file"`
}

// ComponentUpdate: частичное обновление деталей компонента.
type ComponentUpdate struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
}
