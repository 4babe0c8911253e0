package domain

// Exercise is a single practice task. The core only cares about its
// identity and placement (area, theme, level); Content is an opaque
// payload rendered by whatever frontend consumes the engine.
type Exercise struct {
	ID      string         `json:"id" yaml:"id"`
	AreaID  string         `json:"areaId" yaml:"area_id"`
	ThemeID string         `json:"themeId" yaml:"theme_id"`
	Level   int            `json:"level" yaml:"level"`
	Content map[string]any `json:"content,omitempty" yaml:"content,omitempty"`
}

// ExercisePack groups exercises shipped together for one subject area.
type ExercisePack struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Version     string `json:"version" yaml:"version"`
	Description string `json:"description" yaml:"description"`
	AreaID      string `json:"areaId" yaml:"area_id"`
}
