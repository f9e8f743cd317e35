package domain

// TemplateSettings are the defaults a template applies to every screenshot.
type TemplateSettings struct {
	DeviceFrame      string           `json:"deviceFrame"`
	TextPosition     string           `json:"textPosition,omitempty"`
	BackgroundType   BackgroundType   `json:"backgroundType"`
	BackgroundConfig BackgroundConfig `json:"backgroundConfig"`
	Positioning      Positioning      `json:"positioning"`
	CaptionStyle     string           `json:"captionStyle,omitempty"`
}

// Template is a named preset bundling frame, background and caption defaults.
type Template struct {
	ID                int              `json:"id"`
	Name              string           `json:"name"`
	Description       string           `json:"description,omitempty"`
	Thumbnail         string           `json:"thumbnail,omitempty"`
	BackendTemplateID *int             `json:"backendTemplateId"`
	HasExamples       bool             `json:"hasExamples"`
	Settings          TemplateSettings `json:"settings"`
}

// EditorScreenshot is a screenshot bound into an editing session.
type EditorScreenshot struct {
	ScreenshotPath string `json:"screenshot_path"`
	PreviewID      string `json:"preview_id"`
	Caption        string `json:"caption"`
	LocalPreview   string `json:"localPreview,omitempty"`
}

// Override is the sparse per-screenshot settings patch. A nil field falls
// back to the template default, then to the hardcoded default.
type Override struct {
	Device            *string         `json:"device,omitempty"`
	Text              *string         `json:"text,omitempty"`
	TextPosition      *string         `json:"textPosition,omitempty"`
	TextColor         *string         `json:"textColor,omitempty"`
	BackgroundType    *BackgroundType `json:"backgroundType,omitempty"`
	GradientColors    []string        `json:"gradientColors,omitempty"`
	SolidColor        *string         `json:"solidColor,omitempty"`
	BackgroundImageID *string         `json:"backgroundImageId,omitempty"`
	Rotation          *float64        `json:"rotation,omitempty"`
}

// EffectiveSettings is an Override with every field resolved.
type EffectiveSettings struct {
	Device            string         `json:"device"`
	Text              string         `json:"text"`
	TextPosition      string         `json:"textPosition"`
	TextColor         string         `json:"textColor"`
	BackgroundType    BackgroundType `json:"backgroundType"`
	GradientColors    []string       `json:"gradientColors"`
	SolidColor        string         `json:"solidColor"`
	BackgroundImageID string         `json:"backgroundImageId,omitempty"`
	Rotation          float64        `json:"rotation"`
}

// ProjectScreenshot is an editor screenshot persisted with its resolved settings.
type ProjectScreenshot struct {
	EditorScreenshot
	IndividualSettings *EffectiveSettings `json:"individual_settings,omitempty"`
}

// ProjectSettings is the consolidated settings block saved with a project.
type ProjectSettings struct {
	Device           string           `json:"device"`
	BackgroundType   BackgroundType   `json:"backgroundType"`
	BackgroundConfig BackgroundConfig `json:"backgroundConfig"`
	Positioning      Positioning      `json:"positioning"`
}

// Project is a named, persisted snapshot of an editing session.
type Project struct {
	ID              string              `json:"id"`
	Name            string              `json:"name"`
	TemplateID      *int                `json:"template_id"`
	Screenshots     []ProjectScreenshot `json:"screenshots"`
	ScreenshotEdits map[string]Override `json:"screenshot_edits,omitempty"`
	Settings        ProjectSettings     `json:"settings"`
	CreatedAt       string              `json:"created_at,omitempty"`
	UpdatedAt       string              `json:"updated_at,omitempty"`
}
