package domain

// BackgroundType selects the variant of a background descriptor.
type BackgroundType string

const (
	BackgroundGradient BackgroundType = "gradient"
	BackgroundSolid    BackgroundType = "solid"
	BackgroundAI       BackgroundType = "ai"
	BackgroundImage    BackgroundType = "image"
)

// OutputSize names one of the backend's canvas presets.
type OutputSize string

const (
	OutputSizeAppStore  OutputSize = "app-store"
	OutputSizePlayStore OutputSize = "play-store"
	OutputSizeIPad      OutputSize = "ipad"
)

// BackgroundConfig carries the payload of the active background variant.
// Only the fields matching the BackgroundType are meaningful.
type BackgroundConfig struct {
	Colors []string `json:"colors,omitempty"`
	Color  string   `json:"color,omitempty"`
	Prompt string   `json:"prompt,omitempty"`
	FileID string   `json:"file_id,omitempty"`
}

// Positioning controls how the framed device sits on the canvas.
type Positioning struct {
	Scale      float64 `json:"scale"`
	Rotation   float64 `json:"rotation"`
	XOffset    float64 `json:"x_offset"`
	YOffset    float64 `json:"y_offset"`
	Shadow     bool    `json:"shadow"`
	Reflection bool    `json:"reflection"`
}

// RenderSettings is the global configuration of the simple generation flow.
type RenderSettings struct {
	DeviceFrame      string           `json:"deviceFrame"`
	BackgroundType   BackgroundType   `json:"backgroundType"`
	BackgroundConfig BackgroundConfig `json:"backgroundConfig"`
	Positioning      Positioning      `json:"positioning"`
	OutputSize       OutputSize       `json:"outputSize"`
}

// PositioningPatch updates a subset of Positioning fields.
type PositioningPatch struct {
	Scale      *float64 `json:"scale,omitempty"`
	Rotation   *float64 `json:"rotation,omitempty"`
	XOffset    *float64 `json:"x_offset,omitempty"`
	YOffset    *float64 `json:"y_offset,omitempty"`
	Shadow     *bool    `json:"shadow,omitempty"`
	Reflection *bool    `json:"reflection,omitempty"`
}

// Apply returns p with every non-nil patch field written over it.
func (pp PositioningPatch) Apply(p Positioning) Positioning {
	if pp.Scale != nil {
		p.Scale = *pp.Scale
	}
	if pp.Rotation != nil {
		p.Rotation = *pp.Rotation
	}
	if pp.XOffset != nil {
		p.XOffset = *pp.XOffset
	}
	if pp.YOffset != nil {
		p.YOffset = *pp.YOffset
	}
	if pp.Shadow != nil {
		p.Shadow = *pp.Shadow
	}
	if pp.Reflection != nil {
		p.Reflection = *pp.Reflection
	}
	return p
}

// TextOverlay is a caption burned into a preview by the backend.
type TextOverlay struct {
	Text     string `json:"text"`
	Position string `json:"position"`
	FontSize int    `json:"font_size"`
	Color    string `json:"color"`
}

// Screenshot is an uploaded source image owned by the global store.
type Screenshot struct {
	ID           string       `json:"id"`
	Filename     string       `json:"filename"`
	Path         string       `json:"path"`
	Size         int64        `json:"size"`
	LocalPreview string       `json:"localPreview,omitempty"`
	TextOverlay  *TextOverlay `json:"textOverlay"`
}
