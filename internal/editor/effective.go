package editor

import (
	"preview-studio/internal/api"
	"preview-studio/internal/domain"
)

// Fallbacks used when neither an override nor the template sets a field.
const (
	DefaultDevice       = "iphone-15-pro"
	DefaultTextPosition = "top"
	DefaultTextColor    = "white"
	DefaultSolidColor   = "#ffffff"
)

// DefaultGradient is the fallback gradient pair.
var DefaultGradient = []string{"#667eea", "#764ba2"}

var defaultPositioning = domain.Positioning{Scale: 0.85, Shadow: true}

// resolve computes the effective settings of one screenshot. Precedence is
// override, then template, then the package fallbacks. Empty strings count as
// unset; a set rotation of 0 is kept.
func resolve(o domain.Override, tpl domain.TemplateSettings, caption string) domain.EffectiveSettings {
	eff := domain.EffectiveSettings{
		Device:         firstNonEmpty(deref(o.Device), tpl.DeviceFrame, DefaultDevice),
		Text:           firstNonEmpty(deref(o.Text), caption),
		TextPosition:   firstNonEmpty(deref(o.TextPosition), tpl.TextPosition, DefaultTextPosition),
		TextColor:      firstNonEmpty(deref(o.TextColor), DefaultTextColor),
		BackgroundType: domain.BackgroundType(firstNonEmpty(string(derefType(o.BackgroundType)), string(tpl.BackgroundType), string(domain.BackgroundGradient))),
		SolidColor:     firstNonEmpty(deref(o.SolidColor), tpl.BackgroundConfig.Color, DefaultSolidColor),
		Rotation:       tpl.Positioning.Rotation,
	}

	switch {
	case len(o.GradientColors) > 0:
		eff.GradientColors = append([]string(nil), o.GradientColors...)
	case len(tpl.BackgroundConfig.Colors) > 0:
		eff.GradientColors = append([]string(nil), tpl.BackgroundConfig.Colors...)
	default:
		eff.GradientColors = append([]string(nil), DefaultGradient...)
	}
	if o.BackgroundImageID != nil {
		eff.BackgroundImageID = *o.BackgroundImageID
	}
	if o.Rotation != nil {
		eff.Rotation = *o.Rotation
	}
	return eff
}

// renderRequest builds the full-form edit body for one screenshot.
func renderRequest(shot domain.EditorScreenshot, eff domain.EffectiveSettings, tpl domain.TemplateSettings) api.RenderPreviewRequest {
	positioning := tpl.Positioning
	if positioning.Scale <= 0 {
		positioning = defaultPositioning
	}
	positioning.Rotation = eff.Rotation

	req := api.RenderPreviewRequest{
		ScreenshotPath: shot.ScreenshotPath,
		Caption:        eff.Text,
		TextPosition:   eff.TextPosition,
		TextColor:      eff.TextColor,
		DeviceFrame:    eff.Device,
		BackgroundType: eff.BackgroundType,
		Positioning:    positioning,
	}
	switch eff.BackgroundType {
	case domain.BackgroundGradient:
		req.BackgroundConfig = domain.BackgroundConfig{Colors: eff.GradientColors}
	case domain.BackgroundSolid:
		req.BackgroundConfig = domain.BackgroundConfig{Color: eff.SolidColor}
	case domain.BackgroundImage:
		if eff.BackgroundImageID != "" {
			id := eff.BackgroundImageID
			req.BackgroundImageID = &id
		}
	}
	return req
}

// backgroundConfig projects effective settings onto the project settings block.
func backgroundConfig(eff domain.EffectiveSettings) domain.BackgroundConfig {
	if eff.BackgroundType == domain.BackgroundGradient {
		return domain.BackgroundConfig{Colors: append([]string(nil), eff.GradientColors...)}
	}
	return domain.BackgroundConfig{Color: eff.SolidColor}
}

// overrideFromEffective turns resolved settings back into a full override.
func overrideFromEffective(eff domain.EffectiveSettings) domain.Override {
	o := domain.Override{
		Device:         ptr(eff.Device),
		Text:           ptr(eff.Text),
		TextPosition:   ptr(eff.TextPosition),
		TextColor:      ptr(eff.TextColor),
		BackgroundType: ptr(eff.BackgroundType),
		GradientColors: append([]string(nil), eff.GradientColors...),
		SolidColor:     ptr(eff.SolidColor),
		Rotation:       ptr(eff.Rotation),
	}
	if eff.BackgroundImageID != "" {
		o.BackgroundImageID = ptr(eff.BackgroundImageID)
	}
	return o
}

// merge writes every set field of patch over base.
func merge(base, patch domain.Override) domain.Override {
	out := cloneOverride(base)
	if patch.Device != nil {
		out.Device = ptr(*patch.Device)
	}
	if patch.Text != nil {
		out.Text = ptr(*patch.Text)
	}
	if patch.TextPosition != nil {
		out.TextPosition = ptr(*patch.TextPosition)
	}
	if patch.TextColor != nil {
		out.TextColor = ptr(*patch.TextColor)
	}
	if patch.BackgroundType != nil {
		out.BackgroundType = ptr(*patch.BackgroundType)
	}
	if patch.GradientColors != nil {
		out.GradientColors = append([]string(nil), patch.GradientColors...)
	}
	if patch.SolidColor != nil {
		out.SolidColor = ptr(*patch.SolidColor)
	}
	if patch.BackgroundImageID != nil {
		out.BackgroundImageID = ptr(*patch.BackgroundImageID)
	}
	if patch.Rotation != nil {
		out.Rotation = ptr(*patch.Rotation)
	}
	return out
}

// broadcastFields keeps only the fields applyToAll copies to every screenshot.
func broadcastFields(o domain.Override) domain.Override {
	return domain.Override{
		BackgroundType: o.BackgroundType,
		GradientColors: o.GradientColors,
		SolidColor:     o.SolidColor,
		Rotation:       o.Rotation,
	}
}

func cloneOverride(o domain.Override) domain.Override {
	out := o
	if o.Device != nil {
		out.Device = ptr(*o.Device)
	}
	if o.Text != nil {
		out.Text = ptr(*o.Text)
	}
	if o.TextPosition != nil {
		out.TextPosition = ptr(*o.TextPosition)
	}
	if o.TextColor != nil {
		out.TextColor = ptr(*o.TextColor)
	}
	if o.BackgroundType != nil {
		out.BackgroundType = ptr(*o.BackgroundType)
	}
	if o.GradientColors != nil {
		out.GradientColors = append([]string(nil), o.GradientColors...)
	}
	if o.SolidColor != nil {
		out.SolidColor = ptr(*o.SolidColor)
	}
	if o.BackgroundImageID != nil {
		out.BackgroundImageID = ptr(*o.BackgroundImageID)
	}
	if o.Rotation != nil {
		out.Rotation = ptr(*o.Rotation)
	}
	return out
}

func ptr[T any](v T) *T {
	return &v
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefType(t *domain.BackgroundType) domain.BackgroundType {
	if t == nil {
		return ""
	}
	return *t
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
