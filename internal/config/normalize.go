package config

import (
	"sort"
	"strings"
)

// Normalize fills empty fields from Default and canonicalizes labels.
// Booleans are taken as written; a missing boolean reads as false.
func Normalize(cfg *Config) {
	def := Default()

	if strings.TrimSpace(cfg.Sheet.Backend) == "" {
		cfg.Sheet.Backend = def.Sheet.Backend
	}
	if strings.TrimSpace(cfg.Sheet.DatabasePath) == "" {
		cfg.Sheet.DatabasePath = def.Sheet.DatabasePath
	}
	if strings.TrimSpace(cfg.Sheet.InputSheetName) == "" {
		cfg.Sheet.InputSheetName = def.Sheet.InputSheetName
	}
	if strings.TrimSpace(cfg.Sheet.OutputSheetName) == "" {
		cfg.Sheet.OutputSheetName = def.Sheet.OutputSheetName
	}
	if cfg.Sheet.HighlightColor == (Color{}) {
		cfg.Sheet.HighlightColor = def.Sheet.HighlightColor
	}
	if cfg.Sheet.PriorityColors == nil {
		cfg.Sheet.PriorityColors = def.Sheet.PriorityColors
	}
	cfg.Sheet.PriorityColors = normalizeKeys(cfg.Sheet.PriorityColors)

	if strings.TrimSpace(cfg.Inference.Provider) == "" {
		cfg.Inference.Provider = def.Inference.Provider
	}
	if strings.TrimSpace(cfg.Inference.Model) == "" {
		cfg.Inference.Model = def.Inference.Model
	}
	if strings.TrimSpace(cfg.Inference.SystemPrompt) == "" {
		cfg.Inference.SystemPrompt = def.Inference.SystemPrompt
	}
	if cfg.Inference.TimeoutSeconds <= 0 {
		cfg.Inference.TimeoutSeconds = def.Inference.TimeoutSeconds
	}
	if len(cfg.Inference.Prompts) == 0 {
		cfg.Inference.Prompts = def.Inference.Prompts
	}
	if strings.TrimSpace(cfg.Inference.ActivePrompt) == "" {
		cfg.Inference.ActivePrompt = def.Inference.ActivePrompt
	}

	if len(cfg.Response.RequiredFields) == 0 {
		cfg.Response.RequiredFields = def.Response.RequiredFields
	}
	if len(cfg.Response.AllowedPriorities) == 0 {
		cfg.Response.AllowedPriorities = def.Response.AllowedPriorities
	}
	for i, label := range cfg.Response.AllowedPriorities {
		cfg.Response.AllowedPriorities[i] = NormalizeLabel(label)
	}
	if strings.TrimSpace(cfg.Response.PositiveLabel) == "" {
		cfg.Response.PositiveLabel = def.Response.PositiveLabel
	}
	cfg.Response.PositiveLabel = NormalizeLabel(cfg.Response.PositiveLabel)
	if cfg.Response.DefaultValues == nil {
		cfg.Response.DefaultValues = def.Response.DefaultValues
	}
	if len(cfg.Response.EmailTemplates) == 0 {
		cfg.Response.EmailTemplates = def.Response.EmailTemplates
	}
	cfg.Response.EmailTemplates = normalizeKeys(cfg.Response.EmailTemplates)
	if strings.TrimSpace(cfg.Response.DefaultCategory) == "" {
		cfg.Response.DefaultCategory = def.Response.DefaultCategory
	}
	cfg.Response.DefaultCategory = NormalizeLabel(cfg.Response.DefaultCategory)

	if strings.TrimSpace(cfg.Scraping.FetchBackend) == "" {
		cfg.Scraping.FetchBackend = def.Scraping.FetchBackend
	}
	if cfg.Scraping.CommonDomains == nil {
		cfg.Scraping.CommonDomains = def.Scraping.CommonDomains
	}
	for i, domain := range cfg.Scraping.CommonDomains {
		cfg.Scraping.CommonDomains[i] = strings.ToLower(strings.TrimSpace(domain))
	}
	if cfg.Scraping.TimeoutSeconds <= 0 {
		cfg.Scraping.TimeoutSeconds = def.Scraping.TimeoutSeconds
	}
	if cfg.Scraping.MaxChars <= 0 {
		cfg.Scraping.MaxChars = def.Scraping.MaxChars
	}

	if strings.TrimSpace(cfg.CRM.Subject) == "" {
		cfg.CRM.Subject = def.CRM.Subject
	}
}

// NormalizeLabel trims and lowercases a priority or category label.
func NormalizeLabel(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// normalizeKeys rebuilds a label-keyed map with NormalizeLabel keys. When two
// keys collapse to the same label the lexically smaller original wins.
func normalizeKeys[V any](in map[string]V) map[string]V {
	originals := make([]string, 0, len(in))
	for key := range in {
		originals = append(originals, key)
	}
	sort.Strings(originals)
	out := make(map[string]V, len(in))
	for _, key := range originals {
		label := NormalizeLabel(key)
		if _, taken := out[label]; !taken {
			out[label] = in[key]
		}
	}
	return out
}
