package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks cross-field consistency of a normalized config.
func Validate(cfg *Config) error {
	collector := &issueCollector{}
	validateSheet(cfg, collector.add)
	validateInference(cfg, collector.add)
	validateResponse(cfg, collector.add)
	validateScraping(cfg, collector.add)
	validateCRM(cfg, collector.add)
	return collector.result()
}

func validateSheet(cfg *Config, add issueAdder) {
	switch cfg.Sheet.Backend {
	case BackendGoogle:
	case BackendDuckDB:
		if strings.TrimSpace(cfg.Sheet.DatabasePath) == "" {
			add("sheet_controls.database_path", "is required for the duckdb backend")
		}
	default:
		add("sheet_controls.backend", fmt.Sprintf("unsupported backend %q", cfg.Sheet.Backend))
	}
	if strings.TrimSpace(cfg.Sheet.InputSheetName) == "" {
		add("sheet_controls.input_sheet_name", "is required")
	}
	if strings.TrimSpace(cfg.Sheet.OutputSheetName) == "" {
		add("sheet_controls.output_sheet_name", "is required")
	}
	if cfg.Sheet.InputSheetName == cfg.Sheet.OutputSheetName {
		add("sheet_controls.output_sheet_name", "must differ from input_sheet_name")
	}
	validateColor("sheet_controls.highlight_color", cfg.Sheet.HighlightColor, add)
	for label, color := range cfg.Sheet.PriorityColors {
		validateColor(fmt.Sprintf("sheet_controls.priority_colors.%s", label), color, add)
	}
}

func validateColor(field string, color Color, add issueAdder) {
	for _, channel := range []float64{color.Red, color.Green, color.Blue} {
		if channel < 0 || channel > 1 {
			add(field, "channels must be within [0,1]")
			return
		}
	}
}

func validateInference(cfg *Config, add issueAdder) {
	switch cfg.Inference.Provider {
	case "cerebras", "openrouter", "openai", "gemini":
	default:
		add("inference_controls.provider", fmt.Sprintf("unsupported provider %q", cfg.Inference.Provider))
	}
	if strings.TrimSpace(cfg.Inference.Model) == "" {
		add("inference_controls.model", "is required")
	}
	if cfg.Inference.Temperature < 0 || cfg.Inference.Temperature > 2 {
		add("inference_controls.temperature", "must be within [0,2]")
	}
	if base := strings.TrimSpace(cfg.Inference.BaseURL); base != "" {
		if parsed, err := url.Parse(base); err != nil || parsed.Scheme == "" || parsed.Host == "" {
			add("inference_controls.base_url", fmt.Sprintf("invalid url %q", base))
		}
	}
	if _, ok := cfg.Inference.Prompts[cfg.Inference.ActivePrompt]; !ok {
		add("inference_controls.active_prompt", fmt.Sprintf("unknown prompt %q", cfg.Inference.ActivePrompt))
	}
	for name, prompt := range cfg.Inference.Prompts {
		field := "inference_controls.prompts." + name
		if strings.TrimSpace(prompt.Text) == "" {
			add(field+".text", "is required")
		}
		if len(prompt.OutputFormat) == 0 {
			add(field+".output_format", "must enable at least one field")
		}
	}
}

func validateResponse(cfg *Config, add issueAdder) {
	seen := map[string]struct{}{}
	for i, field := range cfg.Response.RequiredFields {
		if strings.TrimSpace(field) == "" {
			add(fmt.Sprintf("response_format.required_fields[%d]", i), "is required")
			continue
		}
		if _, dup := seen[field]; dup {
			add("response_format.required_fields", fmt.Sprintf("duplicate field %q", field))
		}
		seen[field] = struct{}{}
	}
	if _, ok := seen["priority"]; !ok {
		add("response_format.required_fields", "must include priority")
	}
	allowed := map[string]struct{}{}
	for _, label := range cfg.Response.AllowedPriorities {
		allowed[label] = struct{}{}
	}
	if _, ok := allowed[cfg.Response.PositiveLabel]; !ok {
		add("response_format.positive_label", fmt.Sprintf("%q is not an allowed priority", cfg.Response.PositiveLabel))
	}
	if label := NormalizeLabel(cfg.Response.DefaultValues["priority"]); label != "" {
		if _, ok := allowed[label]; !ok {
			add("response_format.default_values.priority", fmt.Sprintf("%q is not an allowed priority", label))
		}
	} else {
		add("response_format.default_values.priority", "is required")
	}
	if cfg.Response.EmailTemplate {
		if _, ok := cfg.Response.EmailTemplates[cfg.Response.DefaultCategory]; !ok {
			add("response_format.default_category", fmt.Sprintf("no template for %q", cfg.Response.DefaultCategory))
		}
	}
}

func validateScraping(cfg *Config, add issueAdder) {
	switch cfg.Scraping.FetchBackend {
	case FetchExa, FetchWeb, FetchBrowser:
	default:
		add("scraping_controls.fetch_backend", fmt.Sprintf("unsupported backend %q", cfg.Scraping.FetchBackend))
	}
	if cfg.Scraping.MaxChars <= 0 {
		add("scraping_controls.max_chars", "must be > 0")
	}
}

func validateCRM(cfg *Config, add issueAdder) {
	if !cfg.CRM.Enabled {
		return
	}
	parsed, err := url.Parse(strings.TrimSpace(cfg.CRM.WebhookURL))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		add("crm_controls.webhook_url", "is required when crm is enabled")
	}
}
