package config

// Config is the persisted control panel. Field names double as the YAML keys
// accepted by Store.Update, so none of them use omitempty.
type Config struct {
	Sheet     SheetControls     `yaml:"sheet_controls"`
	Inference InferenceControls `yaml:"inference_controls"`
	Response  ResponseFormat    `yaml:"response_format"`
	Scraping  ScrapingControls  `yaml:"scraping_controls"`
	CRM       CRMControls       `yaml:"crm_controls"`
}

// Color is an RGB background color with channels in [0,1].
type Color struct {
	Red   float64 `yaml:"red"`
	Green float64 `yaml:"green"`
	Blue  float64 `yaml:"blue"`
}

// SheetControls configures the workbook backend and row annotations.
type SheetControls struct {
	Backend                string           `yaml:"backend"`
	DatabasePath           string           `yaml:"database_path"`
	InputSheetName         string           `yaml:"input_sheet_name"`
	OutputSheetName        string           `yaml:"output_sheet_name"`
	HighlightProcessedRows bool             `yaml:"highlight_processed_rows"`
	HighlightColor         Color            `yaml:"highlight_color"`
	PriorityColors         map[string]Color `yaml:"priority_colors"`
	WriteHeaders           bool             `yaml:"write_headers"`
}

// InferenceControls selects the oracle and the active prompt template.
type InferenceControls struct {
	ActivePrompt   string                    `yaml:"active_prompt"`
	Provider       string                    `yaml:"provider"`
	BaseURL        string                    `yaml:"base_url"`
	Model          string                    `yaml:"model"`
	Temperature    float64                   `yaml:"temperature"`
	SystemPrompt   string                    `yaml:"system_prompt"`
	TimeoutSeconds int                       `yaml:"timeout_seconds"`
	Prompts        map[string]PromptTemplate `yaml:"prompts"`
}

// PromptTemplate is a named evaluation prompt with its output field schema.
type PromptTemplate struct {
	Description  string          `yaml:"description"`
	Text         string          `yaml:"text"`
	OutputFormat map[string]bool `yaml:"output_format"`
}

// ResponseFormat describes the verdict shape and the outreach drafts.
type ResponseFormat struct {
	RequiredFields    []string          `yaml:"required_fields"`
	AllowedPriorities []string          `yaml:"allowed_priorities"`
	PositiveLabel     string            `yaml:"positive_label"`
	DefaultValues     map[string]string `yaml:"default_values"`
	EmailTemplate     bool              `yaml:"email_template"`
	EmailTemplates    map[string]string `yaml:"email_templates"`
	DefaultCategory   string            `yaml:"default_category"`
}

// ScrapingControls configures profile and company retrieval.
type ScrapingControls struct {
	ScanForLinkedIn   bool     `yaml:"scan_for_linkedin"`
	ResearchCompanies bool     `yaml:"research_companies"`
	FetchBackend      string   `yaml:"fetch_backend"`
	CommonDomains     []string `yaml:"common_domains"`
	TimeoutSeconds    int      `yaml:"timeout_seconds"`
	MaxChars          int      `yaml:"max_chars"`
}

// CRMControls configures the outbound webhook for accepted candidates.
type CRMControls struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
	Subject    string `yaml:"subject"`
}

// Backend names accepted in sheet_controls.backend.
const (
	BackendGoogle = "google"
	BackendDuckDB = "duckdb"
)

// Fetch backends accepted in scraping_controls.fetch_backend.
const (
	FetchExa     = "exa"
	FetchWeb     = "web"
	FetchBrowser = "browser"
)

func cloneMap[K comparable, V any](in map[K]V) map[K]V {
	if in == nil {
		return nil
	}
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
