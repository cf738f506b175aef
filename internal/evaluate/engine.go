// Package evaluate turns retrieved candidate text into a normalized verdict.
package evaluate

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"screener/internal/config"
	"screener/internal/oracle"
)

// Reasons recorded on fallback verdicts.
const (
	ReasonNoData      = "no_data"
	ReasonRenderError = "render_error"
	ReasonOracleError = "oracle_error"
	ReasonParseError  = "parse_error"
	ReasonSchemaError = "schema_error"
)

const (
	fallbackName        = "there"
	fallbackCompany     = "your company"
	fallbackCustomLine  = "your background and potential"
	customLineSlot      = "custom_line"
	customLineMaxLength = 120
)

// Input is the retrieved material for one candidate.
type Input struct {
	Profile    string
	Company    string
	Email      string
	ProfileURL string
}

// Evaluation is the normalized verdict plus how it was reached.
type Evaluation struct {
	Verdict map[string]string
	// Fallback is set when the verdict is the configured default because the
	// oracle path failed.
	Fallback bool
	Reason   string
	Category string
	Issues   []string
}

// Priority returns the verdict's priority label.
func (e Evaluation) Priority() string {
	return e.Verdict["priority"]
}

// Engine evaluates candidates with the active prompt.
type Engine struct {
	cfg        *config.Config
	oracle     oracle.Oracle
	classifier Classifier
	logger     *zap.Logger
}

// New builds an Engine. A nil classifier uses an OracleClassifier.
func New(cfg *config.Config, o oracle.Oracle, classifier Classifier, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if classifier == nil {
		classifier = NewOracleClassifier(o, cfg, logger)
	}
	return &Engine{cfg: cfg, oracle: o, classifier: classifier, logger: logger}
}

// Evaluate never fails; every failure degrades to the default verdict.
func (e *Engine) Evaluate(ctx context.Context, in Input) Evaluation {
	if strings.TrimSpace(in.Profile) == "" && strings.TrimSpace(in.Company) == "" {
		ev := e.fallback(in, ReasonNoData)
		ev.Fallback = false
		return ev
	}

	name, prompt, err := config.ActivePrompt(e.cfg)
	if err != nil {
		e.logger.Warn("active prompt unavailable", zap.Error(err))
		return e.fallback(in, ReasonRenderError)
	}
	user, err := Render(prompt.Text, map[string]string{
		"profile":      in.Profile,
		"company_info": in.Company,
	})
	if err != nil {
		e.logger.Warn("render prompt failed", zap.String("prompt", name), zap.Error(err))
		return e.fallback(in, ReasonRenderError)
	}

	reply, err := e.complete(ctx, oracle.Request{
		System:      e.cfg.Inference.SystemPrompt,
		User:        user,
		Temperature: e.cfg.Inference.Temperature,
		JSON:        true,
	})
	if err != nil {
		e.logger.Warn("oracle call failed", zap.String("prompt", name), zap.Error(err))
		return e.fallback(in, ReasonOracleError)
	}
	parsed, err := parseReply(reply)
	if err != nil {
		e.logger.Warn("oracle reply unparseable", zap.String("prompt", name), zap.Error(err))
		return e.fallback(in, ReasonParseError)
	}

	ev := Evaluation{Verdict: e.normalize(parsed, prompt, in)}
	if label := config.NormalizeLabel(ev.Verdict["priority"]); label != "" && !slices.Contains(e.cfg.Response.AllowedPriorities, label) {
		ev.Issues = append(ev.Issues, fmt.Sprintf("priority %q outside allowed labels", label))
	}
	ev.Verdict["priority"] = e.closePriority(ev.Verdict["priority"])

	if err := validateVerdict(ev.Verdict, e.cfg.Response.RequiredFields, e.cfg.Response.AllowedPriorities); err != nil {
		e.logger.Warn("verdict failed schema check", zap.Error(err))
		return e.fallback(in, ReasonSchemaError)
	}

	if ev.Verdict["priority"] == e.cfg.Response.PositiveLabel && e.cfg.Response.EmailTemplate {
		e.draft(ctx, &ev, in.Profile)
	}
	return ev
}

func (e *Engine) complete(ctx context.Context, req oracle.Request) (string, error) {
	if e.oracle == nil {
		return "", fmt.Errorf("no oracle configured")
	}
	ctx, cancel := context.WithTimeout(ctx, time.Duration(e.cfg.Inference.TimeoutSeconds)*time.Second)
	defer cancel()
	return e.oracle.Complete(ctx, req)
}

// normalize applies the field policy to a parsed reply: drop fields outside
// the prompt's output format, fill missing ones from defaults, flatten values
// to text and add every required field and the identity fields.
func (e *Engine) normalize(parsed map[string]JSONValue, prompt config.PromptTemplate, in Input) map[string]string {
	defaults := e.cfg.Response.DefaultValues
	verdict := map[string]string{}
	for field, enabled := range prompt.OutputFormat {
		if !enabled {
			continue
		}
		value, ok := parsed[field]
		if !ok {
			verdict[field] = defaults[field]
			continue
		}
		verdict[field] = strings.TrimSpace(value.Text())
	}
	for _, field := range e.cfg.Response.RequiredFields {
		if _, ok := verdict[field]; !ok {
			verdict[field] = defaults[field]
		}
	}
	verdict["email"] = in.Email
	verdict["linkedin"] = in.ProfileURL
	return verdict
}

// closePriority maps a label onto the allowed set, falling back to the
// default priority.
func (e *Engine) closePriority(label string) string {
	label = config.NormalizeLabel(label)
	if slices.Contains(e.cfg.Response.AllowedPriorities, label) {
		return label
	}
	return e.defaultPriority()
}

func (e *Engine) defaultPriority() string {
	label := config.NormalizeLabel(e.cfg.Response.DefaultValues["priority"])
	if slices.Contains(e.cfg.Response.AllowedPriorities, label) {
		return label
	}
	if len(e.cfg.Response.AllowedPriorities) > 0 {
		return e.cfg.Response.AllowedPriorities[len(e.cfg.Response.AllowedPriorities)-1]
	}
	return label
}

// Defaults returns the default verdict for a candidate.
func (e *Engine) Defaults(email, profileURL string) map[string]string {
	verdict := map[string]string{}
	for field, value := range e.cfg.Response.DefaultValues {
		verdict[field] = value
	}
	for _, field := range e.cfg.Response.RequiredFields {
		if _, ok := verdict[field]; !ok {
			verdict[field] = ""
		}
	}
	verdict["priority"] = e.defaultPriority()
	verdict["email"] = email
	verdict["linkedin"] = profileURL
	return verdict
}

func (e *Engine) fallback(in Input, reason string) Evaluation {
	return Evaluation{
		Verdict:  e.Defaults(in.Email, in.ProfileURL),
		Fallback: true,
		Reason:   reason,
	}
}

// draft fills email_draft from the template chosen by the classifier.
func (e *Engine) draft(ctx context.Context, ev *Evaluation, profile string) {
	category := config.NormalizeLabel(e.classifier.Classify(ctx, profile))
	template, ok := e.cfg.Response.EmailTemplates[category]
	if !ok {
		category = e.cfg.Response.DefaultCategory
		template, ok = e.cfg.Response.EmailTemplates[category]
	}
	if !ok {
		ev.Issues = append(ev.Issues, fmt.Sprintf("no email template for %q", category))
		return
	}
	ev.Category = category

	values := make(map[string]string, len(ev.Verdict)+1)
	for key, value := range ev.Verdict {
		values[key] = value
	}
	if values["name"] == "" {
		values["name"] = fallbackName
	}
	if values["company"] == "" {
		values["company"] = fallbackCompany
	}
	if slices.Contains(Slots(template), customLineSlot) {
		values[customLineSlot] = e.customLine(ctx, profile)
	}
	body, err := Render(template, values)
	if err != nil {
		e.logger.Warn("render email draft failed", zap.String("category", category), zap.Error(err))
		ev.Issues = append(ev.Issues, err.Error())
		return
	}
	ev.Verdict["email_draft"] = body
}

func (e *Engine) customLine(ctx context.Context, profile string) string {
	reply, err := e.complete(ctx, oracle.Request{
		User:        customLinePrompt(profile),
		Temperature: e.cfg.Inference.Temperature,
	})
	line := strings.Trim(strings.TrimSpace(reply), `"'`)
	if err != nil || line == "" || len(line) > customLineMaxLength {
		line = fallbackCustomLine
	}
	return "We are impressed with " + line
}
