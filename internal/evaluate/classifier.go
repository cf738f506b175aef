package evaluate

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"screener/internal/config"
	"screener/internal/oracle"
)

// Classifier picks the outreach template category for a profile.
type Classifier interface {
	Classify(ctx context.Context, profile string) string
}

// OracleClassifier asks the oracle for a one-word category.
type OracleClassifier struct {
	oracle oracle.Oracle
	cfg    *config.Config
	logger *zap.Logger
}

// NewOracleClassifier builds a classifier over the email_templates keys.
func NewOracleClassifier(o oracle.Oracle, cfg *config.Config, logger *zap.Logger) *OracleClassifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OracleClassifier{oracle: o, cfg: cfg, logger: logger}
}

// Classify returns a category from email_templates, or default_category when
// the profile is empty or the reply is not one of them.
func (c *OracleClassifier) Classify(ctx context.Context, profile string) string {
	fallback := c.cfg.Response.DefaultCategory
	categories := templateCategories(c.cfg)
	if strings.TrimSpace(profile) == "" || len(categories) == 0 || c.oracle == nil {
		return fallback
	}
	ctx, cancel := context.WithTimeout(ctx, time.Duration(c.cfg.Inference.TimeoutSeconds)*time.Second)
	defer cancel()

	reply, err := c.oracle.Complete(ctx, oracle.Request{
		User:        classifyPrompt(profile, categories),
		Temperature: c.cfg.Inference.Temperature,
	})
	if err != nil {
		c.logger.Warn("classification failed", zap.Error(err))
		return fallback
	}
	answer := config.NormalizeLabel(strings.Trim(strings.TrimSpace(reply), `."'`))
	for _, category := range categories {
		if answer == category {
			return category
		}
	}
	c.logger.Debug("classification outside categories", zap.String("reply", reply))
	return fallback
}

func templateCategories(cfg *config.Config) []string {
	categories := make([]string, 0, len(cfg.Response.EmailTemplates))
	for name := range cfg.Response.EmailTemplates {
		categories = append(categories, config.NormalizeLabel(name))
	}
	sort.Strings(categories)
	return categories
}

func classifyPrompt(profile string, categories []string) string {
	return fmt.Sprintf(`Profile: %s

Return ONLY one word, one of: %s.
- student = current student or recent graduate
- startup = founder or early employee
- enterprise = established company

Return ONLY the word.`, profile, strings.Join(categories, ", "))
}

// customLinePrompt asks for a short personalised line used by {custom_line}.
func customLinePrompt(profile string) string {
	return fmt.Sprintf(`Profile: %s

Write ONE short line about their most impressive achievement or skill.
Must be specific, under 10 words.
Example: "leading the ML team at a cloud provider"

Return ONLY the line, no quotes.`, profile)
}
