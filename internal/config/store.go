package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var (
	// ErrUnknownSetting is returned by Update for an unknown section or key.
	ErrUnknownSetting = errors.New("unknown setting")
	// ErrPromptExists is returned by AddPrompt when the name is taken.
	ErrPromptExists = errors.New("prompt already exists")
	// ErrPromptNotFound is returned when a prompt name is not configured.
	ErrPromptNotFound = errors.New("prompt not found")
	// ErrReadOnly is returned by Save and the mutators when the file on disk
	// could not be loaded. Saving would replace it with defaults.
	ErrReadOnly = errors.New("control panel could not be loaded; fix it (see `screener validate`) before changing settings")
)

// Store owns the control panel file and the single Config instance shared by
// every component. Mutations replace the pointed-to value in place and are
// persisted before returning.
type Store struct {
	path    string
	cfg     *Config
	logger  *zap.Logger
	loadErr error
}

// NewStore wraps an in-memory config; Save writes it to path.
func NewStore(path string, cfg Config, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	Normalize(&cfg)
	return &Store{path: path, cfg: &cfg, logger: logger}
}

// Path returns the file the store persists to.
func (s *Store) Path() string {
	return s.path
}

// Config returns the shared config pointer.
func (s *Store) Config() *Config {
	return s.cfg
}

// LoadErr is the error that made Load fall back to defaults for an existing
// file, or nil.
func (s *Store) LoadErr() error {
	return s.loadErr
}

func (s *Store) writable() error {
	if s.loadErr != nil {
		return fmt.Errorf("%w: %s: %v", ErrReadOnly, s.path, s.loadErr)
	}
	return nil
}

// Save persists the current config.
func (s *Store) Save() error {
	if err := s.writable(); err != nil {
		return err
	}
	data, err := Marshal(*s.cfg)
	if err != nil {
		return err
	}
	if err := writeAtomic(s.path, data); err != nil {
		s.logger.Error("save config failed", zap.String("path", s.path), zap.Error(err))
		return err
	}
	s.logger.Debug("config saved", zap.String("path", s.path))
	return nil
}

// Update sets section.key to value and saves. A string value is decoded
// against the field's own type, so "true" reaches a bool field while "0755"
// stays verbatim in a string field. Invalid targets are logged and leave the
// config untouched.
func (s *Store) Update(section, key string, value any) error {
	if err := s.writable(); err != nil {
		return err
	}
	raw, err := Marshal(*s.cfg)
	if err != nil {
		return err
	}
	var tree map[string]map[string]any
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return fmt.Errorf("decode config tree: %w", err)
	}
	fields, ok := tree[section]
	if !ok {
		s.logger.Warn("invalid config section", zap.String("section", section), zap.String("key", key))
		return fmt.Errorf("%w: %s.%s", ErrUnknownSetting, section, key)
	}
	if _, ok := fields[key]; !ok {
		s.logger.Warn("invalid config key", zap.String("section", section), zap.String("key", key))
		return fmt.Errorf("%w: %s.%s", ErrUnknownSetting, section, key)
	}
	if text, ok := value.(string); ok {
		node := &yaml.Node{Kind: yaml.ScalarNode, Value: text}
		if _, isString := fields[key].(string); isString {
			node.Tag = "!!str"
		}
		fields[key] = node
	} else {
		fields[key] = value
	}

	raw, err = yaml.Marshal(tree)
	if err != nil {
		return fmt.Errorf("encode config tree: %w", err)
	}
	next, err := Parse(raw)
	if err != nil {
		s.logger.Warn("rejected config update", zap.String("section", section), zap.String("key", key), zap.Error(err))
		return fmt.Errorf("update %s.%s: %w", section, key, err)
	}
	Normalize(&next)
	*s.cfg = next
	if err := s.Save(); err != nil {
		return err
	}
	s.logger.Info("config updated", zap.String("section", section), zap.String("key", key), zap.Any("value", value))
	return nil
}

// ActivePrompt returns the name and definition of the active template.
func (s *Store) ActivePrompt() (string, PromptTemplate, error) {
	return ActivePrompt(s.cfg)
}

// ActivePrompt returns the active template of cfg.
func ActivePrompt(cfg *Config) (string, PromptTemplate, error) {
	name := cfg.Inference.ActivePrompt
	prompt, ok := cfg.Inference.Prompts[name]
	if !ok {
		return name, PromptTemplate{}, fmt.Errorf("%w: %q", ErrPromptNotFound, name)
	}
	return name, prompt, nil
}

// RequiredFields returns the ordered output columns.
func (s *Store) RequiredFields() []string {
	return append([]string(nil), s.cfg.Response.RequiredFields...)
}

// FieldSchema returns the fields the active prompt may contribute, sorted.
func FieldSchema(cfg *Config) []string {
	_, prompt, err := ActivePrompt(cfg)
	if err != nil {
		return nil
	}
	fields := make([]string, 0, len(prompt.OutputFormat))
	for field, enabled := range prompt.OutputFormat {
		if enabled {
			fields = append(fields, field)
		}
	}
	sort.Strings(fields)
	return fields
}

// PromptInfo is a template name and its description.
type PromptInfo struct {
	Name        string
	Description string
	Active      bool
}

// ListPrompts returns configured templates sorted by name.
func (s *Store) ListPrompts() []PromptInfo {
	out := make([]PromptInfo, 0, len(s.cfg.Inference.Prompts))
	for name, prompt := range s.cfg.Inference.Prompts {
		out = append(out, PromptInfo{
			Name:        name,
			Description: prompt.Description,
			Active:      name == s.cfg.Inference.ActivePrompt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// SetActivePrompt switches the active template and saves.
func (s *Store) SetActivePrompt(name string) error {
	if err := s.writable(); err != nil {
		return err
	}
	if _, ok := s.cfg.Inference.Prompts[name]; !ok {
		s.logger.Warn("prompt not found", zap.String("prompt", name))
		return fmt.Errorf("%w: %q", ErrPromptNotFound, name)
	}
	s.cfg.Inference.ActivePrompt = name
	if err := s.Save(); err != nil {
		return err
	}
	s.logger.Info("active prompt set", zap.String("prompt", name))
	return nil
}

// AddPrompt registers a new template. Names are unique; the first writer wins.
func (s *Store) AddPrompt(name, description, text string, fieldSchema map[string]bool) error {
	if err := s.writable(); err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("prompt name is required")
	}
	if _, exists := s.cfg.Inference.Prompts[name]; exists {
		s.logger.Warn("prompt already exists", zap.String("prompt", name))
		return fmt.Errorf("%w: %q", ErrPromptExists, name)
	}
	if s.cfg.Inference.Prompts == nil {
		s.cfg.Inference.Prompts = map[string]PromptTemplate{}
	}
	s.cfg.Inference.Prompts[name] = PromptTemplate{
		Description:  description,
		Text:         text,
		OutputFormat: cloneMap(fieldSchema),
	}
	if err := s.Save(); err != nil {
		return err
	}
	s.logger.Info("prompt added", zap.String("prompt", name))
	return nil
}

// SheetNames returns the input and output tab names.
func (s *Store) SheetNames() (string, string) {
	return s.cfg.Sheet.InputSheetName, s.cfg.Sheet.OutputSheetName
}

// HighlightEnabled reports whether processed input rows are colored.
func (s *Store) HighlightEnabled() bool {
	return s.cfg.Sheet.HighlightProcessedRows
}

// ToggleHighlight flips row highlighting and returns the new state.
func (s *Store) ToggleHighlight() (bool, error) {
	next := !s.cfg.Sheet.HighlightProcessedRows
	if err := s.Update("sheet_controls", "highlight_processed_rows", next); err != nil {
		return !next, err
	}
	return next, nil
}
