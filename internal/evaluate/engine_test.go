package evaluate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"screener/internal/config"
	"screener/internal/oracle"
	"screener/internal/testutil"
)

type scriptedOracle struct {
	replies []string
	err     error
	calls   []oracle.Request
}

func (s *scriptedOracle) Complete(_ context.Context, req oracle.Request) (string, error) {
	s.calls = append(s.calls, req)
	if s.err != nil {
		return "", s.err
	}
	if len(s.replies) == 0 {
		return "", errors.New("no scripted reply")
	}
	reply := s.replies[0]
	s.replies = s.replies[1:]
	return reply, nil
}

type fixedClassifier string

func (f fixedClassifier) Classify(context.Context, string) string { return string(f) }

func newEngine(o oracle.Oracle, classifier Classifier) (*Engine, *config.Config) {
	cfg := config.Default()
	return New(&cfg, o, classifier, nil), &cfg
}

var sampleInput = Input{
	Profile:    "Jane Doe, CTO at Acme AI",
	Company:    "Field: AI",
	Email:      "jane@acme.io",
	ProfileURL: "linkedin.com/in/jane",
}

func requireComplete(t *testing.T, cfg *config.Config, verdict map[string]string) {
	t.Helper()
	for _, field := range cfg.Response.RequiredFields {
		_, ok := verdict[field]
		require.Truef(t, ok, "missing required field %q", field)
	}
	require.Contains(t, cfg.Response.AllowedPriorities, verdict["priority"])
}

func TestEvaluateNoDataSkipsOracle(t *testing.T) {
	o := &scriptedOracle{}
	engine, cfg := newEngine(o, nil)

	ev := engine.Evaluate(testutil.Context(t, 0), Input{Email: "alice@gmail.com"})

	require.Empty(t, o.calls)
	require.Equal(t, ReasonNoData, ev.Reason)
	require.Equal(t, "reject", ev.Priority())
	require.Equal(t, "alice@gmail.com", ev.Verdict["email"])
	require.Equal(t, cfg.Response.DefaultValues["priority_reasoning"], ev.Verdict["priority_reasoning"])
	requireComplete(t, cfg, ev.Verdict)
}

func TestEvaluateOracleFailureFallsBack(t *testing.T) {
	engine, cfg := newEngine(&scriptedOracle{err: errors.New("connection reset")}, nil)

	ev := engine.Evaluate(testutil.Context(t, 0), sampleInput)

	require.True(t, ev.Fallback)
	require.Equal(t, ReasonOracleError, ev.Reason)
	require.Equal(t, engine.Defaults(sampleInput.Email, sampleInput.ProfileURL), ev.Verdict)
	requireComplete(t, cfg, ev.Verdict)
}

func TestEvaluateNullPriorityUsesDefault(t *testing.T) {
	engine, cfg := newEngine(&scriptedOracle{replies: []string{`{"priority": null}`}}, nil)

	ev := engine.Evaluate(testutil.Context(t, 0), sampleInput)

	require.False(t, ev.Fallback)
	require.Equal(t, "reject", ev.Priority())
	require.Equal(t, "", ev.Verdict["name"])
	require.Equal(t, cfg.Response.DefaultValues["priority_reasoning"], ev.Verdict["priority_reasoning"])
	requireComplete(t, cfg, ev.Verdict)
}

func TestEvaluateNormalizesReply(t *testing.T) {
	reply := "```json\n" + `{
		"name": "Jane Doe",
		"title": null,
		"company": 42,
		"priority": " ACCEPT ",
		"priority_reasoning": ["* CTO", "* AI company"],
		"salary": "drop me"
	}` + "\n```"
	engine, cfg := newEngine(&scriptedOracle{replies: []string{reply}}, fixedClassifier("startup"))

	ev := engine.Evaluate(testutil.Context(t, 0), sampleInput)

	require.Equal(t, "accept", ev.Priority())
	require.Equal(t, "Jane Doe", ev.Verdict["name"])
	require.Equal(t, "", ev.Verdict["title"])
	require.Equal(t, "42", ev.Verdict["company"])
	require.Equal(t, "* CTO\n* AI company", ev.Verdict["priority_reasoning"])
	require.NotContains(t, ev.Verdict, "salary")
	require.Equal(t, "linkedin.com/in/jane", ev.Verdict["linkedin"])
	requireComplete(t, cfg, ev.Verdict)
}

func TestEvaluateClosesUnknownPriority(t *testing.T) {
	engine, cfg := newEngine(&scriptedOracle{replies: []string{`{"name":"Bob","priority":"maybe"}`}}, nil)

	ev := engine.Evaluate(testutil.Context(t, 0), sampleInput)

	require.Equal(t, "reject", ev.Priority())
	require.Len(t, ev.Issues, 1)
	requireComplete(t, cfg, ev.Verdict)
}

func TestEvaluateUnparseableReply(t *testing.T) {
	engine, _ := newEngine(&scriptedOracle{replies: []string{"I cannot help with that."}}, nil)
	ev := engine.Evaluate(testutil.Context(t, 0), sampleInput)
	require.True(t, ev.Fallback)
	require.Equal(t, ReasonParseError, ev.Reason)
}

func TestEvaluateRenderError(t *testing.T) {
	o := &scriptedOracle{}
	engine, cfg := newEngine(o, nil)
	prompt := cfg.Inference.Prompts[cfg.Inference.ActivePrompt]
	prompt.Text = "Profile: {profile} {unknown}"
	cfg.Inference.Prompts[cfg.Inference.ActivePrompt] = prompt

	ev := engine.Evaluate(testutil.Context(t, 0), sampleInput)

	require.Equal(t, ReasonRenderError, ev.Reason)
	require.Empty(t, o.calls)
}

func TestEvaluateSendsConfiguredRequest(t *testing.T) {
	o := &scriptedOracle{replies: []string{`{"priority":"reject"}`}}
	engine, cfg := newEngine(o, nil)
	cfg.Inference.Temperature = 0.2

	engine.Evaluate(testutil.Context(t, 0), sampleInput)

	require.Len(t, o.calls, 1)
	require.True(t, o.calls[0].JSON)
	require.InDelta(t, 0.2, o.calls[0].Temperature, 1e-9)
	require.Equal(t, cfg.Inference.SystemPrompt, o.calls[0].System)
	require.Contains(t, o.calls[0].User, sampleInput.Profile)
	require.Contains(t, o.calls[0].User, sampleInput.Company)
}

func TestEvaluateDraftsEmailForAccepted(t *testing.T) {
	engine, _ := newEngine(&scriptedOracle{replies: []string{`{"priority":"accept","company":"Acme"}`}}, fixedClassifier("enterprise"))

	ev := engine.Evaluate(testutil.Context(t, 0), sampleInput)

	require.Equal(t, "enterprise", ev.Category)
	require.Contains(t, ev.Verdict["email_draft"], "Dear there,")
	require.Contains(t, ev.Verdict["email_draft"], "Your experience at Acme")
}

func TestEvaluateDraftUnknownCategoryUsesDefault(t *testing.T) {
	engine, cfg := newEngine(&scriptedOracle{replies: []string{`{"priority":"accept","name":"Jane"}`}}, fixedClassifier("pirate"))
	cfg.Response.EmailTemplates["enterprise"] = "Hi {name} from {company}"

	ev := engine.Evaluate(testutil.Context(t, 0), sampleInput)

	require.Equal(t, "enterprise", ev.Category)
	require.Equal(t, "Hi Jane from your company", ev.Verdict["email_draft"])
}

func TestEvaluateDraftDisabled(t *testing.T) {
	engine, cfg := newEngine(&scriptedOracle{replies: []string{`{"priority":"accept"}`}}, fixedClassifier("student"))
	cfg.Response.EmailTemplate = false

	ev := engine.Evaluate(testutil.Context(t, 0), sampleInput)

	require.Equal(t, "", ev.Verdict["email_draft"])
	require.Empty(t, ev.Category)
}

func TestEvaluateDraftCustomLine(t *testing.T) {
	o := &scriptedOracle{replies: []string{`{"priority":"accept","name":"Jane"}`, "leading inference at Acme"}}
	engine, cfg := newEngine(o, fixedClassifier("student"))
	cfg.Response.EmailTemplates["student"] = "Dear {name},\n{custom_line}"

	ev := engine.Evaluate(testutil.Context(t, 0), sampleInput)

	require.Equal(t, "Dear Jane,\nWe are impressed with leading inference at Acme", ev.Verdict["email_draft"])
	require.Len(t, o.calls, 2)
}

func TestOracleClassifier(t *testing.T) {
	cfg := config.Default()
	ctx := testutil.Context(t, 0)

	startup := NewOracleClassifier(&scriptedOracle{replies: []string{" Startup.\n"}}, &cfg, nil)
	require.Equal(t, "startup", startup.Classify(ctx, "Founder of Acme"))

	unknown := NewOracleClassifier(&scriptedOracle{replies: []string{"pirate"}}, &cfg, nil)
	require.Equal(t, "enterprise", unknown.Classify(ctx, "Captain"))

	failing := NewOracleClassifier(&scriptedOracle{err: errors.New("down")}, &cfg, nil)
	require.Equal(t, "enterprise", failing.Classify(ctx, "Founder"))

	o := &scriptedOracle{}
	empty := NewOracleClassifier(o, &cfg, nil)
	require.Equal(t, "enterprise", empty.Classify(ctx, "  "))
	require.Empty(t, o.calls)
}
