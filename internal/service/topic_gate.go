package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloo-solutions/partsdesk/internal/domain"
	"github.com/cloo-solutions/partsdesk/internal/telemetry"
	"github.com/rs/zerolog/log"
)

// ClassifierClient runs a one-shot classification prompt
type ClassifierClient interface {
	Classify(ctx context.Context, prompt string) (string, error)
}

// EscalationFailurePolicy decides the verdict when the classifier call fails
type EscalationFailurePolicy string

const (
	EscalationFailureOnTopic  EscalationFailurePolicy = "on_topic"
	EscalationFailureOffTopic EscalationFailurePolicy = "off_topic"
)

// IsValid reports whether the policy is one of the known values
func (p EscalationFailurePolicy) IsValid() bool {
	return p == EscalationFailureOnTopic || p == EscalationFailureOffTopic
}

// DefaultTopicVocabulary lists appliance nouns, brands, part types and symptom words.
// Matching is by case-insensitive substring, so short entries such as "ge" also
// hit inside longer words.
var DefaultTopicVocabulary = []string{
	"refrigerator", "fridge", "freezer", "ice maker", "dishwasher",
	"part", "install", "replace", "compatible", "model", "whirlpool",
	"ge", "samsung", "lg", "frigidaire", "kitchenaid", "maytag", "amana",
	"kenmore", "bosch", "electrolux",
	"door bin", "filter", "pump", "motor", "thermostat", "seal", "gasket",
	"rack", "spray arm", "dispenser", "compressor", "defrost", "drain",
	"shelf", "drawer", "hinge", "handle", "valve", "sensor", "fan",
	"not working", "broken", "leak", "noise", "won't", "doesn't",
	"fix", "repair", "troubleshoot", "problem",
	"partselect", "part select",
}

// TopicGateConfig holds the tunable topic screening policy
type TopicGateConfig struct {
	Vocabulary []string
	// OnTopicMatches is the keyword count that accepts a message without escalation.
	OnTopicMatches    int
	EscalationFailure EscalationFailurePolicy
}

// DefaultTopicGateConfig returns the default topic screening policy
func DefaultTopicGateConfig() TopicGateConfig {
	return TopicGateConfig{
		Vocabulary:        DefaultTopicVocabulary,
		OnTopicMatches:    2,
		EscalationFailure: EscalationFailureOnTopic,
	}
}

// TopicGate decides whether a message is about refrigerator or dishwasher parts
type TopicGate struct {
	classifier ClassifierClient
	vocabulary []string
	threshold  int
	onFailure  EscalationFailurePolicy
}

// NewTopicGate creates a TopicGate. A nil classifier resolves every
// uncertain message with the escalation failure policy.
func NewTopicGate(classifier ClassifierClient, cfg TopicGateConfig) *TopicGate {
	vocab := cfg.Vocabulary
	if len(vocab) == 0 {
		vocab = DefaultTopicVocabulary
	}
	normalized := make([]string, 0, len(vocab))
	seen := make(map[string]struct{}, len(vocab))
	for _, kw := range vocab {
		kw = normalizeText(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if _, ok := seen[kw]; ok {
			continue
		}
		seen[kw] = struct{}{}
		normalized = append(normalized, kw)
	}

	threshold := cfg.OnTopicMatches
	if threshold <= 0 {
		threshold = 2
	}
	onFailure := cfg.EscalationFailure
	if !onFailure.IsValid() {
		onFailure = EscalationFailureOnTopic
	}

	return &TopicGate{
		classifier: classifier,
		vocabulary: normalized,
		threshold:  threshold,
		onFailure:  onFailure,
	}
}

// KeywordMatches counts the distinct vocabulary entries contained in the message
func (g *TopicGate) KeywordMatches(message string) int {
	lower := normalizeText(message)
	matches := 0
	for _, kw := range g.vocabulary {
		if strings.Contains(lower, kw) {
			matches++
		}
	}
	return matches
}

// Classify screens a message without calling any provider
func (g *TopicGate) Classify(message string) domain.TopicVerdict {
	matches := g.KeywordMatches(message)
	switch {
	case matches >= g.threshold:
		return domain.TopicOnTopic
	case partNumberPattern.MatchString(message):
		return domain.TopicOnTopic
	case modelNumberPattern.MatchString(message):
		return domain.TopicOnTopic
	case matches == 0:
		return domain.TopicOffTopic
	}
	return domain.TopicUncertain
}

// Allow reports whether the pipeline should answer the message, escalating
// uncertain messages to the classifier.
func (g *TopicGate) Allow(ctx context.Context, message string) bool {
	ctx, span := telemetry.StartSpan(ctx, "TopicGate.Allow", telemetry.SpanAttributes{
		Operation: "topic_gate",
	})
	defer span.End()

	verdict := g.Classify(message)
	span.SetTag("topic_verdict", verdict.String())
	if verdict != domain.TopicUncertain {
		return verdict == domain.TopicOnTopic
	}

	if g.classifier == nil {
		return g.onFailure == EscalationFailureOnTopic
	}

	answer, err := g.classifier.Classify(ctx, TopicCheckPrompt(message))
	if err != nil {
		span.SetError(err)
		log.Ctx(ctx).Warn().
			Err(err).
			Str("policy", string(g.onFailure)).
			Msg("topic escalation failed, applying failure policy")
		return g.onFailure == EscalationFailureOnTopic
	}

	label := parseTopicLabel(answer)
	span.SetTag("topic_label", string(label))
	return label != domain.TopicLabelOffTopic
}

// parseTopicLabel maps the free-text classifier reply to a label. Any reply
// mentioning OFF_TOPIC rejects the message.
func parseTopicLabel(answer string) domain.TopicLabel {
	upper := strings.ToUpper(answer)
	switch {
	case strings.Contains(upper, string(domain.TopicLabelOffTopic)):
		return domain.TopicLabelOffTopic
	case strings.Contains(upper, string(domain.TopicLabelDishwasherParts)):
		return domain.TopicLabelDishwasherParts
	default:
		return domain.TopicLabelRefrigeratorParts
	}
}

// TopicCheckPrompt renders the escalation prompt for one message
func TopicCheckPrompt(message string) string {
	return fmt.Sprintf(topicCheckPromptTemplate, message)
}
