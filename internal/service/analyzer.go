package service

import (
	"regexp"
	"slices"
	"strings"

	"github.com/cloo-solutions/partsdesk/internal/domain"
)

var (
	partNumberPattern  = regexp.MustCompile(`(?i)PS\d{6,}`)
	modelNumberPattern = regexp.MustCompile(`\b[A-Z]{2,}\d{3,}[A-Z0-9]*\b`)
)

// EntityExtractor finds part and model identifiers in free text
type EntityExtractor interface {
	ExtractEntities(text string) domain.Entities
}

// RegexEntityExtractor extracts identifiers with fixed patterns
type RegexEntityExtractor struct{}

// ExtractEntities returns upper-cased, deduplicated part numbers and the model numbers
// in order of appearance. Tokens that are part numbers are not reported as models.
func (RegexEntityExtractor) ExtractEntities(text string) domain.Entities {
	var entities domain.Entities

	seen := make(map[string]struct{})
	for _, m := range partNumberPattern.FindAllString(text, -1) {
		id := strings.ToUpper(m)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		entities.PartNumbers = append(entities.PartNumbers, id)
	}

	for _, m := range modelNumberPattern.FindAllString(text, -1) {
		if partNumberPattern.MatchString(m) {
			continue
		}
		entities.ModelNumbers = append(entities.ModelNumbers, m)
	}

	return entities
}

type intentRule struct {
	intent  domain.Intent
	phrases []string
}

// intentRules are evaluated in order; the first rule with a matching phrase wins.
var intentRules = []intentRule{
	{domain.IntentCompatibilityCheck, []string{
		"compatible", "fit", "work with", "right part for", "will it work",
	}},
	{domain.IntentInstallationHelp, []string{
		"install", "replace", "how to put", "instructions", "step by step",
	}},
	{domain.IntentTroubleshoot, []string{
		"not working", "broken", "fix", "problem", "noise", "leak",
		"won't", "doesn't", "troubleshoot", "repair",
	}},
}

// QueryAnalyzer derives intent and entities from a message and its page context
type QueryAnalyzer struct {
	extractor EntityExtractor
}

// NewQueryAnalyzer creates a QueryAnalyzer; a nil extractor uses the regex patterns
func NewQueryAnalyzer(extractor EntityExtractor) *QueryAnalyzer {
	if extractor == nil {
		extractor = RegexEntityExtractor{}
	}
	return &QueryAnalyzer{extractor: extractor}
}

// Analyze classifies the message intent and collects its identifiers. A part
// identifier found in pageURL is placed first unless the message already names it.
func (a *QueryAnalyzer) Analyze(message, pageURL string) domain.AnalyzedQuery {
	entities := a.extractor.ExtractEntities(message)
	intent := DetectIntent(message, entities)

	if pageURL != "" {
		if pagePart, ok := a.extractor.ExtractEntities(pageURL).PrimaryPart(); ok {
			entities.PartNumbers = prependUnique(entities.PartNumbers, pagePart)
		}
	}

	return domain.AnalyzedQuery{Intent: intent, Entities: entities}
}

// DetectIntent applies the ordered phrase rules, then falls back to
// PART_LOOKUP when the message names a part, and GENERAL otherwise.
func DetectIntent(message string, entities domain.Entities) domain.Intent {
	lower := normalizeText(message)
	for _, rule := range intentRules {
		for _, phrase := range rule.phrases {
			if strings.Contains(lower, phrase) {
				return rule.intent
			}
		}
	}
	if len(entities.PartNumbers) > 0 {
		return domain.IntentPartLookup
	}
	return domain.IntentGeneral
}

// prependUnique inserts id at position 0 when ids does not contain it yet.
// Existing order is never changed.
func prependUnique(ids []string, id string) []string {
	if slices.Contains(ids, id) {
		return ids
	}
	return append([]string{id}, ids...)
}

var apostropheReplacer = strings.NewReplacer("\u2019", "'", "\u2018", "'")

// normalizeText lowercases text and folds typographic apostrophes so
// contractions typed as won’t match won't.
func normalizeText(text string) string {
	return apostropheReplacer.Replace(strings.ToLower(text))
}
