package domain

// TopicVerdict is the outcome of the cheap keyword/pattern topic screen
type TopicVerdict int

const (
	TopicOffTopic TopicVerdict = iota
	TopicOnTopic
	TopicUncertain
)

func (v TopicVerdict) String() string {
	switch v {
	case TopicOnTopic:
		return "on_topic"
	case TopicOffTopic:
		return "off_topic"
	case TopicUncertain:
		return "uncertain"
	}
	return "unknown"
}

// TopicLabel is the answer of the LLM escalation classifier
type TopicLabel string

const (
	TopicLabelRefrigeratorParts TopicLabel = "REFRIGERATOR_PARTS"
	TopicLabelDishwasherParts   TopicLabel = "DISHWASHER_PARTS"
	TopicLabelOffTopic          TopicLabel = "OFF_TOPIC"
)

// Intent is the customer's goal, derived from the message wording
type Intent string

const (
	IntentCompatibilityCheck Intent = "COMPATIBILITY_CHECK"
	IntentInstallationHelp   Intent = "INSTALLATION_HELP"
	IntentTroubleshoot       Intent = "TROUBLESHOOT"
	IntentPartLookup         Intent = "PART_LOOKUP"
	IntentGeneral            Intent = "GENERAL"
)

// Entities are the identifiers found in a message and its page context
type Entities struct {
	// PartNumbers is deduplicated; a page-context identifier is always first.
	PartNumbers  []string
	ModelNumbers []string
}

// PrimaryPart returns the highest priority part identifier, if any
func (e Entities) PrimaryPart() (string, bool) {
	if len(e.PartNumbers) == 0 {
		return "", false
	}
	return e.PartNumbers[0], true
}

// AnalyzedQuery is the intent and entities derived from one request
type AnalyzedQuery struct {
	Intent   Intent
	Entities Entities
}
