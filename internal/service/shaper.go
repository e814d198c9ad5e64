package service

import (
	"fmt"

	"github.com/cloo-solutions/partsdesk/internal/domain"
)

// MaxPartCards caps the part references attached to an answer
const MaxPartCards = 3

// ExtractPartCards keeps the first hit of each distinct part, in order
func ExtractPartCards(result *domain.RetrievalResult) []domain.PartCard {
	cards := make([]domain.PartCard, 0, MaxPartCards)
	if result.Empty() {
		return cards
	}

	seen := make(map[string]struct{}, MaxPartCards)
	for _, hit := range result.Hits {
		meta := hit.Metadata
		if meta.PartNumber == "" {
			continue
		}
		if _, ok := seen[meta.PartNumber]; ok {
			continue
		}
		seen[meta.PartNumber] = struct{}{}
		cards = append(cards, domain.PartCard{
			PartNumber:    meta.PartNumber,
			Name:          meta.Name,
			Price:         meta.Price,
			ImageURL:      meta.ImageURL,
			PartURL:       meta.SourceURL,
			InStock:       meta.InStock,
			OEMPartNumber: meta.OEMPartNumber,
		})
		if len(cards) == MaxPartCards {
			break
		}
	}
	return cards
}

// SuggestQueries returns three follow-up prompts for the intent
func SuggestQueries(intent domain.Intent, entities domain.Entities) []string {
	switch intent {
	case domain.IntentPartLookup:
		if part, ok := entities.PrimaryPart(); ok {
			return []string{
				fmt.Sprintf("What models is %s compatible with?", part),
				fmt.Sprintf("How do I install %s?", part),
				"Show me similar parts",
			}
		}
	case domain.IntentTroubleshoot:
		return []string{
			"What part do I need to fix this?",
			"Show me installation instructions",
			"Find compatible parts for my model",
		}
	case domain.IntentCompatibilityCheck:
		return []string{
			"Show me installation instructions",
			"What does this part do?",
			"Are there alternatives?",
		}
	case domain.IntentInstallationHelp:
		return []string{
			"What tools do I need?",
			"Is there a video guide?",
			"Check part compatibility",
		}
	case domain.IntentGeneral:
	}
	return []string{
		"Help me find a refrigerator part",
		"My dishwasher is not draining",
		"Check part compatibility",
	}
}

// OffTopicResponse is the fixed redirect returned for out-of-scope messages
func OffTopicResponse() *domain.ChatResponse {
	return &domain.ChatResponse{
		Role: domain.ChatRoleAssistant,
		Content: "I'm the PartSelect assistant specializing in **refrigerator** and " +
			"**dishwasher** parts. I can help you with:\n\n" +
			"- Finding the right replacement part\n" +
			"- Checking part compatibility with your model\n" +
			"- Installation instructions\n" +
			"- Troubleshooting common problems\n\n" +
			"How can I help you with your refrigerator or dishwasher today?",
		Parts: []domain.PartCard{},
		SuggestedQueries: []string{
			"Help me find a part for my refrigerator",
			"My dishwasher is not draining",
			"Is part PS11752778 compatible with my model?",
		},
	}
}
