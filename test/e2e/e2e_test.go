//go:build e2e

package e2e

import (
	"testing"

	"github.com/cloo-solutions/partsdesk/internal/domain"
	"github.com/cloo-solutions/partsdesk/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var catalogLines = []string{
	`{"ps_number":"PS11752778","name":"Refrigerator Door Shelf Bin","appliance_type":"refrigerator","oem_part_number":"WPW10321304","price":"$36.08","in_stock":true,"description":"Clear door bin.","compatible_models":["WDT780SAEM1","WRS325SDHZ"],"installation_instructions":"Tilt the bin and slide it onto the door rails.","source_url":"https://www.partselect.com/PS11752778.htm"}`,
	`{"ps_number":"PS3406971","name":"Dishwasher Lower Spray Arm","appliance_type":"dishwasher","oem_part_number":"W10491331","price":"$24.95","in_stock":false,"description":"Lower wash arm.","source_url":"https://www.partselect.com/PS3406971.htm"}`,
	`{"name":"record without a part number"}`,
}

func TestE2E_CatalogToAnswer(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	stats := env.IndexCatalog("parts.jsonl", catalogLines...)
	assert.Equal(t, 2, stats.Parts)
	assert.Equal(t, 1, stats.Skipped)
	// overview+compatibility+installation for the bin, overview for the spray arm
	assert.Equal(t, 4, stats.Chunks)

	t.Run("health reports indexed chunks", func(t *testing.T) {
		health, err := env.Client.Health(env.Ctx)
		require.NoError(t, err)
		assert.Equal(t, "ok", health.Status)
		require.NotNil(t, health.Chunks)
		assert.Equal(t, 4, *health.Chunks)
	})

	t.Run("part lookup", func(t *testing.T) {
		resp, err := env.Client.Chat(env.Ctx, domain.ChatRequest{
			Message: "How can I install part number PS11752778?",
		})
		require.NoError(t, err)

		assert.Equal(t, domain.ChatRoleAssistant, resp.Role)
		assert.Equal(t, "Here is what I found.", resp.Content)
		require.Len(t, resp.Parts, 1)
		assert.Equal(t, "PS11752778", resp.Parts[0].PartNumber)
		assert.Equal(t, "$36.08", resp.Parts[0].Price)
		require.NotNil(t, resp.Parts[0].InStock)
		assert.True(t, *resp.Parts[0].InStock)
		assert.Equal(t, service.SuggestQueries(domain.IntentInstallationHelp, domain.Entities{PartNumbers: []string{"PS11752778"}}), resp.SuggestedQueries)

		prompt := env.LLM.lastSystemPrompt()
		assert.Contains(t, prompt, "Tilt the bin")
		assert.NotContains(t, prompt, "PS3406971")
	})

	t.Run("page context supplies the part", func(t *testing.T) {
		resp, err := env.Client.Chat(env.Ctx, domain.ChatRequest{
			Message: "Is this dishwasher arm in stock?",
			PageURL: "https://www.partselect.com/PS3406971-Whirlpool-W10491331-Lower-Spray-Arm.htm",
		})
		require.NoError(t, err)

		require.Len(t, resp.Parts, 1)
		assert.Equal(t, "PS3406971", resp.Parts[0].PartNumber)
		require.NotNil(t, resp.Parts[0].InStock)
		assert.False(t, *resp.Parts[0].InStock)
	})

	t.Run("off-topic short-circuits", func(t *testing.T) {
		calls := env.LLM.chatCalls()

		resp, err := env.Client.Chat(env.Ctx, domain.ChatRequest{Message: "What's the weather today?"})
		require.NoError(t, err)

		assert.Equal(t, service.OffTopicResponse(), resp)
		assert.Equal(t, calls, env.LLM.chatCalls())
	})

	t.Run("validation error", func(t *testing.T) {
		_, err := env.Client.Chat(env.Ctx, domain.ChatRequest{Message: "  "})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "message is required")
	})
}
