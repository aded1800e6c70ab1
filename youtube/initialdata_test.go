package youtube

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feedFixture = `{
  "contents": {
    "twoColumnBrowseResultsRenderer": {
      "tabs": [
        {"tabRenderer": {"content": {"richGridRenderer": {"contents": [
          {"richItemRenderer": {"content": {"videoRenderer": {
            "videoId": "vid00000001",
            "title": {"simpleText": "Morning News Live"}
          }}}},
          {"richItemRenderer": {"content": {"gridVideoRenderer": {
            "videoId": "vid00000002",
            "title": {"runs": [{"text": "Cooking"}, {"text": "Masterclass"}]}
          }}}},
          {"richItemRenderer": {"content": {"compactVideoRenderer": {
            "videoId": "vid00000003",
            "title": {},
            "accessibility": {"accessibilityData": {"label": "Accessible Title Only"}}
          }}}},
          {"richItemRenderer": {"content": {"videoRenderer": {
            "videoId": "vid00000004",
            "title": {"simpleText": "Quick Clip"},
            "navigationEndpoint": {"commandMetadata": {"webCommandMetadata": {"url": "/shorts/vid00000004"}}}
          }}}},
          {"richItemRenderer": {"content": {"videoRenderer": {
            "videoId": "vid00000001",
            "title": {"simpleText": "Morning News Live (duplicate)"}
          }}}},
          {"richItemRenderer": {"content": {"videoRenderer": {
            "videoId": "vid00000005",
            "title": {}
          }}}}
        ]}}}}
      ]
    }
  }
}`

func TestFeedCandidatesFromTree(t *testing.T) {
	var tree interface{}
	require.NoError(t, json.Unmarshal([]byte(feedFixture), &tree))

	cands := feedCandidatesFromTree(tree)
	require.Len(t, cands, 3)

	byID := make(map[string]Candidate, len(cands))
	for _, c := range cands {
		assert.Equal(t, SourceFeed, c.Source)
		assert.Nil(t, c.El)
		byID[c.VideoID] = c
	}

	assert.Equal(t, "Morning News Live", byID["vid00000001"].Title)
	assert.Equal(t, "Cooking Masterclass", byID["vid00000002"].Title)
	assert.Equal(t, "Accessible Title Only", byID["vid00000003"].Title)

	// The shorts entry and the untitled entry are dropped.
	_, hasShort := byID["vid00000004"]
	assert.False(t, hasShort)
	_, hasUntitled := byID["vid00000005"]
	assert.False(t, hasUntitled)
}

func TestFeedCandidatesEmptyTrees(t *testing.T) {
	assert.Empty(t, feedCandidatesFromTree(nil))
	assert.Empty(t, feedCandidatesFromTree(map[string]interface{}{}))
	assert.Empty(t, feedCandidatesFromTree([]interface{}{"scalar", 42.0}))
}

func TestRendererTitlePreference(t *testing.T) {
	vr := map[string]interface{}{
		"title": map[string]interface{}{
			"simpleText": "Simple Wins",
			"runs":       []interface{}{map[string]interface{}{"text": "Runs Lose"}},
		},
	}
	assert.Equal(t, "Simple Wins", rendererTitle(vr))

	delete(vr["title"].(map[string]interface{}), "simpleText")
	assert.Equal(t, "Runs Lose", rendererTitle(vr))
}
