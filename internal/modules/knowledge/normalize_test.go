package knowledge

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	domainknowledge "github.com/yungbote/constella-backend/internal/domain/knowledge"
)

func TestNormalize_FencedJSON(t *testing.T) {
	got, err := Normalize("```json\n{\"topic\":\"X\",\"content\":\"Y\"}\n```")
	require.NoError(t, err)
	require.Equal(t, "X", got.Topic)
	require.Equal(t, "Y", got.Content)
	require.Equal(t, "X", got.CanonicalName)
	require.Equal(t, []string{}, got.Tags)
	require.Equal(t, "", got.ChatResponse)
}

func TestNormalize_UnwrapsResultArray(t *testing.T) {
	got, err := Normalize(`{"result":[{"TOPIC":"Z","content":"W"}]}`)
	require.NoError(t, err)
	require.Equal(t, "Z", got.Topic)
	require.Equal(t, "W", got.Content)
}

func TestNormalize_NestedWrappers(t *testing.T) {
	got, err := Normalize(`Sure! {"Response": {"result": {"topic_name": "Black Hole", "Article Content": "body", "chat_response": "hi", "Related Tags": ["space", "gravity"]}}}`)
	require.NoError(t, err)
	require.Equal(t, "Black Hole", got.Topic)
	require.Equal(t, "body", got.Content)
	require.Equal(t, "hi", got.ChatResponse)
	require.Equal(t, []string{"space", "gravity"}, got.Tags)
}

func TestNormalize_MissingContent(t *testing.T) {
	_, err := Normalize(`{"topic":"Only"}`)
	require.Error(t, err)
	require.True(t, errors.Is(err, domainknowledge.ErrIncompleteGeneratorOutput))

	var inc *domainknowledge.IncompleteOutputError
	require.True(t, errors.As(err, &inc))
	require.Equal(t, []string{"content"}, inc.Missing)
	require.Equal(t, `{"topic":"Only"}`, inc.Raw)
}

func TestNormalize_Malformed(t *testing.T) {
	for _, raw := range []string{"", "no json here", `{"topic": "x",`, `[]`, `{"result":{"result":{"result":{"result":{"result":{"topic":"a","content":"b"}}}}}}`} {
		_, err := Normalize(raw)
		require.Error(t, err, raw)
		require.True(t, errors.Is(err, domainknowledge.ErrMalformedGeneratorOutput), "raw=%q err=%v", raw, err)
	}
}

func TestNormalize_ProseBracketBeforeObject(t *testing.T) {
	got, err := Normalize(`Note [1]: {"topic":"Mars","content":"Red planet"}`)
	require.NoError(t, err)
	require.Equal(t, "Mars", got.Topic)
}

func TestNormalize_ExtrasAndCanonical(t *testing.T) {
	got, err := Normalize(`{"topic":"블랙홀","canonicalName":"black hole","content":"c","title":"Black Hole","Difficulty":"hard","tags":"space, physics"}`)
	require.NoError(t, err)
	require.Equal(t, "black hole", got.CanonicalName)
	require.Equal(t, "Black Hole", got.Title)
	require.Equal(t, []string{"space", "physics"}, got.Tags)
	require.Equal(t, map[string]any{"difficulty": "hard"}, got.Extras)
}

func TestNormalize_ExactKeyWins(t *testing.T) {
	got, err := Normalize(`{"topic":"exact","main_topic":"fuzzy","content":"c"}`)
	require.NoError(t, err)
	require.Equal(t, "exact", got.Topic)
}

func TestExtractJSON(t *testing.T) {
	require.Equal(t, `{"a":1}`, ExtractJSON("text {\"a\":1} trailing"))
	require.Equal(t, `[{"a":1}]`, ExtractJSON("[{\"a\":1}]"))
	require.Equal(t, "plain", ExtractJSON("  plain "))
}
