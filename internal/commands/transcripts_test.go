package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diogo/leety/internal/history"
	"github.com/diogo/leety/internal/models"
)

func TestTranscripts_Empty(t *testing.T) {
	env := newTestEnv(t, "")

	stdout, _, err := env.run(t, "", "transcripts")
	require.NoError(t, err)
	assert.Equal(t, "No transcripts in "+env.cfg.Transcript.Dir+"\n", stdout)
}

func TestTranscripts_List(t *testing.T) {
	env := newTestEnv(t, "")

	store := history.NewStore(env.cfg.Transcript.Dir)
	tr := history.New("Two Sum", "https://leetcode.com/problems/two-sum/", models.DefaultModel, []models.Message{
		models.NewUserMessage("hint?"),
	})
	path, err := store.Save(tr, history.FormatMarkdown)
	require.NoError(t, err)

	stdout, _, err := env.run(t, "", "transcripts")
	require.NoError(t, err)
	assert.Contains(t, stdout, "two-sum.md")
	assert.Contains(t, stdout, "markdown")
	assert.Contains(t, stdout, "just now")
	assert.NotEmpty(t, path)
}
