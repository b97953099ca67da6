package render

import (
	"testing"

	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderersPoolPerOptions(t *testing.T) {
	pooled.reset()
	defer pooled.reset()

	opts := DefaultOptions()
	r1, err := pooled.acquire(opts)
	require.NoError(t, err)
	pooled.release(opts, r1)

	r2, err := pooled.acquire(opts)
	require.NoError(t, err)
	assert.Equal(t, 1, pooled.size())

	wide := opts.WithWidth(120)
	r3, err := pooled.acquire(wide)
	require.NoError(t, err)
	assert.Equal(t, 2, pooled.size())

	pooled.release(opts, r2)
	pooled.release(wide, r3)

	pooled.reset()
	assert.Zero(t, pooled.size())
}

func TestRenderersConcurrentAnswers(t *testing.T) {
	pooled.reset()
	defer pooled.reset()

	opts := DefaultOptions()
	errs := make(chan error, 50)

	var wg conc.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Go(func() {
			if _, err := Answer("Hint:\n\n```go\nx := 1\n```", opts); err != nil {
				errs <- err
			}
		})
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent render error: %v", err)
	}
	assert.Equal(t, 1, pooled.size())
}

func TestIsStandardStyle(t *testing.T) {
	for _, style := range []string{"dark", "light", "dracula", "notty"} {
		assert.True(t, IsStandardStyle(style), style)
	}
	assert.False(t, IsStandardStyle("/tmp/custom.json"), "a style path is not a standard style")
}

func TestMarkdownWithMissingStyleFile(t *testing.T) {
	_, err := Markdown("# hi", DefaultOptions().WithStyle("/nonexistent/style.json"))
	assert.Error(t, err)
}
