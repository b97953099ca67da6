package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/leety/internal/errors"
)

func TestScrape(t *testing.T) {
	env := newTestEnv(t, "")

	stdout, _, err := env.run(t, "", "scrape")
	require.NoError(t, err)

	require.True(t, gjson.Valid(stdout), "output should be JSON: %s", stdout)
	assert.Equal(t, "tab-1", gjson.Get(stdout, "page.tabId").String())
	assert.Equal(t, "1. Two Sum", gjson.Get(stdout, "problem.title").String())
	assert.Contains(t, gjson.Get(stdout, "problem.currentAnswer").String(), "def twoSum")
	assert.True(t, env.browser.closed)
}

func TestScrape_MissingElement(t *testing.T) {
	env := newTestEnv(t, "")
	env.browser.tab.err = apierrors.NewDOMElementError("problem description", "div.description", nil)

	_, _, err := env.run(t, "", "scrape")
	require.Error(t, err)
	assert.Equal(t, apierrors.KindDOMMissingElement, apierrors.KindOf(err))
}
