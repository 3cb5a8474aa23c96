package keymap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultKeyMap_Bindings(t *testing.T) {
	km := DefaultKeyMap()

	assert.True(t, Matches("ctrl+c", km.Quit))
	assert.True(t, Matches("esc", km.Back))
	assert.True(t, Matches("k", km.Up))
	assert.True(t, Matches("down", km.Down))
	assert.True(t, Matches("]", km.NextPage))
	assert.True(t, Matches("left", km.PrevPage))
	assert.True(t, Matches("tab", km.Mode))
	assert.True(t, Matches("r", km.Reveal))
	assert.False(t, Matches("q", km.Quit))
}

func TestKeyMap_HelpSets(t *testing.T) {
	km := DefaultKeyMap()

	assert.Len(t, km.ShortHelp(), 3)
	assert.Contains(t, km.ResultsHelp(), km.NextPage)
	assert.Contains(t, km.DocumentHelp(), km.Back)
	for _, b := range km.ResultsHelp() {
		assert.NotEmpty(t, b.Help().Desc)
	}
}
