package tui

import (
	"testing"

	"github.com/atotto/clipboard"
	"github.com/stretchr/testify/assert"
)

func TestSystemClipboard_Unsupported(t *testing.T) {
	if !clipboard.Unsupported {
		t.Skip("a clipboard utility is installed")
	}
	assert.ErrorIs(t, SystemClipboard{}.WriteAll("x"), ErrClipboardUnsupported)
}

func TestDefaultKeyMap_Help(t *testing.T) {
	km := DefaultKeyMap()

	assert.NotEmpty(t, km.ShortHelp())
	for _, group := range km.FullHelp() {
		for _, b := range group {
			assert.NotEmpty(t, b.Help().Key)
			assert.NotEmpty(t, b.Help().Desc)
		}
	}
}
