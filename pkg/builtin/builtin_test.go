package builtin

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsBuiltinExtensionKnownAndUnknown(t *testing.T) {
	assert.True(t, IsBuiltinExtension("pdf"))
	assert.True(t, IsBuiltinExtension("jpg"))
	assert.False(t, IsBuiltinExtension("xyz"))
}

func TestNonTextExtensionsExcludesDocumentTypes(t *testing.T) {
	assert.True(t, NonTextExtensions["jpg"])
	assert.False(t, NonTextExtensions["pdf"])
	assert.False(t, NonTextExtensions["txt"])
}

func TestEveryNonTextExtensionHasABuiltinCategory(t *testing.T) {
	for ext := range NonTextExtensions {
		assert.True(t, IsBuiltinExtension(ext), "NonTextExtensions entry %q has no ExtensionCategory mapping", ext)
	}
}

func TestBaseCategoriesMatchesExtensionMapCategories(t *testing.T) {
	baseSet := make(map[string]bool, len(BaseCategories))
	for _, c := range BaseCategories {
		baseSet[c] = true
	}
	// Image/video/audio/archive extensions map to categories outside the
	// five base categories; document/code/data extensions should land
	// inside it.
	assert.True(t, baseSet[ExtensionCategory["pdf"]])
	assert.True(t, baseSet[ExtensionCategory["go"]])
	assert.False(t, baseSet[ExtensionCategory["jpg"]])
}
