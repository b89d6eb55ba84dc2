package viewload

import (
	"image"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type plainOwner struct{}

// dualView implements both presentation interfaces.
type dualView struct {
	fakeView
	fakeButton
}

func TestResolveKey(t *testing.T) {
	view := &fakeView{}

	assert.Equal(t, "*viewload.fakeView", resolveKey(view, ""))
	assert.Equal(t, "highlighted", resolveKey(view, "highlighted"))

	// Stable across calls for the same dynamic type.
	assert.Equal(t, resolveKey(view, ""), resolveKey(&fakeView{}, ""))
	assert.NotEqual(t, resolveKey(view, ""), resolveKey(&fakeButton{}, ""))
}

func TestSelectSetter_CustomWins(t *testing.T) {
	view := &fakeView{}
	var called bool
	custom := func(image.Image, []byte, CacheTier, *url.URL) { called = true }

	setter := selectSetter(view, "k", false, custom)
	require.NotNil(t, setter)
	setter(nil, nil, CacheTierNone, nil)

	assert.True(t, called)
	assert.Empty(t, view.applied())
}

func TestSelectSetter_ImageView(t *testing.T) {
	view := &fakeView{}
	img := testImage(1, 1)

	setter := selectSetter(view, "*viewload.fakeView", false, nil)
	require.NotNil(t, setter)
	setter(img, nil, CacheTierNone, nil)

	require.Len(t, view.applied(), 1)
	assert.Same(t, img, view.applied()[0])
}

func TestSelectSetter_StateImageView(t *testing.T) {
	button := &fakeButton{}
	img := testImage(1, 1)

	// Keyless loads on a multi-state owner still route through the state
	// setter, keyed by the derived default.
	setter := selectSetter(button, "*viewload.fakeButton", false, nil)
	require.NotNil(t, setter)
	setter(img, nil, CacheTierNone, nil)

	require.Len(t, button.appliedFor("*viewload.fakeButton"), 1)
}

func TestSelectSetter_ExplicitKeyPrefersState(t *testing.T) {
	owner := &dualView{}
	img := testImage(1, 1)

	setter := selectSetter(owner, "highlighted", true, nil)
	require.NotNil(t, setter)
	setter(img, nil, CacheTierNone, nil)

	assert.Empty(t, owner.fakeView.applied())
	require.Len(t, owner.appliedFor("highlighted"), 1)

	// Without an explicit key the single-image surface wins.
	setter = selectSetter(owner, "*viewload.dualView", false, nil)
	require.NotNil(t, setter)
	setter(img, nil, CacheTierNone, nil)

	assert.Len(t, owner.fakeView.applied(), 1)
}

func TestSelectSetter_NoCapability(t *testing.T) {
	assert.Nil(t, selectSetter(&plainOwner{}, "k", false, nil))
}
