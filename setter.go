package viewload

import (
	"image"
	"net/url"
	"reflect"
)

// ImageView is implemented by owners that display a single image, the plain
// single-state surface. The loader calls SetImage on the callback queue.
type ImageView interface {
	SetImage(img image.Image)
}

// StateImageView is implemented by owners that carry one image per named
// state (a button-like control). The operation key doubles as the state
// name, so each state is its own load slot.
type StateImageView interface {
	SetImageForState(state string, img image.Image)
}

// SetImageFunc is a caller-supplied presentation setter. When provided it
// replaces the built-in strategies entirely and runs on the callback queue.
type SetImageFunc func(img image.Image, data []byte, tier CacheTier, target *url.URL)

// selectSetter picks the presentation strategy once per request: an
// explicit setter wins, an explicitly keyed request on a multi-state owner
// targets that state, and a plain ImageView gets the single-image setter.
// Owners with no presentation capability get nil; loads against them still
// run, they just have nothing to paint.
func selectSetter(owner any, key string, explicitKey bool, custom SetImageFunc) SetImageFunc {
	if custom != nil {
		return custom
	}
	if sv, ok := owner.(StateImageView); ok && explicitKey {
		return func(img image.Image, _ []byte, _ CacheTier, _ *url.URL) {
			sv.SetImageForState(key, img)
		}
	}
	if v, ok := owner.(ImageView); ok {
		return func(img image.Image, _ []byte, _ CacheTier, _ *url.URL) {
			v.SetImage(img)
		}
	}
	if sv, ok := owner.(StateImageView); ok {
		return func(img image.Image, _ []byte, _ CacheTier, _ *url.URL) {
			sv.SetImageForState(key, img)
		}
	}
	return nil
}

// defaultKey derives the operation key from the owner's dynamic type. It is
// stable across calls for the same type, so repeated keyless loads against
// one owner target the same slot.
func defaultKey(owner any) string {
	return reflect.TypeOf(owner).String()
}

// resolveKey applies the resolution order: an explicit caller-supplied key
// wins, otherwise the type-derived default.
func resolveKey(owner any, explicit string) string {
	if explicit != "" {
		return explicit
	}
	return defaultKey(owner)
}
