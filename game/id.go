package game

import (
	"encoding/base64"

	"lukechampine.com/frand"
)

// newGameID draws a short URL-safe id from the game's generator, so seeded
// games get reproducible ids.
func newGameID(rng *frand.RNG) string {
	return base64.RawURLEncoding.EncodeToString(rng.Bytes(9))
}
