/*
Package lanes works out which direction each traffic sensor faces and which
lanes it covers.

Road ways carry a pipe-delimited `sensor_ref:lanes` tag with one token per
lane, read left to right against the way's drawing direction:

	lanes=4  lanes:forward=2  sensor_ref:lanes=N1234|N1235|no|N1240

The forward lanes come first and face along the way; the backward lanes come
last and face the other way. Resolver folds every way into a single Lookup
keyed by sensor channel number (SCN). A channel referenced from several lane
slots, or from several ways, ends up as one entry.

When the token count disagrees with the declared lane count the lane layout
cannot be trusted. Those ways fall back to a heuristic that only guesses the
direction, and the resulting channels are marked Approximated so callers can
tell them apart from Resolved ones.

	r := lanes.NewResolver()
	for _, w := range ways {
	    r.Add(w)
	}
	res := r.Result()
	ch, ok := res.Lookup["N1234"]
*/
package lanes
