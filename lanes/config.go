package lanes

// InferLaneConfig fills in the lane counts a way leaves undeclared.
//
// The order of the branches matters: a one-way road with no lane count is a
// single forward lane; any other road with no lane count is assumed to have
// two; a one-way road with a lane count puts every lane forward. Whatever is
// still missing is then derived from the total, with an odd lane going to
// the backward direction.
func InferLaneConfig(t LaneTags) LaneConfig {
	total, fwd, bwd := -1, -1, -1
	if t.Lanes != nil {
		total = *t.Lanes
	}
	if t.Forward != nil {
		fwd = *t.Forward
	}
	if t.Backward != nil {
		bwd = *t.Backward
	}

	switch {
	case total < 0 && t.OneWay:
		total, fwd, bwd = 1, 1, 0
	case total < 0:
		total = 2
	case t.OneWay:
		fwd, bwd = total, 0
	}

	switch {
	case fwd < 0 && bwd < 0:
		fwd = total / 2
		bwd = total - fwd
	case bwd < 0:
		bwd = total - fwd
	case fwd < 0:
		fwd = total - bwd
	}

	// Contradictory tags (lanes:forward > lanes) can push one side negative.
	if fwd < 0 {
		fwd = 0
	}
	if bwd < 0 {
		bwd = 0
	}

	return LaneConfig{Total: total, Forward: fwd, Backward: bwd, OneWay: t.OneWay}
}
