package progress

// sampleSteps is how many evenly spaced progress lines a full pass emits.
const sampleSteps = 20

// offsetSampler decides when a pass has moved far enough to log again. It
// works on candidate offsets so a resumed pass keeps the same boundaries as
// a fresh one.
type offsetSampler struct {
	step uint64
	next uint64
}

// reset aligns the sampler to a pass of total candidates resuming at offset.
// A zero total disables sampling for the pass.
func (s *offsetSampler) reset(total, offset uint64) {
	if total == 0 {
		*s = offsetSampler{}
		return
	}
	s.step = max(total/sampleSteps, 1)
	s.next = s.boundaryAfter(offset)
}

// due reports whether done has reached the next boundary and, if so, moves
// the boundary past done.
func (s *offsetSampler) due(done uint64) bool {
	if s.step == 0 || done < s.next {
		return false
	}
	s.next = s.boundaryAfter(done)
	return true
}

func (s *offsetSampler) boundaryAfter(offset uint64) uint64 {
	return (offset/s.step + 1) * s.step
}
