package audio

// MaxRateShift bounds dynamic rate control to a 1% pitch change.
const MaxRateShift = 0.01

// Resampler converts interleaved stereo between sample rates with linear
// interpolation. The ratio is nudged by up to MaxRateShift to keep the
// output buffer near half full.
type Resampler struct {
	in, out float64
	pos     float64
	prev    [2]float32
	primed  bool
	buf     []float32
}

// NewResampler creates a resampler from rate in to rate out.
func NewResampler(in, out float64) *Resampler {
	r := &Resampler{out: out}
	r.SetInputRate(in)
	return r
}

// SetInputRate changes the source rate. Non-positive rates pass through.
func (r *Resampler) SetInputRate(in float64) {
	if in <= 0 {
		in = r.out
	}
	r.in = in
}

// InputRate returns the source rate.
func (r *Resampler) InputRate() float64 { return r.in }

// Ratio returns output frames per input frame for a buffer fill level in
// [0, 1]. An emptier buffer stretches the output slightly.
func (r *Resampler) Ratio(fill float64) float64 {
	base := r.out / r.in
	if fill < 0 {
		fill = 0
	} else if fill > 1 {
		fill = 1
	}
	return base * (1 + MaxRateShift*(1-2*fill))
}

// Process resamples in at the given fill level. The returned slice is
// reused by the next call.
func (r *Resampler) Process(in []float32, fill float64) []float32 {
	frames := len(in) / 2
	if frames == 0 {
		return r.buf[:0]
	}
	step := 1 / r.Ratio(fill)
	if !r.primed {
		r.prev = [2]float32{in[0], in[1]}
		r.primed = true
	}

	out := r.buf[:0]
	// pos is measured from prev, which sits at index -1.
	for {
		idx := int(r.pos)
		if idx >= frames {
			break
		}
		frac := float32(r.pos - float64(idx))
		var a [2]float32
		if idx == 0 {
			a = r.prev
		} else {
			a = [2]float32{in[2*(idx-1)], in[2*(idx-1)+1]}
		}
		b := [2]float32{in[2*idx], in[2*idx+1]}
		out = append(out, a[0]+(b[0]-a[0])*frac, a[1]+(b[1]-a[1])*frac)
		r.pos += step
	}
	r.pos -= float64(frames)
	r.prev = [2]float32{in[2*frames-2], in[2*frames-1]}
	r.buf = out
	return out
}

// Reset clears interpolation history.
func (r *Resampler) Reset() {
	r.pos = 0
	r.primed = false
}
