package axolotlsd

// EchoBufSize is the fixed length of each stereo delay line, matching
// axolotlsd.cpp's echo_buffer_L/echo_buffer_R[65535] (rounded up to a
// power of two here since nothing about the algorithm depends on the
// off-by-one in the original array bound).
const EchoBufSize = 65536

// Environment configures the echo tap: feedback and wet/dry mix per
// channel, how fast the delay cursor advances per frame, how far it
// is allowed to range before wrapping, and an optional FIR pre-filter
// applied to the delay line before the feedback multiply.
type Environment struct {
	FeedbackL, FeedbackR float32
	WetL, WetR           float32
	CursorIncrement      uint16
	CursorMax            uint16
	// FIRFilter is nil when no pre-filter stage is configured.
	FIRFilter *[8]float32
}

// ParseSFCFilter decodes eight signed-8-bit FIR taps the way
// axolotlsd.cpp's environment::parse_sfc_echo does: each byte is a
// two's-complement tap scaled by 1/128.
func ParseSFCFilter(taps [8]byte) [8]float32 {
	var out [8]float32
	for i, b := range taps {
		out[i] = float32(int8(b)) / 128
	}
	return out
}

func clampSample(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func mixWet(dry, wet, amount float32) float32 {
	return dry*(1-amount) + wet*amount
}

// echoTap deposits the dry frame (l, r) into the delay lines, runs the
// optional FIR pre-filter, applies feedback and clamps, then replaces
// (l, r) with the wet/dry mix for the output frame. It is a no-op when
// no Environment has been installed via Player.PutEnvironment.
func (p *Player) echoTap(l, r *float32) {
	env := p.env
	if env == nil {
		return
	}
	idx := int(p.echoCursor)
	p.echoL[idx] += *l
	p.echoR[idx] += *r

	if env.FIRFilter != nil {
		cursorMax := int(env.CursorMax)
		var firL, firR float32
		for k := 0; k < 8; k++ {
			tapIdx := ((idx-k)%cursorMax + cursorMax) % cursorMax
			firL += p.echoL[tapIdx] * env.FIRFilter[k]
			firR += p.echoR[tapIdx] * env.FIRFilter[k]
		}
		p.echoL[idx] += firL / 64
		p.echoR[idx] += firR / 64
	}

	p.echoL[idx] *= env.FeedbackL
	p.echoR[idx] *= env.FeedbackR
	p.echoL[idx] = clampSample(p.echoL[idx], -1, 1)
	p.echoR[idx] = clampSample(p.echoR[idx], -1, 1)

	*l = mixWet(*l, p.echoL[idx], env.WetL)
	*r = mixWet(*r, p.echoR[idx], env.WetR)

	p.echoCursor = uint16((uint32(p.echoCursor) + uint32(env.CursorIncrement)) % uint32(env.CursorMax))
}
