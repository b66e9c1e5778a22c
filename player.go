package axolotlsd

import (
	"fmt"
	"math"
)

// Player is the render-loop façade a host drives one Tick at a time,
// stateful across ticks instead of rendering a whole Song in one call
// so a host can pump it from a live audio callback.
type Player struct {
	song      Song
	maxVoices uint32
	frequency float32
	inStereo  bool

	channels [NumChannels]Channel

	playback       bool
	secondsElapsed float32
	secondsEnd     float32
	cursor         uint32
	lastCursor     uint32
	lastCursorSet  bool
	onVoices       uint32

	env        *Environment
	echoL      [EchoBufSize]float32
	echoR      [EchoBufSize]float32
	echoCursor uint16

	sfx []*SFXVoice
}

// NewPlayer creates a Player that renders at sampleRate for up to
// maxVoices simultaneous tonal+drum voices, producing interleaved
// stereo frames when stereo is true and single-channel mono frames
// otherwise.
func NewPlayer(maxVoices, sampleRate uint32, stereo bool) *Player {
	return &Player{
		maxVoices: maxVoices,
		frequency: 1.0 / float32(sampleRate),
		inStereo:  stereo,
		channels:  newChannels(),
	}
}

// Play loads song and resets all channel, cursor and voice-pool state
// so rendering starts from song's beginning on the next Tick. It does
// not touch the installed Environment or any in-flight SFX voices.
func (p *Player) Play(song Song) error {
	if song.Version != CurrentVersion {
		return fmt.Errorf("play: song version 0x%04x: %w", song.Version, ErrVersionMismatch)
	}
	if song.TicksPerSecond == 0 {
		return fmt.Errorf("play: %w", ErrInvalidRate)
	}
	p.song = song
	p.channels = newChannels()
	p.playback = true
	p.secondsElapsed = 0
	p.secondsEnd = float32(song.TicksEnd) / float32(song.TicksPerSecond)
	p.cursor = 0
	p.lastCursor = 0
	p.lastCursorSet = false
	p.onVoices = 0
	p.echoCursor = 0
	return nil
}

// PutEnvironment installs (or, passed nil, removes) the echo
// environment. It is independent of Play so a host can swap reverb
// settings live without restarting the song.
func (p *Player) PutEnvironment(env *Environment) error {
	if env != nil && (env.CursorMax == 0 || int(env.CursorMax) > EchoBufSize) {
		return fmt.Errorf("put environment: cursor_max %d: %w", env.CursorMax, ErrInvalidEnvironment)
	}
	p.env = env
	return nil
}

// Pause stops tick dispatch and the playback clock; the echo tap and
// any in-flight SFX voices keep rendering.
func (p *Player) Pause() {
	p.playback = false
}

// Resume restarts tick dispatch and the playback clock from wherever
// it was paused.
func (p *Player) Resume() {
	p.playback = true
}

// Tick renders len(out) mono frames, or len(out)/2 stereo frames,
// clamping every sample to [-1, 1].
func (p *Player) Tick(out []float32) error {
	if p.inStereo {
		if len(out)%2 != 0 {
			return fmt.Errorf("tick: buffer length %d: %w", len(out), ErrOddStereoBuffer)
		}
		for i := 0; i < len(out); i += 2 {
			l, r := p.renderFrame()
			out[i] = clampSample(l, -1, 1)
			out[i+1] = clampSample(r, -1, 1)
		}
		return nil
	}
	for i := range out {
		l, r := p.renderFrame()
		out[i] = clampSample((l+r)/2, -1, 1)
	}
	return nil
}

// renderFrame produces one stereo frame: the tick-driven voice pool
// (only while playback is running), the SFX layer, and finally the
// echo tap, which runs every frame regardless of playback state the
// same way axolotlsd.cpp's player::tick always calls maybe_echo_one.
func (p *Player) renderFrame() (l, r float32) {
	if p.playback {
		l, r = p.handleOne()
		p.secondsElapsed += p.frequency
		// secondsEnd is 0 for a song whose end-of-track tick is 0 (an
		// empty or instantaneous song); there is no loop to wrap into,
		// so leave secondsElapsed to grow rather than dividing by zero.
		if p.secondsEnd > 0 && p.secondsElapsed > p.secondsEnd {
			p.secondsElapsed = float32(math.Mod(float64(p.secondsElapsed), float64(p.secondsEnd)))
			p.lastCursorSet = false
		}
	}
	p.mixSFX(&l, &r)
	p.echoTap(&l, &r)
	return l, r
}

// handleOne advances the tick cursor, dispatches every event parked
// since the last frame's cursor, then mixes all 16 channels, ported
// from axolotlsd.cpp's player::handle_one.
func (p *Player) handleOne() (l, r float32) {
	p.cursor = uint32(float32(p.song.TicksPerSecond) * p.secondsElapsed)
	if !p.lastCursorSet || p.cursor > p.lastCursor {
		for _, tick := range p.song.ticksInRange(p.lastCursor, p.lastCursorSet, p.cursor) {
			for _, e := range p.song.eventsByTick[tick] {
				p.handleEvent(e)
			}
		}
		p.lastCursor = p.cursor
		p.lastCursorSet = true
	}

	p.onVoices = 0
	for i := range p.channels {
		ch := &p.channels[i]
		ch.Voices = gcVoices(ch.Voices)
		p.onVoices += uint32(len(ch.Voices))
		if ch.Drum {
			cl, cr := ch.mixDrum(p.song.Drums)
			l += cl
			r += cr
			continue
		}
		if ch.PatchID == nil {
			continue
		}
		if patch, ok := p.song.Patches[*ch.PatchID]; ok {
			cl, cr := ch.mixTonal(patch)
			l += cl
			r += cr
		}
	}
	return l, r
}

func (p *Player) handleEvent(e Event) {
	switch e.Kind {
	case EventNoteOn:
		ch := &p.channels[e.Channel]
		if p.onVoices >= p.maxVoices {
			return
		}
		var phaseAddBy float32
		if ch.Drum {
			phaseAddBy = a440 * p.frequency * 32 * float32(math.Pi)
		} else {
			phaseAddBy = twelveTET(e.Note, ch.Bend) * p.frequency * tonalPhaseCoeff
		}
		ch.Voices = append(ch.Voices, Voice{
			Note:       e.Note,
			Velocity:   float32(e.Velocity) / 127,
			PhaseAddBy: phaseAddBy,
			Key:        true,
			Active:     true,
		})
		// on_voices must gate a burst of same-tick NoteOns against
		// each other, not just against the previous frame's tally,
		// so it is kept live here and then rebuilt from the actual
		// post-mix voice counts below.
		p.onVoices++

	case EventNoteOff:
		ch := &p.channels[e.Channel]
		for i := range ch.Voices {
			if ch.Voices[i].Key {
				ch.Voices[i].Key = false
				break
			}
		}

	case EventPitchWheel:
		ch := &p.channels[e.Channel]
		if ch.Drum {
			return
		}
		ch.Bend = float32(e.Bend) / 4096.0
		for i := range ch.Voices {
			v := &ch.Voices[i]
			v.PhaseAddBy = twelveTET(v.Note, ch.Bend) * p.frequency * tonalPhaseCoeff
		}

	case EventProgramChange:
		ch := &p.channels[e.Channel]
		program := e.Program
		ch.PatchID = &program

	case EventPatchData, EventDrumData, EventVersion, EventRate, EventEndOfTrack:
		// Markers only; the data they announce was already folded
		// into the Song by the decoder.
	}
}
