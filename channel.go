package axolotlsd

import "math"

// NumChannels is the fixed voice-pool channel count, channel 9 always
// being the drum channel.
const NumChannels = 16

// DrumChannelIndex is the one channel whose voices index into the
// Drums table by note number instead of mixing a single assigned
// Patch bent by a channel-wide pitch wheel.
const DrumChannelIndex = 9

const a440 float32 = 440.0

// tonalPhaseCoeff is the calibration constant the tonal phase_add_by
// formula is defined in terms of (twelveTET * frequency * 100); it is
// a fixed literal, not axolotlsd.cpp's TUNE_COEFF (44100/440).
const tonalPhaseCoeff float32 = 100.0

// Channel holds one of the synth's 16 voice slots. Tonal channels
// carry a pitch bend and an optional assigned patch program; the drum
// channel ignores both and looks a voice's drum up by its note number
// every frame.
type Channel struct {
	Drum    bool
	Bend    float32
	PatchID *uint8
	Voices  []Voice
}

func newChannels() [NumChannels]Channel {
	var channels [NumChannels]Channel
	for i := range channels {
		channels[i] = Channel{Drum: i == DrumChannelIndex}
	}
	return channels
}

// twelveTET returns the frequency in Hz of note bent by bend
// semitones under twelve-tone equal temperament, A4 (note 69) = 440Hz.
func twelveTET(note byte, bend float32) float32 {
	return float32(math.Pow(2, (float64(note)-69+float64(bend))/12)) * a440
}

// gcVoices removes every voice with Active == false, preserving the
// relative order of survivors.
func gcVoices(voices []Voice) []Voice {
	alive := voices[:0]
	for _, v := range voices {
		if v.Active {
			alive = append(alive, v)
		}
	}
	return alive
}

// mixTonal accumulates every voice in the channel against patch,
// remapping into the loop region once a held voice's index walks past
// loop_end, and deactivating a voice once its index walks off the end
// of an unlooped (or released) waveform.
func (c *Channel) mixTonal(patch Patch) (l, r float32) {
	for i := range c.Voices {
		v := &c.Voices[i]
		index := int(patch.Ratio * v.Phase)
		if patch.Loops() && uint32(index) > patch.LoopEnd && v.Key {
			length := patch.LoopEnd - patch.LoopStart
			if length == 0 {
				index = int(patch.LoopStart)
			} else {
				idx := uint32(index) - patch.LoopStart
				index = int(patch.LoopStart + idx%length)
			}
		}
		var sample float32
		if index < 0 || index >= len(patch.Waveform) {
			v.Active = false
		} else {
			sample = (float32(patch.Waveform[index]) - 128) / 128
		}
		v.Phase += v.PhaseAddBy
		l += sample * v.Velocity * patch.GainL
		r += sample * v.Velocity * patch.GainR
	}
	return l, r
}

// mixDrum accumulates every voice against the drums table, keyed by
// each voice's note number; a voice whose note has no drum entry
// deactivates immediately and contributes silence.
func (c *Channel) mixDrum(drums map[uint8]Drum) (l, r float32) {
	for i := range c.Voices {
		v := &c.Voices[i]
		drum, ok := drums[v.Note]
		if !ok {
			v.Active = false
			continue
		}
		index := int(drum.Ratio * v.Phase)
		var sample float32
		if index < 0 || index >= len(drum.Waveform) {
			v.Active = false
		} else {
			sample = (float32(drum.Waveform[index]) - 128) / 128
		}
		v.Phase += v.PhaseAddBy
		l += sample * v.Velocity * drum.GainL
		r += sample * v.Velocity * drum.GainR
	}
	return l, r
}
