package axolotlsd

// Voice is a single sounding note inside a Channel's voice list,
// tracking the phase accumulator vm/go_synth.go's unit ports track
// for oscillator units, reduced to the one phase/phase_add_by pair a
// wavetable playback voice needs.
type Voice struct {
	Note       byte
	Velocity   float32
	Phase      float32
	PhaseAddBy float32
	// Key is true while the originating note is still held; NoteOff
	// clears it without deactivating the voice, so a loop can be
	// allowed to ring out instead of cutting at release.
	Key    bool
	Active bool
}
