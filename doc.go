// Package axolotlsd decodes AXSD container songs and renders them
// with a phase-accumulator wavetable synth: a 16-channel voice pool
// (channel 9 reserved for drums), a one-shot SFX mixer, and a
// fixed-size stereo echo with an optional FIR pre-filter stage.
//
// The package never touches an audio device: a Player is driven one
// Tick at a time and fills a caller-owned float32 buffer. Package
// audiosink is the reference adapter wiring that buffer to a real
// speaker.
package axolotlsd
