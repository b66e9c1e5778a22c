package axolotlsd

import (
	"fmt"
	"unsafe"
)

const (
	tagNoteOn        = 0x01
	tagNoteOff       = 0x02
	tagPitchWheel    = 0x03
	tagProgramChange = 0x04
	tagPatchData     = 0x80
	tagDrumData      = 0x81
	tagVersion       = 0xFC
	tagRate          = 0xFD
	tagEndOfTrack    = 0xFE
)

var magic = [4]byte{'A', 'X', 'S', 'D'}

// DecodeSong parses a full AXSD container: the four-byte magic
// followed by a stream of tagged commands, each folded into the
// returned Song's patch/drum tables or its tick-ordered event
// multimap. Decoding is purely a parse step; no cross-field
// validation (e.g. channel-has-a-patch) happens here, the same
// division of labor 4klang.go's Read4klangPatch uses between parsing
// and the synth that later consumes the parsed patch.
func DecodeSong(data []byte) (Song, error) {
	r := newByteReader(data)

	got, err := r.take(4)
	if err != nil {
		return Song{}, fmt.Errorf("decode song: read magic: %w", err)
	}
	if got[0] != magic[0] || got[1] != magic[1] || got[2] != magic[2] || got[3] != magic[3] {
		return Song{}, fmt.Errorf("decode song: magic %q: %w", got, ErrBadMagic)
	}

	song := newSong()
	for r.remaining() > 0 {
		tag, err := r.u8()
		if err != nil {
			return Song{}, fmt.Errorf("decode song: read tag: %w", err)
		}
		if err := decodeCommand(&song, r, tag); err != nil {
			return Song{}, err
		}
	}
	return song, nil
}

// DecodeSongBytes is the embedding-friendly entry point for a song
// compiled in as a raw byte array and handed over as a pointer and
// length, the Go analogue of axolotlsd.cpp's load_xxd_format(const
// unsigned char*, unsigned int).
func DecodeSongBytes(ptr *byte, length uint32) (Song, error) {
	if ptr == nil || length == 0 {
		return Song{}, fmt.Errorf("decode song bytes: empty buffer: %w", ErrTruncated)
	}
	data := unsafe.Slice(ptr, int(length))
	return DecodeSong(data)
}

func decodeCommand(song *Song, r *byteReader, tag byte) error {
	switch tag {
	case tagNoteOn:
		tick, err := r.u32le()
		if err != nil {
			return fmt.Errorf("decode note_on: tick: %w", err)
		}
		channel, err := readChannel(r, "note_on")
		if err != nil {
			return err
		}
		note, err := r.u8()
		if err != nil {
			return fmt.Errorf("decode note_on: note: %w", err)
		}
		velocity, err := r.u8()
		if err != nil {
			return fmt.Errorf("decode note_on: velocity: %w", err)
		}
		song.insertEvent(tick, Event{Kind: EventNoteOn, Channel: channel, Note: note, Velocity: velocity})

	case tagNoteOff:
		tick, err := r.u32le()
		if err != nil {
			return fmt.Errorf("decode note_off: tick: %w", err)
		}
		channel, err := readChannel(r, "note_off")
		if err != nil {
			return err
		}
		song.insertEvent(tick, Event{Kind: EventNoteOff, Channel: channel})

	case tagPitchWheel:
		tick, err := r.u32le()
		if err != nil {
			return fmt.Errorf("decode pitch_wheel: tick: %w", err)
		}
		channel, err := readChannel(r, "pitch_wheel")
		if err != nil {
			return err
		}
		bend, err := r.s32le()
		if err != nil {
			return fmt.Errorf("decode pitch_wheel: bend: %w", err)
		}
		song.insertEvent(tick, Event{Kind: EventPitchWheel, Channel: channel, Bend: bend})

	case tagProgramChange:
		tick, err := r.u32le()
		if err != nil {
			return fmt.Errorf("decode program_change: tick: %w", err)
		}
		channel, err := readChannel(r, "program_change")
		if err != nil {
			return err
		}
		program, err := r.u8()
		if err != nil {
			return fmt.Errorf("decode program_change: program: %w", err)
		}
		song.insertEvent(tick, Event{Kind: EventProgramChange, Channel: channel, Program: program})

	case tagPatchData:
		program, err := r.u8()
		if err != nil {
			return fmt.Errorf("decode patch_data: program: %w", err)
		}
		sampleCount, err := r.u32le()
		if err != nil {
			return fmt.Errorf("decode patch_data: sample_count: %w", err)
		}
		loopStart, err := r.u32le()
		if err != nil {
			return fmt.Errorf("decode patch_data: loop_start: %w", err)
		}
		loopEnd, err := r.u32le()
		if err != nil {
			return fmt.Errorf("decode patch_data: loop_end: %w", err)
		}
		ratio, err := r.f32le()
		if err != nil {
			return fmt.Errorf("decode patch_data: ratio: %w", err)
		}
		gainL, err := r.f32le()
		if err != nil {
			return fmt.Errorf("decode patch_data: gain_l: %w", err)
		}
		gainR, err := r.f32le()
		if err != nil {
			return fmt.Errorf("decode patch_data: gain_r: %w", err)
		}
		waveform, err := r.take(int(sampleCount))
		if err != nil {
			return fmt.Errorf("decode patch_data: waveform (%d bytes): %w", sampleCount, err)
		}
		owned := make([]byte, len(waveform))
		copy(owned, waveform)
		song.Patches[program] = Patch{
			Waveform:  owned,
			Ratio:     ratio,
			GainL:     gainL,
			GainR:     gainR,
			LoopStart: loopStart,
			LoopEnd:   loopEnd,
		}
		song.insertEvent(0, Event{Kind: EventPatchData})

	case tagDrumData:
		drumNote, err := r.u8()
		if err != nil {
			return fmt.Errorf("decode drum_data: drum_note: %w", err)
		}
		sampleCount, err := r.u32le()
		if err != nil {
			return fmt.Errorf("decode drum_data: sample_count: %w", err)
		}
		ratio, err := r.f32le()
		if err != nil {
			return fmt.Errorf("decode drum_data: ratio: %w", err)
		}
		gainL, err := r.f32le()
		if err != nil {
			return fmt.Errorf("decode drum_data: gain_l: %w", err)
		}
		gainR, err := r.f32le()
		if err != nil {
			return fmt.Errorf("decode drum_data: gain_r: %w", err)
		}
		waveform, err := r.take(int(sampleCount))
		if err != nil {
			return fmt.Errorf("decode drum_data: waveform (%d bytes): %w", sampleCount, err)
		}
		owned := make([]byte, len(waveform))
		copy(owned, waveform)
		song.Drums[drumNote] = Drum{Waveform: owned, Ratio: ratio, GainL: gainL, GainR: gainR}
		song.insertEvent(0, Event{Kind: EventDrumData})

	case tagVersion:
		version, err := r.u16le()
		if err != nil {
			return fmt.Errorf("decode version: %w", err)
		}
		song.Version = version
		song.insertEvent(0, Event{Kind: EventVersion})

	case tagRate:
		rate, err := r.u32le()
		if err != nil {
			return fmt.Errorf("decode rate: %w", err)
		}
		song.TicksPerSecond = rate
		song.insertEvent(0, Event{Kind: EventRate})

	case tagEndOfTrack:
		end, err := r.u32le()
		if err != nil {
			return fmt.Errorf("decode end_of_track: %w", err)
		}
		// Parked at the new tick value, not the stale ticks_end value
		// that was still live when this marker was built (see
		// DESIGN.md's open-question table).
		song.insertEvent(end, Event{Kind: EventEndOfTrack})
		song.TicksEnd = end

	default:
		return fmt.Errorf("decode song: tag 0x%02x: %w", tag, ErrUnknownTag)
	}
	return nil
}

func readChannel(r *byteReader, what string) (uint8, error) {
	channel, err := r.u8()
	if err != nil {
		return 0, fmt.Errorf("decode %s: channel: %w", what, err)
	}
	if channel >= NumChannels {
		return 0, fmt.Errorf("decode %s: channel %d: %w", what, channel, ErrOutOfRangeIndex)
	}
	return channel, nil
}
