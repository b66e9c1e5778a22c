package axolotlsd

import "sort"

// CurrentVersion is the only container version this decoder accepts.
const CurrentVersion uint16 = 0x0003

// NoLoop marks a Patch with no loop point, the 0xFFFFFFFF sentinel the
// container format uses in the loop_start field.
const NoLoop uint32 = 0xFFFFFFFF

// EventKind identifies which variant an Event carries, one kind per
// container command tag; the numeric values are not the tag bytes.
type EventKind uint8

const (
	EventNoteOn EventKind = iota + 1
	EventNoteOff
	EventPitchWheel
	EventProgramChange
	EventPatchData
	EventDrumData
	EventVersion
	EventRate
	EventEndOfTrack
)

func (k EventKind) String() string {
	switch k {
	case EventNoteOn:
		return "note_on"
	case EventNoteOff:
		return "note_off"
	case EventPitchWheel:
		return "pitch_wheel"
	case EventProgramChange:
		return "program_change"
	case EventPatchData:
		return "patch_data"
	case EventDrumData:
		return "drum_data"
	case EventVersion:
		return "version"
	case EventRate:
		return "rate"
	case EventEndOfTrack:
		return "end_of_track"
	default:
		return "unknown"
	}
}

// Event is a single tagged command parked at a tick in Song's ordered
// multimap. Only the fields relevant to Kind are meaningful; the rest
// are left zero.
type Event struct {
	Kind     EventKind
	Channel  uint8
	Note     uint8
	Velocity uint8
	Bend     int32
	Program  uint8
}

// Patch is a tonal instrument: a single-cycle or looped unsigned
// 8-bit PCM waveform plus the gain and playback-rate fields that scale
// it at render time.
type Patch struct {
	Waveform  []byte
	Ratio     float32
	GainL     float32
	GainR     float32
	LoopStart uint32
	LoopEnd   uint32
}

// Loops reports whether the patch has a loop point, i.e. LoopStart is
// not the NoLoop sentinel.
func (p Patch) Loops() bool {
	return p.LoopStart != NoLoop
}

// Drum is a one-shot percussion waveform: no loop point, no bend.
type Drum struct {
	Waveform []byte
	Ratio    float32
	GainL    float32
	GainR    float32
}

// Song is a decoded container: the instrument/drum tables plus an
// ordered multimap from tick to the events parked there, preserving
// the order events of the same tick were declared in the stream.
type Song struct {
	Version        uint16
	TicksEnd       uint32
	TicksPerSecond uint32
	Patches        map[uint8]Patch
	Drums          map[uint8]Drum

	ticks        []uint32
	eventsByTick map[uint32][]Event
}

func newSong() Song {
	return Song{
		Patches:      make(map[uint8]Patch),
		Drums:        make(map[uint8]Drum),
		eventsByTick: make(map[uint32][]Event),
	}
}

// insertEvent appends e to the events parked at tick, inserting tick
// into the sorted tick index the first time anything is parked there.
func (s *Song) insertEvent(tick uint32, e Event) {
	if _, ok := s.eventsByTick[tick]; !ok {
		i := sort.Search(len(s.ticks), func(i int) bool { return s.ticks[i] >= tick })
		s.ticks = append(s.ticks, 0)
		copy(s.ticks[i+1:], s.ticks[i:])
		s.ticks[i] = tick
	}
	s.eventsByTick[tick] = append(s.eventsByTick[tick], e)
}

// ticksInRange returns the sorted, parked tick values in the
// half-open interval (lo, hi] (or [0, hi] when loSet is false),
// generalizing the original player's equal_range walk to a single
// binary-searched slice instead of a per-tick map lookup.
func (s *Song) ticksInRange(lo uint32, loSet bool, hi uint32) []uint32 {
	start := 0
	if loSet {
		start = sort.Search(len(s.ticks), func(i int) bool { return s.ticks[i] > lo })
	}
	end := sort.Search(len(s.ticks), func(i int) bool { return s.ticks[i] > hi })
	if start >= end {
		return nil
	}
	return s.ticks[start:end]
}
