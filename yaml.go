package axolotlsd

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

type yamlEvent struct {
	Tick     uint32 `yaml:"tick"`
	Kind     string `yaml:"kind"`
	Channel  uint8  `yaml:"channel,omitempty"`
	Note     uint8  `yaml:"note,omitempty"`
	Velocity uint8  `yaml:"velocity,omitempty"`
	Bend     int32  `yaml:"bend,omitempty"`
	Program  uint8  `yaml:"program,omitempty"`
}

type yamlPatch struct {
	SampleCount int     `yaml:"sample_count"`
	Ratio       float32 `yaml:"ratio"`
	GainL       float32 `yaml:"gain_l"`
	GainR       float32 `yaml:"gain_r"`
	LoopStart   uint32  `yaml:"loop_start"`
	LoopEnd     uint32  `yaml:"loop_end"`
}

type yamlDrum struct {
	SampleCount int     `yaml:"sample_count"`
	Ratio       float32 `yaml:"ratio"`
	GainL       float32 `yaml:"gain_l"`
	GainR       float32 `yaml:"gain_r"`
}

type yamlSong struct {
	Version        uint16              `yaml:"version"`
	TicksEnd       uint32              `yaml:"ticks_end"`
	TicksPerSecond uint32              `yaml:"ticks_per_second"`
	Patches        map[uint8]yamlPatch `yaml:"patches,omitempty"`
	Drums          map[uint8]yamlDrum  `yaml:"drums,omitempty"`
	Events         []yamlEvent         `yaml:"events"`
}

// DumpYAML renders a Song as a human-readable diagnostic document:
// every patch and drum table entry, plus the full event stream in
// tick order, for use in test fixtures and song-inspection tooling
// (tracker's gioui-based UI had a live view of this same state; this
// is its headless equivalent).
func (s Song) DumpYAML() ([]byte, error) {
	doc := yamlSong{
		Version:        s.Version,
		TicksEnd:       s.TicksEnd,
		TicksPerSecond: s.TicksPerSecond,
		Patches:        make(map[uint8]yamlPatch, len(s.Patches)),
		Drums:          make(map[uint8]yamlDrum, len(s.Drums)),
	}
	for id, p := range s.Patches {
		doc.Patches[id] = yamlPatch{
			SampleCount: len(p.Waveform),
			Ratio:       p.Ratio,
			GainL:       p.GainL,
			GainR:       p.GainR,
			LoopStart:   p.LoopStart,
			LoopEnd:     p.LoopEnd,
		}
	}
	for id, d := range s.Drums {
		doc.Drums[id] = yamlDrum{
			SampleCount: len(d.Waveform),
			Ratio:       d.Ratio,
			GainL:       d.GainL,
			GainR:       d.GainR,
		}
	}
	for _, tick := range s.ticks {
		for _, e := range s.eventsByTick[tick] {
			doc.Events = append(doc.Events, yamlEvent{
				Tick:     tick,
				Kind:     e.Kind.String(),
				Channel:  e.Channel,
				Note:     e.Note,
				Velocity: e.Velocity,
				Bend:     e.Bend,
				Program:  e.Program,
			})
		}
	}
	return yaml.Marshal(doc)
}

func eventKindFromString(s string) (EventKind, error) {
	switch s {
	case "note_on":
		return EventNoteOn, nil
	case "note_off":
		return EventNoteOff, nil
	case "pitch_wheel":
		return EventPitchWheel, nil
	case "program_change":
		return EventProgramChange, nil
	case "patch_data":
		return EventPatchData, nil
	case "drum_data":
		return EventDrumData, nil
	case "version":
		return EventVersion, nil
	case "rate":
		return EventRate, nil
	case "end_of_track":
		return EventEndOfTrack, nil
	default:
		return 0, fmt.Errorf("load yaml: event kind %q: %w", s, ErrUnknownTag)
	}
}

// LoadYAML reads a Song.DumpYAML document back into a Song in tests
// and tooling. It does not accept arbitrary hand-written YAML: every
// event's kind must be one of the strings DumpYAML produces. The dump
// records only each patch's and drum's sample count, not its samples,
// so loaded waveforms are zero-filled slices of that length.
func LoadYAML(data []byte) (Song, error) {
	var doc yamlSong
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Song{}, fmt.Errorf("load yaml: %w", err)
	}
	song := newSong()
	song.Version = doc.Version
	song.TicksEnd = doc.TicksEnd
	song.TicksPerSecond = doc.TicksPerSecond
	for id, p := range doc.Patches {
		song.Patches[id] = Patch{
			Waveform:  make([]byte, p.SampleCount),
			Ratio:     p.Ratio,
			GainL:     p.GainL,
			GainR:     p.GainR,
			LoopStart: p.LoopStart,
			LoopEnd:   p.LoopEnd,
		}
	}
	for id, d := range doc.Drums {
		song.Drums[id] = Drum{
			Waveform: make([]byte, d.SampleCount),
			Ratio:    d.Ratio,
			GainL:    d.GainL,
			GainR:    d.GainR,
		}
	}
	for _, ev := range doc.Events {
		kind, err := eventKindFromString(ev.Kind)
		if err != nil {
			return Song{}, err
		}
		song.insertEvent(ev.Tick, Event{
			Kind:     kind,
			Channel:  ev.Channel,
			Note:     ev.Note,
			Velocity: ev.Velocity,
			Bend:     ev.Bend,
			Program:  ev.Program,
		})
	}
	return song, nil
}
