package axolotlsd

import (
	"errors"
	"testing"
)

func TestDecodeSongBadMagic(t *testing.T) {
	_, err := DecodeSong([]byte{0x00, 0x00, 0x00, 0x00})
	if !errors.Is(err, ErrBadMagic) {
		t.Fatalf("DecodeSong(bad magic) = %v; want ErrBadMagic", err)
	}
}

func TestDecodeSongTruncatedMagic(t *testing.T) {
	_, err := DecodeSong([]byte{0x41, 0x58})
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("DecodeSong(short buffer) = %v; want ErrTruncated", err)
	}
}

func TestDecodeSongUnknownTag(t *testing.T) {
	data := newSongBuilder().version(CurrentVersion).bytesOut()
	data = append(data, 0xAB)
	_, err := DecodeSong(data)
	if !errors.Is(err, ErrUnknownTag) {
		t.Fatalf("DecodeSong(unknown tag) = %v; want ErrUnknownTag", err)
	}
}

func TestDecodeSongTruncatedPayload(t *testing.T) {
	data := newSongBuilder().bytesOut()
	data = append(data, tagNoteOn, 0x01, 0x02) // tag + partial tick
	_, err := DecodeSong(data)
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("DecodeSong(truncated payload) = %v; want ErrTruncated", err)
	}
}

func TestDecodeSongOutOfRangeChannel(t *testing.T) {
	data := newSongBuilder().noteOn(0, 16, 69, 127).bytesOut()
	_, err := DecodeSong(data)
	if !errors.Is(err, ErrOutOfRangeIndex) {
		t.Fatalf("DecodeSong(channel 16) = %v; want ErrOutOfRangeIndex", err)
	}
}

func TestDecodeSongEmptyButValid(t *testing.T) {
	data := newSongBuilder().
		version(CurrentVersion).
		rate(1000).
		endOfTrack(0).
		bytesOut()

	song, err := DecodeSong(data)
	if err != nil {
		t.Fatalf("DecodeSong() error = %v", err)
	}
	if song.Version != CurrentVersion {
		t.Errorf("Version = %#x; want %#x", song.Version, CurrentVersion)
	}
	if song.TicksPerSecond != 1000 {
		t.Errorf("TicksPerSecond = %d; want 1000", song.TicksPerSecond)
	}
	if song.TicksEnd != 0 {
		t.Errorf("TicksEnd = %d; want 0", song.TicksEnd)
	}
	if len(song.Patches) != 0 || len(song.Drums) != 0 {
		t.Errorf("expected no patches/drums, got %d/%d", len(song.Patches), len(song.Drums))
	}
}

func TestDecodeSongPatchAndDrumTables(t *testing.T) {
	waveform := []byte{0, 64, 128, 192}
	data := newSongBuilder().
		version(CurrentVersion).
		rate(1000).
		patchData(0, waveform, NoLoop, 0, 1.0, 1.0, 1.0).
		drumData(9, waveform, 2.0, 0.8, 0.8).
		endOfTrack(10).
		bytesOut()

	song, err := DecodeSong(data)
	if err != nil {
		t.Fatalf("DecodeSong() error = %v", err)
	}
	patch, ok := song.Patches[0]
	if !ok {
		t.Fatal("expected patch 0 to be present")
	}
	if len(patch.Waveform) != 4 || patch.Waveform[1] != 64 {
		t.Errorf("patch waveform = %v", patch.Waveform)
	}
	if patch.Loops() {
		t.Error("patch with loop_start = NoLoop should not loop")
	}
	drum, ok := song.Drums[9]
	if !ok {
		t.Fatal("expected drum 9 to be present")
	}
	if drum.Ratio != 2.0 || drum.GainL != 0.8 {
		t.Errorf("drum = %+v", drum)
	}
}

func TestDecodeSongBytesMatchesDecodeSong(t *testing.T) {
	waveform := []byte{0, 64, 128, 192}
	data := newSongBuilder().
		version(CurrentVersion).
		rate(1000).
		patchData(0, waveform, NoLoop, 0, 1.0, 1.0, 1.0).
		programChange(0, 0, 0).
		noteOn(0, 0, 69, 127).
		endOfTrack(10).
		bytesOut()

	want, err := DecodeSong(data)
	if err != nil {
		t.Fatalf("DecodeSong() error = %v", err)
	}

	got, err := DecodeSongBytes(&data[0], uint32(len(data)))
	if err != nil {
		t.Fatalf("DecodeSongBytes() error = %v", err)
	}
	if got.Version != want.Version || got.TicksEnd != want.TicksEnd || got.TicksPerSecond != want.TicksPerSecond {
		t.Fatalf("DecodeSongBytes() = %+v; want %+v", got, want)
	}
	patch, ok := got.Patches[0]
	if !ok || len(patch.Waveform) != len(waveform) {
		t.Fatalf("DecodeSongBytes() patch 0 = %+v; want waveform length %d", patch, len(waveform))
	}
	gotTicks := got.ticksInRange(0, false, got.TicksEnd)
	wantTicks := want.ticksInRange(0, false, want.TicksEnd)
	if len(gotTicks) != len(wantTicks) {
		t.Fatalf("DecodeSongBytes() tick count = %d; want %d", len(gotTicks), len(wantTicks))
	}
}

func TestDecodeSongBytesRejectsNilPointer(t *testing.T) {
	_, err := DecodeSongBytes(nil, 4)
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("DecodeSongBytes(nil, 4) = %v; want ErrTruncated", err)
	}
}

func TestDecodeSongPatchAndDrumDataParkMarkersAtTickZero(t *testing.T) {
	waveform := []byte{0, 64, 128, 192}
	data := newSongBuilder().
		version(CurrentVersion).
		rate(1000).
		patchData(0, waveform, NoLoop, 0, 1.0, 1.0, 1.0).
		drumData(9, waveform, 2.0, 0.8, 0.8).
		endOfTrack(10).
		bytesOut()

	song, err := DecodeSong(data)
	if err != nil {
		t.Fatalf("DecodeSong() error = %v", err)
	}

	var sawPatch, sawDrum bool
	for _, e := range song.eventsByTick[0] {
		switch e.Kind {
		case EventPatchData:
			sawPatch = true
		case EventDrumData:
			sawDrum = true
		}
	}
	if !sawPatch {
		t.Error("expected a PatchData marker parked at tick 0")
	}
	if !sawDrum {
		t.Error("expected a DrumData marker parked at tick 0")
	}
}

func TestDecodeSongEventOrderWithinTick(t *testing.T) {
	data := newSongBuilder().
		version(CurrentVersion).
		rate(1000).
		programChange(0, 0, 0).
		noteOn(0, 0, 60, 100).
		noteOn(0, 0, 64, 100).
		endOfTrack(10).
		bytesOut()

	song, err := DecodeSong(data)
	if err != nil {
		t.Fatalf("DecodeSong() error = %v", err)
	}
	events := song.eventsByTick[0]
	var kinds []EventKind
	for _, e := range events {
		kinds = append(kinds, e.Kind)
	}
	// Version/Rate markers are parked at tick 0 ahead of the
	// explicit tick-0 events that follow them in the stream; the
	// ProgramChange/NoteOn/NoteOn trio must still appear in the
	// order they were declared relative to each other.
	var indices []int
	for i, k := range kinds {
		if k == EventProgramChange || k == EventNoteOn {
			indices = append(indices, i)
		}
	}
	if len(indices) != 3 {
		t.Fatalf("expected 3 tonal events, got %v", kinds)
	}
	if indices[0] >= indices[1] || indices[1] >= indices[2] {
		t.Fatalf("event order not preserved: %v", kinds)
	}
}
