// Package audiosink wires an axolotlsd.Player to a real speaker. The
// core axolotlsd package never imports this: host audio-device I/O is
// an external collaborator (axolotlsd is a render-to-buffer engine),
// but an embedder still needs something to hand Player.Tick's output
// to.
package audiosink

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/ebitengine/oto/v3"
)

// Context owns the oto device and turns a stream of float32 samples
// (as produced by axolotlsd.Player.Tick) into audible sound.
type Context struct {
	ctx    *oto.Context
	ready  chan struct{}
	player *oto.Player
	src    *ringSource
}

const bufferSizeFrames = 8192

// NewContext opens the default audio device at sampleRate with the
// given channel count (1 for mono, 2 for stereo, matching the
// in_stereo flag a Player was constructed with).
func NewContext(sampleRate, channelCount int) (*Context, error) {
	src := &ringSource{}
	options := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channelCount,
		Format:       oto.FormatFloat32LE,
		BufferSize:   0,
	}
	ctx, ready, err := oto.NewContext(options)
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	player := ctx.NewPlayer(src)
	player.SetBufferSize(bufferSizeFrames * channelCount * 4)
	return &Context{ctx: ctx, ready: ready, player: player, src: src}, nil
}

// Ready blocks until the underlying device has finished initializing.
func (c *Context) Ready() {
	<-c.ready
}

// WriteAudio pushes one rendered frame's worth of float32 samples
// (interleaved if stereo) to the device. oto/v3's FormatFloat32LE
// device format takes axolotlsd.Player.Tick's output bytes as-is, no
// int16 conversion layer needed the way the original engine's oto
// backend required.
func (c *Context) WriteAudio(buffer []float32) error {
	c.src.write(floatBufferToLE(buffer))
	if !c.player.IsPlaying() {
		c.player.Play()
	}
	return nil
}

// Close releases the player and the device.
func (c *Context) Close() error {
	if err := c.player.Close(); err != nil {
		return fmt.Errorf("cannot close oto player: %w", err)
	}
	return nil
}

// floatBufferToLE packs buf into the raw little-endian float32 bytes
// oto/v3's FormatFloat32LE device expects, clamping out-of-range
// samples rather than letting them overflow into noise.
func floatBufferToLE(buf []float32) []byte {
	out := make([]byte, len(buf)*4)
	for i, v := range buf {
		if v < -1 {
			v = -1
		} else if v > 1 {
			v = 1
		}
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}

// ringSource is an io.Reader fed by WriteAudio and drained by oto's
// internal playback goroutine; a Read against an empty buffer yields
// silence rather than blocking, so a slow producer underruns instead
// of stalling the device.
type ringSource struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (r *ringSource) write(p []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buf.Write(p)
}

func (r *ringSource) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.buf.Len() == 0 {
		for i := range p {
			p[i] = 0
		}
		return len(p), nil
	}
	n, _ := r.buf.Read(p)
	for i := n; i < len(p); i++ {
		p[i] = 0
	}
	return len(p), nil
}
