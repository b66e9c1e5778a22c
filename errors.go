package axolotlsd

import "errors"

// Sentinel errors for the decoder and player, wrapped with context at
// each call site via fmt.Errorf("...: %w", err) and checked with
// errors.Is, the same style 4klang.go uses for binary.Read failures.
var (
	ErrBadMagic           = errors.New("axolotlsd: first four bytes are not \"AXSD\"")
	ErrUnknownTag         = errors.New("axolotlsd: unrecognized command tag")
	ErrTruncated          = errors.New("axolotlsd: buffer ended before a payload could be read")
	ErrVersionMismatch    = errors.New("axolotlsd: song version is not 0x0003")
	ErrOutOfRangeIndex    = errors.New("axolotlsd: channel index is out of range 0..15")
	ErrInvalidRate        = errors.New("axolotlsd: ticks_per_second must be greater than zero")
	ErrInvalidEnvironment = errors.New("axolotlsd: environment cursor_max must be in (0, 65536]")
	ErrOddStereoBuffer    = errors.New("axolotlsd: stereo output buffer length must be even")
)
