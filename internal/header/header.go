// Package header decodes FLIF's two header sections: the plain-bytes
// primary header (magic, color space, bit depth, dimensions, frame count)
// read before the range coder starts, and the range-coded second header
// (per-channel bit depth, alpha handling, animation parameters, chance
// table tuning, and the transform chain) read once the coder is live.
package header

import (
	"github.com/pkg/errors"

	"github.com/deepteams/flif/internal/bitio"
	"github.com/deepteams/flif/internal/colorspace"
	"github.com/deepteams/flif/internal/rac"
	"github.com/deepteams/flif/internal/transform"
)

// Limits bounds decode-time resource usage against a hostile or corrupt
// stream. Every field has a documented default drawn from the reference
// decoder; callers needing smaller or larger ceilings construct their own
// via DefaultLimits() and override individual fields.
type Limits struct {
	// MaxPixels caps width*height*frames. Default: 2^26 (~67 million
	// pixels), enough for any photo a browser would reasonably decode.
	MaxPixels uint64
	// MaxManiacNodes caps the node count of any single channel's decision
	// tree. Default: 2^14.
	MaxManiacNodes int
	// MaxMetadataChunkBytes caps a single metadata chunk's decompressed
	// size. Default: 2^20 (1 MiB).
	MaxMetadataChunkBytes int
	// MaxMetadataChunks caps the number of metadata chunks a stream may
	// carry. Default: 8.
	MaxMetadataChunks int
}

// DefaultLimits returns the reference decoder's documented defaults.
func DefaultLimits() Limits {
	return Limits{
		MaxPixels:             1 << 26,
		MaxManiacNodes:        1 << 14,
		MaxMetadataChunkBytes: 1 << 20,
		MaxMetadataChunks:     8,
	}
}

// Header is FLIF's primary header: the plain bytes before the range coder
// starts.
type Header struct {
	ColorSpace  colorspace.ColorSpace
	Interlaced  bool
	Animated    bool
	BytesPerChannel int // 1 (8-bit) supported; >1 recognized, rejected downstream
	Width, Height   int
	NumFrames       int
}

var (
	// ErrBadMagic is returned when the stream does not begin with "FLIF".
	ErrBadMagic = errors.New("header: bad magic bytes")
	// ErrUnsupportedLayout is returned for a channel-count nibble FLIF
	// doesn't define.
	ErrUnsupportedLayout = errors.New("header: unsupported channel layout")
	// ErrTooManyPixels is returned when width*height*frames exceeds the
	// configured Limits.MaxPixels.
	ErrTooManyPixels = errors.New("header: image exceeds pixel limit")
)

// Read parses the primary header from r.
func Read(r *bitio.Reader, limits Limits) (*Header, error) {
	var magic [4]byte
	if err := r.ReadFull(magic[:]); err != nil {
		return nil, errors.WithMessage(err, "header: reading magic")
	}
	if string(magic[:]) != "FLIF" {
		return nil, ErrBadMagic
	}

	flags, err := r.ReadByte()
	if err != nil {
		return nil, errors.WithMessage(err, "header: reading flags byte")
	}
	h := &Header{}
	switch flags >> 4 {
	case 3:
		h.Interlaced, h.Animated = false, false
	case 4:
		h.Interlaced, h.Animated = true, false
	case 5:
		h.Interlaced, h.Animated = false, true
	case 6:
		h.Interlaced, h.Animated = true, true
	default:
		return nil, errors.Errorf("header: unrecognized flags nibble %#x", flags>>4)
	}

	cs, err := colorspace.ParseColorSpace(flags & 0x0f)
	if err != nil {
		return nil, errors.WithMessage(ErrUnsupportedLayout, err.Error())
	}
	h.ColorSpace = cs

	bpcDigit, err := r.ReadByte()
	if err != nil {
		return nil, errors.WithMessage(err, "header: reading bytes-per-channel digit")
	}
	if bpcDigit < '0' || bpcDigit > '9' {
		return nil, errors.Errorf("header: invalid bytes-per-channel digit %q", bpcDigit)
	}
	h.BytesPerChannel = int(bpcDigit - '0')

	width, err := r.ReadVarint()
	if err != nil {
		return nil, errors.WithMessage(err, "header: reading width")
	}
	h.Width = int(width) + 1

	height, err := r.ReadVarint()
	if err != nil {
		return nil, errors.WithMessage(err, "header: reading height")
	}
	h.Height = int(height) + 1

	h.NumFrames = 1
	if h.Animated {
		frames, err := r.ReadVarint()
		if err != nil {
			return nil, errors.WithMessage(err, "header: reading frame count")
		}
		h.NumFrames = int(frames) + 2
	}

	total := uint64(h.Width) * uint64(h.Height) * uint64(h.NumFrames)
	if total > limits.MaxPixels {
		return nil, errors.Wrapf(ErrTooManyPixels, "%d pixels (limit %d)", total, limits.MaxPixels)
	}

	return h, nil
}

// SecondHeader is the range-coded portion of FLIF's header: read once the
// range coder is live, immediately after Read and any metadata chunks.
type SecondHeader struct {
	BitsPerChannel    [4]int
	AlphaZero         bool
	Loops             int
	FrameDelayMillis  []int
	CustomBitchance   bool
	Cutoff            uint16
	AlphaDivisor      uint32
	Chain             *transform.Chain
	InvisiblePredictor bool
}

// defaultCutoff and defaultAlphaDivisor are the reference decoder's
// chance-adaptation defaults, used whenever a stream doesn't set its
// custom-cutoff flag.
const (
	defaultCutoff       = 2
	defaultAlphaDivisor = 19
)

// ReadSecond parses the second header via the already-initialized range
// decoder, including the transform chain.
func ReadSecond(d *rac.Decoder, h *Header) (*SecondHeader, error) {
	sh := &SecondHeader{Cutoff: defaultCutoff, AlphaDivisor: defaultAlphaDivisor}

	channels := h.ColorSpace.Channels()
	maxSample := int64(1<<(8*h.BytesPerChannel)) - 1
	for i := 0; i < channels; i++ {
		bits, err := d.ReadUniform(1, 8*int64(h.BytesPerChannel))
		if err != nil {
			return nil, errors.WithMessagef(err, "header: reading bit depth for channel %d", i)
		}
		sh.BitsPerChannel[i] = int(bits)
	}

	if h.ColorSpace == colorspace.RGBA {
		alphaZero, err := d.ReadBit()
		if err != nil {
			return nil, errors.WithMessage(err, "header: reading alpha-zero flag")
		}
		sh.AlphaZero = alphaZero
	}

	if h.Animated {
		loops, err := d.ReadUniform(0, 100)
		if err != nil {
			return nil, errors.WithMessage(err, "header: reading loop count")
		}
		sh.Loops = int(loops)
		sh.FrameDelayMillis = make([]int, h.NumFrames)
		for i := range sh.FrameDelayMillis {
			delay, err := d.ReadUniform(0, 60000)
			if err != nil {
				return nil, errors.WithMessagef(err, "header: reading frame delay %d", i)
			}
			sh.FrameDelayMillis[i] = int(delay)
		}
	}

	custom, err := d.ReadBit()
	if err != nil {
		return nil, errors.WithMessage(err, "header: reading custom-cutoff flag")
	}
	if custom {
		cutoff, err := d.ReadUniform(1, 128)
		if err != nil {
			return nil, errors.WithMessage(err, "header: reading cutoff")
		}
		sh.Cutoff = uint16(cutoff)
		divisor, err := d.ReadUniform(2, 128)
		if err != nil {
			return nil, errors.WithMessage(err, "header: reading alpha divisor")
		}
		sh.AlphaDivisor = uint32(divisor)
		bitchance, err := d.ReadBit()
		if err != nil {
			return nil, errors.WithMessage(err, "header: reading custom-bitchance flag")
		}
		sh.CustomBitchance = bitchance
		if bitchance {
			return nil, errors.New("header: custom bitchance tables are not supported")
		}
	}

	base := colorspace.CRange{}
	for i := 0; i < channels; i++ {
		base[i] = colorspace.ColorRange{Min: 0, Max: colorspace.ColorValue(maxSample)}
	}
	chain, err := transform.LoadChain(d, base)
	if err != nil {
		return nil, err
	}
	sh.Chain = chain

	if sh.AlphaZero && h.Interlaced {
		predictor, err := d.ReadUniform(0, 2)
		if err != nil {
			return nil, errors.WithMessage(err, "header: reading invisible-pixel predictor")
		}
		sh.InvisiblePredictor = predictor != 0
	}

	return sh, nil
}
