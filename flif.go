package flif

import (
	"bufio"
	"image"
	"image/color"
	"io"
	"sync"

	"github.com/pkg/errors"

	"github.com/deepteams/flif/internal/bitio"
	"github.com/deepteams/flif/internal/colorspace"
	"github.com/deepteams/flif/internal/decodeimage"
	"github.com/deepteams/flif/internal/header"
	"github.com/deepteams/flif/internal/metadata"
	"github.com/deepteams/flif/internal/rac"
)

func init() {
	image.RegisterFormat("flif", "FLIF", Decode, DecodeConfig)
}

// Limits re-exports header.Limits so callers never need to import an
// internal package to configure a Decoder.
type Limits = header.Limits

// DefaultLimits returns the documented resource ceilings applied when a
// Decoder isn't given its own via WithLimits.
func DefaultLimits() Limits {
	return header.DefaultLimits()
}

// FlifInfo describes a decoded image's container-level metadata: its
// dimensions, color space, applied transforms, and any auxiliary chunks
// carried alongside the pixels.
type FlifInfo struct {
	Width, Height int
	ColorSpace    colorspace.ColorSpace
	Metadata      []metadata.Chunk

	chain transformChain
}

// TransformNames returns the names of the transforms applied to this
// image, in application order, for display in an Identify-style summary.
func (fi FlifInfo) TransformNames() []string {
	if fi.chain == nil {
		return nil
	}
	return fi.chain.Names()
}

// transformChain is an unexported alias avoiding an internal/transform
// import in this file's public surface; flif.go only ever reads Names()
// off it.
type transformChain = namesOnly

type namesOnly interface {
	Names() []string
}

// Image is a fully decoded FLIF raster: the raw channel buffer plus the
// info that accompanied it. Use ToImage to convert it to a standard
// library image.Image, or call the package-level Decode/DecodeConfig
// functions for code that only needs the image.Image interface (these
// are also registered with image.RegisterFormat).
type Image struct {
	*colorspace.Image
	Info FlifInfo
}

// ToImage converts the decoded channel buffer to a standard library
// image.Image: *image.Gray for Monochrome, *image.NRGBA for RGB/RGBA.
func (img *Image) ToImage() image.Image {
	bounds := image.Rect(0, 0, img.Width, img.Height)
	if img.ColorSpace == colorspace.Monochrome {
		out := image.NewGray(bounds)
		for y := 0; y < img.Height; y++ {
			for x := 0; x < img.Width; x++ {
				p := img.At(x, y)
				out.SetGray(x, y, color.Gray{Y: clampByte(p.Get(colorspace.ChanY))})
			}
		}
		return out
	}

	out := image.NewNRGBA(bounds)
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			p := img.At(x, y)
			a := byte(255)
			if img.ColorSpace == colorspace.RGBA {
				a = clampByte(p.Get(colorspace.ChanAlpha))
			}
			out.SetNRGBA(x, y, color.NRGBA{
				R: clampByte(p.Get(colorspace.ChanY)),
				G: clampByte(p.Get(colorspace.ChanCo)),
				B: clampByte(p.Get(colorspace.ChanCg)),
				A: a,
			})
		}
	}
	return out
}

func clampByte(v colorspace.ColorValue) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}

var decoderPool = sync.Pool{
	New: func() interface{} { return &Decoder{limits: DefaultLimits()} },
}

// Decoder reads one FLIF image from an io.Reader. The zero value has
// all-zero Limits and rejects every image; use NewDecoder or WithLimits.
// The package-level DecodeFlif pools Decoders configured with
// DefaultLimits; construct one explicitly only to override Limits.
type Decoder struct {
	limits Limits
}

// NewDecoder returns a Decoder configured with the default Limits.
func NewDecoder() *Decoder {
	return &Decoder{limits: DefaultLimits()}
}

// WithLimits returns a copy of d configured with custom resource limits.
func (d Decoder) WithLimits(limits Limits) *Decoder {
	d.limits = limits
	return &d
}

// Decode reads a FLIF image from r and returns it as a standard library
// image.Image (*image.Gray or *image.NRGBA). This is the function
// registered with image.RegisterFormat; callers wanting the richer
// FlifInfo (applied transforms, metadata chunks) should call DecodeFlif
// instead.
func Decode(r io.Reader) (image.Image, error) {
	img, err := DecodeFlif(r)
	if err != nil {
		return nil, err
	}
	return img.ToImage(), nil
}

// DecodeConfig returns the color model and dimensions of a FLIF image
// without decoding any pixels.
func DecodeConfig(r io.Reader) (image.Config, error) {
	info, err := Identify(r)
	if err != nil {
		return image.Config{}, err
	}
	cm := color.NRGBAModel
	if info.ColorSpace == colorspace.Monochrome {
		cm = color.GrayModel
	}
	return image.Config{
		ColorModel: cm,
		Width:      info.Width,
		Height:     info.Height,
	}, nil
}

// DecodeFlif reads one FLIF image from r, supporting 8-bit, non-
// interlaced, single-frame Monochrome/RGB/RGBA images using the
// Channel-Compact, YCoCg, Permute-Planes, and Bounds transforms. Any
// other feature in the stream (interlacing, animation, 16-bit channels,
// a custom bitchance table, or an unsupported transform) is rejected
// with an error rather than silently mis-decoded.
func DecodeFlif(r io.Reader) (*Image, error) {
	dec := decoderPool.Get().(*Decoder)
	defer decoderPool.Put(dec)
	return dec.Decode(r)
}

// Decode reads one FLIF image from r using d's configured Limits.
func (d *Decoder) Decode(r io.Reader) (*Image, error) {
	br := bufio.NewReader(r)
	byteReader := bitio.NewReader(br)

	h, err := header.Read(byteReader, d.limits)
	if err != nil {
		return nil, errors.WithMessage(err, "flif: reading header")
	}
	if h.Interlaced || h.Animated {
		return nil, errors.New("flif: interlaced and animated streams are not supported")
	}
	if h.BytesPerChannel != 1 {
		return nil, errors.New("flif: only 8-bit channels are supported")
	}

	chunks, err := metadata.ReadAll(byteReader, d.limits)
	if err != nil {
		return nil, errors.WithMessage(err, "flif: reading metadata")
	}

	racDecoder, err := rac.NewDecoder(byteReader)
	if err != nil {
		return nil, errors.WithMessage(err, "flif: initializing range decoder")
	}

	sh, err := header.ReadSecond(racDecoder, h)
	if err != nil {
		return nil, errors.WithMessage(err, "flif: reading second header")
	}

	img, err := decodeimage.Decode(racDecoder, h, sh, d.limits)
	if err != nil {
		return nil, errors.WithMessage(err, "flif: decoding pixels")
	}

	info := FlifInfo{
		Width:      h.Width,
		Height:     h.Height,
		ColorSpace: h.ColorSpace,
		Metadata:   chunks,
		chain:      sh.Chain,
	}

	return &Image{Image: img, Info: info}, nil
}

// Identify parses only the headers and metadata of a FLIF stream, without
// decoding any pixels: useful for reporting an image's dimensions, color
// space, and applied transforms before committing to a full decode.
func Identify(r io.Reader) (FlifInfo, error) {
	br := bufio.NewReader(r)
	byteReader := bitio.NewReader(br)

	limits := DefaultLimits()
	h, err := header.Read(byteReader, limits)
	if err != nil {
		return FlifInfo{}, errors.WithMessage(err, "flif: reading header")
	}

	chunks, err := metadata.ReadAll(byteReader, limits)
	if err != nil {
		return FlifInfo{}, errors.WithMessage(err, "flif: reading metadata")
	}

	racDecoder, err := rac.NewDecoder(byteReader)
	if err != nil {
		return FlifInfo{}, errors.WithMessage(err, "flif: initializing range decoder")
	}

	sh, err := header.ReadSecond(racDecoder, h)
	if err != nil {
		return FlifInfo{}, errors.WithMessage(err, "flif: reading second header")
	}

	return FlifInfo{
		Width:      h.Width,
		Height:     h.Height,
		ColorSpace: h.ColorSpace,
		Metadata:   chunks,
		chain:      sh.Chain,
	}, nil
}
