// Package flif provides a pure Go decoder for the FLIF (Free Lossless Image
// Format) still-image container.
//
// FLIF compresses multi-channel raster images using an adaptive binary range
// coder driving context-indexed probability tables, combined with
// per-channel MANIAC decision trees that predict pixel residuals from a
// neighborhood-derived property vector, and a chain of reversible color
// transforms applied in reverse at the end. This package implements the
// decoder side only, without any CGo dependencies.
//
// The package supports:
//   - 8-bit, non-interlaced, single-frame images
//   - Monochrome, RGB, and RGBA color spaces
//   - The Channel-Compact, YCoCg, and Bounds transforms
//   - iCCP/eXif/eXmp metadata chunks
//
// Interlaced images, animation, 16-bit channels, custom bitchances, and the
// Palette/PaletteAlpha/ColorBuckets/DuplicateFrame/FrameShape/FrameLookback
// transforms are recognized at the wire-format boundary but rejected as
// unimplemented.
//
// Decode and DecodeConfig are registered with image.RegisterFormat under
// the name "flif", so image.Decode recognizes a FLIF stream once this
// package is imported for its side effect. Callers wanting the richer
// FlifInfo (applied transforms, metadata chunks) should call DecodeFlif
// directly instead of going through the image package.
//
// Basic usage for decoding:
//
//	img, err := flif.DecodeFlif(reader)
//	// or, via the standard image package:
//	img, _, err := image.Decode(reader)
package flif
