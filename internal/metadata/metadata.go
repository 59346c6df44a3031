// Package metadata reads FLIF's chunked metadata section: a sequence of
// tagged, DEFLATE-compressed byte blobs (ICC color profiles, EXIF, XMP)
// interleaved between the header and the pixel data.
//
// This mirrors the WebP codec's internal/container chunk reader
// (parseVP8XChunks switching on FourCC): each chunk also carries a
// four-byte tag, but its first byte doubles as the end/required-chunk
// marker, sizes are varints, and every payload is DEFLATE-compressed
// rather than stored raw.
package metadata

import (
	"bytes"
	"compress/flate"
	"io"

	"github.com/pkg/errors"

	"github.com/deepteams/flif/internal/bitio"
	"github.com/deepteams/flif/internal/header"
)

// Tag identifies a metadata chunk's contents.
type Tag int

const (
	TagICCP Tag = iota
	TagEXIF
	TagEXMP
	TagUnknownOptional
)

// Chunk is one decoded metadata entry.
type Chunk struct {
	Tag     Tag
	RawTag  [4]byte
	Payload []byte
}

var (
	// ErrRequiredMetadata is returned for a tag byte in [1, 31]: the
	// reference format reserves this range for metadata a decoder must
	// understand to proceed, and this decoder understands none of them.
	ErrRequiredMetadata = errors.New("metadata: unknown required metadata")
	// ErrTooManyChunks is returned once Limits.MaxMetadataChunks is
	// exceeded.
	ErrTooManyChunks = errors.New("metadata: too many chunks")
	// ErrChunkTooLarge is returned once a chunk's declared size exceeds
	// Limits.MaxMetadataChunkBytes.
	ErrChunkTooLarge = errors.New("metadata: chunk exceeds size limit")
)

// ReadAll reads every metadata chunk up to the terminating zero byte.
func ReadAll(r *bitio.Reader, limits header.Limits) ([]Chunk, error) {
	var chunks []Chunk
	for {
		first, err := r.ReadByte()
		if err != nil {
			return nil, errors.WithMessage(err, "metadata: reading chunk tag")
		}
		if first == 0 {
			return chunks, nil
		}
		if first < 32 {
			return nil, errors.Wrapf(ErrRequiredMetadata, "tag byte %d", first)
		}
		if len(chunks) >= limits.MaxMetadataChunks {
			return nil, ErrTooManyChunks
		}

		var rawTag [4]byte
		rawTag[0] = first
		if err := r.ReadFull(rawTag[1:]); err != nil {
			return nil, errors.WithMessage(err, "metadata: reading chunk tag bytes")
		}

		size, err := r.ReadVarint()
		if err != nil {
			return nil, errors.WithMessage(err, "metadata: reading chunk size")
		}
		if uint64(size) > uint64(limits.MaxMetadataChunkBytes) {
			return nil, errors.Wrapf(ErrChunkTooLarge, "%d bytes (limit %d)", size, limits.MaxMetadataChunkBytes)
		}

		compressed := make([]byte, size)
		if err := r.ReadFull(compressed); err != nil {
			return nil, errors.WithMessage(err, "metadata: reading chunk payload")
		}

		payload, err := inflate(compressed, limits.MaxMetadataChunkBytes)
		if err != nil {
			return nil, errors.WithMessagef(err, "metadata: inflating chunk %q", rawTag)
		}

		chunks = append(chunks, Chunk{Tag: classify(rawTag), RawTag: rawTag, Payload: payload})
	}
}

func classify(tag [4]byte) Tag {
	switch string(tag[:]) {
	case "iCCP":
		return TagICCP
	case "eXif":
		return TagEXIF
	case "eXmp":
		return TagEXMP
	default:
		return TagUnknownOptional
	}
}

// inflate decompresses a raw DEFLATE stream, refusing to read past
// maxBytes of decompressed output so a chunk with a tiny declared size but
// a decompression-bomb payload cannot exhaust memory.
func inflate(compressed []byte, maxBytes int) ([]byte, error) {
	zr := flate.NewReader(bytes.NewReader(compressed))
	defer zr.Close()

	limited := io.LimitReader(zr, int64(maxBytes)+1)
	out, err := io.ReadAll(limited)
	if err != nil {
		return nil, err
	}
	if len(out) > maxBytes {
		return nil, ErrChunkTooLarge
	}
	return out, nil
}
