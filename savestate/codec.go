// Package savestate encodes save states into a versioned chunked container
// and manages the slot files they are kept in.
package savestate

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/pierrec/lz4/v4"
)

// Magic opens every container.
const Magic = "RGSST\x00"

// Version is the container version written by Encode.
const Version uint16 = 1

// Chunk identifiers.
const (
	ChunkTimestamp  byte = 1
	ChunkScreenshot byte = 2
	ChunkSaveData   byte = 3
)

var (
	ErrBadMagic           = errors.New("not a save state")
	ErrUnsupportedVersion = errors.New("unsupported save state version")
	ErrTruncated          = errors.New("save state truncated")
	ErrSizeMismatch       = errors.New("save data size mismatch")
)

// maxSaveData bounds the declared uncompressed size of save data.
const maxSaveData = 256 << 20

// Timestamp records when a state was made.
type Timestamp struct {
	Epoch         int64
	SecondsPlayed uint64
}

// Screenshot is a PNG thumbnail of the frame at save time.
type Screenshot struct {
	AspectRatio float32
	Rotation    uint8
	PNG         []byte
}

// Container is a decoded save state. SaveData is the raw core state.
type Container struct {
	Timestamp  Timestamp
	Screenshot Screenshot
	SaveData   []byte
}

// Encode serializes c. The screenshot chunk is omitted when there is no
// image.
func Encode(c *Container) ([]byte, error) {
	out := make([]byte, 0, len(Magic)+2+len(c.Screenshot.PNG)+len(c.SaveData)/2+64)
	out = append(out, Magic...)
	out = binary.LittleEndian.AppendUint16(out, Version)

	var ts [16]byte
	binary.LittleEndian.PutUint64(ts[0:], uint64(c.Timestamp.Epoch))
	binary.LittleEndian.PutUint64(ts[8:], c.Timestamp.SecondsPlayed)
	out = appendChunk(out, ChunkTimestamp, ts[:])

	if len(c.Screenshot.PNG) > 0 {
		shot := make([]byte, 5, 5+len(c.Screenshot.PNG))
		binary.LittleEndian.PutUint32(shot, math.Float32bits(c.Screenshot.AspectRatio))
		shot[4] = c.Screenshot.Rotation
		shot = append(shot, c.Screenshot.PNG...)
		out = appendChunk(out, ChunkScreenshot, shot)
	}

	data, err := compressSaveData(c.SaveData)
	if err != nil {
		return nil, err
	}
	return appendChunk(out, ChunkSaveData, data), nil
}

func appendChunk(out []byte, id byte, payload []byte) []byte {
	out = append(out, id)
	out = binary.AppendUvarint(out, uint64(len(payload)))
	return append(out, payload...)
}

func compressSaveData(src []byte) ([]byte, error) {
	out := binary.AppendUvarint(nil, uint64(len(src)))
	if len(src) == 0 {
		return out, nil
	}
	head := len(out)
	out = append(out, make([]byte, lz4.CompressBlockBound(len(src)))...)
	n, err := lz4.CompressBlock(src, out[head:], nil)
	if err != nil {
		return nil, fmt.Errorf("compress save data: %w", err)
	}
	return out[:head+n], nil
}

func decompressSaveData(payload []byte) ([]byte, error) {
	size, n := binary.Uvarint(payload)
	if n <= 0 {
		return nil, ErrTruncated
	}
	if size > maxSaveData {
		return nil, fmt.Errorf("%w: %d bytes declared", ErrSizeMismatch, size)
	}
	out := make([]byte, size)
	if size == 0 {
		return out, nil
	}
	got, err := lz4.UncompressBlock(payload[n:], out)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSizeMismatch, err)
	}
	if uint64(got) != size {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrSizeMismatch, got, size)
	}
	return out, nil
}

// Decode parses a container. Unknown chunks are skipped.
func Decode(b []byte) (*Container, error) {
	if len(b) < len(Magic)+2 {
		if len(b) >= len(Magic) && string(b[:len(Magic)]) == Magic {
			return nil, ErrTruncated
		}
		return nil, ErrBadMagic
	}
	if !bytes.Equal(b[:len(Magic)], []byte(Magic)) {
		return nil, ErrBadMagic
	}
	version := binary.LittleEndian.Uint16(b[len(Magic):])
	if version == 0 || version > Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}

	c := &Container{}
	var haveData bool
	r := b[len(Magic)+2:]
	for len(r) > 0 {
		id := r[0]
		size, n := binary.Uvarint(r[1:])
		if n <= 0 || size > uint64(len(r)-1-n) {
			return nil, ErrTruncated
		}
		payload := r[1+n : 1+n+int(size)]
		r = r[1+n+int(size):]

		switch id {
		case ChunkTimestamp:
			if len(payload) < 16 {
				return nil, ErrTruncated
			}
			c.Timestamp.Epoch = int64(binary.LittleEndian.Uint64(payload))
			c.Timestamp.SecondsPlayed = binary.LittleEndian.Uint64(payload[8:])
		case ChunkScreenshot:
			if len(payload) < 5 {
				return nil, ErrTruncated
			}
			c.Screenshot.AspectRatio = math.Float32frombits(binary.LittleEndian.Uint32(payload))
			c.Screenshot.Rotation = payload[4]
			c.Screenshot.PNG = append([]byte(nil), payload[5:]...)
		case ChunkSaveData:
			data, err := decompressSaveData(payload)
			if err != nil {
				return nil, err
			}
			c.SaveData = data
			haveData = true
		}
	}
	if !haveData {
		return nil, ErrTruncated
	}
	return c, nil
}
