package snapshot

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/memdebug/internal/conv"
	"github.com/hupe1980/memdebug/internal/hash"
)

// Compression identifies the body compression of a snapshot file.
type Compression uint8

const (
	// CompressionNone stores the body as is.
	CompressionNone Compression = 0
	// CompressionLZ4 uses LZ4 block compression.
	CompressionLZ4 Compression = 1
	// CompressionZSTD uses zstd.
	CompressionZSTD Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

// ParseCompression maps a name printed by Compression.String back to its value.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "none", "":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZSTD, nil
	default:
		return 0, fmt.Errorf("unknown compression %q", name)
	}
}

// ZSTD encoder/decoder pools for efficiency
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func putZstdEncoder(enc *zstd.Encoder) {
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

// blockHeaderSize covers uncompressed length, compressed length and the
// CRC32C of the uncompressed body.
const blockHeaderSize = 12

var errCorruptBlock = errors.New("snapshot: corrupt body")

// compressBlock returns data framed with a block header. Data that does not
// shrink is stored uncompressed.
func compressBlock(data []byte, c Compression) ([]byte, error) {
	var (
		compressed []byte
		err        error
	)
	switch c {
	case CompressionNone:
	case CompressionLZ4:
		compressed, err = compressLZ4(data)
	case CompressionZSTD:
		compressed = compressZSTD(data)
	default:
		return nil, fmt.Errorf("snapshot: unsupported %s", c)
	}
	if err != nil {
		return nil, err
	}

	size, err := conv.IntToUint32(len(data))
	if err != nil {
		return nil, fmt.Errorf("snapshot: body: %w", err)
	}

	payload := compressed
	var csize uint32
	if len(compressed) == 0 || len(compressed) >= len(data) {
		payload = data
	} else if csize, err = conv.IntToUint32(len(compressed)); err != nil {
		return nil, fmt.Errorf("snapshot: body: %w", err)
	}

	out := make([]byte, blockHeaderSize, blockHeaderSize+len(payload))
	binary.LittleEndian.PutUint32(out[0:], size)
	binary.LittleEndian.PutUint32(out[4:], csize)
	binary.LittleEndian.PutUint32(out[8:], hash.CRC32C(data))
	return append(out, payload...), nil
}

func compressLZ4(data []byte) ([]byte, error) {
	compressed := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lz4.CompressBlock(data, compressed, nil)
	if err != nil {
		return nil, err
	}
	return compressed[:n], nil
}

func compressZSTD(data []byte) []byte {
	enc := getZstdEncoder()
	defer putZstdEncoder(enc)
	return enc.EncodeAll(data, nil)
}

// decompressBlock reverses compressBlock and verifies the body checksum.
func decompressBlock(block []byte, c Compression) ([]byte, error) {
	if len(block) < blockHeaderSize {
		return nil, errCorruptBlock
	}
	size, err := conv.Uint32ToInt(binary.LittleEndian.Uint32(block[0:]))
	if err != nil {
		return nil, errCorruptBlock
	}
	csize, err := conv.Uint32ToInt(binary.LittleEndian.Uint32(block[4:]))
	if err != nil {
		return nil, errCorruptBlock
	}
	sum := binary.LittleEndian.Uint32(block[8:])
	payload := block[blockHeaderSize:]

	body, err := inflate(payload, size, csize, c)
	if err != nil {
		return nil, err
	}
	if err := hash.Verify(body, sum); err != nil {
		return nil, fmt.Errorf("%w: %w", errCorruptBlock, err)
	}
	return body, nil
}

func inflate(payload []byte, size, csize int, c Compression) ([]byte, error) {
	if csize == 0 {
		if len(payload) != size {
			return nil, errCorruptBlock
		}
		return payload, nil
	}
	if len(payload) != csize {
		return nil, errCorruptBlock
	}

	out := make([]byte, size)
	switch c {
	case CompressionLZ4:
		n, err := lz4.UncompressBlock(payload, out)
		if err != nil {
			return nil, err
		}
		if n != size {
			return nil, errors.New("snapshot: decompressed size mismatch")
		}
		return out, nil

	case CompressionZSTD:
		dec := getZstdDecoder()
		defer putZstdDecoder(dec)

		decoded, err := dec.DecodeAll(payload, out[:0])
		if err != nil {
			return nil, err
		}
		if len(decoded) != size {
			return nil, errors.New("snapshot: decompressed size mismatch")
		}
		return decoded, nil

	default:
		return nil, fmt.Errorf("snapshot: unsupported %s", c)
	}
}
