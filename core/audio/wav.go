package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"
)

// HeaderSize is the size of the canonical RIFF/WAVE header produced by
// [EncodeWAV]. The payload always starts at this offset.
const HeaderSize = 44

type wavHeader struct {
	ChunkID       [4]byte // "RIFF"
	ChunkSize     uint32  // 36 + Subchunk2Size
	Format        [4]byte // "WAVE"
	Subchunk1ID   [4]byte // "fmt "
	Subchunk1Size uint32  // 16 for PCM
	AudioFormat   uint16  // 1 for uncompressed PCM
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32 // SampleRate * NumChannels * BitsPerSample / 8
	BlockAlign    uint16 // NumChannels * BitsPerSample / 8
	BitsPerSample uint16
	Subchunk2ID   [4]byte // "data"
	Subchunk2Size uint32  // payload length in bytes
}

// EncodeWAV wraps raw PCM bytes into a self-describing WAV container.
//
// The payload is carried through untouched, no resampling or re-encoding.
// A zero-length payload still yields a valid 44-byte container; callers
// decide whether an empty container is worth emitting.
func EncodeWAV(pcm []byte, info EncodingInfo) ([]byte, error) {
	if info.IsZero() {
		info = GetDefaultEncodingInfo()
	}

	bitDepth := info.Format.BitDepth()
	if bitDepth <= 0 {
		return nil, fmt.Errorf("unsupported encoding format %q", info.Format.Name())
	}
	if info.SampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", info.SampleRate)
	}
	if info.Channels <= 0 {
		return nil, fmt.Errorf("channel count must be positive, got %d", info.Channels)
	}

	header := wavHeader{
		ChunkID:       [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     uint32(36 + len(pcm)),
		Format:        [4]byte{'W', 'A', 'V', 'E'},
		Subchunk1ID:   [4]byte{'f', 'm', 't', ' '},
		Subchunk1Size: 16,
		AudioFormat:   1,
		NumChannels:   uint16(info.Channels),
		SampleRate:    uint32(info.SampleRate),
		ByteRate:      uint32(info.ByteRate()),
		BlockAlign:    uint16(info.BytesPerFrame()),
		BitsPerSample: uint16(bitDepth),
		Subchunk2ID:   [4]byte{'d', 'a', 't', 'a'},
		Subchunk2Size: uint32(len(pcm)),
	}

	buf := bytes.NewBuffer(make([]byte, 0, HeaderSize+len(pcm)))
	if err := binary.Write(buf, binary.LittleEndian, header); err != nil {
		return nil, fmt.Errorf("failed to write container header: %w", err)
	}
	buf.Write(pcm)

	return buf.Bytes(), nil
}

// DecodeWAV splits a WAV container back into its raw PCM payload and the
// encoding parameters declared by the header.
func DecodeWAV(container []byte) ([]byte, EncodingInfo, error) {
	if len(container) < HeaderSize {
		return nil, EncodingInfo{}, fmt.Errorf("container too short: need at least %d bytes, got %d", HeaderSize, len(container))
	}

	var header wavHeader
	if err := binary.Read(bytes.NewReader(container), binary.LittleEndian, &header); err != nil {
		return nil, EncodingInfo{}, fmt.Errorf("failed to read container header: %w", err)
	}

	if string(header.ChunkID[:]) != "RIFF" {
		return nil, EncodingInfo{}, fmt.Errorf("invalid container: missing RIFF header")
	}
	if string(header.Format[:]) != "WAVE" {
		return nil, EncodingInfo{}, fmt.Errorf("invalid container: missing WAVE format")
	}
	if string(header.Subchunk1ID[:]) != "fmt " {
		return nil, EncodingInfo{}, fmt.Errorf("invalid container: missing fmt chunk")
	}
	if string(header.Subchunk2ID[:]) != "data" {
		return nil, EncodingInfo{}, fmt.Errorf("invalid container: missing data chunk")
	}
	if header.AudioFormat != 1 {
		return nil, EncodingInfo{}, fmt.Errorf("unsupported audio format code %d", header.AudioFormat)
	}

	var format encodingFormat
	switch header.BitsPerSample {
	case 16:
		format = EncodingLinear16
	default:
		return nil, EncodingInfo{}, fmt.Errorf("unsupported bit depth %d", header.BitsPerSample)
	}

	payloadLen := int(header.Subchunk2Size)
	if HeaderSize+payloadLen > len(container) {
		return nil, EncodingInfo{}, fmt.Errorf("declared payload length %d exceeds container size", payloadLen)
	}

	info := EncodingInfo{
		SampleRate: int(header.SampleRate),
		Channels:   int(header.NumChannels),
		Format:     format,
	}

	return container[HeaderSize : HeaderSize+payloadLen], info, nil
}

// Samples reinterprets raw little-endian 16-bit PCM bytes as samples.
// A trailing odd byte is ignored.
func Samples(pcm []byte) []int16 {
	samples := make([]int16, len(pcm)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}
	return samples
}

// MeanAbsAmplitude partitions samples into fixed-size chunks and returns the
// mean absolute amplitude per chunk, normalized to [0, 1]. The final chunk
// may be shorter than chunkSize.
func MeanAbsAmplitude(samples []int16, chunkSize int) []float64 {
	if chunkSize <= 0 || len(samples) == 0 {
		return nil
	}

	amplitudes := make([]float64, 0, (len(samples)+chunkSize-1)/chunkSize)
	for start := 0; start < len(samples); start += chunkSize {
		end := min(start+chunkSize, len(samples))
		sum := 0.0
		for _, sample := range samples[start:end] {
			if sample < 0 {
				sum -= float64(sample)
			} else {
				sum += float64(sample)
			}
		}
		amplitudes = append(amplitudes, sum/float64(end-start)/32768.0)
	}
	return amplitudes
}

// Duration returns the play time of a raw PCM payload.
func Duration(pcmLen int, info EncodingInfo) time.Duration {
	byteRate := info.ByteRate()
	if byteRate <= 0 {
		return 0
	}
	return time.Duration(float64(pcmLen) / float64(byteRate) * float64(time.Second))
}
