package audio

import (
	"bytes"
	"encoding/binary"
	"testing"
	"time"
)

func TestEncodeWAVRoundTrip(t *testing.T) {
	pcm := []byte{0x01, 0x00, 0xFF, 0x7F, 0x00, 0x80, 0x34, 0x12}

	container, err := EncodeWAV(pcm, GetDefaultEncodingInfo())
	if err != nil {
		t.Fatalf("expected encode to succeed, got %v", err)
	}
	if len(container) != HeaderSize+len(pcm) {
		t.Fatalf("expected container size %d, got %d", HeaderSize+len(pcm), len(container))
	}

	decoded, info, err := DecodeWAV(container)
	if err != nil {
		t.Fatalf("expected decode to succeed, got %v", err)
	}
	if !bytes.Equal(decoded, pcm) {
		t.Fatalf("expected payload to round trip unchanged, got %v", decoded)
	}
	if info.SampleRate != DefaultSampleRate {
		t.Fatalf("expected sample rate %d, got %d", DefaultSampleRate, info.SampleRate)
	}
	if info.Channels != 1 {
		t.Fatalf("expected mono payload, got %d channels", info.Channels)
	}
}

func TestEncodeWAVHeaderFields(t *testing.T) {
	pcm := make([]byte, 4800)
	container, err := EncodeWAV(pcm, GetDefaultEncodingInfo())
	if err != nil {
		t.Fatalf("expected encode to succeed, got %v", err)
	}

	if got := string(container[0:4]); got != "RIFF" {
		t.Fatalf("expected RIFF chunk id, got %q", got)
	}
	if got := string(container[8:12]); got != "WAVE" {
		t.Fatalf("expected WAVE format, got %q", got)
	}
	if got := binary.LittleEndian.Uint32(container[4:8]); got != uint32(36+len(pcm)) {
		t.Fatalf("expected chunk size %d, got %d", 36+len(pcm), got)
	}
	if got := binary.LittleEndian.Uint16(container[20:22]); got != 1 {
		t.Fatalf("expected PCM format code 1, got %d", got)
	}
	if got := binary.LittleEndian.Uint32(container[24:28]); got != DefaultSampleRate {
		t.Fatalf("expected sample rate %d, got %d", DefaultSampleRate, got)
	}
	if got := binary.LittleEndian.Uint32(container[28:32]); got != DefaultSampleRate*2 {
		t.Fatalf("expected byte rate %d, got %d", DefaultSampleRate*2, got)
	}
	if got := binary.LittleEndian.Uint16(container[32:34]); got != 2 {
		t.Fatalf("expected block align 2, got %d", got)
	}
	if got := binary.LittleEndian.Uint16(container[34:36]); got != 16 {
		t.Fatalf("expected 16 bits per sample, got %d", got)
	}
	if got := binary.LittleEndian.Uint32(container[40:44]); got != uint32(len(pcm)) {
		t.Fatalf("expected payload length %d, got %d", len(pcm), got)
	}
}

func TestEncodeWAVZeroLengthPayload(t *testing.T) {
	container, err := EncodeWAV(nil, GetDefaultEncodingInfo())
	if err != nil {
		t.Fatalf("expected zero-length payload to encode, got %v", err)
	}
	if len(container) != HeaderSize {
		t.Fatalf("expected bare header of %d bytes, got %d", HeaderSize, len(container))
	}

	decoded, _, err := DecodeWAV(container)
	if err != nil {
		t.Fatalf("expected zero-length container to decode, got %v", err)
	}
	if len(decoded) != 0 {
		t.Fatalf("expected empty payload, got %d bytes", len(decoded))
	}
}

func TestEncodeWAVIsDeterministic(t *testing.T) {
	pcm := []byte{0xDE, 0xAD, 0xBE, 0xEF}

	first, err := EncodeWAV(pcm, GetDefaultEncodingInfo())
	if err != nil {
		t.Fatalf("expected encode to succeed, got %v", err)
	}
	second, err := EncodeWAV(pcm, GetDefaultEncodingInfo())
	if err != nil {
		t.Fatalf("expected encode to succeed, got %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Fatalf("expected identical inputs to produce byte-identical containers")
	}
}

func TestEncodeWAVRejectsUnknownFormat(t *testing.T) {
	if _, err := EncodeWAV([]byte{0x01}, EncodingInfo{SampleRate: 24000, Channels: 1, Format: "opus"}); err == nil {
		t.Fatalf("expected unsupported format to fail encoding")
	}
}

func TestDecodeWAVRejectsTruncatedContainer(t *testing.T) {
	if _, _, err := DecodeWAV(make([]byte, HeaderSize-1)); err == nil {
		t.Fatalf("expected truncated container to fail decoding")
	}
}

func TestMeanAbsAmplitudeChunking(t *testing.T) {
	samples := []int16{16384, -16384, 16384, -16384, 32767, 0}

	amplitudes := MeanAbsAmplitude(samples, 2)
	if len(amplitudes) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(amplitudes))
	}
	if amplitudes[0] != 0.5 {
		t.Fatalf("expected first chunk amplitude 0.5, got %f", amplitudes[0])
	}
	if amplitudes[2] >= amplitudes[0] {
		t.Fatalf("expected trailing half-silent chunk to be quieter than full-scale chunks")
	}
}

func TestMeanAbsAmplitudeShortFinalChunk(t *testing.T) {
	samples := []int16{0, 0, 32767}

	amplitudes := MeanAbsAmplitude(samples, 2)
	if len(amplitudes) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(amplitudes))
	}
	if amplitudes[1] <= 0.99 {
		t.Fatalf("expected short final chunk to average only its own samples, got %f", amplitudes[1])
	}
}

func TestDuration(t *testing.T) {
	info := GetDefaultEncodingInfo()

	if got := Duration(info.ByteRate(), info); got != time.Second {
		t.Fatalf("expected one second of audio, got %v", got)
	}
	if got := Duration(0, info); got != 0 {
		t.Fatalf("expected zero duration for empty payload, got %v", got)
	}
}
