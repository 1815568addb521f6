package miniaudio

import (
	"encoding/binary"
	"math"
	"testing"
)

func encodeFloat32(samples []float32) []byte {
	raw := make([]byte, len(samples)*4)
	for i, sample := range samples {
		binary.LittleEndian.PutUint32(raw[i*4:], math.Float32bits(sample))
	}
	return raw
}

func TestHandleFramesDeliversDecodedSamples(t *testing.T) {
	client := &captureClient{}

	var received []float32
	callback := func(samples []float32) { received = append(received, samples...) }
	client.onSamples.Store(&callback)

	client.handleFrames(encodeFloat32([]float32{0.25, -0.5, 1.0}))

	if len(received) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(received))
	}
	if received[0] != 0.25 || received[1] != -0.5 || received[2] != 1.0 {
		t.Fatalf("unexpected samples: %v", received)
	}
}

func TestHandleFramesWithoutCallbackIsSafe(t *testing.T) {
	client := &captureClient{}

	// The device thread may deliver frames around Start/Stop; a missing
	// callback must not panic.
	client.handleFrames(encodeFloat32([]float32{0.1, 0.2}))

	var received []float32
	callback := func(samples []float32) { received = append(received, samples...) }
	client.onSamples.Store(&callback)
	client.handleFrames(encodeFloat32([]float32{0.3}))

	client.onSamples.Store(nil)
	client.handleFrames(encodeFloat32([]float32{0.4}))

	if len(received) != 1 || received[0] != 0.3 {
		t.Fatalf("expected only the frame delivered while registered, got %v", received)
	}
}
