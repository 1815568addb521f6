package miniaudio

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gen2brain/malgo"
)

// playbackClient plays received audio buffers strictly in arrival order. The
// device pulls from the head buffer only; the next buffer is dequeued once
// the head is fully consumed. Buffers never play concurrently.
type playbackClient struct {
	audioContext *malgo.AllocatedContext
	device       *malgo.Device
	config       malgo.DeviceConfig

	queue   [][]byte
	head    []byte
	queueMu sync.Mutex

	speaking  atomic.Bool
	onDrained func()

	mu sync.Mutex
}

func (c *playbackClient) Init(audioContext *malgo.AllocatedContext) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	sampleRate := uint32(playbackSampleRate)
	channels := 1
	format := malgo.FormatS16
	bytesPerFrame := malgo.SampleSizeInBytes(format) * channels

	c.config = malgo.DefaultDeviceConfig(malgo.Playback)
	c.config.SampleRate = sampleRate
	c.config.Playback.Format = format
	c.config.Playback.Channels = uint32(channels)
	c.config.Alsa.NoMMap = 1
	c.config.PeriodSizeInFrames = sampleRate / 10 // ~100ms of audio
	c.config.Periods = 4

	c.audioContext = audioContext

	var err error
	if c.device, err = malgo.InitDevice(
		c.audioContext.Context,
		c.config,
		malgo.DeviceCallbacks{Data: c.processAudio(bytesPerFrame)},
	); err != nil {
		return err
	}

	return nil
}

func (c *playbackClient) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.device == nil {
		return fmt.Errorf("device not initialized")
	}

	if err := c.device.Start(); err != nil {
		return fmt.Errorf("failed to start playback device: %w", err)
	}

	return nil
}

func (c *playbackClient) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.device == nil {
		return fmt.Errorf("device not initialized")
	}

	if err := c.device.Stop(); err != nil {
		return fmt.Errorf("failed to stop playback device: %w", err)
	}

	c.ClearBuffer()
	return nil
}

// Enqueue appends one received buffer to the playback queue.
func (c *playbackClient) Enqueue(buf []byte) error {
	if c.device == nil {
		return fmt.Errorf("device not initialized")
	} else if !c.device.IsStarted() {
		return fmt.Errorf("device not started")
	}

	c.queueMu.Lock()
	defer c.queueMu.Unlock()
	c.queue = append(c.queue, buf)
	c.speaking.Store(true)
	return nil
}

func (c *playbackClient) ClearBuffer() {
	c.queueMu.Lock()
	defer c.queueMu.Unlock()
	c.queue = nil
	c.head = nil
	c.speaking.Store(false)
}

// IsSpeaking reports whether any buffer is queued or currently playing.
func (c *playbackClient) IsSpeaking() bool {
	return c.speaking.Load()
}

// SetDrainedCallback registers a callback invoked once each time the queue
// empties after having held audio.
func (c *playbackClient) SetDrainedCallback(callback func()) {
	c.queueMu.Lock()
	defer c.queueMu.Unlock()
	c.onDrained = callback
}

func (c *playbackClient) Uninit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.device == nil {
		return fmt.Errorf("device not initialized")
	}

	c.device.Uninit()
	c.device = nil

	return nil
}

func (c *playbackClient) processAudio(bytesPerFrame int) malgo.DataProc {
	return func(pOutput, _ []byte, frameCount uint32) {
		need := int(frameCount) * bytesPerFrame

		c.queueMu.Lock()
		written := 0
		for written < need {
			if len(c.head) == 0 {
				if len(c.queue) == 0 {
					break
				}
				c.head = c.queue[0]
				c.queue = c.queue[1:]
			}

			n := copy(pOutput[written:need], c.head)
			c.head = c.head[n:]
			written += n
		}

		drained := written > 0 && len(c.head) == 0 && len(c.queue) == 0
		var onDrained func()
		if drained && c.speaking.Load() {
			c.speaking.Store(false)
			onDrained = c.onDrained
		}
		c.queueMu.Unlock()

		if onDrained != nil {
			go onDrained()
		}
	}
}
