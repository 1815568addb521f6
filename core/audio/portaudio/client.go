// Package portaudio provides an alternate audio backend for hosts where
// miniaudio is unavailable. Capture uses a blocking read loop; playback runs
// a single worker that plays queued buffers one at a time.
package portaudio

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gordonklaus/portaudio"
	"github.com/aispirelabs/acharya-core/core/audio"
)

const sampleRate = audio.TargetSampleRate

type Client struct {
	bufferSize int
	stream     *portaudio.Stream

	in  []float32
	out []int16

	queue     [][]byte
	queueMu   sync.Mutex
	queueCond *sync.Cond

	speaking  atomic.Bool
	onDrained func()
	closed    atomic.Bool
}

func NewClient(bufferSize int) (*Client, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	in := make([]float32, bufferSize)
	out := make([]int16, bufferSize)
	stream, err := portaudio.OpenDefaultStream(1, 1, sampleRate, bufferSize, in, out)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to open portaudio stream: %w", err)
	}

	c := &Client{
		bufferSize: bufferSize,
		stream:     stream,
		in:         in,
		out:        out,
	}
	c.queueCond = sync.NewCond(&c.queueMu)

	go c.playbackWorker()

	return c, nil
}

func (c *Client) StartCapture(ctx context.Context, onSamples func(samples []float32)) error {
	if err := c.stream.Start(); err != nil {
		return fmt.Errorf("failed to start portaudio stream: %w", err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			if c.closed.Load() {
				return
			}

			if err := c.stream.Read(); err != nil {
				continue
			}

			samples := make([]float32, len(c.in))
			copy(samples, c.in)
			onSamples(samples)
		}
	}()

	return nil
}

func (c *Client) StopCapture() error {
	return c.stream.Stop()
}

// Enqueue appends one received PCM16 buffer for sequential playback.
func (c *Client) Enqueue(buf []byte) error {
	if c.closed.Load() {
		return fmt.Errorf("client closed")
	}

	c.queueMu.Lock()
	c.queue = append(c.queue, buf)
	c.speaking.Store(true)
	c.queueMu.Unlock()
	c.queueCond.Signal()
	return nil
}

func (c *Client) ClearBuffer() {
	c.queueMu.Lock()
	c.queue = nil
	c.speaking.Store(false)
	c.queueMu.Unlock()
}

func (c *Client) IsSpeaking() bool { return c.speaking.Load() }

func (c *Client) SetDrainedCallback(callback func()) {
	c.queueMu.Lock()
	c.onDrained = callback
	c.queueMu.Unlock()
}

func (c *Client) Close() {
	if c.closed.Swap(true) {
		return
	}
	c.queueCond.Broadcast()
	c.stream.Close()
	portaudio.Terminate()
}

func (c *Client) CaptureEncodingInfo() audio.EncodingInfo {
	return audio.EncodingInfo{SampleRate: sampleRate, Format: audio.EncodingLinear16}
}

func (c *Client) PlaybackEncodingInfo() audio.EncodingInfo {
	return audio.EncodingInfo{SampleRate: sampleRate, Format: audio.EncodingLinear16}
}

// playbackWorker drains the queue one buffer at a time; the next buffer is
// only dequeued once the previous one has been written to completion.
func (c *Client) playbackWorker() {
	for {
		c.queueMu.Lock()
		for len(c.queue) == 0 && !c.closed.Load() {
			c.queueCond.Wait()
		}
		if c.closed.Load() {
			c.queueMu.Unlock()
			return
		}
		buf := c.queue[0]
		c.queue = c.queue[1:]
		c.queueMu.Unlock()

		c.playBuffer(buf)

		c.queueMu.Lock()
		drained := len(c.queue) == 0
		var onDrained func()
		if drained && c.speaking.Load() {
			c.speaking.Store(false)
			onDrained = c.onDrained
		}
		c.queueMu.Unlock()

		if onDrained != nil {
			onDrained()
		}
	}
}

func (c *Client) playBuffer(buf []byte) {
	for offset := 0; offset+1 < len(buf); offset += c.bufferSize * 2 {
		end := offset + c.bufferSize*2
		if end > len(buf) {
			end = len(buf)
		}

		chunk := buf[offset:end]
		for i := range c.out {
			if i*2+1 < len(chunk) {
				c.out[i] = int16(binary.LittleEndian.Uint16(chunk[i*2:]))
			} else {
				c.out[i] = 0
			}
		}

		if err := c.stream.Write(); err != nil {
			return
		}
	}
}
