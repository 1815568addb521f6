// Package gemini implements a realtime voice session client over the
// BidiGenerateContent websocket protocol.
package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/aispirelabs/acharya-core/core/audio"
	"github.com/aispirelabs/acharya-core/core/realtime"
)

const (
	defaultHost  = "generativelanguage.googleapis.com"
	bidiPath     = "/ws/google.ai.generativelanguage.v1beta.GenerativeService.BidiGenerateContent"
	defaultModel = "models/gemini-2.0-flash-live-001"
)

type Client struct {
	apiKey string
	host   string
	model  string

	conn      *websocket.Conn
	connMu    sync.Mutex
	connected atomic.Bool
	finished  atomic.Bool

	options realtime.SessionOptions

	// Transcription fragments accumulate per role until a turn boundary.
	turnMu        sync.Mutex
	userText      string
	assistantText string
}

type Option func(*Client)

func WithAPIKey(apiKey string) Option {
	return func(c *Client) { c.apiKey = apiKey }
}

func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

func WithHost(host string) Option {
	return func(c *Client) { c.host = host }
}

func NewClient(opts ...Option) *Client {
	client := &Client{host: defaultHost, model: defaultModel}
	for _, opt := range opts {
		opt(client)
	}
	if client.apiKey == "" {
		client.apiKey = os.Getenv("GEMINI_API_KEY")
	}
	return client
}

// Connect dials the endpoint, sends the setup frame and starts the read loop.
// A second Connect while a session is live fails; once the session has
// closed, the same client can connect again.
func (c *Client) Connect(ctx context.Context, opts ...realtime.SessionOption) error {
	if c.connected.Swap(true) {
		return fmt.Errorf("session already connected")
	}

	options := &realtime.SessionOptions{EncodingInfo: audio.GetDefaultEncodingInfo()}
	for _, opt := range opts {
		opt(options)
	}
	c.options = *options
	c.finished.Store(false)

	if c.apiKey == "" {
		c.connected.Store(false)
		return fmt.Errorf("gemini api key not found")
	}

	sessionUrl := url.URL{Scheme: "wss", Host: c.host, Path: bidiPath}
	queryParams := sessionUrl.Query()
	queryParams.Set("key", c.apiKey)
	sessionUrl.RawQuery = queryParams.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, sessionUrl.String(), nil)
	if err != nil {
		c.connected.Store(false)
		return fmt.Errorf("failed to open socket connection to gemini: %w", err)
	}

	setup := setupMessage{Setup: setupPayload{Model: c.model}}
	if len(options.ResponseModalities) > 0 {
		setup.Setup.GenerationConfig = &generationConfig{
			ResponseModalities: options.ResponseModalities,
		}
	}
	if options.SystemInstruction != "" {
		setup.Setup.SystemInstruction = &content{
			Parts: []part{{Text: options.SystemInstruction}},
		}
	}

	if err := conn.WriteJSON(setup); err != nil {
		conn.Close()
		c.connected.Store(false)
		return fmt.Errorf("failed to send setup message: %w", err)
	}

	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()

	go c.readAndProcessMessages(ctx, conn)

	return nil
}

// SendAudio streams one chunk of caller audio. The chunk must already be in
// the session's input encoding; it is base64 wrapped here.
func (c *Client) SendAudio(pcm []byte) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn == nil {
		return fmt.Errorf("session not connected")
	}

	msg := realtimeInputMessage{RealtimeInput: realtimeInput{
		MediaChunks: []inlineData{{
			MIMEType: c.options.EncodingInfo.MIMEType(),
			Data:     base64.StdEncoding.EncodeToString(pcm),
		}},
	}}

	if err := c.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("failed to write to gemini session: %w", err)
	}
	return nil
}

// SendText submits a complete text turn, e.g. a typed message alongside the
// audio stream.
func (c *Client) SendText(text string) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn == nil {
		return fmt.Errorf("session not connected")
	}

	msg := clientContentMessage{ClientContent: clientContent{
		Turns: []content{{
			Role:  realtime.RoleUser,
			Parts: []part{{Text: text}},
		}},
		TurnComplete: true,
	}}

	if err := c.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("failed to write to gemini session: %w", err)
	}
	return nil
}

// Close ends the session. Safe to call multiple times and from any goroutine,
// including from inside callbacks.
func (c *Client) Close() error {
	c.connMu.Lock()
	conn := c.conn
	c.conn = nil
	c.connMu.Unlock()

	if conn == nil {
		return nil
	}

	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		closeDeadline())
	if err := conn.Close(); err != nil {
		return fmt.Errorf("failed to close gemini session: %w", err)
	}
	return nil
}

func (c *Client) readAndProcessMessages(ctx context.Context, conn *websocket.Conn) {
	for {
		select {
		case <-ctx.Done():
			c.finish(ctx.Err())
			return
		default:
		}

		_, msg, err := conn.ReadMessage()
		if err != nil {
			if isExpectedClose(err) {
				c.finish(nil)
			} else {
				logger.Error("Failed to read gemini websocket message", "error", err)
				c.finish(err)
			}
			conn.Close()
			return
		}

		c.processMessage(msg)
	}
}

func (c *Client) processMessage(msg []byte) {
	var parsedMsg serverMessage
	if err := json.Unmarshal(msg, &parsedMsg); err != nil {
		logger.Error("Failed to unmarshal gemini message", "error", err)
		return
	}

	if parsedMsg.SetupComplete != nil {
		if c.options.SetupCompleteCallback != nil {
			c.options.SetupCompleteCallback()
		}
		return
	}

	if parsedMsg.GoAway != nil {
		if c.options.GoAwayCallback != nil {
			c.options.GoAwayCallback()
		}
		return
	}

	if parsedMsg.ServerContent != nil {
		c.processServerContent(parsedMsg.ServerContent)
	}
}

func (c *Client) processServerContent(serverContent *serverContent) {
	if serverContent.Interrupted {
		c.flushTurn(realtime.RoleAssistant)
		if c.options.InterruptedCallback != nil {
			c.options.InterruptedCallback()
		}
		return
	}

	if serverContent.InputTranscription != nil {
		c.appendTurn(realtime.RoleUser, serverContent.InputTranscription.Text)
	}

	if serverContent.OutputTranscription != nil {
		// The caller's turn is over once the model starts answering.
		c.flushTurn(realtime.RoleUser)
		c.appendTurn(realtime.RoleAssistant, serverContent.OutputTranscription.Text)
	}

	if serverContent.ModelTurn != nil {
		c.flushTurn(realtime.RoleUser)
		for _, modelPart := range serverContent.ModelTurn.Parts {
			if modelPart.Text != "" {
				c.appendTurn(realtime.RoleAssistant, modelPart.Text)
			}
			if modelPart.InlineData != nil && c.options.AudioCallback != nil {
				pcm, err := base64.StdEncoding.DecodeString(modelPart.InlineData.Data)
				if err != nil {
					logger.Error("Failed to decode gemini audio chunk", "error", err)
					continue
				}
				c.options.AudioCallback(pcm)
			}
		}
	}

	if serverContent.TurnComplete {
		c.flushTurn(realtime.RoleUser)
		c.flushTurn(realtime.RoleAssistant)
		if c.options.TurnCompleteCallback != nil {
			c.options.TurnCompleteCallback()
		}
	}
}

func (c *Client) appendTurn(role string, text string) {
	if text == "" {
		return
	}

	c.turnMu.Lock()
	var accumulated string
	if role == realtime.RoleUser {
		c.userText += text
		accumulated = c.userText
	} else {
		c.assistantText += text
		accumulated = c.assistantText
	}
	c.turnMu.Unlock()

	if c.options.TurnCallback != nil {
		c.options.TurnCallback(role, accumulated, false)
	}
}

func (c *Client) flushTurn(role string) {
	c.turnMu.Lock()
	var accumulated string
	if role == realtime.RoleUser {
		accumulated = c.userText
		c.userText = ""
	} else {
		accumulated = c.assistantText
		c.assistantText = ""
	}
	c.turnMu.Unlock()

	accumulated = strings.TrimSpace(accumulated)
	if accumulated == "" {
		return
	}

	if c.options.TurnCallback != nil {
		c.options.TurnCallback(role, accumulated, true)
	}
}

// finish reports the session's end exactly once per connection, no matter
// how many paths race to it.
func (c *Client) finish(err error) {
	if c.finished.Swap(true) {
		return
	}

	c.connMu.Lock()
	c.conn = nil
	c.connMu.Unlock()
	c.connected.Store(false)

	if c.options.CloseCallback != nil {
		c.options.CloseCallback(err)
	}
}

func closeDeadline() time.Time {
	return time.Now().Add(time.Second)
}

func isExpectedClose(err error) bool {
	return websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
	) || strings.Contains(err.Error(), "use of closed network connection")
}
