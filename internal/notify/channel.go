// Package notify keeps the per-session push connection to the backend and turns
// delivery-completed events into a rating prompt.
package notify

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/metrics"
	"github.com/jafarshop/storefront/pkg/errors"
)

var (
	ErrAlreadyStarted = stderrors.New("notification channel already started")
	ErrNoPrompt       = stderrors.New("no rating prompt pending")
	ErrStopped        = stderrors.New("notification channel stopped while starting")
)

// Prompt asks the user to rate the delivery that just completed
type Prompt struct {
	Message       string    `json:"message"`
	DeliveryBoyID string    `json:"deliveryBoyId"`
	ReceivedAt    time.Time `json:"receivedAt"`
}

// Rater records a delivery rating
type Rater interface {
	Rate(ctx context.Context, rating domain.Rating) error
}

type Channel struct {
	url    string
	dialer Dialer
	rater  Rater
	logger *zap.Logger

	mu         sync.Mutex
	conn       Conn
	starting   bool
	abortStart bool // set by a Stop that arrives while Start is dialing
	userID     string
	token      string
	done       chan struct{}
	prompt     *Prompt
}

func NewChannel(url string, dialer Dialer, rater Rater, logger *zap.Logger) *Channel {
	if dialer == nil {
		dialer = WebsocketDialer{}
	}
	return &Channel{
		url:    url,
		dialer: dialer,
		rater:  rater,
		logger: logger,
	}
}

// WithToken sets the bearer token sent on the handshake
func (c *Channel) WithToken(token string) *Channel {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
	return c
}

// Start dials the channel, registers userID and starts the reader. A second Start
// while running returns ErrAlreadyStarted.
func (c *Channel) Start(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return &errors.ErrValidation{Field: "userId", Message: "user id is required"}
	}

	c.mu.Lock()
	if c.conn != nil || c.starting {
		c.mu.Unlock()
		return ErrAlreadyStarted
	}
	c.starting = true
	header := http.Header{}
	if c.token != "" {
		header.Set("Authorization", "Bearer "+c.token)
	}
	c.mu.Unlock()

	conn, err := c.dial(ctx, header, userID)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.starting = false
	if err != nil {
		return err
	}
	if c.abortStart {
		c.abortStart = false
		conn.Close()
		return ErrStopped
	}

	c.conn = conn
	c.userID = userID
	c.done = make(chan struct{})
	go c.read(conn, c.done)

	c.logger.Info("Notification channel started", zap.String("user_id", userID))
	return nil
}

// dial opens the connection and registers userID on it. Runs without c.mu held.
func (c *Channel) dial(ctx context.Context, header http.Header, userID string) (Conn, error) {
	conn, err := c.dialer.Dial(ctx, c.url, header)
	if err != nil {
		c.logger.Warn("Failed to dial notification channel", zap.String("url", c.url), zap.Error(err))
		return nil, fmt.Errorf("failed to dial notification channel: %w", err)
	}

	data, _ := json.Marshal(userID)
	if err := conn.WriteJSON(Envelope{Event: EventRegister, Data: data}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to register on notification channel: %w", err)
	}
	metrics.RecordPushEvent(EventRegister)
	return conn, nil
}

func (c *Channel) read(conn Conn, done chan struct{}) {
	defer close(done)

	for {
		var env Envelope
		if err := conn.ReadJSON(&env); err != nil {
			c.mu.Lock()
			live := c.conn == conn
			if live {
				c.conn = nil
			}
			c.mu.Unlock()
			if live {
				c.logger.Warn("Notification channel closed", zap.Error(err))
				conn.Close()
			}
			return
		}
		metrics.RecordPushEvent(env.Event)
		c.dispatch(conn, env)
	}
}

func (c *Channel) dispatch(conn Conn, env Envelope) {
	switch env.Event {
	case EventOrderDelivered:
		var payload struct {
			Message       string `json:"message"`
			DeliveryBoyID string `json:"deliveryBoyId"`
		}
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			c.logger.Warn("Malformed orderDelivered event", zap.Error(err))
			return
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		// a listener removed by Stop must not fire
		if c.conn != conn {
			return
		}
		c.prompt = &Prompt{
			Message:       payload.Message,
			DeliveryBoyID: payload.DeliveryBoyID,
			ReceivedAt:    time.Now(),
		}
	default:
		c.logger.Debug("Ignoring push event", zap.String("event", env.Event))
	}
}

// Stop closes the connection and waits for the reader to exit. Stopping a channel
// that is not running is a no-op.
func (c *Channel) Stop() error {
	c.mu.Lock()
	conn, done, userID := c.conn, c.done, c.userID
	c.conn = nil
	if c.starting {
		c.abortStart = true
	}
	c.mu.Unlock()

	if conn == nil {
		return nil
	}
	err := conn.Close()
	<-done
	c.logger.Info("Notification channel stopped", zap.String("user_id", userID))
	return err
}

// Running reports whether the channel holds an open connection
func (c *Channel) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Prompt returns the pending rating prompt, or nil
func (c *Channel) Prompt() *Prompt {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.prompt == nil {
		return nil
	}
	p := *c.prompt
	return &p
}

func (c *Channel) Dismiss() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompt = nil
}

// Rate submits a rating for the prompted delivery and clears the prompt
func (c *Channel) Rate(ctx context.Context, stars int, comment string) error {
	c.mu.Lock()
	prompt := c.prompt
	c.mu.Unlock()
	if prompt == nil {
		return ErrNoPrompt
	}

	err := c.rater.Rate(ctx, domain.Rating{DeliveryBoyID: prompt.DeliveryBoyID, Stars: stars, Comment: comment})
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.prompt != nil && c.prompt.DeliveryBoyID == prompt.DeliveryBoyID {
		c.prompt = nil
	}
	c.mu.Unlock()
	return nil
}
