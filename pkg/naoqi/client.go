package naoqi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/teslashibe/go-nao/internal/httpc"
)

// Default connection parameters of the reference robot setup.
const (
	DefaultHost = "localhost"
	DefaultPort = 53417
)

// Config holds the connection parameters of the robot middleware.
// Every capability shares the same endpoint.
type Config struct {
	Host string
	Port int

	// CallTimeout bounds each blocking call (posture changes, speech,
	// transform reads).
	CallTimeout time.Duration

	// ConnectTimeout bounds handshakes and fire-and-forget submissions.
	ConnectTimeout time.Duration

	// HTTPClient overrides the transport. Optional.
	HTTPClient *http.Client

	Logger *slog.Logger
}

// DefaultConfig returns the reference connection settings.
func DefaultConfig() Config {
	return Config{
		Host:           DefaultHost,
		Port:           DefaultPort,
		CallTimeout:    httpc.DefaultTimeout,
		ConnectTimeout: httpc.DefaultConnectTimeout,
	}
}

// Client opens capabilities against the robot and pools one connection per
// module. A module whose connection drops is evicted so the next Connect
// re-establishes it; other modules are unaffected.
type Client struct {
	cfg     Config
	baseURL string
	http    *http.Client
	logger  *slog.Logger

	mu      sync.Mutex
	proxies map[string]*proxy
}

// NewClient creates a client. No connection is made until a capability is
// requested.
func NewClient(cfg Config) *Client {
	def := DefaultConfig()
	if cfg.Host == "" {
		cfg.Host = def.Host
	}
	if cfg.Port == 0 {
		cfg.Port = def.Port
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = def.CallTimeout
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = def.ConnectTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	hc := cfg.HTTPClient
	if hc == nil {
		// Per-call deadlines come from contexts; the client timeout is a
		// backstop slightly above the longest of them.
		hc = httpc.NewClient(cfg.CallTimeout+cfg.ConnectTimeout, cfg.ConnectTimeout)
	}

	return &Client{
		cfg:     cfg,
		baseURL: fmt.Sprintf("http://%s:%d", cfg.Host, cfg.Port),
		http:    hc,
		logger:  cfg.Logger,
		proxies: make(map[string]*proxy),
	}
}

// Addr returns host:port of the robot endpoint.
func (c *Client) Addr() string {
	return fmt.Sprintf("%s:%d", c.cfg.Host, c.cfg.Port)
}

// ConnectMotion opens the motion capability.
func (c *Client) ConnectMotion(ctx context.Context) (Motion, error) {
	p, err := c.connect(ctx, ModuleMotion)
	if err != nil {
		return nil, err
	}
	return &motionProxy{p: p}, nil
}

// ConnectPosture opens the posture capability.
func (c *Client) ConnectPosture(ctx context.Context) (Posture, error) {
	p, err := c.connect(ctx, ModulePosture)
	if err != nil {
		return nil, err
	}
	return &postureProxy{p: p}, nil
}

// ConnectBehaviorManager opens the behavior manager capability.
func (c *Client) ConnectBehaviorManager(ctx context.Context) (BehaviorManager, error) {
	p, err := c.connect(ctx, ModuleBehaviorManager)
	if err != nil {
		return nil, err
	}
	return &behaviorProxy{p: p}, nil
}

// ConnectSpeech opens the text-to-speech capability.
func (c *Client) ConnectSpeech(ctx context.Context) (Speech, error) {
	p, err := c.connect(ctx, ModuleSpeech)
	if err != nil {
		return nil, err
	}
	return &speechProxy{p: p}, nil
}

// Connected reports whether a pooled connection exists for module.
func (c *Client) Connected(module string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.proxies[module]
	return ok
}

// Close drops every pooled connection.
func (c *Client) Close() error {
	c.mu.Lock()
	c.proxies = make(map[string]*proxy)
	c.mu.Unlock()
	c.http.CloseIdleConnections()
	return nil
}

func (c *Client) connect(ctx context.Context, module string) (*proxy, error) {
	c.mu.Lock()
	if p, ok := c.proxies[module]; ok {
		c.mu.Unlock()
		return p, nil
	}
	c.mu.Unlock()

	p := &proxy{
		module:      module,
		baseURL:     c.baseURL,
		http:        c.http,
		callTimeout: c.cfg.CallTimeout,
		postTimeout: c.cfg.ConnectTimeout,
		logger:      c.logger,
		onDrop:      c.evict,
	}

	// Handshake outside the lock so a slow robot does not stall other
	// capabilities.
	hctx, cancel := context.WithTimeout(ctx, c.cfg.ConnectTimeout)
	defer cancel()

	hs, err := p.open(hctx)
	proxyCalls.WithLabelValues(module, "connect", outcome(err)).Inc()
	if err != nil {
		c.logger.Warn("naoqi connect failed", "module", module, "addr", c.Addr(), "error", err)
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.proxies[module]; ok {
		return existing, nil
	}
	c.proxies[module] = p
	c.logger.Info("naoqi connected", "module", module, "addr", c.Addr(), "version", hs.Version)
	return p, nil
}

// evict removes p from the pool unless it was already replaced.
func (c *Client) evict(p *proxy) {
	c.mu.Lock()
	current, ok := c.proxies[p.module]
	if ok && current == p {
		delete(c.proxies, p.module)
	}
	c.mu.Unlock()

	if ok && current == p {
		c.logger.Warn("naoqi connection dropped", "module", p.module, "addr", c.Addr())
	}
}
