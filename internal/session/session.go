// Package session carries the state of one interactive session: the
// active ticker, the most recent computed frame, and the configuration
// handle. The dispatcher owns a Session and passes it explicitly; the
// volatility core never sees it.
package session

import (
	"github.com/contactkeval/volsuite/internal/config"
	"github.com/contactkeval/volsuite/internal/frame"
)

// Session is the per-run mutable state of the terminal. The last frame
// is replaced wholesale by each command that produces output and is the
// value export/plot/last operate on.
type Session struct {
	Ticker     string
	Last       *frame.Frame
	Config     *config.Config
	ConfigPath string
}

// New returns a session initialized from config.
func New(cfg *config.Config, configPath string) *Session {
	return &Session{
		Ticker:     cfg.DefaultTicker,
		Config:     cfg,
		ConfigPath: configPath,
	}
}

// Cache stores f as the session's active frame.
func (s *Session) Cache(f *frame.Frame) { s.Last = f }

// HasTicker reports whether a ticker has been selected.
func (s *Session) HasTicker() bool { return s.Ticker != "" }
