package common

import "io"

// A context carries the ambient pieces every component needs: its
// configuration, a logger and a control that signals shutdown.
// Closing a context closes every context derived from it.
type Context interface {
	io.Closer

	Config() Config
	Logger() Logger
	Control() Control

	// Derives a child context whose logger is tagged with the
	// formatted value and whose control is a child of this one.
	Sub(format string, vals ...interface{}) Context
}

type ctx struct {
	config  Config
	logger  Logger
	control Control
}

func NewContext(config Config) Context {
	return &ctx{config: config, logger: NewStandardLogger(config), control: NewControl(nil)}
}

func NewEmptyContext() Context {
	return NewContext(NewEmptyConfig())
}

func (c *ctx) Close() error {
	return c.control.Close()
}

func (c *ctx) Config() Config {
	return c.config
}

func (c *ctx) Logger() Logger {
	return c.logger
}

func (c *ctx) Control() Control {
	return c.control
}

func (c *ctx) Sub(format string, vals ...interface{}) Context {
	return &ctx{
		config:  c.config,
		logger:  FormatLogger(c.logger, format, vals...),
		control: c.control.Sub()}
}
