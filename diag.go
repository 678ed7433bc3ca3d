package toskema

import "fmt"

// Diag carries non-fatal warnings produced while compiling a schema document:
// unrecognized option keys, defaults declared where they can never be
// honored, surplus keys in extras records. Warnings never abort compilation.
type Diag interface {
	HasWarnings() bool
	Warnings() []string
}

type simpleDiag struct {
	ws   []string
	sink func(string)
}

func (d *simpleDiag) HasWarnings() bool  { return len(d.ws) > 0 }
func (d *simpleDiag) Warnings() []string { return append([]string(nil), d.ws...) }

func (d *simpleDiag) warnf(f string, a ...any) {
	msg := fmt.Sprintf(f, a...)
	d.ws = append(d.ws, msg)
	if d.sink != nil {
		d.sink(msg)
	}
}

// Option configures Compile.
type Option func(*compileConfig)

type compileConfig struct {
	warn func(string)
}

// WithWarnHandler mirrors each compile warning to fn as it is produced, in
// addition to collecting it on the returned Diag. fn must not retain the
// string beyond the call; a typical sink is slog.Warn.
func WithWarnHandler(fn func(msg string)) Option {
	return func(c *compileConfig) { c.warn = fn }
}
