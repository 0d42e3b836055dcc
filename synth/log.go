package synth

import "github.com/charmbracelet/log"

// SetLogger installs the structured logger used for non-fatal engine
// diagnostics. A Synth built via New logs through
// log.Default() until this is called.
func (s *Synth) SetLogger(l *log.Logger) { s.logger = l }

func (s *Synth) logf(format string, args ...any) {
	if s.logger == nil {
		s.logger = log.Default()
	}
	s.logger.Warnf(format, args...)
}
