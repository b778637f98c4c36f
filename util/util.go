package util

import "log"

// Logging is a global kill switch for Logf, checked in addition to
// whatever per-component gating a caller layers on top (see
// core.JoinDefinition.SetLogLevel). It defaults to true: a
// JoinDefinition's own pool must fail fast and log rather than
// silently drop a submission, so logging has to be on unless
// something explicitly turns it off (a test wanting quiet output,
// say).
var Logging = true

// Logf calls log.Printf if Logging is true, otherwise it's a no-op.
func Logf(format string, args ...interface{}) {
	if !Logging {
		return
	}
	log.Printf(format, args...)
}
