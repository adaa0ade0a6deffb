package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf but
// may be replaced by SetLogger. Tests or pipeline embedders can redirect or
// mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// Warnf logs a non-fatal condition, such as a stats file missing for one
// track while the rest of a load proceeds.
func Warnf(format string, v ...interface{}) {
	Logf("WARN: "+format, v...)
}

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
