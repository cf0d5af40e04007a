package app

// StopReason is used for structured shutdown tracing.
type StopReason string

const (
	StopUnknown     StopReason = "unknown"
	StopSIGINT      StopReason = "sigint"
	StopSIGTERM     StopReason = "sigterm"
	StopQuitCommand StopReason = "quit_command"
	StopFatalError  StopReason = "fatal_error"
	StopAppStop     StopReason = "app_stop"
)
