package dispatch

// Command is a control verb applied by the consumer loop, strictly in
// enqueue order. Producers (signal handlers, the config watcher, an
// embedding UI) only ever enqueue; they never touch controller state.
type Command string

const (
	CmdStart       Command = "start"
	CmdStop        Command = "stop"
	CmdTogglePause Command = "toggle_pause"
	CmdReload      Command = "reload"
	// CmdQuit stops the reminder pipeline and then terminates the consumer
	// loop itself.
	CmdQuit Command = "quit"
)
