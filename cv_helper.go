package convoker

import (
	"io"
	"os"
	"strings"

	"github.com/amterp/color"
	"github.com/hashicorp/go-hclog"
)

// ExitFunc is the interface for exiting the program
type ExitFunc func(int)

// ArgsFunc returns the command-line arguments, excluding the program name.
type ArgsFunc func() []string

var osExit ExitFunc = os.Exit
var stderrWriter io.Writer = os.Stderr
var stdoutWriter io.Writer = os.Stdout
var argsFunc ArgsFunc = func() []string { return os.Args[1:] }

// SetStderrWriter allows overriding the stderr writer for testing or custom output
func SetStderrWriter(writer io.Writer) {
	stderrWriter = writer
}

// SetStdoutWriter allows overriding the stdout writer for testing or custom output
func SetStdoutWriter(writer io.Writer) {
	stdoutWriter = writer
}

// SetExitFunc allows overriding the exit function for testing
func SetExitFunc(exitFunc ExitFunc) {
	osExit = exitFunc
}

// SetArgsFunc overrides where Run reads its arguments from when WithArgs isn't given.
func SetArgsFunc(fn ArgsFunc) {
	argsFunc = fn
}

func initializeColorFromEnv() {
	if os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}
	colorValue := strings.ToLower(strings.TrimSpace(os.Getenv("CONVOKER_COLOR")))
	switch colorValue {
	case "never":
		color.NoColor = true
	case "always":
		color.NoColor = false
	case "", "auto":
		// let amterp/color decide based on tty
	default:
		// invalid value - treat as auto
	}
}

// loggerFromEnv builds a stderr logger when CONVOKER_LOG_LEVEL names a level.
func loggerFromEnv() hclog.Logger {
	level := hclog.LevelFromString(os.Getenv("CONVOKER_LOG_LEVEL"))
	if level == hclog.NoLevel {
		return hclog.NewNullLogger()
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "convoker",
		Level:  level,
		Output: stderrWriter,
	})
}
