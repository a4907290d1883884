package convoker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDumpRun(t *testing.T) {
	stdout, _ := captureOutput(t)
	t.Setenv("CONVOKER_LOG_LEVEL", "")

	cmd := NewCmd("testapp").
		SetDescription("Test application").
		AddInput("input", NewPositional(String).SetDescription("Input file path")).
		AddInput("verbose", NewOption(Boolean, "v", "verbose"))

	err := cmd.Run(context.Background(), WithArgs([]string{"--verbose", "test.txt"}), WithDump(true))
	require.NoError(t, err)

	expected := `Convoker Command Dump
==================================================

Command Information:
  Name: testapp
  Description: Test application
  Version: <not set>
  Allow Unknown Options: false
  Allow Surpass Arg Limit: false
  Action: not set
  Help Handler: not set
  Error Handler: not set
  Middleware: 0
  Subcommands: none

Arguments to Parse:
  [0]: "--verbose"
  [1]: "test.txt"

Input Schema:
  Total Fields: 2
  Positionals: 1
  Options: 1

  Positionals (in order):
    [0] input type:str required usage:"Input file path"

  Options:
    verbose (-v, --verbose) type:bool optional

Environment:
  CONVOKER_COLOR: never
  CONVOKER_LOG_LEVEL: not set
`

	assert.Equal(t, expected, stdout.String())
}

func TestDumpWithSubcommands(t *testing.T) {
	stdout, _ := captureOutput(t)

	parent := NewCmd("parent").
		SetDescription("Parent command").
		SetVersion("2.0.0").
		Use(func(ctx context.Context, _ Input, next NextFunc) error { return next(ctx) })
	sub := parent.SubCmd("sub", "s").
		SetDescription("Subcommand").
		SetAllowUnknownOptions(true).
		AddInput("count", NewOption(Number, "c", "count").SetDefault(42).SetDescription("Count value"))
	sub.SubCmd("grandchild").
		AddInput("files", NewPositional(String).SetList(":"))
	parent.SubCmd("sub2").SetAction(func(context.Context, Input) error { return nil })

	err := parent.Run(context.Background(), WithArgs(nil), WithDump(true))
	require.NoError(t, err)

	out := stdout.String()
	assert.Contains(t, out, "  Version: 2.0.0\n  Allow Unknown Options: false\n")
	assert.Contains(t, out, "  Middleware: 1\n  Subcommands (2): sub, sub2\n")
	assert.Contains(t, out, "Arguments to Parse:\n  <no arguments>\n")
	assert.Contains(t, out, "\nSubcommand Details:\n")

	assert.Contains(t, out, `  Subcommand Dump (parent sub)
  ------------------------------

  Command Information:
    Name: sub
    Aliases: s
    Description: Subcommand
    Version: <not set>
    Allow Unknown Options: true
`)
	assert.Contains(t, out, `    count (-c, --count) type:num required default:42 usage:"Count value"`)

	assert.Contains(t, out, "    Subcommand Dump (parent sub grandchild)\n")
	assert.Contains(t, out, `      [0] files type:str list sep:":" required`)

	assert.Contains(t, out, "  Subcommand Dump (parent sub2)\n")
	assert.Contains(t, out, "    Action: set\n")
}
