package convoker

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureOutput(t *testing.T) (*bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	t.Setenv("CONVOKER_COLOR", "never")

	var stdout, stderr bytes.Buffer
	SetStdoutWriter(&stdout)
	SetStderrWriter(&stderr)
	t.Cleanup(func() {
		SetStdoutWriter(os.Stdout)
		SetStderrWriter(os.Stderr)
	})
	return &stdout, &stderr
}

func newCalc(sum *float64, called *bool) (*Cmd, *Cmd) {
	root := NewCmd("calc").SetDescription("A tiny calculator")
	add := root.SubCmd("add").
		SetDescription("Add two numbers").
		AddInput("a", NewPositional(Number)).
		AddInput("b", NewPositional(Number)).
		SetAction(func(_ context.Context, in Input) error {
			*called = true
			*sum = in.Number("a") + in.Number("b")
			return nil
		})
	return root, add
}

func TestRunDispatchesAction(t *testing.T) {
	stdout, stderr := captureOutput(t)
	var sum float64
	var called bool
	root, _ := newCalc(&sum, &called)

	err := root.Run(context.Background(), WithArgs([]string{"add", "2", "3"}))

	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, 5.0, sum)
	assert.Empty(t, stdout.String())
	assert.Empty(t, stderr.String())
}

func TestRunHelpSkipsAction(t *testing.T) {
	stdout, stderr := captureOutput(t)
	var sum float64
	var called bool
	root, _ := newCalc(&sum, &called)

	err := root.Run(context.Background(), WithArgs([]string{"add", "--help"}))

	require.NoError(t, err)
	assert.False(t, called)
	assert.Contains(t, stdout.String(), "Usage:\n  calc add <a> <b> [OPTIONS]")
	assert.Empty(t, stderr.String())
}

func TestRunHelpHandlerFoundOnParent(t *testing.T) {
	stdout, _ := captureOutput(t)
	var sum float64
	var called bool
	root, add := newCalc(&sum, &called)

	var got *Cmd
	root.SetHelp(func(_ context.Context, c *Cmd) error {
		got = c
		return nil
	})

	err := root.Run(context.Background(), WithArgs([]string{"add", "-h"}))

	require.NoError(t, err)
	assert.Same(t, add, got)
	assert.False(t, called)
	assert.Empty(t, stdout.String())
}

func TestRunPrintsVersion(t *testing.T) {
	stdout, _ := captureOutput(t)
	root := NewCmd("app").SetVersion("1.0.0")
	root.SubCmd("build").SetAction(func(context.Context, Input) error {
		t.Fatal("action must not run")
		return nil
	})

	err := root.Run(context.Background(), WithArgs([]string{"build", "--version"}))

	require.NoError(t, err)
	assert.Equal(t, "app build version 1.0.0\n", stdout.String())
}

func TestRunDefaultErrorHandler(t *testing.T) {
	stdout, stderr := captureOutput(t)
	var sum float64
	var called bool
	root, _ := newCalc(&sum, &called)

	err := root.Run(context.Background(), WithArgs([]string{"add", "x"}))

	assert.Error(t, err)
	assert.False(t, called)
	assert.Equal(t, "invalid num value for a: \"x\"\nmissing required argument: <b>\n", stderr.String())
	assert.Contains(t, stdout.String(), "calc add <a> <b> [OPTIONS]")
}

func TestRunCustomErrorHandlerGetsErrorsAsIs(t *testing.T) {
	_, stderr := captureOutput(t)
	handled := errors.New("handled")
	var sum float64
	var called bool
	root, add := newCalc(&sum, &called)

	var gotCmd *Cmd
	var gotErrs []error
	root.SetErrorHandler(func(_ context.Context, c *Cmd, errs []error) error {
		gotCmd = c
		gotErrs = errs
		return handled
	})

	err := root.Run(context.Background(), WithArgs([]string{"add", "1", "2", "--bogus"}))

	assert.Same(t, handled, err)
	assert.Same(t, add, gotCmd)
	require.Len(t, gotErrs, 1)
	var unknown *UnknownOptionError
	assert.True(t, errors.As(gotErrs[0], &unknown))
	assert.False(t, called)
	assert.Empty(t, stderr.String())
}

func TestRunActionErrorGoesThroughHandler(t *testing.T) {
	stdout, stderr := captureOutput(t)
	cmd := NewCmd("app").SetAction(func(context.Context, Input) error {
		return errors.New("boom")
	})

	err := cmd.Run(context.Background(), WithArgs(nil))

	assert.ErrorContains(t, err, "boom")
	assert.Equal(t, "boom\n", stderr.String())
	assert.Contains(t, stdout.String(), "Usage:")
}

func TestRunHelpAskedErrIsNotPrinted(t *testing.T) {
	stdout, stderr := captureOutput(t)
	cmd := NewCmd("app").SetAction(func(context.Context, Input) error {
		return HelpAskedErr
	})

	err := cmd.Run(context.Background(), WithArgs(nil))

	assert.NoError(t, err)
	assert.Empty(t, stderr.String())
	assert.Contains(t, stdout.String(), "Usage:\n  app [OPTIONS]")
}

func TestRunWithoutActionPrintsUsage(t *testing.T) {
	stdout, stderr := captureOutput(t)
	root := NewCmd("app")
	root.SubCmd("build")

	err := root.Run(context.Background(), WithArgs([]string{}))

	assert.NoError(t, err)
	assert.Empty(t, stderr.String())
	assert.Contains(t, stdout.String(), "app [subcommand] [OPTIONS]")
}

func TestRunMiddlewareOrder(t *testing.T) {
	captureOutput(t)
	var trace []string
	record := func(name string) MiddlewareFunc {
		return func(ctx context.Context, _ Input, next NextFunc) error {
			trace = append(trace, name+">")
			err := next(ctx)
			trace = append(trace, "<"+name)
			return err
		}
	}

	root := NewCmd("app").Use(record("root"))
	root.SubCmd("child").
		Use(record("child")).
		SetAction(func(context.Context, Input) error {
			trace = append(trace, "action")
			return nil
		})

	err := root.Run(context.Background(), WithArgs([]string{"child"}))

	require.NoError(t, err)
	assert.Equal(t, []string{"root>", "child>", "action", "<child", "<root"}, trace)
}

func TestRunMiddlewarePassesContext(t *testing.T) {
	captureOutput(t)
	type ctxKey struct{}
	var got any
	cmd := NewCmd("app").
		Use(func(ctx context.Context, _ Input, next NextFunc) error {
			return next(context.WithValue(ctx, ctxKey{}, "user"))
		}).
		SetAction(func(ctx context.Context, _ Input) error {
			got = ctx.Value(ctxKey{})
			return nil
		})

	require.NoError(t, cmd.Run(context.Background(), WithArgs(nil)))
	assert.Equal(t, "user", got)
}

func TestRunMiddlewareShortCircuits(t *testing.T) {
	captureOutput(t)
	denied := errors.New("denied")
	var gotErrs []error
	cmd := NewCmd("app").
		Use(func(context.Context, Input, NextFunc) error { return denied }).
		SetErrorHandler(func(_ context.Context, _ *Cmd, errs []error) error {
			gotErrs = errs
			return nil
		}).
		SetAction(func(context.Context, Input) error {
			t.Fatal("action must not run")
			return nil
		})

	err := cmd.Run(context.Background(), WithArgs(nil))

	assert.NoError(t, err)
	assert.Equal(t, []error{denied}, gotErrs)
}

func TestRunNextCalledTwice(t *testing.T) {
	captureOutput(t)
	runs := 0
	var gotErrs []error
	cmd := NewCmd("app").
		Use(func(ctx context.Context, _ Input, next NextFunc) error {
			_ = next(ctx)
			return next(ctx)
		}).
		SetErrorHandler(func(_ context.Context, _ *Cmd, errs []error) error {
			gotErrs = errs
			return errs[0]
		}).
		SetAction(func(context.Context, Input) error {
			runs++
			return nil
		})

	err := cmd.Run(context.Background(), WithArgs(nil))

	assert.Equal(t, 1, runs)
	require.Len(t, gotErrs, 1)
	var progErr *ProgrammingError
	require.True(t, errors.As(err, &progErr))
	assert.Equal(t, "next invoked multiple times", progErr.Error())
}

func TestRunRecoversPanic(t *testing.T) {
	_, stderr := captureOutput(t)
	cmd := NewCmd("app").SetAction(func(context.Context, Input) error {
		panic("boom")
	})

	err := cmd.Run(context.Background(), WithArgs(nil))

	assert.ErrorContains(t, err, "panic: boom")
	assert.Equal(t, "panic: boom\n", stderr.String())
}

func TestRunOrExit(t *testing.T) {
	captureOutput(t)
	exitCode := -1
	SetExitFunc(func(code int) { exitCode = code })
	t.Cleanup(func() { SetExitFunc(os.Exit) })

	cmd := NewCmd("app").AddInput("name", NewOption(String, "name"))

	cmd.RunOrExit(context.Background(), WithArgs(nil))
	assert.Equal(t, 1, exitCode)

	exitCode = -1
	cmd.SetAction(func(context.Context, Input) error { return nil })
	cmd.RunOrExit(context.Background(), WithArgs([]string{"--name", "bob"}))
	assert.Equal(t, -1, exitCode)
}

func TestRunReadsArgsFunc(t *testing.T) {
	captureOutput(t)
	SetArgsFunc(func() []string { return []string{"--name", "bob"} })
	t.Cleanup(func() { SetArgsFunc(func() []string { return os.Args[1:] }) })

	var got string
	cmd := NewCmd("app").
		AddInput("name", NewOption(String, "name")).
		SetAction(func(_ context.Context, in Input) error {
			got = in.String("name")
			return nil
		})

	require.NoError(t, cmd.Run(context.Background()))
	assert.Equal(t, "bob", got)
}

func TestRunWithDump(t *testing.T) {
	stdout, _ := captureOutput(t)
	cmd := NewCmd("app").SetAction(func(context.Context, Input) error {
		t.Fatal("action must not run")
		return nil
	})

	err := cmd.Run(context.Background(), WithArgs([]string{"--bogus"}), WithDump(true))

	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "Convoker Command Dump")
	assert.Contains(t, stdout.String(), `[0]: "--bogus"`)
}

func TestRunDispatchesShortNumberOptions(t *testing.T) {
	captureOutput(t)
	var got Input
	root := NewCmd("calc")
	root.SubCmd("add").
		AddInput("x", NewOption(Number, "x")).
		AddInput("y", NewOption(Number, "y")).
		SetAction(func(_ context.Context, in Input) error {
			got = in
			return nil
		})

	err := root.Run(context.Background(), WithArgs([]string{"add", "-x", "2", "-y", "3"}))

	require.NoError(t, err)
	assert.Equal(t, Input{"x": 2.0, "y": 3.0}, got)
}

func TestRunVersionWithoutVersionShowsHelp(t *testing.T) {
	stdout, _ := captureOutput(t)
	cmd := NewCmd("app").SetAction(func(context.Context, Input) error {
		t.Fatal("action must not run")
		return nil
	})

	err := cmd.Run(context.Background(), WithArgs([]string{"-V"}))

	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "Usage:\n  app [OPTIONS]")
	assert.NotContains(t, stdout.String(), "version")
}
