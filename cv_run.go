package convoker

import (
	"context"
	"fmt"
)

// Run parses the arguments, then shows help, shows the version, reports
// errors, or runs the resolved command's action through its middleware.
//
// Errors from parsing, the action or middleware go through the nearest error
// handler; Run returns what that handler returns. The default handler prints
// the errors and usage, then returns them aggregated.
func (c *Cmd) Run(ctx context.Context, opts ...ParseOpt) error {
	initializeColorFromEnv()

	cfg := newParseCfg(opts)
	args := cfg.args
	if !cfg.argsSet {
		args = argsFunc()
	}

	if cfg.dump {
		fmt.Fprint(stdoutWriter, c.GenerateDump(args))
		return nil
	}

	res := c.parse(ctx, args, cfg)
	cmd := res.Command
	log := cfg.logger

	switch {
	case res.IsHelp:
		log.Trace("dispatching help", "command", cmd.FullName())
		return cmd.handleHelp(ctx)
	case res.IsVersion && cmd.Version() == "":
		log.Trace("no version set, dispatching help", "command", cmd.FullName())
		return cmd.handleHelp(ctx)
	case res.IsVersion:
		log.Trace("dispatching version", "command", cmd.FullName())
		fmt.Fprintf(stdoutWriter, "%s version %s\n", cmd.FullName(), cmd.Version())
		return nil
	case len(res.Errors) > 0 || cmd.action == nil:
		log.Trace("dispatching errors", "command", cmd.FullName(), "errors", len(res.Errors))
		return cmd.handleErrors(ctx, res.Errors)
	}

	log.Trace("running action", "command", cmd.FullName())
	if err := cmd.execute(ctx, res.Input); err != nil {
		return cmd.handleErrors(ctx, []error{err})
	}
	return nil
}

// RunOrExit runs c and exits with status 1 if Run returns an error.
func (c *Cmd) RunOrExit(ctx context.Context, opts ...ParseOpt) {
	if err := c.Run(ctx, opts...); err != nil {
		osExit(1)
	}
}

// execute runs the action wrapped by the middleware of c and its ancestors.
// A panic is recovered and returned as the error.
func (c *Cmd) execute(ctx context.Context, in Input) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if rErr, ok := r.(error); ok {
				err = rErr
			} else {
				err = fmt.Errorf("panic: %v", r)
			}
		}
	}()

	return compose(c.middlewareChain(), c.action)(ctx, in)
}

// middlewareChain collects middleware from the root down to c.
func (c *Cmd) middlewareChain() []MiddlewareFunc {
	var chain []MiddlewareFunc
	ancestors := c.ancestors()
	for i := len(ancestors) - 1; i >= 0; i-- {
		chain = append(chain, ancestors[i].middlewares...)
	}
	return append(chain, c.middlewares...)
}

// compose wraps action so that mws[0] runs first.
func compose(mws []MiddlewareFunc, action ActionFunc) ActionFunc {
	handler := action
	for i := len(mws) - 1; i >= 0; i-- {
		mw, next := mws[i], handler
		handler = func(ctx context.Context, in Input) error {
			called := false
			return mw(ctx, in, func(ctx context.Context) error {
				if called {
					panic(NewProgrammingError("next invoked multiple times"))
				}
				called = true
				return next(ctx, in)
			})
		}
	}
	return handler
}

// handleHelp calls the nearest help handler, or prints the default usage.
func (c *Cmd) handleHelp(ctx context.Context) error {
	for cmd := c; cmd != nil; cmd = cmd.parent {
		if cmd.help != nil {
			return cmd.help(ctx, c)
		}
	}
	fmt.Fprint(stdoutWriter, c.GenerateUsage())
	return nil
}

// handleErrors calls the nearest error handler, or prints each error to stderr
// followed by the usage of c.
func (c *Cmd) handleErrors(ctx context.Context, errs []error) error {
	for cmd := c; cmd != nil; cmd = cmd.parent {
		if cmd.errorHandler != nil {
			return cmd.errorHandler(ctx, c, errs)
		}
	}

	err := joinErrors(errs)
	if err != nil {
		for _, e := range errs {
			if e != nil && !isHelpAsked(e) {
				fmt.Fprintln(stderrWriter, e.Error())
			}
		}
	}
	fmt.Fprint(stdoutWriter, c.GenerateUsage())
	return err
}
