package convoker

import "github.com/hashicorp/go-hclog"

type parseCfg struct {
	args    []string
	argsSet bool
	logger  hclog.Logger
	dump    bool
}

type ParseOpt func(*parseCfg)

// WithArgs supplies the argument vector to Run instead of the process arguments.
func WithArgs(args []string) ParseOpt {
	return func(c *parseCfg) {
		c.args = args
		c.argsSet = true
	}
}

// WithLogger traces parse and dispatch decisions to l.
func WithLogger(l hclog.Logger) ParseOpt {
	return func(c *parseCfg) {
		c.logger = l
	}
}

// WithDump makes Run print a dump of the command tree instead of dispatching.
func WithDump(dump bool) ParseOpt {
	return func(c *parseCfg) {
		c.dump = dump
	}
}

func newParseCfg(opts []ParseOpt) *parseCfg {
	cfg := &parseCfg{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = loggerFromEnv()
	}
	return cfg
}
