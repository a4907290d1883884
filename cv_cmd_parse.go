package convoker

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/shlex"
	"github.com/hashicorp/go-hclog"
)

// inputRef is what a merged lookup table key resolves to.
type inputRef struct {
	key   string
	entry Entry
}

// scanState is the mutable state of one left-to-right pass over the arguments.
type scanState struct {
	table       map[string]inputRef
	current     *Cmd
	opts        map[string]string // option name as typed -> last raw value
	valueless   map[string]bool   // option names given last with no value
	positionals []string
	found       bool // a bare token was taken as positional, no more descent
	errs        []error
	isHelp      bool
	isVersion   bool
	digitShorts bool
	log         hclog.Logger
}

// Parse resolves the command args address below c and binds its input. It
// never fails: every problem is collected into the result's Errors.
func (c *Cmd) Parse(ctx context.Context, args []string, opts ...ParseOpt) *ParseResult {
	return c.parse(ctx, args, newParseCfg(opts))
}

// ParseString splits line with shell quoting rules and parses the result.
func (c *Cmd) ParseString(ctx context.Context, line string, opts ...ParseOpt) (*ParseResult, error) {
	args, err := shlex.Split(line)
	if err != nil {
		return nil, fmt.Errorf("splitting %q: %w", line, err)
	}
	return c.Parse(ctx, args, opts...), nil
}

func (c *Cmd) parse(ctx context.Context, args []string, cfg *parseCfg) *ParseResult {
	log := cfg.logger
	log.Trace("parsing", "command", c.FullName(), "args", args)

	s := &scanState{
		table:     c.buildInputMap(),
		current:   c,
		opts:      make(map[string]string),
		valueless: make(map[string]bool),
		log:       log,
	}
	s.digitShorts = hasDigitShorts(s.table)

	endOfOptions := false
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case endOfOptions:
			s.found = true
			s.positionals = append(s.positionals, arg)
		case arg == "--":
			endOfOptions = true
		case strings.HasPrefix(arg, "--"):
			i = s.scanLong(args, i)
		case s.isShortFlag(arg):
			i = s.scanShort(args, i)
		default:
			s.scanBare(arg)
		}
	}

	input, bindErrs := s.current.bind(ctx, s.opts, s.valueless, s.positionals)
	errs := append(s.errs, bindErrs...)

	log.Trace("parsed",
		"command", s.current.FullName(),
		"errors", len(errs),
		"help", s.isHelp,
		"version", s.isVersion,
	)

	return &ParseResult{
		Command:   s.current,
		Input:     input,
		Errors:    errs,
		IsHelp:    s.isHelp,
		IsVersion: s.isVersion,
	}
}

// buildInputMap merges the keys usable while scanning from c. Own entries win
// over ancestors (nearest first), which win over descendants. Descendant
// options are only there so a child's flags given before the child's name
// aren't reported as unknown.
func (c *Cmd) buildInputMap() map[string]inputRef {
	table := make(map[string]inputRef)

	add := func(cmd *Cmd, withPositionals bool) {
		index := 0
		cmd.input.each(func(key string, e Entry) {
			switch entry := e.(type) {
			case *Positional:
				if withPositionals {
					setIfAbsent(table, strconv.Itoa(index), inputRef{key: key, entry: entry})
				}
				index++
			case *Option:
				for _, name := range entry.names {
					setIfAbsent(table, name, inputRef{key: key, entry: entry})
				}
			}
		})
	}

	add(c, true)
	for _, ancestor := range c.ancestors() {
		add(ancestor, true)
	}
	for _, descendant := range c.descendants() {
		add(descendant, false)
	}
	return table
}

func setIfAbsent(table map[string]inputRef, key string, ref inputRef) {
	if _, exists := table[key]; !exists {
		table[key] = ref
	}
}

func hasDigitShorts(table map[string]inputRef) bool {
	for name, ref := range table {
		if _, ok := ref.entry.(*Option); ok && len(name) == 1 && isDigit(name[0]) {
			return true
		}
	}
	return false
}

// lookupOption resolves a flag key. Positional indices never match.
func (s *scanState) lookupOption(key string) (*Option, bool) {
	ref, exists := s.table[key]
	if !exists {
		return nil, false
	}
	opt, ok := ref.entry.(*Option)
	return opt, ok
}

func (s *scanState) unknown(key string, short bool) {
	if s.current.allowUnknownOptions {
		s.log.Trace("ignoring unknown option", "option", key)
		return
	}
	s.errs = append(s.errs, &UnknownOptionError{Key: key, Short: short})
}

// scanLong handles --name, --name=value and --name value. It returns the index
// of the last token it consumed.
func (s *scanState) scanLong(args []string, i int) int {
	key, value, hasValue := strings.Cut(args[i][2:], "=")

	switch key {
	case "help":
		s.isHelp = true
		return i
	case "version":
		s.isVersion = true
		return i
	}

	opt, ok := s.lookupOption(key)
	if !ok {
		s.unknown(key, false)
		return i
	}

	// only presence matters for booleans, =value is ignored
	if opt.kind.IsBoolean() {
		s.setOpt(key, "true")
		return i
	}
	if hasValue {
		s.setOpt(key, value)
		return i
	}
	if i+1 < len(args) {
		s.setOpt(key, args[i+1])
		return i + 1
	}
	s.noValue(key, false)
	return i
}

func (s *scanState) setOpt(key, value string) {
	s.opts[key] = value
	delete(s.valueless, key)
}

// noValue records a value-taking option that ended the argument list.
func (s *scanState) noValue(key string, short bool) {
	s.log.Trace("option has no value", "option", key)
	delete(s.opts, key)
	s.valueless[key] = true
	s.errs = append(s.errs, &MissingOptionValueError{Key: key, Short: short})
}

// scanShort walks a cluster like -abc or -abo=value one character at a time.
// Only the first value-taking flag of a cluster gets a value.
func (s *scanState) scanShort(args []string, i int) int {
	cluster, value, hasValue := strings.Cut(args[i][1:], "=")
	if cluster == "" {
		s.unknown(args[i][1:], true)
		return i
	}

	usedValue := false
	for _, r := range cluster {
		key := string(r)

		switch key {
		case "h":
			s.isHelp = true
			continue
		case "V":
			s.isVersion = true
			continue
		}

		opt, ok := s.lookupOption(key)
		if !ok {
			s.unknown(key, true)
			continue
		}
		if opt.kind.IsBoolean() {
			s.setOpt(key, "true")
			continue
		}
		if usedValue {
			s.log.Trace("cluster value already used", "option", key, "cluster", cluster)
			continue
		}

		usedValue = true
		if hasValue {
			s.setOpt(key, value)
		} else if i+1 < len(args) {
			i++
			s.setOpt(key, args[i])
		} else {
			s.noValue(key, true)
		}
	}
	return i
}

// isShortFlag reports whether arg is a short flag cluster. "-" alone and
// negative numbers are bare tokens unless a digit short flag is declared.
func (s *scanState) isShortFlag(arg string) bool {
	if len(arg) < 2 || arg[0] != '-' {
		return false
	}
	if !s.digitShorts && (isDigit(arg[1]) || arg[1] == '.') {
		return false
	}
	return true
}

func (s *scanState) scanBare(arg string) {
	if !s.found {
		if child, name, ok := s.current.Lookup(arg); ok {
			s.log.Trace("descending", "command", name, "token", arg)
			s.current = child
			return
		}
	}
	s.found = true
	s.positionals = append(s.positionals, arg)
}

// bind converts raw values against c's own schema in declaration order.
//
// When an option is given through several aliases, each alias keeps its last
// value, and the alias declared first wins. An option whose value was missing
// is already reported by the scan, so it is left unbound here.
func (c *Cmd) bind(ctx context.Context, opts map[string]string, valueless map[string]bool, positionals []string) (Input, []error) {
	input := Input{}
	var errs []error
	next := 0

	c.input.each(func(key string, e Entry) {
		var raws []string
		hasRaw := false
		skip := false

		switch entry := e.(type) {
		case *Positional:
			if entry.list {
				if next < len(positionals) {
					raws = positionals[next:]
					next = len(positionals)
					hasRaw = true
				}
			} else if next < len(positionals) {
				raws = []string{positionals[next]}
				next++
				hasRaw = true
			}
		case *Option:
			for _, name := range entry.names {
				if valueless[name] {
					skip = true
				}
				if value, ok := opts[name]; ok {
					if entry.list {
						raws = strings.Split(value, entry.Separator())
					} else {
						raws = []string{value}
					}
					hasRaw = true
					break
				}
			}
		}

		if !hasRaw {
			if skip {
				return
			}
			if def, ok := e.Default(); ok {
				value, err := e.Kind().coerceDefault(key, def, e.IsList())
				if err != nil {
					errs = append(errs, err)
					return
				}
				input[key] = value
				return
			}
			if e.Required() {
				if err := c.missing(key, e); err != nil {
					errs = append(errs, err)
				}
			}
			return
		}

		var value any
		var err error
		if e.IsList() {
			value, err = e.Kind().convertList(ctx, key, raws)
		} else {
			value, err = e.Kind().convert(ctx, key, raws[0])
		}
		if err != nil {
			errs = append(errs, err)
			return
		}
		input[key] = value
	})

	if next < len(positionals) && !c.allowSurpassArgLimit {
		errs = append(errs, &TooManyArgumentsError{Extra: positionals[next:]})
	}
	return input, errs
}

func (c *Cmd) missing(key string, e Entry) error {
	switch entry := e.(type) {
	case *Option:
		return &MissingRequiredOptionError{Key: key, Names: entry.names}
	case *Positional:
		if entry.list && c.allowSurpassArgLimit {
			return nil
		}
		return &MissingRequiredArgumentError{Key: key}
	}
	return nil
}
