package convoker

import (
	"context"
	"fmt"
	"strings"
)

// ActionFunc runs a resolved command with its bound input.
type ActionFunc func(ctx context.Context, in Input) error

// NextFunc proceeds to the next middleware, or the action. It may be called at
// most once per middleware invocation.
type NextFunc func(ctx context.Context) error

// MiddlewareFunc wraps the action of a command and of all its descendants.
type MiddlewareFunc func(ctx context.Context, in Input, next NextFunc) error

// HelpFunc renders help for the resolved command c.
type HelpFunc func(ctx context.Context, c *Cmd) error

// ErrorFunc reports errs for the resolved command c. errs may be empty when
// the command has nothing to run.
type ErrorFunc func(ctx context.Context, c *Cmd, errs []error) error

type childRef struct {
	cmd  *Cmd
	name string // canonical alias of cmd
}

type Cmd struct {
	names       []string // first is the display name
	description string
	version     string
	input       *Schema

	action       ActionFunc
	help         HelpFunc
	errorHandler ErrorFunc
	middlewares  []MiddlewareFunc

	allowUnknownOptions  bool
	allowSurpassArgLimit bool

	parent     *Cmd                // navigation only, the parent owns c
	children   map[string]childRef // every alias -> child
	childOrder []*Cmd              // registration order, for usage output
}

func NewCmd(names ...string) *Cmd {
	return &Cmd{
		names:    append([]string(nil), names...),
		input:    NewSchema(),
		children: make(map[string]childRef),
	}
}

func (c *Cmd) SetDescription(desc string) *Cmd {
	c.description = desc
	return c
}

func (c *Cmd) SetVersion(version string) *Cmd {
	c.version = version
	return c
}

// SetInput replaces the whole input schema.
func (c *Cmd) SetInput(s *Schema) *Cmd {
	if s == nil {
		s = NewSchema()
	}
	c.input = s
	return c
}

// RegisterInput declares a single field. Positional fields bind in the order
// they are added.
func (c *Cmd) RegisterInput(key string, e Entry) error {
	if err := c.input.Register(key, e); err != nil {
		return fmt.Errorf("command %q: %w", c.Name(), err)
	}
	return nil
}

// AddInput is RegisterInput that panics with a *ProgrammingError on an invalid
// declaration, like SubCmd does on a name clash.
func (c *Cmd) AddInput(key string, e Entry) *Cmd {
	if err := c.input.Register(key, e); err != nil {
		panic(err)
	}
	return c
}

func (c *Cmd) SetAction(fn ActionFunc) *Cmd {
	c.action = fn
	return c
}

func (c *Cmd) SetHelp(fn HelpFunc) *Cmd {
	c.help = fn
	return c
}

func (c *Cmd) SetErrorHandler(fn ErrorFunc) *Cmd {
	c.errorHandler = fn
	return c
}

// Use appends middleware. Parent middleware wraps child middleware.
func (c *Cmd) Use(mw ...MiddlewareFunc) *Cmd {
	c.middlewares = append(c.middlewares, mw...)
	return c
}

func (c *Cmd) SetAllowUnknownOptions(b bool) *Cmd {
	c.allowUnknownOptions = b
	return c
}

// SetAllowSurpassArgLimit tolerates positional tokens that no field claims.
func (c *Cmd) SetAllowSurpassArgLimit(b bool) *Cmd {
	c.allowSurpassArgLimit = b
	return c
}

func (c *Cmd) Name() string {
	if len(c.names) == 0 {
		return ""
	}
	return c.names[0]
}

func (c *Cmd) Names() []string {
	return c.names
}

func (c *Cmd) Description() string {
	return c.description
}

func (c *Cmd) Schema() *Schema {
	return c.input
}

func (c *Cmd) Parent() *Cmd {
	return c.parent
}

// Children returns the direct subcommands in registration order.
func (c *Cmd) Children() []*Cmd {
	return c.childOrder
}

// Lookup resolves a child by any of its aliases and returns its display name.
func (c *Cmd) Lookup(alias string) (*Cmd, string, bool) {
	ref, ok := c.children[alias]
	if !ok {
		return nil, "", false
	}
	return ref.cmd, ref.name, true
}

// Version returns the version of c or of its nearest ancestor that has one.
func (c *Cmd) Version() string {
	for cmd := c; cmd != nil; cmd = cmd.parent {
		if cmd.version != "" {
			return cmd.version
		}
	}
	return ""
}

// FullName joins display names from the root down to c.
func (c *Cmd) FullName() string {
	var names []string
	for cmd := c; cmd != nil; cmd = cmd.parent {
		if name := cmd.Name(); name != "" {
			names = append(names, name)
		}
	}
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return strings.Join(names, " ")
}

// AddCmd makes sub a child of c under every alias of sub. A child that already
// belongs to another command is detached from it first.
func (c *Cmd) AddCmd(sub *Cmd) error {
	if sub == c {
		return NewProgrammingError(fmt.Sprintf("command %q cannot be its own child", c.Name()))
	}
	if len(sub.names) == 0 {
		return NewProgrammingError("subcommand must have at least one name")
	}
	for cmd := c; cmd != nil; cmd = cmd.parent {
		if cmd == sub {
			return NewProgrammingError(fmt.Sprintf("command %q cannot be added below itself", sub.Name()))
		}
	}
	for _, alias := range sub.names {
		if ref, exists := c.children[alias]; exists && ref.cmd != sub {
			return NewProgrammingError(fmt.Sprintf("command %q already defined", alias))
		}
	}

	if sub.parent != nil && sub.parent != c {
		sub.parent.detach(sub)
	}
	sub.parent = c
	c.register(sub)
	return nil
}

// SubCmd creates a child named names and returns it. A name clash panics with a
// *ProgrammingError.
func (c *Cmd) SubCmd(names ...string) *Cmd {
	sub := NewCmd(names...)
	if err := c.AddCmd(sub); err != nil {
		panic(err)
	}
	return sub
}

// Alias appends names to c and re-registers c with its parent.
func (c *Cmd) Alias(names ...string) error {
	if c.parent != nil {
		for _, alias := range names {
			if ref, exists := c.parent.children[alias]; exists && ref.cmd != c {
				return NewProgrammingError(fmt.Sprintf("command %q already defined", alias))
			}
		}
	}
	c.names = append(c.names, names...)
	if c.parent != nil {
		c.parent.register(c)
	}
	return nil
}

func (c *Cmd) register(sub *Cmd) {
	canonical := sub.Name()
	for _, alias := range sub.names {
		c.children[alias] = childRef{cmd: sub, name: canonical}
	}
	for _, existing := range c.childOrder {
		if existing == sub {
			return
		}
	}
	c.childOrder = append(c.childOrder, sub)
}

func (c *Cmd) detach(sub *Cmd) {
	for alias, ref := range c.children {
		if ref.cmd == sub {
			delete(c.children, alias)
		}
	}
	for i, existing := range c.childOrder {
		if existing == sub {
			c.childOrder = append(c.childOrder[:i], c.childOrder[i+1:]...)
			break
		}
	}
	sub.parent = nil
}

// ancestors returns the chain from c's parent up to the root.
func (c *Cmd) ancestors() []*Cmd {
	var chain []*Cmd
	for cmd := c.parent; cmd != nil; cmd = cmd.parent {
		chain = append(chain, cmd)
	}
	return chain
}

// descendants returns every command below c, depth first, each once.
func (c *Cmd) descendants() []*Cmd {
	var out []*Cmd
	for _, child := range c.childOrder {
		out = append(out, child)
		out = append(out, child.descendants()...)
	}
	return out
}
