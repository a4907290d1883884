package convoker

import (
	"fmt"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

const defaultSeparator = ","

// Entry is either an *Option or a *Positional.
type Entry interface {
	Kind() Kind
	Required() bool
	IsList() bool
	Separator() string
	Default() (any, bool)
	Description() string

	base() *baseEntry
}

type baseEntry struct {
	kind        Kind
	required    bool
	list        bool
	separator   string
	def         any
	hasDefault  bool
	description string
}

func (b *baseEntry) base() *baseEntry {
	return b
}

func (b *baseEntry) Kind() Kind {
	return b.kind
}

// Required reports whether a missing value is an error. A default satisfies the requirement.
func (b *baseEntry) Required() bool {
	return b.required
}

func (b *baseEntry) IsList() bool {
	return b.list
}

func (b *baseEntry) Separator() string {
	if b.separator == "" {
		return defaultSeparator
	}
	return b.separator
}

func (b *baseEntry) Default() (any, bool) {
	return b.def, b.hasDefault
}

func (b *baseEntry) Description() string {
	return b.description
}

func (b *baseEntry) setList(sep []string) {
	b.list = true
	if len(sep) > 0 && sep[0] != "" {
		b.separator = sep[0]
	}
}

// Option is a named input, addressed by any of its aliases.
type Option struct {
	baseEntry
	names []string
}

// NewOption creates an option of the given kind. Leading dashes are stripped
// from names, so "--verbose", "-v" and "verbose" are all accepted. Boolean
// options start optional, every other kind starts required.
func NewOption(kind Kind, names ...string) *Option {
	o := &Option{baseEntry: baseEntry{kind: kind, required: !kind.IsBoolean()}}
	for _, name := range names {
		if stripped := strings.TrimLeft(name, "-"); stripped != "" {
			o.names = append(o.names, stripped)
		}
	}
	return o
}

// Names returns the aliases in declaration order.
func (o *Option) Names() []string {
	return o.names
}

func (o *Option) SetList(separator ...string) *Option {
	o.setList(separator)
	return o
}

func (o *Option) SetRequired(b bool) *Option {
	o.required = b
	return o
}

func (o *Option) SetOptional(b bool) *Option {
	o.required = !b
	return o
}

func (o *Option) SetDefault(v any) *Option {
	o.def = v
	o.hasDefault = true
	return o
}

func (o *Option) SetDescription(d string) *Option {
	o.description = d
	return o
}

// Positional is an input addressed by its declaration order.
type Positional struct {
	baseEntry
}

func NewPositional(kind Kind) *Positional {
	return &Positional{baseEntry: baseEntry{kind: kind, required: true}}
}

func (p *Positional) SetList(separator ...string) *Positional {
	p.setList(separator)
	return p
}

func (p *Positional) SetRequired(b bool) *Positional {
	p.required = b
	return p
}

func (p *Positional) SetOptional(b bool) *Positional {
	p.required = !b
	return p
}

func (p *Positional) SetDefault(v any) *Positional {
	p.def = v
	p.hasDefault = true
	return p
}

func (p *Positional) SetDescription(d string) *Positional {
	p.description = d
	return p
}

// Schema maps field keys to entries. Insertion order is significant: the Nth
// positional entry consumes the Nth bare token.
type Schema struct {
	entries *orderedmap.OrderedMap[string, Entry]
}

func NewSchema() *Schema {
	return &Schema{entries: orderedmap.New[string, Entry]()}
}

// Register adds e under key. Re-adding a key replaces the entry in place. An
// option with no names, or with an alias another option of the schema already
// uses, is rejected with a *ProgrammingError.
func (s *Schema) Register(key string, e Entry) error {
	if e == nil {
		return NewProgrammingError(fmt.Sprintf("input %q has no entry", key))
	}
	if opt, ok := e.(*Option); ok {
		if len(opt.names) == 0 {
			return NewProgrammingError(fmt.Sprintf("option %q must have at least one name", key))
		}
		for _, name := range opt.names {
			if owner, taken := s.optionKey(name); taken && owner != key {
				return NewProgrammingError(fmt.Sprintf("option %q already defined", name))
			}
		}
	}
	if def, ok := e.Default(); ok {
		if _, err := e.Kind().coerceDefault(key, def, e.IsList()); err != nil {
			return err
		}
	}
	s.entries.Set(key, e)
	return nil
}

// Add is Register for declarations known to be valid. It panics with a
// *ProgrammingError otherwise.
func (s *Schema) Add(key string, e Entry) *Schema {
	if err := s.Register(key, e); err != nil {
		panic(err)
	}
	return s
}

// optionKey returns the key of the option declaring name.
func (s *Schema) optionKey(name string) (string, bool) {
	for pair := s.entries.Oldest(); pair != nil; pair = pair.Next() {
		opt, ok := pair.Value.(*Option)
		if !ok {
			continue
		}
		for _, n := range opt.names {
			if n == name {
				return pair.Key, true
			}
		}
	}
	return "", false
}

func (s *Schema) Get(key string) (Entry, bool) {
	return s.entries.Get(key)
}

func (s *Schema) Len() int {
	return s.entries.Len()
}

func (s *Schema) Keys() []string {
	keys := make([]string, 0, s.entries.Len())
	for pair := s.entries.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// each visits entries in declaration order.
func (s *Schema) each(fn func(key string, e Entry)) {
	for pair := s.entries.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, pair.Value)
	}
}

func (s *Schema) options() []*Option {
	var opts []*Option
	s.each(func(_ string, e Entry) {
		if o, ok := e.(*Option); ok {
			opts = append(opts, o)
		}
	})
	return opts
}

func (s *Schema) positionals() []*Positional {
	var pos []*Positional
	s.each(func(_ string, e Entry) {
		if p, ok := e.(*Positional); ok {
			pos = append(pos, p)
		}
	})
	return pos
}
