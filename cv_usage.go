package convoker

import (
	"fmt"
	"strings"

	"github.com/amterp/color"
)

var (
	greenBold  = color.New(color.FgGreen, color.Bold)
	cyan       = color.New(color.FgCyan)
	bold       = color.New(color.Bold)
	GreenBoldS = greenBold.SprintfFunc()
	CyanS      = cyan.SprintfFunc()
	BoldS      = bold.SprintfFunc()
)

type UsageHeaders struct {
	Usage     string
	Commands  string
	Arguments string
	Options   string
}

func DefaultUsageHeaders() UsageHeaders {
	return UsageHeaders{
		Usage:     "Usage:",
		Commands:  "Commands:",
		Arguments: "Arguments:",
		Options:   "Options:",
	}
}

var usageHeaders = DefaultUsageHeaders()

// SetUsageHeaders replaces the section headers of the default help screen.
func SetUsageHeaders(headers UsageHeaders) {
	usageHeaders = headers
}

// usageRow is one aligned line of an Arguments or Options section.
type usageRow struct {
	left  string
	entry Entry
	usage string
}

// GenerateUsage renders the default help screen for c.
func (c *Cmd) GenerateUsage() string {
	var sb strings.Builder

	sb.WriteString(c.GenerateDescription())
	sb.WriteString(GreenBoldS(usageHeaders.Usage) + "\n  ")
	sb.WriteString(c.GenerateSynopsis())
	sb.WriteString("\n")
	sb.WriteString(c.GenerateCommandsSection())
	sb.WriteString(c.GenerateArgumentsSection())
	sb.WriteString(c.GenerateOptionsSection())

	return sb.String()
}

func (c *Cmd) GenerateDescription() string {
	if c.description == "" {
		return ""
	}
	return c.description + "\n\n"
}

func (c *Cmd) GenerateSynopsis() string {
	var sb strings.Builder
	sb.WriteString(BoldS(c.FullName()))

	if len(c.childOrder) > 0 {
		sb.WriteString(" " + CyanS("[subcommand]"))
	}

	c.input.each(func(key string, e Entry) {
		p, ok := e.(*Positional)
		if !ok {
			return
		}
		argName := key
		if p.list {
			argName = key + "..."
		}
		if p.required && !p.hasDefault {
			sb.WriteString(" " + CyanS("<%s>", argName))
		} else {
			sb.WriteString(" " + CyanS("[%s]", argName))
		}
	})

	sb.WriteString(" " + CyanS("[OPTIONS]"))
	return sb.String()
}

func (c *Cmd) GenerateCommandsSection() string {
	if len(c.childOrder) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\n" + GreenBoldS(usageHeaders.Commands) + "\n")
	for _, sub := range c.childOrder {
		names := strings.Join(sub.names, ", ")
		if sub.description != "" {
			sb.WriteString(fmt.Sprintf("  %-30s%s\n", names, sub.description))
		} else {
			sb.WriteString(fmt.Sprintf("  %s\n", names))
		}
	}

	return sb.String()
}

func (c *Cmd) GenerateArgumentsSection() string {
	var rows []usageRow
	c.input.each(func(key string, e Entry) {
		p, ok := e.(*Positional)
		if !ok {
			return
		}
		left := "  " + key
		if p.list {
			left += "..."
		}
		rows = append(rows, usageRow{
			left:  fmt.Sprintf("%s %s", left, p.kind),
			entry: p,
			usage: p.description,
		})
	})
	if len(rows) == 0 {
		return ""
	}

	return "\n" + GreenBoldS(usageHeaders.Arguments) + "\n" + formatRows(rows)
}

func (c *Cmd) GenerateOptionsSection() string {
	var rows []usageRow
	for _, opt := range c.input.options() {
		rows = append(rows, usageRow{left: optionLeft(opt), entry: opt, usage: opt.description})
	}

	rows = append(rows, usageRow{left: "  -h, --help", usage: "Print usage string."})
	if c.Version() != "" {
		rows = append(rows, usageRow{left: "  -V, --version", usage: "Print version."})
	}

	return "\n" + GreenBoldS(usageHeaders.Options) + "\n" + formatRows(rows)
}

func optionLeft(opt *Option) string {
	var flags []string
	for _, name := range sortedNames(opt.names) {
		flags = append(flags, optionFlag(name))
	}

	left := "  " + strings.Join(flags, ", ")
	// keep long-only options aligned with the ones that have a short form
	if len(opt.names) > 0 && len(sortedNames(opt.names)[0]) > 1 {
		left = "    " + left
	}
	if !opt.kind.IsBoolean() {
		left += " " + opt.kind.String()
		if opt.list {
			left += "[" + opt.Separator() + "]"
		}
	}
	return left
}

// formatRows aligns descriptions one column after the longest left side.
func formatRows(rows []usageRow) string {
	maxWidth := 0
	for _, row := range rows {
		if len(row.left) > maxWidth {
			maxWidth = len(row.left)
		}
	}
	maxWidth += 3

	var sb strings.Builder
	for _, row := range rows {
		sb.WriteString(row.left)

		notes := entryNotes(row.entry)
		if row.usage != "" || notes != "" {
			sb.WriteString(strings.Repeat(" ", maxWidth-len(row.left)))
			if row.entry != nil && !row.entry.Required() {
				if _, hasDefault := row.entry.Default(); !hasDefault && !row.entry.Kind().IsBoolean() {
					sb.WriteString("(optional) ")
				}
			}
			sb.WriteString(row.usage)
			if notes != "" {
				if row.usage != "" {
					if !strings.HasSuffix(row.usage, ".") {
						sb.WriteString(".")
					}
					sb.WriteString(" ")
				}
				sb.WriteString(notes)
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func entryNotes(e Entry) string {
	if e == nil {
		return ""
	}
	if def, ok := e.Default(); ok {
		return fmt.Sprintf("(default %v)", def)
	}
	return ""
}
