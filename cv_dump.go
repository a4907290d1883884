package convoker

import (
	"fmt"
	"os"
	"strings"
)

// GenerateDump describes the command tree below c and the arguments it would parse.
func (c *Cmd) GenerateDump(args []string) string {
	return c.generateDumpWithDepth(args, 0)
}

func (c *Cmd) generateDumpWithDepth(args []string, depth int) string {
	var sb strings.Builder

	if depth == 0 {
		sb.WriteString(GreenBoldS("Convoker Command Dump") + "\n")
		sb.WriteString(strings.Repeat("=", 50) + "\n\n")
	} else {
		indent := strings.Repeat("  ", depth)
		sb.WriteString(fmt.Sprintf("%s%s (%s)\n", indent, GreenBoldS("Subcommand Dump"), BoldS(c.FullName())))
		sb.WriteString(fmt.Sprintf("%s%s\n\n", indent, strings.Repeat("-", 30)))
	}

	sb.WriteString(c.generateCommandInfoSection(depth))
	if depth == 0 {
		sb.WriteString(generateArgumentsToParseSection(args))
	}
	sb.WriteString(c.generateInputSection(depth))
	if depth == 0 {
		sb.WriteString(generateEnvironmentSection())
	}

	if len(c.childOrder) > 0 {
		if depth == 0 {
			sb.WriteString("\n" + GreenBoldS("Subcommand Details:") + "\n")
			sb.WriteString(strings.Repeat("=", 50) + "\n\n")
		}
		for i, sub := range c.childOrder {
			sb.WriteString(sub.generateDumpWithDepth(nil, depth+1))
			if i != len(c.childOrder)-1 {
				sb.WriteString("\n")
			}
		}
	}

	return sb.String()
}

func (c *Cmd) generateCommandInfoSection(depth int) string {
	var sb strings.Builder
	indent := strings.Repeat("  ", depth)

	sb.WriteString(fmt.Sprintf("%s%s\n", indent, GreenBoldS("Command Information:")))
	sb.WriteString(fmt.Sprintf("%s  Name: %s\n", indent, BoldS(c.Name())))
	if len(c.names) > 1 {
		sb.WriteString(fmt.Sprintf("%s  Aliases: %s\n", indent, BoldS(strings.Join(c.names[1:], ", "))))
	}
	writeSetting(&sb, indent, "Description", c.description)
	writeSetting(&sb, indent, "Version", c.version)

	sb.WriteString(fmt.Sprintf("%s  Allow Unknown Options: %s\n", indent, BoldS(fmt.Sprintf("%t", c.allowUnknownOptions))))
	sb.WriteString(fmt.Sprintf("%s  Allow Surpass Arg Limit: %s\n", indent, BoldS(fmt.Sprintf("%t", c.allowSurpassArgLimit))))

	writeHook(&sb, indent, "Action", c.action != nil)
	writeHook(&sb, indent, "Help Handler", c.help != nil)
	writeHook(&sb, indent, "Error Handler", c.errorHandler != nil)
	sb.WriteString(fmt.Sprintf("%s  Middleware: %s\n", indent, BoldS(fmt.Sprintf("%d", len(c.middlewares)))))

	if len(c.childOrder) > 0 {
		names := make([]string, 0, len(c.childOrder))
		for _, sub := range c.childOrder {
			names = append(names, sub.Name())
		}
		sb.WriteString(fmt.Sprintf("%s  Subcommands (%d): %s\n", indent, len(names), BoldS(strings.Join(names, ", "))))
	} else {
		sb.WriteString(fmt.Sprintf("%s  Subcommands: %s\n", indent, CyanS("none")))
	}

	sb.WriteString("\n")
	return sb.String()
}

func writeSetting(sb *strings.Builder, indent, label, value string) {
	if value != "" {
		sb.WriteString(fmt.Sprintf("%s  %s: %s\n", indent, label, BoldS(value)))
	} else {
		sb.WriteString(fmt.Sprintf("%s  %s: %s\n", indent, label, CyanS("<not set>")))
	}
}

func writeHook(sb *strings.Builder, indent, label string, set bool) {
	if set {
		sb.WriteString(fmt.Sprintf("%s  %s: %s\n", indent, label, BoldS("set")))
	} else {
		sb.WriteString(fmt.Sprintf("%s  %s: %s\n", indent, label, CyanS("not set")))
	}
}

func generateArgumentsToParseSection(args []string) string {
	var sb strings.Builder
	sb.WriteString(GreenBoldS("Arguments to Parse:") + "\n")

	if len(args) == 0 {
		sb.WriteString("  " + CyanS("<no arguments>") + "\n")
	} else {
		for i, arg := range args {
			sb.WriteString(fmt.Sprintf("  [%d]: %s\n", i, BoldS(fmt.Sprintf("%q", arg))))
		}
	}

	sb.WriteString("\n")
	return sb.String()
}

func (c *Cmd) generateInputSection(depth int) string {
	var sb strings.Builder
	indent := strings.Repeat("  ", depth)

	positionals := c.input.positionals()
	options := c.input.options()

	sb.WriteString(fmt.Sprintf("%s%s\n", indent, GreenBoldS("Input Schema:")))
	sb.WriteString(fmt.Sprintf("%s  Total Fields: %s\n", indent, BoldS(fmt.Sprintf("%d", c.input.Len()))))
	sb.WriteString(fmt.Sprintf("%s  Positionals: %s\n", indent, BoldS(fmt.Sprintf("%d", len(positionals)))))
	sb.WriteString(fmt.Sprintf("%s  Options: %s\n", indent, BoldS(fmt.Sprintf("%d", len(options)))))
	sb.WriteString("\n")

	if len(positionals) > 0 {
		sb.WriteString(fmt.Sprintf("%s%s\n", indent, GreenBoldS("  Positionals (in order):")))
		index := 0
		c.input.each(func(key string, e Entry) {
			if _, ok := e.(*Positional); ok {
				sb.WriteString(fmt.Sprintf("%s    [%d] %s\n", indent, index, formatEntryForDump(key, e)))
				index++
			}
		})
		sb.WriteString("\n")
	}

	if len(options) > 0 {
		sb.WriteString(fmt.Sprintf("%s%s\n", indent, GreenBoldS("  Options:")))
		c.input.each(func(key string, e Entry) {
			if _, ok := e.(*Option); ok {
				sb.WriteString(fmt.Sprintf("%s    %s\n", indent, formatEntryForDump(key, e)))
			}
		})
		sb.WriteString("\n")
	}

	return sb.String()
}

func generateEnvironmentSection() string {
	var sb strings.Builder
	sb.WriteString(GreenBoldS("Environment:") + "\n")

	for _, name := range []string{"CONVOKER_COLOR", "CONVOKER_LOG_LEVEL"} {
		if value := os.Getenv(name); value != "" {
			sb.WriteString(fmt.Sprintf("  %s: %s\n", name, BoldS(value)))
		} else {
			sb.WriteString(fmt.Sprintf("  %s: %s\n", name, CyanS("not set")))
		}
	}

	return sb.String()
}

// formatEntryForDump formats an entry with all of its settings on one line.
func formatEntryForDump(key string, e Entry) string {
	var parts []string

	if opt, ok := e.(*Option); ok {
		parts = append(parts, fmt.Sprintf("%s (%s)", BoldS(key), formatOptionNames(opt.names)))
	} else {
		parts = append(parts, BoldS(key))
	}

	kind := e.Kind().String()
	if e.IsList() {
		kind = fmt.Sprintf("%s list sep:%q", kind, e.Separator())
	}
	parts = append(parts, fmt.Sprintf("type:%s", CyanS(kind)))

	if e.Required() {
		parts = append(parts, "required")
	} else {
		parts = append(parts, "optional")
	}
	if def, ok := e.Default(); ok {
		parts = append(parts, fmt.Sprintf("default:%v", def))
	}
	if e.Description() != "" {
		parts = append(parts, fmt.Sprintf("usage:%q", e.Description()))
	}

	return strings.Join(parts, " ")
}
