package relay

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"regexp"
)

// Command is an operator instruction to join two boards.
type Command struct {
	Orientation string // "h" or "v"
	First       string
	Second      string
}

var commandPattern = regexp.MustCompile(`^\s*(h|v)\s+([A-Za-z_][A-Za-z_0-9]*)\s+([A-Za-z_][A-Za-z_0-9]*)\s*$`)

// ParseCommand accepts "h LEFT RIGHT" or "v TOP BOTTOM".
func ParseCommand(line string) (Command, error) {
	m := commandPattern.FindStringSubmatch(line)
	if m == nil {
		return Command{}, fmt.Errorf("invalid command %q: expected 'h NAME NAME' or 'v NAME NAME'", line)
	}
	return Command{Orientation: m[1], First: m[2], Second: m[3]}, nil
}

func (c Command) String() string {
	return c.Orientation + " " + c.First + " " + c.Second
}

// Apply performs a parsed operator command.
func (r *Relay) Apply(cmd Command) error {
	switch cmd.Orientation {
	case "h":
		return r.JoinHorizontal(cmd.First, cmd.Second)
	case "v":
		return r.JoinVertical(cmd.First, cmd.Second)
	}
	return fmt.Errorf("unknown orientation %q", cmd.Orientation)
}

// RunConsole reads operator commands from in until EOF or ctx is done.
func (r *Relay) RunConsole(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		line := scanner.Text()
		cmd, err := ParseCommand(line)
		if err != nil {
			fmt.Fprintln(out, err)
			continue
		}
		if err := r.Apply(cmd); err != nil {
			fmt.Fprintf(out, "%s: %v\n", cmd, err)
			continue
		}
		log.Printf("[CONSOLE] %s", cmd)
	}
	return scanner.Err()
}
