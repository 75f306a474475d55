package console

import (
	"fmt"
	"io"
	"os"
	"sort"
)

// Command is a console command run by the Kernel
type Command interface {
	GetSignature() string
	GetDescription() string
	Execute(args []string) error
}

type Kernel struct {
	Out      io.Writer
	commands map[string]Command
}

// NewKernel returns a kernel writing to out (stdout when nil) with the
// built-in commands registered
func NewKernel(out io.Writer) *Kernel {
	k := &Kernel{Out: out, commands: make(map[string]Command)}
	k.RegisterCommands()
	return k
}

func (k *Kernel) Register(cmd Command) {
	k.commands[cmd.GetSignature()] = cmd
}

// Commands returns the registered commands sorted by signature
func (k *Kernel) Commands() []Command {
	out := make([]Command, 0, len(k.commands))
	for _, cmd := range k.commands {
		out = append(out, cmd)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].GetSignature() < out[j].GetSignature()
	})
	return out
}

// Run executes args[0] with the remaining args; no args lists the commands
func (k *Kernel) Run(args []string) error {
	if len(args) == 0 {
		args = []string{"list"}
	}

	cmd, ok := k.commands[args[0]]
	if !ok {
		return fmt.Errorf("command %q not found, run \"list\" to see available commands", args[0])
	}
	return cmd.Execute(args[1:])
}

func (k *Kernel) out() io.Writer {
	if k.Out == nil {
		return os.Stdout
	}
	return k.Out
}

type ListCommand struct {
	kernel *Kernel
}

func (c *ListCommand) GetSignature() string {
	return "list"
}

func (c *ListCommand) GetDescription() string {
	return "List available commands"
}

func (c *ListCommand) Execute(args []string) error {
	w := c.kernel.out()
	fmt.Fprintln(w, "Available commands:")
	for _, cmd := range c.kernel.Commands() {
		fmt.Fprintf(w, "  %-16s %s\n", cmd.GetSignature(), cmd.GetDescription())
	}
	return nil
}
