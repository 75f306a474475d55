package commands

import (
	"bufio"
	"embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"
)

//go:embed stubs
var stubs embed.FS

// LibraryModule is the import path generated files use for this library
const LibraryModule = "github.com/galaplate/fixture"

var validName = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// BaseCommand provides common functionality for all commands
type BaseCommand struct {
	Out io.Writer
	In  io.Reader
}

func (b *BaseCommand) out() io.Writer {
	if b.Out == nil {
		return os.Stdout
	}
	return b.Out
}

func (b *BaseCommand) in() io.Reader {
	if b.In == nil {
		return os.Stdin
	}
	return b.In
}

// AskRequired prompts for required input (won't accept empty)
func (b *BaseCommand) AskRequired(prompt string) string {
	scanner := bufio.NewScanner(b.in())
	for {
		fmt.Fprintf(b.out(), "%s: ", prompt)
		if !scanner.Scan() {
			return ""
		}
		if input := strings.TrimSpace(scanner.Text()); input != "" {
			return input
		}
		fmt.Fprintln(b.out(), "❌ This field is required. Please try again.")
	}
}

// GetModuleName reads the module path from the nearest go.mod at or above the working directory
func (b *BaseCommand) GetModuleName() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		module, err := readModule(filepath.Join(dir, "go.mod"))
		if err == nil {
			return module, nil
		}
		if !os.IsNotExist(err) {
			return "", err
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found")
		}
		dir = parent
	}
}

func readModule(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "module ") {
			parts := strings.Fields(line)
			if len(parts) >= 2 {
				return parts[1], nil
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return "", err
	}

	return "", fmt.Errorf("module not found in %s", path)
}

func (b *BaseCommand) FormatStructName(name string) string {
	re := regexp.MustCompile(`[_\-\s]+`)
	words := re.Split(name, -1)

	var result string
	for _, word := range words {
		if len(word) > 0 {
			result += strings.ToUpper(word[:1]) + word[1:]
		}
	}

	return result
}

// ValidateName checks name is a Go identifier; suffix, when set, must end it
func (b *BaseCommand) ValidateName(name, suffix string) error {
	if !validName.MatchString(name) {
		return fmt.Errorf("invalid name %q: use letters, digits and underscores, starting with a letter", name)
	}
	if suffix != "" && !strings.HasSuffix(b.FormatStructName(name), suffix) {
		return fmt.Errorf("invalid name %q: must end with %s", name, suffix)
	}
	return nil
}

// PrintSuccess prints a success message with checkmark
func (b *BaseCommand) PrintSuccess(message string) {
	fmt.Fprintf(b.out(), "✅ %s\n", message)
}

// PrintError prints an error message with X mark
func (b *BaseCommand) PrintError(message string) {
	fmt.Fprintf(b.out(), "❌ %s\n", message)
}

// PrintInfo prints an info message with info symbol
func (b *BaseCommand) PrintInfo(message string) {
	fmt.Fprintf(b.out(), "ℹ️  %s\n", message)
}

// GenerateFromStub renders an embedded stub template into targetPath
func (b *BaseCommand) GenerateFromStub(stubPath, targetPath string, data any) error {
	stubContent, err := stubs.ReadFile("stubs/" + stubPath)
	if err != nil {
		return fmt.Errorf("stub template not found: %s", stubPath)
	}

	tmpl, err := template.New("stub").Parse(string(stubContent))
	if err != nil {
		return fmt.Errorf("failed to parse stub template: %v", err)
	}

	// Create target directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(targetPath), 0755); err != nil {
		return fmt.Errorf("failed to create target directory: %v", err)
	}

	file, err := os.Create(targetPath)
	if err != nil {
		return fmt.Errorf("failed to create target file: %v", err)
	}
	defer file.Close()

	if err := tmpl.Execute(file, data); err != nil {
		return fmt.Errorf("failed to execute template: %v", err)
	}

	return nil
}
