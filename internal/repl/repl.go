// internal/repl/repl.go
package repl

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/peterh/liner"
	"github.com/pkg/errors"

	"sst/internal/runner"
)

const (
	prompt      = ">>> "
	historyName = ".sst_history"
)

// Start runs the interactive loop. Bindings persist across lines;
// Ctrl+D or 'exit' leaves the loop and releases the root scope.
func Start() error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	histPath := historyPath()
	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
	}

	fmt.Println("sst repl | type 'exit' or Ctrl+D to quit")

	session := runner.NewSession(os.Stdout)
	defer session.Close()

	for {
		input, err := line.Prompt(prompt)
		if err == liner.ErrPromptAborted {
			continue
		}
		if err != nil { // io.EOF on Ctrl+D
			break
		}
		if input == "" {
			continue
		}
		if input == "exit" {
			break
		}
		line.AppendHistory(input)

		if err := session.Eval(input); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}

	if histPath != "" {
		if err := writeHistory(line, histPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
	return nil
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, historyName)
}

func writeHistory(line *liner.State, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "saving repl history")
	}
	defer f.Close()
	_, err = line.WriteHistory(f)
	return errors.Wrap(err, "saving repl history")
}
