// Package repl is an interactive calculator for namespaced storage
// slots. Each line read is treated as a namespace id and answered with
// its slot.
package repl

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"namespacer/internal/slot"
)

const prompt = ">> "

// Start runs the read-eval-print loop until EOF or an "exit" command.
func Start() error {
	rl, err := readline.New(prompt)
	if err != nil {
		return fmt.Errorf("failed to start interactive session: %w", err)
	}
	defer rl.Close()

	fmt.Println("Enter a namespace id (for example: erc7201:example.main or example.main).")
	fmt.Println("Type \"exit\" or press Ctrl-D to quit.")

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		id := strings.TrimSpace(line)
		switch id {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		id = strings.TrimPrefix(id, "erc7201:")
		fmt.Printf("%s\n", slot.Hash(id))
	}
}
