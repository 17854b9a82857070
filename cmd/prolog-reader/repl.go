package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/karupanerura/prolog-reader/internal/program"
	"github.com/karupanerura/prolog-reader/internal/server"
	"github.com/karupanerura/prolog-reader/internal/types"
	"github.com/mattn/go-isatty"
	"github.com/peterh/liner"
)

const (
	historyFile = ".prolog_reader_history"
	promptMain  = "?- "
	promptCont  = "|    "
)

// promptLineReader feeds the reader with lines typed at the terminal. The
// continuation prompt is shown until the reader completes a sentence.
type promptLineReader struct {
	ln    *liner.State
	fresh bool
}

func (r *promptLineReader) ReadLine() (string, error) {
	prompt := promptCont
	if r.fresh {
		prompt = promptMain
	}
	r.fresh = false

	line, err := r.ln.Prompt(prompt)
	if errors.Is(err, liner.ErrPromptAborted) {
		return "", io.EOF
	} else if err != nil {
		return "", err
	}
	if line != "" {
		r.ln.AppendHistory(line)
	}
	return line + "\n", nil
}

func repl(env server.Environment, canonical bool) int {
	if !isatty.IsTerminal(os.Stdin.Fd()) {
		fmt.Fprintln(os.Stderr, "interactive mode needs a terminal")
		return 1
	}

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	session := program.NewSession(env.Operators, env.Flags)
	lr := &promptLineReader{ln: ln, fresh: true}
	r := session.Reader(lr)
	for {
		sentence, err := r.Next()
		lr.fresh = true
		if errors.Is(err, io.EOF) {
			fmt.Println()
			return 0
		} else if types.IsSyntaxError(err) {
			fmt.Fprintln(os.Stderr, errorMessage(err))
			continue
		} else if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		handled, err := session.Apply(sentence)
		if err != nil {
			fmt.Fprintln(os.Stderr, errorMessage(err))
			continue
		}
		if handled {
			fmt.Println("true.")
			continue
		}

		if canonical {
			fmt.Printf("%s.\n", sentence.Term)
		} else if err := dumpJSON(os.Stdout, program.SentenceJSON(sentence)); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
}
