package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/jessevdk/go-flags"
	"github.com/karupanerura/prolog-reader/internal/config"
	"github.com/karupanerura/prolog-reader/internal/defaults"
	"github.com/karupanerura/prolog-reader/internal/program"
	"github.com/karupanerura/prolog-reader/internal/reader"
	"github.com/karupanerura/prolog-reader/internal/server"
	"github.com/karupanerura/prolog-reader/internal/types"
	"github.com/mattn/go-isatty"
	"golang.org/x/sync/errgroup"
)

type Option struct {
	Config      string `short:"c" long:"config" description:"[OPTIONAL] Configuration file (YAML or JSON)" required:"false"`
	Query       string `short:"q" long:"query" description:"[OPTIONAL] Prolog text to read instead of files" required:"false"`
	Interactive bool   `short:"i" long:"interactive" description:"[OPTIONAL] Read sentences from the terminal" required:"false"`
	Listen      string `short:"l" long:"listen" description:"[OPTIONAL] Listen host and port to serve the reader API" required:"false"`
	Canonical   bool   `long:"canonical" description:"[OPTIONAL] Print terms in canonical form instead of JSON" required:"false"`
	Args        struct {
		Files []string `positional-arg-name:"FILE"`
	} `positional-args:"yes"`
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var opt Option
	parser := flags.NewParser(&opt, flags.Default)
	_, err := parser.ParseArgs(args)
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			return 0
		} else {
			parser.WriteHelp(os.Stdout)
			return 1
		}
	}
	if countModes(opt) != 1 {
		parser.WriteHelp(os.Stdout)
		return 1
	}

	// server mode
	if opt.Listen != "" {
		err = serve(opt.Listen, func() (server.Environment, error) {
			return loadEnvironment(opt.Config)
		})
		if err != nil {
			log.Printf("failed to serve reader: %v", err)
			return 1
		}
		return 0
	}

	env, err := loadEnvironment(opt.Config)
	if err != nil {
		log.Printf("failed to load config: %v", err)
		return 1
	}

	if opt.Interactive {
		return repl(env, opt.Canonical)
	}

	sources := make([]source, 0, len(opt.Args.Files)+1)
	if opt.Query != "" {
		sources = append(sources, source{consult: func(s *program.Session) (*program.Result, error) {
			return s.ConsultString(opt.Query)
		}})
	}
	for _, filePath := range opt.Args.Files {
		filePath := filePath
		sources = append(sources, source{name: filePath, consult: func(s *program.Session) (*program.Result, error) {
			return consultFile(s, filePath)
		}})
	}

	// each source is read in a session of its own
	results := make([]*program.Result, len(sources))
	eg := errgroup.Group{}
	for i, src := range sources {
		i := i
		src := src
		eg.Go(func() error {
			result, err := src.consult(program.NewSession(env.Operators, env.Flags))
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		log.Printf("failed to read: %v", err)
		return 1
	}

	status := 0
	for i, result := range results {
		if len(result.Errors) != 0 {
			status = 1
		}
		if opt.Canonical {
			err = dumpCanonical(os.Stdout, os.Stderr, result)
		} else if sources[i].name == "" {
			err = dumpJSON(os.Stdout, result.JSON())
		} else {
			err = dumpJSON(os.Stdout, map[string]any{"file": sources[i].name, "result": result.JSON()})
		}
		if err != nil {
			log.Printf("failed to dump result: %v", err)
			return 1
		}
	}
	return status
}

type source struct {
	name    string
	consult func(*program.Session) (*program.Result, error)
}

func countModes(opt Option) int {
	n := 0
	if opt.Listen != "" {
		n++
	}
	if opt.Interactive {
		n++
	}
	if opt.Query != "" || len(opt.Args.Files) != 0 {
		n++
	}
	return n
}

func loadEnvironment(configPath string) (server.Environment, error) {
	cfg := config.Default()
	if configPath != "" {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return server.Environment{}, err
		}
	}

	ops, err := cfg.OperatorTable(defaults.DefaultOperatorTable)
	if err != nil {
		return server.Environment{}, err
	}
	return server.Environment{Operators: ops, Flags: cfg.Flags}, nil
}

func consultFile(session *program.Session, filePath string) (*program.Result, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("os.Open(%q): %w", filePath, err)
	}
	defer f.Close()

	result, err := session.Consult(reader.NewLineReader(f))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}
	return result, nil
}

func serve(listen string, loader func() (server.Environment, error)) error {
	handler, err := server.NewHTTPHandler(loader, 5*time.Second)
	if err != nil {
		return err
	}

	srv := http.Server{
		Handler: handler,
		Addr:    listen,
	}

	log.Printf("Listen HTTP on %s", listen)
	if err := srv.ListenAndServe(); errors.Is(err, http.ErrServerClosed) {
		return nil
	} else if err != nil {
		return err
	}
	return nil
}

func dumpCanonical(w, errW io.Writer, result *program.Result) error {
	for _, sentence := range result.Clauses {
		if _, err := fmt.Fprintf(w, "%s.\n", sentence.Term); err != nil {
			return fmt.Errorf("fmt.Fprintf: %w", err)
		}
	}
	for _, err := range result.Errors {
		if _, err := fmt.Fprintln(errW, errorMessage(err)); err != nil {
			return fmt.Errorf("fmt.Fprintln: %w", err)
		}
	}
	return nil
}

func errorMessage(err error) string {
	var b strings.Builder
	b.WriteString(err.Error())
	if line := strings.TrimSpace(types.ErrorLine(err)); line != "" {
		b.WriteString("\n    ")
		b.WriteString(line)
	}
	return b.String()
}

func dumpJSON(w io.Writer, v any) error {
	opts := []json.EncodeOptionFunc{json.DisableHTMLEscape()}
	if f, ok := w.(interface{ Fd() uintptr }); ok {
		if isatty.IsTerminal(f.Fd()) {
			opts = append(opts, json.Colorize(json.DefaultColorScheme))
		}
	}

	b, err := json.MarshalIndentWithOption(v, "", "\t", opts...)
	if err != nil {
		return fmt.Errorf("json.MarshalIndentWithOption: %w", err)
	}

	if _, err = w.Write(b); err != nil {
		return fmt.Errorf("w.Write: %w", err)
	}
	if _, err = io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("io.WriteString: %w", err)
	}
	return nil
}
