package server

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/karupanerura/prolog-reader/internal/program"
	"github.com/karupanerura/prolog-reader/internal/reader"
	"github.com/karupanerura/prolog-reader/internal/types"
)

const maxRequestBodySize = 1 << 20

// Environment is the operator table and the flags every request starts from.
type Environment struct {
	Operators *types.OperatorTable
	Flags     types.Flags
}

type httpHandler struct {
	env atomic.Value
}

func (h *httpHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/v1/read":
		if r.Method != http.MethodPost {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		h.read(w, r)

	case "/v1/tokens":
		if r.Method != http.MethodPost {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		h.tokens(w, r)

	case "/v1/operators":
		if r.Method != http.MethodGet {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		h.operators(w, r)

	default:
		http.Error(w, "Not Found", http.StatusNotFound)
	}
}

func (h *httpHandler) environment() Environment {
	return h.env.Load().(Environment)
}

// read consults the request body in a session of its own; op/3 directives
// in the body do not leak into other requests.
func (h *httpHandler) read(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	env := h.environment()
	session := program.NewSession(env.Operators, env.Flags)
	result, err := session.Consult(reader.NewLineReader(http.MaxBytesReader(w, r.Body, maxRequestBodySize)))
	if err != nil {
		log.Printf("failed to read request body: %v", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	status := http.StatusOK
	if len(result.Errors) != 0 {
		status = http.StatusUnprocessableEntity
	}
	if err := resJSON(w, status, result.JSON()); err != nil {
		log.Printf("failed to write response: %v", err)
	}
}

func (h *httpHandler) tokens(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	flags := h.environment().Flags
	flags.KeepComments = r.URL.Query().Get("comments") == "true"

	tokenizer := reader.NewTokenizer(reader.NewLineReader(http.MaxBytesReader(w, r.Body, maxRequestBodySize)), &flags)
	tokens := []map[string]any{}
	for {
		tok, err := tokenizer.Next()
		if types.IsSyntaxError(err) {
			if err := resJSON(w, http.StatusUnprocessableEntity, map[string]any{"tokens": tokens, "error": program.ErrorJSON(err)}); err != nil {
				log.Printf("failed to write response: %v", err)
			}
			return
		} else if err != nil {
			log.Printf("failed to tokenize request body: %v", err)
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}
		if tok.Kind == reader.EOFToken {
			break
		}

		tokens = append(tokens, map[string]any{
			"kind":   tok.Kind.String(),
			"text":   tok.Text,
			"line":   tok.Line,
			"column": tok.Column,
		})
	}

	if err := resJSON(w, http.StatusOK, map[string]any{"tokens": tokens}); err != nil {
		log.Printf("failed to write response: %v", err)
	}
}

func (h *httpHandler) operators(w http.ResponseWriter, r *http.Request) {
	ops := h.environment().Operators.Operators()
	if err := resJSON(w, http.StatusOK, map[string][]types.Operator{"operators": ops}); err != nil {
		log.Printf("failed to write response: %v", err)
	}
}

// NewHTTPHandler serves reads in the environment returned by loader. The
// environment is reloaded every interval; a failed reload keeps the
// previous one.
func NewHTTPHandler(loader func() (Environment, error), interval time.Duration) (http.Handler, error) {
	env, err := loader()
	if err != nil {
		return nil, err
	}

	h := &httpHandler{}
	h.env.Store(env)
	if interval > 0 {
		go func() {
			t := time.NewTicker(interval)
			for range t.C {
				env, err := loader()
				if err != nil {
					log.Printf("failed to reload environment: %v", err)
					continue
				}
				h.env.Store(env)
			}
		}()
	}
	return h, nil
}

func resJSON(w http.ResponseWriter, status int, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("json.MarshalIndent: %w", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(len(b)+1))
	w.WriteHeader(status)

	if _, err = w.Write(b); err != nil {
		return fmt.Errorf("w.Write: %w", err)
	}
	if _, err = io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("io.WriteString: %w", err)
	}
	return nil
}
