package server

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"
	"unicode/utf8"

	"github.com/bastiangx/wordrank/internal/logger"
	"github.com/bastiangx/wordrank/internal/utils"
	"github.com/bastiangx/wordrank/pkg/config"
	"github.com/bastiangx/wordrank/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

const codeBadRequest = 400

// Server handles the IPC for phrase completions
type Server struct {
	completer    suggest.ICompleter
	config       *config.Config
	configPath   string
	decoder      *msgpack.Decoder
	encoder      *msgpack.Encoder
	logger       *log.Logger
	requestCount int
}

// NewServer creates a completion server using stdin/stdout for IPC.
// configPath may be empty, which disables config reloading.
func NewServer(completer suggest.ICompleter, cfg *config.Config, configPath string) *Server {
	return NewServerWithIO(completer, cfg, configPath, os.Stdin, os.Stdout)
}

// NewServerWithIO is NewServer over arbitrary streams.
func NewServerWithIO(completer suggest.ICompleter, cfg *config.Config, configPath string, in io.Reader, out io.Writer) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Server{
		completer:  completer,
		config:     cfg,
		configPath: configPath,
		decoder:    msgpack.NewDecoder(in),
		encoder:    msgpack.NewEncoder(out),
		logger:     logger.New("server"),
	}
}

// Start writes the ready message and serves requests until the input ends.
// A clean EOF returns nil, an undecodable message returns the decode error.
func (s *Server) Start() error {
	s.logger.Debug("Starting server")
	if err := s.send(StatusResponse{Status: "ready"}); err != nil {
		return err
	}

	for {
		var req Request
		if err := s.decoder.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				s.logger.Debugf("Input closed after %d requests", s.requestCount)
				return nil
			}
			s.logger.Errorf("Decoding request: %v", err)
			return fmt.Errorf("decoding request: %w", err)
		}
		if err := s.handleRequest(req); err != nil {
			return err
		}
	}
}

// handleRequest dispatches one request. Only write failures are returned.
func (s *Server) handleRequest(req Request) error {
	s.requestCount++
	if every := s.config.Server.ReloadEvery; every > 0 && s.requestCount%every == 0 {
		s.reloadConfig()
	}

	switch req.Action {
	case "", "complete":
		return s.handleComplete(req)
	case "lookup":
		return s.handleLookup(req)
	case "stats":
		return s.send(StatsResponse{ID: req.ID, Status: "ok", Stats: s.completer.Stats()})
	case "health":
		return s.send(StatusResponse{ID: req.ID, Status: "ok"})
	default:
		return s.sendError(req.ID, fmt.Sprintf("unknown action: %s", req.Action), codeBadRequest)
	}
}

func (s *Server) handleComplete(req Request) error {
	cfg := s.config.Server
	prefix := req.Prefix

	if n := utf8.RuneCountInString(prefix); n > cfg.MaxPrefix {
		s.logger.Debugf("Prefix too long: %d > %d", n, cfg.MaxPrefix)
		return s.sendError(req.ID, fmt.Sprintf("prefix exceeds %d characters", cfg.MaxPrefix), codeBadRequest)
	}

	limit := req.Limit
	if limit < 1 {
		limit = cfg.DefaultLimit
	}
	if limit > cfg.MaxLimit {
		limit = cfg.MaxLimit
	}

	start := time.Now()
	var suggestions []suggest.Suggestion
	if !cfg.EnableFilter || utils.IsValidInput(prefix) {
		suggestions = s.completer.Complete(prefix, limit)
	} else {
		s.logger.Debugf("Filtered input %q", prefix)
	}
	elapsed := time.Since(start)

	ranks := utils.CreateRankList(len(suggestions))
	resp := CompletionResponse{
		ID:          req.ID,
		Suggestions: make([]CompletionSuggestion, len(suggestions)),
		Count:       len(suggestions),
		TimeTaken:   elapsed.Microseconds(),
	}
	for i, sg := range suggestions {
		resp.Suggestions[i] = CompletionSuggestion{Word: sg.Word, Frequency: sg.Frequency, Rank: ranks[i]}
		resp.Fuzzy = resp.Fuzzy || sg.WasCorrected
	}
	return s.send(resp)
}

func (s *Server) handleLookup(req Request) error {
	sg, found := s.completer.Lookup(req.Phrase)
	return s.send(LookupResponse{ID: req.ID, Status: "ok", Found: found, Frequency: sg.Frequency})
}

// reloadConfig re-reads the config file, keeping the current config when
// it cannot be loaded.
func (s *Server) reloadConfig() {
	if s.configPath == "" {
		return
	}
	cfg, err := config.LoadConfig(s.configPath)
	if err != nil {
		s.logger.Warnf("Keeping current config, reload from %s failed: %v", s.configPath, err)
		return
	}
	s.config = cfg
	s.logger.Debugf("Reloaded config after %d requests", s.requestCount)
}

func (s *Server) send(v any) error {
	if err := s.encoder.Encode(v); err != nil {
		s.logger.Errorf("Encoding response: %v", err)
		return fmt.Errorf("encoding response: %w", err)
	}
	return nil
}

func (s *Server) sendError(id, message string, code int) error {
	return s.send(CompletionError{ID: id, Error: message, Code: code})
}
