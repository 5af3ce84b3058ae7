// Package cli handles cmd line input and suggestions for DBG and testing various features
package cli

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bastiangx/wordrank/internal/logger"
	"github.com/bastiangx/wordrank/internal/utils"
	"github.com/bastiangx/wordrank/pkg/suggest"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

var (
	wordStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#286983", Dark: "#9ccfd8"})
	fuzzyStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.AdaptiveColor{Light: "#b4637a", Dark: "#eb6f92"})
)

// InputHandler reads prefixes line by line and prints their completions.
// Lines starting with ':' are commands: ":lookup <phrase>" and ":stats".
type InputHandler struct {
	completer       suggest.ICompleter
	maxPrefixLength int
	suggestLimit    int
	noFilter        bool
	in              io.Reader
	logger          *log.Logger
}

// NewInputHandler handles initialization of the InputHandler with basic parameters
func NewInputHandler(completer suggest.ICompleter, maxLength, limit int, noFilter bool, in io.Reader, out io.Writer) *InputHandler {
	return &InputHandler{
		completer:       completer,
		maxPrefixLength: maxLength,
		suggestLimit:    limit,
		noFilter:        noFilter,
		in:              in,
		logger:          logger.NewWithWriter(out, ""),
	}
}

// Start runs the prompt loop until the input ends.
func (h *InputHandler) Start() error {
	h.logger.Print("wordrank CLI")
	h.logger.Print("type something and press Enter to see the suggestions (Ctrl+C to exit):")

	reader := bufio.NewReader(h.in)
	for {
		line, err := reader.ReadString('\n')
		if line = strings.TrimSpace(line); line != "" {
			h.handleInput(line)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

func (h *InputHandler) handleInput(line string) {
	switch {
	case line == ":stats":
		stats := h.completer.Stats()
		h.logger.Print("corpus",
			"words", utils.FormatWithCommas(stats["totalWords"]),
			"maxFreq", utils.FormatWithCommas(stats["maxFrequency"]),
			"treeNodes", utils.FormatWithCommas(stats["treeNodes"]))
		return
	case strings.HasPrefix(line, ":lookup "):
		phrase := strings.TrimSpace(strings.TrimPrefix(line, ":lookup "))
		if s, ok := h.completer.Lookup(phrase); ok {
			h.logger.Printf("%s (freq: %s)", wordStyle.Render(phrase), utils.FormatWithCommas(s.Frequency))
		} else {
			h.logger.Warnf("Not in corpus: '%s'", phrase)
		}
		return
	}

	if utf8.RuneCountInString(line) > h.maxPrefixLength {
		h.logger.Errorf("Prefix too long: %s", line)
		return
	}

	if !h.noFilter && !utils.IsValidInput(line) {
		h.logger.Infof("Filtered input: '%s'", line)
		return
	}

	start := time.Now()
	suggestions := h.completer.Complete(line, h.suggestLimit)
	h.logger.Debugf("Took [ %v ] for prefix '%s'", time.Since(start), line)

	if len(suggestions) == 0 {
		h.logger.Warnf("No suggestions found for prefix: '%s'", line)
		return
	}

	header := "Found %d suggestions for prefix '%s':"
	if suggestions[0].WasCorrected {
		header = "Found %d " + fuzzyStyle.Render("corrected") + " suggestions for '%s':"
	}
	h.logger.Printf(header, len(suggestions), line)
	for i, s := range suggestions {
		fmtFreq := utils.FormatWithCommas(s.Frequency)
		if s.WasCorrected {
			h.logger.Printf("%2d. %-40s (freq: %8s, dist: %d)", i+1, wordStyle.Render(s.Word), fmtFreq, s.Distance)
			continue
		}
		h.logger.Printf("%2d. %-40s (freq: %8s)", i+1, wordStyle.Render(s.Word), fmtFreq)
	}
}
