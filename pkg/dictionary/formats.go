package dictionary

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// FileFormat represents the corpus file formats
type FileFormat int

const (
	FormatUnknown FileFormat = iota
	FormatText               // phrase[:frequency] per line
	FormatBinary             // count-prefixed binary entries
)

func (f FileFormat) String() string {
	if info, ok := supportedFormats[f]; ok {
		return info.Description
	}
	return "unknown"
}

// FormatInfo contains metadata about a corpus file format
type FormatInfo struct {
	Format      FileFormat
	Description string
	Extensions  []string
	MinSize     int64 // Minimum expected file size in bytes
}

var supportedFormats = map[FileFormat]FormatInfo{
	FormatText: {
		Format:      FormatText,
		Description: "Plain Text Corpus",
		Extensions:  []string{".txt", ".dict", ".csv", ""},
		MinSize:     0,
	},
	FormatBinary: {
		Format:      FormatBinary,
		Description: "Binary Dictionary",
		Extensions:  []string{".bin"},
		MinSize:     4, // entry count header
	},
}

// formatByExtension picks the decoder Load uses. Anything that is not .bin
// is read as text.
func formatByExtension(filename string) FileFormat {
	if strings.EqualFold(filepath.Ext(filename), ".bin") {
		return FormatBinary
	}
	return FormatText
}

// ValidateFileFormat checks if a file matches the expected format, using
// DefaultMaxEntries as the binary header cap.
func ValidateFileFormat(filename string, expectedFormat FileFormat) error {
	return validateFile(filename, expectedFormat, DefaultMaxEntries)
}

func validateFile(filename string, expectedFormat FileFormat, maxEntries int) error {
	fileInfo, err := os.Stat(filename)
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", filename, err)
	}
	if fileInfo.IsDir() {
		return fmt.Errorf("%s is a directory", filename)
	}

	formatInfo, exists := supportedFormats[expectedFormat]
	if !exists {
		return fmt.Errorf("unknown format: %v", expectedFormat)
	}

	if fileInfo.Size() < formatInfo.MinSize {
		return fmt.Errorf("file %s is too small (%d bytes) for format %s (minimum: %d bytes)",
			filename, fileInfo.Size(), formatInfo.Description, formatInfo.MinSize)
	}

	if expectedFormat == FormatBinary {
		ext := strings.ToLower(filepath.Ext(filename))
		if ext != ".bin" {
			return fmt.Errorf("file %s has invalid extension %s for format %s (expected: %v)",
				filename, ext, formatInfo.Description, formatInfo.Extensions)
		}
		return validateBinaryHeader(filename, maxEntries)
	}
	return nil
}

// validateBinaryHeader reads the entry count without mapping the file.
func validateBinaryHeader(filename string, maxEntries int) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", filename, err)
	}
	defer file.Close()

	var count int32
	if err := binary.Read(file, binary.LittleEndian, &count); err != nil {
		return fmt.Errorf("failed to read header from %s: %w", filename, err)
	}
	if count < 0 || int(count) > maxEntries {
		return fmt.Errorf("%w in %s: %d entries (max %d)", ErrBadHeader, filename, count, maxEntries)
	}

	log.Debugf("Binary file %s validated: %d entries", filename, count)
	return nil
}

// DetectFileFormat is DetectFormat on a default Loader.
func DetectFileFormat(filename string) (FileFormat, error) {
	return NewLoader(0).DetectFormat(filename)
}

// DetectFormat reports the format Load would use for filename, after checking
// that the file is usable as such under the loader's entry cap.
func (l *Loader) DetectFormat(filename string) (FileFormat, error) {
	format := formatByExtension(filename)
	if err := validateFile(filename, format, l.MaxEntries); err != nil {
		return FormatUnknown, fmt.Errorf("unable to detect format for file %s: %w", filename, err)
	}
	return format, nil
}
