package dictionary

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/edsrzf/mmap-go"
)

// DefaultMaxEntries is the sanity cap on binary dictionary headers.
const DefaultMaxEntries = 10_000_000

var (
	// ErrTruncated is returned when a binary dictionary ends mid-entry.
	ErrTruncated = errors.New("binary dictionary truncated")
	// ErrBadHeader is returned for negative or implausible entry counts.
	ErrBadHeader = errors.New("invalid binary dictionary header")
)

// LoadError reports that a corpus source could not produce records.
type LoadError struct {
	Path string
	Line int // 1-based, 0 when the failure is not tied to a line
	Err  error
}

func (e *LoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("load corpus %s:%d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("load corpus %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Loader reads corpora from disk.
type Loader struct {
	// MaxEntries caps the entry count accepted from a binary header.
	MaxEntries int
}

// NewLoader creates a loader. maxEntries <= 0 selects DefaultMaxEntries.
func NewLoader(maxEntries int) *Loader {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Loader{MaxEntries: maxEntries}
}

// Load reads path with a default Loader.
func Load(path string) ([]Record, error) {
	return NewLoader(0).Load(path)
}

// Load reads every record of the corpus at path. Files ending in .bin are
// decoded as binary dictionaries, anything else as text. Every failure is a
// *LoadError.
func (l *Loader) Load(path string) ([]Record, error) {
	start := time.Now()

	data, release, err := mapFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer release()

	var records []Record
	switch format := formatByExtension(path); format {
	case FormatBinary:
		records, err = decodeBinary(data, l.MaxEntries)
	default:
		records, err = ReadText(bytes.NewReader(data))
	}
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.Path = path
			return nil, le
		}
		return nil, &LoadError{Path: path, Err: err}
	}

	log.Debugf("Loaded %d records from %s in %v", len(records), path, time.Since(start))
	return records, nil
}

// mapFile maps path read-only. Empty files yield a nil slice since they
// cannot be mapped.
func mapFile(path string) ([]byte, func(), error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, nil, err
	}
	if info.IsDir() {
		return nil, nil, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() == 0 {
		return nil, func() {}, nil
	}

	m, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("mmap: %w", err)
	}
	return m, func() {
		if err := m.Unmap(); err != nil {
			log.Errorf("unmapping %s: %v", path, err)
		}
	}, nil
}

// decodeBinary parses a binary dictionary held in data. Phrases are copied
// out, so the result does not alias data.
func decodeBinary(data []byte, maxEntries int) ([]Record, error) {
	if len(data) < 4 {
		return nil, ErrTruncated
	}
	count := int32(binary.LittleEndian.Uint32(data))
	if count < 0 || int(count) > maxEntries {
		return nil, fmt.Errorf("%w: %d entries", ErrBadHeader, count)
	}
	data = data[4:]

	// Every entry takes at least 6 bytes, so a lying header cannot force a
	// large allocation.
	records := make([]Record, 0, min(int(count), len(data)/6))
	for i := 0; i < int(count); i++ {
		if len(data) < 2 {
			return nil, fmt.Errorf("%w at entry %d", ErrTruncated, i)
		}
		wordLen := int(binary.LittleEndian.Uint16(data))
		data = data[2:]
		if len(data) < wordLen+4 {
			return nil, fmt.Errorf("%w at entry %d", ErrTruncated, i)
		}
		phrase := string(data[:wordLen])
		freq := int(binary.LittleEndian.Uint32(data[wordLen:]))
		data = data[wordLen+4:]

		if freq < 1 {
			freq = DefaultFrequency
		}
		records = append(records, Record{Phrase: phrase, Frequency: freq})
	}
	if len(data) > 0 {
		log.Warnf("binary dictionary has %d trailing bytes after %d entries", len(data), count)
	}
	return records, nil
}

// Save writes records to path in the binary dictionary format.
func Save(path string, records []Record) (err error) {
	if len(records) > math.MaxInt32 {
		return fmt.Errorf("too many records for binary format: %d", len(records))
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating binary file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	writer := bufio.NewWriter(file)
	if err := binary.Write(writer, binary.LittleEndian, int32(len(records))); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, rec := range records {
		if len(rec.Phrase) > math.MaxUint16 {
			return fmt.Errorf("phrase too long for binary format: %d bytes", len(rec.Phrase))
		}
		if rec.Frequency < 0 || uint64(rec.Frequency) > math.MaxUint32 {
			return fmt.Errorf("frequency %d of %q out of range for binary format", rec.Frequency, rec.Phrase)
		}
		if err := binary.Write(writer, binary.LittleEndian, uint16(len(rec.Phrase))); err != nil {
			return fmt.Errorf("writing phrase length: %w", err)
		}
		if _, err := writer.WriteString(rec.Phrase); err != nil {
			return fmt.Errorf("writing phrase %s: %w", rec.Phrase, err)
		}
		if err := binary.Write(writer, binary.LittleEndian, uint32(rec.Frequency)); err != nil {
			return fmt.Errorf("writing frequency for %s: %w", rec.Phrase, err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flushing writer: %w", err)
	}
	log.Debugf("Saved %d records to %s", len(records), path)
	return nil
}
