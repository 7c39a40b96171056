package shop

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"gopkg.in/yaml.v3"
)

// Source supplies the raw shop records a Catalog is built from.
//
// Records must wrap ErrDataUnavailable when the data cannot be reached and
// ErrDataFormat when it is present but cannot be decoded.
type Source interface {
	// Name identifies the source in logs and errors.
	Name() string
	// Records returns every shop record in source order.
	Records(ctx context.Context) ([]Record, error)
}

// Format is the encoding of a catalog document.
type Format string

// Supported catalog document formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// zstdSuffix marks a zstd-compressed catalog file.
const zstdSuffix = ".zst"

// FormatForPath infers the document format from a file name, looking through
// a trailing .zst suffix.
//
// Postcondition: Returns an error for unrecognised extensions.
func FormatForPath(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(strings.TrimSuffix(path, zstdSuffix)))
	switch ext {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported catalog file extension %q", ext)
	}
}

// Decode parses a catalog document. When v is non-nil the document is checked
// against its schema first. The top level must be a list of shops whether or
// not a validator is given; an empty list is a valid, empty catalog.
//
// Postcondition: Returns the records in document order, or an error wrapping ErrDataFormat.
func Decode(format Format, data []byte, v *SchemaValidator) ([]Record, error) {
	var records *[]Record
	switch format {
	case FormatJSON:
		if v != nil {
			if err := v.ValidateJSON(data); err != nil {
				return nil, Malformed(err)
			}
		}
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, Malformed(fmt.Errorf("decoding catalog JSON: %w", err))
		}
	case FormatYAML:
		if v != nil {
			if err := v.ValidateYAML(data); err != nil {
				return nil, Malformed(err)
			}
		}
		if err := yaml.Unmarshal(data, &records); err != nil {
			return nil, Malformed(fmt.Errorf("decoding catalog YAML: %w", err))
		}
	default:
		return nil, Malformed(fmt.Errorf("unknown catalog format %q", format))
	}
	if records == nil {
		return nil, Malformed(errors.New("catalog document must be a list of shops"))
	}
	return *records, nil
}

// Encode renders records as a catalog document.
func Encode(format Format, records []Record) ([]byte, error) {
	if records == nil {
		records = []Record{}
	}
	switch format {
	case FormatJSON:
		return json.MarshalIndent(records, "", "  ")
	case FormatYAML:
		return yaml.Marshal(records)
	default:
		return nil, fmt.Errorf("unknown catalog format %q", format)
	}
}

// Compress returns data as a single zstd frame.
func Compress(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("creating zstd encoder: %w", err)
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil), nil
}

// Decompress reverses Compress.
func Decompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}
	defer dec.Close()
	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("decompressing catalog: %w", err)
	}
	return out, nil
}

// FileSource reads a catalog from a JSON or YAML file, optionally zstd
// compressed (".json.zst", ".yaml.zst").
type FileSource struct {
	path      string
	validator *SchemaValidator
}

// NewFileSource returns a Source reading path. v may be nil to skip schema validation.
func NewFileSource(path string, v *SchemaValidator) *FileSource {
	return &FileSource{path: path, validator: v}
}

// Name returns the file path.
func (s *FileSource) Name() string {
	return s.path
}

// Records reads and decodes the file.
//
// Postcondition: a missing or unreadable file yields ErrDataUnavailable;
// undecodable content yields ErrDataFormat.
func (s *FileSource) Records(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, Unavailable(err)
	}
	format, err := FormatForPath(s.path)
	if err != nil {
		return nil, Malformed(err)
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, Unavailable(fmt.Errorf("reading catalog file: %w", err))
	}
	if strings.HasSuffix(s.path, zstdSuffix) {
		if data, err = Decompress(data); err != nil {
			return nil, Malformed(err)
		}
	}
	return Decode(format, data, s.validator)
}

// WriteFile encodes records into path, choosing the format from the file
// name and compressing when it ends in .zst.
//
// Postcondition: NewFileSource(path, nil).Records returns records.
func WriteFile(path string, records []Record) error {
	format, err := FormatForPath(path)
	if err != nil {
		return err
	}
	data, err := Encode(format, records)
	if err != nil {
		return fmt.Errorf("encoding catalog: %w", err)
	}
	if strings.HasSuffix(path, zstdSuffix) {
		if data, err = Compress(data); err != nil {
			return err
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing catalog file %s: %w", path, err)
	}
	return nil
}

// BytesSource serves a catalog document held in memory, such as an embedded resource.
type BytesSource struct {
	name      string
	format    Format
	data      []byte
	validator *SchemaValidator
}

// NewBytesSource returns a Source over data. A nil data slice is reported as
// ErrDataUnavailable, matching a missing resource.
func NewBytesSource(name string, format Format, data []byte, v *SchemaValidator) *BytesSource {
	return &BytesSource{name: name, format: format, data: data, validator: v}
}

// Name returns the label given at construction.
func (s *BytesSource) Name() string {
	return s.name
}

// Records decodes the held document.
func (s *BytesSource) Records(_ context.Context) ([]Record, error) {
	if s.data == nil {
		return nil, Unavailable(fmt.Errorf("resource %s not found", s.name))
	}
	return Decode(s.format, s.data, s.validator)
}

// StaticSource serves records that are already decoded.
type StaticSource struct {
	name    string
	records []Record
}

// NewStaticSource returns a Source over records.
func NewStaticSource(name string, records []Record) *StaticSource {
	return &StaticSource{name: name, records: records}
}

// Name returns the label given at construction.
func (s *StaticSource) Name() string {
	return s.name
}

// Records returns the held records.
func (s *StaticSource) Records(_ context.Context) ([]Record, error) {
	return s.records, nil
}
