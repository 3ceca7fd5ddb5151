package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/afroash/roomsim/internal/models"
)

// ErrInvalidDocument is returned when a document fails validation
var ErrInvalidDocument = errors.New("invalid export document")

// Document is the JSON export of one simulation run
type Document struct {
	Metadata models.Metadata `json:"metadata"`
	Readings []models.Event  `json:"readings"`
}

// NewDocument creates an export document. The readings slice is not copied.
func NewDocument(meta models.Metadata, readings []models.Event) *Document {
	if readings == nil {
		readings = []models.Event{}
	}
	return &Document{
		Metadata: meta,
		Readings: readings,
	}
}

// Validate checks the reading count against the metadata and every reading
// against its kind's domain
func (d *Document) Validate() error {
	if d.Metadata.TotalReadings != len(d.Readings) {
		return fmt.Errorf("%w: metadata reports %d readings, document has %d",
			ErrInvalidDocument, d.Metadata.TotalReadings, len(d.Readings))
	}

	for i, r := range d.Readings {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("%w: reading %d: %v", ErrInvalidDocument, i, err)
		}
		if len(d.Metadata.Rooms) > 0 && !slices.Contains(d.Metadata.Rooms, r.Room) {
			return fmt.Errorf("%w: reading %d: room %q not in metadata", ErrInvalidDocument, i, r.Room)
		}
	}
	return nil
}

// Write encodes the document as indented JSON
func Write(w io.Writer, d *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}
	return nil
}

// WriteFile writes the document to path, replacing any existing file
func WriteFile(path string, d *Document) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}

	if err := Write(f, d); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close export file: %w", err)
	}
	return nil
}

// Read decodes and validates a document
func Read(r io.Reader) (*Document, error) {
	var d Document
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("failed to decode export: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// ReadFile loads a document written by WriteFile
func ReadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open export file: %w", err)
	}
	defer f.Close()

	return Read(f)
}
