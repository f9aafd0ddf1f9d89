package backend

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dropzone/dropzone/internal/timeutil"
	"github.com/dropzone/dropzone/internal/upload"
	"github.com/google/uuid"
	"github.com/hashicorp/go-version"
	"github.com/pelletier/go-toml/v2"
)

// supportedSeedVersions lists the seed file formats this build can read.
const supportedSeedVersions = ">= 1.0, < 2.0"

//go:embed seed.toml
var defaultSeed []byte

var errInvalidSeed = errors.New("invalid seed file")

type seedFile struct {
	Version string       `toml:"version"`
	Uploads []seedRecord `toml:"upload"`
}

// seedRecord is one past upload. Either UploadedAt or Age (relative to the
// time the seed is loaded) places it in time.
type seedRecord struct {
	ID         string    `toml:"id"`
	Name       string    `toml:"name"`
	Size       int64     `toml:"size"`
	Type       string    `toml:"type"`
	Status     string    `toml:"status"`
	Error      string    `toml:"error"`
	UploadedAt time.Time `toml:"uploaded_at"`
	Age        string    `toml:"age"`
}

// DefaultSeed returns the records shipped with the binary.
func DefaultSeed(now time.Time) ([]upload.Item, error) {
	return ParseSeed(defaultSeed, now)
}

// LoadSeed reads seed records from a TOML file.
func LoadSeed(path string, now time.Time) ([]upload.Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	items, err := ParseSeed(data, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return items, nil
}

// ParseSeed decodes seed records. Relative ages are resolved against now.
func ParseSeed(data []byte, now time.Time) ([]upload.Item, error) {
	var f seedFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %w", errInvalidSeed, err)
	}

	if err := checkSeedVersion(f.Version); err != nil {
		return nil, err
	}

	items := make([]upload.Item, 0, len(f.Uploads))
	var errs []string
	for i, rec := range f.Uploads {
		it, err := rec.item(now)
		if err != nil {
			errs = append(errs, fmt.Sprintf("upload %d: %v", i+1, err))
			continue
		}
		items = append(items, it)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w:\n  - %s", errInvalidSeed, strings.Join(errs, "\n  - "))
	}

	return items, nil
}

func checkSeedVersion(raw string) error {
	if raw == "" {
		return fmt.Errorf("%w: missing version", errInvalidSeed)
	}

	v, err := version.NewVersion(raw)
	if err != nil {
		return fmt.Errorf("%w: bad version %q: %w", errInvalidSeed, raw, err)
	}

	constraint, err := version.NewConstraint(supportedSeedVersions)
	if err != nil {
		return fmt.Errorf("invalid version constraint: %w", err)
	}
	if !constraint.Check(v) {
		return fmt.Errorf("%w: version %s is not supported (want %s)", errInvalidSeed, v, supportedSeedVersions)
	}
	return nil
}

func (r seedRecord) item(now time.Time) (upload.Item, error) {
	if r.Name == "" {
		return upload.Item{}, errors.New("name is required")
	}
	if r.Size < 0 {
		return upload.Item{}, fmt.Errorf("size must not be negative, got %d", r.Size)
	}

	status := upload.Status(r.Status)
	switch status {
	case "":
		status = upload.StatusCompleted
	case upload.StatusCompleted, upload.StatusError, upload.StatusPaused, upload.StatusUploading, upload.StatusQueued:
	default:
		return upload.Item{}, fmt.Errorf("unknown status %q", r.Status)
	}

	msg := r.Error
	switch {
	case status == upload.StatusError && msg == "":
		msg = upload.ErrUploadFailed.Error()
	case status != upload.StatusError && msg != "":
		return upload.Item{}, fmt.Errorf("error is only allowed with status %q, got %q", upload.StatusError, status)
	}

	it := upload.Item{
		ID:       r.ID,
		Name:     r.Name,
		Size:     r.Size,
		MIMEType: r.Type,
		Status:   status,
		Error:    msg,
	}
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	if status == upload.StatusCompleted {
		it.Progress = 100
	}

	switch {
	case !r.UploadedAt.IsZero() && r.Age != "":
		return upload.Item{}, errors.New("set either uploaded_at or age, not both")
	case !r.UploadedAt.IsZero():
		at := r.UploadedAt
		it.UploadedAt = &at
	case r.Age != "":
		age, err := timeutil.ParseAge(r.Age)
		if err != nil {
			return upload.Item{}, err
		}
		at := now.Add(-age)
		it.UploadedAt = &at
	}

	return it, nil
}
