package infra

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/msaeedsaeedi/ttrun/internal/domain"
)

// LoadRequest reads a run request from a YAML or JSON file. Unknown keys are
// rejected so a misspelt field does not silently become an empty parameter.
func LoadRequest(path string) (*domain.Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read request %s: %w", path, err)
	}

	var req domain.Request
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return &req, nil
		}
		return nil, fmt.Errorf("parse request %s: %w", path, err)
	}
	return &req, nil
}
