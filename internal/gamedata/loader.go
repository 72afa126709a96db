package gamedata

import (
	"encoding/json"
	"fmt"
)

// validator is implemented by file types that check their own content.
type validator interface {
	Validate() error
}

// Load reads and unmarshals a JSON file from the embedded filesystem.
// When the result type has a Validate method it is run before returning.
func Load[T any](filename string) (T, error) {
	var result T

	content, err := dataFS.ReadFile(filename)
	if err != nil {
		return result, fmt.Errorf("failed to read embedded file %s: %w", filename, err)
	}

	return decode[T](filename, content)
}

func decode[T any](filename string, content []byte) (T, error) {
	var result T
	if err := json.Unmarshal(content, &result); err != nil {
		return result, fmt.Errorf("failed to parse JSON from %s: %w", filename, err)
	}

	if v, ok := any(result).(validator); ok {
		if err := v.Validate(); err != nil {
			return result, fmt.Errorf("invalid content in %s: %w", filename, err)
		}
	}

	return result, nil
}
