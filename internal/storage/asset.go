// Package storage loads and saves versioned JSON asset files: character
// definitions, world seeds, and anything else authored on disk rather
// than generated.
package storage

import (
	"fmt"
	"regexp"

	"github.com/pixil98/go-errors"
)

var identifierPattern = regexp.MustCompile(`^[a-zA-Z0-9-]+$`)

// ValidatingSpec is any asset payload that can check itself after load.
type ValidatingSpec interface {
	Validate() error
}

// Asset is the envelope every asset file carries: a format version, a
// stable id, and the typed payload.
type Asset[T ValidatingSpec] struct {
	Version uint   `json:"version"`
	ID      string `json:"id"`
	Spec    T      `json:"spec"`
}

func (a *Asset[T]) Validate() error {
	el := errors.NewErrorList()

	if a.Version == 0 {
		el.Add(fmt.Errorf("version must be set"))
	}

	if a.ID == "" {
		el.Add(fmt.Errorf("id must be set"))
	} else if !identifierPattern.MatchString(a.ID) {
		el.Add(fmt.Errorf("id must be alphanumeric: %s", a.ID))
	}

	el.Add(a.Spec.Validate())

	return el.Err()
}
