package command

import (
	"fmt"
	"os"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-story/internal/storage"
	"github.com/pixil98/go-story/internal/world"
)

// StorageConfig points at the authored asset directories: character
// definitions available for spawning and world seeds available for new
// games.
type StorageConfig struct {
	Characters AssetConfig[*world.CharacterDef] `json:"characters"`
	Seeds      AssetConfig[*world.Seed]         `json:"seeds"`
}

func (c *StorageConfig) Validate() error {
	el := errors.NewErrorList()
	el.Add(c.Characters.Validate("characters"))
	el.Add(c.Seeds.Validate("seeds"))
	return el.Err()
}

type AssetConfig[T storage.ValidatingSpec] struct {
	Path string `json:"path"`
}

func (c *AssetConfig[T]) Validate(name string) error {
	if c.Path == "" {
		return fmt.Errorf("%s: path is required", name)
	}
	_, err := os.Stat(c.Path)
	if err != nil {
		return fmt.Errorf("%s: invalid path %q: %w", name, c.Path, err)
	}

	return nil
}

func (c *AssetConfig[T]) BuildFileStore() (*storage.FileStore[T], error) {
	return storage.NewFileStore[T](c.Path)
}
