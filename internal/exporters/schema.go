package exporters

import (
	_ "embed"

	"github.com/Skino1337/PyPoE/internal/repository"
)

//go:embed schema.yaml
var defaultSchema []byte

// DefaultSchema returns the schema of every table the built-in exporters read.
func DefaultSchema() (*repository.Schema, error) {
	return repository.ParseSchema(defaultSchema)
}
