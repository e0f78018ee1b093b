package service

import (
	"github.com/Skino1337/PyPoE/internal/etl"
	"github.com/Skino1337/PyPoE/internal/lua"
)

// verifyArtifact loads the artifact in the Lua VM, so a module the wiki
// cannot load fails its dataset before anything is written.
func verifyArtifact(a etl.Artifact) error {
	return lua.Check(a.Text)
}
