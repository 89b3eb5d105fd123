package pkggraph

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// ResolvedPin is one entry in the resolved-packages pin file: the exact
// version (or branch/revision) the graph was last solved against for a
// given package identity.
type ResolvedPin struct {
	Identity string `json:"identity"`
	Location string `json:"location"`
	Version  string `json:"version,omitempty"`
	Revision string `json:"revision,omitempty"`
	Branch   string `json:"branch,omitempty"`
}

// resolvedPackagesFile is the on-disk JSON shape of the pin file (§6).
type resolvedPackagesFile struct {
	Version int           `json:"version"`
	Pins    []ResolvedPin `json:"pins"`
}

// LoadResolvedPackages parses and validates a pin file's raw bytes. It
// reports a duplicateResolvedPinError, naming path, if the same package
// identity (compared case-insensitively) appears twice: per spec.md §6 such
// a file is corrupted and
// must be fixed or deleted, never silently deduplicated.
func LoadResolvedPackages(path string, data []byte) ([]ResolvedPin, error) {
	var parsed resolvedPackagesFile
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, errors.Wrapf(err, "%s file is corrupted or malformed; fix or delete the file to continue", path)
	}

	seen := make(map[string]bool, len(parsed.Pins))
	for _, pin := range parsed.Pins {
		key := strings.ToLower(pin.Identity)
		if seen[key] {
			return nil, &duplicateResolvedPinError{path: path, identity: pin.Identity}
		}
		seen[key] = true
	}

	return parsed.Pins, nil
}
