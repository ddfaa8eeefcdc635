/*
NAME
  load.go

DESCRIPTION
  load.go reads and parses the `<input>.json` metadata document that
  accompanies a raw TBC sample file.

AUTHORS
  Mira Okonkwo <mira@ldvision.dev>

LICENSE
  Copyright (C) 2026 LD Vision. All Rights Reserved.
*/

package metadata

import (
	"encoding/json"
	"fmt"
	"os"
)

// Load opens and parses the metadata document at path.
func Load(path string) (*Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("metadata: could not open metadata file: %w", err)
	}
	defer f.Close()

	var m Metadata
	dec := json.NewDecoder(f)
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("metadata: could not parse metadata file: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("metadata: invalid metadata: %w", err)
	}
	return &m, nil
}
