package schema

import _ "embed"

// DefaultsV1Schema contains the JSON schema for defaults files.
//
//go:embed defaults.v1.json
var DefaultsV1Schema []byte
