// Package api embeds the REST contract served at /openapi.yaml and used to
// validate incoming requests.
package api

import _ "embed"

//go:embed openapi.yaml
var OpenAPI []byte
