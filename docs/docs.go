// Package docs holds the OpenAPI document served by the Swagger UI.
package docs

import _ "embed"

//go:embed openapi.json
var OpenAPI []byte
