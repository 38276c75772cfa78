// Package api содержит OpenAPI-описание HTTP API сервиса.
package api

import _ "embed"

// OpenAPIDocument - содержимое openapi.json, встроенное в бинарник.
//
//go:embed openapi.json
var OpenAPIDocument []byte
