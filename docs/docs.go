// Package docs registers the OpenAPI (Swagger) spec for the qbsdiff HTTP
// API with github.com/swaggo/swag, so gin-swagger can serve it at
// /swagger/index.html. Generated by hand in the shape swag init produces;
// regenerate with swag init if the annotated handlers in internal/pkg/api
// change.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/v1/diff": {
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/octet-stream"],
                "summary": "Compute a patch",
                "description": "Diffs two uploaded files and streams back a BSDIFF40 patch.",
                "parameters": [
                    {"type": "file", "in": "formData", "name": "source", "required": true},
                    {"type": "file", "in": "formData", "name": "target", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request"}
                }
            }
        },
        "/v1/patch": {
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/octet-stream"],
                "summary": "Apply a patch",
                "description": "Applies an uploaded BSDIFF40 patch to an uploaded source and streams back the target.",
                "parameters": [
                    {"type": "file", "in": "formData", "name": "source", "required": true},
                    {"type": "file", "in": "formData", "name": "patch", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request"}
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger metadata for the generated spec.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "qbsdiff HTTP API",
	Description:      "Computes and applies BSDIFF40 patches over HTTP.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
