// Package docs registers the OpenAPI document for the service with swag.
// Regenerate with: swag init -g cmd/soyabean-api/docs.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Service health",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/types.HealthResponse"}
                    }
                }
            }
        },
        "/predict": {
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["inference"],
                "summary": "Classify a leaf image",
                "parameters": [
                    {
                        "type": "file",
                        "description": "Leaf image (.png, .jpg, .jpeg, .gif)",
                        "name": "image",
                        "in": "formData",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.PredictResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/test-upload": {
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["debug"],
                "summary": "Echo an upload without running inference",
                "parameters": [
                    {
                        "type": "file",
                        "description": "Any file",
                        "name": "image",
                        "in": "formData",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.UploadEchoResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.UploadErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "types.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "integer", "example": 400},
                "error": {"type": "string", "example": "No files in request"}
            }
        },
        "types.HealthResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string", "example": "Server is running. Model is loaded"},
                "model_path": {"type": "string", "example": "model_2_new_dataset.onnx"},
                "status": {"type": "string", "example": "healthy"}
            }
        },
        "types.PredictResponse": {
            "type": "object",
            "properties": {
                "class": {"type": "string", "example": "Frogeye Leaf Spot"},
                "confidence": {"type": "number", "example": 0.9312},
                "predictions": {"type": "object", "additionalProperties": {"type": "number"}},
                "success": {"type": "boolean", "example": true}
            }
        },
        "types.UploadEchoResponse": {
            "type": "object",
            "properties": {
                "content_type": {"type": "string", "example": "image/jpeg"},
                "filename": {"type": "string", "example": "leaf.jpg"},
                "size": {"type": "integer", "example": 48213},
                "success": {"type": "boolean", "example": true}
            }
        },
        "types.UploadErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "integer", "example": 400},
                "content_type": {"type": "string", "example": "multipart/form-data; boundary=X"},
                "error": {"type": "string", "example": "No image field in request"},
                "files_received": {"type": "array", "items": {"type": "string"}, "example": ["photo"]}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "soyabean-api",
	Description:      "Soybean leaf disease classification over HTTP.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
