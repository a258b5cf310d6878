// Package docs holds the OpenAPI document of the Praio API, served at /swagger.
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
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Health check",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/points": {
            "get": {
                "description": "Summary of every point: name, coordinates, last reading time, compliance, UV index, wave height",
                "produces": ["application/json"],
                "tags": ["Points"],
                "summary": "List monitoring points",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.PointListResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        },
        "/points/{code}": {
            "get": {
                "description": "Full snapshot record of a point as stored",
                "produces": ["application/json"],
                "tags": ["Points"],
                "summary": "Get a point",
                "parameters": [{"type": "string", "description": "Station code", "name": "code", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        },
        "/points/{code}/data": {
            "get": {
                "description": "Meteorological and/or marine fields of the latest reading. 204 when the category is empty.",
                "produces": ["application/json"],
                "tags": ["Points"],
                "summary": "Latest reading of a point",
                "parameters": [
                    {"type": "string", "description": "Station code", "name": "code", "in": "path", "required": true},
                    {"enum": ["meteo", "marine", "both"], "type": "string", "default": "both", "description": "meteo, marine or both", "name": "type", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.PointDataResponse"}},
                    "204": {"description": "No data for the requested category"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        },
        "/points/{code}/forecast": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Points"],
                "summary": "24h forecast of a point",
                "parameters": [{"type": "string", "description": "Station code", "name": "code", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ForecastResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        },
        "/points/{code}/rating": {
            "get": {
                "description": "Rounded average stars per criterion. 204 when nobody rated the point.",
                "produces": ["application/json"],
                "tags": ["Points"],
                "summary": "Average rating of a point",
                "parameters": [{"type": "string", "description": "Station code", "name": "code", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.RatingResponse"}},
                    "204": {"description": "No rating yet"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        },
        "/vote": {
            "post": {
                "description": "One vote per user and point every 30 days. The body holds the five criteria as integers from 1 to 5.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Votes"],
                "summary": "Rate a beach",
                "parameters": [
                    {"type": "string", "description": "Google ID token", "name": "token", "in": "query", "required": true},
                    {"type": "string", "description": "Station code", "name": "point_id", "in": "query", "required": true},
                    {"description": "Scores per criterion", "name": "scores", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.Scores"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.VoteResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        },
        "/notify-refresh": {
            "post": {
                "description": "Rechecks the snapshot file hash until it changes, then reloads the cache",
                "produces": ["application/json"],
                "tags": ["Cache"],
                "summary": "Snapshot refresh notification",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.RefreshResponse"}}}
            }
        }
    },
    "definitions": {
        "domain.Scores": {
            "type": "object",
            "properties": {
                "limpeza": {"type": "integer", "maximum": 5, "minimum": 1},
                "acessibilidade": {"type": "integer", "maximum": 5, "minimum": 1},
                "infraestrutura": {"type": "integer", "maximum": 5, "minimum": 1},
                "seguranca": {"type": "integer", "maximum": 5, "minimum": 1},
                "tranquilidade": {"type": "integer", "maximum": 5, "minimum": 1}
            }
        },
        "domain.ForecastEntry": {
            "type": "object",
            "properties": {
                "hora": {"type": "string"},
                "temperatura": {"type": "number"},
                "precipitacao_prob": {"type": "number"},
                "weather_code": {"type": "number"}
            }
        },
        "dto.PointSummary": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "name": {"type": "string"},
                "coordinates": {"type": "array", "items": {"type": "number"}},
                "land_coordinates": {"type": "array", "items": {"type": "number"}},
                "specific_location": {"type": "string"},
                "last_reading": {"type": "string"},
                "compliance": {"type": "boolean"},
                "uv_index": {"type": "number"},
                "wave_height": {"type": "number"}
            }
        },
        "dto.PointListResponse": {
            "type": "object",
            "properties": {
                "points": {"type": "array", "items": {"$ref": "#/definitions/dto.PointSummary"}}
            }
        },
        "dto.PointDataResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "timestamp": {"type": "string"},
                "data": {"type": "object", "additionalProperties": true}
            }
        },
        "dto.ForecastResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "forecast": {"type": "array", "items": {"$ref": "#/definitions/domain.ForecastEntry"}}
            }
        },
        "dto.RatingResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "rating": {"type": "object", "additionalProperties": {"type": "integer"}}
            }
        },
        "dto.RefreshResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "enum": ["updated", "unchanged"]},
                "attempts": {"type": "integer"},
                "hash": {"type": "string"}
            }
        },
        "dto.VoteResponse": {
            "type": "object",
            "properties": {
                "already_voted": {"type": "boolean"},
                "message": {"type": "string"}
            }
        },
        "utils.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "object",
                    "properties": {
                        "code": {"type": "string"},
                        "message": {"type": "string"},
                        "details": {"type": "object", "additionalProperties": true}
                    }
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.2.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Praio API",
	Description:      "Beach conditions, water quality and ratings for monitored beaches.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
