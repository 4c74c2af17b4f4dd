// Package docs registers the OpenAPI document served under /swagger.
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
        "/health_check": {
            "get": {"tags": ["health"], "summary": "Liveness and database reachability", "responses": {"200": {"description": "OK"}, "503": {"description": "Database unavailable"}}}
        },
        "/users/signup": {
            "post": {
                "tags": ["users"], "summary": "Create a user account",
                "parameters": [{"in": "body", "name": "input", "required": true, "schema": {"$ref": "#/definitions/services.RegisterInput"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/models.User"}}, "400": {"description": "Bad Request"}, "409": {"description": "Email taken"}}
            }
        },
        "/users/login": {
            "post": {
                "tags": ["users"], "summary": "Exchange credentials for an access token",
                "parameters": [{"in": "body", "name": "input", "required": true, "schema": {"$ref": "#/definitions/services.LoginInput"}}],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Invalid credentials"}}
            }
        },
        "/tournaments": {
            "get": {"tags": ["tournaments"], "summary": "Tournaments ending today or later", "responses": {"200": {"description": "OK"}}},
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["tournaments"], "summary": "Create a tournament",
                "parameters": [{"in": "body", "name": "input", "required": true, "schema": {"$ref": "#/definitions/services.CreateTournamentInput"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Tournament"}}, "400": {"description": "Invalid date"}}
            }
        },
        "/tournaments/{tournamentID}/courts": {
            "get": {"tags": ["courts"], "summary": "Court board of a tournament", "parameters": [{"type": "integer", "name": "tournamentID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["courts"], "summary": "Add a named court", "parameters": [{"type": "integer", "name": "tournamentID", "in": "path", "required": true}], "responses": {"201": {"description": "Created"}, "409": {"description": "Name taken"}}}
        },
        "/tournaments/{tournamentID}/queue": {
            "get": {"tags": ["courts"], "summary": "Matches waiting for a court, in FIFO order", "parameters": [{"type": "integer", "name": "tournamentID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/tournaments/{tournamentID}/matches": {
            "get": {"tags": ["tournaments"], "summary": "Matches grouped into scheduled, playing and finished", "parameters": [{"type": "integer", "name": "tournamentID", "in": "path", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.TournamentMatchList"}}}}
        },
        "/tournaments/{tournamentID}/export": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["tournaments"], "summary": "Upload a JSON snapshot of the match lists", "parameters": [{"type": "integer", "name": "tournamentID", "in": "path", "required": true}], "responses": {"201": {"description": "Created"}, "503": {"description": "Export not configured"}}}
        },
        "/players": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["players"], "summary": "Create a player with a chosen id", "responses": {"200": {"description": "Already registered under the same name"}, "201": {"description": "Created"}, "409": {"description": "Id taken by another name"}}}
        },
        "/players/{playerID}": {
            "get": {"tags": ["players"], "summary": "Get a player", "parameters": [{"type": "integer", "name": "playerID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/matches": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["matches"], "summary": "Schedule a match", "responses": {"201": {"description": "Created"}, "400": {"description": "Invalid roster or start time"}}}
        },
        "/matches/{matchID}": {
            "get": {"tags": ["matches"], "summary": "Get a match view", "parameters": [{"type": "integer", "name": "matchID", "in": "path", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.MatchView"}}, "404": {"description": "Not Found"}}}
        },
        "/matches/{matchID}/registrations": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["matches"], "summary": "Check a rostered player in for a match",
                "parameters": [{"type": "integer", "name": "matchID", "in": "path", "required": true}, {"in": "body", "name": "input", "required": true, "schema": {"$ref": "#/definitions/services.RegisterPlayerInput"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Not rostered"}, "409": {"description": "Already registered"}}
            }
        },
        "/matches/{matchID}/start": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["matches"], "summary": "Assign a free court or queue the match", "parameters": [{"type": "integer", "name": "matchID", "in": "path", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.MatchView"}}, "409": {"description": "Already started or players missing"}}}
        },
        "/matches/{matchID}/result": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["matches"], "summary": "Record the result and promote the queue head",
                "parameters": [{"type": "integer", "name": "matchID", "in": "path", "required": true}, {"in": "body", "name": "input", "required": true, "schema": {"$ref": "#/definitions/services.FinishMatchInput"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.MatchView"}}, "400": {"description": "Invalid winner or result"}, "409": {"description": "Already completed or not started"}}
            }
        }
    },
    "definitions": {
        "models.Player": {"type": "object", "properties": {"id": {"type": "integer"}, "name": {"type": "string"}}},
        "models.User": {"type": "object", "properties": {"id": {"type": "string"}, "email": {"type": "string"}, "created_at": {"type": "string"}}},
        "models.Tournament": {"type": "object", "properties": {"id": {"type": "integer"}, "name": {"type": "string"}, "start_date": {"type": "string"}, "end_date": {"type": "string"}}},
        "models.MatchView": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "tournament_id": {"type": "integer"},
                "class": {"type": "string"},
                "player_one": {"$ref": "#/definitions/models.Player"},
                "player_two": {"$ref": "#/definitions/models.Player"},
                "player_one_arrived": {"type": "boolean"},
                "player_two_arrived": {"type": "boolean"},
                "court": {"type": "string", "description": "Court name while playing, queue placement while scheduled"},
                "winner": {"type": "integer"},
                "result": {"type": "string"},
                "start_time": {"type": "string"}
            }
        },
        "models.TournamentMatchList": {
            "type": "object",
            "properties": {
                "scheduled": {"type": "array", "items": {"$ref": "#/definitions/models.MatchView"}},
                "playing": {"type": "array", "items": {"$ref": "#/definitions/models.MatchView"}},
                "finished": {"type": "array", "items": {"$ref": "#/definitions/models.MatchView"}}
            }
        },
        "services.RegisterInput": {"type": "object", "properties": {"email": {"type": "string"}, "password": {"type": "string"}}},
        "services.LoginInput": {"type": "object", "properties": {"email": {"type": "string"}, "password": {"type": "string"}}},
        "services.CreateTournamentInput": {"type": "object", "properties": {"name": {"type": "string"}, "start_date": {"type": "string", "example": "2026-06-01"}, "end_date": {"type": "string", "example": "2026-06-03"}}},
        "services.RegisterPlayerInput": {"type": "object", "properties": {"player_id": {"type": "integer"}, "registered_by": {"type": "string"}}},
        "services.FinishMatchInput": {"type": "object", "properties": {"winner": {"type": "integer"}, "result": {"type": "string", "example": "6-3 6-4"}}}
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Tournament Tracker API",
	Description:      "Court allocation, check-in and results for tournament matches.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
