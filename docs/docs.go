// Package docs holds the Swagger 2.0 document served at /swagger/*any.
//
// The template follows the swag annotations on the api handlers and
// cmd/main.go; regenerate it with `go generate ./cmd` after changing them.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "termsOfService": "https://github.com/guttosm/pricereturns",
        "contact": {
            "name": "API Support",
            "url": "https://github.com/guttosm/pricereturns",
            "email": "support@example.com"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/v1/prices/normalized/yearly": {
            "get": {
                "description": "Year-end adjusted close divided by (max - min) adjusted close since start_year",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "prices"
                ],
                "summary": "Yearly price normalized by the historical range",
                "parameters": [
                    {
                        "type": "string",
                        "example": "AAPL,MSFT",
                        "description": "Comma separated tickers",
                        "name": "tickers",
                        "in": "query",
                        "required": true
                    },
                    {
                        "type": "integer",
                        "example": 2020,
                        "description": "First calendar year kept",
                        "name": "start_year",
                        "in": "query",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Success",
                        "schema": {
                            "$ref": "#/definitions/dto.TableResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Internal Error",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/v1/prices/rebased/monthly": {
            "get": {
                "description": "Month-end adjusted close divided by the first month's end price (first month = 1.0)",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "prices"
                ],
                "summary": "Monthly price rebased to the first month",
                "parameters": [
                    {
                        "type": "string",
                        "example": "AAPL,MSFT",
                        "description": "Comma separated tickers",
                        "name": "tickers",
                        "in": "query",
                        "required": true
                    },
                    {
                        "type": "integer",
                        "example": 2020,
                        "description": "First calendar year kept",
                        "name": "start_year",
                        "in": "query",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Success",
                        "schema": {
                            "$ref": "#/definitions/dto.TableResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Internal Error",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/v1/returns/monthly": {
            "get": {
                "description": "(last - first) / first adjusted close of every calendar month since start_year",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "returns"
                ],
                "summary": "Monthly return per ticker",
                "parameters": [
                    {
                        "type": "string",
                        "example": "AAPL,MSFT",
                        "description": "Comma separated tickers",
                        "name": "tickers",
                        "in": "query",
                        "required": true
                    },
                    {
                        "type": "integer",
                        "example": 2020,
                        "description": "First calendar year kept",
                        "name": "start_year",
                        "in": "query",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Success",
                        "schema": {
                            "$ref": "#/definitions/dto.TableResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Internal Error",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/v1/returns/yearly": {
            "get": {
                "description": "(last - first) / first adjusted close of every calendar year since start_year",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "returns"
                ],
                "summary": "Yearly return per ticker",
                "parameters": [
                    {
                        "type": "string",
                        "example": "AAPL,MSFT",
                        "description": "Comma separated tickers",
                        "name": "tickers",
                        "in": "query",
                        "required": true
                    },
                    {
                        "type": "integer",
                        "example": 2020,
                        "description": "First calendar year kept",
                        "name": "start_year",
                        "in": "query",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Success",
                        "schema": {
                            "$ref": "#/definitions/dto.TableResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Internal Error",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/v1/tickers": {
            "get": {
                "description": "Tickers present in the price database with their row counts",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "tickers"
                ],
                "summary": "Stored tickers",
                "responses": {
                    "200": {
                        "description": "Success",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/dto.TickerResponse"
                            }
                        }
                    },
                    "500": {
                        "description": "Internal Error",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    },
                    "501": {
                        "description": "Not Implemented",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/healthz": {
            "get": {
                "description": "Always returns OK if the service is running",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "health"
                ],
                "summary": "Liveness probe",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/readyz": {
            "get": {
                "description": "Returns ready if the price source is reachable",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "health"
                ],
                "summary": "Readiness probe",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "503": {
                        "description": "Service Unavailable",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "dto.ErrorResponse": {
            "type": "object",
            "properties": {
                "error_details": {
                    "type": "string",
                    "example": "start_year must be a positive integer"
                },
                "message": {
                    "type": "string",
                    "example": "invalid request"
                },
                "timestamp": {
                    "type": "string",
                    "example": "2025-09-01T12:00:00Z"
                }
            }
        },
        "dto.RowResponse": {
            "type": "object",
            "properties": {
                "month": {
                    "type": "integer",
                    "example": 2
                },
                "period": {
                    "type": "string",
                    "example": "2021-2"
                },
                "reasons": {
                    "type": "object",
                    "additionalProperties": {
                        "type": "string"
                    }
                },
                "values": {
                    "type": "object",
                    "additionalProperties": {
                        "type": "number"
                    }
                },
                "year": {
                    "type": "integer",
                    "example": 2021
                }
            }
        },
        "dto.TableResponse": {
            "type": "object",
            "properties": {
                "metric": {
                    "type": "string",
                    "example": "yearly_return"
                },
                "rows": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/dto.RowResponse"
                    }
                },
                "skipped": {
                    "type": "object",
                    "additionalProperties": {
                        "type": "string"
                    },
                    "example": {
                        "ZZZ": "fetch_failed"
                    }
                },
                "start_year": {
                    "type": "integer",
                    "example": 2020
                },
                "tickers": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    },
                    "example": [
                        "AAPL",
                        "MSFT"
                    ]
                }
            }
        },
        "dto.TickerResponse": {
            "type": "object",
            "properties": {
                "rows": {
                    "type": "integer",
                    "example": 5284
                },
                "ticker": {
                    "type": "string",
                    "example": "AAPL"
                }
            }
        }
    },
    "tags": [
        {
            "description": "Period returns per ticker",
            "name": "returns"
        },
        {
            "description": "Rebased and normalized price series",
            "name": "prices"
        },
        {
            "description": "Tickers stored in the price database",
            "name": "tickers"
        },
        {
            "description": "Liveness and readiness probes",
            "name": "health"
        }
    ]
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "pricereturns API",
	Description:      "Historical yearly/monthly returns and rebased/normalized price series per ticker.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
