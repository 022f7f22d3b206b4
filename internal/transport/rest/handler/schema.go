package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const maxBodyBytes = 1 << 20

var (
	// answersSchema accepts {"answers": {id: string | [string]}, "submissionId": string}
	answersSchema = gojsonschema.NewStringLoader(`{
		"type": "object",
		"required": ["answers"],
		"properties": {
			"submissionId": {"type": "string", "maxLength": 128},
			"answers": {
				"type": "object",
				"additionalProperties": {
					"oneOf": [
						{"type": "string", "maxLength": 4000},
						{"type": "array", "items": {"type": "string", "maxLength": 500}, "maxItems": 50}
					]
				}
			}
		}
	}`)

	// answerValueSchema accepts {"value": string | [string]}
	answerValueSchema = gojsonschema.NewStringLoader(`{
		"type": "object",
		"required": ["value"],
		"properties": {
			"value": {
				"oneOf": [
					{"type": "string", "maxLength": 4000},
					{"type": "array", "items": {"type": "string", "maxLength": 500}, "maxItems": 50}
				]
			}
		}
	}`)
)

// decodeValidated checks the body against schema and then decodes it into v
func decodeValidated(r *http.Request, schema gojsonschema.JSONLoader, v interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("failed to read body: %w", err)
	}
	if len(body) == 0 {
		return fmt.Errorf("request body is empty")
	}

	result, err := gojsonschema.Validate(schema, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("validation failed: %s", strings.Join(errs, "; "))
	}

	return json.Unmarshal(body, v)
}
