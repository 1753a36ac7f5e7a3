package tutor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Schema is a named JSON Schema for one response shape.
type Schema struct {
	Name       string
	Definition string
}

var (
	assessmentSchema = &Schema{Name: "assessment", Definition: `{
		"type": "object",
		"required": ["id", "questions"],
		"properties": {
			"id": {"type": "integer"},
			"questions": {
				"type": "array",
				"minItems": 1,
				"items": {
					"type": "object",
					"required": ["id", "question_text"],
					"properties": {
						"id": {"type": "integer"},
						"question_text": {"type": "string"}
					}
				}
			},
			"total_score": {"type": ["number", "null"]}
		}
	}`}

	feedbackSchema = &Schema{Name: "feedback", Definition: `{
		"type": "object",
		"required": ["isCorrect", "score"],
		"properties": {
			"isCorrect": {"type": "boolean"},
			"score": {"type": "number", "minimum": 0, "maximum": 100},
			"feedback": {"type": ["string", "null"]}
		}
	}`}

	resultSchema = &Schema{Name: "result", Definition: `{
		"type": "object",
		"required": ["score"],
		"properties": {
			"score": {"type": "number"},
			"questionResults": {
				"type": ["array", "null"],
				"items": {
					"type": "object",
					"required": ["questionId"],
					"properties": {
						"questionId": {"type": "integer"},
						"score": {"type": "number"}
					}
				}
			}
		}
	}`}

	summarySchema = &Schema{Name: "summary", Definition: `{
		"type": ["object", "null"],
		"properties": {
			"total_attempts": {"type": "integer", "minimum": 0},
			"best_score": {"type": ["number", "null"]}
		}
	}`}

	subjectsSchema = &Schema{Name: "subjects", Definition: `{
		"type": "array",
		"items": {"type": "object", "required": ["id", "name"]}
	}`}

	topicsSchema = &Schema{Name: "topics", Definition: `{
		"type": "object",
		"required": ["topics"],
		"properties": {
			"topics": {"type": "array", "items": {"type": "object", "required": ["id", "name"]}}
		}
	}`}

	chatHistorySchema = &Schema{Name: "chat_history", Definition: `{
		"type": ["array", "null"],
		"items": {
			"type": "object",
			"required": ["prompt", "response"],
			"properties": {
				"prompt": {"type": "string"},
				"response": {"type": "string"}
			}
		}
	}`}

	chatReplySchema = &Schema{Name: "chat_reply", Definition: `{
		"type": "object",
		"required": ["response"],
		"properties": {
			"prompt": {"type": ["string", "null"]},
			"response": {"type": "string", "minLength": 1}
		}
	}`}

	loginSchema = &Schema{Name: "login", Definition: `{
		"type": "object",
		"required": ["access", "refresh"],
		"properties": {
			"access": {"type": "string", "minLength": 1},
			"refresh": {"type": "string", "minLength": 1}
		}
	}`}

	refreshSchema = &Schema{Name: "refresh", Definition: `{
		"type": "object",
		"required": ["access"],
		"properties": {"access": {"type": "string", "minLength": 1}}
	}`}
)

// schemaCache caches compiled schemas by name.
var schemaCache sync.Map // map[string]*jsonschema.Schema

var (
	validateOnce sync.Once
	structValid  *validator.Validate
)

// structValidator returns the shared validator, reporting fields by their
// JSON names.
func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		structValid = v
	})
	return structValid
}

// decode checks raw against schema, unmarshals it into out and validates
// the result. Any failure is an *ErrInvalidPayload.
func decode(path string, raw []byte, schema *Schema, out any) error {
	if err := validateRaw(schema, raw); err != nil {
		return &ErrInvalidPayload{Path: path, Err: err}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &ErrInvalidPayload{Path: path, Err: fmt.Errorf("decode: %w", err)}
	}
	if err := validateStruct(out); err != nil {
		return &ErrInvalidPayload{Path: path, Err: err}
	}
	return nil
}

func validateRaw(schema *Schema, raw []byte) error {
	if schema == nil {
		return nil
	}
	parsed, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	compiled, err := compiledSchema(schema)
	if err != nil {
		return fmt.Errorf("compile schema %q: %w", schema.Name, err)
	}
	if err := compiled.Validate(parsed); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

// validateStruct runs struct tag validation on out, skipping nil pointers
// and slices of structs element by element.
func validateStruct(out any) error {
	v := reflect.ValueOf(out)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Struct:
		return structValidator().Struct(v.Interface())
	case reflect.Slice:
		for i := 0; i < v.Len(); i++ {
			if err := validateStruct(v.Index(i).Addr().Interface()); err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
		}
	}
	return nil
}

func compiledSchema(schema *Schema) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(schema.Name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	def, err := jsonschema.UnmarshalJSON(strings.NewReader(schema.Definition))
	if err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://%s.json", schema.Name)
	if err := c.AddResource(url, def); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	schemaCache.Store(schema.Name, compiled)
	return compiled, nil
}
