package handler

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/BuzzLyutic/todo-api/internal/model"
	"github.com/BuzzLyutic/todo-api/internal/service"
)

const maxBodyBytes = 1 << 20

//go:embed schema/todo.json
var todoSchemaJSON []byte

var todoSchema = mustCompileSchema("todo.json", todoSchemaJSON)

func mustCompileSchema(url string, raw []byte) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, bytes.NewReader(raw)); err != nil {
		panic(fmt.Sprintf("handler: add schema %s: %v", url, err))
	}
	return compiler.MustCompile(url)
}

// decodeFields reads the request body, checks it against the todo schema
// and decodes it into typed fields. An empty body is treated as {}.
func decodeFields(w http.ResponseWriter, r *http.Request) (model.TodoFields, error) {
	var fields model.TodoFields

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fields, &service.ValidationError{Field: "body", Message: "Request body too large"}
		}
		return fields, fmt.Errorf("read body: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return fields, &service.ValidationError{Field: "body", Message: "Malformed JSON body"}
	}
	if err := todoSchema.Validate(doc); err != nil {
		return fields, schemaError(err)
	}

	if err := json.Unmarshal(body, &fields); err != nil {
		return fields, &service.ValidationError{Field: "body", Message: "Malformed JSON body"}
	}
	return fields, nil
}

// schemaError reports the first leaf violation, prefixed with its location.
func schemaError(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	var leaves []*jsonschema.ValidationError
	collectSchemaErrors(ve, &leaves)
	leaf := leaves[0]

	field := pointerToField(leaf.InstanceLocation)
	return &service.ValidationError{
		Field:   field,
		Message: fmt.Sprintf("%s: %s", field, leaf.Message),
	}
}

func collectSchemaErrors(err *jsonschema.ValidationError, result *[]*jsonschema.ValidationError) {
	if len(err.Causes) == 0 {
		*result = append(*result, err)
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(cause, result)
	}
}

func pointerToField(ptr string) string {
	ptr = strings.TrimPrefix(strings.TrimPrefix(ptr, "#"), "/")
	if ptr == "" {
		return "body"
	}
	return strings.ReplaceAll(ptr, "/", ".")
}
