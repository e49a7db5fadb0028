package evaluation

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed response.schema.json
var responseSchemaJSON string

// responseSchema is the compiled shape check for provider payloads. It is
// deliberately coarse: only the structure (object with optional perAnswer
// array and overall object) is enforced here. Field-level problems such as
// out-of-range or mistyped scores are handled by normalization, never
// rejected.
var responseSchema = mustCompileSchema(responseSchemaJSON, "response.schema.json")

func mustCompileSchema(raw, name string) *jsonschema.Schema {
	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		panic(fmt.Sprintf("parse embedded %s: %v", name, err))
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, doc); err != nil {
		panic(fmt.Sprintf("add %s resource: %v", name, err))
	}

	sch, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("compile %s: %v", name, err))
	}
	return sch
}
