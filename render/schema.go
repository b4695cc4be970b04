package render

import (
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const nodeSchemaURL = "mem://uiflow/node.json"

// nodeSchema checks the shape of a single node. Children are validated when
// they are rendered, so the array items are left open.
const nodeSchema = `{
	"type": "object",
	"required": ["kind"],
	"properties": {
		"kind": {"type": "string", "minLength": 1},
		"id": {"type": "string"},
		"properties": {"type": "object"},
		"children": {"type": "array"},
		"events": {
			"type": "object",
			"additionalProperties": {"type": "object"}
		},
		"visibilityCondition": {"type": ["boolean", "string", "object", "null"]}
	}
}`

var (
	nodeSchemaOnce     sync.Once
	nodeSchemaCompiled *jsonschema.Schema
	nodeSchemaErr      error
)

func compiledNodeSchema() (*jsonschema.Schema, error) {
	nodeSchemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft2020
		if err := c.AddResource(nodeSchemaURL, strings.NewReader(nodeSchema)); err != nil {
			nodeSchemaErr = err
			return
		}
		nodeSchemaCompiled, nodeSchemaErr = c.Compile(nodeSchemaURL)
	})
	return nodeSchemaCompiled, nodeSchemaErr
}
