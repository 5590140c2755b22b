package snapshotcodec

import "github.com/santhosh-tekuri/jsonschema/v5"

// RecordVersion is written into every board record as "v".
const RecordVersion = 1

const recordSchemaV1 = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["v", "key", "tokens"],
  "additionalProperties": false,
  "properties": {
    "v": {"const": 1},
    "key": {"type": "string", "pattern": "^-?[0-9]+,-?[0-9]+$"},
    "tokens": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["origin_i", "origin_j", "serial"],
        "additionalProperties": false,
        "properties": {
          "origin_i": {"type": "integer"},
          "origin_j": {"type": "integer"},
          "serial": {"type": "integer", "minimum": 0}
        }
      }
    }
  }
}`

// Records written before versioning: no "v", token fields named after the
// cell fields they were copied from.
const recordSchemaV0 = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["key", "tokens"],
  "additionalProperties": false,
  "properties": {
    "key": {"type": "string", "pattern": "^-?[0-9]+,-?[0-9]+$"},
    "tokens": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["i", "j", "serial"],
        "additionalProperties": false,
        "properties": {
          "i": {"type": "integer"},
          "j": {"type": "integer"},
          "serial": {"type": "integer", "minimum": 0}
        }
      }
    }
  }
}`

var (
	schemaV1 = jsonschema.MustCompileString("https://pitworld.ai/schemas/board-record.v1.json", recordSchemaV1)
	schemaV0 = jsonschema.MustCompileString("https://pitworld.ai/schemas/board-record.v0.json", recordSchemaV0)
)
