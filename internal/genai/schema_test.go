package genai

import "testing"

type sampleOutput struct {
	Mood       string `json:"mood"`
	Confidence int    `json:"confidence"`
	Reply      string `json:"reply"`
}

func TestGenerateSchemaClosesObjects(t *testing.T) {
	t.Parallel()

	schema := GenerateSchema[sampleOutput]()

	if schema[typeKey] != "object" {
		t.Fatalf("expected object schema, got %v", schema[typeKey])
	}
	if schema[additionalPropertiesKey] != false {
		t.Error("expected additionalProperties to be closed")
	}

	required, ok := schema[requiredKey].([]string)
	if !ok {
		t.Fatalf("expected required field list, got %T", schema[requiredKey])
	}
	if len(required) != 3 {
		t.Errorf("expected all 3 properties required, got %v", required)
	}
}
