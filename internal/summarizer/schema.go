package summarizer

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/xeipuuv/gojsonschema"
)

// modelOutput is the JSON object the model is asked to produce.
type modelOutput struct {
	Headline   string   `json:"headline" jsonschema:"minLength=1,description=A 4-8 word headline"`
	Summary    string   `json:"summary" jsonschema:"minLength=1,description=A 2-4 sentence neutral summary"`
	Sentiment  string   `json:"sentiment" jsonschema:"enum=positive,enum=neutral,enum=negative"`
	Confidence float64  `json:"confidence" jsonschema:"minimum=0,maximum=1,description=Confidence in the sentiment label"`
	Tags       []string `json:"tags" jsonschema:"minItems=1,maxItems=5,description=Short topical tags"`
}

// outputSchema holds the reflected schema both as the document sent to the
// model and as the compiled validator applied to its answer.
type outputSchema struct {
	document map[string]any
	compiled *gojsonschema.Schema
}

func newOutputSchema() (*outputSchema, error) {
	reflector := jsonschema.Reflector{
		Anonymous:                 true,
		AllowAdditionalProperties: false,
		ExpandedStruct:            true,
		DoNotReference:            true,
	}
	schema := reflector.Reflect(&modelOutput{})

	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("marshaling output schema: %w", err)
	}
	var document map[string]any
	if err := json.Unmarshal(raw, &document); err != nil {
		return nil, fmt.Errorf("unmarshaling output schema: %w", err)
	}
	delete(document, "$schema")
	delete(document, "$id")

	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(document))
	if err != nil {
		return nil, fmt.Errorf("compiling output schema: %w", err)
	}
	return &outputSchema{document: document, compiled: compiled}, nil
}

// validate checks raw JSON against the schema and lists every violation.
func (s *outputSchema) validate(raw string) error {
	result, err := s.compiled.Validate(gojsonschema.NewStringLoader(raw))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if result.Valid() {
		return nil
	}
	problems := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		problems = append(problems, e.String())
	}
	return fmt.Errorf("schema violations: %s", strings.Join(problems, "; "))
}

// extractJSON returns the outermost JSON object in text, tolerating code
// fences and prose around it.
func extractJSON(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}
