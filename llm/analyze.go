package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"
)

// Entity is a node extracted from analyzed text.
type Entity struct {
	ID         string         `json:"id" jsonschema:"required"`
	Name       string         `json:"name" jsonschema:"required"`
	Type       string         `json:"type"`
	Attributes map[string]any `json:"attributes,omitempty"`
	ParentID   ParentRef      `json:"parent_id"`
}

// ParentRef is an entity id that may be null on the wire.
type ParentRef string

// JSONSchema allows null alongside a string id.
func (ParentRef) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		AnyOf: []*jsonschema.Schema{
			{Type: "string"},
			{Type: "null"},
		},
	}
}

// Relationship is a scored edge between two entities.
type Relationship struct {
	ID           string  `json:"id"`
	Entity1ID    string  `json:"entity1_id" jsonschema:"required"`
	Relationship string  `json:"relationship" jsonschema:"required"`
	Entity2ID    string  `json:"entity2_id" jsonschema:"required"`
	Type         string  `json:"type"`
	Score        float64 `json:"score"`
	Context      string  `json:"context"`
	Position     string  `json:"position"`
}

// Analysis is the entity graph returned by the analyze route.
type Analysis struct {
	Entities      []Entity       `json:"entities" jsonschema:"required"`
	Relationships []Relationship `json:"relationships" jsonschema:"required"`
}

var analysisSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	r := &jsonschema.Reflector{
		Anonymous:                  true,
		DoNotReference:             true,
		AllowAdditionalProperties:  true,
		RequiredFromJSONSchemaTags: true,
	}
	schema := r.Reflect(&Analysis{})
	schema.Version = ""

	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("encode analysis schema: %w", err)
	}
	return gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
})

// Analyze extracts entities and relationships from text.
func (c *Client) Analyze(ctx context.Context, text string) (*Analysis, error) {
	req, err := c.newRequest(ctx, RouteAnalyze, map[string]string{"text": text})
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("analyze request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.rejected(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read analysis: %w", err)
	}
	if err := validateAnalysis(data); err != nil {
		return nil, err
	}

	var analysis Analysis
	if err := json.Unmarshal(data, &analysis); err != nil {
		return nil, fmt.Errorf("failed to decode analysis: %w", err)
	}
	zap.S().Debugw("analysis_completed",
		"entities", len(analysis.Entities),
		"relationships", len(analysis.Relationships),
	)
	return &analysis, nil
}

func validateAnalysis(data []byte) error {
	schema, err := analysisSchema()
	if err != nil {
		return err
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("invalid analysis response: %w", err)
	}
	if result.Valid() {
		return nil
	}
	problems := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		problems = append(problems, e.String())
	}
	return fmt.Errorf("analysis response does not match schema: %s", strings.Join(problems, "; "))
}
