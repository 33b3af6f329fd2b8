package weaviate

import (
	"context"
	"fmt"

	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
)

// SDK encapsulates all Weaviate operations
type SDK struct {
	client *weaviate.Client
}

// NewSDK creates a new instance of SDK
func NewSDK(client *weaviate.Client) *SDK {
	return &SDK{
		client: client,
	}
}

// CreateClass creates a new class schema in Weaviate with externally
// provided vectors
func (w *SDK) CreateClass(ctx context.Context, className string, properties []*models.Property) error {
	exists, err := w.ClassExists(ctx, className)
	if err != nil {
		return fmt.Errorf("failed to check if class exists: %w", err)
	}
	if exists {
		return fmt.Errorf("class %s already exists", className)
	}

	class := &models.Class{
		Class:      className,
		Properties: properties,
		Vectorizer: "none",
	}

	if err := w.client.Schema().ClassCreator().WithClass(class).Do(ctx); err != nil {
		return fmt.Errorf("failed to create Weaviate class: %w", err)
	}

	return nil
}

// ClassExists checks if a class exists in the schema
func (w *SDK) ClassExists(ctx context.Context, className string) (bool, error) {
	schema, err := w.client.Schema().Getter().Do(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get schema: %w", err)
	}

	for _, class := range schema.Classes {
		if class.Class == className {
			return true, nil
		}
	}

	return false, nil
}

// DeleteClass deletes a class schema from Weaviate
func (w *SDK) DeleteClass(ctx context.Context, className string) error {
	err := w.client.Schema().ClassDeleter().WithClassName(className).Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete Weaviate class: %w", err)
	}

	return nil
}

// VectorObject represents a single object with its vector and properties
type VectorObject struct {
	Vector     []float32
	Properties map[string]interface{}
}

// BatchAddVectors adds multiple vector objects to a class in a single operation
func (w *SDK) BatchAddVectors(ctx context.Context, className string, objects []VectorObject) error {
	objs := make([]*models.Object, len(objects))
	for i, obj := range objects {
		objs[i] = &models.Object{
			Class:      className,
			Properties: obj.Properties,
			Vector:     obj.Vector,
		}
	}

	batcher := w.client.Batch().ObjectsBatcher()
	resp, err := batcher.WithObjects(objs...).Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to batch add vectors: %w", err)
	}
	if len(resp) == 0 {
		return fmt.Errorf("batch operation returned no results")
	}

	return nil
}

// QueryResult represents a single result from vector similarity search
type QueryResult struct {
	ID         string
	Distance   float64
	Properties map[string]interface{}
}

// QueryVectors performs vector similarity search in a class, returning at
// most limit results ordered by ascending distance
func (w *SDK) QueryVectors(ctx context.Context, className string, vector []float32, fieldNames []string, limit int) ([]QueryResult, error) {
	fields := make([]graphql.Field, len(fieldNames))
	for i, field := range fieldNames {
		fields[i] = graphql.Field{Name: field}
	}
	fields = append(fields, graphql.Field{Name: "_additional { id distance }"})

	nearVector := w.client.GraphQL().NearVectorArgBuilder().
		WithVector(vector)

	result, err := w.client.GraphQL().Get().
		WithClassName(className).
		WithFields(fields...).
		WithNearVector(nearVector).
		WithLimit(limit).
		Do(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to query vectors: %w", err)
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("graphql query failed: %s", result.Errors[0].Message)
	}

	var queryResults []QueryResult
	if data, ok := result.Data["Get"].(map[string]interface{}); ok {
		if classData, ok := data[className].([]interface{}); ok {
			for _, item := range classData {
				if obj, ok := item.(map[string]interface{}); ok {
					queryResults = append(queryResults, parseQueryResult(obj))
				}
			}
		}
	}

	return queryResults, nil
}

func parseQueryResult(obj map[string]interface{}) QueryResult {
	result := QueryResult{
		Properties: make(map[string]interface{}),
	}

	for key, value := range obj {
		if key != "_additional" {
			result.Properties[key] = value
		}
	}

	if additional, ok := obj["_additional"].(map[string]interface{}); ok {
		if id, ok := additional["id"].(string); ok {
			result.ID = id
		}
		if distance, ok := additional["distance"].(float64); ok {
			result.Distance = distance
		}
	}

	return result
}
