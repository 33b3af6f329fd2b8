package valkey

import (
	"context"
	"fmt"
	"strconv"
	"time"

	vk "github.com/valkey-io/valkey-go"

	"swasthya/src/index"
)

const pointerKey = "index:live"

type pointerStore struct {
	client vk.Client
}

// NewPointerStore creates a PointerStore backed by valkey, so the server
// and any standalone worker resolve the same live index version.
func NewPointerStore(addr string) (index.PointerStore, error) {
	client, err := vk.NewClient(vk.ClientOption{
		InitAddress: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create valkey client: %w", err)
	}

	return &pointerStore{client: client}, nil
}

func (s *pointerStore) Get(ctx context.Context) (*index.Pointer, error) {
	fields, err := s.client.Do(ctx, s.client.B().Hgetall().Key(pointerKey).Build()).AsStrMap()
	if err != nil {
		return nil, fmt.Errorf("failed to get index pointer: %w", err)
	}
	if len(fields) == 0 {
		return nil, index.ErrIndexUnavailable
	}

	entries, err := strconv.Atoi(fields["entries"])
	if err != nil {
		return nil, fmt.Errorf("failed to parse entry count: %w", err)
	}

	builtAt, err := time.Parse(time.RFC3339, fields["built_at"])
	if err != nil {
		return nil, fmt.Errorf("failed to parse built_at: %w", err)
	}

	return &index.Pointer{
		Class:          fields["class"],
		EmbeddingModel: fields["embedding_model"],
		Entries:        entries,
		BuiltAt:        builtAt,
	}, nil
}

func (s *pointerStore) Set(ctx context.Context, ptr index.Pointer) error {
	err := s.client.Do(ctx, s.client.B().Hset().Key(pointerKey).
		FieldValue().
		FieldValue("class", ptr.Class).
		FieldValue("embedding_model", ptr.EmbeddingModel).
		FieldValue("entries", strconv.Itoa(ptr.Entries)).
		FieldValue("built_at", ptr.BuiltAt.Format(time.RFC3339)).
		Build()).Error()

	if err != nil {
		return fmt.Errorf("failed to set index pointer: %w", err)
	}

	return nil
}
