package s3

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/knngo/modelstore"
)

// fakeDDB is an in-memory DDBClient with conditional-write semantics.
type fakeDDB struct {
	mu       sync.Mutex
	versions map[string][]uint64 // model -> committed versions
	failPut  bool
	queryLag int // Query hides this many newest versions (stale reads)
}

func newFakeDDB() *fakeDDB {
	return &fakeDDB{versions: make(map[string][]uint64)}
}

func (f *fakeDDB) PutItem(_ context.Context, params *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failPut {
		return nil, fmt.Errorf("ddb unavailable")
	}

	model := params.Item["model"].(*types.AttributeValueMemberS).Value
	version, err := strconv.ParseUint(params.Item["version"].(*types.AttributeValueMemberN).Value, 10, 64)
	if err != nil {
		return nil, err
	}

	for _, v := range f.versions[model] {
		if v == version {
			return nil, &types.ConditionalCheckFailedException{}
		}
	}
	f.versions[model] = append(f.versions[model], version)
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDDB) Query(_ context.Context, params *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	model := params.ExpressionAttributeValues[":model"].(*types.AttributeValueMemberS).Value
	versions := append([]uint64(nil), f.versions[model]...)
	sort.Slice(versions, func(i, j int) bool { return versions[i] > versions[j] })
	if f.queryLag > 0 && f.queryLag <= len(versions) {
		versions = versions[f.queryLag:]
	}
	if len(versions) == 0 {
		return &dynamodb.QueryOutput{}, nil
	}

	return &dynamodb.QueryOutput{
		Items: []map[string]types.AttributeValue{
			{
				"model":   &types.AttributeValueMemberS{Value: model},
				"version": &types.AttributeValueMemberN{Value: strconv.FormatUint(versions[0], 10)},
			},
		},
	}, nil
}

func TestCommitStorePublishAndCurrent(t *testing.T) {
	ctx := context.Background()
	objects := modelstore.NewMemory()
	cs := NewCommitStore(objects, newFakeDDB(), "knngo-models")

	v, err := cs.Publish(ctx, "spam-filter", []byte("snapshot-1"))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), v)

	v, err = cs.Publish(ctx, "spam-filter", []byte("snapshot-2"))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), v)

	data, version, err := cs.Current(ctx, "spam-filter")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), version)
	assert.Equal(t, []byte("snapshot-2"), data)

	// Versioned objects stay immutable in the object store.
	old, err := objects.Get(ctx, versionedName("spam-filter", 1))
	require.NoError(t, err)
	assert.Equal(t, []byte("snapshot-1"), old)
}

func TestCommitStoreCurrentMissing(t *testing.T) {
	cs := NewCommitStore(modelstore.NewMemory(), newFakeDDB(), "knngo-models")

	_, _, err := cs.Current(context.Background(), "unknown")
	assert.ErrorIs(t, err, modelstore.ErrNotFound)
}

func TestCommitStoreConcurrentPublish(t *testing.T) {
	ctx := context.Background()
	ddb := newFakeDDB()
	cs := NewCommitStore(modelstore.NewMemory(), ddb, "knngo-models")

	_, err := cs.Publish(ctx, "m", []byte("a"))
	require.NoError(t, err)

	// A racing publisher already committed version 2, but our stale
	// query still reports version 1 as the latest. The conditional
	// write must catch the collision.
	ddb.versions["m"] = append(ddb.versions["m"], 2)
	ddb.queryLag = 1

	_, err = cs.Publish(ctx, "m", []byte("b"))
	assert.ErrorIs(t, err, ErrConcurrentPublish)
}

func TestCommitStoreDDBFailure(t *testing.T) {
	ddb := newFakeDDB()
	ddb.failPut = true
	cs := NewCommitStore(modelstore.NewMemory(), ddb, "knngo-models")

	_, err := cs.Publish(context.Background(), "m", []byte("a"))
	assert.Error(t, err)
}
