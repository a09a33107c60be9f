package s3

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/hupe1980/knngo/modelstore"
)

// ErrConcurrentPublish is returned when another publisher committed the
// same version first.
var ErrConcurrentPublish = errors.New("concurrent publish detected")

// DDBClient is the interface for the DynamoDB operations CommitStore
// needs. *dynamodb.Client satisfies it.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// CommitStore publishes versioned model snapshots with an atomic
// current-version pointer in DynamoDB.
//
// Object storage alone cannot compare-and-swap, so concurrent
// publishers could silently clobber each other's "latest" snapshot.
// The commit store writes each snapshot under an immutable versioned
// name in the object store, then records the version in DynamoDB with a
// conditional write. Readers resolve the newest committed version
// through a single descending query.
//
// Table schema:
//   - Partition key: model (string) - the snapshot name
//   - Sort key: version (number) - monotonically increasing version
//
// Create table with:
//
//	aws dynamodb create-table \
//	  --table-name knngo-models \
//	  --attribute-definitions AttributeName=model,AttributeType=S AttributeName=version,AttributeType=N \
//	  --key-schema AttributeName=model,KeyType=HASH AttributeName=version,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
type CommitStore struct {
	objects   modelstore.Store
	ddbClient DDBClient
	tableName string
}

// NewCommitStore creates a commit store over the given object store.
func NewCommitStore(objects modelstore.Store, ddbClient DDBClient, tableName string) *CommitStore {
	return &CommitStore{
		objects:   objects,
		ddbClient: ddbClient,
		tableName: tableName,
	}
}

func versionedName(model string, version uint64) string {
	return fmt.Sprintf("%s/v%020d", model, version)
}

// Publish writes a new snapshot version for model and commits it as
// current. Returns the committed version number.
func (c *CommitStore) Publish(ctx context.Context, model string, data []byte) (uint64, error) {
	current, err := c.latestVersion(ctx, model)
	if err != nil {
		return 0, err
	}
	next := current + 1

	if err := c.objects.Put(ctx, versionedName(model, next), data); err != nil {
		return 0, fmt.Errorf("write snapshot version %d: %w", next, err)
	}

	// Conditional put: only succeed if this version doesn't exist yet.
	_, err = c.ddbClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.tableName),
		Item: map[string]types.AttributeValue{
			"model":   &types.AttributeValueMemberS{Value: model},
			"version": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", next)},
		},
		ConditionExpression: aws.String("attribute_not_exists(version)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return 0, ErrConcurrentPublish
		}
		return 0, fmt.Errorf("commit version %d: %w", next, err)
	}

	return next, nil
}

// Current reads the newest committed snapshot for model, returning the
// snapshot bytes and the committed version.
func (c *CommitStore) Current(ctx context.Context, model string) ([]byte, uint64, error) {
	version, err := c.latestVersion(ctx, model)
	if err != nil {
		return nil, 0, err
	}
	if version == 0 {
		return nil, 0, modelstore.ErrNotFound
	}

	data, err := c.objects.Get(ctx, versionedName(model, version))
	if err != nil {
		return nil, 0, err
	}
	return data, version, nil
}

// latestVersion queries DynamoDB for the newest committed version of
// model. Returns 0 if nothing has been committed yet.
func (c *CommitStore) latestVersion(ctx context.Context, model string) (uint64, error) {
	resp, err := c.ddbClient.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(c.tableName),
		KeyConditionExpression: aws.String("model = :model"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":model": &types.AttributeValueMemberS{Value: model},
		},
		ScanIndexForward: aws.Bool(false), // Descending order
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return 0, fmt.Errorf("query latest version: %w", err)
	}

	if len(resp.Items) == 0 {
		return 0, nil
	}

	versionAttr, ok := resp.Items[0]["version"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, errors.New("invalid version attribute in DynamoDB")
	}

	var version uint64
	if _, err := fmt.Sscanf(versionAttr.Value, "%d", &version); err != nil {
		return 0, fmt.Errorf("parse version: %w", err)
	}
	return version, nil
}
