// Package dynamodb stores the ledger document as a single DynamoDB item and
// implements the conditional write with a condition expression on the item's
// revision. DynamoDB evaluates the condition and the put atomically, which
// is exactly the version-token contract the ledger store needs.
package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	apperrors "github.com/tallybook/backend/internal/domain/errors"
	"github.com/tallybook/backend/internal/platform/dynamodb/client"
)

// document is the stored shape of one ledger resource.
type document struct {
	Ledger    string `dynamodbav:"ledger"`
	Content   string `dynamodbav:"content"`
	Revision  int64  `dynamodbav:"revision"`
	UpdatedAt string `dynamodbav:"updatedAt"`
}

// Remote implements the ledger Remote contract over DynamoDB.
type Remote struct {
	client     client.Client
	table      string
	ledgerName string
	logger     *zap.Logger
}

// NewRemote creates a remote for one named ledger in the given table.
func NewRemote(client client.Client, table, ledgerName string, logger *zap.Logger) *Remote {
	return &Remote{
		client:     client,
		table:      table,
		ledgerName: ledgerName,
		logger:     logger,
	}
}

func (r *Remote) key() map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("LEDGER#%s", r.ledgerName)},
		"SK": &types.AttributeValueMemberS{Value: "DOCUMENT"},
	}
}

// Fetch implements ledger.Remote. Reads are strongly consistent so a commit
// built from this snapshot is conditioned on the latest revision.
func (r *Remote) Fetch(ctx context.Context) ([]byte, string, bool, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.table),
		Key:            r.key(),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, "", false, apperrors.NewUnavailableError("could not fetch ledger document", err)
	}
	if len(out.Item) == 0 {
		return nil, "", false, nil
	}

	var doc document
	if err := attributevalue.UnmarshalMap(out.Item, &doc); err != nil {
		return nil, "", false, apperrors.NewInternalError("could not unmarshal ledger document", err)
	}
	return []byte(doc.Content), strconv.FormatInt(doc.Revision, 10), true, nil
}

// Write implements ledger.Remote. An empty expectedVersion requires the item
// not to exist; otherwise the put is conditioned on the stored revision
// still matching. A failed condition check is a version conflict.
func (r *Remote) Write(ctx context.Context, content []byte, expectedVersion string) (string, error) {
	var cond expression.ConditionBuilder
	var revision int64 = 1
	if expectedVersion == "" {
		cond = expression.AttributeNotExists(expression.Name("PK"))
	} else {
		expected, err := strconv.ParseInt(expectedVersion, 10, 64)
		if err != nil {
			return "", apperrors.NewValidationError(fmt.Sprintf("malformed version token %q", expectedVersion))
		}
		cond = expression.Name("revision").Equal(expression.Value(expected))
		revision = expected + 1
	}
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return "", apperrors.NewInternalError("could not build condition expression", err)
	}

	doc := document{
		Ledger:    r.ledgerName,
		Content:   string(content),
		Revision:  revision,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	item, err := attributevalue.MarshalMap(doc)
	if err != nil {
		return "", apperrors.NewInternalError("could not marshal ledger document", err)
	}
	for k, v := range r.key() {
		item[k] = v
	}
	item["Type"] = &types.AttributeValueMemberS{Value: "ledger_document"}

	input := &dynamodb.PutItemInput{
		TableName:                aws.String(r.table),
		Item:                     item,
		ConditionExpression:      expr.Condition(),
		ExpressionAttributeNames: expr.Names(),
	}
	// attribute_not_exists has no values; DynamoDB rejects an empty map.
	if len(expr.Values()) > 0 {
		input.ExpressionAttributeValues = expr.Values()
	}

	_, err = r.client.PutItem(ctx, input)
	if err != nil {
		var condCheckErr *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckErr) {
			r.logger.Warn("conditional write rejected",
				zap.String("ledger", r.ledgerName),
				zap.String("expectedVersion", expectedVersion))
			return "", apperrors.NewVersionConflictError("ledger changed since fetch")
		}
		return "", apperrors.NewUnavailableError("could not write ledger document", err)
	}
	return strconv.FormatInt(revision, 10), nil
}
