package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/go-auth-service/internal/domain"
)

// UserStore persists users in a table whose partition key is the normalized
// email address.
type UserStore struct {
	client    *dynamodb.Client
	tableName string
	hasher    domain.PasswordHasher
}

func NewUserStore(client *dynamodb.Client, tableName string, hasher domain.PasswordHasher) *UserStore {
	return &UserStore{client: client, tableName: tableName, hasher: hasher}
}

type userRecord struct {
	Email        string `dynamodbav:"email"`
	PasswordHash string `dynamodbav:"password_hash"`
	Requires2FA  bool   `dynamodbav:"requires_2fa"`
}

func (s *UserStore) AddUser(ctx context.Context, user domain.User) error {
	item, err := attributevalue.MarshalMap(userRecord{
		Email:        user.Email.Address(),
		PasswordHash: user.PasswordHash,
		Requires2FA:  user.Requires2FA,
	})
	if err != nil {
		return fmt.Errorf("marshal user: %w", domain.ErrUnexpected)
	}

	// The conditional put is what makes the insert atomic: a concurrent
	// signup for the same email loses with a ConditionalCheckFailedException.
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(email)"),
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return domain.ErrUserAlreadyExists
		}
		return fmt.Errorf("put user: %v: %w", err, domain.ErrUnexpected)
	}
	return nil
}

func (s *UserStore) GetUser(ctx context.Context, email domain.Email) (domain.User, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"email": &types.AttributeValueMemberS{Value: email.Address()},
		},
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("get user: %v: %w", err, domain.ErrUnexpected)
	}
	if out.Item == nil {
		return domain.User{}, domain.ErrUserNotFound
	}

	var rec userRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return domain.User{}, fmt.Errorf("unmarshal user: %w", domain.ErrUnexpected)
	}
	parsed, err := domain.ParseEmail(rec.Email)
	if err != nil {
		return domain.User{}, fmt.Errorf("stored email invalid: %w", domain.ErrUnexpected)
	}
	return domain.User{Email: parsed, PasswordHash: rec.PasswordHash, Requires2FA: rec.Requires2FA}, nil
}

func (s *UserStore) ValidateUser(ctx context.Context, email domain.Email, password domain.Password) error {
	user, err := s.GetUser(ctx, email)
	if err != nil {
		return err
	}
	ok, err := s.hasher.Verify(ctx, user.PasswordHash, password.Expose())
	if err != nil {
		return fmt.Errorf("verify password: %v: %w", err, domain.ErrUnexpected)
	}
	if !ok {
		return domain.ErrInvalidCredentials
	}
	return nil
}
