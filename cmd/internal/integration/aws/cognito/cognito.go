package cognitoclient

import (
	"context"
	"errors"
	"fmt"

	"formconsult/cmd/internal/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/smithy-go"
)

// CognitoInterface is the part of the Cognito user pool API we call.
type CognitoInterface interface {
	GetUser(ctx context.Context, params *cognitoidentityprovider.GetUserInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.GetUserOutput, error)
}

func InitCognitoClient(ctx context.Context, region string) (*cognitoidentityprovider.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("cognito: load aws config: %w", err)
	}
	return cognitoidentityprovider.NewFromConfig(cfg), nil
}

// Authenticator resolves a Cognito access token to the user's sub.
type Authenticator struct {
	client CognitoInterface
}

func NewAuthenticator(client CognitoInterface) *Authenticator {
	return &Authenticator{client: client}
}

func (a *Authenticator) Authenticate(ctx context.Context, token string) (string, error) {
	out, err := a.client.GetUser(ctx, &cognitoidentityprovider.GetUserInput{AccessToken: aws.String(token)})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			switch apiErr.ErrorCode() {
			case "NotAuthorizedException", "UserNotFoundException", "UserNotConfirmedException":
				return "", fmt.Errorf("%w: %s", utils.ErrInvalidToken, apiErr.ErrorMessage())
			}
		}
		return "", fmt.Errorf("cognito: get user: %w", err)
	}

	for _, attr := range out.UserAttributes {
		if aws.ToString(attr.Name) == "sub" {
			if sub := aws.ToString(attr.Value); sub != "" {
				return sub, nil
			}
		}
	}
	return "", fmt.Errorf("%w: no sub attribute", utils.ErrInvalidToken)
}
