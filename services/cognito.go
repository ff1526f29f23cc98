package services

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"

	"ibmentor/config"
	"ibmentor/utils"
)

// CognitoAuth wraps the Cognito user-pool client for signup, login and token
// verification. All credential handling stays with Cognito; we never see or
// store passwords.
type CognitoAuth struct {
	client       *cognitoidentityprovider.Client
	clientID     string
	clientSecret string
}

func NewCognitoAuth(ctx context.Context, cfg config.CognitoConfig) (*CognitoAuth, error) {
	awsCfg, err := awsConfig.LoadDefaultConfig(ctx, awsConfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &CognitoAuth{
		client:       cognitoidentityprovider.NewFromConfig(awsCfg),
		clientID:     cfg.AppClientId,
		clientSecret: cfg.AppClientSecret,
	}, nil
}

// SignUp registers the email with Cognito; the pool sends the verification
// code.
func (a *CognitoAuth) SignUp(ctx context.Context, email, password string) error {
	secretHash := utils.GenerateSecretHash(email, a.clientID, a.clientSecret)

	input := cognitoidentityprovider.SignUpInput{
		ClientId:   aws.String(a.clientID),
		Password:   aws.String(password),
		SecretHash: aws.String(secretHash),
		Username:   aws.String(email),
		UserAttributes: []types.AttributeType{
			{
				Name:  aws.String("email"),
				Value: aws.String(email),
			},
			{
				Name:  aws.String("nickname"),
				Value: aws.String(utils.ExtractNameFromEmail(email)),
			},
		},
	}

	if _, err := a.client.SignUp(ctx, &input); err != nil {
		log.Println("Error during sign-up:", err)
		return fmt.Errorf("sign-up failed: %w", err)
	}
	return nil
}

// ConfirmSignUp verifies the emailed confirmation code.
func (a *CognitoAuth) ConfirmSignUp(ctx context.Context, email, confirmationCode string) error {
	secretHash := utils.GenerateSecretHash(email, a.clientID, a.clientSecret)

	input := cognitoidentityprovider.ConfirmSignUpInput{
		ClientId:         aws.String(a.clientID),
		ConfirmationCode: aws.String(confirmationCode),
		Username:         aws.String(email),
		SecretHash:       aws.String(secretHash),
	}

	if _, err := a.client.ConfirmSignUp(ctx, &input); err != nil {
		log.Println("Error during email verification:", err)
		return fmt.Errorf("email verification failed: %w", err)
	}
	return nil
}

// Login runs USER_PASSWORD_AUTH and returns the access token.
func (a *CognitoAuth) Login(ctx context.Context, email, password string) (string, error) {
	secretHash := utils.GenerateSecretHash(email, a.clientID, a.clientSecret)

	input := cognitoidentityprovider.InitiateAuthInput{
		AuthFlow: types.AuthFlowTypeUserPasswordAuth,
		ClientId: aws.String(a.clientID),
		AuthParameters: map[string]string{
			"USERNAME":    email,
			"PASSWORD":    password,
			"SECRET_HASH": secretHash,
		},
	}

	output, err := a.client.InitiateAuth(ctx, &input)
	if err != nil {
		return "", fmt.Errorf("authentication failed")
	}
	if output.AuthenticationResult == nil || output.AuthenticationResult.AccessToken == nil {
		return "", fmt.Errorf("authentication incomplete")
	}
	return *output.AuthenticationResult.AccessToken, nil
}

// ForgotPassword starts the reset flow; Cognito emails the code.
func (a *CognitoAuth) ForgotPassword(ctx context.Context, email string) error {
	secretHash := utils.GenerateSecretHash(email, a.clientID, a.clientSecret)

	input := cognitoidentityprovider.ForgotPasswordInput{
		ClientId:   aws.String(a.clientID),
		Username:   aws.String(email),
		SecretHash: aws.String(secretHash),
	}

	if _, err := a.client.ForgotPassword(ctx, &input); err != nil {
		return fmt.Errorf("error initiating forgot password: %w", err)
	}
	return nil
}

// ConfirmForgotPassword finishes the reset flow with the emailed code.
func (a *CognitoAuth) ConfirmForgotPassword(ctx context.Context, email, code, newPassword string) error {
	secretHash := utils.GenerateSecretHash(email, a.clientID, a.clientSecret)

	input := cognitoidentityprovider.ConfirmForgotPasswordInput{
		ClientId:         aws.String(a.clientID),
		Username:         aws.String(email),
		ConfirmationCode: aws.String(code),
		Password:         aws.String(newPassword),
		SecretHash:       aws.String(secretHash),
	}

	if _, err := a.client.ConfirmForgotPassword(ctx, &input); err != nil {
		return fmt.Errorf("error confirming forgot password: %w", err)
	}
	return nil
}

// UserEmail asks Cognito who the access token belongs to. This is the token
// authority; the middleware's local claims check only filters obvious junk.
func (a *CognitoAuth) UserEmail(ctx context.Context, accessToken string) (string, error) {
	output, err := a.client.GetUser(ctx, &cognitoidentityprovider.GetUserInput{
		AccessToken: aws.String(accessToken),
	})
	if err != nil {
		return "", fmt.Errorf("invalid or expired token: %w", err)
	}

	for _, attr := range output.UserAttributes {
		if attr.Name != nil && *attr.Name == "email" && attr.Value != nil {
			return *attr.Value, nil
		}
	}
	if output.Username != nil {
		return *output.Username, nil
	}
	return "", fmt.Errorf("token carries no email")
}
