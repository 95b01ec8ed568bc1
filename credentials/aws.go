package credentials

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// SecretsManagerAPI is the subset of the AWS Secrets Manager client used to fetch the
// credentials secret.
type SecretsManagerAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// AWSSecret fetches credentials JSON (plain or base64 encoded) from AWS Secrets Manager.
type AWSSecret struct {
	SecretID string
	Region   string

	client SecretsManagerAPI
}

func (p AWSSecret) Name() string {
	return fmt.Sprintf("aws:%v", p.SecretID)
}

func (p AWSSecret) Client(ctx context.Context, scopes ...string) (*http.Client, error) {
	if strings.TrimSpace(p.SecretID) == "" {
		return nil, ErrNotConfigured
	}

	api := p.client
	if api == nil {
		options := []func(*awsconfig.LoadOptions) error{}
		if p.Region != "" {
			options = append(options, awsconfig.WithRegion(p.Region))
		}

		cfg, err := awsconfig.LoadDefaultConfig(ctx, options...)
		if err != nil {
			return nil, fmt.Errorf("unable to load AWS configuration (%w)", err)
		}

		api = secretsmanager.NewFromConfig(cfg)
	}

	out, err := api.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(p.SecretID),
	})

	if err != nil {
		return nil, fmt.Errorf("unable to retrieve secret %v (%w)", p.SecretID, err)
	}

	var blob []byte

	switch {
	case out.SecretString != nil && strings.HasPrefix(strings.TrimSpace(*out.SecretString), "{"):
		blob = []byte(*out.SecretString)

	case out.SecretString != nil:
		if blob, err = Decode(*out.SecretString); err != nil {
			return nil, err
		}

	case len(out.SecretBinary) > 0:
		blob = out.SecretBinary

	default:
		return nil, fmt.Errorf("secret %v is empty", p.SecretID)
	}

	return fromJSON(ctx, blob, scopes...)
}
