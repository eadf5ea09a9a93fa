package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

// SSMClient is the subset of the SSM API the bootstrap tool uses.
type SSMClient interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
	PutParameter(ctx context.Context, params *ssm.PutParameterInput, optFns ...func(*ssm.Options)) (*ssm.PutParameterOutput, error)
}

// ssmOperationTimeout bounds each SSM call.
const ssmOperationTimeout = 15 * time.Second

// SSMManager reads and writes parameters below /{env}/smokebuddy/. Secret
// values are never logged, only their length.
type SSMManager struct {
	client SSMClient
	env    string
	logger *slog.Logger
}

// NewSSMManager creates an SSMManager from the session's AWS config.
func NewSSMManager(bctx *BootstrapContext) *SSMManager {
	return &SSMManager{
		client: ssm.NewFromConfig(bctx.AWSConfig),
		env:    bctx.Environment,
		logger: bctx.Logger,
	}
}

// NewSSMManagerWithClient creates an SSMManager around client.
func NewSSMManagerWithClient(client SSMClient, env string, logger *slog.Logger) *SSMManager {
	return &SSMManager{client: client, env: env, logger: logger}
}

// SSMPath returns /{env}/smokebuddy/{key}.
func (m *SSMManager) SSMPath(key string) string {
	return fmt.Sprintf("/%s/smokebuddy/%s", m.env, key)
}

// read fetches path. found is false for ParameterNotFound, which is not an
// error here.
func (m *SSMManager) read(ctx context.Context, path string, decrypt bool) (out *ssm.GetParameterOutput, found bool, err error) {
	ctx, cancel := context.WithTimeout(ctx, ssmOperationTimeout)
	defer cancel()

	out, err = m.client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(path),
		WithDecryption: aws.Bool(decrypt),
	})
	var notFound *ssmtypes.ParameterNotFound
	switch {
	case errors.As(err, &notFound):
		return nil, false, nil
	case err != nil:
		return nil, false, fmt.Errorf("get %s: %w", path, err)
	}
	return out, true, nil
}

// ParameterExists only needs ssm:GetParameter, not kms:Decrypt.
func (m *SSMManager) ParameterExists(ctx context.Context, path string) (bool, error) {
	_, found, err := m.read(ctx, path, false)
	return found, err
}

// GetParameterValue returns the decrypted value. found is false when the
// parameter does not exist.
func (m *SSMManager) GetParameterValue(ctx context.Context, path string) (value string, found bool, err error) {
	out, found, err := m.read(ctx, path, true)
	if err != nil || !found {
		return "", false, err
	}
	if out.Parameter == nil || out.Parameter.Value == nil {
		return "", false, fmt.Errorf("get %s: empty parameter", path)
	}
	value = aws.ToString(out.Parameter.Value)
	m.logger.Info("read parameter", "path", path, "value_length", len(value))
	return value, true, nil
}

// PutSecret stores value as a SecureString. Without overwrite an existing
// parameter is an error.
func (m *SSMManager) PutSecret(ctx context.Context, path, value string, overwrite bool) error {
	return m.put(ctx, path, value, ssmtypes.ParameterTypeSecureString, overwrite)
}

// PutString stores value as a plain String, always overwriting.
func (m *SSMManager) PutString(ctx context.Context, path, value string) error {
	return m.put(ctx, path, value, ssmtypes.ParameterTypeString, true)
}

func (m *SSMManager) put(ctx context.Context, path, value string, kind ssmtypes.ParameterType, overwrite bool) error {
	switch {
	case path == "":
		return errors.New("put: empty parameter path")
	case value == "":
		return fmt.Errorf("put %s: empty value", path)
	}

	ctx, cancel := context.WithTimeout(ctx, ssmOperationTimeout)
	defer cancel()

	_, err := m.client.PutParameter(ctx, &ssm.PutParameterInput{
		Name:      aws.String(path),
		Value:     aws.String(value),
		Type:      kind,
		Overwrite: aws.Bool(overwrite),
	})
	var exists *ssmtypes.ParameterAlreadyExists
	if errors.As(err, &exists) {
		return fmt.Errorf("put %s: parameter already exists: %w", path, err)
	}
	if err != nil {
		return fmt.Errorf("put %s: %w", path, err)
	}

	attrs := []any{"path", path, "type", string(kind)}
	if kind == ssmtypes.ParameterTypeSecureString {
		attrs = append(attrs, "value_length", len(value))
	} else {
		attrs = append(attrs, "value", value)
	}
	m.logger.Info("wrote parameter", attrs...)
	return nil
}
