package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

var _ SecretProvider = (*SSMProvider)(nil)

// fakeSSM serves parameters from a map and records each batch.
type fakeSSM struct {
	params  map[string]string
	err     error
	batches [][]string
	decrypt []bool
}

func (f *fakeSSM) GetParameters(_ context.Context, in *ssm.GetParametersInput, _ ...func(*ssm.Options)) (*ssm.GetParametersOutput, error) {
	f.batches = append(f.batches, append([]string(nil), in.Names...))
	f.decrypt = append(f.decrypt, aws.ToBool(in.WithDecryption))
	if f.err != nil {
		return nil, f.err
	}
	out := &ssm.GetParametersOutput{}
	for _, name := range in.Names {
		if v, ok := f.params[name]; ok {
			out.Parameters = append(out.Parameters, ssmtypes.Parameter{
				Name:  aws.String(name),
				Value: aws.String(v),
			})
		} else {
			out.InvalidParameters = append(out.InvalidParameters, name)
		}
	}
	return out, nil
}

func TestSSMProviderResolvesParameters(t *testing.T) {
	fake := &fakeSSM{params: map[string]string{
		"/prod/smokebuddy/line/channel_access_token": "line-secret",
		"/prod/smokebuddy/database/url":              "postgres://db",
	}}
	provider := newSSMProviderWithClient("ap-northeast-1", fake)

	got, err := provider.GetParametersBatch(context.Background(), []string{
		"/prod/smokebuddy/line/channel_access_token",
		"/prod/smokebuddy/database/url",
	})
	if err != nil {
		t.Fatalf("GetParametersBatch returned error: %v", err)
	}
	if got["/prod/smokebuddy/line/channel_access_token"] != "line-secret" {
		t.Errorf("line token = %q, want line-secret", got["/prod/smokebuddy/line/channel_access_token"])
	}
	if got["/prod/smokebuddy/database/url"] != "postgres://db" {
		t.Errorf("database url = %q, want postgres://db", got["/prod/smokebuddy/database/url"])
	}
	if len(fake.decrypt) != 1 || !fake.decrypt[0] {
		t.Errorf("expected one decrypting call, got %v", fake.decrypt)
	}
}

func TestSSMProviderBatchesByTen(t *testing.T) {
	params := make(map[string]string)
	keys := make([]string, 0, 23)
	for i := range 23 {
		k := fmt.Sprintf("/prod/smokebuddy/p%02d", i)
		params[k] = fmt.Sprintf("v%02d", i)
		keys = append(keys, k)
	}
	fake := &fakeSSM{params: params}
	provider := newSSMProviderWithClient("ap-northeast-1", fake)

	got, err := provider.GetParametersBatch(context.Background(), keys)
	if err != nil {
		t.Fatalf("GetParametersBatch returned error: %v", err)
	}
	if len(got) != 23 {
		t.Errorf("resolved %d parameters, want 23", len(got))
	}
	sizes := make([]int, 0, len(fake.batches))
	for _, b := range fake.batches {
		sizes = append(sizes, len(b))
	}
	if fmt.Sprint(sizes) != "[10 10 3]" {
		t.Errorf("batch sizes = %v, want [10 10 3]", sizes)
	}
}

func TestSSMProviderInvalidParameters(t *testing.T) {
	fake := &fakeSSM{params: map[string]string{}}
	provider := newSSMProviderWithClient("ap-northeast-1", fake)

	_, err := provider.GetParametersBatch(context.Background(), []string{"/prod/missing"})
	if err == nil {
		t.Fatal("expected error for missing parameter")
	}
	if !strings.Contains(err.Error(), "/prod/missing") {
		t.Errorf("error %q should name the missing parameter", err.Error())
	}
}

func TestSSMProviderClientError(t *testing.T) {
	cause := errors.New("AccessDeniedException")
	provider := newSSMProviderWithClient("ap-northeast-1", &fakeSSM{err: cause})

	_, err := provider.GetParametersBatch(context.Background(), []string{"/prod/a"})
	if !errors.Is(err, cause) {
		t.Errorf("error = %v, want wrapped %v", err, cause)
	}
}

func TestSSMProviderEmptyKeys(t *testing.T) {
	fake := &fakeSSM{}
	provider := newSSMProviderWithClient("ap-northeast-1", fake)

	got, err := provider.GetParametersBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("GetParametersBatch returned error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("got %v, want empty non-nil map", got)
	}
	if len(fake.batches) != 0 {
		t.Errorf("expected no SSM calls, got %d", len(fake.batches))
	}
}

func TestSSMProviderContextCancellation(t *testing.T) {
	fake := &fakeSSM{params: map[string]string{"/prod/a": "a"}}
	provider := newSSMProviderWithClient("ap-northeast-1", fake)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := provider.GetParametersBatch(ctx, []string{"/prod/a"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if len(fake.batches) != 0 {
		t.Errorf("expected no SSM calls after cancellation, got %d", len(fake.batches))
	}
}

func TestNewSSMProvider(t *testing.T) {
	p := NewSSMProvider("ap-northeast-1", "http://localhost:4566")
	if p.region != "ap-northeast-1" || p.endpoint != "http://localhost:4566" {
		t.Errorf("NewSSMProvider stored region=%q endpoint=%q", p.region, p.endpoint)
	}
	if p.client != nil {
		t.Error("client should be created lazily")
	}
}
