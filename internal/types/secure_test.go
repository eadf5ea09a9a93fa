package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

const testToken = "line-channel-token-0123456789"

func TestSecretString_Redacts(t *testing.T) {
	s := SecretString(testToken)

	tests := []struct {
		name string
		got  string
	}{
		{"String", s.String()},
		{"Sprintf %s", fmt.Sprintf("%s", s)},
		{"Sprintf %v", fmt.Sprintf("%v", s)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if strings.Contains(tt.got, testToken) {
				t.Errorf("%s leaked the secret: %q", tt.name, tt.got)
			}
			if !strings.Contains(tt.got, redactedPlaceholder) {
				t.Errorf("%s = %q, want placeholder", tt.name, tt.got)
			}
		})
	}
}

func TestSecretString_MarshalJSONInStruct(t *testing.T) {
	payload := struct {
		Token SecretString `json:"token"`
		Name  string       `json:"name"`
	}{Token: SecretString(testToken), Name: "小灰"}

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("json.Marshal: %v", err)
	}
	if strings.Contains(string(data), testToken) {
		t.Errorf("JSON leaked the secret: %s", data)
	}
	if !strings.Contains(string(data), `"token":"***REDACTED***"`) {
		t.Errorf("JSON = %s, want redacted token field", data)
	}
}

func TestSecretString_LogValue(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	logger.Info("config loaded", "token", SecretString(testToken))

	if strings.Contains(buf.String(), testToken) {
		t.Errorf("log output leaked the secret: %s", buf.String())
	}
}

func TestSecretString_UnmaskAndIsSet(t *testing.T) {
	s := SecretString(testToken)
	if s.Unmask() != testToken {
		t.Errorf("Unmask() = %q", s.Unmask())
	}
	if !s.IsSet() {
		t.Error("IsSet() = false for a configured secret")
	}
	if SecretString("").IsSet() {
		t.Error("IsSet() = true for an empty secret")
	}
}
