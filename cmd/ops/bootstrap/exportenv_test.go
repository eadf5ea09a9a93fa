package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"
)

func exportTo(t *testing.T, mock *mockSSMClient) (map[string]string, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	err := ExportEnvFile(context.Background(), ExportEnvConfig{
		OutputPath: path,
		SSM:        newTestSSMManager(mock, "dev"),
		Stderr:     &bytes.Buffer{},
		Inventory:  BuildInventory(NewValidatorWithDeps(nil, nil, "")),
	})
	if err != nil {
		t.Fatalf("ExportEnvFile: %v", err)
	}
	env, err := godotenv.Read(path)
	if err != nil {
		t.Fatalf("reading exported file: %v", err)
	}
	return env, path
}

func TestExportEnvFile_AllParameters(t *testing.T) {
	mock := newMockSSM(map[string]string{
		"/dev/smokebuddy/line/channel_access_token": "tok/with+chars=",
		"/dev/smokebuddy/line/push_to":              testPushTarget,
		"/dev/smokebuddy/database/url":              "postgres://u:p@localhost:5432/smokebuddy?sslmode=disable",
	})

	env, path := exportTo(t, mock)

	want := map[string]string{
		"APP_ENV":                   "local",
		"LINE_CHANNEL_ACCESS_TOKEN": "tok/with+chars=",
		"LINE_PUSH_TO":              testPushTarget,
		"DATABASE_URL":              "postgres://u:p@localhost:5432/smokebuddy?sslmode=disable",
		"STATE_BACKEND":             "postgres",
	}
	for k, v := range want {
		if env[k] != v {
			t.Errorf("%s = %q, want %q", k, env[k], v)
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("file mode = %o, want 600", perm)
	}
}

func TestExportEnvFile_MissingParametersLeftOut(t *testing.T) {
	mock := newMockSSM(map[string]string{
		"/dev/smokebuddy/line/channel_access_token": "tok",
	})

	env, _ := exportTo(t, mock)

	if _, ok := env["DATABASE_URL"]; ok {
		t.Error("DATABASE_URL should be absent")
	}
	if _, ok := env["STATE_BACKEND"]; ok {
		t.Error("STATE_BACKEND should stay at its default")
	}
	if env["LINE_CHANNEL_ACCESS_TOKEN"] != "tok" {
		t.Errorf("token = %q", env["LINE_CHANNEL_ACCESS_TOKEN"])
	}
}

func TestExportEnvFile_ReadError(t *testing.T) {
	mock := newMockSSM(nil)
	mock.getErr = errors.New("access denied")

	err := ExportEnvFile(context.Background(), ExportEnvConfig{
		OutputPath: filepath.Join(t.TempDir(), ".env"),
		SSM:        newTestSSMManager(mock, "dev"),
		Stderr:     &bytes.Buffer{},
		Inventory:  BuildInventory(NewValidatorWithDeps(nil, nil, "")),
	})
	if err == nil {
		t.Fatal("expected error")
	}
}
