package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestValidateEnvironment(t *testing.T) {
	for _, env := range []string{"dev", "staging", "prod"} {
		if err := validateEnvironment(env); err != nil {
			t.Errorf("validateEnvironment(%q) = %v", env, err)
		}
	}
	for _, env := range []string{"", "local", "production"} {
		if err := validateEnvironment(env); err == nil {
			t.Errorf("validateEnvironment(%q) = nil, want error", env)
		}
	}
}

func TestConfirmProduction(t *testing.T) {
	bctx := &BootstrapContext{Environment: "prod", AccountID: "123456789012", AWSRegion: "ap-northeast-1"}

	tests := []struct {
		input string
		want  bool
	}{
		{"yes\n", true},
		{"YES\n", true},
		{"y\n", false},
		{"no\n", false},
		{"", false},
	}
	for _, tt := range tests {
		out := &bytes.Buffer{}
		if got := confirmProduction(bctx, strings.NewReader(tt.input), out); got != tt.want {
			t.Errorf("confirmProduction(%q) = %v, want %v", tt.input, got, tt.want)
		}
		if !strings.Contains(out.String(), "123456789012") {
			t.Error("warning should name the account")
		}
	}
}

func TestPrintBanner(t *testing.T) {
	out := &bytes.Buffer{}
	printBanner(&BootstrapContext{Environment: "dev", AWSProfile: "sb"}, out)

	for _, want := range []string{"SmokeBuddy Bootstrap", "/dev/smokebuddy/", "Profile:      sb"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("banner missing %q:\n%s", want, out.String())
		}
	}
}
