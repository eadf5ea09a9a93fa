// Package main implements the bootstrap CLI for SmokeBuddy deployments.
//
// It walks an operator through the secrets a deployed bot needs, validates
// each one against the live service, and stores them in AWS SSM Parameter
// Store under /{env}/smokebuddy/. The bot and the daily-jobs Lambda read them
// back through the *_SSM_PARAM variables, for example
// LINE_CHANNEL_ACCESS_TOKEN_SSM_PARAM=/prod/smokebuddy/line/channel_access_token.
//
// Usage:
//
//	go run ./cmd/ops/bootstrap --env=dev
//	go run ./cmd/ops/bootstrap --env=dev --export-env
//	go run ./cmd/ops/bootstrap --env=prod --profile=smokebuddy-prod --region=ap-northeast-1
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

var environments = []string{"dev", "staging", "prod"}

// BootstrapContext is the session established during initialization.
type BootstrapContext struct {
	Environment string
	AWSProfile  string
	AWSRegion   string
	AccountID   string
	CallerARN   string
	AWSConfig   aws.Config
	Logger      *slog.Logger
}

type options struct {
	env          string
	profile      string
	region       string
	skipOptional bool
	exportEnv    bool
	exportPath   string
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.env, "env", "", "target environment: "+strings.Join(environments, ", ")+" (required)")
	flag.StringVar(&o.profile, "profile", "", "AWS shared config profile; empty uses the default chain")
	flag.StringVar(&o.region, "region", "ap-northeast-1", "AWS region")
	flag.BoolVar(&o.skipOptional, "skip-optional", false, "skip optional parameters without asking")
	flag.BoolVar(&o.exportEnv, "export-env", false, "write the stored parameters to a .env file afterwards")
	flag.StringVar(&o.exportPath, "export-env-path", ".env", "destination of --export-env")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, "bootstrap stores SmokeBuddy secrets in SSM Parameter Store.\n\n")
		fmt.Fprint(os.Stderr, "usage: bootstrap --env=dev [--profile=NAME] [--region=REGION] [--skip-optional] [--export-env]\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	return o
}

func main() {
	opts := parseFlags()
	if err := validateEnvironment(opts.env); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n\n", err)
		flag.Usage()
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, logger); err != nil {
		logger.Error("bootstrap failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, logger *slog.Logger) error {
	bctx, err := initializeSession(ctx, opts.env, opts.profile, opts.region, logger)
	if err != nil {
		return err
	}
	if bctx.Environment == "prod" && !confirmProduction(bctx, os.Stdin, os.Stderr) {
		fmt.Fprintln(os.Stderr, "Aborted, nothing was written.")
		return nil
	}
	printBanner(bctx, os.Stderr)

	runner := NewBootstrapRunner(bctx)
	runner.SkipOptional = opts.skipOptional
	if err := runner.Run(ctx); err != nil {
		return err
	}
	logger.Info("parameters stored", "env", bctx.Environment, "account", bctx.AccountID, "region", bctx.AWSRegion)

	if !opts.exportEnv {
		return nil
	}
	if err := ExportEnvFile(ctx, ExportEnvConfig{OutputPath: opts.exportPath, SSM: runner.SSM, Stderr: os.Stderr}); err != nil {
		return fmt.Errorf("export %s: %w", opts.exportPath, err)
	}
	logger.Info("wrote env file", "path", opts.exportPath)
	return nil
}

func validateEnvironment(env string) error {
	switch {
	case env == "":
		return errors.New("--env is required")
	case !slices.Contains(environments, env):
		return fmt.Errorf("unknown environment %q, want one of %s", env, strings.Join(environments, ", "))
	}
	return nil
}

// initializeSession resolves AWS credentials and asks STS who they belong to
// so the operator sees the target account before anything is written.
func initializeSession(ctx context.Context, env, profile, region string, logger *slog.Logger) (*BootstrapContext, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithSharedConfigProfile(profile),
	)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	stsCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	who, err := sts.NewFromConfig(cfg).GetCallerIdentity(stsCtx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return nil, fmt.Errorf("sts get-caller-identity (profile %q, region %q): %w", profile, region, err)
	}

	bctx := &BootstrapContext{
		Environment: env,
		AWSProfile:  profile,
		AWSRegion:   region,
		AccountID:   aws.ToString(who.Account),
		CallerARN:   aws.ToString(who.Arn),
		AWSConfig:   cfg,
		Logger:      logger,
	}
	logger.Info("using AWS identity", "account_id", bctx.AccountID, "arn", bctx.CallerARN, "region", region)
	return bctx, nil
}

const rule = "============================================================"

// confirmProduction returns true only when the operator types "yes".
func confirmProduction(bctx *BootstrapContext, in io.Reader, out io.Writer) bool {
	fmt.Fprintf(out, "\n%s\n  PRODUCTION environment selected\n%s\n", rule, rule)
	row(out, "Account:", bctx.AccountID)
	row(out, "Region:", bctx.AWSRegion)
	row(out, "ARN:", bctx.CallerARN)
	fmt.Fprintf(out, "%s\n\nType 'yes' to continue: ", rule)

	sc := bufio.NewScanner(in)
	return sc.Scan() && strings.EqualFold(strings.TrimSpace(sc.Text()), "yes")
}

func printBanner(bctx *BootstrapContext, out io.Writer) {
	fmt.Fprintf(out, "\n%s\n  SmokeBuddy Bootstrap\n%s\n", rule, rule)
	row(out, "Environment:", bctx.Environment)
	row(out, "AWS Account:", bctx.AccountID)
	row(out, "AWS Region:", bctx.AWSRegion)
	row(out, "Identity:", bctx.CallerARN)
	if bctx.AWSProfile != "" {
		row(out, "Profile:", bctx.AWSProfile)
	}
	row(out, "SSM Prefix:", "/"+bctx.Environment+"/smokebuddy/")
	fmt.Fprintf(out, "%s\n\n", rule)
}

func row(out io.Writer, label, value string) {
	fmt.Fprintf(out, "  %-14s%s\n", label, value)
}
