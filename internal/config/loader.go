package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// ConfigError reports which loading stage failed.
type ConfigError struct {
	Type    ConfigErrorType
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("[%s] %s", e.Type, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// ssmParamSuffix marks a variable whose value is the parameter store path
// of the variable named by the remaining prefix.
const ssmParamSuffix = "_SSM_PARAM"

// ssmTimeout bounds the batch parameter fetch during startup.
const ssmTimeout = 30 * time.Second

const localEnv = "local"

// loaderDeps abstracts the process environment so tests never touch it.
type loaderDeps struct {
	lookupEnv func(key string) (string, bool)
	setEnv    func(key, value string) error
	environ   func() []string
}

func defaultDeps() loaderDeps {
	return loaderDeps{lookupEnv: os.LookupEnv, setEnv: os.Setenv, environ: os.Environ}
}

// LoadConfig builds the Config from, in order of precedence, the process
// environment, a .env file in the working directory, and parameter store
// pointers (*_SSM_PARAM) resolved through provider. Pointers are ignored when
// APP_ENV is unset or "local", so provider may be nil there.
func LoadConfig(provider SecretProvider) (*Config, error) {
	return loadConfigWithDeps(provider, defaultDeps())
}

func loadConfigWithDeps(provider SecretProvider, deps loaderDeps) (*Config, error) {
	// Missing .env is fine; existing variables are never overridden.
	_ = godotenv.Load()

	if env, set := deps.lookupEnv("APP_ENV"); set && env != localEnv {
		if err := resolveSSMParams(provider, deps); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, &ConfigError{Type: ErrParsing, Message: "cannot parse environment", Err: err}
	}
	cfg.Build = NewBuildInfo()

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validateConfig runs struct validation. Failures of required rules are
// reported as ErrMissingEnv so that an unset variable is easy to tell apart
// from a malformed one.
func validateConfig(cfg *Config) error {
	validate := validator.New()
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		var missing []string
		for _, fe := range fieldErrs {
			if strings.HasPrefix(fe.Tag(), "required") {
				missing = append(missing, fe.Namespace())
			}
		}
		if len(missing) == len(fieldErrs) {
			return &ConfigError{
				Type:    ErrMissingEnv,
				Message: fmt.Sprintf("required configuration missing: %s", strings.Join(missing, ", ")),
				Err:     err,
			}
		}
	}

	return &ConfigError{
		Type:    ErrValidation,
		Message: "configuration validation failed",
		Err:     err,
	}
}

// ssmBinding ties an unresolved variable to its parameter store path.
type ssmBinding struct {
	target string
	path   string
}

// pendingSSMBindings lists the *_SSM_PARAM pointers whose target variable is
// still unset, ordered by target name.
func pendingSSMBindings(deps loaderDeps) []ssmBinding {
	var out []ssmBinding
	for _, kv := range deps.environ() {
		key, path, ok := strings.Cut(kv, "=")
		if !ok || path == "" {
			continue
		}
		target, isPointer := strings.CutSuffix(key, ssmParamSuffix)
		if !isPointer || target == "" {
			continue
		}
		if _, set := deps.lookupEnv(target); set {
			continue
		}
		out = append(out, ssmBinding{target: target, path: path})
	}
	slices.SortFunc(out, func(a, b ssmBinding) int { return strings.Compare(a.target, b.target) })
	return out
}

// resolveSSMParams fetches every pending pointer in one batch and exports
// the values under their target names. Variables already present in the
// environment or loaded from .env win over the parameter store.
func resolveSSMParams(provider SecretProvider, deps loaderDeps) error {
	bindings := pendingSSMBindings(deps)
	if len(bindings) == 0 {
		return nil
	}

	targets := make([]string, len(bindings))
	paths := make([]string, len(bindings))
	for i, b := range bindings {
		targets[i] = b.target
		paths[i] = b.path
	}

	if provider == nil {
		return &ConfigError{
			Type:    ErrSSMResolution,
			Message: "no secret provider configured for " + strings.Join(targets, ", "),
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), ssmTimeout)
	defer cancel()

	values, err := provider.GetParametersBatch(ctx, paths)
	if err != nil {
		return &ConfigError{
			Type:    ErrSSMResolution,
			Message: fmt.Sprintf("batch fetch of %d parameters failed", len(paths)),
			Err:     err,
		}
	}

	var unresolved []string
	for _, b := range bindings {
		v, found := values[b.path]
		if !found {
			unresolved = append(unresolved, b.target)
			continue
		}
		if err := deps.setEnv(b.target, v); err != nil {
			return &ConfigError{Type: ErrSSMResolution, Message: "cannot export " + b.target, Err: err}
		}
	}
	if len(unresolved) > 0 {
		return &ConfigError{
			Type:    ErrSSMResolution,
			Message: "parameters not found for " + strings.Join(unresolved, ", "),
		}
	}
	return nil
}
