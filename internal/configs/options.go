package configs

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/pflag"

	ferrors "github.com/thorgate/flint/internal/errors"
	"github.com/thorgate/flint/internal/keytool"
	logger "github.com/thorgate/flint/internal/logging"
	"github.com/thorgate/flint/internal/utils"
)

// Environments are the keystore types flint manages.
var Environments = []string{"development", "release"}

//go:embed templates/Flintfile
var FlintfileHeader []byte

// Options holds everything a flint command can be configured with.
type Options struct {
	GitURL    string `toml:"git_url,omitempty" env:"FLINT_GIT_URL, overwrite"`
	GitBranch string `toml:"git_branch,omitempty" env:"FLINT_GIT_BRANCH, overwrite"`
	Type      string `toml:"type,omitempty" env:"FLINT_TYPE, overwrite"`

	AppIdentifier List `toml:"app_identifier,omitempty" env:"FLINT_APP_IDENTIFIER, overwrite"`

	// Certificate subject, only needed when a keystore is generated.
	FullName         string `toml:"full_name,omitempty" env:"FLINT_FULL_NAME, overwrite"`
	Organization     string `toml:"organization,omitempty" env:"FLINT_ORGANIZATION, overwrite"`
	OrganizationUnit string `toml:"organization_unit,omitempty" env:"FLINT_ORGANIZATION_UNIT, overwrite"`
	City             string `toml:"city,omitempty" env:"FLINT_CITY, overwrite"`
	State            string `toml:"state,omitempty" env:"FLINT_STATE, overwrite"`
	Country          string `toml:"country,omitempty" env:"FLINT_COUNTRY, overwrite"`

	Readonly         bool `toml:"readonly,omitempty" env:"FLINT_READONLY, overwrite"`
	SkipConfirmation bool `toml:"skip_confirmation,omitempty" env:"FLINT_SKIP_CONFIRMATION, overwrite"`
	SkipDocs         bool `toml:"skip_docs,omitempty" env:"FLINT_SKIP_DOCS, overwrite"`
	Verbose          bool `toml:"verbose,omitempty" env:"FLINT_VERBOSE, overwrite"`

	GitFullName  string `toml:"git_full_name,omitempty" env:"FLINT_GIT_FULL_NAME, overwrite"`
	GitUserEmail string `toml:"git_user_email,omitempty" env:"FLINT_GIT_USER_EMAIL, overwrite"`

	ShallowClone        bool `toml:"shallow_clone,omitempty" env:"FLINT_SHALLOW_CLONE, overwrite"`
	CloneBranchDirectly bool `toml:"clone_branch_directly,omitempty" env:"FLINT_CLONE_BRANCH_DIRECTLY, overwrite"`

	KeystorePropertiesPath string `toml:"keystore_properties_path,omitempty" env:"FLINT_KEYSTORE_PROPERTIES_PATH, overwrite"`
	TargetDir              string `toml:"target_dir,omitempty" env:"FLINT_TARGET_DIR, overwrite"`

	// Source is the Flintfile the options were read from, if any.
	Source string `toml:"-"`
}

// Defaults returns the options every source is layered on.
func Defaults() Options {
	return Options{
		GitBranch:              "master",
		Type:                   "development",
		KeystorePropertiesPath: "../keystore.properties",
		TargetDir:              "../app/",
	}
}

// List is a list of strings that can be written as a TOML array, a single
// comma-separated TOML string or a comma-separated environment variable.
type List []string

// UnmarshalTOML implements toml.Unmarshaler.
func (l *List) UnmarshalTOML(v any) error {
	switch v := v.(type) {
	case string:
		*l = splitList(v)
	case []any:
		out := make(List, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return fmt.Errorf("expected a string, got %T", item)
			}
			out = append(out, splitList(s)...)
		}
		*l = out
	default:
		return fmt.Errorf("expected a string or an array of strings, got %T", v)
	}
	return nil
}

// EnvDecode implements envconfig.Decoder.
func (l *List) EnvDecode(val string) error {
	*l = splitList(val)
	return nil
}

func splitList(s string) List {
	var out List
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// LoadOptions controls where Load reads options from.
type LoadOptions struct {
	// Dir is where the Flintfile search starts. Defaults to the working
	// directory.
	Dir string

	// Lookuper resolves FLINT_* variables. Defaults to the process
	// environment.
	Lookuper envconfig.Lookuper

	// Flags holds command line flags registered with RegisterFlags. Only
	// flags the user set explicitly are applied.
	Flags *pflag.FlagSet

	Log logger.Logger
}

// Load layers defaults, the Flintfile, the environment and explicitly set
// flags, in that order, and resolves relative paths.
func Load(ctx context.Context, lo LoadOptions) (*Options, error) {
	opts := Defaults()

	dir := lo.Dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		dir = wd
	}

	flintfile, err := utils.FindFlintfile(dir)
	if err != nil {
		return nil, err
	}
	if flintfile != "" {
		md, err := LoadTOML(flintfile, &opts)
		if err != nil {
			return nil, fmt.Errorf("%w: reading %s: %w", ferrors.ErrInvalidOption, flintfile, err)
		}
		for _, key := range md.Undecoded() {
			lo.Log.Warnf("Unknown option %q in %s", key.String(), flintfile)
		}
		opts.Source = flintfile
		lo.Log.Debugf("Loaded options from %s", flintfile)
	}

	lookuper := lo.Lookuper
	if lookuper == nil {
		lookuper = envconfig.OsLookuper()
	}
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &opts,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("%w: %w", ferrors.ErrInvalidOption, err)
	}

	if lo.Flags != nil {
		if err := applyFlags(lo.Flags, &opts); err != nil {
			return nil, err
		}
	}

	base := dir
	if opts.Source != "" {
		base = filepath.Dir(opts.Source)
	}
	opts.KeystorePropertiesPath = utils.ResolvePath(base, opts.KeystorePropertiesPath)
	opts.TargetDir = utils.ResolvePath(base, opts.TargetDir)

	return &opts, nil
}

// Validate checks the options every repository command needs.
func (o Options) Validate() error {
	if strings.TrimSpace(o.GitURL) == "" {
		return fmt.Errorf("%w: git_url is required", ferrors.ErrInvalidOption)
	}
	if !slices.Contains(Environments, o.Type) {
		return fmt.Errorf("%w: unsupported type %q, allowed values: %s",
			ferrors.ErrInvalidOption, o.Type, strings.Join(Environments, ", "))
	}
	if o.GitUserEmail != "" && !utils.IsValidEmail(o.GitUserEmail) {
		return fmt.Errorf("%w: git_user_email %q is not an email address", ferrors.ErrInvalidOption, o.GitUserEmail)
	}
	return nil
}

// AppIdentifiers returns the configured application identifiers, failing
// when there are none.
func (o Options) AppIdentifiers() ([]string, error) {
	if len(o.AppIdentifier) == 0 {
		return nil, fmt.Errorf("%w: app_identifier is required", ferrors.ErrInvalidOption)
	}
	return o.AppIdentifier, nil
}

// Subject returns the certificate subject for generated keystores.
func (o Options) Subject() keytool.Subject {
	return keytool.Subject{
		FullName:         o.FullName,
		Organization:     o.Organization,
		OrganizationUnit: o.OrganizationUnit,
		City:             o.City,
		State:            o.State,
		Country:          o.Country,
	}
}
