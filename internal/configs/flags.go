package configs

import (
	"fmt"

	"github.com/spf13/pflag"

	ferrors "github.com/thorgate/flint/internal/errors"
)

type flagKind int

const (
	stringFlag flagKind = iota
	boolFlag
	listFlag
)

type flagSpec struct {
	name  string
	short string
	kind  flagKind
	usage string
	set   func(o *Options) any
}

var flagSpecs = []flagSpec{
	{"git-url", "r", stringFlag, "URL of the git repository holding the keystores", func(o *Options) any { return &o.GitURL }},
	{"git-branch", "", stringFlag, "branch of the keystores repository (default master)", func(o *Options) any { return &o.GitBranch }},
	{"type", "y", stringFlag, "keystore type: development or release", func(o *Options) any { return &o.Type }},
	{"app-identifier", "a", listFlag, "application identifiers, comma separated", func(o *Options) any { return &o.AppIdentifier }},
	{"full-name", "n", stringFlag, "certificate owner name", func(o *Options) any { return &o.FullName }},
	{"organization", "o", stringFlag, "certificate organization", func(o *Options) any { return &o.Organization }},
	{"organization-unit", "u", stringFlag, "certificate organizational unit", func(o *Options) any { return &o.OrganizationUnit }},
	{"city", "c", stringFlag, "certificate city or locality", func(o *Options) any { return &o.City }},
	{"state", "s", stringFlag, "certificate state or province", func(o *Options) any { return &o.State }},
	{"country", "x", stringFlag, "certificate two-letter country code", func(o *Options) any { return &o.Country }},
	{"readonly", "", boolFlag, "only fetch existing keystores, never create or delete", func(o *Options) any { return &o.Readonly }},
	{"skip-confirmation", "", boolFlag, "answer yes to the confirmation prompts of nuke", func(o *Options) any { return &o.SkipConfirmation }},
	{"skip-docs", "", boolFlag, "do not write a README.md into the repository", func(o *Options) any { return &o.SkipDocs }},
	{"git-full-name", "", stringFlag, "git author name for commits", func(o *Options) any { return &o.GitFullName }},
	{"git-user-email", "", stringFlag, "git author email for commits", func(o *Options) any { return &o.GitUserEmail }},
	{"shallow-clone", "", boolFlag, "truncate the cloned history to one revision", func(o *Options) any { return &o.ShallowClone }},
	{"clone-branch-directly", "", boolFlag, "clone only the configured branch, which must already exist", func(o *Options) any { return &o.CloneBranchDirectly }},
	{"keystore-properties-path", "", stringFlag, "where to write keystore.properties (default ../keystore.properties)", func(o *Options) any { return &o.KeystorePropertiesPath }},
	{"target-dir", "", stringFlag, "directory keystores are installed into (default ../app/)", func(o *Options) any { return &o.TargetDir }},
}

// RegisterFlags adds one flag per option to fs. Flags carry no defaults so
// that an unset flag never hides the Flintfile or the environment.
func RegisterFlags(fs *pflag.FlagSet) {
	for _, spec := range flagSpecs {
		switch spec.kind {
		case stringFlag:
			fs.StringP(spec.name, spec.short, "", spec.usage)
		case boolFlag:
			fs.BoolP(spec.name, spec.short, false, spec.usage)
		case listFlag:
			fs.StringSliceP(spec.name, spec.short, nil, spec.usage)
		}
	}
}

// applyFlags copies every flag the user set onto opts.
func applyFlags(fs *pflag.FlagSet, opts *Options) error {
	for _, spec := range flagSpecs {
		f := fs.Lookup(spec.name)
		if f == nil || !f.Changed {
			continue
		}

		var err error
		switch dst := spec.set(opts).(type) {
		case *string:
			*dst, err = fs.GetString(spec.name)
		case *bool:
			*dst, err = fs.GetBool(spec.name)
		case *List:
			var values []string
			values, err = fs.GetStringSlice(spec.name)
			var out List
			for _, v := range values {
				out = append(out, splitList(v)...)
			}
			*dst = out
		}
		if err != nil {
			return fmt.Errorf("%w: --%s: %w", ferrors.ErrInvalidOption, spec.name, err)
		}
	}
	return nil
}

// FromFlags returns options holding only the flags the user set.
func FromFlags(fs *pflag.FlagSet) (Options, error) {
	var opts Options
	err := applyFlags(fs, &opts)
	return opts, err
}
