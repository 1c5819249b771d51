// Package configs loads the options of a flint run.
//
// Options come from four layers, each overriding the previous one:
//
//   - built-in defaults (branch master, type development, ...)
//   - the Flintfile, a TOML file found in the working directory, its
//     fastlane/ subdirectory, or any parent up to the home directory
//   - FLINT_* environment variables
//   - command line flags the user set explicitly
//
// Relative paths (keystore_properties_path, target_dir) are resolved against
// the directory that holds the Flintfile, so the defaults point from
// fastlane/ into the Android project.
//
// The repository passphrase is deliberately not an option; it comes from
// FLINT_PASSWORD or a prompt, see package password.
package configs
