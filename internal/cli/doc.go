// Package cli implements the expml command-line interface.
//
// Commands are package-level cobra.Command values registered from init():
//
//	expml run     - Live dashboard for the latest (or a picked) run
//	expml list    - Table of runs in the runs directory
//	expml logs    - Show or follow a run's debug.log
//	expml config  - Write a default config or change one key
//	expml version - Build information
//
// Every command resolves its settings through loadConfig, which layers the
// --config file (or the discovered .expml.yaml) over built-in defaults and
// EXPML_* environment variables, then validates the result. Failures are
// returned as *errors.Error values so the user sees what failed, why and
// how to fix it.
package cli
