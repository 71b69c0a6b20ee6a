// Package config handles configuration file parsing and validation for keen-targets.
//
// Configuration is read from TOML, or from YAML when the file name ends in
// .yaml or .yml, and validated with go-playground/validator. Every
// validation problem is collected into ValidationErrors so the user sees
// them all at once.
//
// # Configuration Structure
//
//   - [general]: verbose, greppable, accessible, output_template
//   - [targets]: addresses, exclude, resolver
//   - [resolver]: timeout_ms, qps
//   - [api]: listen
//
// Target, exclusion and resolver entries that name files relative to the
// config file directory are rewritten to absolute paths on load.
//
// # Example Usage
//
//	cfg, err := config.LoadConfig("/etc/keen-targets.toml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.ValidateConfig(); err != nil {
//	    log.Fatal(err)
//	}
package config
