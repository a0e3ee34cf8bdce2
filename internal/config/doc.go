// Package config loads the settings of the extraction service.
//
// Sources, later ones overriding earlier ones:
//  1. NewConfig defaults
//  2. a YAML file: --config, ./.rudl-extract.yaml or
//     $XDG_CONFIG_HOME/rudl-extract/config.yaml
//  3. a .env file in the working directory
//  4. RUDL_* environment variables
//
// The YAML file can also override the region scoring policy. Validate
// reports problems as sentinel errors.
package config
