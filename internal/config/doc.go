// Package config loads stripelint configuration from local and global YAML
// files with precedence rules. It is internal; CLI code maps flags and files
// into linter and engine configuration.
package config
