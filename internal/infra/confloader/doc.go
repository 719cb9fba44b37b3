// Package confloader provides configuration loading mechanism.
//
// This package implements a flexible configuration loader that supports
// multiple sources and formats using koanf as the underlying library.
//
// Features:
//
//   - Multiple sources: files, environment variables, in-memory maps
//   - Multiple formats: JSON, YAML
//   - Type safety: unmarshaling into typed structs
//
// Priority (highest to lowest):
//
//  1. Environment variables
//  2. Configuration file
//  3. Default values
package confloader
