// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem.
//
// Adapters:
//   - ConfigStore: TOML configuration with an optional environment overlay
//   - PromptStore: user-editable analysis prompts with embedded defaults
package file
