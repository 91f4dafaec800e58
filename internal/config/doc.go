// ABOUTME: Package documentation for configuration loading.
// ABOUTME: Explains the env-first model and aggregate validation.

// Package config loads and validates the process configuration from the
// environment.
//
// Configuration is environment-sourced: a .env file is honored when
// present (local development), but the environment always wins. The
// allow-list of authorized chats is parsed exactly once here and passed
// on as an immutable value; startup fails before any connection attempt
// if a required key is missing or the allow-list is empty.
package config
