// Package config loads, normalizes, and validates sessionprep configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and validates the timezone and directory
// settings the organizer depends on. Always obtain settings through this
// package so downstream code receives sanitized absolute paths and clear
// validation errors.
package config
