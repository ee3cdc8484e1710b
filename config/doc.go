// Package config loads the service configuration from a TOML file.
//
// Values missing from the file keep the defaults from Default. Paths may
// start with ~ and are made absolute. Storage paths left empty are derived
// from storage.data_dir.
package config
