// Package services defines shared utilities consumed by the ripping pipeline
// and its external tool integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers and stage names for logging.
//   - Structured error markers plus the Wrap helper so every failure carries
//     a classifiable kind (path not found, truncated navigation data, no
//     multichannel stream, ...) and maps to the process exit status.
//
// Use these helpers when wiring new pipeline logic so error reporting stays
// uniform across input domains.
package services
