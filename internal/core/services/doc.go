// Package services implements the driving port interfaces.
// Services hold the pipeline logic: scanning, classification, hybrid
// search, and maintenance of the derived index and vector projections.
// They depend only on driven ports, never on concrete adapters.
package services
