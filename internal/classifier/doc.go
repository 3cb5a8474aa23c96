// Package classifier assigns documents to the fixed topic taxonomy.
//
// The rule engine is deterministic and side-effect free: it scores every
// scoreable category against keyword and pattern tables, applies the
// exclusivity overrides, normalises scores into [0, 1] confidences and
// de-noises the ranked list down to at most two assignments. An optional
// AI path may replace the rule engine for a single document.
package classifier
