// Package synth produces incident tables for exercising the cleaning
// pipeline.
//
// Generate builds a clean table of synthetic incidents in the pipeline's
// input schema. Corrupt then injects the defects the pipeline is meant to
// repair: duplicate rows, missing labels, label variants, odd and invalid
// date spellings, negative and runaway durations, resolved-before-opened
// timestamps and padded group names. Both are deterministic for a seed.
package synth
