// Package files provides the file-system helpers shared by the incident
// tools, most importantly atomic writes: output files appear complete or not
// at all.
package files
