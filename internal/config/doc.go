// Package config provides centralized configuration management for the
// incident tools. It handles loading configuration from multiple sources,
// validation, and the on-disk layout of every dataset and report.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file (INCIDENT_CONFIG, config.yaml or configs/config.yaml)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern INCIDENT_<SECTION>_<FIELD>:
//
//	INCIDENT_LOGGING_LEVEL=debug
//	INCIDENT_PIPELINE_CLAMP_QUANTILE=0.99
//	INCIDENT_PIPELINE_FAIL_ON_EMPTY=true
//	INCIDENT_STORAGE_SQLITE_PATH=data/incidents.db
//
// # Path Management
//
// Paths resolves every dataset, report and log location against one base
// directory:
//
//	paths := config.NewPaths(".")
//	fmt.Println(paths.DirtyCSV) // data/incidents_dirty.csv
package config
