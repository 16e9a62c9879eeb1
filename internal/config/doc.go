// Package config provides configuration structures and utilities for
// boxdtrend. It defines the main options for fetching the popular-films
// listing, enriching film details, and writing the history file.
package config
