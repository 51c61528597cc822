// Package model provides the data structures shared by the pipeline packages.
// It defines the stage descriptions, the pipeline option hooks and the closed
// set of error kinds every stage reports.
package model
