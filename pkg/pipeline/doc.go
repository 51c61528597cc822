// Package pipeline runs the stages of an ML training pipeline.
//
// A pipeline is an ordered list of stages (ingestion, validation, transformation, training). Stages run one after
// the other, each with its own logger, usually backed by a dedicated log file. The pipeline stops on the first stage
// that returns an error and reports that error decorated with the stage name.
//
// Pipeline options (see the model package) observe the run: the measure package records the duration and outcome
// of every stage and the drawer package renders the stage graph as a DOT file.
package pipeline
