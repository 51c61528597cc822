package model

import "time"

// PipelineOption defines the interface for pipeline options.
type PipelineOption interface {
	// New initialises the pipeline option.
	New() error
	// PrepareStage runs when a stage is added to the pipeline.
	PrepareStage(parentStage, stage *StageInfo) error
	// AfterStage runs once the stage returned, successfully or not.
	AfterStage(stage *StageInfo, elapsed time.Duration, err error) error
	// Finish runs after the pipeline is finished.
	Finish() error
}
