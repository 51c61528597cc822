package drawer

import (
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-mlpipeline/pkg/pipeline/measure"
	"github.com/askiada/go-mlpipeline/pkg/pipeline/model"
)

type pipelineDrawer struct {
	Drawer
	m         measure.Measure
	startTime time.Time
	last      *model.StageInfo
}

func (pd *pipelineDrawer) New() error {
	err := pd.AddStage(model.StartStage.Name)
	if err != nil {
		return errors.Wrap(err, "unable to add start stage to drawer")
	}

	err = pd.AddStage(model.EndStage.Name)
	if err != nil {
		return errors.Wrap(err, "unable to add end stage to drawer")
	}

	return nil
}

func (pd *pipelineDrawer) PrepareStage(parentStage, stage *model.StageInfo) error {
	err := pd.AddStage(stage.Name)
	if err != nil {
		return err
	}

	err = pd.AddLink(parentStage.Name, stage.Name)
	if err != nil {
		return err
	}

	pd.last = stage

	return nil
}

func (pd *pipelineDrawer) AfterStage(*model.StageInfo, time.Duration, error) error {
	return nil
}

func (pd *pipelineDrawer) Finish() error {
	if pd.last != nil {
		err := pd.AddLink(pd.last.Name, model.EndStage.Name)
		if err != nil {
			return err
		}
	}

	if pd.m != nil {
		err := pd.AddMeasure(pd.m)
		if err != nil {
			return errors.Wrap(err, "unable to add measure")
		}

		err = pd.SetTotalTime(model.EndStage.Name, pd.startTime)
		if err != nil {
			return errors.Wrap(err, "unable to set total time")
		}
	}

	err := pd.Draw()
	if err != nil {
		return errors.Wrap(err, "unable to draw pipeline")
	}

	return nil
}

// PipelineDrawer draws the stage graph once the pipeline finished. When measure
// is set, stages are coloured by duration.
func PipelineDrawer(drawer Drawer, measure measure.Measure) model.PipelineOption {
	return &pipelineDrawer{Drawer: drawer, m: measure, startTime: time.Now()}
}
