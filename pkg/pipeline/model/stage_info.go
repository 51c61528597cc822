package model

// StageInfo describes a stage registered in a pipeline.
type StageInfo struct {
	Name    string
	LogFile string
	Index   int
}

var (
	StartStage = &StageInfo{Name: "start", Index: -1}
	EndStage   = &StageInfo{Name: "end", Index: -1}
)
