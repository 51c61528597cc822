package config

// The stage configurations are plain values: the manager builds a fresh copy
// for every call and the stages never modify them.

type DataIngestionConfig struct {
	RootDir            string
	SourceURL          string
	LocalDataFile      string
	UnzipDir           string
	ExtractConcurrency int
}

type DataValidationConfig struct {
	RootDir      string
	StatusFile   string
	UnzipDataDir string
	Schema       Columns
}

type DataTransformationConfig struct {
	RootDir     string
	DataPath    string
	StatusFile  string
	TestSize    float64
	RandomState int64
}

type ModelTrainerConfig struct {
	RootDir       string
	TrainDataPath string
	TestDataPath  string
	ModelPath     string
	MetricsPath   string
	TargetColumn  string
	Alpha         float64
	L1Ratio       float64
	MaxIter       int
	Tol           float64
}
