package pipeline_test

import (
	"bytes"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/askiada/go-mlpipeline/pkg/pipeline/model"
)

type bufferLogs struct {
	mu    sync.Mutex
	files map[string]*bytes.Buffer
}

func newBufferLogs(t *testing.T) *bufferLogs {
	t.Helper()

	return &bufferLogs{files: make(map[string]*bytes.Buffer)}
}

func (b *bufferLogs) Open(fileName string) (*slog.Logger, io.Closer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	buf := &bytes.Buffer{}
	b.files[fileName] = buf

	return slog.New(slog.NewTextHandler(buf, nil)), io.NopCloser(nil), nil
}

func (b *bufferLogs) content(fileName string) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if buf, ok := b.files[fileName]; ok {
		return buf.String()
	}

	return ""
}

type recordingOption struct {
	events []string
	errs   map[string]error
}

func (r *recordingOption) New() error {
	r.events = append(r.events, "new")
	r.errs = make(map[string]error)

	return nil
}

func (r *recordingOption) PrepareStage(parent, stage *model.StageInfo) error {
	r.events = append(r.events, "prepare "+parent.Name+" -> "+stage.Name)

	return nil
}

func (r *recordingOption) AfterStage(stage *model.StageInfo, _ time.Duration, err error) error {
	r.events = append(r.events, "after "+stage.Name)
	r.errs[stage.Name] = err

	return nil
}

func (r *recordingOption) Finish() error {
	r.events = append(r.events, "finish")

	return nil
}
