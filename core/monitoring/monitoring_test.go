package monitoring

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recordingMonitor struct {
	errs []error
	tags []map[string]string
}

func (r *recordingMonitor) CaptureException(err error, tags map[string]string) {
	r.errs = append(r.errs, err)
	r.tags = append(r.tags, tags)
}
func (r *recordingMonitor) Recover()            {}
func (r *recordingMonitor) Flush(time.Duration) {}

func TestInitAndCapture(t *testing.T) {
	prev := Current()
	t.Cleanup(func() { Init(prev) })

	rec := &recordingMonitor{}
	Init(rec)
	Init(nil)
	assert.Same(t, rec, Current())

	CaptureException(errors.New("boom"), ReplicateTags("P_ref", 3, 42))
	assert.Len(t, rec.errs, 1)
	assert.Equal(t, map[string]string{"program": "P_ref", "replicate": "3", "seed": "42"}, rec.tags[0])
}
