package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReporter_Monotonic(t *testing.T) {
	var got []float64
	r := NewReporter(func(p float64) { got = append(got, p) })

	r.Report(10)
	r.Report(5) // regression is dropped
	r.Report(10)
	r.Report(40)
	r.Report(100)

	assert.Equal(t, []float64{10, 40, 100}, got)
	assert.Equal(t, 100.0, r.Last())
}

func TestReporter_Clamps(t *testing.T) {
	var got []float64
	r := NewReporter(func(p float64) { got = append(got, p) })

	r.Report(-5)
	r.Report(250)

	assert.Equal(t, []float64{100}, got)
}

func TestReporter_NilSafe(t *testing.T) {
	var r *Reporter
	r.Report(50)
	assert.Equal(t, 0.0, r.Last())

	withoutFn := NewReporter(nil)
	withoutFn.Report(50)
	assert.Equal(t, 50.0, withoutFn.Last())
}

func TestWarningString(t *testing.T) {
	w := Warning{Kind: WarnRowOverflow, OffsetPx: 120, Detail: "snap forward"}
	s := w.String()
	assert.Contains(t, s, "120")
	assert.Contains(t, s, "snap forward")
}
