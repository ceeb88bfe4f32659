package steps

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	started  []string
	finished []Status
}

func (r *recorder) Start(rec Record)             { r.started = append(r.started, rec.Label) }
func (r *recorder) Finish(rec Record, err error) { r.finished = append(r.finished, rec.Status) }

func step(label string, status Status, err error, ran *[]string) Step {
	return Step{Label: label, Run: func(context.Context) (Status, error) {
		*ran = append(*ran, label)
		return status, err
	}}
}

func TestSequenceRunsAllSteps(t *testing.T) {
	var ran []string
	rep := &recorder{}
	seq := Sequence{Reporter: rep, Steps: []Step{
		step("a", OK, nil, &ran),
		step("b", Warn, nil, &ran),
		step("c", OK, nil, &ran),
	}}

	records, err := seq.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ran)
	assert.Equal(t, []Status{OK, Warn, OK}, rep.finished)
	assert.Equal(t, Record{Index: 2, Total: 3, Label: "b", Status: Warn}, records[1])
}

func TestSequenceAbortsOnError(t *testing.T) {
	var ran []string
	boom := errors.New("boom")
	seq := Sequence{Steps: []Step{
		step("a", OK, nil, &ran),
		step("b", OK, boom, &ran),
		step("c", OK, nil, &ran),
	}}

	records, err := seq.Run(context.Background())
	require.ErrorIs(t, err, boom)
	var se *StepError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "b", se.Record.Label)
	assert.Equal(t, "step 2/3 (b) failed: boom", err.Error())

	assert.Equal(t, []string{"a", "b"}, ran)
	assert.Equal(t, []Status{OK, Fail, Pending}, []Status{records[0].Status, records[1].Status, records[2].Status})
}

func TestSequenceStopsWhenCancelled(t *testing.T) {
	var ran []string
	ctx, cancel := context.WithCancel(context.Background())
	seq := Sequence{Steps: []Step{
		{Label: "a", Run: func(context.Context) (Status, error) {
			ran = append(ran, "a")
			cancel()
			return OK, nil
		}},
		step("b", OK, nil, &ran),
	}}

	_, err := seq.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"a"}, ran)
}
