package batch

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lotcheck/logger"
	"lotcheck/types"
)

func TestFormatSummary(t *testing.T) {
	report := &Report{Results: []types.ClassifiedResult{
		{Link: "item/1", Symbol: types.SymbolGreen, Price: 97},
		{Link: "item/2", Symbol: types.SymbolYellow, Price: 194},
		{Link: "item/3", Symbol: types.SymbolRemoved},
	}}

	want := "Account: item/1 - State: 🟢, Price: 97\n" +
		"Account: item/2 - State: 🟡, Price: 194\n" +
		"Removed/No access: item/3\n"
	assert.Equal(t, want, FormatSummary(report))
}

func TestSinks_ContinueAfterFailure(t *testing.T) {
	var got []string
	ok := func(name string) NamedSink {
		return NamedSink{Name: name, Sink: SinkFunc(func(_ context.Context, r *Report) error {
			got = append(got, name)
			return nil
		})}
	}
	failing := NamedSink{Name: "broken", Sink: SinkFunc(func(context.Context, *Report) error {
		got = append(got, "broken")
		return errors.New("boom")
	})}

	sinks := NewSinks(logger.NewNop(), ok("s3"), failing, ok("kafka"))
	err := sinks.Publish(context.Background(), &Report{ID: uuid.New()})

	var pe *PublishError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 1, pe.Failed)
	assert.Equal(t, 3, pe.Total)
	assert.Equal(t, []string{"s3", "broken", "kafka"}, got)
}

func TestSinks_Nil(t *testing.T) {
	var sinks *Sinks
	assert.Equal(t, 0, sinks.Len())
	assert.NoError(t, sinks.Publish(context.Background(), &Report{}))
}
