package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptional_States(t *testing.T) {
	none := None[int64]()
	assert.False(t, none.IsSet())
	v, ok := none.Get()
	assert.False(t, ok)
	assert.Zero(t, v)
	assert.Equal(t, int64(7), none.OrElse(7))

	zero := Some[int64](0)
	assert.True(t, zero.IsSet())
	assert.Equal(t, int64(0), zero.OrElse(7))
	assert.NotEqual(t, none, zero)
}

func TestParseSchemaVersion(t *testing.T) {
	tests := []struct {
		in      string
		want    SchemaVersion
		wantErr bool
	}{
		{"a", SchemaA, false},
		{"B", SchemaB, false},
		{" b ", SchemaB, false},
		{"", 0, true},
		{"c", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSchemaVersion(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.Valid())
		})
	}
}

func TestSchemaVersion_String(t *testing.T) {
	assert.Equal(t, "a", SchemaA.String())
	assert.Equal(t, "b", SchemaB.String())
	assert.Equal(t, "SchemaVersion(0)", SchemaVersion(0).String())
	assert.False(t, SchemaVersion(0).Valid())
}

func TestHistogramResolution(t *testing.T) {
	assert.True(t, ResolutionMinute.Valid())
	assert.True(t, ResolutionThirtySecond.Valid())
	assert.False(t, HistogramResolution("15s").Valid())
	assert.Equal(t, time.Minute, ResolutionMinute.Duration())
	assert.Equal(t, 30*time.Second, ResolutionThirtySecond.Duration())
}

func TestResolutionFor_Defaults(t *testing.T) {
	var ep EpisodeMetricsResult
	assert.Equal(t, time.Minute, ep.ResolutionFor(SchemaA))
	assert.Equal(t, 60*time.Second, ep.ResolutionFor(SchemaB))

	ep.ListenerHistogramResolution = Some(ResolutionThirtySecond)
	ep.ListenerHistogramResolutionSeconds = Some[int64](15)
	assert.Equal(t, 30*time.Second, ep.ResolutionFor(SchemaA))
	assert.Equal(t, 15*time.Second, ep.ResolutionFor(SchemaB))
}

func TestSpcQueryResponse_PartialFailures(t *testing.T) {
	resp := &SpcQueryResponse{
		Version: SchemaA,
		Results: ResultsResponse{
			"ok":   {Metrics: &PodcastMetricsResult{AsOf: time.Now().UTC()}},
			"bad1": {Error: &CommonError{Message: "not found"}},
			"bad2": {Error: &CommonError{Message: "forbidden"}},
		},
	}
	assert.False(t, resp.IsError())
	assert.Equal(t, 2, resp.PartialFailures())

	top := &SpcQueryResponse{Version: SchemaB, Error: &CommonError{Message: "down"}}
	assert.True(t, top.IsError())
	assert.Equal(t, 0, top.PartialFailures())
}
