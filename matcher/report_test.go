package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportJSONRoundTrip(t *testing.T) {
	report := &CompareReport{
		SampleName: "sample.exe",
		Matches: []BinaryMatch{
			{
				Source:     "sample.exe",
				Dest:       "clean-a.dll",
				Similarity: 0.87,
				Matches: []MethodMatch{
					{OldName: "sub_1000", ResolvedName: "main.Init", MalwareOffset: 0x1000, CleanOffset: 0x4000, Similarity: 0.99},
					{OldName: "sub_1100", ResolvedName: "main.Run", MalwareOffset: 0x1100, CleanOffset: 0x4200, Similarity: 0.91},
					{OldName: "sub_1200", ResolvedName: "main.Stop", MalwareOffset: 0x1200, CleanOffset: 0x4400, Similarity: 0.72},
				},
			},
			{
				Source:     "sample.exe",
				Dest:       "clean-b.dll",
				Similarity: 0.41,
				Matches: []MethodMatch{
					{OldName: "sub_2000", ResolvedName: "helper.Fn", MalwareOffset: 0x2000, CleanOffset: 0x5000, Similarity: 0.55},
					{OldName: "sub_2100", ResolvedName: "helper.Fn2", MalwareOffset: 0x2100, CleanOffset: 0x5100, Similarity: 0.5},
					{OldName: "sub_2200", ResolvedName: "helper.Fn3", MalwareOffset: 0x2200, CleanOffset: 0x5200, Similarity: 0.3},
				},
			},
		},
		ComputeTimeMS: 1234,
	}

	data, err := report.ToJSON()
	require.NoError(t, err)

	parsed, err := FromJSON(data)
	require.NoError(t, err)

	assert.Equal(t, report, parsed)
}

func TestReportJSONFieldNames(t *testing.T) {
	report := &CompareReport{
		SampleName: "sample.exe",
		Matches: []BinaryMatch{
			{
				Source:     "sample.exe",
				Dest:       "clean.dll",
				Similarity: 1.0,
				Matches: []MethodMatch{
					{OldName: "sub_1000", ResolvedName: "main.Init", MalwareOffset: 0x1000, CleanOffset: 0x4000, Similarity: 1.0},
				},
			},
		},
	}

	data, err := report.ToJSON()
	require.NoError(t, err)
	body := string(data)

	for _, field := range []string{
		"sample_name", "matches", "source", "dest", "similarity",
		"old_name", "resolved_name", "malware_offset", "clean_offset",
	} {
		assert.Contains(t, body, field)
	}
}
