package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gographer/gographer/engineerr"
	"github.com/gographer/gographer/matcher"
)

func TestExitCodeForUnsupportedBinaryFormat(t *testing.T) {
	assert.Equal(t, 1, exitCodeFor(&engineerr.UnsupportedBinaryFormat{Path: "x", Reason: "bad magic"}))
}

func TestExitCodeForIoError(t *testing.T) {
	assert.Equal(t, 2, exitCodeFor(&engineerr.IoError{Path: "x", Reason: "missing"}))
}

func TestExitCodeForInvalidArgument(t *testing.T) {
	assert.Equal(t, 64, exitCodeFor(&engineerr.InvalidArgument{Field: "threshold", Reason: "out of range"}))
}

func TestValidateArgsRejectsMissingSamplePath(t *testing.T) {
	err := validateArgs(rootCmd, nil)
	assert.Error(t, err)

	var invalidArg *engineerr.InvalidArgument
	assert.ErrorAs(t, err, &invalidArg)
	assert.Equal(t, 64, exitCodeFor(err))
}

func TestValidateArgsAcceptsSamplePath(t *testing.T) {
	assert.NoError(t, validateArgs(rootCmd, []string{"sample.exe"}))
}

func TestRunCompareRejectsThresholdOutOfRange(t *testing.T) {
	threshold = 1.5
	defer func() { threshold = 0.0 }()

	err := runCompare(rootCmd, []string{"sample.exe"})
	assert.Error(t, err)

	var invalidArg *engineerr.InvalidArgument
	assert.ErrorAs(t, err, &invalidArg)
}

func TestPrintTreeWritesSampleName(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)

	report := &matcher.CompareReport{
		SampleName: "sample.exe",
		Matches: []matcher.BinaryMatch{
			{Source: "sample.exe", Dest: "clean.dll", Similarity: 0.91, Matches: []matcher.MethodMatch{
				{OldName: "sub_1000", ResolvedName: "main.Init", MalwareOffset: 0x1000, CleanOffset: 0x4000, Similarity: 0.99},
			}},
		},
	}
	printTree(rootCmd, report)

	assert.Contains(t, buf.String(), "sample.exe")
	assert.Contains(t, buf.String(), "clean.dll")
	assert.Contains(t, buf.String(), "main.Init")
}
