package metrics

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCASCommitted(t *testing.T) {
	// Given: the current count for an operation
	before := CASCommits("testOp")

	// When: two commits are recorded
	CASCommitted("testOp")
	CASCommitted("testOp")

	// Then: the counter moved by two and is exposed per operation
	assert.Equal(t, before+2, CASCommits("testOp"))

	var buf bytes.Buffer
	WritePrometheus(&buf)
	assert.Contains(t, buf.String(), `tictactoe_cas_commits_total{op="testOp"}`)
}
