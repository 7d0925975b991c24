package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	old := GitCommit
	GitCommit = "abc1234"
	defer func() { GitCommit = old }()

	assert.Contains(t, String(), "v"+Version)
	assert.Contains(t, String(), "abc1234")
}
