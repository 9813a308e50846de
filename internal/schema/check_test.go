package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckReportsIssuesInDeclarationOrder(t *testing.T) {
	path := writeFile(t, t.TempDir(), "Kconfig.hcl", `
config "A" {
  type       = "bool"
  prompt     = "a"
  depends_on = "MISSING && B"
  default {
    value = true
    when  = "MISSING"
  }
}

config "B" {
  type = "bool"
}

config "C" {
  type   = "int"
  prompt = "c"
}
`)
	s, err := Load(testContext(path), nil)
	require.NoError(t, err)

	issues := s.Check()
	require.Len(t, issues, 3)

	assert.Equal(t, IssueUndeclared, issues[0].Code)
	assert.Equal(t, "A", issues[0].Symbol)
	assert.Contains(t, issues[0].Message, "MISSING")

	assert.Equal(t, IssueNoPrompt, issues[1].Code)
	assert.Equal(t, "B", issues[1].Symbol)

	assert.Equal(t, IssueNoValue, issues[2].Code)
	assert.Equal(t, "C", issues[2].Symbol)
	assert.Equal(t, 16, issues[2].Pos.Line)
}

func TestCheckCleanSchema(t *testing.T) {
	path := writeFile(t, t.TempDir(), "Kconfig.hcl", `
config "SMP" {
  type   = "bool"
  prompt = "smp"
  default {
    value = false
  }
}

config "CPUS_NR" {
  type       = "int"
  prompt     = "cpus"
  depends_on = "SMP"
  default {
    value = 2
  }
}
`)
	s, err := Load(testContext(path), nil)
	require.NoError(t, err)
	assert.Empty(t, s.Check())
}
