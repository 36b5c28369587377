package cmd

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRootRejectsWrongArity(t *testing.T) {
	for _, args := range [][]string{
		{},
		{"us-east-1"},
		{"us-east-1", "sales", "orders"},
		{"us-east-1", "sales", "orders", "SyntheticData", "orders", "extra"},
	} {
		RootCmd.SetArgs(args)
		RootCmd.SetOut(io.Discard)
		RootCmd.SetErr(io.Discard)
		assert.Error(t, RootCmd.Execute(), "args=%v", args)
	}
}

func TestTablesRejectsWrongArity(t *testing.T) {
	RootCmd.SetArgs([]string{"tables", "us-east-1"})
	RootCmd.SetOut(io.Discard)
	RootCmd.SetErr(io.Discard)
	assert.Error(t, RootCmd.Execute())
}
