package main

import (
	"testing"

	"github.com/matryer/is"
)

func TestSplitArgs(t *testing.T) {
	is := is.New(t)
	cfgArgs, cmdArgs := splitArgs([]string{"--debug", "best", "-time", "2", "--strategy=greedy"})
	is.Equal(cfgArgs, []string{"--debug", "--strategy=greedy"})
	is.Equal(cmdArgs, []string{"best", "-time", "2"})
}
