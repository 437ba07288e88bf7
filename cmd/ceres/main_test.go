package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrompt(t *testing.T) {
	assert := assert.New(t)

	var output bytes.Buffer
	path := prompt(&output, strings.NewReader("  games/pong.ch8 \nignored\n"))

	assert.Equal("games/pong.ch8", path)
	assert.Equal("Ceres: CHIP-8 Emulator\n\nFile: ", output.String())

	path = prompt(&output, strings.NewReader(""))
	assert.Equal("", path)
}

func TestConfig_Check(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		cfg  config
		args []string
		ok   bool
	}){
		{config{}, nil, true},
		{config{}, []string{"pong.ch8"}, true},
		{config{}, []string{"pong.ch8", "extra"}, false},
		{config{compile: "pong.c8s"}, nil, true},
		{config{compile: "pong.c8s", save: "pong.ch8"}, nil, true},
		{config{save: "pong.ch8"}, nil, false},
		{config{compile: "pong.c8s"}, []string{"pong.ch8"}, false},
	}

	for _, entry := range table {
		err := entry.cfg.check(entry.args)
		if entry.ok {
			assert.NoError(err, "%+v %v", entry.cfg, entry.args)
		} else {
			assert.Error(err, "%+v %v", entry.cfg, entry.args)
		}
	}
}
