package internal

import (
	"maps"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIterSeq2Concat(t *testing.T) {
	assert := assert.New(t)

	a := map[string]string{"A": "1", "B": "2"}
	b := map[string]string{"B": "3", "C": "4"}

	got := map[string]string{}
	for k, v := range IterSeq2Concat(maps.All(a), maps.All(b)) {
		got[k] = v
	}

	assert.Equal("1", got["A"])
	assert.Equal("3", got["B"])
	assert.Equal("4", got["C"])
	assert.Len(got, 3)
}

func TestIterSeq2Concat_Stop(t *testing.T) {
	assert := assert.New(t)

	a := map[int]int{1: 1, 2: 2}
	b := map[int]int{3: 3}

	count := 0
	for range IterSeq2Concat(maps.All(a), maps.All(b)) {
		count++
		break
	}

	assert.Equal(1, count)
}
