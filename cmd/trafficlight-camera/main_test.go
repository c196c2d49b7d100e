package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestShouldProcess(t *testing.T) {
	assert.True(t, shouldProcess(0, 5))
	assert.False(t, shouldProcess(3, 5))
	assert.True(t, shouldProcess(10, 5))
	assert.True(t, shouldProcess(7, 1))
	assert.True(t, shouldProcess(7, 0))
}

func TestFPSMeter(t *testing.T) {
	start := time.Unix(0, 0)
	m := newFPSMeter(start)

	for i := 1; i < 30; i++ {
		m.tick(start.Add(time.Duration(i) * 33 * time.Millisecond))
	}
	assert.Zero(t, m.fps, "no estimate before a full second")

	m.tick(start.Add(1200 * time.Millisecond))
	assert.InDelta(t, 30/1.2, m.fps, 1e-9)
	assert.Zero(t, m.frames)
}

func TestOpenCaptureMissingFile(t *testing.T) {
	_, err := openCapture("does-not-exist.mp4")
	assert.Error(t, err)
}
