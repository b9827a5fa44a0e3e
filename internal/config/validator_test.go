package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateRejectsNoLocations(t *testing.T) {
	err := Validate(IndexingOptions{})
	assert.Error(t, err)
}

func TestValidateRejectsNegativeFields(t *testing.T) {
	base := Default()

	negSize := base
	negSize.MaxFileSize = -1
	assert.Error(t, Validate(negSize))

	negThreads := base
	negThreads.ParallelThreads = -1
	assert.Error(t, Validate(negThreads))

	negBatch := base
	negBatch.BatchSize = -1
	assert.Error(t, Validate(negBatch))

	negDebounce := base
	negDebounce.WatchDebounceMs = -1
	assert.Error(t, Validate(negDebounce))
}

func TestValidateAcceptsDefaults(t *testing.T) {
	assert.NoError(t, Validate(Default()))
}
