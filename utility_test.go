package blocklog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		input    string
		expected Category
		wantErr  bool
	}{
		{"csv", CategoryCSV, false},
		{"CSV", CategoryCSV, false},
		{" txt ", CategoryTXT, false},
		{"log", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			cat, err := ParseCategory(tt.input)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, cat)
			}
		})
	}
}

func TestCategoryExtension(t *testing.T) {
	assert.Equal(t, ".csv", CategoryCSV.Extension())
	assert.Equal(t, ".txt", CategoryTXT.Extension())
	assert.Equal(t, "", Category(7).Extension())
	assert.Equal(t, "category(7)", Category(7).String())
}

func TestParseKeyValue(t *testing.T) {
	tests := []struct {
		input     string
		wantKey   string
		wantValue string
		wantErr   bool
	}{
		{"key=value", "key", "value", false},
		{" key = value ", "key", "value", false},
		{"key=value=with=equals", "key", "value=with=equals", false},
		{"noequals", "", "", true},
		{"=value", "", "", true},
		{"key=", "key", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			key, value, err := parseKeyValue(tt.input)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantKey, key)
				assert.Equal(t, tt.wantValue, value)
			}
		})
	}
}

func TestEnumNames(t *testing.T) {
	assert.Equal(t, "CHECK_SIZE", PhaseCheckSize.String())
	assert.Equal(t, "RESOLVE_INDEX", PhaseResolveIndex.String())
	assert.Equal(t, "WRITE", PhaseWrite.String())
	assert.Equal(t, "PHASE(9)", Phase(9).String())

	assert.Equal(t, "idle", StepIdle.String())
	assert.Equal(t, "pending", StepPending.String())
	assert.Equal(t, "done", StepDone.String())
	assert.Equal(t, "failed", StepFailed.String())
}

func TestErrorHelpers(t *testing.T) {
	err := fmtErrorf("%w: detail", ErrStorageIO)
	assert.Equal(t, "blocklog: storage i/o failure: detail", err.Error())
	assert.ErrorIs(t, err, ErrStorageIO)

	assert.Nil(t, combineErrors(nil, nil))
	e1 := errors.New("one")
	assert.Equal(t, e1, combineErrors(e1, nil))
	assert.Equal(t, e1, combineErrors(nil, e1))

	joined := combineErrors(e1, ErrDeviceBusy)
	assert.ErrorIs(t, joined, e1)
	assert.ErrorIs(t, joined, ErrDeviceBusy)
}
