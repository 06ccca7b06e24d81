package status

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindCodesAreStable(t *testing.T) {
	tests := []struct {
		kind Kind
		code int
	}{
		{OK, 0},
		{InvalidHandle, 1},
		{InvalidDocument, 2},
		{AlreadyOpen, 3},
		{UnknownComponent, 4},
		{UnknownComponentSegment, 5},
		{UnknownProfile, 6},
		{IndexOutOfRange, 7},
		{ParameterOutOfRange, 8},
		{InvalidParameter, 9},
		{GeometryExportFailed, 10},
		{InternalError, 11},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.code, tt.kind.Code())
		})
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "index out of range", IndexOutOfRange.String())
	assert.Equal(t, "Kind(99)", Kind(99).String())
}

func TestErrorIsKind(t *testing.T) {
	err := New(IndexOutOfRange, "wing.SegmentUID", "segment index %d not in [1, %d]", 3, 2)
	wrapped := fmt.Errorf("outer: %w", err)

	assert.True(t, errors.Is(wrapped, IndexOutOfRange))
	assert.False(t, errors.Is(wrapped, InvalidHandle))
	assert.Equal(t, IndexOutOfRange, KindOf(wrapped))
	assert.Equal(t, 7, Code(wrapped))
	assert.Contains(t, err.Error(), "wing.SegmentUID")
	assert.Contains(t, err.Error(), "segment index 3")
}

func TestErrorUnwrapsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(InternalError, "export.IGES", cause)
	require.Error(t, err)
	assert.True(t, errors.Is(err, cause))
	assert.True(t, errors.Is(err, InternalError))
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(InternalError, "op", nil))
	assert.NoError(t, Annotate("op", nil))
}

func TestBareKindAsError(t *testing.T) {
	var err error = InvalidHandle
	assert.Equal(t, InvalidHandle, KindOf(err))
	assert.Equal(t, 1, Code(err))
}

func TestUntaggedErrorIsInternal(t *testing.T) {
	assert.Equal(t, InternalError, KindOf(errors.New("boom")))
	assert.Equal(t, OK, KindOf(nil))
	assert.Equal(t, 0, Code(nil))
}

func TestAnnotateKeepsKind(t *testing.T) {
	base := New(UnknownProfile, "profile.Lookup", "no profile %q", "NACA0012")
	err := Annotate("api.ProfileSplineCount", base)
	assert.Equal(t, UnknownProfile, KindOf(err))
	assert.Contains(t, err.Error(), "api.ProfileSplineCount: profile.Lookup")
}

func TestWithUIDAndStage(t *testing.T) {
	base := New(GeometryExportFailed, "export.STEP", "degenerate surface")
	err := base.WithUID("W1").WithStage("surfaces")
	assert.Contains(t, err.Error(), "uid W1")
	assert.Contains(t, err.Error(), "stage surfaces")
	assert.Empty(t, base.UID, "WithUID must not mutate the receiver")
}
