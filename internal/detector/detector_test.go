package detector

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const epsilon = 1e-9

func TestValidate(t *testing.T) {
	palm := OpenPalmLandmarks()

	tests := []struct {
		name    string
		points  []Point3D
		wantErr bool
	}{
		{"complete hand", palm.Points[:], false},
		{"too few points", palm.Points[:20], true},
		{"no points", nil, true},
		{"too many points", append(append([]Point3D{}, palm.Points[:]...), Point3D{X: 0.5, Y: 0.5}), true},
		{"x above one", withPoint(palm, IndexTip, Point3D{X: 1.2, Y: 0.5}), true},
		{"negative y", withPoint(palm, Wrist, Point3D{X: 0.5, Y: -0.01}), true},
		{"nan", withPoint(palm, ThumbTip, Point3D{X: math.NaN(), Y: 0.5}), true},
		{"edges are inclusive", withPoint(palm, PinkyTip, Point3D{X: 0, Y: 1}), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.points)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidLandmarks)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func withPoint(h HandLandmarks, idx int, p Point3D) []Point3D {
	points := append([]Point3D{}, h.Points[:]...)
	points[idx] = p
	return points
}

func TestNewHandLandmarks(t *testing.T) {
	palm := OpenPalmLandmarks()

	t.Run("copies points and metadata", func(t *testing.T) {
		h, err := NewHandLandmarks(palm.Points[:], "Left", 0.8)
		require.NoError(t, err)
		assert.Equal(t, palm.Points, h.Points)
		assert.Equal(t, "Left", h.Handedness)
		assert.Equal(t, 0.8, h.Score)
	})

	t.Run("rejects short slices", func(t *testing.T) {
		_, err := NewHandLandmarks(palm.Points[:5], "Right", 0.9)
		assert.ErrorIs(t, err, ErrInvalidLandmarks)
	})
}

func TestCenter(t *testing.T) {
	t.Run("mean of all points", func(t *testing.T) {
		x, y := Center([]Point3D{{X: 0.2, Y: 0.4}, {X: 0.4, Y: 0.8}})
		assert.InDelta(t, 0.3, x, epsilon)
		assert.InDelta(t, 0.6, y, epsilon)
	})

	t.Run("empty is origin", func(t *testing.T) {
		x, y := Center(nil)
		assert.Zero(t, x)
		assert.Zero(t, y)
	})
}

func TestHandLandmarks_MoveCenterTo(t *testing.T) {
	palm := OpenPalmLandmarks()
	moved := palm.MoveCenterTo(0.65, 0.5)

	x, y := Center(moved.Points[:])
	assert.InDelta(t, 0.65, x, epsilon)
	assert.InDelta(t, 0.5, y, epsilon)

	// Shape is preserved
	assert.InDelta(t,
		Distance2D(palm.Points[Wrist], palm.Points[MiddleTip]),
		Distance2D(moved.Points[Wrist], moved.Points[MiddleTip]),
		epsilon)
	assert.NoError(t, Validate(moved.Points[:]))
}

func TestParseResponse(t *testing.T) {
	palm := OpenPalmLandmarks()

	t.Run("keeps only max hands", func(t *testing.T) {
		line := buildResponse(t, palm.Points[:], palm.Points[:])
		hands, err := parseResponse(line, 1)
		require.NoError(t, err)
		require.Len(t, hands, 1)
		assert.Equal(t, palm.Points, hands[0].Points)
	})

	t.Run("no hands", func(t *testing.T) {
		hands, err := parseResponse([]byte(`{"hands": []}`), 1)
		require.NoError(t, err)
		assert.Empty(t, hands)
	})

	t.Run("malformed hand", func(t *testing.T) {
		line := buildResponse(t, palm.Points[:3])
		_, err := parseResponse(line, 1)
		assert.ErrorIs(t, err, ErrInvalidLandmarks)
	})

	t.Run("bad json", func(t *testing.T) {
		_, err := parseResponse([]byte(`{"hands":`), 1)
		require.Error(t, err)
		assert.False(t, errors.Is(err, ErrInvalidLandmarks))
	})
}

func buildResponse(t *testing.T, hands ...[]Point3D) []byte {
	t.Helper()
	payload := struct {
		Hands []jsonHand `json:"hands"`
	}{}
	for _, points := range hands {
		payload.Hands = append(payload.Hands, jsonHand{Points: points, Handedness: "Right", Score: 0.9})
	}
	line, err := json.Marshal(payload)
	require.NoError(t, err)
	return append(line, '\n')
}

func TestMockDetector(t *testing.T) {
	t.Run("returns empty hands by default", func(t *testing.T) {
		mock := NewMockDetector()

		hands, err := mock.Detect(nil)

		assert.NoError(t, err)
		assert.Nil(t, hands)
	})

	t.Run("returns configured hands", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetHands([]HandLandmarks{ThumbsUpLandmarks(), OpenPalmLandmarks()})

		hands, err := mock.Detect(nil)

		assert.NoError(t, err)
		assert.Len(t, hands, 2)
	})

	t.Run("plays a sequence then reports no hands", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetSequence([][]HandLandmarks{
			{FistLandmarks()},
			nil,
			{OpenPalmLandmarks()},
		})

		first, _ := mock.Detect(nil)
		second, _ := mock.Detect(nil)
		third, _ := mock.Detect(nil)
		fourth, _ := mock.Detect(nil)

		assert.Len(t, first, 1)
		assert.Empty(t, second)
		assert.Equal(t, OpenPalmLandmarks().Points, third[0].Points)
		assert.Empty(t, fourth)
		assert.Equal(t, 4, mock.Calls())
	})

	t.Run("returns configured error", func(t *testing.T) {
		mock := NewMockDetector()
		expectedErr := errors.New("detection failed")
		mock.SetError(expectedErr)

		hands, err := mock.Detect(nil)

		assert.Equal(t, expectedErr, err)
		assert.Nil(t, hands)
	})

	t.Run("implements Detector interface", func(t *testing.T) {
		var _ Detector = (*MockDetector)(nil)
		assert.NoError(t, NewMockDetector().Close())
	})
}

func TestFixturesAreValid(t *testing.T) {
	fixtures := map[string]HandLandmarks{
		"fist":        FistLandmarks(),
		"thumbs up":   ThumbsUpLandmarks(),
		"pointing":    PointingLandmarks(),
		"two fingers": TwoFingersLandmarks(),
		"pinky only":  PinkyOnlyLandmarks(),
		"open palm":   OpenPalmLandmarks(),
	}

	for name, h := range fixtures {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, Validate(h.Points[:]))
			assert.Equal(t, "Right", h.Handedness)
			assert.GreaterOrEqual(t, h.Score, 0.9)
		})
	}
}

func TestFirstHand(t *testing.T) {
	_, ok := FirstHand(nil)
	assert.False(t, ok)

	hand, ok := FirstHand([]HandLandmarks{FistLandmarks(), OpenPalmLandmarks()})
	require.True(t, ok)
	assert.Equal(t, FistLandmarks().Points, hand.Points)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 1, cfg.MaxHands)
	assert.Equal(t, 0.7, cfg.MinConfidence)
	assert.Equal(t, 0.7, cfg.MinTrackingConf)
}
