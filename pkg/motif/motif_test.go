package motif

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidate_Empty(t *testing.T) {
	err := PWM{}.Validate()
	require.ErrorIs(t, err, ErrEmptyMatrix)
}

func TestValidate_BadColumn(t *testing.T) {
	tests := []struct {
		name string
		pwm  PWM
	}{
		{"sum too low", PWM{{0.5, 0.2, 0.1, 0.1}}},
		{"sum too high", PWM{{0.5, 0.5, 0.5, 0.5}}},
		{"negative entry", PWM{{1.2, -0.2, 0, 0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, tt.pwm.Validate(), ErrBadColumn)
		})
	}
}

func TestValidate_OK(t *testing.T) {
	p := PWM{
		{0.25, 0.25, 0.25, 0.25},
		{0.9, 0.1, 0, 0},
		{0, 0, 0, 1},
	}
	require.NoError(t, p.Validate())
}

func TestConsensus(t *testing.T) {
	p := PWM{
		{0.9, 0.1, 0, 0},       // A
		{0.1, 0.7, 0.1, 0.1},   // C
		{0, 0, 0.05, 0.95},     // T
		{0.3, 0.3, 0.2, 0.2},   // no clear winner
		{0.1, 0.1, 0.45, 0.35}, // G
	}
	require.Equal(t, "ACTNG", p.Consensus())
}

func TestMotifValidate_NamesOffender(t *testing.T) {
	m := Motif{Name: "broken", Matrix: PWM{}}
	err := m.Validate()
	require.ErrorIs(t, err, ErrEmptyMatrix)
	require.Contains(t, err.Error(), "broken")
}

func TestValidateAll_StopsOnFirst(t *testing.T) {
	motifs := []Motif{
		{Name: "ok", Matrix: PWM{{1, 0, 0, 0}}},
		{Name: "bad", Matrix: PWM{{0.5, 0, 0, 0}}},
	}
	err := ValidateAll(motifs)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrBadColumn))
}

func TestBackground(t *testing.T) {
	bg := Background()
	require.InDelta(t, 1.0, bg.Sum(), 1e-12)
	for _, v := range bg {
		require.Equal(t, 0.25, v)
	}
}

func TestClone_Independent(t *testing.T) {
	p := PWM{{1, 0, 0, 0}}
	c := p.Clone()
	c[0][0] = 0
	require.Equal(t, 1.0, p[0][0])
}
