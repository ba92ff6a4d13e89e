package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valentinb67/Novelty-components-of-scientific-productions/internal/cooc"
)

func TestWindowPolicy_For(t *testing.T) {
	tests := []struct {
		name   string
		policy WindowPolicy
		focal  int
		want   cooc.Window
	}{
		{"fixed", WindowPolicy{Mode: WindowFixed, Start: 2016, End: 2024}, 2019, cooc.Window{Start: 2016, End: 2024}},
		{"trailing including focal", WindowPolicy{Mode: WindowTrailing, Span: 3, IncludeFocal: true}, 2020, cooc.Window{Start: 2018, End: 2020}},
		{"trailing before focal", WindowPolicy{Mode: WindowTrailing, Span: 3}, 2020, cooc.Window{Start: 2017, End: 2019}},
		{"single year", WindowPolicy{Mode: WindowTrailing, Span: 1, IncludeFocal: true}, 2020, cooc.Window{Start: 2020, End: 2020}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.policy.For(tt.focal)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWindowPolicy_Invalid(t *testing.T) {
	for _, p := range []WindowPolicy{
		{Mode: WindowFixed, Start: 2020, End: 2019},
		{Mode: WindowTrailing, Span: 0},
		{Mode: "sliding"},
	} {
		_, err := p.For(2020)
		assert.ErrorIs(t, err, ErrInvalidWindowPolicy, "%+v", p)
	}
}

func TestFocalYears(t *testing.T) {
	assert.Equal(t, []int{2016, 2017, 2018}, FocalYears(2016, 2018))
	assert.Equal(t, []int{2020}, FocalYears(2020, 2020))
	assert.Nil(t, FocalYears(2021, 2020))
}
