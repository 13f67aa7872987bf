package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifyRateType(t *testing.T) {
	require.Equal(t, RateTypeStandard, ClassifyRateType(""))
	require.Equal(t, RateTypeStandard, ClassifyRateType("Standard"))
	require.Equal(t, RateTypeStandard, ClassifyRateType("Fixed 1 year"))
	require.Equal(t, RateTypeSpecial, ClassifyRateType("Special"))
	require.Equal(t, RateTypeSpecial, ClassifyRateType("SPECIAL offer"))
	require.Equal(t, RateTypeSpecial, ClassifyRateType("Residential special"))
}
