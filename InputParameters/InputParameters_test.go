package InputParameters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	data := []byte(`
Title: "Recovery Test Case"
Method: SPR
OrderU: 3
OrderV: 3
ElementsU: 4
ElementsV: 4
Field: Linear
Components: 1
`)
	rp := &RecoveryParameters{}
	require.NoError(t, rp.Parse(data))
	assert.Equal(t, "Recovery Test Case", rp.Title)
	assert.Equal(t, "SPR", rp.Method)
	assert.Equal(t, 4, rp.ElementsU)
}

func TestValidate(t *testing.T) {
	rp := &RecoveryParameters{Method: "averaging", OrderU: 3, OrderV: 3, ElementsU: 1, ElementsV: 1}
	assert.ErrorContains(t, rp.Validate(), "unknown recovery method")

	rp = &RecoveryParameters{Method: "L2", OrderU: 1, OrderV: 3, ElementsU: 1, ElementsV: 1}
	assert.ErrorContains(t, rp.Validate(), "basis orders")

	rp = &RecoveryParameters{Method: "L2", Continuous: true, NGauss: 0, OrderU: 2, OrderV: 2, ElementsU: 1, ElementsV: 1}
	assert.ErrorContains(t, rp.Validate(), "NGauss")
}
