package layout_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"credsped/internal/domain"
	"credsped/internal/efd/layout"
)

func TestDefault_EmbeddedRegistryLoads(t *testing.T) {
	reg := layout.Default()
	assert.Contains(t, reg.Names(), "efd-contribuicoes-007")
	assert.Contains(t, reg.Names(), "efd-icms-c170")
}

func TestRegistry_GetDefaultOnEmptyName(t *testing.T) {
	lay, err := layout.Default().Get("")
	require.NoError(t, err)
	assert.Equal(t, "efd-contribuicoes-007", lay.Name)
}

func TestRegistry_GetUnknown(t *testing.T) {
	_, err := layout.Default().Get("efd-nope-042")
	assert.ErrorIs(t, err, domain.ErrUnknownLayout)
}

func TestLayout_Field(t *testing.T) {
	lay, err := layout.Default().Get("")
	require.NoError(t, err)

	parts := []string{"", "0150", "P1", "Fornecedor X"}
	assert.Equal(t, "P1", lay.Field("0150", "cod_part", parts))
	assert.Equal(t, "Fornecedor X", lay.Field("0150", "nome", parts))

	// unknown tag, unknown field and short lines all degrade to ""
	assert.Empty(t, lay.Field("Z999", "cod_part", parts))
	assert.Empty(t, lay.Field("0150", "no_such_field", parts))
	assert.Empty(t, lay.Field("0150", "nome", []string{"", "0150"}))
}

func TestLayout_EditionsDisagreeOnItemPositions(t *testing.T) {
	reg := layout.Default()
	contrib, err := reg.Get("efd-contribuicoes-007")
	require.NoError(t, err)
	icms, err := reg.Get("efd-icms-c170")
	require.NoError(t, err)

	parts := make([]string, 40)
	parts[1] = "C170"
	parts[13] = "contrib-base"
	parts[26] = "icms-base"

	assert.Equal(t, "contrib-base", contrib.Field("C170", "vl_bc_pis", parts))
	assert.Equal(t, "icms-base", icms.Field("C170", "vl_bc_pis", parts))
}

func TestParse_RejectsEmptyAndBadDefault(t *testing.T) {
	_, err := layout.Parse([]byte("default: x\nversions: []\n"))
	assert.Error(t, err)

	_, err = layout.Parse([]byte("default: missing\nversions:\n  - name: present\n    records: {}\n"))
	assert.Error(t, err)
}

func TestParse_FirstVersionIsDefaultWhenUnset(t *testing.T) {
	reg, err := layout.Parse([]byte("versions:\n  - name: only\n    records: {}\n"))
	require.NoError(t, err)
	lay, err := reg.Get("")
	require.NoError(t, err)
	assert.Equal(t, "only", lay.Name)
}
