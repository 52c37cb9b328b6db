package csvexport_test

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"credsped/internal/csvexport"
	"credsped/internal/domain"
)

func TestWriter_HeaderAndRows(t *testing.T) {
	var buf bytes.Buffer
	w := csvexport.NewWriter(&buf)

	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.WriteCreditLines([]domain.CreditLine{
		{
			Competence:      "09/2025",
			Entity:          "Empresa Exemplo LTDA",
			ParticipantCode: "P1",
			ParticipantName: "Fornecedor X",
			DocNumber:       "12345",
			ItemDescription: "Parafuso, sextavado",
			NCM:             "12345678",
			CFOP:            "1102",
			CSTPIS:          "50",
			PISBase:         100,
			PISRate:         1.65,
			PISValue:        1.65,
			CSTCOFINS:       "50",
			COFINSBase:      100,
			COFINSRate:      7.6,
			COFINSValue:     7.6,
		},
	}))
	w.Flush()
	require.NoError(t, w.Error())

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	header := rows[0]
	assert.Len(t, header, 25)
	assert.Equal(t, "Competência", header[0])
	assert.Equal(t, "Valor COFINS", header[24])

	row := rows[1]
	assert.Equal(t, "09/2025", row[0])
	assert.Equal(t, "Fornecedor X", row[3])
	assert.Equal(t, "Parafuso, sextavado", row[14]) // comma survives quoting
	assert.Equal(t, "1102", row[16])
	assert.Equal(t, "100,00", row[18])
	assert.Equal(t, "1,65", row[20])
	assert.Equal(t, "7,60", row[24])
}

func TestWriter_BOMPrefix(t *testing.T) {
	var buf bytes.Buffer
	_, err := buf.Write(csvexport.BOM)
	require.NoError(t, err)
	w := csvexport.NewWriter(&buf)
	require.NoError(t, w.WriteHeader())
	w.Flush()

	assert.True(t, strings.HasPrefix(buf.String(), "\ufeff"))
}
