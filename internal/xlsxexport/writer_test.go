package xlsxexport_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"credsped/internal/domain"
	"credsped/internal/xlsxexport"
)

func TestBuild_SheetsAndContent(t *testing.T) {
	res := &domain.BatchResult{
		CreditLines: []domain.CreditLine{
			{Competence: "09/2025", ParticipantName: "Fornecedor X", CFOP: "1102", PISValue: 1.65},
		},
		OtherCredits: []domain.OtherCredit{
			{Kind: domain.KindUtility, DocNumber: "150918139", COFINSValue: 452.01},
		},
		Apportionments: []domain.Apportionment{
			{Tax: domain.TaxPIS, TotContNCPer: 1500},
		},
		CreditNatures: []domain.CreditNature{
			{Tax: domain.TaxCOFINS, NatureCode: "01", CreditValue: 760},
		},
	}

	f, err := xlsxexport.Build(res)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.ElementsMatch(t,
		[]string{"Créditos NF-e", "Outros Créditos", "Apuração", "Créditos por Natureza"},
		f.GetSheetList())

	v, err := f.GetCellValue("Créditos NF-e", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Competência", v)

	v, err = f.GetCellValue("Créditos NF-e", "D2")
	require.NoError(t, err)
	assert.Equal(t, "Fornecedor X", v)

	v, err = f.GetCellValue("Outros Créditos", "A2")
	require.NoError(t, err)
	assert.Equal(t, "energia", v)

	v, err = f.GetCellValue("Apuração", "A2")
	require.NoError(t, err)
	assert.Equal(t, "pis", v)

	v, err = f.GetCellValue("Créditos por Natureza", "D2")
	require.NoError(t, err)
	assert.Equal(t, "01", v)
}

func TestBuild_EmptyResultStillHasHeaders(t *testing.T) {
	f, err := xlsxexport.Build(&domain.BatchResult{})
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	v, err := f.GetCellValue("Outros Créditos", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Tipo", v)
}
