package efd_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"credsped/internal/domain"
	"credsped/internal/efd"
)

const chvNFe = "35250911222333000181550010000123451000012345"

// registry block shared by the correlation tests
var registryLines = []string{
	"|0000|006|0|0||20250901|Empresa Exemplo LTDA|11222333000181|SP|",
	"|0150|P1|Fornecedor X|01380|123|||||||",
	"|0200|I1|Parafuso sextavado||UN|00|12345678||0,00|",
}

func parseLines(t *testing.T, extra ...string) *domain.ParseResult {
	t.Helper()
	return efd.Parse(append(append([]string{}, registryLines...), extra...), defaultLayout(t))
}

func TestParse_InboundInvoiceItem(t *testing.T) {
	res := parseLines(t,
		"|C100|0|1|P1|55|00|1|12345|"+chvNFe+"|01092025|02092025|1000,00|",
		"|C170|1|I1||10,000|UN|100,00|0,00||0|1102|50|100,00|1,65|1,65|0|0|50|100,00|7,60|7,60|",
	)

	require.Len(t, res.CreditLines, 1)
	line := res.CreditLines[0]
	assert.Equal(t, "09/2025", line.Competence)
	assert.Equal(t, "Empresa Exemplo LTDA", line.Entity)
	assert.Equal(t, "P1", line.ParticipantCode)
	assert.Equal(t, "Fornecedor X", line.ParticipantName)
	assert.Equal(t, "55", line.DocModel)
	assert.Equal(t, "00", line.DocSituation)
	assert.Equal(t, "1", line.DocSeries)
	assert.Equal(t, "12345", line.DocNumber)
	assert.Equal(t, chvNFe, line.AccessKey)
	assert.Equal(t, "01092025", line.IssueDate)
	assert.Equal(t, "02092025", line.EntryDate)
	assert.InDelta(t, 1000.0, line.DocTotal, 1e-9)
	assert.Equal(t, "1", line.ItemNumber)
	assert.Equal(t, "I1", line.ItemCode)
	assert.Equal(t, "Parafuso sextavado", line.ItemDescription) // registry fallback
	assert.Equal(t, "12345678", line.NCM)
	assert.Equal(t, "1102", line.CFOP)
	assert.Equal(t, domain.DirectionInbound, line.Direction)
	assert.Equal(t, "50", line.CSTPIS)
	assert.InDelta(t, 100.0, line.PISBase, 1e-9)
	assert.InDelta(t, 1.65, line.PISRate, 1e-9)
	assert.InDelta(t, 1.65, line.PISValue, 1e-9)
	assert.Equal(t, "50", line.CSTCOFINS)
	assert.InDelta(t, 100.0, line.COFINSBase, 1e-9)
	assert.InDelta(t, 7.60, line.COFINSRate, 1e-9)
	assert.InDelta(t, 7.60, line.COFINSValue, 1e-9)
}

func TestParse_OrphanItemSkipped(t *testing.T) {
	res := parseLines(t,
		"|C170|1|I1||10,000|UN|100,00|0,00||0|1102|50|100,00|1,65|1,65|0|0|50|100,00|7,60|7,60|",
	)
	assert.Empty(t, res.CreditLines)
}

func TestParse_OutboundInvoiceSkipped(t *testing.T) {
	res := parseLines(t,
		// IND_OPER 1: outbound header, children never generate credit
		"|C100|1|0|P1|55|00|1|999|"+chvNFe+"|01092025|01092025|500,00|",
		"|C170|1|I1||1,000|UN|500,00|0,00||0|5102|50|500,00|1,65|8,25|0|0|50|500,00|7,60|38,00|",
	)
	assert.Empty(t, res.CreditLines)
}

func TestParse_OutboundCFOPSkipped(t *testing.T) {
	res := parseLines(t,
		"|C100|0|1|P1|55|00|1|999|"+chvNFe+"|01092025|01092025|500,00|",
		"|C170|1|I1||1,000|UN|500,00|0,00||0|5102|50|500,00|1,65|8,25|0|0|50|500,00|7,60|38,00|",
	)
	assert.Empty(t, res.CreditLines)
}

func TestParse_ZeroValueItemSkipped(t *testing.T) {
	res := parseLines(t,
		"|C100|0|1|P1|55|00|1|999|"+chvNFe+"|01092025|01092025|500,00|",
		"|C170|1|I1||1,000|UN|500,00|0,00||0|1102|70|0,00|0,00|0,00|0|0|70|0,00|0,00|0,00|",
	)
	assert.Empty(t, res.CreditLines)
}

func TestParse_ServiceCredit(t *testing.T) {
	res := parseLines(t,
		"|A100|0|0|P1|00|1||4321|15092025|16092025|2000,00|0,00|",
		"|A170|1|I1|Consultoria|2000,00|0,00||1|50|2000,00|1,65|33,00|50|2000,00|7,60|152,00|",
	)

	require.Len(t, res.OtherCredits, 1)
	oc := res.OtherCredits[0]
	assert.Equal(t, domain.KindService, oc.Kind)
	assert.Equal(t, "P1", oc.ParticipantCode)
	assert.Equal(t, "Fornecedor X", oc.ParticipantName)
	assert.Equal(t, "4321", oc.DocNumber)
	assert.Equal(t, "15092025", oc.DocDate)
	assert.InDelta(t, 2000.0, oc.DocTotal, 1e-9)
	assert.InDelta(t, 2000.0, oc.PISBase, 1e-9)
	assert.InDelta(t, 33.0, oc.PISValue, 1e-9)
	assert.InDelta(t, 152.0, oc.COFINSValue, 1e-9)
}

func TestParse_UtilityMergedRow(t *testing.T) {
	res := parseLines(t,
		"|C500|P1|06|00|3||150918139|14092025|14092025|5947,47|0||98,13|452,01||",
		"|C501|50|5947,47|01|5947,47|1,65|98,13|",
		"|C505|50|5947,47|01|5947,47|7,60|452,01|",
	)

	require.Len(t, res.OtherCredits, 1)
	oc := res.OtherCredits[0]
	assert.Equal(t, domain.KindUtility, oc.Kind)
	assert.Equal(t, "150918139", oc.DocNumber)
	assert.Equal(t, "14092025", oc.DocDate)
	assert.Equal(t, "P1", oc.ParticipantCode)
	assert.Equal(t, "Fornecedor X", oc.ParticipantName)
	assert.InDelta(t, 5947.47, oc.DocTotal, 1e-9)
	assert.Equal(t, "50", oc.CSTPIS)
	assert.InDelta(t, 5947.47, oc.PISBase, 1e-9)
	assert.InDelta(t, 1.65, oc.PISRate, 1e-9)
	assert.InDelta(t, 98.13, oc.PISValue, 1e-9)
	assert.Equal(t, "50", oc.CSTCOFINS)
	assert.InDelta(t, 5947.47, oc.COFINSBase, 1e-9)
	assert.InDelta(t, 7.60, oc.COFINSRate, 1e-9)
	assert.InDelta(t, 452.01, oc.COFINSValue, 1e-9)
}

func TestParse_UtilityPISOnly(t *testing.T) {
	// A new header finalizes the open accumulator; the missing C505 side
	// stays zeroed in the merged row.
	res := parseLines(t,
		"|C500|P1|06|00|3||111|14092025|14092025|100,00|0||1,65|0,00||",
		"|C501|50|100,00|01|100,00|1,65|1,65|",
		"|C500|P1|06|00|3||222|15092025|15092025|200,00|0||0,00|0,00||",
	)

	require.Len(t, res.OtherCredits, 1)
	oc := res.OtherCredits[0]
	assert.Equal(t, "111", oc.DocNumber)
	assert.InDelta(t, 1.65, oc.PISValue, 1e-9)
	assert.Empty(t, oc.CSTCOFINS)
	assert.Zero(t, oc.COFINSBase)
	assert.Zero(t, oc.COFINSValue)
}

func TestParse_UtilityAccumulatesAcrossChildren(t *testing.T) {
	res := parseLines(t,
		"|C500|P1|06|00|3||333|14092025|14092025|300,00|0||4,95|0,00||",
		"|C501|50|100,00|01|100,00|1,65|1,65|",
		"|C501|50|200,00|01|200,00|1,65|3,30|",
	)

	require.Len(t, res.OtherCredits, 1)
	oc := res.OtherCredits[0]
	assert.InDelta(t, 300.0, oc.PISBase, 1e-9)
	assert.InDelta(t, 4.95, oc.PISValue, 1e-9)
	assert.InDelta(t, 1.65, oc.PISRate, 1e-9) // rate is last-wins, not summed
}

func TestParse_UtilityAllZeroEmitsNothing(t *testing.T) {
	res := parseLines(t,
		"|C500|P1|06|00|3||444|14092025|14092025|100,00|0||0,00|0,00||",
		"|C501|70|100,00|01|0,00|0,00|0,00|",
	)
	assert.Empty(t, res.OtherCredits)
}

func TestParse_FreightMergedRow(t *testing.T) {
	res := parseLines(t,
		"|D100|0|1|P1|57|00|1|77701||05092025|05092025|850,00|",
		"|D101|0|50|850,00|1,65|14,03|",
		"|D105|0|50|850,00|7,60|64,60|",
	)

	require.Len(t, res.OtherCredits, 1)
	oc := res.OtherCredits[0]
	assert.Equal(t, domain.KindFreight, oc.Kind)
	assert.Equal(t, "77701", oc.DocNumber)
	assert.Equal(t, "05092025", oc.DocDate)
	assert.Equal(t, "Fornecedor X", oc.ParticipantName)
	assert.InDelta(t, 850.0, oc.DocTotal, 1e-9)
	assert.Equal(t, "50", oc.CSTPIS)
	assert.InDelta(t, 14.03, oc.PISValue, 1e-9)
	assert.Equal(t, "50", oc.CSTCOFINS)
	assert.InDelta(t, 64.60, oc.COFINSValue, 1e-9)
}

func TestParse_OtherDocumentCredit(t *testing.T) {
	res := parseLines(t,
		"|F100|0|P1|I1|F-001|10092025|350,00|Aluguel deposito|50|350,00|1,65|5,78|50|350,00|7,60|26,60|",
		"|F120|1|I1|0|0|0|0|50|350,00|1,65|5,78|50|350,00|7,60|26,60|",
	)

	require.Len(t, res.OtherCredits, 1)
	oc := res.OtherCredits[0]
	assert.Equal(t, domain.KindOther, oc.Kind)
	assert.Equal(t, "P1", oc.ParticipantCode)
	assert.InDelta(t, 5.78, oc.PISValue, 1e-9)
	assert.InDelta(t, 26.60, oc.COFINSValue, 1e-9)
}

func TestParse_Apportionments(t *testing.T) {
	res := parseLines(t,
		"|M200|1500,00|200,00|300,00|1000,00|0,00|0,00|0,00|0,00|",
		"|M600|7000,00|900,00|1400,00|4700,00|0,00|0,00|0,00|0,00|",
	)

	require.Len(t, res.Apportionments, 2)
	pis := res.Apportionments[0]
	assert.Equal(t, domain.TaxPIS, pis.Tax)
	assert.InDelta(t, 1500.0, pis.TotContNCPer, 1e-9)
	assert.InDelta(t, 200.0, pis.ContNCRec, 1e-9)
	assert.InDelta(t, 300.0, pis.TotCredDesc, 1e-9)
	assert.InDelta(t, 1000.0, pis.TotContReal, 1e-9)

	cofins := res.Apportionments[1]
	assert.Equal(t, domain.TaxCOFINS, cofins.Tax)
	assert.InDelta(t, 7000.0, cofins.TotContNCPer, 1e-9)
}

func TestParse_ApportionmentKeptEvenWhenZero(t *testing.T) {
	res := parseLines(t,
		"|M200|0,00|0,00|0,00|0,00|0,00|0,00|0,00|0,00|",
	)
	assert.Len(t, res.Apportionments, 1)
}

func TestParse_CreditNatures(t *testing.T) {
	res := parseLines(t,
		"|M105|01|50|10000,00|1,65|165,00|",
		"|M505|01|50|10000,00|7,60|760,00|",
		"|M105|02|50|0,00|0,00|0,00|", // zero rows are dropped
	)

	require.Len(t, res.CreditNatures, 2)
	assert.Equal(t, domain.TaxPIS, res.CreditNatures[0].Tax)
	assert.Equal(t, "01", res.CreditNatures[0].NatureCode)
	assert.InDelta(t, 165.0, res.CreditNatures[0].CreditValue, 1e-9)
	assert.Equal(t, domain.TaxCOFINS, res.CreditNatures[1].Tax)
	assert.InDelta(t, 760.0, res.CreditNatures[1].CreditValue, 1e-9)
}

func TestParse_UtilityFinalizedAtEndOfInput(t *testing.T) {
	res := parseLines(t,
		"|C500|P1|06|00|3||555|14092025|14092025|100,00|0||1,65|0,00||",
		"|C501|50|100,00|01|100,00|1,65|1,65|",
	)
	require.Len(t, res.OtherCredits, 1)
	assert.Equal(t, "555", res.OtherCredits[0].DocNumber)
}

func TestParse_UtilityFinalizedByForeignHeader(t *testing.T) {
	// A header of a different family also closes the open accumulator.
	res := parseLines(t,
		"|C500|P1|06|00|3||666|14092025|14092025|100,00|0||1,65|0,00||",
		"|C501|50|100,00|01|100,00|1,65|1,65|",
		"|C100|0|1|P1|55|00|1|12345|"+chvNFe+"|01092025|02092025|1000,00|",
		"|C505|50|100,00|01|100,00|7,60|7,60|", // orphan after finalize, dropped
	)
	require.Len(t, res.OtherCredits, 1)
	oc := res.OtherCredits[0]
	assert.Equal(t, "666", oc.DocNumber)
	assert.Zero(t, oc.COFINSValue)
}
