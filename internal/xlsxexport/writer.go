// Package xlsxexport renders a batch result as an Excel workbook with one
// sheet per output collection.
package xlsxexport

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"credsped/internal/domain"
)

const (
	sheetCreditLines  = "Créditos NF-e"
	sheetOtherCredits = "Outros Créditos"
	sheetApportion    = "Apuração"
	sheetNatures      = "Créditos por Natureza"
)

var creditLineHeader = []interface{}{
	"Competência", "Empresa", "Código Participante", "Participante",
	"Modelo", "Situação", "Série", "Número Doc", "Chave de Acesso",
	"Data Emissão", "Data Entrada", "Valor Doc", "Item", "Código Item",
	"Descrição Item", "NCM", "CFOP",
	"CST PIS", "Base PIS", "Alíquota PIS", "Valor PIS",
	"CST COFINS", "Base COFINS", "Alíquota COFINS", "Valor COFINS",
}

var otherCreditHeader = []interface{}{
	"Tipo", "Competência", "Empresa", "Número Doc", "Data Doc",
	"Código Participante", "Participante", "Valor Doc", "CFOP",
	"CST PIS", "Base PIS", "Alíquota PIS", "Valor PIS",
	"CST COFINS", "Base COFINS", "Alíquota COFINS", "Valor COFINS",
}

var apportionHeader = []interface{}{
	"Tributo", "Competência", "Empresa",
	"Contribuição NC Período", "Contribuição NC Receita", "Créditos Descontados",
	"Contribuição Realizada", "Restituição", "Retenção", "Suspensão", "Adicional",
}

var natureHeader = []interface{}{
	"Tributo", "Competência", "Empresa", "Natureza BC", "CST",
	"Base de Cálculo", "Alíquota", "Valor do Crédito",
}

// Build renders the batch into a new workbook. The caller owns closing it.
func Build(res *domain.BatchResult) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName(f.GetSheetName(0), sheetCreditLines); err != nil {
		return nil, fmt.Errorf("renaming sheet: %w", err)
	}
	for _, name := range []string{sheetOtherCredits, sheetApportion, sheetNatures} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("creating sheet %s: %w", name, err)
		}
	}

	if err := writeCreditLines(f, res.CreditLines); err != nil {
		return nil, err
	}
	if err := writeOtherCredits(f, res.OtherCredits); err != nil {
		return nil, err
	}
	if err := writeApportionments(f, res.Apportionments); err != nil {
		return nil, err
	}
	if err := writeNatures(f, res.CreditNatures); err != nil {
		return nil, err
	}
	return f, nil
}

func writeRow(f *excelize.File, sheet string, rowIdx int, row []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, rowIdx)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &row)
}

func writeCreditLines(f *excelize.File, lines []domain.CreditLine) error {
	if err := writeRow(f, sheetCreditLines, 1, creditLineHeader); err != nil {
		return err
	}
	for i := range lines {
		l := &lines[i]
		row := []interface{}{
			l.Competence, l.Entity, l.ParticipantCode, l.ParticipantName,
			l.DocModel, l.DocSituation, l.DocSeries, l.DocNumber, l.AccessKey,
			l.IssueDate, l.EntryDate, l.DocTotal, l.ItemNumber, l.ItemCode,
			l.ItemDescription, l.NCM, l.CFOP,
			l.CSTPIS, l.PISBase, l.PISRate, l.PISValue,
			l.CSTCOFINS, l.COFINSBase, l.COFINSRate, l.COFINSValue,
		}
		if err := writeRow(f, sheetCreditLines, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeOtherCredits(f *excelize.File, others []domain.OtherCredit) error {
	if err := writeRow(f, sheetOtherCredits, 1, otherCreditHeader); err != nil {
		return err
	}
	for i := range others {
		o := &others[i]
		row := []interface{}{
			string(o.Kind), o.Competence, o.Entity, o.DocNumber, o.DocDate,
			o.ParticipantCode, o.ParticipantName, o.DocTotal, o.CFOP,
			o.CSTPIS, o.PISBase, o.PISRate, o.PISValue,
			o.CSTCOFINS, o.COFINSBase, o.COFINSRate, o.COFINSValue,
		}
		if err := writeRow(f, sheetOtherCredits, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeApportionments(f *excelize.File, rows []domain.Apportionment) error {
	if err := writeRow(f, sheetApportion, 1, apportionHeader); err != nil {
		return err
	}
	for i := range rows {
		a := &rows[i]
		row := []interface{}{
			string(a.Tax), a.Competence, a.Entity,
			a.TotContNCPer, a.ContNCRec, a.TotCredDesc,
			a.TotContReal, a.ContNCRest, a.ContNCRet, a.ContNCSusp, a.ContNCAdic,
		}
		if err := writeRow(f, sheetApportion, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeNatures(f *excelize.File, rows []domain.CreditNature) error {
	if err := writeRow(f, sheetNatures, 1, natureHeader); err != nil {
		return err
	}
	for i := range rows {
		n := &rows[i]
		row := []interface{}{
			string(n.Tax), n.Competence, n.Entity, n.NatureCode, n.CST,
			n.Base, n.Rate, n.CreditValue,
		}
		if err := writeRow(f, sheetNatures, i+2, row); err != nil {
			return err
		}
	}
	return nil
}
