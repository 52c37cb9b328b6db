package csvexport

import (
	"encoding/csv"
	"io"

	"credsped/internal/domain"
	"credsped/internal/efd"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the CSV header row for credit lines (25 columns).
var columns = []string{
	"Competência",
	"Empresa",
	"Código Participante",
	"Participante",
	"Modelo",
	"Situação",
	"Série",
	"Número Doc",
	"Chave de Acesso",
	"Data Emissão",
	"Data Entrada",
	"Valor Doc",
	"Item",
	"Código Item",
	"Descrição Item",
	"NCM",
	"CFOP",
	"CST PIS",
	"Base PIS",
	"Alíquota PIS",
	"Valor PIS",
	"CST COFINS",
	"Base COFINS",
	"Alíquota COFINS",
	"Valor COFINS",
}

// Writer wraps csv.Writer for exporting credit lines as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteCreditLines converts credit lines to CSV rows and writes them.
// Monetary values are rendered in Brazilian decimal notation.
func (w *Writer) WriteCreditLines(lines []domain.CreditLine) error {
	for i := range lines {
		if err := w.csv.Write(creditLineToRow(&lines[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

func creditLineToRow(l *domain.CreditLine) []string {
	return []string{
		l.Competence,
		l.Entity,
		l.ParticipantCode,
		l.ParticipantName,
		l.DocModel,
		l.DocSituation,
		l.DocSeries,
		l.DocNumber,
		l.AccessKey,
		l.IssueDate,
		l.EntryDate,
		efd.FormatBR(l.DocTotal),
		l.ItemNumber,
		l.ItemCode,
		l.ItemDescription,
		l.NCM,
		l.CFOP,
		l.CSTPIS,
		efd.FormatBR(l.PISBase),
		efd.FormatBR(l.PISRate),
		efd.FormatBR(l.PISValue),
		l.CSTCOFINS,
		efd.FormatBR(l.COFINSBase),
		efd.FormatBR(l.COFINSRate),
		efd.FormatBR(l.COFINSValue),
	}
}
