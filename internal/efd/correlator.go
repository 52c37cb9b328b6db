package efd

import (
	"credsped/internal/domain"
	"credsped/internal/efd/layout"
)

// Correlator is the per-file state machine that pairs child records with
// their open parent header. One instance is created per file and never
// shared; each record family has its own open-parent slot.
//
// Orphan children (a child tag with no open parent of its family) are
// silently skipped: real files arrive truncated or hand-edited, and
// best-effort extraction beats strict validation here.
type Correlator struct {
	layout *layout.Layout
	meta   domain.FileMetadata
	refs   *ReferenceTables

	creditLines    []domain.CreditLine
	otherCredits   []domain.OtherCredit
	apportionments []domain.Apportionment
	creditNatures  []domain.CreditNature

	openInvoice []string // C100
	openService []string // A100
	openOther   []string // F100
	utility     *taxPairAccumulator
	freight     *taxPairAccumulator
}

// taxPairAccumulator gathers the split PIS/COFINS children of a header
// (C501/C505 for utilities, D101/D105 for freight) until the next header
// or end-of-input finalizes them into a single merged row.
type taxPairAccumulator struct {
	header []string

	pisCST   string
	pisBase  float64
	pisRate  float64
	pisValue float64
	cofCST   string
	cofBase  float64
	cofRate  float64
	cofValue float64
}

func (a *taxPairAccumulator) empty() bool {
	return a.pisBase == 0 && a.pisValue == 0 && a.cofBase == 0 && a.cofValue == 0
}

// NewCorrelator builds a correlator for one file. Metadata and reference
// tables must come from the same file's lines.
func NewCorrelator(lay *layout.Layout, meta domain.FileMetadata, refs *ReferenceTables) *Correlator {
	return &Correlator{layout: lay, meta: meta, refs: refs}
}

// Parse runs the whole pipeline over one file's lines: reference pass,
// then the correlation pass.
func Parse(lines []string, lay *layout.Layout) *domain.ParseResult {
	meta, refs := BuildReferences(lines, lay)
	c := NewCorrelator(lay, meta, refs)
	for _, line := range lines {
		c.Feed(line)
	}
	return c.Finish()
}

// Feed consumes one raw line. Malformed lines are ignored.
func (c *Correlator) Feed(line string) {
	parts := splitRecord(line)
	if len(parts) < 3 {
		return
	}

	switch parts[1] {
	case "C100":
		c.finalizePending()
		c.openInvoice = parts
	case "C170":
		c.feedInvoiceItem(parts)

	case "A100":
		c.finalizePending()
		c.openService = parts
	case "A170":
		c.feedServiceItem(parts)

	case "C500":
		c.finalizePending()
		c.utility = &taxPairAccumulator{header: parts}
	case "C501":
		c.feedUtilityTax(parts)
	case "C505":
		c.feedUtilityCOFINS(parts)

	case "D100":
		c.finalizePending()
		c.freight = &taxPairAccumulator{header: parts}
	case "D101":
		c.feedFreightTax(parts)
	case "D105":
		c.feedFreightCOFINS(parts)

	case "F100":
		c.finalizePending()
		c.openOther = parts
	case "F120":
		c.feedOtherDoc(parts)

	case "M200":
		c.apportionments = append(c.apportionments,
			extractApportionment(c.layout, domain.TaxPIS, "M200", c.meta, parts))
	case "M600":
		c.apportionments = append(c.apportionments,
			extractApportionment(c.layout, domain.TaxCOFINS, "M600", c.meta, parts))

	case "M105":
		c.feedCreditNature(domain.TaxPIS, "M105", parts)
	case "M505":
		c.feedCreditNature(domain.TaxCOFINS, "M505", parts)
	}
}

// Finish flushes any pending split-pair header and returns the collected
// collections. The correlator must not be fed after Finish.
func (c *Correlator) Finish() *domain.ParseResult {
	c.finalizePending()
	return &domain.ParseResult{
		Metadata:       c.meta,
		CreditLines:    c.creditLines,
		OtherCredits:   c.otherCredits,
		Apportionments: c.apportionments,
		CreditNatures:  c.creditNatures,
	}
}

// finalizePending closes the utility and freight accumulators. Any new
// header of any family supersedes them, so this runs on every header open
// and once more at end-of-input.
func (c *Correlator) finalizePending() {
	if c.utility != nil {
		c.emitTaxPair(c.utility, "C500", domain.KindUtility)
		c.utility = nil
	}
	if c.freight != nil {
		c.emitTaxPair(c.freight, "D100", domain.KindFreight)
		c.freight = nil
	}
}

func (c *Correlator) emitTaxPair(acc *taxPairAccumulator, headerTag string, kind domain.DocumentKind) {
	if acc.empty() {
		return
	}
	participant := c.layout.Field(headerTag, "cod_part", acc.header)
	c.otherCredits = append(c.otherCredits, domain.OtherCredit{
		Kind:            kind,
		Competence:      c.meta.Competence,
		Entity:          c.meta.Entity,
		DocNumber:       c.layout.Field(headerTag, "num_doc", acc.header),
		DocDate:         c.layout.Field(headerTag, "dt_doc", acc.header),
		ParticipantCode: participant,
		ParticipantName: c.refs.Participant(participant),
		DocTotal:        ParseDecimal(c.layout.Field(headerTag, "vl_doc", acc.header)),
		CSTPIS:          acc.pisCST,
		PISBase:         acc.pisBase,
		PISRate:         acc.pisRate,
		PISValue:        acc.pisValue,
		CSTCOFINS:       acc.cofCST,
		COFINSBase:      acc.cofBase,
		COFINSRate:      acc.cofRate,
		COFINSValue:     acc.cofValue,
	})
}

// feedInvoiceItem handles C170 under an open C100. Only inbound invoices
// (IND_OPER 0 and an inbound CFOP) generate credit, and only items where
// at least one of the four monetary fields is non-zero are kept.
func (c *Correlator) feedInvoiceItem(parts []string) {
	if c.openInvoice == nil {
		return
	}
	if c.layout.Field("C100", "ind_oper", c.openInvoice) != "0" {
		return
	}
	row := extractCreditLine(c.layout, c.meta, c.refs, c.openInvoice, parts)
	if row.Direction != domain.DirectionInbound {
		return
	}
	if row.PISBase == 0 && row.PISValue == 0 && row.COFINSBase == 0 && row.COFINSValue == 0 {
		return
	}
	c.creditLines = append(c.creditLines, row)
}

func (c *Correlator) feedServiceItem(parts []string) {
	if c.openService == nil {
		return
	}
	row := extractServiceCredit(c.layout, c.meta, c.refs, c.openService, parts)
	if row.PISBase == 0 && row.PISValue == 0 && row.COFINSBase == 0 && row.COFINSValue == 0 {
		return
	}
	c.otherCredits = append(c.otherCredits, row)
}

func (c *Correlator) feedUtilityTax(parts []string) {
	if c.utility == nil {
		return
	}
	c.utility.pisCST = c.layout.Field("C501", "cst_pis", parts)
	c.utility.pisBase += ParseDecimal(c.layout.Field("C501", "vl_bc_pis", parts))
	c.utility.pisRate = ParseDecimal(c.layout.Field("C501", "aliq_pis", parts))
	c.utility.pisValue += ParseDecimal(c.layout.Field("C501", "vl_pis", parts))
}

func (c *Correlator) feedUtilityCOFINS(parts []string) {
	if c.utility == nil {
		return
	}
	c.utility.cofCST = c.layout.Field("C505", "cst_cofins", parts)
	c.utility.cofBase += ParseDecimal(c.layout.Field("C505", "vl_bc_cofins", parts))
	c.utility.cofRate = ParseDecimal(c.layout.Field("C505", "aliq_cofins", parts))
	c.utility.cofValue += ParseDecimal(c.layout.Field("C505", "vl_cofins", parts))
}

func (c *Correlator) feedFreightTax(parts []string) {
	if c.freight == nil {
		return
	}
	c.freight.pisCST = c.layout.Field("D101", "cst_pis", parts)
	c.freight.pisBase += ParseDecimal(c.layout.Field("D101", "vl_bc_pis", parts))
	c.freight.pisRate = ParseDecimal(c.layout.Field("D101", "aliq_pis", parts))
	c.freight.pisValue += ParseDecimal(c.layout.Field("D101", "vl_pis", parts))
}

func (c *Correlator) feedFreightCOFINS(parts []string) {
	if c.freight == nil {
		return
	}
	c.freight.cofCST = c.layout.Field("D105", "cst_cofins", parts)
	c.freight.cofBase += ParseDecimal(c.layout.Field("D105", "vl_bc_cofins", parts))
	c.freight.cofRate = ParseDecimal(c.layout.Field("D105", "aliq_cofins", parts))
	c.freight.cofValue += ParseDecimal(c.layout.Field("D105", "vl_cofins", parts))
}

func (c *Correlator) feedOtherDoc(parts []string) {
	if c.openOther == nil {
		return
	}
	row := extractOtherDocCredit(c.layout, c.meta, c.refs, c.openOther, parts)
	if row.PISBase == 0 && row.PISValue == 0 && row.COFINSBase == 0 && row.COFINSValue == 0 {
		return
	}
	c.otherCredits = append(c.otherCredits, row)
}

func (c *Correlator) feedCreditNature(tax domain.Tax, tag string, parts []string) {
	row := extractCreditNature(c.layout, tax, tag, c.meta, parts)
	if row.Base == 0 && row.CreditValue == 0 {
		return
	}
	c.creditNatures = append(c.creditNatures, row)
}
