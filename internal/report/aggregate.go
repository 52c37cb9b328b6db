// Package report builds grouped summaries over the parsed credit
// collections. Grouping keys are the natural business keys; sums are plain
// additive totals, so negative corrections flow through unchanged and the
// result does not depend on input order beyond the sort applied at the end.
package report

import (
	"sort"

	"credsped/internal/domain"
)

// KPIs are the headline totals of a batch.
type KPIs struct {
	CreditLineCount  int     `json:"credit_line_count"`
	OtherCreditCount int     `json:"other_credit_count"`
	TotalPIS         float64 `json:"total_pis"`
	TotalCOFINS      float64 `json:"total_cofins"`
	TotalCredit      float64 `json:"total_credit"`
}

// GroupTotal is one row of a grouped summary.
type GroupTotal struct {
	Key      string  `json:"key"`
	Count    int     `json:"count"`
	PIS      float64 `json:"pis"`
	COFINS   float64 `json:"cofins"`
	Combined float64 `json:"combined"`
}

// Report is the full aggregation output served to callers.
type Report struct {
	KPIs         KPIs         `json:"kpis"`
	ByKind       []GroupTotal `json:"by_kind"`
	ByCFOP       []GroupTotal `json:"by_cfop"`
	ByNCM        []GroupTotal `json:"by_ncm"`
	ByCompetence []GroupTotal `json:"by_competence"`
	ByNature     []GroupTotal `json:"by_nature"`
}

// Build aggregates a merged batch result into a Report.
func Build(res *domain.BatchResult) *Report {
	return &Report{
		KPIs:         ComputeKPIs(res.CreditLines, res.OtherCredits),
		ByKind:       ByKind(res.OtherCredits),
		ByCFOP:       ByCFOP(res.CreditLines),
		ByNCM:        ByNCM(res.CreditLines, 0),
		ByCompetence: ByCompetence(res.CreditLines, res.OtherCredits),
		ByNature:     ByNature(res.CreditNatures),
	}
}

// ComputeKPIs totals PIS/COFINS across invoice items and other documents.
func ComputeKPIs(lines []domain.CreditLine, others []domain.OtherCredit) KPIs {
	k := KPIs{CreditLineCount: len(lines), OtherCreditCount: len(others)}
	for i := range lines {
		k.TotalPIS += lines[i].PISValue
		k.TotalCOFINS += lines[i].COFINSValue
	}
	for i := range others {
		k.TotalPIS += others[i].PISValue
		k.TotalCOFINS += others[i].COFINSValue
	}
	k.TotalCredit = k.TotalPIS + k.TotalCOFINS
	return k
}

// ByKind groups other-document credits by DocumentKind.
func ByKind(others []domain.OtherCredit) []GroupTotal {
	acc := map[string]*GroupTotal{}
	for i := range others {
		add(acc, string(others[i].Kind), others[i].PISValue, others[i].COFINSValue)
	}
	return sorted(acc)
}

// ByCFOP groups invoice credit lines by operation code.
func ByCFOP(lines []domain.CreditLine) []GroupTotal {
	acc := map[string]*GroupTotal{}
	for i := range lines {
		add(acc, lines[i].CFOP, lines[i].PISValue, lines[i].COFINSValue)
	}
	return sorted(acc)
}

// ByNCM groups invoice credit lines by tariff classification, largest
// combined total first. topN <= 0 returns all groups.
func ByNCM(lines []domain.CreditLine, topN int) []GroupTotal {
	acc := map[string]*GroupTotal{}
	for i := range lines {
		key := lines[i].NCM
		if key == "" {
			key = "sem NCM"
		}
		add(acc, key, lines[i].PISValue, lines[i].COFINSValue)
	}
	out := sorted(acc)
	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out
}

// ByCompetence groups everything by competence period plus entity.
func ByCompetence(lines []domain.CreditLine, others []domain.OtherCredit) []GroupTotal {
	acc := map[string]*GroupTotal{}
	for i := range lines {
		add(acc, competenceKey(lines[i].Competence, lines[i].Entity), lines[i].PISValue, lines[i].COFINSValue)
	}
	for i := range others {
		add(acc, competenceKey(others[i].Competence, others[i].Entity), others[i].PISValue, others[i].COFINSValue)
	}
	return sorted(acc)
}

// ByNature groups declared credits by their nature code, split per tax.
func ByNature(natures []domain.CreditNature) []GroupTotal {
	acc := map[string]*GroupTotal{}
	for i := range natures {
		n := &natures[i]
		pis, cofins := 0.0, 0.0
		if n.Tax == domain.TaxPIS {
			pis = n.CreditValue
		} else {
			cofins = n.CreditValue
		}
		add(acc, n.NatureCode, pis, cofins)
	}
	return sorted(acc)
}

func competenceKey(competence, entity string) string {
	if entity == "" {
		return competence
	}
	return competence + " - " + entity
}

func add(acc map[string]*GroupTotal, key string, pis, cofins float64) {
	g, ok := acc[key]
	if !ok {
		g = &GroupTotal{Key: key}
		acc[key] = g
	}
	g.Count++
	g.PIS += pis
	g.COFINS += cofins
	g.Combined += pis + cofins
}

// sorted flattens the accumulator, largest combined total first; ties break
// on the key so output is deterministic regardless of processing order.
func sorted(acc map[string]*GroupTotal) []GroupTotal {
	out := make([]GroupTotal, 0, len(acc))
	for _, g := range acc {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Combined != out[j].Combined {
			return out[i].Combined > out[j].Combined
		}
		return out[i].Key < out[j].Key
	})
	return out
}
