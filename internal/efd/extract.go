package efd

import (
	"strings"

	"credsped/internal/domain"
	"credsped/internal/efd/layout"
)

// Field extractors: one pure mapping per (parent, child) record pair.
// Every access goes through the layout table and tolerates short lines.

func extractCreditLine(lay *layout.Layout, meta domain.FileMetadata, refs *ReferenceTables, header, item []string) domain.CreditLine {
	itemCode := strings.TrimSpace(lay.Field("C170", "cod_item", item))
	cfop := strings.TrimSpace(lay.Field("C170", "cfop", item))

	descr := strings.TrimSpace(lay.Field("C170", "descr_compl", item))
	if descr == "" {
		descr = refs.Description(itemCode)
	}

	participant := strings.TrimSpace(lay.Field("C100", "cod_part", header))
	return domain.CreditLine{
		Competence:      meta.Competence,
		Entity:          meta.Entity,
		ParticipantCode: participant,
		ParticipantName: refs.Participant(participant),
		DocModel:        lay.Field("C100", "cod_mod", header),
		DocSituation:    lay.Field("C100", "cod_sit", header),
		DocSeries:       lay.Field("C100", "ser", header),
		DocNumber:       lay.Field("C100", "num_doc", header),
		AccessKey:       lay.Field("C100", "chv_nfe", header),
		IssueDate:       lay.Field("C100", "dt_doc", header),
		EntryDate:       lay.Field("C100", "dt_e_s", header),
		DocTotal:        ParseDecimal(lay.Field("C100", "vl_doc", header)),
		ItemNumber:      lay.Field("C170", "num_item", item),
		ItemCode:        itemCode,
		ItemDescription: descr,
		NCM:             refs.NCM(itemCode),
		CFOP:            cfop,
		Direction:       ClassifyCFOP(cfop),
		CSTPIS:          lay.Field("C170", "cst_pis", item),
		PISBase:         ParseDecimal(lay.Field("C170", "vl_bc_pis", item)),
		PISRate:         ParseDecimal(lay.Field("C170", "aliq_pis", item)),
		PISValue:        ParseDecimal(lay.Field("C170", "vl_pis", item)),
		CSTCOFINS:       lay.Field("C170", "cst_cofins", item),
		COFINSBase:      ParseDecimal(lay.Field("C170", "vl_bc_cofins", item)),
		COFINSRate:      ParseDecimal(lay.Field("C170", "aliq_cofins", item)),
		COFINSValue:     ParseDecimal(lay.Field("C170", "vl_cofins", item)),
	}
}

func extractServiceCredit(lay *layout.Layout, meta domain.FileMetadata, refs *ReferenceTables, header, item []string) domain.OtherCredit {
	participant := strings.TrimSpace(lay.Field("A100", "cod_part", header))
	return domain.OtherCredit{
		Kind:            domain.KindService,
		Competence:      meta.Competence,
		Entity:          meta.Entity,
		DocNumber:       lay.Field("A100", "num_doc", header),
		DocDate:         lay.Field("A100", "dt_doc", header),
		ParticipantCode: participant,
		ParticipantName: refs.Participant(participant),
		DocTotal:        ParseDecimal(lay.Field("A100", "vl_doc", header)),
		CSTPIS:          lay.Field("A170", "cst_pis", item),
		PISBase:         ParseDecimal(lay.Field("A170", "vl_bc_pis", item)),
		PISRate:         ParseDecimal(lay.Field("A170", "aliq_pis", item)),
		PISValue:        ParseDecimal(lay.Field("A170", "vl_pis", item)),
		CSTCOFINS:       lay.Field("A170", "cst_cofins", item),
		COFINSBase:      ParseDecimal(lay.Field("A170", "vl_bc_cofins", item)),
		COFINSRate:      ParseDecimal(lay.Field("A170", "aliq_cofins", item)),
		COFINSValue:     ParseDecimal(lay.Field("A170", "vl_cofins", item)),
	}
}

func extractOtherDocCredit(lay *layout.Layout, meta domain.FileMetadata, refs *ReferenceTables, header, item []string) domain.OtherCredit {
	participant := strings.TrimSpace(lay.Field("F100", "cod_part", header))
	return domain.OtherCredit{
		Kind:            domain.KindOther,
		Competence:      meta.Competence,
		Entity:          meta.Entity,
		DocNumber:       lay.Field("F100", "num_doc", header),
		DocDate:         lay.Field("F100", "dt_doc", header),
		ParticipantCode: participant,
		ParticipantName: refs.Participant(participant),
		DocTotal:        ParseDecimal(lay.Field("F100", "vl_doc", header)),
		CSTPIS:          lay.Field("F120", "cst_pis", item),
		PISBase:         ParseDecimal(lay.Field("F120", "vl_bc_pis", item)),
		PISRate:         ParseDecimal(lay.Field("F120", "aliq_pis", item)),
		PISValue:        ParseDecimal(lay.Field("F120", "vl_pis", item)),
		CSTCOFINS:       lay.Field("F120", "cst_cofins", item),
		COFINSBase:      ParseDecimal(lay.Field("F120", "vl_bc_cofins", item)),
		COFINSRate:      ParseDecimal(lay.Field("F120", "aliq_cofins", item)),
		COFINSValue:     ParseDecimal(lay.Field("F120", "vl_cofins", item)),
	}
}

func extractApportionment(lay *layout.Layout, tax domain.Tax, tag string, meta domain.FileMetadata, parts []string) domain.Apportionment {
	return domain.Apportionment{
		Tax:          tax,
		Competence:   meta.Competence,
		Entity:       meta.Entity,
		TotContNCPer: ParseDecimal(lay.Field(tag, "tot_cont_nc_per", parts)),
		ContNCRec:    ParseDecimal(lay.Field(tag, "cont_nc_rec", parts)),
		TotCredDesc:  ParseDecimal(lay.Field(tag, "tot_cred_desc", parts)),
		TotContReal:  ParseDecimal(lay.Field(tag, "tot_cont_real", parts)),
		ContNCRest:   ParseDecimal(lay.Field(tag, "cont_nc_rest", parts)),
		ContNCRet:    ParseDecimal(lay.Field(tag, "cont_nc_ret", parts)),
		ContNCSusp:   ParseDecimal(lay.Field(tag, "cont_nc_susp", parts)),
		ContNCAdic:   ParseDecimal(lay.Field(tag, "cont_nc_adic", parts)),
	}
}

func extractCreditNature(lay *layout.Layout, tax domain.Tax, tag string, meta domain.FileMetadata, parts []string) domain.CreditNature {
	return domain.CreditNature{
		Tax:         tax,
		Competence:  meta.Competence,
		Entity:      meta.Entity,
		NatureCode:  strings.TrimSpace(lay.Field(tag, "nat_bc_cred", parts)),
		CST:         lay.Field(tag, "cst", parts),
		Base:        ParseDecimal(lay.Field(tag, "vl_bc", parts)),
		Rate:        ParseDecimal(lay.Field(tag, "aliq", parts)),
		CreditValue: ParseDecimal(lay.Field(tag, "vl_cred", parts)),
	}
}
