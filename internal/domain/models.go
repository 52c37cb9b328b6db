package domain

import (
	"time"

	"github.com/google/uuid"
)

// FileMetadata holds what the 0000 opening record declares about a file.
// Both fields stay empty when the record is absent; that is not an error.
type FileMetadata struct {
	Competence string `json:"competence"` // MM/AAAA
	Entity     string `json:"entity"`
}

// CreditLine is one C170 item under an inbound C100 invoice header.
type CreditLine struct {
	Competence      string    `json:"competence"`
	Entity          string    `json:"entity"`
	ParticipantCode string    `json:"cod_part"`
	ParticipantName string    `json:"nome_part"`
	DocModel        string    `json:"cod_mod"`
	DocSituation    string    `json:"cod_sit"`
	DocSeries       string    `json:"ser"`
	DocNumber       string    `json:"num_doc"`
	AccessKey       string    `json:"chv_nfe"`
	IssueDate       string    `json:"dt_doc"`
	EntryDate       string    `json:"dt_e_s"`
	DocTotal        float64   `json:"vl_doc"`
	ItemNumber      string    `json:"num_item"`
	ItemCode        string    `json:"cod_item"`
	ItemDescription string    `json:"descr_item"`
	NCM             string    `json:"ncm"`
	CFOP            string    `json:"cfop"`
	Direction       Direction `json:"direction"`
	CSTPIS          string    `json:"cst_pis"`
	PISBase         float64   `json:"vl_bc_pis"`
	PISRate         float64   `json:"aliq_pis"`
	PISValue        float64   `json:"vl_pis"`
	CSTCOFINS       string    `json:"cst_cofins"`
	COFINSBase      float64   `json:"vl_bc_cofins"`
	COFINSRate      float64   `json:"aliq_cofins"`
	COFINSValue     float64   `json:"vl_cofins"`
}

// OtherCredit is a credit-bearing document outside the NF-e family:
// services taken, electric utility bills, freight and the residual F100 block.
type OtherCredit struct {
	Kind            DocumentKind `json:"kind"`
	Competence      string       `json:"competence"`
	Entity          string       `json:"entity"`
	DocNumber       string       `json:"num_doc"`
	DocDate         string       `json:"dt_doc"`
	ParticipantCode string       `json:"cod_part"`
	ParticipantName string       `json:"nome_part"`
	DocTotal        float64      `json:"vl_doc"`
	CFOP            string       `json:"cfop"`
	CSTPIS          string       `json:"cst_pis"`
	PISBase         float64      `json:"vl_bc_pis"`
	PISRate         float64      `json:"aliq_pis"`
	PISValue        float64      `json:"vl_pis"`
	CSTCOFINS       string       `json:"cst_cofins"`
	COFINSBase      float64      `json:"vl_bc_cofins"`
	COFINSRate      float64      `json:"aliq_cofins"`
	COFINSValue     float64      `json:"vl_cofins"`
}

// Apportionment carries the period contribution totals from M200 (PIS)
// or M600 (COFINS). Rows are unconditional; no credit filter applies.
type Apportionment struct {
	Tax          Tax     `json:"tax"`
	Competence   string  `json:"competence"`
	Entity       string  `json:"entity"`
	TotContNCPer float64 `json:"vl_tot_cont_nc_per"`
	ContNCRec    float64 `json:"vl_cont_nc_rec"`
	TotCredDesc  float64 `json:"vl_tot_cred_desc"`
	TotContReal  float64 `json:"vl_tot_cont_real"`
	ContNCRest   float64 `json:"vl_cont_nc_rest"`
	ContNCRet    float64 `json:"vl_cont_nc_ret"`
	ContNCSusp   float64 `json:"vl_cont_nc_susp"`
	ContNCAdic   float64 `json:"vl_cont_nc_adic"`
}

// CreditNature is one declared credit by nature from M105 (PIS) or M505 (COFINS).
type CreditNature struct {
	Tax         Tax     `json:"tax"`
	Competence  string  `json:"competence"`
	Entity      string  `json:"entity"`
	NatureCode  string  `json:"nat_bc_cred"`
	CST         string  `json:"cst"`
	Base        float64 `json:"vl_bc"`
	Rate        float64 `json:"aliq"`
	CreditValue float64 `json:"vl_cred"`
}

// ParseResult is the typed output of parsing a single EFD file.
type ParseResult struct {
	Metadata       FileMetadata    `json:"metadata"`
	CreditLines    []CreditLine    `json:"credit_lines"`
	OtherCredits   []OtherCredit   `json:"other_credits"`
	Apportionments []Apportionment `json:"apportionments"`
	CreditNatures  []CreditNature  `json:"credit_natures"`
}

// FileResult pairs an input artifact with its parse outcome. A non-empty
// Error means the artifact was structurally unusable; the rest of the
// batch is unaffected.
type FileResult struct {
	Name   string       `json:"name"`
	Error  string       `json:"error,omitempty"`
	Result *ParseResult `json:"-"`
}

// BatchResult merges the per-file results of one analysis run.
// Per-file ordering is preserved inside each collection.
type BatchResult struct {
	BatchID        uuid.UUID       `json:"batch_id"`
	Status         BatchStatus     `json:"status"`
	Files          []FileResult    `json:"files"`
	CreditLines    []CreditLine    `json:"credit_lines"`
	OtherCredits   []OtherCredit   `json:"other_credits"`
	Apportionments []Apportionment `json:"apportionments"`
	CreditNatures  []CreditNature  `json:"credit_natures"`
}

// AnalysisBatch is the persisted summary of one analysis run.
type AnalysisBatch struct {
	ID               uuid.UUID   `db:"id" json:"id"`
	Status           BatchStatus `db:"status" json:"status"`
	FileCount        int         `db:"file_count" json:"file_count"`
	CreditLineCount  int         `db:"credit_line_count" json:"credit_line_count"`
	OtherCreditCount int         `db:"other_credit_count" json:"other_credit_count"`
	TotalPIS         float64     `db:"total_pis" json:"total_pis"`
	TotalCOFINS      float64     `db:"total_cofins" json:"total_cofins"`
	CreatedAt        time.Time   `db:"created_at" json:"created_at"`
}

// AnalysisFile is the persisted summary of one artifact within a batch.
type AnalysisFile struct {
	ID          uuid.UUID `db:"id" json:"id"`
	BatchID     uuid.UUID `db:"batch_id" json:"batch_id"`
	Name        string    `db:"name" json:"name"`
	StorageKey  string    `db:"storage_key" json:"storage_key"`
	Competence  string    `db:"competence" json:"competence"`
	Entity      string    `db:"entity" json:"entity"`
	CreditLines int       `db:"credit_lines" json:"credit_lines"`
	OtherLines  int       `db:"other_lines" json:"other_lines"`
	TotalPIS    float64   `db:"total_pis" json:"total_pis"`
	TotalCOFINS float64   `db:"total_cofins" json:"total_cofins"`
	Error       string    `db:"error" json:"error,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
