package domain

// ArtifactType represents the allowed upload container types.
type ArtifactType string

const (
	ArtifactTypeTxt ArtifactType = "txt"
	ArtifactTypeZip ArtifactType = "zip"
)

// AllowedExtensions maps file extensions (without dot) to ArtifactType.
var AllowedExtensions = map[string]ArtifactType{
	"txt": ArtifactTypeTxt,
	"zip": ArtifactTypeZip,
}

// Direction classifies a fiscal operation by its CFOP leading digit.
type Direction string

const (
	DirectionInbound      Direction = "entrada"
	DirectionOutbound     Direction = "saida"
	DirectionUnclassified Direction = "nao_classificado"
)

// Tax identifies which contribution a record refers to.
type Tax string

const (
	TaxPIS    Tax = "pis"
	TaxCOFINS Tax = "cofins"
)

// DocumentKind tags non-invoice credit documents for downstream grouping.
type DocumentKind string

const (
	KindService DocumentKind = "servico"  // A100/A170
	KindUtility DocumentKind = "energia"  // C500/C501/C505
	KindFreight DocumentKind = "frete"    // D100/D101/D105
	KindOther   DocumentKind = "outros"   // F100/F120
)

// BatchStatus represents the outcome of a multi-file analysis batch.
type BatchStatus string

const (
	BatchStatusCompleted BatchStatus = "completed"
	BatchStatusPartial   BatchStatus = "partial"
	BatchStatusFailed    BatchStatus = "failed"
)
