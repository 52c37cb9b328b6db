package efd

import (
	"strings"

	"credsped/internal/domain"
	"credsped/internal/efd/layout"
)

// ReferenceTables holds the lookup maps built from the registry block
// (0150 participants, 0200 items). Built once per file, read-only afterwards.
type ReferenceTables struct {
	ParticipantName map[string]string
	ItemNCM         map[string]string
	ItemDescription map[string]string
}

// Participant resolves a participant code to its display name, or "".
func (r *ReferenceTables) Participant(code string) string {
	return r.ParticipantName[code]
}

// NCM resolves an item code to its tariff classification, or "".
func (r *ReferenceTables) NCM(itemCode string) string {
	return r.ItemNCM[itemCode]
}

// Description resolves an item code to its registry description, or "".
func (r *ReferenceTables) Description(itemCode string) string {
	return r.ItemDescription[itemCode]
}

// BuildReferences scans all lines once and produces the file metadata from
// the 0000 opening record plus the participant and item lookup tables.
// Duplicate registry codes overwrite earlier entries (last wins). A missing
// 0000 record leaves the metadata empty; that is not an error.
func BuildReferences(lines []string, lay *layout.Layout) (domain.FileMetadata, *ReferenceTables) {
	var meta domain.FileMetadata
	metaDone := false
	refs := &ReferenceTables{
		ParticipantName: make(map[string]string),
		ItemNCM:         make(map[string]string),
		ItemDescription: make(map[string]string),
	}

	for _, line := range lines {
		parts := splitRecord(line)
		if len(parts) < 3 {
			continue
		}
		switch parts[1] {
		case "0000":
			if metaDone {
				continue
			}
			meta.Competence = competenceFromDate(lay.Field("0000", "dt_ini", parts))
			meta.Entity = strings.TrimSpace(lay.Field("0000", "nome", parts))
			metaDone = true
		case "0150":
			code := strings.TrimSpace(lay.Field("0150", "cod_part", parts))
			if code != "" {
				refs.ParticipantName[code] = strings.TrimSpace(lay.Field("0150", "nome", parts))
			}
		case "0200":
			code := strings.TrimSpace(lay.Field("0200", "cod_item", parts))
			if code != "" {
				refs.ItemNCM[code] = strings.TrimSpace(lay.Field("0200", "ncm", parts))
				refs.ItemDescription[code] = strings.TrimSpace(lay.Field("0200", "descr_item", parts))
			}
		}
	}
	return meta, refs
}

// competenceFromDate turns the 0000 start date (AAAAMMDD) into the MM/AAAA
// competence string. Anything that is not 8 digits yields "".
func competenceFromDate(dtIni string) string {
	dtIni = strings.TrimSpace(dtIni)
	if len(dtIni) != 8 {
		return ""
	}
	return dtIni[4:6] + "/" + dtIni[0:4]
}
