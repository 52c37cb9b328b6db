package efd

import (
	"strings"

	"credsped/internal/domain"
)

// ClassifyCFOP derives the operation direction from a CFOP code.
// First digit 1, 2 or 3 marks an inbound operation, 5, 6 or 7 an outbound
// one. Anything else, including an empty code, is unclassified. Total over
// all inputs.
func ClassifyCFOP(cfop string) domain.Direction {
	cfop = strings.TrimSpace(cfop)
	if cfop == "" {
		return domain.DirectionUnclassified
	}
	switch cfop[0] {
	case '1', '2', '3':
		return domain.DirectionInbound
	case '5', '6', '7':
		return domain.DirectionOutbound
	default:
		return domain.DirectionUnclassified
	}
}
