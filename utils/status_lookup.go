package utils

import (
	"fmt"
	"strings"

	"public-complaint-api/models"
)

var (
	statusSynonyms = map[models.ComplaintStatus][]string{
		models.StatusPending: {
			"pending",
			"menunggu",
			"menunggu verifikasi",
		},
		models.StatusReviewing: {
			"reviewing",
			"review",
			"sedang ditinjau",
			"diproses",
		},
		models.StatusApproved: {
			"approved",
			"disetujui",
		},
		models.StatusRevision: {
			"revision",
			"perlu revisi",
			"revisi",
		},
		models.StatusCompleted: {
			"completed",
			"selesai",
		},
		models.StatusRejected: {
			"rejected",
			"ditolak",
		},
	}
	statusAliasToCanonical = buildStatusAliasMap()

	statusLabels = map[models.ComplaintStatus]string{
		models.StatusPending:   "Menunggu",
		models.StatusReviewing: "Sedang Ditinjau",
		models.StatusApproved:  "Disetujui",
		models.StatusRevision:  "Perlu Revisi",
		models.StatusCompleted: "Selesai",
		models.StatusRejected:  "Ditolak",
	}
)

func buildStatusAliasMap() map[string]models.ComplaintStatus {
	aliasMap := make(map[string]models.ComplaintStatus)
	for canonical, synonyms := range statusSynonyms {
		aliasMap[normalizeStatusCode(string(canonical))] = canonical
		for _, alias := range synonyms {
			if normalized := normalizeStatusCode(alias); normalized != "" {
				aliasMap[normalized] = canonical
			}
		}
	}
	return aliasMap
}

func normalizeStatusCode(code string) string {
	return strings.ToLower(strings.Join(strings.Fields(code), " "))
}

// ParseComplaintStatus resolves a status code or its Indonesian label to the
// canonical status value. It serves listing filters; status updates accept
// only the exact codes.
func ParseComplaintStatus(raw string) (models.ComplaintStatus, error) {
	normalized := normalizeStatusCode(raw)
	if normalized == "" {
		return "", fmt.Errorf("status is required")
	}
	if canonical, ok := statusAliasToCanonical[normalized]; ok {
		return canonical, nil
	}
	return "", fmt.Errorf("unknown status %q", raw)
}

// StatusLabel returns the Indonesian display label for a status.
func StatusLabel(status models.ComplaintStatus) string {
	if label, ok := statusLabels[status]; ok {
		return label
	}
	return string(status)
}
