package normalize

import (
	"strings"

	"BillSync/internal/domain"
)

// Status infers a bill status from the latest action description. Rules are
// ordered: an earlier match wins over later ones.
func Status(description string) domain.Status {
	d := strings.ToLower(description)
	has := func(words ...string) bool {
		for _, w := range words {
			if strings.Contains(d, w) {
				return true
			}
		}
		return false
	}

	switch {
	case d == "":
		return domain.StatusIntroduced
	case has("signed", "enacted"):
		return domain.StatusEnacted
	case has("vetoed"):
		return domain.StatusVetoed
	case has("failed", "died"):
		return domain.StatusFailed
	case has("passed") && has("senate"):
		return domain.StatusPassedSenate
	case has("passed") && has("house"):
		return domain.StatusPassedHouse
	case has("committee"):
		return domain.StatusInCommittee
	default:
		return domain.StatusIntroduced
	}
}
