package match

import (
	"strings"

	"petsync/app/client/petpro"

	"github.com/nyaruka/phonenumbers"
)

const defaultPhoneRegion = "US"

// Customer finds the first candidate identified by the given email, phone or
// name. Emails compare case-insensitively, phones compare after E.164
// normalization, names compare as bidirectional substrings of the normalized
// "first last" form. Returns nil when nothing matches.
func Customer(candidates []petpro.Customer, email, phone, name string) *petpro.Customer {
	email = strings.ToLower(strings.TrimSpace(email))
	phone = NormalizePhone(phone)
	name = strings.ToLower(strings.TrimSpace(name))

	for i := range candidates {
		candidate := &candidates[i]

		if email != "" && candidate.Email != "" && strings.ToLower(candidate.Email) == email {
			return candidate
		}

		if phone != "" && candidate.Phone != "" && NormalizePhone(candidate.Phone) == phone {
			return candidate
		}

		if name != "" {
			candidateName := strings.ToLower(candidate.FullName())
			if candidateName != "" && (strings.Contains(candidateName, name) || strings.Contains(name, candidateName)) {
				return candidate
			}
		}
	}

	return nil
}

// NormalizePhone formats a phone number to E.164 so that "+1 (555) 010-0200"
// and "5550100200" compare equal. Unparseable input is returned trimmed, so
// exact literal matching still applies. Canonicalization only, no validation.
func NormalizePhone(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}

	number, err := phonenumbers.Parse(trimmed, defaultPhoneRegion)
	if err != nil {
		return trimmed
	}

	return phonenumbers.Format(number, phonenumbers.E164)
}
