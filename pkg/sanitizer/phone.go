package sanitizer

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegions are tried in order for numbers without a country prefix.
var DefaultRegions = []string{"US", "IN", "GB"}

// NormalizePhone formats a valid number as E.164. Numbers that do not parse
// as valid in any region are returned trimmed, so nothing a guest typed is
// lost.
func NormalizePhone(phone string, regions ...string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}
	if len(regions) == 0 {
		regions = DefaultRegions
	}

	for _, region := range regions {
		parsed, err := phonenumbers.Parse(phone, region)
		if err != nil || !phonenumbers.IsValidNumber(parsed) {
			continue
		}
		return phonenumbers.Format(parsed, phonenumbers.E164)
	}
	return TrimAndNormalize(phone)
}
