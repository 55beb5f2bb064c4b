package domain

import "strings"

// PhoneNumberType distinguishes standard local (10-digit) numbers from
// toll-free numbers; the two go through different carrier review pipelines.
type PhoneNumberType string

const (
	PhoneNumberTypeLocal    PhoneNumberType = "local"
	PhoneNumberTypeTollFree PhoneNumberType = "toll-free"
)

// PhoneNumber is a company-owned number, read-only for registration.
type PhoneNumber struct {
	Number   string
	Type     PhoneNumberType
	IsActive bool
}

// tollFreeAreaCodes are the North American toll-free prefixes, used when a
// number's type was not recorded at purchase time.
var tollFreeAreaCodes = map[string]struct{}{
	"800": {}, "833": {}, "844": {}, "855": {}, "866": {}, "877": {}, "888": {},
}

// NormalizePhoneNumber formats a number to E.164.
// 10 digits are assumed US and get "+1"; 11 digits starting with "1" get
// "+"; anything else gets "+" as-is.
func NormalizePhoneNumber(phoneNumber string) string {
	var b strings.Builder
	for _, r := range phoneNumber {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	switch {
	case len(digits) == 10:
		return "+1" + digits
	case len(digits) == 11 && strings.HasPrefix(digits, "1"):
		return "+" + digits
	default:
		return "+" + digits
	}
}

// IsTollFreeNumber reports whether an E.164 US number carries a toll-free
// area code.
func IsTollFreeNumber(e164 string) bool {
	if !strings.HasPrefix(e164, "+1") || len(e164) != 12 {
		return false
	}
	_, ok := tollFreeAreaCodes[e164[2:5]]
	return ok
}

// PartitionPhoneNumbers splits active numbers into local and toll-free
// groups, normalizing each to E.164. Inactive numbers are dropped.
func PartitionPhoneNumbers(numbers []PhoneNumber) (local []string, tollFree []string) {
	for _, n := range numbers {
		if !n.IsActive {
			continue
		}
		e164 := NormalizePhoneNumber(n.Number)
		numberType := n.Type
		if numberType == "" {
			if IsTollFreeNumber(e164) {
				numberType = PhoneNumberTypeTollFree
			} else {
				numberType = PhoneNumberTypeLocal
			}
		}
		if numberType == PhoneNumberTypeTollFree {
			tollFree = append(tollFree, e164)
		} else {
			local = append(local, e164)
		}
	}
	return local, tollFree
}

// SanitizeEIN strips an EIN down to digits only (e.g. "12-3456789" ->
// "123456789"), which is the form the carrier APIs expect.
func SanitizeEIN(ein string) string {
	var b strings.Builder
	for _, r := range ein {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
