package offer

import "strings"

// Status codes shared by both feeds. The secondary report carries them
// directly; the primary CRM only sends text.
const (
	StatusCodeOffer     = 1
	StatusCodeContract  = 2
	StatusCodeEscrow    = 3
	StatusCodeClosed    = 4
	StatusCodeCancelled = 5
)

var statusCodes = []struct {
	keyword string
	code    int
}{
	{"cancel", StatusCodeCancelled},
	{"rescind", StatusCodeCancelled},
	{"closed", StatusCodeClosed},
	{"complete", StatusCodeClosed},
	{"escrow", StatusCodeEscrow},
	{"contract", StatusCodeContract},
	{"pending", StatusCodeContract},
	{"ratified", StatusCodeContract},
	{"offer", StatusCodeOffer},
	{"reserv", StatusCodeOffer},
}

// StatusCode maps free-text status onto a numeric code. Order matters:
// "Closed Escrow" is closed, "Cancelled Contract" is cancelled.
func StatusCode(status string) (int, bool) {
	s := strings.ToLower(strings.TrimSpace(status))
	if s == "" {
		return 0, false
	}
	for _, sc := range statusCodes {
		if strings.Contains(s, sc.keyword) {
			return sc.code, true
		}
	}
	return 0, false
}
