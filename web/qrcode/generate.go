package qrcode

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/Amanjain8795/matratv-connect-main-sub000/utils"
)

// ReferralLink is the public registration URL carrying a referral code.
func ReferralLink(code string) string {
	return fmt.Sprintf("https://%s/register?ref=%s", utils.AppHost(), code)
}

// GenerateReferralQR renders the sharing link for a referral code as an
// in-memory PNG, sized for print media.
func GenerateReferralQR(code string) ([]byte, error) {
	return qrcode.Encode(ReferralLink(code), qrcode.Medium, 256)
}
