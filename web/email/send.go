package email

import (
	"fmt"
	"net/smtp"
	"os"

	"github.com/Amanjain8795/matratv-connect-main-sub000/web/db"
)

func SendEmail(to string, subject string, body string) error {
	smtpServer := os.Getenv("SMTP_SERVER")
	smtpPort := os.Getenv("SMTP_PORT")
	smtpUser := os.Getenv("SMTP_USER")
	smtpPass := os.Getenv("SMTP_PASS")
	fromAddr := os.Getenv("FROM_ADDR")
	fromName := os.Getenv("FROM_NAME")

	if smtpServer == "" || smtpPort == "" || smtpUser == "" || smtpPass == "" || fromAddr == "" || fromName == "" {
		return fmt.Errorf(
			"missing required SMTP environment variables: SMTP_SERVER=%s, SMTP_PORT=%s, SMTP_USER=%s, SMTP_PASS=%s, FROM_ADDR=%s, FROM_NAME=%s",
			smtpServer, smtpPort, smtpUser, smtpPass, fromAddr, fromName)
	}
	msg := []byte(fmt.Sprintf("From: %s <%s>\r\n"+
		"To: %s\r\n"+
		"Subject: %s\r\n"+
		"Content-Type: text/plain; charset=UTF-8\r\n\r\n"+
		"%s",
		fromName, fromAddr, to, subject, body))

	auth := smtp.PlainAuth("", smtpUser, smtpPass, smtpServer)

	err := smtp.SendMail(smtpServer+":"+smtpPort, auth, fromAddr, []string{to}, msg)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// SendWithdrawalProcessedEmail tells a user their withdrawal request was
// approved or rejected. Amount is integer paise.
func SendWithdrawalProcessedEmail(to string, status string, amountPaise int64, notes string) error {
	amount := fmt.Sprintf("INR %d.%02d", amountPaise/100, amountPaise%100)

	var subject, body string
	switch status {
	case db.WithdrawalApproved:
		subject = "Your withdrawal has been approved"
		body = fmt.Sprintf("Your withdrawal request for %s has been approved and will be paid to your registered destination.", amount)
	case db.WithdrawalRejected:
		subject = "Your withdrawal was rejected"
		body = fmt.Sprintf("Your withdrawal request for %s was rejected. The amount has been returned to your available balance.", amount)
	default:
		return fmt.Errorf("unknown withdrawal status: %s", status)
	}
	if notes != "" {
		body += "\n\nNote from our team: " + notes
	}
	return SendEmail(to, subject, body)
}
