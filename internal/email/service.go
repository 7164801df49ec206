package email

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/jwalitptl/clinic-api/internal/config"
	"github.com/jwalitptl/clinic-api/internal/model"
)

var ErrNoRecipient = errors.New("patient has no email address")

// Sender is satisfied by *gomail.Dialer.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type Service struct {
	sender Sender
	from   string
	clinic string
}

func NewService(cfg config.MailConfig) *Service {
	return NewWithSender(gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password), cfg)
}

func NewWithSender(sender Sender, cfg config.MailConfig) *Service {
	clinic := cfg.Clinic
	if clinic == "" {
		clinic = "Clinic"
	}
	return &Service{sender: sender, from: cfg.From, clinic: clinic}
}

// SendReceipt mails a plain-text receipt for a paid transaction.
func (s *Service) SendReceipt(ctx context.Context, txn *model.BillingTransaction, patient *model.Patient) error {
	if patient.Email == nil || strings.TrimSpace(*patient.Email) == "" {
		return ErrNoRecipient
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", *patient.Email)
	m.SetHeader("Subject", fmt.Sprintf("%s receipt %s", s.clinic, txn.TransactionCode))
	m.SetBody("text/plain", s.receiptBody(txn, patient))

	if err := s.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send receipt %s: %w", txn.TransactionCode, err)
	}
	return nil
}

func (s *Service) receiptBody(txn *model.BillingTransaction, patient *model.Patient) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", patient.FullName())
	fmt.Fprintf(&b, "Thank you for your payment to %s.\n\n", s.clinic)
	fmt.Fprintf(&b, "Receipt: %s\n", txn.TransactionCode)
	fmt.Fprintf(&b, "Date: %s\n", txn.TransactionDate.String())
	fmt.Fprintf(&b, "Payment method: %s\n\n", txn.PaymentMethod)

	for _, item := range txn.Items {
		fmt.Fprintf(&b, "%-40s %3d x %10.2f %10.2f\n", item.ItemName, item.Quantity, item.UnitPrice, item.TotalPrice)
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "Subtotal: %.2f\n", txn.Subtotal)
	if txn.DiscountAmount > 0 {
		fmt.Fprintf(&b, "Discount: -%.2f\n", txn.DiscountAmount)
	}
	if txn.SeniorDiscount > 0 {
		fmt.Fprintf(&b, "Senior citizen discount: -%.2f\n", txn.SeniorDiscount)
	}
	fmt.Fprintf(&b, "Total: %.2f\n", txn.TotalAmount)
	fmt.Fprintf(&b, "Amount paid: %.2f\n", txn.AmountPaid)
	if txn.ChangeAmount > 0 {
		fmt.Fprintf(&b, "Change: %.2f\n", txn.ChangeAmount)
	}
	return b.String()
}
