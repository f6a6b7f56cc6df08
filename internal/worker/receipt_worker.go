package worker

// receipt_worker.go
// Processes receipt jobs from QueueReceipt: mails a plain-text sale receipt
// to the customer. Strictly best-effort — checkout never waits on this.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/SilverPhantom1/zypos-sub000/internal/infra"
)

// ReceiptJobPayload is the job envelope sent to QueueReceipt.
type ReceiptJobPayload struct {
	ToEmail      string `json:"to_email"`
	TicketNumber int    `json:"ticket_number"`
	Total        string `json:"total"`
}

type ReceiptWorker struct {
	mailer *infra.Mailer
}

func NewReceiptWorker(mailer *infra.Mailer) *ReceiptWorker {
	return &ReceiptWorker{mailer: mailer}
}

// Process sends the receipt email. A returned error requeues the job.
func (w *ReceiptWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload ReceiptJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		// Malformed payloads can never succeed — swallow instead of requeue.
		return nil
	}
	if payload.ToEmail == "" {
		return nil
	}

	subject := fmt.Sprintf("Receipt for ticket #%d", payload.TicketNumber)
	body := fmt.Sprintf("Thank you for your purchase.\n\nTicket: #%d\nTotal: %s\n", payload.TicketNumber, payload.Total)
	return w.mailer.SendReceipt(payload.ToEmail, subject, body)
}
