package catalog

import (
	"context"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"whatsapp-catalog-service/internal/apierrors"
	"whatsapp-catalog-service/internal/clients"
	"whatsapp-catalog-service/internal/models"
)

const (
	DefaultProductMessageBody = "Check out this product from our catalog!"
	DefaultCatalogMessageBody = "Browse our catalog!"
)

// SendProductMessage sends a single-product interactive message.
func (m *Manager) SendProductMessage(ctx context.Context, phone, retailerID string, text models.MessageText) (*models.MessageResult, error) {
	if err := m.require("send product messages", needPhoneNumber, needCatalog); err != nil {
		return nil, err
	}
	to, errs := recipient(phone)
	if strings.TrimSpace(retailerID) == "" {
		errs = append(errs, "missing required field: product_retailer_id")
	}
	if len(errs) > 0 {
		return nil, &apierrors.ValidationError{Errors: errs}
	}

	body := text.Body
	if body == "" {
		body = DefaultProductMessageBody
	}
	msg := newInteractive(to, "product", body, text)
	msg.Interactive.Action = models.InteractiveAction{
		CatalogID:         m.cfg.CatalogID,
		ProductRetailerID: retailerID,
	}

	result, err := m.send(ctx, msg)
	if err != nil {
		return nil, err
	}
	m.logger.WithFields(logrus.Fields{
		"to":          MaskPhone(to),
		"retailer_id": retailerID,
		"message_id":  result.MessageID(),
	}).Info("Product message sent")
	return result, nil
}

// SendCatalogMessage sends an interactive message that opens the whole catalog.
func (m *Manager) SendCatalogMessage(ctx context.Context, phone string, text models.MessageText) (*models.MessageResult, error) {
	if err := m.require("send catalog messages", needPhoneNumber, needCatalog); err != nil {
		return nil, err
	}
	to, errs := recipient(phone)
	if len(errs) > 0 {
		return nil, &apierrors.ValidationError{Errors: errs}
	}

	body := text.Body
	if body == "" {
		body = DefaultCatalogMessageBody
	}
	msg := newInteractive(to, "catalog_message", body, text)
	msg.Interactive.Action = models.InteractiveAction{
		Name: "catalog_message",
		Parameters: &models.CatalogParameters{
			ThumbnailProductRetailerID: text.ThumbnailRetailerID,
		},
	}

	result, err := m.send(ctx, msg)
	if err != nil {
		return nil, err
	}
	m.logger.WithFields(logrus.Fields{
		"to":         MaskPhone(to),
		"message_id": result.MessageID(),
	}).Info("Catalog message sent")
	return result, nil
}

func newInteractive(to, kind, body string, text models.MessageText) *models.InteractiveMessage {
	msg := &models.InteractiveMessage{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "interactive",
		Interactive: models.Interactive{
			Type: kind,
			Body: models.InteractiveText{Text: body},
		},
	}
	if text.Header != "" {
		msg.Interactive.Header = &models.InteractiveHeader{Type: "text", Text: text.Header}
	}
	if text.Footer != "" {
		msg.Interactive.Footer = &models.InteractiveText{Text: text.Footer}
	}
	return msg
}

func (m *Manager) send(ctx context.Context, msg *models.InteractiveMessage) (*models.MessageResult, error) {
	resp, err := m.exec.Execute(ctx, http.MethodPost, m.cfg.MessagesURL(), &clients.RequestOptions{Body: msg})
	if err != nil {
		m.logger.WithError(err).WithFields(logrus.Fields{
			"to":   MaskPhone(msg.To),
			"type": msg.Interactive.Type,
		}).Error("Failed to send message")
		return nil, err
	}
	result := &models.MessageResult{}
	if err := resp.Decode(result); err != nil {
		m.logger.WithError(err).Warn("Unexpected message response body")
	}
	return result, nil
}

// NormalizePhone keeps only the ASCII digits of a phone number, so
// "+39 333-123 4567" becomes "393331234567".
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func recipient(phone string) (string, []string) {
	to := NormalizePhone(phone)
	if to == "" {
		return "", []string{"missing required field: phone number"}
	}
	return to, nil
}

// MaskPhone hides all but the last four digits for logging.
func MaskPhone(phone string) string {
	if len(phone) <= 4 {
		return strings.Repeat("*", len(phone))
	}
	return strings.Repeat("*", len(phone)-4) + phone[len(phone)-4:]
}
