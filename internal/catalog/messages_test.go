package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whatsapp-catalog-service/internal/apierrors"
	"whatsapp-catalog-service/internal/config"
	"whatsapp-catalog-service/internal/models"
)

func messageReply(graphRequest) graphReply {
	return graphReply{Status: 200, Body: map[string]interface{}{
		"messaging_product": "whatsapp",
		"contacts":          []interface{}{map[string]interface{}{"input": "393331234567", "wa_id": "393331234567"}},
		"messages":          []interface{}{map[string]interface{}{"id": "wamid.ABC"}},
	}}
}

func TestSendProductMessage(t *testing.T) {
	graph, server := newFakeGraph(t, messageReply)
	m, _ := newTestManager(t, server.URL)

	result, err := m.SendProductMessage(context.Background(), "+39 333-123 4567", "SKU-1", models.MessageText{
		Header: "New in",
		Footer: "Limited stock",
	})

	require.NoError(t, err)
	assert.Equal(t, "wamid.ABC", result.MessageID())

	reqs := graph.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/v18.0/phone-1/messages", reqs[0].Path)

	body := reqs[0].Body
	assert.Equal(t, "whatsapp", body["messaging_product"])
	assert.Equal(t, "393331234567", body["to"])
	assert.Equal(t, "interactive", body["type"])

	interactive := body["interactive"].(map[string]interface{})
	assert.Equal(t, "product", interactive["type"])
	assert.Equal(t, map[string]interface{}{"text": DefaultProductMessageBody}, interactive["body"])
	assert.Equal(t, map[string]interface{}{"type": "text", "text": "New in"}, interactive["header"])
	assert.Equal(t, map[string]interface{}{"text": "Limited stock"}, interactive["footer"])
	assert.Equal(t, map[string]interface{}{
		"catalog_id":          "cat-1",
		"product_retailer_id": "SKU-1",
	}, interactive["action"])
}

func TestSendCatalogMessage(t *testing.T) {
	graph, server := newFakeGraph(t, messageReply)
	m, _ := newTestManager(t, server.URL)

	_, err := m.SendCatalogMessage(context.Background(), "393331234567", models.MessageText{Body: "Spring collection"})

	require.NoError(t, err)
	interactive := graph.Requests()[0].Body["interactive"].(map[string]interface{})
	assert.Equal(t, "catalog_message", interactive["type"])
	assert.Equal(t, map[string]interface{}{"text": "Spring collection"}, interactive["body"])
	assert.NotContains(t, interactive, "header")
	assert.NotContains(t, interactive, "footer")
	assert.Equal(t, map[string]interface{}{
		"name":       "catalog_message",
		"parameters": map[string]interface{}{"thumbnail_product_retailer_id": ""},
	}, interactive["action"])
}

func TestSendCatalogMessage_DefaultBodyAndThumbnail(t *testing.T) {
	graph, server := newFakeGraph(t, messageReply)
	m, _ := newTestManager(t, server.URL)

	_, err := m.SendCatalogMessage(context.Background(), "393331234567", models.MessageText{ThumbnailRetailerID: "SKU-9"})

	require.NoError(t, err)
	interactive := graph.Requests()[0].Body["interactive"].(map[string]interface{})
	assert.Equal(t, map[string]interface{}{"text": DefaultCatalogMessageBody}, interactive["body"])
	action := interactive["action"].(map[string]interface{})
	assert.Equal(t, map[string]interface{}{"thumbnail_product_retailer_id": "SKU-9"}, action["parameters"])
}

func TestSendMessage_RequiresPhoneNumberID(t *testing.T) {
	graph, server := newFakeGraph(t, messageReply)
	m, _ := newTestManager(t, server.URL, config.WithPhoneNumberID(""))

	_, err := m.SendCatalogMessage(context.Background(), "393331234567", models.MessageText{})
	var cfgErr *apierrors.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "phone number ID", cfgErr.Field)

	_, err = m.SendProductMessage(context.Background(), "393331234567", "SKU-1", models.MessageText{})
	assert.Equal(t, apierrors.KindConfiguration, apierrors.KindOf(err))
	assert.Empty(t, graph.Requests())
}

func TestSendProductMessage_RequiresCatalog(t *testing.T) {
	_, server := newFakeGraph(t, messageReply)
	m, _ := newTestManager(t, server.URL, config.WithCatalogID(""))

	_, err := m.SendProductMessage(context.Background(), "393331234567", "SKU-1", models.MessageText{})

	var cfgErr *apierrors.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "catalog ID", cfgErr.Field)
}

func TestSendCatalogMessage_RequiresCatalog(t *testing.T) {
	graph, server := newFakeGraph(t, messageReply)
	m, _ := newTestManager(t, server.URL, config.WithCatalogID(""))

	_, err := m.SendCatalogMessage(context.Background(), "393331234567", models.MessageText{})

	var cfgErr *apierrors.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "catalog ID", cfgErr.Field)
	assert.Empty(t, graph.Requests())
}

func TestSendProductMessage_NormalizesRecipient(t *testing.T) {
	graph, server := newFakeGraph(t, messageReply)
	m, _ := newTestManager(t, server.URL)

	_, err := m.SendProductMessage(context.Background(), "+39 012-345", "X1", models.MessageText{})

	require.NoError(t, err)
	reqs := graph.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "39012345", reqs[0].Body["to"])
	action := reqs[0].Body["interactive"].(map[string]interface{})["action"].(map[string]interface{})
	assert.Equal(t, "X1", action["product_retailer_id"])
}

func TestSendProductMessage_InvalidArguments(t *testing.T) {
	graph, server := newFakeGraph(t, messageReply)
	m, _ := newTestManager(t, server.URL)

	_, err := m.SendProductMessage(context.Background(), "+-- ", " ", models.MessageText{})

	var validationErr *apierrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, []string{
		"missing required field: phone number",
		"missing required field: product_retailer_id",
	}, validationErr.Errors)
	assert.Empty(t, graph.Requests())
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "393331234567", NormalizePhone("+39 333-123 4567"))
	assert.Equal(t, "15551234567", NormalizePhone("(1) 555.123.4567"))
	assert.Equal(t, "39012345", NormalizePhone("+39 012-345"))
	assert.Equal(t, "", NormalizePhone("+"))
	assert.Equal(t, "3912", NormalizePhone("39٣٤ 12"))
}

func TestMaskPhone(t *testing.T) {
	assert.Equal(t, "********4567", MaskPhone("393331234567"))
	assert.Equal(t, "***", MaskPhone("123"))
}
