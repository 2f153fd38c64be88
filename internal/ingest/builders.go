package ingest

import (
	"fmt"

	"hermes/internal/domain/record"
)

// Row is one CSV row keyed by column name
type Row map[string]string

// Builder turns a source row into a document string plus the metadata
// worth keeping alongside it
type Builder func(row Row) (string, record.Metadata)

// BuildCampaignDoc renders a past-campaign row into a readable document
func BuildCampaignDoc(row Row) (string, record.Metadata) {
	doc := fmt.Sprintf(
		"Campaign %s: %s\n"+
			"Brand: %s\n"+
			"Model: %s\n"+
			"Audience: %s\n"+
			"Channel: %s\n"+
			"Dates: %s to %s\n"+
			"Subject: %s\n"+
			"Body: %s\n"+
			"Impressions: %s Clicks: %s CTR: %s ConvRate: %s",
		row["campaign_id"], row["campaign_name"],
		row["brand"],
		row["target_model"],
		row["audience_segment"],
		row["channel"],
		row["start_date"], row["end_date"],
		row["message_subject"],
		row["message_body"],
		row["impressions"], row["clicks"], row["ctr"], row["conversion_rate"],
	)

	meta := pickMetadata(row,
		"campaign_id", "brand", "target_model", "audience_segment", "channel",
		"start_date", "end_date", "impressions", "clicks", "ctr", "conversion_rate",
	)
	return doc, meta
}

// BuildPurchaseDoc renders a purchase row into a readable document
func BuildPurchaseDoc(row Row) (string, record.Metadata) {
	doc := fmt.Sprintf(
		"Order %s: Brand %s Model %s\n"+
			"Customer: %s Dealer: %s\n"+
			"Date: %s Qty: %s UnitPrice: %s\n"+
			"Payment: %s Region: %s City: %s",
		row["order_id"], row["brand"], row["model"],
		row["customer_id"], row["dealer_id"],
		row["purchase_date"], row["quantity"], row["unit_price"],
		row["payment_method"], row["region"], row["city"],
	)

	meta := pickMetadata(row,
		"order_id", "brand", "customer_id", "dealer_id", "purchase_date",
		"model", "quantity", "unit_price", "payment_method", "region", "city",
	)
	return doc, meta
}

// BuildSentimentDoc renders a feedback row into a readable document
func BuildSentimentDoc(row Row) (string, record.Metadata) {
	doc := fmt.Sprintf(
		"Feedback %s (source: %s)\n"+
			"Brand: %s Date: %s Location: %s\n"+
			"Text: %s\n"+
			"Engagement: %s",
		row["feedback_id"], row["source"],
		row["brand"], row["timestamp"], row["geo_location"],
		row["text"],
		row["engagement_metrics"],
	)

	meta := pickMetadata(row,
		"feedback_id", "brand", "source", "timestamp", "geo_location", "engagement_metrics",
	)
	return doc, meta
}

// BuilderFor maps a namespace to its document builder
func BuilderFor(ns record.Namespace) (Builder, bool) {
	switch ns {
	case record.NamespaceCampaign:
		return BuildCampaignDoc, true
	case record.NamespacePurchase:
		return BuildPurchaseDoc, true
	case record.NamespaceSentiment:
		return BuildSentimentDoc, true
	}
	return nil, false
}

func pickMetadata(row Row, keys ...string) record.Metadata {
	meta := make(record.Metadata, len(keys))
	for _, k := range keys {
		if v, ok := row[k]; ok && v != "" {
			meta[k] = v
		}
	}
	return meta
}

const (
	// Documents longer than this get chunked before embedding
	chunkThreshold = 2000
	chunkMaxLen    = 1000
	chunkOverlap   = 200
)

// chunkText splits long text into overlapping character windows so each
// piece fits comfortably in the embedding model's context
func chunkText(text string, maxLen, overlap int) []string {
	if text == "" {
		return nil
	}
	if len(text) <= maxLen {
		return []string{text}
	}

	var chunks []string
	for start := 0; start < len(text); {
		end := start + maxLen
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, text[start:end])
		if end == len(text) {
			break
		}
		start = end - overlap
	}
	return chunks
}
