package analysis

import (
	"encoding/json"

	"github.com/docuflow/document-analyzer/constants"
)

// Payload is the persistence-ready analysis result: a sum over invoice and
// information data tagged by document type. Construction goes through
// NewInvoicePayload / NewInformationPayload so exactly one variant is ever
// set.
type Payload struct {
	docType     constants.DocumentType
	invoice     *InvoiceData
	information *InformationData
	rawText     string
}

func NewInvoicePayload(inv InvoiceData, rawText string) Payload {
	return Payload{docType: constants.DocumentTypeInvoice, invoice: &inv, rawText: rawText}
}

func NewInformationPayload(info InformationData, rawText string) Payload {
	return Payload{docType: constants.DocumentTypeInformation, information: &info, rawText: rawText}
}

// Type reports which variant the payload carries.
func (p Payload) Type() constants.DocumentType { return p.docType }

// RawText is the full sanitized text kept for audit.
func (p Payload) RawText() string { return p.rawText }

// Invoice returns the invoice variant, if set.
func (p Payload) Invoice() (*InvoiceData, bool) {
	return p.invoice, p.invoice != nil
}

// Information returns the information variant, if set.
func (p Payload) Information() (*InformationData, bool) {
	return p.information, p.information != nil
}

type payloadJSON struct {
	DocumentType constants.DocumentType `json:"document_type"`
	Invoice      *InvoiceData           `json:"invoice,omitempty"`
	Information  *InformationData       `json:"information,omitempty"`
	RawText      string                 `json:"raw_text"`
}

func (p Payload) MarshalJSON() ([]byte, error) {
	return json.Marshal(payloadJSON{
		DocumentType: p.docType,
		Invoice:      p.invoice,
		Information:  p.information,
		RawText:      p.rawText,
	})
}

func (p *Payload) UnmarshalJSON(data []byte) error {
	var pj payloadJSON
	if err := json.Unmarshal(data, &pj); err != nil {
		return err
	}
	p.docType = pj.DocumentType
	p.invoice = pj.Invoice
	p.information = pj.Information
	p.rawText = pj.RawText
	return nil
}
