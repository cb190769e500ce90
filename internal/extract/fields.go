package extract

import (
	"encoding/json"
)

// Fields is what a layout extractor recovered from a document. Empty strings
// and nil amounts mean the field was not found.
type Fields struct {
	IssuerID           string
	IssuerName         string
	RecipientID        string
	RecipientName      string
	DocumentDate       string // free-form, as printed on the document
	DocumentNumber     string
	TotalAmount        *float64
	NetAmount          *float64
	SecondaryTaxAmount *float64 // IVA or withholding, depending on the layout
	Description        string
	// Extras carries labelled amounts beyond the common set (payroll breakdowns).
	Extras map[string]float64
}

type fieldsJSON struct {
	IssuerID           *string            `json:"issuerId"`
	IssuerName         *string            `json:"issuerName"`
	RecipientID        *string            `json:"recipientId"`
	RecipientName      *string            `json:"recipientName"`
	DocumentDate       *string            `json:"documentDate"`
	DocumentNumber     *string            `json:"documentNumber"`
	TotalAmount        *float64           `json:"totalAmount"`
	NetAmount          *float64           `json:"netAmount"`
	SecondaryTaxAmount *float64           `json:"secondaryTaxAmount"`
	Description        *string            `json:"description"`
	Extras             map[string]float64 `json:"extras,omitempty"`
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// MarshalJSON renders absent fields as null.
func (f Fields) MarshalJSON() ([]byte, error) {
	return json.Marshal(fieldsJSON{
		IssuerID:           optString(f.IssuerID),
		IssuerName:         optString(f.IssuerName),
		RecipientID:        optString(f.RecipientID),
		RecipientName:      optString(f.RecipientName),
		DocumentDate:       optString(f.DocumentDate),
		DocumentNumber:     optString(f.DocumentNumber),
		TotalAmount:        f.TotalAmount,
		NetAmount:          f.NetAmount,
		SecondaryTaxAmount: f.SecondaryTaxAmount,
		Description:        optString(f.Description),
		Extras:             f.Extras,
	})
}

func (f *Fields) UnmarshalJSON(b []byte) error {
	var w fieldsJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*f = Fields{
		IssuerID:           derefString(w.IssuerID),
		IssuerName:         derefString(w.IssuerName),
		RecipientID:        derefString(w.RecipientID),
		RecipientName:      derefString(w.RecipientName),
		DocumentDate:       derefString(w.DocumentDate),
		DocumentNumber:     derefString(w.DocumentNumber),
		TotalAmount:        w.TotalAmount,
		NetAmount:          w.NetAmount,
		SecondaryTaxAmount: w.SecondaryTaxAmount,
		Description:        derefString(w.Description),
		Extras:             w.Extras,
	}
	return nil
}

// IsEmpty reports whether no field at all was recovered.
func (f Fields) IsEmpty() bool {
	return f.IssuerID == "" && f.IssuerName == "" &&
		f.RecipientID == "" && f.RecipientName == "" &&
		f.DocumentDate == "" && f.DocumentNumber == "" &&
		f.TotalAmount == nil && f.NetAmount == nil && f.SecondaryTaxAmount == nil &&
		f.Description == "" && len(f.Extras) == 0
}
