// Package document assembles order, quote, and quote-request documents
// from match results, party records, and project metadata. A Document is
// write-once: it is built, rendered to its artifacts, and discarded.
package document

import (
	"time"

	"github.com/shopspring/decimal"
	"gitlab.com/tozd/go/errors"

	"github.com/filehopper/hopper/pkg/party"
)

// Type selects the kind of document generated for a production.
type Type string

const (
	TypeOrder        Type = "order"
	TypeQuote        Type = "quote"
	TypeQuoteRequest Type = "quote-request"
)

// ParseType resolves a user-supplied document type string.
func ParseType(s string) (Type, error) {
	switch Type(s) {
	case TypeOrder, TypeQuote, TypeQuoteRequest:
		return Type(s), nil
	}
	return "", errors.Errorf("unknown document type %q (want order, quote, or quote-request)", s)
}

// Prefix returns the fixed document-number prefix for the type. Quote
// numbers have no fixed prefix; a configured one is applied by Build.
func (t Type) Prefix() string {
	switch t {
	case TypeOrder:
		return "BB-"
	case TypeQuoteRequest:
		return "OFF-"
	default:
		return ""
	}
}

// Label returns the document title used in headers and file names.
func (t Type) Label() string {
	switch t {
	case TypeOrder:
		return "Order"
	case TypeQuote:
		return "Quote"
	case TypeQuoteRequest:
		return "Quote request"
	default:
		return string(t)
	}
}

// PartyRole returns the label of the required party: orders and quote
// requests go to a supplier, quotes go to a client.
func (t Type) PartyRole() string {
	if t == TypeQuote {
		return "Client"
	}
	return "Supplier"
}

// Company identifies the issuing company on rendered documents.
type Company struct {
	Name         string
	AddressLine1 string
	AddressLine2 string
	VATNumber    string
	Phone        string
	Email        string
}

// Line is one BOM line as it appears on a document. Unmatched lines carry
// a visible marker in both rendered artifacts instead of being dropped.
type Line struct {
	PartNumber  string
	Description string
	Material    string
	Quantity    decimal.Decimal
	Surface     decimal.Decimal
	Weight      decimal.Decimal
	Matched     bool
	Files       int // source files copied for this line
}

// Document is a fully resolved document for one production, ready to
// render.
type Document struct {
	Type          Type
	Number        string // full number including prefix, verbatim in headers
	Date          string // YYYY-MM-DD
	Production    string
	Company       Company
	Party         party.Party
	Delivery      string // resolved delivery text, empty when none
	ProjectNumber string
	ProjectName   string
	Deadline      string // verbatim reply deadline, quote requests only
	Notes         []string
	FooterNote    string
	Compliance    string // resolved compliance note text, empty when none
	Lines         []Line
}

// ErrMissingParty is returned when the document type requires a party and
// none was resolved.
var ErrMissingParty = errors.New("no party selected")

// Params carries everything needed to assemble one document.
type Params struct {
	Type          Type
	Suffix        string // numeric part of the document number
	QuotePrefix   string // prefix applied to quote numbers
	Production    string
	Company       Company
	Party         *party.Party
	Delivery      string
	ProjectNumber string
	ProjectName   string
	Deadline      string
	Notes         []string
	FooterNote    string
	Compliance    ComplianceNote
	Date          time.Time // zero means today
}

// Build assembles a Document. It fails when the type's required party is
// absent, when a reply deadline is supplied for anything but a quote
// request, or when there are no lines.
func Build(params Params, lines []Line) (*Document, error) {
	if params.Party == nil {
		return nil, errors.Errorf("%s for production %q needs a %s: %w",
			params.Type.Label(), params.Production, params.Type.PartyRole(), ErrMissingParty)
	}
	if params.Deadline != "" && params.Type != TypeQuoteRequest {
		return nil, errors.Errorf("a reply deadline only applies to quote requests, not %s documents", params.Type)
	}
	if len(lines) == 0 {
		return nil, errors.Errorf("%s for production %q has no lines", params.Type.Label(), params.Production)
	}
	if params.Suffix == "" {
		return nil, errors.New("document number suffix is required")
	}

	prefix := params.Type.Prefix()
	if params.Type == TypeQuote {
		prefix = params.QuotePrefix
	}

	date := params.Date
	if date.IsZero() {
		date = time.Now()
	}

	return &Document{
		Type:          params.Type,
		Number:        prefix + params.Suffix,
		Date:          date.Format("2006-01-02"),
		Production:    params.Production,
		Company:       params.Company,
		Party:         *params.Party,
		Delivery:      params.Delivery,
		ProjectNumber: params.ProjectNumber,
		ProjectName:   params.ProjectName,
		Deadline:      params.Deadline,
		Notes:         params.Notes,
		FooterNote:    params.FooterNote,
		Compliance:    params.Compliance.TextFor(params.Production),
		Lines:         lines,
	}, nil
}
