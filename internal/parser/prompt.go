package parser

// BuildInvoicePrompt returns the extraction prompt for the given invoice text.
func BuildInvoicePrompt(text string) string {
	return `You are an invoice data extraction assistant. Extract the invoice below into the following JSON structure.

RULES:
- Return ONLY raw JSON. No markdown, no code fences, no explanation.
- Dates must be formatted as YYYY-MM-DD. Omit a date you cannot determine.
- "currency" is an ISO 4217 code; use "USD" when the invoice does not state one.
- Numeric fields must be plain JSON numbers. Never use NaN, null or strings for numbers; omit an optional number you cannot determine.
- "taxPercent" is a percentage (e.g. 8.5 for 8.5%), not an amount.
- Include EVERY line item in document order.

Required fields: vendor.name, invoice.number, invoice.date, invoice.lineItems.
Optional fields: vendor.address, vendor.taxId, invoice.currency, invoice.subtotal, invoice.taxPercent, invoice.total, invoice.poNumber, invoice.poDate.

{
  "vendor": {
    "name": "",
    "address": "",
    "taxId": ""
  },
  "invoice": {
    "number": "",
    "date": "YYYY-MM-DD",
    "currency": "USD",
    "subtotal": 0,
    "taxPercent": 0,
    "total": 0,
    "poNumber": "",
    "poDate": "YYYY-MM-DD",
    "lineItems": [
      {"description": "", "unitPrice": 0, "quantity": 1, "total": 0}
    ]
  }
}

INVOICE TEXT:
` + text
}
