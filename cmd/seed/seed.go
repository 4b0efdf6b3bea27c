package main

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/tirs/quota/internal/domain/entity"
)

// Espacio de nombres de los UUID derivados: el mismo ID de origen produce siempre el mismo UUID.
var seedNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("quota-seed"))

func stableID(table, sourceID string) string {
	return uuid.NewSHA1(seedNamespace, []byte(table+":"+strings.TrimSpace(sourceID))).String()
}

// Codificaciones de entrada aceptadas.
const (
	encodingAuto   = "auto"
	encodingUTF8   = "utf8"
	encodingLatin1 = "latin1"
)

// decodeCSV convierte el contenido a UTF-8. En modo auto, un archivo que no es UTF-8
// válido se interpreta como ISO-8859-1 (exportaciones de Excel en español).
func decodeCSV(raw []byte, encoding string) (io.Reader, error) {
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	switch encoding {
	case encodingUTF8:
		return bytes.NewReader(raw), nil
	case encodingLatin1:
		return transform.NewReader(bytes.NewReader(raw), charmap.ISO8859_1.NewDecoder()), nil
	case encodingAuto, "":
		if utf8.Valid(raw) {
			return bytes.NewReader(raw), nil
		}
		return transform.NewReader(bytes.NewReader(raw), charmap.ISO8859_1.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("codificación desconocida %q (auto|utf8|latin1)", encoding)
	}
}

// record fila de CSV indexada por nombre de columna.
type record map[string]string

func (r record) get(col string) string { return strings.TrimSpace(r[col]) }

// readRecords lee un CSV con cabecera. Los nombres de columna se normalizan a minúsculas.
func readRecords(r io.Reader, required ...string) ([]record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("leer cabecera: %w", err)
	}
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(header[i]))
	}
	for _, col := range required {
		found := false
		for _, h := range header {
			if h == col {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("falta la columna %q", col)
		}
	}

	var out []record
	for line := 2; ; line++ {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		rec := make(record, len(header))
		for i, h := range header {
			if i < len(fields) {
				rec[h] = fields[i]
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

// sqlText literal SQL; vacío → NULL.
func sqlText(s string) string {
	if s == "" {
		return "NULL"
	}
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// sqlNumeric valida el número con decimal; vacío → def.
func sqlNumeric(s, def string) (string, error) {
	if s == "" {
		return def, nil
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		return "", fmt.Errorf("número inválido %q", s)
	}
	return d.String(), nil
}

// sqlTimestamp fecha de origen; vacío → now().
func sqlTimestamp(s string) string {
	if s == "" {
		return "now()"
	}
	return sqlText(s) + "::timestamptz"
}

// seedWriter genera el script SQL para PostgreSQL.
type seedWriter struct {
	w         io.Writer
	customers map[string]bool
	products  map[string]bool
	quotes    map[string]bool
	counts    map[string]int
}

func newSeedWriter(w io.Writer) *seedWriter {
	return &seedWriter{
		w:         w,
		customers: map[string]bool{},
		products:  map[string]bool{},
		quotes:    map[string]bool{},
		counts:    map[string]int{},
	}
}

const schemaSQL = `CREATE TABLE IF NOT EXISTS customers (
  id uuid PRIMARY KEY,
  name text NOT NULL,
  email text,
  phone text,
  company text,
  created_at timestamptz NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS products (
  id uuid PRIMARY KEY,
  name text NOT NULL,
  description text,
  price numeric(14,2) NOT NULL,
  category text,
  created_at timestamptz NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS quotes (
  id uuid PRIMARY KEY,
  quote_number text NOT NULL UNIQUE,
  customer_id uuid NOT NULL REFERENCES customers (id),
  status text NOT NULL DEFAULT 'draft',
  subtotal numeric(14,2) NOT NULL DEFAULT 0,
  tax_rate numeric(6,4) NOT NULL DEFAULT 0.1,
  tax_amount numeric(14,2) NOT NULL DEFAULT 0,
  total numeric(14,2) NOT NULL DEFAULT 0,
  notes text,
  created_at timestamptz NOT NULL DEFAULT now(),
  updated_at timestamptz
);
CREATE INDEX IF NOT EXISTS idx_quotes_customer ON quotes (customer_id);
CREATE TABLE IF NOT EXISTS quote_items (
  id uuid PRIMARY KEY,
  quote_id uuid NOT NULL REFERENCES quotes (id),
  product_id uuid NOT NULL REFERENCES products (id),
  quantity integer NOT NULL,
  unit_price numeric(14,2) NOT NULL,
  line_total numeric(14,2) NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_quote_items_quote ON quote_items (quote_id);

`

func (s *seedWriter) schema() {
	fmt.Fprint(s.w, schemaSQL)
}

func (s *seedWriter) writeCustomers(rows []record) error {
	fmt.Fprintln(s.w, "-- Clientes")
	for i, r := range rows {
		id, name := r.get("id"), r.get("name")
		if id == "" || name == "" {
			return fmt.Errorf("customers fila %d: id y name son obligatorios", i+2)
		}
		s.customers[id] = true
		fmt.Fprintf(s.w,
			"INSERT INTO customers (id, name, email, phone, company, created_at) VALUES ('%s', %s, %s, %s, %s, %s) ON CONFLICT (id) DO NOTHING;\n",
			stableID("customers", id), sqlText(name), sqlText(r.get("email")), sqlText(r.get("phone")),
			sqlText(r.get("company")), sqlTimestamp(r.get("created_at")))
	}
	s.counts["customers"] = len(rows)
	return nil
}

func (s *seedWriter) writeProducts(rows []record) error {
	fmt.Fprintln(s.w, "\n-- Productos")
	for i, r := range rows {
		id := r.get("id")
		if id == "" {
			return fmt.Errorf("products fila %d: id obligatorio", i+2)
		}
		price, err := sqlNumeric(r.get("price"), "")
		if err != nil || price == "" {
			return fmt.Errorf("products fila %d: precio inválido %q", i+2, r.get("price"))
		}
		s.products[id] = true
		fmt.Fprintf(s.w,
			"INSERT INTO products (id, name, description, price, category, created_at) VALUES ('%s', %s, %s, %s, %s, %s) ON CONFLICT (id) DO NOTHING;\n",
			stableID("products", id), sqlText(r.get("name")), sqlText(r.get("description")), price,
			sqlText(r.get("category")), sqlTimestamp(r.get("created_at")))
	}
	s.counts["products"] = len(rows)
	return nil
}

func (s *seedWriter) writeQuotes(rows []record) error {
	fmt.Fprintln(s.w, "\n-- Cotizaciones")
	for i, r := range rows {
		line := i + 2
		id, customerID := r.get("id"), r.get("customer_id")
		if !s.customers[customerID] {
			return fmt.Errorf("quotes fila %d: cliente %q inexistente", line, customerID)
		}
		status := entity.QuoteStatus(strings.ToLower(r.get("status")))
		if status == "" {
			status = entity.QuoteStatusDraft
		}
		if !status.Valid() {
			return fmt.Errorf("quotes fila %d: estado %q", line, status)
		}
		amounts := make([]string, 0, 4)
		for _, col := range []string{"subtotal", "tax_rate", "tax_amount", "total"} {
			v, err := sqlNumeric(r.get(col), "0")
			if err != nil {
				return fmt.Errorf("quotes fila %d: %s: %w", line, col, err)
			}
			amounts = append(amounts, v)
		}
		number := r.get("quote_number")
		if number == "" {
			number = "Q-" + id
		}
		s.quotes[id] = true
		updated := "NULL"
		if u := r.get("updated_at"); u != "" {
			updated = sqlTimestamp(u)
		}
		fmt.Fprintf(s.w,
			"INSERT INTO quotes (id, quote_number, customer_id, status, subtotal, tax_rate, tax_amount, total, notes, created_at, updated_at) VALUES ('%s', %s, '%s', '%s', %s, %s, %s, %s, %s, %s, %s) ON CONFLICT (id) DO NOTHING;\n",
			stableID("quotes", id), sqlText(number), stableID("customers", customerID), status,
			amounts[0], amounts[1], amounts[2], amounts[3],
			sqlText(r.get("notes")), sqlTimestamp(r.get("created_at")), updated)
	}
	s.counts["quotes"] = len(rows)
	return nil
}

func (s *seedWriter) writeItems(rows []record) error {
	fmt.Fprintln(s.w, "\n-- Líneas de cotización")
	for i, r := range rows {
		line := i + 2
		quoteID, productID := r.get("quote_id"), r.get("product_id")
		if !s.quotes[quoteID] || !s.products[productID] {
			return fmt.Errorf("quote_items fila %d: cotización %q o producto %q inexistente", line, quoteID, productID)
		}
		qty, err := sqlNumeric(r.get("quantity"), "")
		if err != nil || qty == "" || strings.Contains(qty, ".") {
			return fmt.Errorf("quote_items fila %d: cantidad inválida %q", line, r.get("quantity"))
		}
		unit, err := sqlNumeric(r.get("unit_price"), "0")
		if err != nil {
			return fmt.Errorf("quote_items fila %d: %w", line, err)
		}
		lineTotal, err := sqlNumeric(r.get("line_total"), "")
		if err != nil {
			return fmt.Errorf("quote_items fila %d: %w", line, err)
		}
		if lineTotal == "" {
			q, _ := decimal.NewFromString(qty)
			u, _ := decimal.NewFromString(unit)
			lineTotal = q.Mul(u).Round(2).String()
		}
		fmt.Fprintf(s.w,
			"INSERT INTO quote_items (id, quote_id, product_id, quantity, unit_price, line_total) VALUES ('%s', '%s', '%s', %s, %s, %s) ON CONFLICT (id) DO NOTHING;\n",
			stableID("quote_items", r.get("id")+"@"+quoteID), stableID("quotes", quoteID), stableID("products", productID),
			qty, unit, lineTotal)
	}
	s.counts["quote_items"] = len(rows)
	return nil
}
