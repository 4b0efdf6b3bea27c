// seed genera un script SQL para poblar PostgreSQL a partir de la exportación CSV de la
// aplicación de cotizaciones (customers.csv, products.csv, quotes.csv, quote_items.csv).
//
// Uso: go run ./cmd/seed -dir ./export [-encoding auto|utf8|latin1] [-schema] [-out seed.sql]
// Los IDs de origen se convierten en UUID estables; el script es idempotente.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

type source struct {
	file     string
	required []string
	write    func(*seedWriter, []record) error
}

var sources = []source{
	{"customers.csv", []string{"id", "name"}, (*seedWriter).writeCustomers},
	{"products.csv", []string{"id", "name", "price"}, (*seedWriter).writeProducts},
	{"quotes.csv", []string{"id", "customer_id", "status", "total"}, (*seedWriter).writeQuotes},
	{"quote_items.csv", []string{"quote_id", "product_id", "quantity"}, (*seedWriter).writeItems},
}

func main() {
	dir := flag.String("dir", ".", "directorio con los CSV exportados")
	encoding := flag.String("encoding", encodingAuto, "codificación de los CSV: auto, utf8 o latin1")
	withSchema := flag.Bool("schema", false, "incluir CREATE TABLE IF NOT EXISTS")
	outPath := flag.String("out", "", "archivo de salida (por defecto stdout)")
	flag.Parse()

	var out io.Writer = os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	bw := bufio.NewWriter(out)
	counts, err := run(bw, *dir, *encoding, *withSchema)
	if err == nil {
		err = bw.Flush()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "Generado: %d clientes, %d productos, %d cotizaciones, %d líneas\n",
		counts["customers"], counts["products"], counts["quotes"], counts["quote_items"])
}

func run(w io.Writer, dir, encoding string, withSchema bool) (map[string]int, error) {
	sw := newSeedWriter(w)
	fmt.Fprintln(w, "-- Generado por cmd/seed desde la exportación CSV de cotizaciones")
	fmt.Fprintln(w, "BEGIN;")
	if withSchema {
		sw.schema()
	}
	for _, src := range sources {
		raw, err := os.ReadFile(filepath.Join(dir, src.file))
		if err != nil {
			return nil, fmt.Errorf("leer %s: %w", src.file, err)
		}
		r, err := decodeCSV(raw, encoding)
		if err != nil {
			return nil, err
		}
		rows, err := readRecords(r, src.required...)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", src.file, err)
		}
		if err := src.write(sw, rows); err != nil {
			return nil, err
		}
	}
	fmt.Fprintln(w, "COMMIT;")
	return sw.counts, nil
}
