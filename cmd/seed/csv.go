package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/stock-tracker/internal/application/dto"
)

// csvColumns cabecera esperada del archivo de productos.
var csvColumns = []string{"name", "sku", "description", "min_stock", "max_stock"}

// readProductsCSV lee productos desde un CSV exportado de hoja de cálculo.
// latin1 decodifica la entrada como ISO-8859-1 (exportaciones de Excel en español).
func readProductsCSV(r io.Reader, latin1 bool) ([]dto.CreateProductRequest, error) {
	if latin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = len(csvColumns)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("leer cabecera: %w", err)
	}
	for i, col := range csvColumns {
		if !strings.EqualFold(strings.TrimSpace(header[i]), col) {
			return nil, fmt.Errorf("cabecera inválida: columna %d es %q, se esperaba %q", i+1, header[i], col)
		}
	}

	var out []dto.CreateProductRequest
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		minStock, err := parseStock(rec[3])
		if err != nil {
			return nil, fmt.Errorf("línea %d min_stock: %w", line, err)
		}
		maxStock, err := parseStock(rec[4])
		if err != nil {
			return nil, fmt.Errorf("línea %d max_stock: %w", line, err)
		}
		out = append(out, dto.CreateProductRequest{
			Name:        strings.TrimSpace(rec[0]),
			SKU:         strings.TrimSpace(rec[1]),
			Description: strings.TrimSpace(rec[2]),
			MinStock:    minStock,
			MaxStock:    maxStock,
		})
	}
	return out, nil
}

// parseStock celda vacía = valor por defecto del registro.
func parseStock(s string) (*int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
