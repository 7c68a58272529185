// Package importer turns exported service-order spreadsheets into domain records.
package importer

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/spec-kit/service-order-metrics/internal/domain"
	"github.com/spec-kit/service-order-metrics/pkg/textutil"
)

// ErrHeaderNotFound is returned when no sheet has the mandatory columns.
var ErrHeaderNotFound = errors.New("header row not found: need order, client and creation date columns")

type column int

const (
	colOrder column = iota
	colItem
	colClient
	colTechnician
	colServiceType
	colSubType
	colReason
	colStatus
	colCreated
	colCompleted
	colCity
	colNeighborhood
	colAction
	columnCount
)

// headerAliases are compared against folded header cells.
var headerAliases = map[column][]string{
	colOrder:        {"os", "ordem", "ordem de servico", "numero os", "n os", "codigo os", "cod os"},
	colItem:         {"item", "codigo item", "cod item"},
	colClient:       {"cliente", "codigo cliente", "cod cliente", "contrato"},
	colTechnician:   {"tecnico", "nome tecnico"},
	colServiceType:  {"tipo", "tipo servico", "tipo de servico", "tipo os"},
	colSubType:      {"subtipo", "sub tipo", "subtipo servico", "subtipo os"},
	colReason:       {"motivo", "motivo os"},
	colStatus:       {"status", "situacao", "status os"},
	colCreated:      {"data criacao", "data de criacao", "criacao", "data abertura", "abertura"},
	colCompleted:    {"data finalizacao", "data de finalizacao", "finalizacao", "data conclusao", "conclusao", "data execucao"},
	colCity:         {"cidade", "municipio"},
	colNeighborhood: {"bairro"},
	colAction:       {"acao", "acao tomada", "acao realizada", "solucao"},
}

var timeLayouts = []string{
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Options controls parsing.
type Options struct {
	Location  *time.Location
	SheetName string
}

// RowError reports a rejected spreadsheet row (1-based).
type RowError struct {
	Row    int
	Reason string
}

func (e RowError) String() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}

// Result is the outcome of parsing one workbook.
type Result struct {
	Sheet     string
	HeaderRow int
	Orders    []domain.ServiceOrder
	Problems  []RowError
}

// ParseWorkbook reads the first sheet carrying a recognisable header (or the named
// sheet) and converts each data row. Bad rows are reported, not fatal.
func ParseWorkbook(r io.Reader, opts Options) (*Result, error) {
	if opts.Location == nil {
		opts.Location = time.UTC
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if opts.SheetName != "" {
		sheets = []string{opts.SheetName}
	}

	for _, sheet := range sheets {
		rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
		}
		headerIdx, cols, ok := findHeader(rows)
		if !ok {
			continue
		}

		result := &Result{Sheet: sheet, HeaderRow: headerIdx + 1}
		for i := headerIdx + 1; i < len(rows); i++ {
			row := rows[i]
			if isBlank(row) || isTotalRow(row) {
				continue
			}
			order, problem := parseRow(row, cols, opts.Location)
			if problem != "" {
				result.Problems = append(result.Problems, RowError{Row: i + 1, Reason: problem})
				continue
			}
			result.Orders = append(result.Orders, order)
		}
		return result, nil
	}
	return nil, ErrHeaderNotFound
}

func findHeader(rows [][]string) (int, [columnCount]int, bool) {
	var cols [columnCount]int
	for rIdx, row := range rows {
		for i := range cols {
			cols[i] = -1
		}
		for cIdx, cell := range row {
			key := textutil.Fold(strings.Trim(cell, ".:#º°"))
			for col, aliases := range headerAliases {
				if cols[col] != -1 {
					continue
				}
				for _, alias := range aliases {
					if key == alias {
						cols[col] = cIdx
						break
					}
				}
			}
		}
		if cols[colOrder] != -1 && cols[colClient] != -1 && cols[colCreated] != -1 {
			return rIdx, cols, true
		}
	}
	return -1, cols, false
}

func parseRow(row []string, cols [columnCount]int, loc *time.Location) (domain.ServiceOrder, string) {
	get := func(c column) string {
		idx := cols[c]
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	order := domain.ServiceOrder{
		OrderCode:    get(colOrder),
		ItemCode:     get(colItem),
		ClientCode:   get(colClient),
		Technician:   get(colTechnician),
		ServiceType:  get(colServiceType),
		SubType:      get(colSubType),
		Reason:       get(colReason),
		Status:       domain.OrderStatus(get(colStatus)),
		City:         get(colCity),
		Neighborhood: get(colNeighborhood),
		ActionTaken:  get(colAction),
	}
	if order.OrderCode == "" {
		return order, "missing order code"
	}
	if order.ClientCode == "" {
		return order, "missing client code"
	}

	created, err := ParseTimestamp(get(colCreated), loc)
	if err != nil {
		return order, "invalid creation date: " + err.Error()
	}
	order.CreatedAt = created

	if raw := get(colCompleted); raw != "" {
		completed, err := ParseTimestamp(raw, loc)
		if err != nil {
			return order, "invalid completion date: " + err.Error()
		}
		order.CompletedAt = &completed
	}
	return order, ""
}

// ParseTimestamp accepts the textual layouts seen in exports, RFC3339, and Excel serial
// date numbers.
func ParseTimestamp(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("empty value")
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.In(loc), nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	if serial, err := strconv.ParseFloat(raw, 64); err == nil && serial > 0 {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, err
		}
		t = t.Round(time.Second)
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc), nil
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", raw)
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func isTotalRow(row []string) bool {
	for _, cell := range row {
		key := textutil.Fold(cell)
		if key == "" {
			continue
		}
		return strings.HasPrefix(key, "total")
	}
	return false
}
