// Package report renders metrics results as spreadsheets.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/spec-kit/service-order-metrics/internal/domain"
)

// PairsSheet is the sheet name used by WritePairs.
const PairsSheet = "Reaberturas"

var pairHeaders = []any{
	"Cliente",
	"OS Original",
	"Subtipo Original",
	"Categoria Original",
	"Técnico Original",
	"Finalização Original",
	"OS Reabertura",
	"Subtipo Reabertura",
	"Categoria Reabertura",
	"Técnico Reabertura",
	"Motivo Reabertura",
	"Criação Reabertura",
	"Horas",
	"Dias",
	"Cidade",
	"Bairro",
}

const timestampLayout = "02/01/2006 15:04"

// WritePairs writes the reopening pairs as an XLSX workbook.
func WritePairs(w io.Writer, pairs []domain.ReopeningPair) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", PairsSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(PairsSheet, "A1", &pairHeaders); err != nil {
		return err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	lastCol, err := excelize.ColumnNumberToName(len(pairHeaders))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(PairsSheet, "A1", lastCol+"1", style); err != nil {
		return err
	}

	for i, p := range pairs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := pairRow(p)
		if err := f.SetSheetRow(PairsSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	_ = f.SetColWidth(PairsSheet, "A", "B", 16)
	_ = f.SetColWidth(PairsSheet, "C", "F", 22)
	_ = f.SetColWidth(PairsSheet, "G", "L", 22)
	_ = f.SetColWidth(PairsSheet, "O", "P", 24)

	return f.Write(w)
}

func pairRow(p domain.ReopeningPair) []any {
	return []any{
		p.FollowUp.ClientCode,
		p.Anchor.Key(),
		p.Anchor.SubType,
		string(p.AnchorCategory),
		p.Anchor.Technician,
		formatTime(p.AnchorFinalized),
		p.FollowUp.Key(),
		p.FollowUp.SubType,
		string(p.FollowUpCategory),
		p.FollowUp.Technician,
		p.FollowUp.Reason,
		formatTime(p.FollowUp.CreatedAt),
		roundHours(p.ElapsedHours),
		p.ElapsedDays,
		p.FollowUp.City,
		p.FollowUp.Neighborhood,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timestampLayout)
}

func roundHours(h float64) float64 {
	return float64(int64(h*100+0.5)) / 100
}
