package utils

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"medexpenses/internal/services"
)

const PatientSheet = "Patients"

// ExportPatients writes every patient, decrypted and with lookup labels, to
// a single-sheet workbook. The columns match PatientColumns plus a leading
// id, so the file can be fed back to ImportPatients.
func ExportPatients(ctx context.Context, patients services.PatientService, w io.Writer) (int, error) {
	rows, err := patients.List(ctx)
	if err != nil {
		return 0, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", PatientSheet); err != nil {
		return 0, fmt.Errorf("rename sheet: %w", err)
	}

	header := append([]any{"id"}, toAny(PatientColumns)...)
	if err := f.SetSheetRow(PatientSheet, "A1", &header); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return 0, fmt.Errorf("create header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return 0, err
	}
	if err := f.SetCellStyle(PatientSheet, "A1", last, style); err != nil {
		return 0, fmt.Errorf("style header: %w", err)
	}

	for i, p := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return 0, err
		}
		row := []any{p.ID, p.Age, p.Sex, p.BMI, p.Children, p.Smoker, p.Region, p.Charges, p.FirstName, p.LastName, p.Email}
		if err := f.SetSheetRow(PatientSheet, cell, &row); err != nil {
			return 0, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(PatientSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return 0, fmt.Errorf("freeze header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return 0, fmt.Errorf("write workbook: %w", err)
	}
	return len(rows), nil
}

func toAny(s []string) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}
