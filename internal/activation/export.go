package activation

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	exportSheet    = "Activation Codes"
	exportPageSize = 500
	exportMaxRows  = 100000
)

var exportHeader = []string{
	"ID", "Code", "Type", "Status", "Distributed At", "Activated At", "Expire Time", "Created At",
}

// Export renders every code matching the filter into an xlsx workbook.
func (s *Service) Export(ctx context.Context, f Filter) (*bytes.Buffer, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	wb := excelize.NewFile()
	defer wb.Close()

	if err := wb.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}

	headerStyle, err := wb.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, err
	}

	for i, h := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := wb.SetCellValue(exportSheet, cell, h); err != nil {
			return nil, err
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(exportHeader))
	if err := wb.SetCellStyle(exportSheet, "A1", lastCol+"1", headerStyle); err != nil {
		return nil, err
	}

	row := 2

	for offset := 0; offset < exportMaxRows; offset += exportPageSize {
		rows, _, err := s.repo.List(ctx, f, offset, exportPageSize)
		if err != nil {
			return nil, fmt.Errorf("list activation codes for export: %w", err)
		}

		for i := range rows {
			v := NewView(&rows[i])
			values := []any{
				v.ID, v.Code, v.TypeName, v.StatusName,
				formatTime(v.DistributedAt), formatTime(v.ActivatedAt), formatTime(v.ExpireTime),
				v.CreatedAt.Format(time.DateTime),
			}

			cell, _ := excelize.CoordinatesToCellName(1, row)
			if err := wb.SetSheetRow(exportSheet, cell, &values); err != nil {
				return nil, err
			}

			row++
		}

		if len(rows) < exportPageSize {
			break
		}
	}

	if err := wb.SetColWidth(exportSheet, "B", "B", 24); err != nil {
		return nil, err
	}

	buf, err := wb.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write activation code workbook: %w", err)
	}

	return buf, nil
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}

	return t.Format(time.DateTime)
}
