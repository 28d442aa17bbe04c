package imports

import (
	"github.com/xuri/excelize/v2"
)

// BuildPanelTemplate returns an empty panel import workbook with the
// positional header row filled in.
func BuildPanelTemplate() (*excelize.File, error) {
	f := excelize.NewFile()
	for idx, header := range PanelSheetColumns {
		cell, err := excelize.CoordinatesToCellName(idx+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue("Sheet1", cell, header); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// BuildProjectTemplate returns an empty project import workbook with the
// canonical header names.
func BuildProjectTemplate() (*excelize.File, error) {
	f := excelize.NewFile()
	for idx, header := range ProjectSheetColumns {
		cell, err := excelize.CoordinatesToCellName(idx+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue("Sheet1", cell, header); err != nil {
			return nil, err
		}
	}
	return f, nil
}
