package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"bursary-portal-backend/config"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// EnsureDirectoryExists ensures the specified directory exists before file saving
func EnsureDirectoryExists(dirPath string) error {
	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		if err := os.MkdirAll(dirPath, 0755); err != nil {
			return fmt.Errorf("error creating directory: %v", err)
		}
	}
	return nil
}

// GenerateExcel writes headers and rows to a new workbook in dirPath and
// returns the file name it was saved under.
func GenerateExcel(dirPath, taskName string, headers []string, rows [][]interface{}, now time.Time) (string, error) {
	if err := EnsureDirectoryExists(dirPath); err != nil {
		config.Logger.Error("Failed to ensure directory exists", zap.String("dir", dirPath), zap.Error(err))
		return "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Sheet1"
	index, err := f.GetSheetIndex(sheetName)
	if err != nil {
		return "", fmt.Errorf("error finding sheet: %v", err)
	}

	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return "", err
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return "", fmt.Errorf("error setting header %s: %v", header, err)
		}
	}

	for r, row := range rows {
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, r+2)
			if err != nil {
				return "", err
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return "", fmt.Errorf("error setting value at %s: %v", cell, err)
			}
		}
	}

	f.SetActiveSheet(index)

	fileName := fmt.Sprintf("%s_%s.xlsx", CleanStringForFilename(taskName), now.Format("2006-01-02_15-04-05"))
	if err := f.SaveAs(filepath.Join(dirPath, fileName)); err != nil {
		config.Logger.Error("Error saving Excel file", zap.String("file", fileName), zap.Error(err))
		return "", err
	}

	config.Logger.Info("Excel export written", zap.String("file", fileName), zap.Int("rows", len(rows)))
	return fileName, nil
}
