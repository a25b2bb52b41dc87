package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Sheet is the part of a spreadsheet writer the renderer needs.
// Rows and columns are zero-based.
type Sheet interface {
	SetColumnWidth(col int, width float64) error
	SetRowHeight(row int, height float64) error
	WriteCell(row, col int, value any) error
	FillCell(row, col int, hex string) error
	EmbedImage(row, col int, ext string, data []byte) error
	SaveAs(path string) error
	Close() error
}

// XLSXSheet writes the first worksheet of a new .xlsx workbook
type XLSXSheet struct {
	file   *excelize.File
	name   string
	styles map[string]int
}

// NewXLSXSheet creates an empty workbook
func NewXLSXSheet() *XLSXSheet {
	f := excelize.NewFile()
	return &XLSXSheet{
		file:   f,
		name:   f.GetSheetName(0),
		styles: make(map[string]int),
	}
}

func cellName(row, col int) (string, error) {
	return excelize.CoordinatesToCellName(col+1, row+1)
}

func (s *XLSXSheet) SetColumnWidth(col int, width float64) error {
	name, err := excelize.ColumnNumberToName(col + 1)
	if err != nil {
		return err
	}
	return s.file.SetColWidth(s.name, name, name, width)
}

func (s *XLSXSheet) SetRowHeight(row int, height float64) error {
	return s.file.SetRowHeight(s.name, row+1, height)
}

func (s *XLSXSheet) WriteCell(row, col int, value any) error {
	cell, err := cellName(row, col)
	if err != nil {
		return err
	}
	return s.file.SetCellValue(s.name, cell, value)
}

// FillCell paints the cell background, reusing one style per colour
func (s *XLSXSheet) FillCell(row, col int, hex string) error {
	cell, err := cellName(row, col)
	if err != nil {
		return err
	}

	style, ok := s.styles[hex]
	if !ok {
		style, err = s.file.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{hex}, Pattern: 1},
		})
		if err != nil {
			return fmt.Errorf("failed to create fill style %s: %w", hex, err)
		}
		s.styles[hex] = style
	}

	return s.file.SetCellStyle(s.name, cell, cell, style)
}

// EmbedImage places the image in the cell, scaled to fit it
func (s *XLSXSheet) EmbedImage(row, col int, ext string, data []byte) error {
	cell, err := cellName(row, col)
	if err != nil {
		return err
	}
	return s.file.AddPictureFromBytes(s.name, cell, &excelize.Picture{
		Extension: ext,
		File:      data,
		Format: &excelize.GraphicOptions{
			AutoFit:         true,
			LockAspectRatio: true,
			Positioning:     "oneCell",
		},
	})
}

func (s *XLSXSheet) SaveAs(path string) error {
	return s.file.SaveAs(path)
}

func (s *XLSXSheet) Close() error {
	return s.file.Close()
}
