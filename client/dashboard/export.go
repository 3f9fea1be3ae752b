package dashboard

import (
	"io"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/pr-poehali-dev/elektronnyy-zhurnal-1/core/school"
)

const gradesSheet = "Оценки"

var gradeHeader = []interface{}{"Ученик", "Предмет", "Оценка", "Дата", "Комментарий"}

// ExportGradesXLSX writes grades as a single-sheet workbook, one row per grade under a header row.
func ExportGradesXLSX(w io.Writer, grades []school.Grade) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", gradesSheet); err != nil {
		return errors.Wrap(err, "naming sheet")
	}
	if err := f.SetSheetRow(gradesSheet, "A1", &gradeHeader); err != nil {
		return errors.Wrap(err, "writing header")
	}
	for i, g := range grades {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{g.StudentName, g.SubjectName, g.Grade, g.Date, g.Comment}
		if err = f.SetSheetRow(gradesSheet, cell, &row); err != nil {
			return errors.Wrapf(err, "writing row %d", i+2)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return errors.Wrap(err, "writing workbook")
	}
	return nil
}
