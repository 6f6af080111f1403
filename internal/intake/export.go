package intake

import (
	"bytes"
	"context"

	"github.com/xuri/excelize/v2"

	"github.com/revops/intake-service/internal/intake/model"
	"github.com/revops/intake-service/internal/system/error/serviceerror"
)

// ExportSheetName is the worksheet holding the spreadsheet export.
const ExportSheetName = "Requests"

func (s *intakeService) exportRecords(ctx context.Context) ([]model.IntakeRequest, *serviceerror.ServiceError) {
	records, err := s.store.ExportAll(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to export intake requests")
		return nil, serviceerror.CustomServiceError(serviceerror.DatabaseError, "failed to export requests")
	}
	if len(records) == 0 {
		return nil, serviceerror.CustomServiceError(serviceerror.NoDataError, "No data")
	}
	return records, nil
}

// ExportCSV renders every request, newest first, with each value quoted.
func (s *intakeService) ExportCSV(ctx context.Context) ([]byte, *serviceerror.ServiceError) {
	records, svcErr := s.exportRecords(ctx)
	if svcErr != nil {
		return nil, svcErr
	}

	rows := make([][]string, 0, len(records))
	for i := range records {
		rows = append(rows, records[i].Values())
	}

	var buf bytes.Buffer
	if err := writeQuotedCSV(&buf, model.Columns, rows); err != nil {
		s.logger.WithError(err).Error("Failed to encode csv export")
		return nil, serviceerror.CustomServiceError(serviceerror.InternalServerError, "failed to encode export")
	}
	return buf.Bytes(), nil
}

// ExportXLSX renders the same table as ExportCSV into a single worksheet.
func (s *intakeService) ExportXLSX(ctx context.Context) ([]byte, *serviceerror.ServiceError) {
	records, svcErr := s.exportRecords(ctx)
	if svcErr != nil {
		return nil, svcErr
	}

	data, err := buildWorkbook(records)
	if err != nil {
		s.logger.WithError(err).Error("Failed to encode xlsx export")
		return nil, serviceerror.CustomServiceError(serviceerror.InternalServerError, "failed to encode export")
	}
	return data, nil
}

func buildWorkbook(records []model.IntakeRequest) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), ExportSheetName); err != nil {
		return nil, err
	}

	header := make([]interface{}, len(model.Columns))
	for i, c := range model.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(ExportSheetName, "A1", &header); err != nil {
		return nil, err
	}

	for i := range records {
		values := records[i].Values()
		row := make([]interface{}, len(values))
		for j, v := range values {
			row[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(ExportSheetName, cell, &row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
