package service

import (
	"fmt"

	"github.com/ericlagergren/decimal"

	"gitlab.com/vendalink-commerce/affiliate_api/model"
)

// FormatCents renders integer cents as a decimal currency string, "1234.56"
func FormatCents(amountCents int64) string {
	return decimal.New(amountCents, 2).String()
}

// ExportCommissions - gathers commission data for one beneficiary and renders
// it as csv or pdf
func (service *Service) ExportCommissions(format string, beneficiaryID uint64, from, to int) (*model.GeneratedFile, error) {
	commissions := []model.Commission{}
	q := service.repo.ConnReader.Where("beneficiary_id = ?", beneficiaryID)
	if from > 0 {
		q = q.Where("created_at >= to_timestamp(?)", from)
	}
	if to > 0 {
		q = q.Where("created_at <= to_timestamp(?)", to)
	}
	db := q.Order("created_at DESC").Find(&commissions)
	if db.Error != nil {
		return nil, db.Error
	}

	data := [][]string{}
	data = append(data, []string{"ID", "Date & Time", "Order", "Level", "Amount (R$)", "Status"})
	widths := []int{45, 45, 30, 30, 45, 30}

	for i := 0; i < len(commissions); i++ {
		o := commissions[i]
		data = append(data, []string{
			fmt.Sprint(o.ID),
			o.CreatedAt.Format("2 Jan 2006 15:04:05"),
			fmt.Sprint(o.OrderID),
			o.Level.Label(),
			FormatCents(o.AmountCents),
			string(o.Status),
		})
	}

	var resp []byte
	var err error
	title := "Commissions Report"

	if format == "csv" {
		resp, err = CSVExport(data)
	} else {
		resp, err = PDFExport(data, widths, title)
	}

	generatedFile := model.GeneratedFile{
		Type:     format,
		DataType: "commission",
		Data:     resp,
	}
	return &generatedFile, err
}
