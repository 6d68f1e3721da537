package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/Amanjain8795/matratv-connect-main-sub000/web/db"
)

// CommissionReport exports the full commission and withdrawal ledger as a
// spreadsheet for the back office, two sheets in one workbook.
func CommissionReport(c *gin.Context) {
	var profiles []db.UserProfile
	if err := db.DB.Find(&profiles).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to load profiles",
		})
		return
	}
	byID := make(map[uint]db.UserProfile, len(profiles))
	for _, p := range profiles {
		byID[p.ID] = p
	}
	regNumber := func(p db.UserProfile) string {
		if p.RegistrationNumber != nil {
			return *p.RegistrationNumber
		}
		return ""
	}

	var commissions []db.ReferralCommission
	if err := db.DB.Order("created_at ASC").Find(&commissions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to load commissions",
		})
		return
	}
	var withdrawals []db.WithdrawalRequest
	if err := db.DB.Order("created_at ASC").Find(&withdrawals).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to load withdrawals",
		})
		return
	}

	f := excelize.NewFile()

	index, _ := f.NewSheet("Commissions")
	f.DeleteSheet("Sheet1")

	headers := []string{"Referrer", "Registration No", "Level", "Amount (INR)", "Rate", "Trigger", "Order ID", "Status", "Earned At"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue("Commissions", cell, header)
	}

	rowIndex := 2
	for _, row := range commissions {
		referrer := byID[row.ReferrerID]
		f.SetCellValue("Commissions", fmt.Sprintf("A%d", rowIndex), referrer.FullName)
		f.SetCellValue("Commissions", fmt.Sprintf("B%d", rowIndex), regNumber(referrer))
		f.SetCellValue("Commissions", fmt.Sprintf("C%d", rowIndex), row.Level)
		f.SetCellValue("Commissions", fmt.Sprintf("D%d", rowIndex), float64(row.CommissionAmount)/100)
		f.SetCellValue("Commissions", fmt.Sprintf("E%d", rowIndex), row.CommissionRate)
		f.SetCellValue("Commissions", fmt.Sprintf("F%d", rowIndex), row.TriggerType)
		if row.OrderID != nil {
			f.SetCellValue("Commissions", fmt.Sprintf("G%d", rowIndex), *row.OrderID)
		}
		f.SetCellValue("Commissions", fmt.Sprintf("H%d", rowIndex), row.Status)
		f.SetCellValue("Commissions", fmt.Sprintf("I%d", rowIndex), row.CreatedAt.Format("02.01.2006 15:04"))
		rowIndex++
	}

	f.NewSheet("Withdrawals")

	wdHeaders := []string{"User", "Amount (INR)", "Destination", "Status", "Requested At", "Processed At", "Processed By", "Notes"}
	for i, header := range wdHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue("Withdrawals", cell, header)
	}

	rowIndex = 2
	for _, row := range withdrawals {
		owner := byID[row.UserID]
		f.SetCellValue("Withdrawals", fmt.Sprintf("A%d", rowIndex), owner.FullName)
		f.SetCellValue("Withdrawals", fmt.Sprintf("B%d", rowIndex), float64(row.Amount)/100)
		f.SetCellValue("Withdrawals", fmt.Sprintf("C%d", rowIndex), row.Destination)
		f.SetCellValue("Withdrawals", fmt.Sprintf("D%d", rowIndex), row.Status)
		f.SetCellValue("Withdrawals", fmt.Sprintf("E%d", rowIndex), row.RequestedAt.Format("02.01.2006 15:04"))
		if row.ProcessedAt != nil {
			f.SetCellValue("Withdrawals", fmt.Sprintf("F%d", rowIndex), row.ProcessedAt.Format("02.01.2006 15:04"))
		}
		f.SetCellValue("Withdrawals", fmt.Sprintf("G%d", rowIndex), row.ProcessedBy)
		f.SetCellValue("Withdrawals", fmt.Sprintf("H%d", rowIndex), row.AdminNotes)
		rowIndex++
	}

	f.SetActiveSheet(index)

	filename := "commission-report-" + time.Now().Format("2006-01-02") + ".xlsx"
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		c.Status(http.StatusInternalServerError)
	}
}
