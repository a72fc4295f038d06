package services

import "labstock/internal/models"

// ClassifyAlarm derives a record's stock alarm. A record with stock is never
// alarmed; an empty record is critical until an order has been placed, then
// pending until it arrives. Pure and total: absent dates are just "not set".
func ClassifyAlarm(rec models.ReagentRecord) models.AlarmState {
	if rec.Stock > 0 {
		return models.AlarmNone
	}
	if rec.DatePlaced == nil {
		return models.AlarmCritical
	}
	return models.AlarmPending
}
