package analytics

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/greenbox-dashboard/internal/application/dto"
)

// NewReportDTO convierte el reporte en la respuesta HTTP.
// NaN no es representable en JSON: la tasa sin cuentas viaja como null y etiqueta "NaN".
func NewReportDTO(r *Report) *dto.DashboardReportDTO {
	labels := make([]string, 0, len(r.Revenue))
	values := make([]decimal.Decimal, 0, len(r.Revenue))
	buckets := make([]dto.RevenueBucketDTO, 0, len(r.Revenue))
	for _, b := range r.Revenue {
		labels = append(labels, b.Label)
		values = append(values, b.Value)
		buckets = append(buckets, dto.RevenueBucketDTO{Label: b.Label, Value: b.Value})
	}

	pickups := make([]dto.PickupRowDTO, 0, len(r.Pickups))
	for _, p := range r.Pickups {
		pickups = append(pickups, dto.PickupRowDTO{Date: p.Date, Customers: p.Customers, Items: p.Items})
	}

	conversion := dto.ConversionDTO{
		Orders:               r.Conversion.Orders,
		AccountsWithoutOrder: r.Conversion.WithoutOrder,
		ConversionRateLabel:  r.ConversionRate.String(),
	}
	if rate := r.Conversion.RatePercent; !math.IsNaN(rate) && !math.IsInf(rate, 0) {
		conversion.RatePercent = &rate
	}
	if r.ConversionRate.Valid {
		v := r.ConversionRate.Value
		conversion.ConversionRate = &v
	}

	return &dto.DashboardReportDTO{
		Revision:    r.Revision,
		School:      r.School,
		GeneratedAt: r.GeneratedAt,
		Records:     r.RecordCount,
		PickupOrder: string(r.PickupOrder),
		Revenue: dto.RevenueSeriesDTO{
			Labels:  labels,
			Values:  values,
			Buckets: buckets,
		},
		Conversion: conversion,
		Pickups:    pickups,
	}
}
