// Package analytics contiene los casos de uso del dashboard de alquileres:
// ingreso proyectado por mes, embudo de conversión y tabla de recogidas.
package analytics

import (
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/greenbox-dashboard/internal/domain/entity"
	"github.com/jhoicas/greenbox-dashboard/internal/domain/rental"
)

// Options parámetros del cálculo.
type Options struct {
	PickupOrder rental.PickupOrder
	StrictDates bool // true: un rango de fechas inválido aborta el reporte (ErrInvalidDateRange)
}

// Report los tres agregados calculados sobre una misma instantánea y selector.
// Un Report nunca se modifica después de construido.
type Report struct {
	Revision    string
	School      string
	GeneratedAt time.Time
	RecordCount int
	PickupOrder rental.PickupOrder

	Revenue        []rental.MonthBucket
	Conversion     rental.ConversionSummary
	ConversionRate rental.Percent
	Pickups        []rental.PickupBucket
}

// BuildReport ejecuta los tres agregadores y deriva la tasa de conversión entera.
//
// Los agregadores solo leen records y cada uno escribe en su propio resultado,
// así que corren en paralelo:
//  1. AggregateRevenue   → Revenue
//  2. AggregateConversion → Conversion (+ ConversionRate)
//  3. AggregatePickups   → Pickups
//
// El caller garantiza que records no cambia mientras dura la llamada.
func BuildReport(records []entity.CustomerRecord, school string, opts Options) (*Report, error) {
	if opts.PickupOrder == "" {
		opts.PickupOrder = rental.PickupOrderLegacy
	}
	if opts.StrictDates {
		for _, r := range records {
			if !rental.Matches(r, school) {
				continue
			}
			if err := rental.ValidateRange(r); err != nil {
				return nil, err
			}
		}
	}

	revenueCh := make(chan []rental.MonthBucket, 1)
	conversionCh := make(chan rental.ConversionSummary, 1)
	pickupCh := make(chan []rental.PickupBucket, 1)

	go func() { revenueCh <- rental.AggregateRevenue(records, school) }()
	go func() { conversionCh <- rental.AggregateConversion(records, school) }()
	go func() { pickupCh <- rental.AggregatePickups(records, school, opts.PickupOrder) }()

	revenue := <-revenueCh
	conversion := <-conversionCh
	pickups := <-pickupCh

	return &Report{
		Revision:       uuid.NewString(),
		School:         school,
		GeneratedAt:    time.Now().UTC(),
		RecordCount:    len(records),
		PickupOrder:    opts.PickupOrder,
		Revenue:        revenue,
		Conversion:     conversion,
		ConversionRate: conversion.Rate(),
		Pickups:        pickups,
	}, nil
}
