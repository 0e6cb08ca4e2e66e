// Package model re-exports the entity and message types shared by the
// services.
package model

import (
	"github.com/agrisense/agrisense/internal/model/entities"
	"github.com/agrisense/agrisense/internal/model/messages"
)

type (
	Zone         = entities.Zone
	SoilType     = entities.SoilType
	SoilProfiles = entities.SoilProfiles
	Crop         = entities.Crop

	SoilReading           = messages.SoilReading
	WeatherReading        = messages.WeatherReading
	WeatherAggregate      = messages.WeatherAggregate
	WaterReading          = messages.WaterReading
	ZoneSnapshot          = messages.ZoneSnapshot
	IrrigationAdviceEvent = messages.IrrigationAdviceEvent
	SoilAssessmentEvent   = messages.SoilAssessmentEvent
	WaterAssessmentEvent  = messages.WaterAssessmentEvent
)
